// Package lessons manages course lessons and their attached file metadata.
package lessons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/aulavirtual/pkg/models"
)

// ErrNotFound means the referenced lesson id does not exist
var ErrNotFound = errors.New("lesson not found")

const leccionColumns = `id, titulo, descripcion, id_curso, created_at, updated_at`

// LeccionInput carries the writable fields of a lesson
type LeccionInput struct {
	Titulo      string
	Descripcion string
	CursoID     int64
}

// Service provides lesson operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates a lesson service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func scanLeccion(row interface{ Scan(...interface{}) error }) (*models.Leccion, error) {
	l := &models.Leccion{}
	err := row.Scan(&l.ID, &l.Titulo, &l.Descripcion, &l.CursoID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List returns all lessons with curso and archivos, newest first
func (s *Service) List(ctx context.Context) ([]models.Leccion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+leccionColumns+` FROM lecciones ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lecciones []models.Leccion
	for rows.Next() {
		leccion, err := scanLeccion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lecciones = append(lecciones, *leccion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lessons: %w", err)
	}

	if err := s.loadRelations(ctx, lecciones); err != nil {
		return nil, err
	}

	return lecciones, nil
}

// Get returns one lesson with curso and archivos
func (s *Service) Get(ctx context.Context, id int64) (*models.Leccion, error) {
	leccion, err := scanLeccion(s.db.QueryRowContext(ctx, `
		SELECT `+leccionColumns+` FROM lecciones WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson %d: %w", id, err)
	}

	lecciones := []models.Leccion{*leccion}
	if err := s.loadRelations(ctx, lecciones); err != nil {
		return nil, err
	}

	return &lecciones[0], nil
}

// GetWithArchivos returns one lesson with only its files loaded. Used after a
// file upload, where the response shows the refreshed attachment list.
func (s *Service) GetWithArchivos(ctx context.Context, id int64) (*models.Leccion, error) {
	leccion, err := scanLeccion(s.db.QueryRowContext(ctx, `
		SELECT `+leccionColumns+` FROM lecciones WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson %d: %w", id, err)
	}

	lecciones := []models.Leccion{*leccion}
	if err := s.loadArchivos(ctx, lecciones); err != nil {
		return nil, err
	}

	return &lecciones[0], nil
}

// Create adds a lesson to a course
func (s *Service) Create(ctx context.Context, input LeccionInput) (*models.Leccion, error) {
	leccion, err := scanLeccion(s.db.QueryRowContext(ctx, `
		INSERT INTO lecciones (titulo, descripcion, id_curso, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING `+leccionColumns+`
	`, input.Titulo, input.Descripcion, input.CursoID))

	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	return leccion, nil
}

// Update modifies an existing lesson
func (s *Service) Update(ctx context.Context, id int64, input LeccionInput) (*models.Leccion, error) {
	leccion, err := scanLeccion(s.db.QueryRowContext(ctx, `
		UPDATE lecciones
		SET titulo = $1, descripcion = $2, id_curso = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+leccionColumns+`
	`, input.Titulo, input.Descripcion, input.CursoID, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lesson %d: %w", id, err)
	}

	return leccion, nil
}

// Delete removes a lesson
func (s *Service) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lecciones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete lesson %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Service) loadRelations(ctx context.Context, lecciones []models.Leccion) error {
	if len(lecciones) == 0 {
		return nil
	}

	cursoIDs := make([]int64, 0, len(lecciones))
	for i := range lecciones {
		cursoIDs = append(cursoIDs, lecciones[i].CursoID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, titulo, imagen, duracion, estado, fecha_inicio, fecha_fin,
		       descripcion, id_docente, id_categoria, created_at, updated_at
		FROM cursos WHERE id = ANY($1)
	`, pq.Array(cursoIDs))
	if err != nil {
		return fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	cursos := make(map[int64]*models.Curso)
	for rows.Next() {
		c := &models.Curso{}
		err := rows.Scan(
			&c.ID, &c.Titulo, &c.Imagen, &c.Duracion, &c.Estado, &c.FechaInicio,
			&c.FechaFin, &c.Descripcion, &c.DocenteID, &c.CategoriaID,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan course: %w", err)
		}
		cursos[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read courses: %w", err)
	}

	for i := range lecciones {
		lecciones[i].Curso = cursos[lecciones[i].CursoID]
	}

	return s.loadArchivos(ctx, lecciones)
}

func (s *Service) loadArchivos(ctx context.Context, lecciones []models.Leccion) error {
	if len(lecciones) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(lecciones))
	byID := make(map[int64]*models.Leccion, len(lecciones))
	for i := range lecciones {
		ids = append(ids, lecciones[i].ID)
		byID[lecciones[i].ID] = &lecciones[i]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nombre, tipo, ubicacion, id_leccion, created_at, updated_at
		FROM archivos_leccion WHERE id_leccion = ANY($1)
		ORDER BY created_at ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query lesson files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.ArchivoLeccion
		if err := rows.Scan(&a.ID, &a.Nombre, &a.Tipo, &a.Ubicacion, &a.LeccionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan lesson file: %w", err)
		}
		if leccion, ok := byID[a.LeccionID]; ok {
			leccion.Archivos = append(leccion.Archivos, a)
		}
	}
	return rows.Err()
}
