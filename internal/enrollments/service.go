// Package enrollments manages student enrollment into courses
// (the curso_estudiante join table).
package enrollments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulavirtual/pkg/models"
)

var (
	// ErrNotFound means the referenced enrollment id does not exist
	ErrNotFound = errors.New("enrollment not found")

	// ErrCursoNotFound means the target course does not exist
	ErrCursoNotFound = errors.New("course not found")

	// ErrAlreadyEnrolled means the student already has an enrollment row for
	// the course
	ErrAlreadyEnrolled = errors.New("student already enrolled in course")
)

// Service provides enrollment operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates an enrollment service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// ListForStudent returns the student's enrollments with the course loaded
func (s *Service) ListForStudent(ctx context.Context, estudianteID int64) ([]models.Inscripcion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ce.id, ce.id_curso, ce.id_estudiante, ce.estado, ce.created_at, ce.updated_at,
		       c.id, c.titulo, c.imagen, c.duracion, c.estado, c.fecha_inicio, c.fecha_fin,
		       c.descripcion, c.id_docente, c.id_categoria, c.created_at, c.updated_at
		FROM curso_estudiante ce
		JOIN cursos c ON c.id = ce.id_curso
		WHERE ce.id_estudiante = $1
		ORDER BY ce.created_at DESC
	`, estudianteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var inscripciones []models.Inscripcion
	for rows.Next() {
		var i models.Inscripcion
		curso := &models.Curso{}
		err := rows.Scan(
			&i.ID, &i.CursoID, &i.EstudianteID, &i.Estado, &i.CreatedAt, &i.UpdatedAt,
			&curso.ID, &curso.Titulo, &curso.Imagen, &curso.Duracion, &curso.Estado,
			&curso.FechaInicio, &curso.FechaFin, &curso.Descripcion,
			&curso.DocenteID, &curso.CategoriaID, &curso.CreatedAt, &curso.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		i.Curso = curso
		inscripciones = append(inscripciones, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read enrollments: %w", err)
	}

	return inscripciones, nil
}

// Get returns one enrollment by id
func (s *Service) Get(ctx context.Context, id int64) (*models.Inscripcion, error) {
	i := &models.Inscripcion{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, id_curso, id_estudiante, estado, created_at, updated_at
		FROM curso_estudiante WHERE id = $1
	`, id).Scan(&i.ID, &i.CursoID, &i.EstudianteID, &i.Estado, &i.CreatedAt, &i.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment %d: %w", id, err)
	}

	return i, nil
}

// Create enrolls a student in a course. The course must exist and the
// student must not already be enrolled.
func (s *Service) Create(ctx context.Context, cursoID, estudianteID int64) (*models.Inscripcion, error) {
	var cursoExists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM cursos WHERE id = $1)
	`, cursoID).Scan(&cursoExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check course %d: %w", cursoID, err)
	}
	if !cursoExists {
		return nil, ErrCursoNotFound
	}

	var enrolled bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM curso_estudiante WHERE id_curso = $1 AND id_estudiante = $2
		)
	`, cursoID, estudianteID).Scan(&enrolled)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	i := &models.Inscripcion{
		CursoID:      cursoID,
		EstudianteID: estudianteID,
		Estado:       true,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO curso_estudiante (id_curso, id_estudiante, estado, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, cursoID, estudianteID, i.Estado).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return i, nil
}

// UpdateEstado flips the enrollment's active flag
func (s *Service) UpdateEstado(ctx context.Context, id int64, estado bool) (*models.Inscripcion, error) {
	i := &models.Inscripcion{}
	err := s.db.QueryRowContext(ctx, `
		UPDATE curso_estudiante
		SET estado = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, id_curso, id_estudiante, estado, created_at, updated_at
	`, estado, id).Scan(&i.ID, &i.CursoID, &i.EstudianteID, &i.Estado, &i.CreatedAt, &i.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update enrollment %d: %w", id, err)
	}

	return i, nil
}

// Delete removes an enrollment
func (s *Service) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM curso_estudiante WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete enrollment %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
