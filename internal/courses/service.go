// Package courses manages the course catalog: the courses themselves and the
// aggregate views the frontend renders (docente, categoria, lecciones,
// comentarios and estudiantes loaded together).
package courses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/aulavirtual/pkg/models"
)

var (
	// ErrNotFound means the referenced course id does not exist
	ErrNotFound = errors.New("course not found")

	// ErrUserNotFound means the docente/estudiante id does not exist
	ErrUserNotFound = errors.New("user not found")
)

const cursoColumns = `id, titulo, imagen, duracion, estado, fecha_inicio,
	       fecha_fin, descripcion, id_docente, id_categoria, created_at, updated_at`

// CursoInput carries the writable fields of a course
type CursoInput struct {
	Titulo      string
	Imagen      *string
	Duracion    string
	Estado      int
	FechaInicio string
	FechaFin    string
	Descripcion string
	DocenteID   int64
	CategoriaID int64
}

// Service provides course catalog operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates a course service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func scanCurso(row interface{ Scan(...interface{}) error }) (*models.Curso, error) {
	c := &models.Curso{}
	err := row.Scan(
		&c.ID, &c.Titulo, &c.Imagen, &c.Duracion, &c.Estado, &c.FechaInicio,
		&c.FechaFin, &c.Descripcion, &c.DocenteID, &c.CategoriaID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all courses with relations, newest first
func (s *Service) List(ctx context.Context) ([]models.Curso, error) {
	cursos, err := s.queryCursos(ctx, `
		SELECT `+cursoColumns+` FROM cursos ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}

	if err := s.loadRelations(ctx, cursos, true); err != nil {
		return nil, err
	}

	return cursos, nil
}

// Get returns one course with relations
func (s *Service) Get(ctx context.Context, id int64) (*models.Curso, error) {
	curso, err := scanCurso(s.db.QueryRowContext(ctx, `
		SELECT `+cursoColumns+` FROM cursos WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}

	cursos := []models.Curso{*curso}
	if err := s.loadRelations(ctx, cursos, true); err != nil {
		return nil, err
	}

	return &cursos[0], nil
}

// Create registers a new course
func (s *Service) Create(ctx context.Context, input CursoInput) (*models.Curso, error) {
	curso, err := scanCurso(s.db.QueryRowContext(ctx, `
		INSERT INTO cursos (titulo, imagen, duracion, estado, fecha_inicio, fecha_fin,
		                    descripcion, id_docente, id_categoria, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING `+cursoColumns+`
	`, input.Titulo, input.Imagen, input.Duracion, input.Estado, input.FechaInicio,
		input.FechaFin, input.Descripcion, input.DocenteID, input.CategoriaID))

	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return curso, nil
}

// Update replaces a course's fields. The docente is fixed at creation and is
// not updatable here.
func (s *Service) Update(ctx context.Context, id int64, input CursoInput) (*models.Curso, error) {
	curso, err := scanCurso(s.db.QueryRowContext(ctx, `
		UPDATE cursos
		SET titulo = $1, imagen = $2, duracion = $3, estado = $4, fecha_inicio = $5,
		    fecha_fin = $6, descripcion = $7, id_categoria = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+cursoColumns+`
	`, input.Titulo, input.Imagen, input.Duracion, input.Estado, input.FechaInicio,
		input.FechaFin, input.Descripcion, input.CategoriaID, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update course %d: %w", id, err)
	}

	return curso, nil
}

// Delete removes a course and its enrollment rows in one transaction
func (s *Service) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM curso_estudiante WHERE id_curso = $1`, id); err != nil {
		return fmt.Errorf("failed to delete enrollments of course %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM cursos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit course deletion: %w", err)
	}

	return nil
}

// Popular returns the eight courses with the most enrolled students
func (s *Service) Popular(ctx context.Context) ([]models.Curso, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.titulo, c.imagen, c.duracion, c.estado, c.fecha_inicio,
		       c.fecha_fin, c.descripcion, c.id_docente, c.id_categoria,
		       c.created_at, c.updated_at,
		       COUNT(ce.id) AS estudiantes_count
		FROM cursos c
		LEFT JOIN curso_estudiante ce ON ce.id_curso = c.id
		GROUP BY c.id
		ORDER BY estudiantes_count DESC
		LIMIT 8
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular courses: %w", err)
	}
	defer rows.Close()

	var cursos []models.Curso
	for rows.Next() {
		var c models.Curso
		var count int
		err := rows.Scan(
			&c.ID, &c.Titulo, &c.Imagen, &c.Duracion, &c.Estado, &c.FechaInicio,
			&c.FechaFin, &c.Descripcion, &c.DocenteID, &c.CategoriaID,
			&c.CreatedAt, &c.UpdatedAt, &count,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		c.EstudiantesCount = &count
		cursos = append(cursos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read popular courses: %w", err)
	}

	if err := s.loadRelations(ctx, cursos, false); err != nil {
		return nil, err
	}

	return cursos, nil
}

// ByDocente returns the courses taught by the given docente
func (s *Service) ByDocente(ctx context.Context, docenteID int64) ([]models.Curso, error) {
	if err := s.userExists(ctx, docenteID); err != nil {
		return nil, err
	}

	cursos, err := s.queryCursos(ctx, `
		SELECT `+cursoColumns+` FROM cursos WHERE id_docente = $1 ORDER BY created_at DESC
	`, docenteID)
	if err != nil {
		return nil, err
	}

	if err := s.loadRelations(ctx, cursos, true); err != nil {
		return nil, err
	}

	return cursos, nil
}

// ByEstudiante returns the courses the given student is enrolled in
func (s *Service) ByEstudiante(ctx context.Context, estudianteID int64) ([]models.Curso, error) {
	if err := s.userExists(ctx, estudianteID); err != nil {
		return nil, err
	}

	cursos, err := s.queryCursos(ctx, `
		SELECT c.id, c.titulo, c.imagen, c.duracion, c.estado, c.fecha_inicio,
		       c.fecha_fin, c.descripcion, c.id_docente, c.id_categoria,
		       c.created_at, c.updated_at
		FROM cursos c
		JOIN curso_estudiante ce ON ce.id_curso = c.id
		WHERE ce.id_estudiante = $1
		ORDER BY c.created_at DESC
	`, estudianteID)
	if err != nil {
		return nil, err
	}

	if err := s.loadRelations(ctx, cursos, true); err != nil {
		return nil, err
	}

	return cursos, nil
}

func (s *Service) userExists(ctx context.Context, userID int64) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
	`, userID).Scan(&exists)

	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) queryCursos(ctx context.Context, query string, args ...interface{}) ([]models.Curso, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var cursos []models.Curso
	for rows.Next() {
		curso, err := scanCurso(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		cursos = append(cursos, *curso)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}

	return cursos, nil
}

// loadRelations hydrates docente, categoria, lecciones and comentarios(+user)
// for every course in the slice, plus estudiantes when requested. Relations
// are batch-loaded per table, not per course.
func (s *Service) loadRelations(ctx context.Context, cursos []models.Curso, withEstudiantes bool) error {
	if len(cursos) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(cursos))
	byID := make(map[int64]*models.Curso, len(cursos))
	for i := range cursos {
		ids = append(ids, cursos[i].ID)
		byID[cursos[i].ID] = &cursos[i]
	}

	if err := s.loadDocentes(ctx, byID, cursos); err != nil {
		return err
	}
	if err := s.loadCategorias(ctx, cursos); err != nil {
		return err
	}
	if err := s.loadLecciones(ctx, ids, byID); err != nil {
		return err
	}
	if err := s.loadComentarios(ctx, ids, byID); err != nil {
		return err
	}
	if withEstudiantes {
		if err := s.loadEstudiantes(ctx, ids, byID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) loadDocentes(ctx context.Context, byID map[int64]*models.Curso, cursos []models.Curso) error {
	docenteIDs := make([]int64, 0, len(cursos))
	for i := range cursos {
		docenteIDs = append(docenteIDs, cursos[i].DocenteID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nombre, apellido, numero_documento, usuario, fecha_nacimiento,
		       direccion, email, imagen, password_hash, id_tipo_documento, id_rol,
		       created_at, updated_at
		FROM users WHERE id = ANY($1)
	`, pq.Array(docenteIDs))
	if err != nil {
		return fmt.Errorf("failed to query docentes: %w", err)
	}
	defer rows.Close()

	docentes := make(map[int64]*models.User)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento, &user.Usuario,
			&user.FechaNacimiento, &user.Direccion, &user.Email, &user.Imagen,
			&user.PasswordHash, &user.TipoDocumentoID, &user.RolID,
			&user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan docente: %w", err)
		}
		docentes[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read docentes: %w", err)
	}

	for i := range cursos {
		curso := byID[cursos[i].ID]
		curso.Docente = docentes[curso.DocenteID]
	}

	return nil
}

func (s *Service) loadCategorias(ctx context.Context, cursos []models.Curso) error {
	categoriaIDs := make([]int64, 0, len(cursos))
	for i := range cursos {
		categoriaIDs = append(categoriaIDs, cursos[i].CategoriaID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nombre, descripcion, created_at, updated_at
		FROM categorias WHERE id = ANY($1)
	`, pq.Array(categoriaIDs))
	if err != nil {
		return fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categorias := make(map[int64]*models.Categoria)
	for rows.Next() {
		cat := &models.Categoria{}
		if err := rows.Scan(&cat.ID, &cat.Nombre, &cat.Descripcion, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		categorias[cat.ID] = cat
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}

	for i := range cursos {
		cursos[i].Categoria = categorias[cursos[i].CategoriaID]
	}

	return nil
}

func (s *Service) loadLecciones(ctx context.Context, cursoIDs []int64, byID map[int64]*models.Curso) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, titulo, descripcion, id_curso, created_at, updated_at
		FROM lecciones WHERE id_curso = ANY($1)
		ORDER BY created_at ASC
	`, pq.Array(cursoIDs))
	if err != nil {
		return fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Leccion
		if err := rows.Scan(&l.ID, &l.Titulo, &l.Descripcion, &l.CursoID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan lesson: %w", err)
		}
		if curso, ok := byID[l.CursoID]; ok {
			curso.Lecciones = append(curso.Lecciones, l)
		}
	}
	return rows.Err()
}

func (s *Service) loadComentarios(ctx context.Context, cursoIDs []int64, byID map[int64]*models.Curso) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT co.id, co.contenido, co.id_curso, co.id_usuario, co.created_at, co.updated_at,
		       u.id, u.nombre, u.apellido, u.numero_documento, u.usuario, u.fecha_nacimiento,
		       u.direccion, u.email, u.imagen, u.id_tipo_documento, u.id_rol,
		       u.created_at, u.updated_at
		FROM comentarios co
		JOIN users u ON u.id = co.id_usuario
		WHERE co.id_curso = ANY($1)
		ORDER BY co.created_at DESC
	`, pq.Array(cursoIDs))
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var co models.Comentario
		user := &models.User{}
		err := rows.Scan(
			&co.ID, &co.Contenido, &co.CursoID, &co.UserID, &co.CreatedAt, &co.UpdatedAt,
			&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento, &user.Usuario,
			&user.FechaNacimiento, &user.Direccion, &user.Email, &user.Imagen,
			&user.TipoDocumentoID, &user.RolID, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		co.User = user
		if curso, ok := byID[co.CursoID]; ok {
			curso.Comentarios = append(curso.Comentarios, co)
		}
	}
	return rows.Err()
}

func (s *Service) loadEstudiantes(ctx context.Context, cursoIDs []int64, byID map[int64]*models.Curso) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ce.id_curso,
		       u.id, u.nombre, u.apellido, u.numero_documento, u.usuario, u.fecha_nacimiento,
		       u.direccion, u.email, u.imagen, u.id_tipo_documento, u.id_rol,
		       u.created_at, u.updated_at
		FROM curso_estudiante ce
		JOIN users u ON u.id = ce.id_estudiante
		WHERE ce.id_curso = ANY($1)
		ORDER BY ce.id ASC
	`, pq.Array(cursoIDs))
	if err != nil {
		return fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cursoID int64
		var user models.User
		err := rows.Scan(
			&cursoID,
			&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento, &user.Usuario,
			&user.FechaNacimiento, &user.Direccion, &user.Email, &user.Imagen,
			&user.TipoDocumentoID, &user.RolID, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan student: %w", err)
		}
		if curso, ok := byID[cursoID]; ok {
			curso.Estudiantes = append(curso.Estudiantes, user)
		}
	}
	return rows.Err()
}
