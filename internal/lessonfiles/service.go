// Package lessonfiles manages the file metadata attached to lessons. Only
// nombre/tipo/ubicacion are tracked; the file contents live in external
// storage.
package lessonfiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulavirtual/pkg/models"
)

var (
	// ErrNotFound means the referenced file id does not exist
	ErrNotFound = errors.New("lesson file not found")

	// ErrLeccionNotFound means the target lesson does not exist
	ErrLeccionNotFound = errors.New("lesson not found")
)

// ArchivoInput carries the writable fields of a lesson file
type ArchivoInput struct {
	Nombre    string
	Tipo      string
	Ubicacion string
	LeccionID int64
}

// Service provides lesson file operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates a lesson file service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create attaches a file to a lesson and returns the parent lesson with its
// refreshed attachment list.
func (s *Service) Create(ctx context.Context, input ArchivoInput) (*models.Leccion, error) {
	leccion := &models.Leccion{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, titulo, descripcion, id_curso, created_at, updated_at
		FROM lecciones WHERE id = $1
	`, input.LeccionID).Scan(
		&leccion.ID, &leccion.Titulo, &leccion.Descripcion, &leccion.CursoID,
		&leccion.CreatedAt, &leccion.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLeccionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson %d: %w", input.LeccionID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO archivos_leccion (nombre, tipo, ubicacion, id_leccion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, input.Nombre, input.Tipo, input.Ubicacion, input.LeccionID)

	if err != nil {
		return nil, fmt.Errorf("failed to create lesson file: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nombre, tipo, ubicacion, id_leccion, created_at, updated_at
		FROM archivos_leccion WHERE id_leccion = $1
		ORDER BY created_at ASC
	`, input.LeccionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.ArchivoLeccion
		if err := rows.Scan(&a.ID, &a.Nombre, &a.Tipo, &a.Ubicacion, &a.LeccionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson file: %w", err)
		}
		leccion.Archivos = append(leccion.Archivos, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lesson files: %w", err)
	}

	return leccion, nil
}

// Delete removes a lesson file
func (s *Service) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM archivos_leccion WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson file %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete lesson file %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
