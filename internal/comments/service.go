// Package comments manages user comments on courses.
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulavirtual/pkg/models"
)

// ErrNotFound means the referenced comment id does not exist
var ErrNotFound = errors.New("comment not found")

// Service provides comment operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates a comment service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// List returns all comments with their authors, newest first
func (s *Service) List(ctx context.Context) ([]models.Comentario, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT co.id, co.contenido, co.id_curso, co.id_usuario, co.created_at, co.updated_at,
		       u.id, u.nombre, u.apellido, u.numero_documento, u.usuario, u.fecha_nacimiento,
		       u.direccion, u.email, u.imagen, u.id_tipo_documento, u.id_rol,
		       u.created_at, u.updated_at
		FROM comentarios co
		JOIN users u ON u.id = co.id_usuario
		ORDER BY co.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comentarios []models.Comentario
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
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		co.User = user
		comentarios = append(comentarios, co)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	return comentarios, nil
}

// Get returns one comment by id
func (s *Service) Get(ctx context.Context, id int64) (*models.Comentario, error) {
	co := &models.Comentario{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, contenido, id_curso, id_usuario, created_at, updated_at
		FROM comentarios WHERE id = $1
	`, id).Scan(&co.ID, &co.Contenido, &co.CursoID, &co.UserID, &co.CreatedAt, &co.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}

	return co, nil
}

// Create adds a comment authored by userID on a course
func (s *Service) Create(ctx context.Context, cursoID, userID int64, contenido string) (*models.Comentario, error) {
	co := &models.Comentario{
		Contenido: contenido,
		CursoID:   cursoID,
		UserID:    userID,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comentarios (contenido, id_curso, id_usuario, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, contenido, cursoID, userID).Scan(&co.ID, &co.CreatedAt, &co.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return co, nil
}

// Update modifies a comment's content
func (s *Service) Update(ctx context.Context, id int64, contenido string) (*models.Comentario, error) {
	co := &models.Comentario{}
	err := s.db.QueryRowContext(ctx, `
		UPDATE comentarios
		SET contenido = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, contenido, id_curso, id_usuario, created_at, updated_at
	`, contenido, id).Scan(&co.ID, &co.Contenido, &co.CursoID, &co.UserID, &co.CreatedAt, &co.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment %d: %w", id, err)
	}

	return co, nil
}

// Delete removes a comment
func (s *Service) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comentarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
