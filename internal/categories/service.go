// Package categories manages the course category catalog.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulavirtual/pkg/models"
)

// ErrNotFound means the referenced category id does not exist
var ErrNotFound = errors.New("category not found")

const categoriaColumns = `id, nombre, descripcion, created_at, updated_at`

// Service provides category operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates a category service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func scanCategoria(row interface{ Scan(...interface{}) error }) (*models.Categoria, error) {
	c := &models.Categoria{}
	err := row.Scan(&c.ID, &c.Nombre, &c.Descripcion, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all categories ordered by name
func (s *Service) List(ctx context.Context) ([]models.Categoria, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoriaColumns+` FROM categorias ORDER BY nombre ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categorias []models.Categoria
	for rows.Next() {
		categoria, err := scanCategoria(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categorias = append(categorias, *categoria)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categorias, nil
}

// Get returns one category by id
func (s *Service) Get(ctx context.Context, id int64) (*models.Categoria, error) {
	categoria, err := scanCategoria(s.db.QueryRowContext(ctx, `
		SELECT `+categoriaColumns+` FROM categorias WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}

	return categoria, nil
}

// Create adds a category
func (s *Service) Create(ctx context.Context, nombre string, descripcion *string) (*models.Categoria, error) {
	categoria, err := scanCategoria(s.db.QueryRowContext(ctx, `
		INSERT INTO categorias (nombre, descripcion, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING `+categoriaColumns+`
	`, nombre, descripcion))

	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return categoria, nil
}

// Update modifies a category
func (s *Service) Update(ctx context.Context, id int64, nombre string, descripcion *string) (*models.Categoria, error) {
	categoria, err := scanCategoria(s.db.QueryRowContext(ctx, `
		UPDATE categorias
		SET nombre = $1, descripcion = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+categoriaColumns+`
	`, nombre, descripcion, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}

	return categoria, nil
}

// Delete removes a category
func (s *Service) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categorias WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
