// Package users manages platform user accounts and the profile aggregate
// other areas (chat, courses) render.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulavirtual/pkg/models"
)

// ErrNotFound means the referenced user id does not exist
var ErrNotFound = errors.New("user not found")

const userColumns = `id, nombre, apellido, numero_documento, usuario, fecha_nacimiento,
	       direccion, email, imagen, password_hash, id_tipo_documento, id_rol,
	       created_at, updated_at`

// Service provides user account operations backed by PostgreSQL
type Service struct {
	db *sql.DB
}

// NewService creates a user service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento, &user.Usuario,
		&user.FechaNacimiento, &user.Direccion, &user.Email, &user.Imagen,
		&user.PasswordHash, &user.TipoDocumentoID, &user.RolID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns all users, newest first
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

// Get returns one user by id
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return user, nil
}

// Update replaces the user's editable fields and returns the updated row
func (s *Service) Update(ctx context.Context, id int64, nombre, apellido, usuario, fechaNacimiento, direccion, email string, imagen *string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET nombre = $1, apellido = $2, usuario = $3, fecha_nacimiento = $4,
		    direccion = $5, email = $6, imagen = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+userColumns+`
	`, nombre, apellido, usuario, fechaNacimiento, direccion, email, imagen, id))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	return user, nil
}

// Delete removes the user
func (s *Service) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Search finds users whose name, username or email contains the term
func (s *Service) Search(ctx context.Context, term string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE nombre ILIKE '%' || $1 || '%'
		   OR apellido ILIKE '%' || $1 || '%'
		   OR usuario ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		ORDER BY nombre ASC, apellido ASC
	`, term)

	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

// ProfileWithRelations returns the user plus the enrolled courses, comments
// and conversations the frontend renders on the profile view.
func (s *Service) ProfileWithRelations(ctx context.Context, userID int64) (*models.UserProfile, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		User:             *user,
		CursosEstudiante: []models.Curso{},
		Comentarios:      []models.Comentario{},
		Conversaciones:   []models.Conversacion{},
	}

	courseRows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.titulo, c.imagen, c.duracion, c.estado, c.fecha_inicio,
		       c.fecha_fin, c.descripcion, c.id_docente, c.id_categoria,
		       c.created_at, c.updated_at
		FROM cursos c
		JOIN curso_estudiante ce ON ce.id_curso = c.id
		WHERE ce.id_estudiante = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled courses: %w", err)
	}
	defer courseRows.Close()

	for courseRows.Next() {
		var c models.Curso
		err := courseRows.Scan(
			&c.ID, &c.Titulo, &c.Imagen, &c.Duracion, &c.Estado, &c.FechaInicio,
			&c.FechaFin, &c.Descripcion, &c.DocenteID, &c.CategoriaID,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		profile.CursosEstudiante = append(profile.CursosEstudiante, c)
	}
	if err := courseRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read enrolled courses: %w", err)
	}

	commentRows, err := s.db.QueryContext(ctx, `
		SELECT id, contenido, id_curso, id_usuario, created_at, updated_at
		FROM comentarios
		WHERE id_usuario = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c models.Comentario
		if err := commentRows.Scan(&c.ID, &c.Contenido, &c.CursoID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		profile.Comentarios = append(profile.Comentarios, c)
	}
	if err := commentRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	conversationRows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.estado, c.id_tipo_conversacion, c.created_at, c.updated_at
		FROM conversaciones c
		JOIN participantes_conversacion p ON p.id_conversacion = c.id
		WHERE p.id_usuario = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer conversationRows.Close()

	for conversationRows.Next() {
		var c models.Conversacion
		if err := conversationRows.Scan(&c.ID, &c.Estado, &c.TipoID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		profile.Conversaciones = append(profile.Conversaciones, c)
	}
	if err := conversationRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}

	return profile, nil
}
