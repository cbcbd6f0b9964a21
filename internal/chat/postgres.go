package chat

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/aulavirtual/pkg/models"
)

// PgConversationRepository is the PostgreSQL-backed ConversationRepository
type PgConversationRepository struct {
	db *sql.DB
}

// NewPgConversationRepository creates a conversation repository on db
func NewPgConversationRepository(db *sql.DB) *PgConversationRepository {
	return &PgConversationRepository{db: db}
}

// Exists reports whether the conversation id is present
func (r *PgConversationRepository) Exists(ctx context.Context, conversationID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM conversaciones WHERE id = $1)
	`, conversationID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	return exists, nil
}

// IsParticipant reports whether a participant row binds userID to conversationID
func (r *PgConversationRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM participantes_conversacion
			WHERE id_conversacion = $1 AND id_usuario = $2
		)
	`, conversationID, userID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

// ListForUser returns the user's conversations with messages loaded
func (r *PgConversationRepository) ListForUser(ctx context.Context, userID int64) ([]models.Conversacion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.estado, c.id_tipo_conversacion, c.created_at, c.updated_at
		FROM conversaciones c
		JOIN participantes_conversacion p ON p.id_conversacion = c.id
		WHERE p.id_usuario = $1
		ORDER BY c.created_at DESC
	`, userID)

	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var conversations []models.Conversacion
	var ids []int64
	for rows.Next() {
		var c models.Conversacion
		if err := rows.Scan(&c.ID, &c.Estado, &c.TipoID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}

	if len(conversations) == 0 {
		return conversations, nil
	}

	messagesByConversation, err := r.messagesFor(ctx, ids, false)
	if err != nil {
		return nil, err
	}

	for i := range conversations {
		conversations[i].Mensajes = messagesByConversation[conversations[i].ID]
	}

	return conversations, nil
}

// GetWithRelations returns one conversation hydrated with messages (+author)
// and participants (+user)
func (r *PgConversationRepository) GetWithRelations(ctx context.Context, conversationID int64) (*models.Conversacion, error) {
	conversation := &models.Conversacion{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, estado, id_tipo_conversacion, created_at, updated_at
		FROM conversaciones WHERE id = $1
	`, conversationID).Scan(
		&conversation.ID, &conversation.Estado, &conversation.TipoID,
		&conversation.CreatedAt, &conversation.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	messagesByConversation, err := r.messagesFor(ctx, []int64{conversationID}, true)
	if err != nil {
		return nil, err
	}
	conversation.Mensajes = messagesByConversation[conversationID]

	participants, err := r.participantsWithUsers(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	conversation.Participantes = participants

	return conversation, nil
}

// CreateWithParticipants atomically creates the conversation and one
// participant row per id, in slice order
func (r *PgConversationRepository) CreateWithParticipants(ctx context.Context, userIDs []int64) (*models.Conversacion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// All requested users must exist before any row is written
	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE id = ANY($1)
	`, pq.Array(userIDs)).Scan(&existing)

	if err != nil {
		return nil, fmt.Errorf("failed to check users: %w", err)
	}
	if existing != len(userIDs) {
		return nil, ErrUnknownUser
	}

	conversation := &models.Conversacion{
		Estado: models.ConversacionEstadoActiva,
		TipoID: models.ConversacionTipoDefault,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO conversaciones (estado, id_tipo_conversacion, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, conversation.Estado, conversation.TipoID).Scan(
		&conversation.ID, &conversation.CreatedAt, &conversation.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	for _, userID := range userIDs {
		participant := models.Participante{
			ConversacionID: conversation.ID,
			UserID:         userID,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO participantes_conversacion (id_conversacion, id_usuario, created_at)
			VALUES ($1, $2, NOW())
			RETURNING id, created_at
		`, conversation.ID, userID).Scan(&participant.ID, &participant.CreatedAt)

		if err != nil {
			return nil, fmt.Errorf("failed to add participant %d: %w", userID, err)
		}
		conversation.Participantes = append(conversation.Participantes, participant)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit conversation: %w", err)
	}

	return conversation, nil
}

// messagesFor loads the messages of the given conversations in creation
// order, optionally joining each message's author.
func (r *PgConversationRepository) messagesFor(ctx context.Context, conversationIDs []int64, withAuthor bool) (map[int64][]models.Mensaje, error) {
	query := `
		SELECT m.id, m.mensaje, m.estado, m.id_conversacion, m.id_usuario, m.created_at
		FROM mensajes m
		WHERE m.id_conversacion = ANY($1)
		ORDER BY m.created_at ASC, m.id ASC
	`
	if withAuthor {
		query = `
		SELECT m.id, m.mensaje, m.estado, m.id_conversacion, m.id_usuario, m.created_at,
		       u.id, u.nombre, u.apellido, u.numero_documento, u.usuario, u.fecha_nacimiento,
		       u.direccion, u.email, u.imagen, u.id_tipo_documento, u.id_rol,
		       u.created_at, u.updated_at
		FROM mensajes m
		JOIN users u ON u.id = m.id_usuario
		WHERE m.id_conversacion = ANY($1)
		ORDER BY m.created_at ASC, m.id ASC
		`
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(conversationIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]models.Mensaje, len(conversationIDs))
	for rows.Next() {
		var m models.Mensaje
		if withAuthor {
			author := &models.User{}
			err = rows.Scan(
				&m.ID, &m.Contenido, &m.Estado, &m.ConversacionID, &m.AutorID, &m.CreatedAt,
				&author.ID, &author.Nombre, &author.Apellido, &author.NumeroDocumento,
				&author.Usuario, &author.FechaNacimiento, &author.Direccion, &author.Email,
				&author.Imagen, &author.TipoDocumentoID, &author.RolID,
				&author.CreatedAt, &author.UpdatedAt,
			)
			m.Autor = author
		} else {
			err = rows.Scan(&m.ID, &m.Contenido, &m.Estado, &m.ConversacionID, &m.AutorID, &m.CreatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		result[m.ConversacionID] = append(result[m.ConversacionID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return result, nil
}

func (r *PgConversationRepository) participantsWithUsers(ctx context.Context, conversationID int64) ([]models.Participante, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.id_conversacion, p.id_usuario, p.created_at,
		       u.id, u.nombre, u.apellido, u.numero_documento, u.usuario, u.fecha_nacimiento,
		       u.direccion, u.email, u.imagen, u.id_tipo_documento, u.id_rol,
		       u.created_at, u.updated_at
		FROM participantes_conversacion p
		JOIN users u ON u.id = p.id_usuario
		WHERE p.id_conversacion = $1
		ORDER BY p.id ASC
	`, conversationID)

	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participante
	for rows.Next() {
		var p models.Participante
		user := &models.User{}
		err := rows.Scan(
			&p.ID, &p.ConversacionID, &p.UserID, &p.CreatedAt,
			&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento,
			&user.Usuario, &user.FechaNacimiento, &user.Direccion, &user.Email,
			&user.Imagen, &user.TipoDocumentoID, &user.RolID,
			&user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.User = user
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}

	return participants, nil
}

// PgMessageRepository is the PostgreSQL-backed MessageRepository
type PgMessageRepository struct {
	db *sql.DB
}

// NewPgMessageRepository creates a message repository on db
func NewPgMessageRepository(db *sql.DB) *PgMessageRepository {
	return &PgMessageRepository{db: db}
}

// Create appends a message; body is stored verbatim
func (r *PgMessageRepository) Create(ctx context.Context, conversationID, authorID int64, body string, estado int) (*models.Mensaje, error) {
	message := &models.Mensaje{
		Contenido:      body,
		Estado:         estado,
		ConversacionID: conversationID,
		AutorID:        authorID,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO mensajes (mensaje, estado, id_conversacion, id_usuario, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`, body, estado, conversationID, authorID).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}
