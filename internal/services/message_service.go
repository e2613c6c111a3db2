package services

import (
	"context"

	"chathub/internal/db"
	"chathub/internal/models"

	"github.com/google/uuid"
)

type MessageService struct{}

func NewMessageService() *MessageService {
	return &MessageService{}
}

// CreateMessage persists a new message with empty delivery state.
func (s *MessageService) CreateMessage(ctx context.Context, chatID, senderID, body string) (*models.Message, error) {
	msg := models.Message{
		ID:            uuid.New().String(),
		ChatID:        chatID,
		SenderID:      senderID,
		Body:          body,
		DeliveredTo:   []string{},
		UndeliveredTo: []string{},
	}
	query := `INSERT INTO messages (id, chat_id, sender_id, body) VALUES ($1, $2, $3, $4) RETURNING created_at`
	if err := db.Pool.QueryRow(ctx, query, msg.ID, msg.ChatID, msg.SenderID, msg.Body).Scan(&msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ChatMessages returns a chat's messages, oldest first.
func (s *MessageService) ChatMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, body, delivered_to, undelivered_to, created_at
		FROM messages WHERE chat_id = $1 ORDER BY created_at DESC LIMIT $2
	`
	rows, err := db.Pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Body, &msg.DeliveredTo, &msg.UndeliveredTo, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// FindUndeliveredFor returns messages still waiting on the given user:
// those that list the user as undelivered and not yet delivered, in chats
// the user is a member of.
func (s *MessageService) FindUndeliveredFor(ctx context.Context, userID string) ([]models.Message, error) {
	query := `
		SELECT m.id, m.chat_id, m.sender_id, m.body, m.delivered_to, m.undelivered_to, m.created_at
		FROM messages m
		JOIN chats c ON c.id = m.chat_id
		WHERE $1 = ANY(c.users)
		  AND $1 = ANY(m.undelivered_to)
		  AND NOT ($1 = ANY(m.delivered_to))
		ORDER BY m.created_at
	`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Body, &msg.DeliveredTo, &msg.UndeliveredTo, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkDelivered records the user in the message's deliveredTo set. The
// guard in the WHERE clause makes repeated calls idempotent.
func (s *MessageService) MarkDelivered(ctx context.Context, messageID, userID string) error {
	query := `
		UPDATE messages SET delivered_to = array_append(delivered_to, $2)
		WHERE id = $1 AND NOT ($2 = ANY(delivered_to))
	`
	_, err := db.Pool.Exec(ctx, query, messageID, userID)
	return err
}

// MarkUndelivered records the user in the message's undeliveredTo set,
// idempotently.
func (s *MessageService) MarkUndelivered(ctx context.Context, messageID, userID string) error {
	query := `
		UPDATE messages SET undelivered_to = array_append(undelivered_to, $2)
		WHERE id = $1 AND NOT ($2 = ANY(undelivered_to))
	`
	_, err := db.Pool.Exec(ctx, query, messageID, userID)
	return err
}
