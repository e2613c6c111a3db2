package services

import (
	"context"
	"errors"

	"chathub/internal/db"
	"chathub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ChatService struct{}

func NewChatService() *ChatService {
	return &ChatService{}
}

// FindByID loads a chat with its member ids. A missing chat is not an
// error: it returns nil so the caller can degrade gracefully.
func (s *ChatService) FindByID(ctx context.Context, chatID string) (*models.Chat, error) {
	var chat models.Chat
	query := `SELECT id, name, is_group, users, created_at FROM chats WHERE id = $1`
	err := db.Pool.QueryRow(ctx, query, chatID).Scan(&chat.ID, &chat.Name, &chat.IsGroup, &chat.Users, &chat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetOrCreateDirectChat finds the existing 1:1 chat between two users or
// creates one.
func (s *ChatService) GetOrCreateDirectChat(ctx context.Context, userID1, userID2 string) (*models.Chat, error) {
	query := `
		SELECT id, name, is_group, users, created_at
		FROM chats
		WHERE is_group = false AND users @> ARRAY[$1, $2]::text[]
		LIMIT 1
	`
	var chat models.Chat
	err := db.Pool.QueryRow(ctx, query, userID1, userID2).Scan(&chat.ID, &chat.Name, &chat.IsGroup, &chat.Users, &chat.CreatedAt)
	if err == nil {
		return &chat, nil
	}

	chat = models.Chat{
		ID:      uuid.New().String(),
		IsGroup: false,
		Users:   []string{userID1, userID2},
	}
	insert := `INSERT INTO chats (id, is_group, users) VALUES ($1, false, $2) RETURNING created_at`
	if err := db.Pool.QueryRow(ctx, insert, chat.ID, chat.Users).Scan(&chat.CreatedAt); err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateGroupChat creates a named chat with an arbitrary member list.
func (s *ChatService) CreateGroupChat(ctx context.Context, name string, users []string) (*models.Chat, error) {
	chat := models.Chat{
		ID:      uuid.New().String(),
		Name:    name,
		IsGroup: true,
		Users:   users,
	}
	query := `INSERT INTO chats (id, name, is_group, users) VALUES ($1, $2, true, $3) RETURNING created_at`
	if err := db.Pool.QueryRow(ctx, query, chat.ID, chat.Name, chat.Users).Scan(&chat.CreatedAt); err != nil {
		return nil, err
	}
	return &chat, nil
}

// UserChats lists every chat the user is a member of, newest first.
func (s *ChatService) UserChats(ctx context.Context, userID string) ([]models.Chat, error) {
	query := `SELECT id, name, is_group, users, created_at FROM chats WHERE $1 = ANY(users) ORDER BY created_at DESC`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.Name, &chat.IsGroup, &chat.Users, &chat.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}
