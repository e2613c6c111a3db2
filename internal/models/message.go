package models

import "time"

// Message is the persistent record of a chat message. DeliveredTo and
// UndeliveredTo hold the per-recipient delivery state written at dispatch
// time; a user id never appears in both for the same message.
type Message struct {
	ID            string    `json:"_id"`
	ChatID        string    `json:"chatId"`
	SenderID      string    `json:"senderId"`
	Body          string    `json:"body"`
	DeliveredTo   []string  `json:"deliveredTo"`
	UndeliveredTo []string  `json:"undeliveredTo"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateMessageRequest struct {
	ChatID string `json:"chatId"`
	Body   string `json:"body"`
}
