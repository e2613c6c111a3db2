package models

import "time"

// Chat is a conversation between two or more users. Its id doubles as the
// conversation room id on the socket side.
type Chat struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name,omitempty"`
	IsGroup   bool      `json:"is_group"`
	Users     []string  `json:"users"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateChatRequest struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}
