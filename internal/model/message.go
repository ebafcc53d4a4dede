package model

import "time"

// Message is one directed entry in a two-party thread. Messages are never updated.
type Message struct {
	ID               int64     `db:"id" json:"id"`
	SenderID         int64     `db:"sender_id" json:"sender_id"`
	ReceiverID       int64     `db:"receiver_id" json:"receiver_id"`
	Content          string    `db:"content" json:"content"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	SenderUsername   string    `db:"sender_username" json:"sender_username"`
	ReceiverUsername string    `db:"receiver_username" json:"receiver_username"`
}
