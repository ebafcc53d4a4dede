package repository

import (
	"context"
	"fmt"

	"automind-api/internal/model"

	"github.com/jmoiron/sqlx"
)

// CreateMessage locks both endpoint accounts and appends the message in one
// transaction. Sends within a pair are serialized by the account locks, so
// created_at and id increase together within a thread on every dialect.
func (s *SQLStore) CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error) {
	msg := &model.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, accountID := range lockOrder(senderID, receiverID) {
			found, err := s.exists(ctx, tx, "accounts", accountID, true)
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}
			if !found {
				return fmt.Errorf("account %d: %w", accountID, ErrNotFound)
			}
		}

		msg.CreatedAt = s.now()

		var err error
		msg.ID, err = s.insert(ctx, tx,
			`INSERT INTO messages (sender_id, receiver_id, content, created_at) VALUES (?, ?, ?, ?)`,
			senderID, receiverID, content, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// lockOrder returns the distinct ids of a and b ascending, the order in which
// account rows are locked.
func lockOrder(a, b int64) []int64 {
	switch {
	case a == b:
		return []int64{a}
	case a < b:
		return []int64{a, b}
	}
	return []int64{b, a}
}

// Thread returns the full two-way conversation between a and b.
func (s *SQLStore) Thread(ctx context.Context, a, b int64) ([]model.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.created_at,
		       su.username AS sender_username, ru.username AS receiver_username
		FROM messages m
		JOIN accounts su ON su.id = m.sender_id
		JOIN accounts ru ON ru.id = m.receiver_id
		WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.created_at ASC, m.id ASC`

	messages := []model.Message{}
	if err := s.db.SelectContext(ctx, &messages, s.db.Rebind(query), a, b, b, a); err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return messages, nil
}

// Ensure SQLStore implements MessageRepository
var _ MessageRepository = (*SQLStore)(nil)
