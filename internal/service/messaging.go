package service

import (
	"context"
	"errors"
	"strings"

	"automind-api/internal/access"
	"automind-api/internal/model"
	"automind-api/internal/repository"
	"automind-api/pkg/apierror"

	"go.uber.org/zap"
)

// MaxMessageLength bounds the content of a single message.
const MaxMessageLength = 4000

// MessagingService handles direct messages between accounts.
type MessagingService struct {
	accounts repository.AccountRepository
	messages repository.MessageRepository
	log      *zap.Logger
}

// NewMessagingService creates a new messaging service.
func NewMessagingService(accounts repository.AccountRepository, messages repository.MessageRepository, logger *zap.Logger) *MessagingService {
	return &MessagingService{
		accounts: accounts,
		messages: messages,
		log:      logger.Named("messaging"),
	}
}

// Send appends a message from caller to receiverID.
func (s *MessagingService) Send(ctx context.Context, caller *model.Account, receiverID int64, content string) (*model.Message, error) {
	if err := access.Authorize(caller, access.SendMessage); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	var details []apierror.FieldError
	if receiverID <= 0 {
		details = append(details, apierror.FieldError{Field: "receiver_id", Message: "is required"})
	}
	if content == "" {
		details = append(details, apierror.FieldError{Field: "content", Message: "is required"})
	} else if len(content) > MaxMessageLength {
		details = append(details, apierror.FieldError{Field: "content", Message: "is too long"})
	}
	if len(details) > 0 {
		return nil, apierror.ValidationError("receiver_id and content are required", details...)
	}

	msg, err := s.messages.CreateMessage(ctx, caller.ID, receiverID, content)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Recipient not found")
	}
	if err != nil {
		s.log.Error("failed to send message",
			zap.Int64("sender_id", caller.ID),
			zap.Int64("receiver_id", receiverID),
			zap.Error(err))
		return nil, apierror.InternalError("")
	}

	return msg, nil
}

// History returns the full thread between caller and otherID, oldest first.
func (s *MessagingService) History(ctx context.Context, caller *model.Account, otherID int64) ([]model.Message, error) {
	if err := access.Authorize(caller, access.ReadMessages); err != nil {
		return nil, err
	}
	if otherID <= 0 {
		return nil, apierror.ValidationError("user_id is required",
			apierror.FieldError{Field: "user_id", Message: "is required"})
	}

	thread, err := s.messages.Thread(ctx, caller.ID, otherID)
	if err != nil {
		s.log.Error("failed to load thread", zap.Int64("account_id", caller.ID), zap.Int64("other_id", otherID), zap.Error(err))
		return nil, apierror.InternalError("")
	}
	if thread == nil {
		thread = []model.Message{}
	}
	return thread, nil
}

// Roster lists every account by username, for picking a conversation partner.
func (s *MessagingService) Roster(ctx context.Context, caller *model.Account) ([]model.Account, error) {
	if err := access.Authorize(caller, access.ReadMessages); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		s.log.Error("failed to list accounts", zap.Error(err))
		return nil, apierror.InternalError("")
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	return accounts, nil
}
