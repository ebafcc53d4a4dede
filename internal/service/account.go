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

// AccountService handles signup, login and account deletion.
type AccountService struct {
	accounts repository.AccountRepository
	verifier access.CredentialVerifier
	log      *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accounts repository.AccountRepository, verifier access.CredentialVerifier, logger *zap.Logger) *AccountService {
	if verifier == nil {
		verifier = access.PlaintextVerifier{}
	}
	return &AccountService{
		accounts: accounts,
		verifier: verifier,
		log:      logger.Named("accounts"),
	}
}

// CreateAccount registers a new account.
func (s *AccountService) CreateAccount(ctx context.Context, in model.NewAccount) (*model.Account, error) {
	in.Normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, apierror.ValidationError("Invalid account type", apierror.FieldError{
			Field:   "role",
			Message: "must be one of: Customer, Mechanic, Dealer",
		})
	}

	sealed, err := s.verifier.Seal(in.Credential)
	if err != nil {
		s.log.Error("failed to seal credential", zap.Error(err))
		return nil, apierror.InternalError("")
	}

	account := &model.Account{
		Username:         in.Username,
		Role:             role,
		PayoutIdentifier: in.PayoutIdentifier,
		Credential:       sealed,
	}

	id, err := s.accounts.CreateAccount(ctx, account)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.DuplicateUsername(in.Username)
	}
	if err != nil {
		s.log.Error("failed to create account", zap.String("username", in.Username), zap.Error(err))
		return nil, apierror.InternalError("")
	}
	account.ID = id

	s.log.Info("account created",
		zap.Int64("account_id", id),
		zap.String("username", account.Username),
		zap.Stringer("role", account.Role))

	return account, nil
}

// Authenticate returns the account whose username and credential match.
func (s *AccountService) Authenticate(ctx context.Context, username, credential string) (*model.Account, error) {
	// Trimmed exactly as NewAccount.Normalize trims at signup.
	username = strings.TrimSpace(username)
	credential = strings.TrimSpace(credential)
	if username == "" || credential == "" {
		return nil, apierror.ValidationError("Username and password are required")
	}

	account, err := s.accounts.GetAccountByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.Unauthorized("Invalid username or password")
	}
	if err != nil {
		s.log.Error("failed to load account", zap.String("username", username), zap.Error(err))
		return nil, apierror.InternalError("")
	}

	if !s.verifier.Verify(account.Credential, credential) {
		return nil, apierror.Unauthorized("Invalid username or password")
	}

	return account, nil
}

// DeleteAccount removes the caller's account and every message it sent or
// received. Listings and requests that reference the account remain stored.
func (s *AccountService) DeleteAccount(ctx context.Context, caller *model.Account) error {
	if caller == nil {
		return apierror.Unauthorized("")
	}

	removed, err := s.accounts.DeleteAccount(ctx, caller.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("Account not found")
	}
	if err != nil {
		s.log.Error("failed to delete account", zap.Int64("account_id", caller.ID), zap.Error(err))
		return apierror.InternalError("")
	}

	s.log.Info("account deleted",
		zap.Int64("account_id", caller.ID),
		zap.Int64("messages_removed", removed))
	return nil
}
