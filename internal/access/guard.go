package access

import (
	"context"
	"errors"

	"automind-api/internal/model"
	"automind-api/internal/repository"
	"automind-api/pkg/apierror"

	"go.uber.org/zap"
)

// SessionValidator resolves an opaque token to the session it was issued for.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.SessionData, error)
}

// AccountReader is the part of the account store the guard needs.
type AccountReader interface {
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
}

// Guard maps session tokens to accounts. The account is read from the store
// on every call, so a deleted account stops resolving immediately.
type Guard struct {
	sessions SessionValidator
	accounts AccountReader
	log      *zap.Logger
}

// NewGuard creates a guard.
func NewGuard(sessions SessionValidator, accounts AccountReader, logger *zap.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		accounts: accounts,
		log:      logger.Named("guard"),
	}
}

// Resolve returns the account behind token, or an Unauthorized error.
func (g *Guard) Resolve(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, apierror.Unauthorized("Authentication required. Use X-Token or Authorization header.")
	}

	session, err := g.sessions.ValidateToken(ctx, token)
	if err != nil {
		g.log.Debug("token rejected", zap.Error(err))
		return nil, apierror.Unauthorized("Invalid or expired token")
	}

	account, err := g.accounts.GetAccount(ctx, session.AccountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.Unauthorized("Account no longer exists")
	}
	if err != nil {
		g.log.Error("failed to load session account", zap.Int64("account_id", session.AccountID), zap.Error(err))
		return nil, apierror.InternalError("")
	}

	return account, nil
}

// Require resolves token and checks that the account carries c.
func (g *Guard) Require(ctx context.Context, token string, c Capability) (*model.Account, error) {
	account, err := g.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := Authorize(account, c); err != nil {
		return nil, err
	}
	return account, nil
}
