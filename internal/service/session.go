package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"automind-api/internal/cache"
	"automind-api/internal/model"

	"go.uber.org/zap"
)

const (
	// TokenPrefix is the prefix for all session tokens.
	TokenPrefix = "amt_"

	// DefaultSessionTTL is the token lifetime when none is configured.
	DefaultSessionTTL = 24 * time.Hour

	sessionKeyPrefix = "session:"
)

// Session token errors.
var (
	ErrTokenMalformed = errors.New("invalid token format")
	ErrTokenExpired   = errors.New("token not found or expired")
)

// SessionService issues and validates opaque session tokens.
type SessionService struct {
	store cache.Cache
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger
}

// NewSessionService creates a session service backed by store.
func NewSessionService(store cache.Cache, ttl time.Duration, logger *zap.Logger) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		log:   logger.Named("session"),
	}
}

// TTL returns the lifetime given to new and refreshed tokens.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken creates a new session token for account.
func (s *SessionService) GenerateToken(ctx context.Context, account *model.Account) (string, *model.SessionData, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := TokenPrefix + hex.EncodeToString(tokenBytes)

	now := s.now()
	data := &model.SessionData{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.put(ctx, token, data); err != nil {
		return "", nil, err
	}

	s.log.Info("session issued",
		zap.Int64("account_id", account.ID),
		zap.Time("expires_at", data.ExpiresAt))

	return token, data, nil
}

// ValidateToken checks that token is live and returns its data.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*model.SessionData, error) {
	if !strings.HasPrefix(token, TokenPrefix) || len(token) == len(TokenPrefix) {
		return nil, ErrTokenMalformed
	}

	data, err := s.get(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.now().After(data.ExpiresAt) {
		_ = s.store.Delete(ctx, sessionKeyPrefix+token)
		return nil, ErrTokenExpired
	}

	return data, nil
}

// RevokeToken deletes a token.
func (s *SessionService) RevokeToken(ctx context.Context, token string) error {
	return s.store.Delete(ctx, sessionKeyPrefix+token)
}

// RefreshToken extends the lifetime of a live token.
func (s *SessionService) RefreshToken(ctx context.Context, token string) (*model.SessionData, error) {
	data, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	data.ExpiresAt = s.now().Add(s.ttl)
	if err := s.put(ctx, token, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ActiveSessions counts live tokens.
func (s *SessionService) ActiveSessions(ctx context.Context) (int64, error) {
	return s.store.Len(ctx)
}

func (s *SessionService) put(ctx context.Context, token string, data *model.SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKeyPrefix+token, raw, s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionService) get(ctx context.Context, token string) (*model.SessionData, error) {
	raw, err := s.store.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data model.SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &data, nil
}
