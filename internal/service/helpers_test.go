package service

import (
	"context"
	"path/filepath"
	"testing"

	"automind-api/internal/access"
	"automind-api/internal/model"
	"automind-api/internal/repository"
	"automind-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store     *repository.SQLStore
	accounts  *AccountService
	messaging *MessagingService
	listings  *ListingService
	requests  *RequestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "automind.db")
	store, err := repository.NewSQLStore(context.Background(), repository.SQLiteDialect, repository.SQLiteDSN(path), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	return &fixture{
		store:     store,
		accounts:  NewAccountService(store, access.PlaintextVerifier{}, logger),
		messaging: NewMessagingService(store, store, logger),
		listings:  NewListingService(store, logger),
		requests:  NewRequestService(store, logger),
	}
}

func (f *fixture) signup(t *testing.T, username, role string) *model.Account {
	t.Helper()

	a, err := f.accounts.CreateAccount(context.Background(), model.NewAccount{
		Username:         username,
		Role:             role,
		PayoutIdentifier: username + "@upi",
		Credential:       "pw-" + username,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) listing(t *testing.T, dealer *model.Account, name string, kind model.ListingKind, price float64) *model.Listing {
	t.Helper()

	l, err := f.listings.CreateListing(context.Background(), dealer, model.NewListing{
		Name: name, Brand: "Maruti", Year: 2020, Kind: string(kind), Price: &price,
	})
	require.NoError(t, err)
	return l
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, code, apierror.CodeOf(err), "error: %v", err)
}
