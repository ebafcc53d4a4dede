package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"automind-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "automind.db")
	s, err := NewSQLStore(context.Background(), SQLiteDialect, SQLiteDSN(path), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	s.SetClock(stepClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), time.Second))
	return s
}

// stepClock returns a clock that advances by step on every reading.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func mustAccount(t *testing.T, s *SQLStore, username string, role model.Role) *model.Account {
	t.Helper()

	a := &model.Account{Username: username, Role: role, PayoutIdentifier: username + "@upi", Credential: "pw"}
	_, err := s.CreateAccount(context.Background(), a)
	require.NoError(t, err)
	return a
}

func mustListing(t *testing.T, s *SQLStore, owner *model.Account, name string) *model.Listing {
	t.Helper()

	l := &model.Listing{OwnerID: owner.ID, Name: name, Brand: "Maruti", Year: 2019, Kind: model.ListingSell, Price: 500000}
	_, err := s.CreateListing(context.Background(), l)
	require.NoError(t, err)
	return l
}

func TestSQLStore_CreateAccount_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAccount(t, s, "asha", model.RoleCustomer)
	assert.NotZero(t, first.ID)

	_, err := s.CreateAccount(ctx, &model.Account{Username: "asha", Role: model.RoleDealer, PayoutIdentifier: "x", Credential: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := s.GetAccountByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, got.Role)
}

func TestSQLStore_GetAccount_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetAccountByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ListAccounts_OrderedByUsername(t *testing.T) {
	s := newTestStore(t)

	mustAccount(t, s, "zoya", model.RoleCustomer)
	mustAccount(t, s, "arjun", model.RoleDealer)
	mustAccount(t, s, "meera", model.RoleMechanic)

	accounts, err := s.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, "arjun", accounts[0].Username)
	assert.Equal(t, "meera", accounts[1].Username)
	assert.Equal(t, "zoya", accounts[2].Username)
	assert.Equal(t, model.RoleMechanic, accounts[1].Role)
}

func TestSQLStore_Thread_OrderAndSymmetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "a", model.RoleCustomer)
	b := mustAccount(t, s, "b", model.RoleDealer)
	c := mustAccount(t, s, "c", model.RoleMechanic)

	// Identical timestamps must still come back in id order.
	fixed := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	_, err := s.CreateMessage(ctx, a.ID, b.ID, "hello")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, b.ID, a.ID, "hi there")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, a.ID, c.ID, "unrelated")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, a.ID, b.ID, "is the car available?")
	require.NoError(t, err)

	ab, err := s.Thread(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := s.Thread(ctx, b.ID, a.ID)
	require.NoError(t, err)

	require.Len(t, ab, 3)
	require.Len(t, ba, 3)
	for i := range ab {
		assert.Equal(t, ab[i].ID, ba[i].ID)
	}

	assert.Equal(t, "hello", ab[0].Content)
	assert.Equal(t, "hi there", ab[1].Content)
	assert.Equal(t, "is the car available?", ab[2].Content)
	assert.Equal(t, "b", ab[1].SenderUsername)
	assert.Equal(t, "a", ab[1].ReceiverUsername)

	for i := 1; i < len(ab); i++ {
		assert.False(t, ab[i].CreatedAt.Before(ab[i-1].CreatedAt))
		assert.Greater(t, ab[i].ID, ab[i-1].ID)
	}
}

func TestSQLStore_CreateMessage_ConcurrentSendsKeepThreadOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "a", model.RoleCustomer)
	b := mustAccount(t, s, "b", model.RoleDealer)

	const sends = 12
	var wg sync.WaitGroup
	for i := 0; i < sends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			_, err := s.CreateMessage(ctx, from.ID, to.ID, "hello")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	thread, err := s.Thread(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, thread, sends)
	for i := 1; i < len(thread); i++ {
		assert.True(t, thread[i].CreatedAt.After(thread[i-1].CreatedAt), "created_at at %d", i)
		assert.Greater(t, thread[i].ID, thread[i-1].ID, "id at %d", i)
	}
}

func TestLockOrder(t *testing.T) {
	assert.Equal(t, []int64{3, 9}, lockOrder(3, 9))
	assert.Equal(t, []int64{3, 9}, lockOrder(9, 3))
	assert.Equal(t, []int64{4}, lockOrder(4, 4))
}

func TestSQLStore_Thread_Empty(t *testing.T) {
	s := newTestStore(t)

	a := mustAccount(t, s, "a", model.RoleCustomer)
	b := mustAccount(t, s, "b", model.RoleDealer)

	thread, err := s.Thread(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.NotNil(t, thread)
	assert.Empty(t, thread)
}

func TestSQLStore_CreateMessage_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	a := mustAccount(t, s, "a", model.RoleCustomer)

	_, err := s.CreateMessage(context.Background(), a.ID, 404, "anyone?")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateMessage(context.Background(), 404, a.ID, "anyone?")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_DeleteAccount_CascadesMessagesOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)
	other := mustAccount(t, s, "other", model.RoleCustomer)

	_, err := s.CreateMessage(ctx, dealer.ID, customer.ID, "offer")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, customer.ID, dealer.ID, "thanks")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, customer.ID, other.ID, "kept")
	require.NoError(t, err)

	listing := mustListing(t, s, dealer, "Swift")
	_, err = s.CreateRequest(ctx, listing.ID, customer.ID, model.RequestBuy)
	require.NoError(t, err)

	removed, err := s.DeleteAccount(ctx, dealer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = s.GetAccount(ctx, dealer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	thread, err := s.Thread(ctx, customer.ID, other.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 1)

	// Listings and requests of a deleted dealer stay stored but are no longer
	// shown by the joined listing view.
	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["total_listings"])
	assert.Equal(t, int64(1), stats["total_requests"])

	listings, err := s.ListListings(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, listings)

	_, err = s.GetListing(ctx, listing.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The orphaned listing refuses new requests like an absent one.
	_, err = s.CreateRequest(ctx, listing.ID, other.ID, model.RequestBuy)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err = s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["total_requests"])

	_, err = s.DeleteAccount(ctx, dealer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_Listings_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d1 := mustAccount(t, s, "d1", model.RoleDealer)
	d2 := mustAccount(t, s, "d2", model.RoleDealer)

	first := mustListing(t, s, d1, "Alto")
	second := mustListing(t, s, d2, "City")
	third := mustListing(t, s, d1, "Creta")

	all, err := s.ListListings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "d2", all[1].DealerName)
	assert.Equal(t, "d2@upi", all[1].DealerPayout)

	mine, err := s.ListListings(ctx, d1.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestSQLStore_Listing_OptionalFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := mustAccount(t, s, "d", model.RoleDealer)
	l := &model.Listing{
		OwnerID: d.ID, Name: "Nexon", Brand: "Tata", Year: 2022, Kind: model.ListingRent,
		Price: 2500, PhotoReference: "nexon.jpg", Description: "Daily rental",
	}
	_, err := s.CreateListing(ctx, l)
	require.NoError(t, err)

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "nexon.jpg", got.PhotoReference)
	assert.Equal(t, "Daily rental", got.Description)
	assert.Equal(t, model.ListingRent, got.Kind)
	assert.True(t, got.CreatedAt.Equal(l.CreatedAt))

	bare := mustListing(t, s, d, "Alto")
	got, err = s.GetListing(ctx, bare.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PhotoReference)
	assert.Empty(t, got.Description)
}

func TestSQLStore_DeleteListing_CascadesRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	c1 := mustAccount(t, s, "c1", model.RoleCustomer)
	c2 := mustAccount(t, s, "c2", model.RoleCustomer)

	doomed := mustListing(t, s, dealer, "Swift")
	kept := mustListing(t, s, dealer, "Baleno")

	_, err := s.CreateRequest(ctx, doomed.ID, c1.ID, model.RequestBuy)
	require.NoError(t, err)
	_, err = s.CreateRequest(ctx, doomed.ID, c2.ID, model.RequestRent)
	require.NoError(t, err)
	survivor, err := s.CreateRequest(ctx, kept.ID, c1.ID, model.RequestBuy)
	require.NoError(t, err)

	removed, err := s.DeleteListing(ctx, dealer.ID, doomed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = s.GetListing(ctx, doomed.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	inbox, err := s.ListRequestsForDealer(ctx, dealer.ID, "")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, survivor.ID, inbox[0].ID)
}

func TestSQLStore_DeleteListing_WrongOwnerLeavesEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustAccount(t, s, "owner", model.RoleDealer)
	intruder := mustAccount(t, s, "intruder", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)

	l := mustListing(t, s, owner, "Swift")
	_, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestBuy)
	require.NoError(t, err)

	_, err = s.DeleteListing(ctx, intruder.ID, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetListing(ctx, l.ID)
	assert.NoError(t, err)

	inbox, err := s.ListRequestsForDealer(ctx, owner.ID, "")
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestSQLStore_CreateRequest_PendingPairGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)
	l := mustListing(t, s, dealer, "Swift")

	first, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestBuy)
	require.NoError(t, err)
	assert.Equal(t, dealer.ID, first.DealerID)
	assert.Equal(t, model.StatusPending, first.Status)

	_, err = s.CreateRequest(ctx, l.ID, customer.ID, model.RequestRent)
	assert.ErrorIs(t, err, ErrPendingExists)

	require.NoError(t, s.ResolveRequest(ctx, first.ID, dealer.ID, model.StatusRejected))

	again, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestRent)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestSQLStore_CreateRequest_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)
	l := mustListing(t, s, dealer, "Swift")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestBuy)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, ErrPendingExists) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestSQLStore_CreateRequest_CarriesDisplayFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)
	l := mustListing(t, s, dealer, "Swift")

	req, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestRent)
	require.NoError(t, err)
	assert.Equal(t, dealer.ID, req.DealerID)
	assert.Equal(t, "Swift", req.ListingName)
	assert.Equal(t, "Maruti", req.ListingBrand)
	assert.Equal(t, 2019, req.ListingYear)
	assert.Equal(t, model.ListingSell, req.ListingKind)
	assert.Equal(t, 500000.0, req.ListingPrice)
	assert.Equal(t, "customer", req.CustomerName)
	assert.Equal(t, "customer@upi", req.CustomerPayout)

	got, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ListingName, got.ListingName)
	assert.Equal(t, req.ListingPrice, got.ListingPrice)
	assert.Equal(t, req.CustomerName, got.CustomerName)
	assert.Equal(t, model.StatusPending, got.Status)

	// Requests of a deleted customer are still readable by id.
	_, err = s.DeleteAccount(ctx, customer.ID)
	require.NoError(t, err)
	got, err = s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CustomerName)
	assert.Equal(t, "Swift", got.ListingName)
}

func TestSQLStore_CreateRequest_ListingMissing(t *testing.T) {
	s := newTestStore(t)

	customer := mustAccount(t, s, "customer", model.RoleCustomer)

	_, err := s.CreateRequest(context.Background(), 12345, customer.ID, model.RequestBuy)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ResolveRequest_OnlyOnceAndOnlyByDealer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	otherDealer := mustAccount(t, s, "other", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)
	l := mustListing(t, s, dealer, "Swift")

	req, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestBuy)
	require.NoError(t, err)

	err = s.ResolveRequest(ctx, req.ID, otherDealer.ID, model.StatusAccepted)
	assert.ErrorIs(t, err, ErrNotPending)

	require.NoError(t, s.ResolveRequest(ctx, req.ID, dealer.ID, model.StatusAccepted))

	err = s.ResolveRequest(ctx, req.ID, dealer.ID, model.StatusRejected)
	assert.ErrorIs(t, err, ErrNotPending)

	got, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, got.Status)
}

func TestSQLStore_ListRequests_JoinedAndFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	c1 := mustAccount(t, s, "c1", model.RoleCustomer)
	c2 := mustAccount(t, s, "c2", model.RoleCustomer)
	l := mustListing(t, s, dealer, "Swift")

	r1, err := s.CreateRequest(ctx, l.ID, c1.ID, model.RequestBuy)
	require.NoError(t, err)
	r2, err := s.CreateRequest(ctx, l.ID, c2.ID, model.RequestRent)
	require.NoError(t, err)
	require.NoError(t, s.ResolveRequest(ctx, r1.ID, dealer.ID, model.StatusAccepted))

	all, err := s.ListRequestsForDealer(ctx, dealer.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, r2.ID, all[0].ID)
	assert.Equal(t, r1.ID, all[1].ID)
	assert.Equal(t, "Swift", all[0].ListingName)
	assert.Equal(t, "Maruti", all[0].ListingBrand)
	assert.Equal(t, 2019, all[0].ListingYear)
	assert.Equal(t, model.ListingSell, all[0].ListingKind)
	assert.Equal(t, 500000.0, all[0].ListingPrice)
	assert.Equal(t, "c2", all[0].CustomerName)
	assert.Equal(t, "c2@upi", all[0].CustomerPayout)

	accepted, err := s.ListRequestsForDealer(ctx, dealer.ID, model.StatusAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, r1.ID, accepted[0].ID)

	pending, err := s.ListRequestsForDealer(ctx, dealer.ID, model.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r2.ID, pending[0].ID)

	mine, err := s.ListRequestsForCustomer(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.StatusAccepted, mine[0].Status)

	none, err := s.ListRequestsForDealer(ctx, c1.ID, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLStore_GetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dealer := mustAccount(t, s, "dealer", model.RoleDealer)
	customer := mustAccount(t, s, "customer", model.RoleCustomer)
	l := mustListing(t, s, dealer, "Swift")
	_, err := s.CreateRequest(ctx, l.ID, customer.ID, model.RequestBuy)
	require.NoError(t, err)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", stats["dialect"])
	assert.Equal(t, int64(2), stats["total_accounts"])
	assert.Equal(t, map[string]int64{"Dealer": 1, "Customer": 1}, stats["accounts_by_role"])
	assert.Equal(t, map[string]int64{"Pending": 1}, stats["requests_by_status"])
}

func TestDialectFor(t *testing.T) {
	for name, want := range map[string]string{"": "sqlite", "sqlite": "sqlite", "postgres": "postgres", "postgresql": "postgres", "mysql": "mysql"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, want, d.Name)
	}

	_, err := DialectFor("mongodb")
	assert.Error(t, err)
}
