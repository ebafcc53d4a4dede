package service

import (
	"context"
	"testing"

	"automind-api/internal/model"
	"automind-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	c1 := f.signup(t, "c1", "Customer")
	c2 := f.signup(t, "c2", "Customer")
	car := f.listing(t, dealer, "Swift", model.ListingSell, 500000)

	r1, err := f.requests.CreateRequest(ctx, c1, car.ID, model.RequestBuy)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r1.Status)
	assert.Equal(t, dealer.ID, r1.DealerID)
	assert.Equal(t, "Swift", r1.ListingName)
	assert.Equal(t, 500000.0, r1.ListingPrice)
	assert.Equal(t, "c1", r1.CustomerName)

	r2, err := f.requests.CreateRequest(ctx, c2, car.ID, model.RequestBuy)
	require.NoError(t, err)

	_, err = f.requests.CreateRequest(ctx, c1, car.ID, model.RequestRent)
	assertCode(t, err, apierror.CodeConflict)

	inbox, err := f.requests.RequestsForDealer(ctx, dealer, model.StatusPending)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, r2.ID, inbox[0].ID)
	assert.Equal(t, "c2", inbox[0].CustomerName)
	assert.Equal(t, "Swift", inbox[0].ListingName)

	accepted, err := f.requests.ResolveRequest(ctx, dealer, r1.ID, model.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, accepted.Status)
	assert.Equal(t, "Swift", accepted.ListingName)
	assert.Equal(t, "c1", accepted.CustomerName)

	pending, err := f.requests.RequestsForDealer(ctx, dealer, model.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r2.ID, pending[0].ID)

	rejected, err := f.requests.ResolveRequest(ctx, dealer, r2.ID, "Reject")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)

	history, err := f.requests.AcceptedForDealer(ctx, dealer)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, r1.ID, history[0].ID)

	// Terminal requests no longer block new ones for the same pair.
	retry, err := f.requests.CreateRequest(ctx, c2, car.ID, model.RequestRent)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, retry.Status)
	assert.NotEqual(t, r2.ID, retry.ID)

	again, err := f.requests.CreateRequest(ctx, c1, car.ID, model.RequestBuy)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, again.Status)

	mine, err := f.requests.RequestsForCustomer(ctx, c1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, again.ID, mine[0].ID)
	assert.Equal(t, model.StatusAccepted, mine[1].Status)

	all, err := f.requests.RequestsForDealer(ctx, dealer, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRequestService_ResolveTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	customer := f.signup(t, "cust", "Customer")
	car := f.listing(t, dealer, "City", model.ListingRent, 2500)

	for _, first := range []model.Decision{model.DecisionAccept, model.DecisionReject} {
		req, err := f.requests.CreateRequest(ctx, customer, car.ID, model.RequestRent)
		require.NoError(t, err)

		_, err = f.requests.ResolveRequest(ctx, dealer, req.ID, first)
		require.NoError(t, err)

		for _, next := range []model.Decision{model.DecisionAccept, model.DecisionReject} {
			_, err = f.requests.ResolveRequest(ctx, dealer, req.ID, next)
			assertCode(t, err, apierror.CodeInvalidTransition)
		}

		got, err := f.store.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		assert.True(t, got.Status.Terminal())
	}
}

func TestRequestService_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	rival := f.signup(t, "rival", "Dealer")
	customer := f.signup(t, "cust", "Customer")
	mechanic := f.signup(t, "mech", "Mechanic")
	car := f.listing(t, dealer, "Creta", model.ListingSell, 1200000)

	_, err := f.requests.CreateRequest(ctx, dealer, car.ID, model.RequestBuy)
	assertCode(t, err, apierror.CodeForbidden)
	_, err = f.requests.CreateRequest(ctx, mechanic, car.ID, model.RequestBuy)
	assertCode(t, err, apierror.CodeForbidden)
	_, err = f.requests.CreateRequest(ctx, nil, car.ID, model.RequestBuy)
	assertCode(t, err, apierror.CodeUnauthorized)

	req, err := f.requests.CreateRequest(ctx, customer, car.ID, model.RequestBuy)
	require.NoError(t, err)

	_, err = f.requests.ResolveRequest(ctx, rival, req.ID, model.DecisionAccept)
	assertCode(t, err, apierror.CodeForbidden)
	_, err = f.requests.ResolveRequest(ctx, customer, req.ID, model.DecisionAccept)
	assertCode(t, err, apierror.CodeForbidden)

	_, err = f.requests.RequestsForDealer(ctx, customer, "")
	assertCode(t, err, apierror.CodeForbidden)

	got, err := f.store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestRequestService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	customer := f.signup(t, "cust", "Customer")
	car := f.listing(t, dealer, "Nexon", model.ListingSell, 900000)

	_, err := f.requests.CreateRequest(ctx, customer, car.ID, "Lease")
	assertCode(t, err, apierror.CodeValidation)
	_, err = f.requests.CreateRequest(ctx, customer, 0, model.RequestBuy)
	assertCode(t, err, apierror.CodeValidation)
	_, err = f.requests.CreateRequest(ctx, customer, 4242, model.RequestBuy)
	assertCode(t, err, apierror.CodeNotFound)

	req, err := f.requests.CreateRequest(ctx, customer, car.ID, model.RequestBuy)
	require.NoError(t, err)

	_, err = f.requests.ResolveRequest(ctx, dealer, req.ID, "maybe")
	assertCode(t, err, apierror.CodeValidation)
	_, err = f.requests.ResolveRequest(ctx, dealer, 0, model.DecisionAccept)
	assertCode(t, err, apierror.CodeValidation)
	_, err = f.requests.ResolveRequest(ctx, dealer, 4242, model.DecisionAccept)
	assertCode(t, err, apierror.CodeNotFound)

	_, err = f.requests.RequestsForDealer(ctx, dealer, "Cancelled")
	assertCode(t, err, apierror.CodeValidation)
}

func TestRequestService_OrphanedListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	c1 := f.signup(t, "c1", "Customer")
	c2 := f.signup(t, "c2", "Customer")
	car := f.listing(t, dealer, "Brezza", model.ListingSell, 950000)

	_, err := f.requests.CreateRequest(ctx, c1, car.ID, model.RequestBuy)
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteAccount(ctx, dealer))

	_, err = f.listings.GetListing(ctx, car.ID)
	assertCode(t, err, apierror.CodeNotFound)

	_, err = f.requests.CreateRequest(ctx, c2, car.ID, model.RequestBuy)
	assertCode(t, err, apierror.CodeNotFound)

	// The existing request survives the dealer's deletion.
	mine, err := f.requests.RequestsForCustomer(ctx, c1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRequestService_EmptyListsAreNonNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	customer := f.signup(t, "cust", "Customer")

	inbox, err := f.requests.RequestsForDealer(ctx, dealer, "")
	require.NoError(t, err)
	assert.NotNil(t, inbox)
	assert.Empty(t, inbox)

	mine, err := f.requests.RequestsForCustomer(ctx, customer)
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)
}
