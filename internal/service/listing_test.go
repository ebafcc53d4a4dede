package service

import (
	"context"
	"testing"

	"automind-api/internal/model"
	"automind-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingService_CreateListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	price := 650000.0

	l, err := f.listings.CreateListing(ctx, dealer, model.NewListing{
		Name:        " Baleno ",
		Brand:       "Maruti",
		Year:        2021,
		Kind:        "Sell",
		Price:       &price,
		Description: "single owner",
	})
	require.NoError(t, err)
	assert.NotZero(t, l.ID)
	assert.Equal(t, "Baleno", l.Name)
	assert.Equal(t, "dealer", l.DealerName)
	assert.Equal(t, "dealer@upi", l.DealerPayout)

	got, err := f.listings.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "single owner", got.Description)
	assert.Empty(t, got.PhotoReference)
	assert.Equal(t, 650000.0, got.Price)
}

func TestListingService_CreateListing_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dealer := f.signup(t, "dealer", "Dealer")
	customer := f.signup(t, "cust", "Customer")
	price := 100.0
	zero := 0.0

	tests := []struct {
		name   string
		caller *model.Account
		in     model.NewListing
		code   string
	}{
		{"customer", customer, model.NewListing{Name: "A", Brand: "B", Year: 2020, Kind: "Sell", Price: &price}, apierror.CodeForbidden},
		{"anonymous", nil, model.NewListing{Name: "A", Brand: "B", Year: 2020, Kind: "Sell", Price: &price}, apierror.CodeUnauthorized},
		{"missing price", dealer, model.NewListing{Name: "A", Brand: "B", Year: 2020, Kind: "Sell"}, apierror.CodeValidation},
		{"zero price", dealer, model.NewListing{Name: "A", Brand: "B", Year: 2020, Kind: "Sell", Price: &zero}, apierror.CodeValidation},
		{"bad kind", dealer, model.NewListing{Name: "A", Brand: "B", Year: 2020, Kind: "Lease", Price: &price}, apierror.CodeValidation},
		{"missing name", dealer, model.NewListing{Brand: "B", Year: 2020, Kind: "Rent", Price: &price}, apierror.CodeValidation},
		{"missing year", dealer, model.NewListing{Name: "A", Brand: "B", Kind: "Rent", Price: &price}, apierror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.listings.CreateListing(ctx, tt.caller, tt.in)
			assertCode(t, err, tt.code)
		})
	}

	all, err := f.listings.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListingService_ListByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d1 := f.signup(t, "d1", "Dealer")
	d2 := f.signup(t, "d2", "Dealer")
	customer := f.signup(t, "cust", "Customer")

	first := f.listing(t, d1, "Alto", model.ListingSell, 200000)
	f.listing(t, d2, "Innova", model.ListingRent, 3000)
	second := f.listing(t, d1, "Dzire", model.ListingRent, 1800)

	mine, err := f.listings.ListByOwner(ctx, d1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	none, err := f.listings.ListByOwner(ctx, customer)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := f.listings.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListingService_DeleteListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "owner", "Dealer")
	rival := f.signup(t, "rival", "Dealer")
	customer := f.signup(t, "cust", "Customer")
	car := f.listing(t, owner, "Verna", model.ListingSell, 800000)

	req, err := f.requests.CreateRequest(ctx, customer, car.ID, model.RequestBuy)
	require.NoError(t, err)

	assertCode(t, f.listings.DeleteListing(ctx, rival, car.ID), apierror.CodeForbidden)
	assertCode(t, f.listings.DeleteListing(ctx, customer, car.ID), apierror.CodeForbidden)
	assertCode(t, f.listings.DeleteListing(ctx, owner, 9999), apierror.CodeNotFound)
	assertCode(t, f.listings.DeleteListing(ctx, owner, 0), apierror.CodeValidation)

	require.NoError(t, f.listings.DeleteListing(ctx, owner, car.ID))

	_, err = f.listings.GetListing(ctx, car.ID)
	assertCode(t, err, apierror.CodeNotFound)

	_, err = f.requests.ResolveRequest(ctx, owner, req.ID, model.DecisionAccept)
	assertCode(t, err, apierror.CodeNotFound)

	mine, err := f.requests.RequestsForCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
