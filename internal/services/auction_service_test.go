package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/domain"
	"auction-marketplace/internal/services"
	"auction-marketplace/pkg/logger"
)

const (
	defaultSeller = "default.seller@acme.com"
	fredSeller    = "fred.seller@acme.com"
	sallyBuyer    = "sally.buyer@acme.com"
	georgeBuyer   = "george.buyer@acme.com"
)

var passwords = map[string]string{
	defaultSeller: "letsSell",
	fredSeller:    "sellingIsFun",
	sallyBuyer:    "gotToBuy",
	georgeBuyer:   "sallyIsAnnoying",
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time { return f.t }

func ptr(f float64) *float64 { return &f }

func newTestService(t *testing.T) (*services.AuctionService, *clock.Adjustable) {
	t.Helper()
	clk := clock.NewAdjustable(fixedClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)})
	svc := services.NewAuctionService(services.NewListingFactory(clk), nil, logger.NewNop())
	return svc, clk
}

func login(t *testing.T, svc *services.AuctionService, user string) string {
	t.Helper()
	token, err := svc.Login(context.Background(), user, passwords[user])
	require.NoError(t, err)
	return token
}

func TestLogin_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	first := login(t, svc, sallyBuyer)
	second := login(t, svc, sallyBuyer)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestLogin_DistinctUsersGetDistinctTokens(t *testing.T) {
	svc, _ := newTestService(t)

	assert.NotEqual(t, login(t, svc, sallyBuyer), login(t, svc, georgeBuyer))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown_user", "nobody@acme.com", "whatever"},
		{"wrong_password", sallyBuyer, "notHerPassword"},
		{"empty_password", sallyBuyer, ""},
		{"empty_username", "", "gotToBuy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestOperations_RejectUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, "never-issued", 100.00, nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	assert.ErrorIs(t, svc.Bid(ctx, "never-issued", "listing-x", 100.00), domain.ErrInvalidToken)
	assert.ErrorIs(t, svc.BuyItNow(ctx, "never-issued", "listing-x"), domain.ErrInvalidToken)

	_, err = svc.FetchInvoices(ctx, "never-issued", "listing-x")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestOperations_RejectUnknownListing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	token := login(t, svc, sallyBuyer)

	assert.ErrorIs(t, svc.Bid(ctx, token, "listing-missing", 100.00), domain.ErrUnknownListing)
	assert.ErrorIs(t, svc.BuyItNow(ctx, token, "listing-missing"), domain.ErrUnknownListing)

	_, err := svc.FetchInvoices(ctx, token, "listing-missing")
	assert.ErrorIs(t, err, domain.ErrUnknownListing)
}

func TestOwnerCannotBidOrBuyOwnListing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ownerToken := login(t, svc, defaultSeller)

	listingID, err := svc.CreateListing(ctx, ownerToken, 100.00, ptr(250.00), 5)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Bid(ctx, ownerToken, listingID, 150.00), domain.ErrSelfBidding)
	assert.ErrorIs(t, svc.BuyItNow(ctx, ownerToken, listingID), domain.ErrSelfBidding)
}

func TestBuyItNow_FailsWithoutConfiguredOption(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ownerToken := login(t, svc, defaultSeller)
	buyerToken := login(t, svc, sallyBuyer)

	listingID, err := svc.CreateListing(ctx, ownerToken, 100.00, nil, 5)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.BuyItNow(ctx, buyerToken, listingID), domain.ErrNoBuyItNowOption)
}

func TestBid_TooLowIsSilentlyIgnored(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ownerToken := login(t, svc, defaultSeller)
	buyerToken := login(t, svc, sallyBuyer)

	listingID, err := svc.CreateListing(ctx, ownerToken, 100.00, nil, 5)
	require.NoError(t, err)

	// Below the starting price: no error, no state change.
	assert.NoError(t, svc.Bid(ctx, buyerToken, listingID, 50.00))
}

// Buy-it-now outcome: the owner is billed for having listed with the
// option, the purchaser is billed the buy-it-now price, losing bidders
// owe nothing.
func TestInvoices_BuyItNowOutcome(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ownerToken := login(t, svc, defaultSeller)
	sallyToken := login(t, svc, sallyBuyer)
	georgeToken := login(t, svc, georgeBuyer)
	fredToken := login(t, svc, fredSeller)

	listingID, err := svc.CreateListing(ctx, ownerToken, 100.00, ptr(250.00), 5)
	require.NoError(t, err)

	require.NoError(t, svc.Bid(ctx, sallyToken, listingID, 102.00))
	require.NoError(t, svc.Bid(ctx, georgeToken, listingID, 105.50))
	require.NoError(t, svc.Bid(ctx, sallyToken, listingID, 106.99))

	require.NoError(t, svc.BuyItNow(ctx, fredToken, listingID))

	ownerLines, err := svc.FetchInvoices(ctx, ownerToken, listingID)
	require.NoError(t, err)
	assert.Equal(t, []domain.InvoiceLine{
		{ListingID: listingID, Fee: domain.ListingFee, Amount: 5.00},
		{ListingID: listingID, Fee: domain.BuyItNowFee, Amount: 2.25},
	}, ownerLines)

	fredLines, err := svc.FetchInvoices(ctx, fredToken, listingID)
	require.NoError(t, err)
	assert.Equal(t, []domain.InvoiceLine{
		{ListingID: listingID, Fee: domain.PurchaseFee, Amount: 250.00},
	}, fredLines)

	for _, token := range []string{sallyToken, georgeToken} {
		lines, err := svc.FetchInvoices(ctx, token, listingID)
		require.NoError(t, err)
		assert.Empty(t, lines)
	}
}

// Natural expiry outcome: the highest bidder becomes the winner at
// their bid amount once the clock passes the end time.
func TestInvoices_NaturalExpiryOutcome(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	ownerToken := login(t, svc, defaultSeller)
	sallyToken := login(t, svc, sallyBuyer)
	georgeToken := login(t, svc, georgeBuyer)

	listingID, err := svc.CreateListing(ctx, ownerToken, 100.00, nil, 5)
	require.NoError(t, err)

	require.NoError(t, svc.Bid(ctx, sallyToken, listingID, 102.00))
	require.NoError(t, svc.Bid(ctx, georgeToken, listingID, 105.50))
	require.NoError(t, svc.Bid(ctx, sallyToken, listingID, 106.99))

	clk.Advance(6 * 24 * time.Hour)

	ownerLines, err := svc.FetchInvoices(ctx, ownerToken, listingID)
	require.NoError(t, err)
	assert.Equal(t, []domain.InvoiceLine{
		{ListingID: listingID, Fee: domain.ListingFee, Amount: 5.00},
	}, ownerLines)

	sallyLines, err := svc.FetchInvoices(ctx, sallyToken, listingID)
	require.NoError(t, err)
	assert.Equal(t, []domain.InvoiceLine{
		{ListingID: listingID, Fee: domain.PurchaseFee, Amount: 106.99},
	}, sallyLines)

	georgeLines, err := svc.FetchInvoices(ctx, georgeToken, listingID)
	require.NoError(t, err)
	assert.Empty(t, georgeLines)
}

// Owner fees are charged for having listed, regardless of outcome.
func TestInvoices_OwnerBilledEvenWithoutSale(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	ownerToken := login(t, svc, fredSeller)
	listingID, err := svc.CreateListing(ctx, ownerToken, 100.00, ptr(250.00), 2)
	require.NoError(t, err)

	clk.Advance(3 * 24 * time.Hour)

	lines, err := svc.FetchInvoices(ctx, ownerToken, listingID)
	require.NoError(t, err)
	assert.Equal(t, []domain.InvoiceLine{
		{ListingID: listingID, Fee: domain.ListingFee, Amount: 5.00},
		{ListingID: listingID, Fee: domain.BuyItNowFee, Amount: 2.25},
	}, lines)
}

func TestCreateListing_AssignsDistinctIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ownerToken := login(t, svc, defaultSeller)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, err := svc.CreateListing(ctx, ownerToken, 100.00, nil, 5)
		require.NoError(t, err)
		assert.False(t, seen[id], "listing id reused: %s", id)
		seen[id] = true
		assert.True(t, svc.HasListing(id))
	}
	assert.False(t, svc.HasListing("listing-never-created"))
}

func TestAuthenticate_ResolvesTokenToUser(t *testing.T) {
	svc, _ := newTestService(t)

	token := login(t, svc, georgeBuyer)
	user, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, georgeBuyer, user)

	_, err = svc.Authenticate("bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
