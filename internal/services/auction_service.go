package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-marketplace/internal/domain"
	"auction-marketplace/pkg/logger"
	"auction-marketplace/pkg/utils"
)

const (
	listingFeeAmount  = 5.00
	buyItNowFeeAmount = 2.25
)

// Seed credentials: two sellers and two buyers. Demo data, fixed at
// compile time.
var seedUsers = map[string]string{
	"default.seller@acme.com": "letsSell",
	"fred.seller@acme.com":    "sellingIsFun",
	"sally.buyer@acme.com":    "gotToBuy",
	"george.buyer@acme.com":   "sallyIsAnnoying",
}

// AuctionService authenticates callers, routes operations to the right
// listing and derives invoices from listing outcome. Auth tokens are
// issued once per known user at construction; Login only hands out the
// pre-issued token, so repeated logins return the same value.
type AuctionService struct {
	factory     *ListingFactory
	broadcaster domain.ListingBroadcaster
	log         logger.Logger

	// Built once in NewAuctionService, read-only afterwards.
	userPass    map[string]string
	userToToken map[string]string
	tokenToUser map[string]string

	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

func NewAuctionService(factory *ListingFactory, broadcaster domain.ListingBroadcaster, log logger.Logger) *AuctionService {
	s := &AuctionService{
		factory:     factory,
		broadcaster: broadcaster,
		log:         log,
		userPass:    make(map[string]string, len(seedUsers)),
		userToToken: make(map[string]string, len(seedUsers)),
		tokenToUser: make(map[string]string, len(seedUsers)),
		listings:    make(map[string]*domain.Listing),
	}

	for user, pass := range seedUsers {
		token := utils.GenerateID("token")
		s.userPass[user] = pass
		s.userToToken[user] = token
		s.tokenToUser[token] = user
	}

	return s
}

// Login verifies credentials and returns the user's token. Idempotent:
// the same valid credentials always yield the same token.
func (s *AuctionService) Login(ctx context.Context, username, password string) (string, error) {
	expected, ok := s.userPass[username]
	if !ok || password == "" || password != expected {
		return "", domain.ErrInvalidCredentials
	}
	return s.userToToken[username], nil
}

// CreateListing opens a new listing owned by the token's user and
// registers it. Returns the listing id.
func (s *AuctionService) CreateListing(ctx context.Context, token string, startingPrice float64, buyItNowPrice *float64, auctionLengthDays int) (string, error) {
	owner, err := s.resolveToken(token)
	if err != nil {
		return "", err
	}

	listing := s.factory.CreateListing(owner, startingPrice, buyItNowPrice, auctionLengthDays)

	s.mu.Lock()
	s.listings[listing.ID()] = listing
	s.mu.Unlock()

	s.log.Info("Listing created",
		"listing_id", listing.ID(),
		"owner", owner,
		"starting_price", startingPrice,
		"length_days", auctionLengthDays)
	return listing.ID(), nil
}

// Bid places a bid on behalf of the token's user. A bid that does not
// beat the current one (or arrives after closure) is silently ignored;
// only invalid tokens, unknown listings and self-bidding are errors.
func (s *AuctionService) Bid(ctx context.Context, token, listingID string, amount float64) error {
	bidder, err := s.resolveToken(token)
	if err != nil {
		return err
	}
	listing, err := s.findListing(listingID)
	if err != nil {
		return err
	}
	if bidder == listing.Owner() {
		return domain.ErrSelfBidding
	}

	if listing.Closed() {
		s.publish(ctx, &domain.ListingEvent{
			Type:      domain.ListingEnded,
			ListingID: listingID,
			UserID:    bidder,
			Timestamp: time.Now(),
		})
		return nil
	}

	if listing.Bid(bidder, amount) {
		s.log.Info("Bid accepted", "listing_id", listingID, "bidder", bidder, "amount", amount)
		s.publish(ctx, &domain.ListingEvent{
			Type:      domain.BidAccepted,
			ListingID: listingID,
			UserID:    bidder,
			Amount:    amount,
			Timestamp: time.Now(),
		})
		return nil
	}

	s.log.Debug("Bid ignored", "listing_id", listingID, "bidder", bidder, "amount", amount)
	s.publish(ctx, &domain.ListingEvent{
		Type:      domain.BidRejected,
		ListingID: listingID,
		UserID:    bidder,
		Amount:    amount,
		Timestamp: time.Now(),
	})
	return nil
}

// BuyItNow purchases the listing outright at its buy-it-now price on
// behalf of the token's user. Fails when the option was never
// configured.
func (s *AuctionService) BuyItNow(ctx context.Context, token, listingID string) error {
	buyer, err := s.resolveToken(token)
	if err != nil {
		return err
	}
	listing, err := s.findListing(listingID)
	if err != nil {
		return err
	}
	if buyer == listing.Owner() {
		return domain.ErrSelfBidding
	}
	price, ok := listing.BuyItNowPrice()
	if !ok {
		return domain.ErrNoBuyItNowOption
	}

	if listing.BuyItNow(buyer) {
		s.log.Info("Listing bought via buy-it-now", "listing_id", listingID, "buyer", buyer, "price", price)
		s.publish(ctx, &domain.ListingEvent{
			Type:      domain.BoughtViaBuyItNow,
			ListingID: listingID,
			UserID:    buyer,
			Amount:    price,
			Timestamp: time.Now(),
		})
	}
	return nil
}

// FetchInvoices derives the requester's charges for one listing. The
// owner pays for having listed, outcome notwithstanding: a listing fee
// plus a buy-it-now fee when the option was configured. The winner pays
// the winning price. Anyone else owes nothing. Owner and winner are
// mutually exclusive because self-bidding is rejected up front.
func (s *AuctionService) FetchInvoices(ctx context.Context, token, listingID string) ([]domain.InvoiceLine, error) {
	requester, err := s.resolveToken(token)
	if err != nil {
		return nil, err
	}
	listing, err := s.findListing(listingID)
	if err != nil {
		return nil, err
	}

	// Reading the winner forces expiry evaluation.
	winner, hasWinner := listing.WinningUser()

	lines := make([]domain.InvoiceLine, 0, 2)
	switch {
	case requester == listing.Owner():
		lines = append(lines, domain.InvoiceLine{ListingID: listingID, Fee: domain.ListingFee, Amount: listingFeeAmount})
		if _, ok := listing.BuyItNowPrice(); ok {
			lines = append(lines, domain.InvoiceLine{ListingID: listingID, Fee: domain.BuyItNowFee, Amount: buyItNowFeeAmount})
		}
	case hasWinner && requester == winner:
		price, _ := listing.WinningPrice()
		lines = append(lines, domain.InvoiceLine{ListingID: listingID, Fee: domain.PurchaseFee, Amount: price})
	}
	return lines, nil
}

// Authenticate resolves a token to its user. Used by adapters that need
// the caller's identity without performing an operation.
func (s *AuctionService) Authenticate(token string) (string, error) {
	return s.resolveToken(token)
}

// HasListing reports whether a listing id is registered.
func (s *AuctionService) HasListing(listingID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.listings[listingID]
	return ok
}

func (s *AuctionService) resolveToken(token string) (string, error) {
	user, ok := s.tokenToUser[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	return user, nil
}

func (s *AuctionService) findListing(listingID string) (*domain.Listing, error) {
	s.mu.RLock()
	listing, ok := s.listings[listingID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownListing, listingID)
	}
	return listing, nil
}

func (s *AuctionService) publish(ctx context.Context, event *domain.ListingEvent) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.BroadcastToListing(ctx, event.ListingID, event); err != nil {
		s.log.Warn("Failed to broadcast listing event", "listing_id", event.ListingID, "error", err)
	}
}
