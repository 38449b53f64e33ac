package domain

import (
	"sync"
	"time"

	"auction-marketplace/internal/clock"
)

// Listing is one seller's auction for a single item. It moves from open
// to closed exactly once, either through a buy-it-now purchase or
// because its end time has passed. Expiry is detected lazily: every
// closure-sensitive operation re-evaluates it on entry, there is no
// background timer.
//
// All mutating and closure-evaluating operations serialize on a single
// mutex. Nothing here spans more than one listing.
type Listing struct {
	clk           clock.Clock
	id            string
	owner         string
	startingPrice float64
	buyItNowPrice *float64
	lengthDays    int
	startTime     time.Time
	endTime       time.Time

	mu                sync.Mutex
	currentBid        *Bid
	closed            bool
	boughtViaBuyItNow bool
	winner            string
	winningPrice      float64
	hasWinner         bool
}

// NewListing builds an open listing. The start time is captured once
// from the clock; the end time is start plus the auction length in
// calendar days and is never recomputed.
func NewListing(clk clock.Clock, id, owner string, startingPrice float64, buyItNowPrice *float64, lengthDays int) *Listing {
	start := clk.Now()
	return &Listing{
		clk:           clk,
		id:            id,
		owner:         owner,
		startingPrice: startingPrice,
		buyItNowPrice: buyItNowPrice,
		lengthDays:    lengthDays,
		startTime:     start,
		endTime:       start.AddDate(0, 0, lengthDays),
	}
}

// Bid records a new best offer. The first bid must meet the starting
// price; every later bid must strictly beat the current one. A losing
// or late bid changes nothing; it is reported as not accepted rather
// than as an error.
func (l *Listing) Bid(user string, amount float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closeIfExpired() {
		return false
	}

	if l.currentBid == nil {
		if amount < l.startingPrice {
			return false
		}
	} else if amount <= l.currentBid.Amount {
		return false
	}

	l.currentBid = &Bid{Bidder: user, Amount: amount}
	return true
}

// BuyItNow closes the listing immediately, recording user as winner at
// the configured buy-it-now price. It reports false without effect if
// the listing is already closed or has no buy-it-now price.
func (l *Listing) BuyItNow(user string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closeIfExpired() || l.buyItNowPrice == nil {
		return false
	}

	l.closed = true
	l.boughtViaBuyItNow = true
	l.winner = user
	l.winningPrice = *l.buyItNowPrice
	l.hasWinner = true
	return true
}

// Closed reports whether the listing has ended, transitioning it first
// if the end time has passed. This is the only path by which natural
// expiry is detected.
func (l *Listing) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeIfExpired()
}

// closeIfExpired must be called with l.mu held. On the first evaluation
// past the end time it closes the listing and, if a bid exists,
// promotes it to winner. Winner and winning price are set at most once.
func (l *Listing) closeIfExpired() bool {
	if l.closed {
		return true
	}
	if !l.clk.Now().After(l.endTime) {
		return false
	}

	l.closed = true
	if l.currentBid != nil {
		l.winner = l.currentBid.Bidder
		l.winningPrice = l.currentBid.Amount
		l.hasWinner = true
	}
	return true
}

// WinningUser forces expiry evaluation, then reports the winner. The
// second result is false while the listing is open or when it closed
// without a winner.
func (l *Listing) WinningUser() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeIfExpired()
	return l.winner, l.hasWinner
}

// WinningPrice forces expiry evaluation, then reports the price the
// winner pays.
func (l *Listing) WinningPrice() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeIfExpired()
	return l.winningPrice, l.hasWinner
}

func (l *Listing) BoughtViaBuyItNow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.boughtViaBuyItNow
}

// CurrentBid reports the best offer so far. The second result is false
// while no bid has been accepted.
func (l *Listing) CurrentBid() (Bid, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.currentBid == nil {
		return Bid{}, false
	}
	return *l.currentBid, true
}

func (l *Listing) ID() string {
	return l.id
}

func (l *Listing) Owner() string {
	return l.owner
}

func (l *Listing) StartingPrice() float64 {
	return l.startingPrice
}

// BuyItNowPrice reports the immediate-purchase price. The second result
// is false when the option was not configured.
func (l *Listing) BuyItNowPrice() (float64, bool) {
	if l.buyItNowPrice == nil {
		return 0, false
	}
	return *l.buyItNowPrice, true
}

func (l *Listing) AuctionLength() int {
	return l.lengthDays
}

func (l *Listing) StartTime() time.Time {
	return l.startTime
}

func (l *Listing) EndTime() time.Time {
	return l.endTime
}
