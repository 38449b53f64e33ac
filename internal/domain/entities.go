package domain

import (
	"time"
)

// Bid is the best offer currently held against a listing.
type Bid struct {
	Bidder string
	Amount float64
}

type FeeType string

const (
	ListingFee  FeeType = "listing_fee"
	BuyItNowFee FeeType = "buy_it_now_fee"
	PurchaseFee FeeType = "purchase_fee"
)

// InvoiceLine is one charge attributable to a listing and a party.
// Lines are derived on demand and never stored.
type InvoiceLine struct {
	ListingID string  `json:"listing_id"`
	Fee       FeeType `json:"fee"`
	Amount    float64 `json:"amount"`
}

type ListingEvent struct {
	Type      ListingEventType `json:"type"`
	ListingID string           `json:"listing_id"`
	UserID    string           `json:"user_id,omitempty"`
	Amount    float64          `json:"amount,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type ListingEventType string

const (
	BidAccepted       ListingEventType = "bid_accepted"
	BidRejected       ListingEventType = "bid_rejected"
	ListingEnded      ListingEventType = "listing_ended"
	BoughtViaBuyItNow ListingEventType = "bought_buy_it_now"
)
