package domain

import (
	"context"
)

// ListingBroadcaster fans listing events out to interested observers.
// Broadcasting is observational only; implementations must never feed
// back into listing state.
type ListingBroadcaster interface {
	BroadcastToListing(ctx context.Context, listingID string, event *ListingEvent) error
}
