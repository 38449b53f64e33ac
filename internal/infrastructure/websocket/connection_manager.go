package websocket

import (
	"context"
	"sync"

	"auction-marketplace/internal/domain"
	"auction-marketplace/pkg/logger"
)

// ConnectionManager tracks feed subscribers per listing and implements
// domain.ListingBroadcaster. It is observational only: broadcast
// failures drop the subscriber, never the event's cause.
type ConnectionManager struct {
	mu        sync.RWMutex
	byListing map[string]map[*Client]struct{}
	log       logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		byListing: make(map[string]map[*Client]struct{}),
		log:       log,
	}
}

func (cm *ConnectionManager) Register(listingID string, c *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.byListing[listingID] == nil {
		cm.byListing[listingID] = make(map[*Client]struct{})
	}
	cm.byListing[listingID][c] = struct{}{}

	cm.log.Info("Feed subscriber registered", "listing_id", listingID)
}

func (cm *ConnectionManager) Unregister(listingID string, c *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if subs, exists := cm.byListing[listingID]; exists {
		delete(subs, c)
		if len(subs) == 0 {
			delete(cm.byListing, listingID)
		}
	}

	cm.log.Info("Feed subscriber unregistered", "listing_id", listingID)
}

// SubscriberCount reports how many clients follow a listing's feed.
func (cm *ConnectionManager) SubscriberCount(listingID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.byListing[listingID])
}

// BroadcastToListing sends the event to every subscriber of the
// listing. Subscribers whose connection fails are dropped and closed.
func (cm *ConnectionManager) BroadcastToListing(ctx context.Context, listingID string, event *domain.ListingEvent) error {
	cm.mu.RLock()
	subs := make([]*Client, 0, len(cm.byListing[listingID]))
	for c := range cm.byListing[listingID] {
		subs = append(subs, c)
	}
	cm.mu.RUnlock()

	for _, c := range subs {
		if err := c.Send(event); err != nil {
			cm.log.Warn("Dropping feed subscriber", "listing_id", listingID, "error", err)
			cm.Unregister(listingID, c)
			c.Close()
		}
	}
	return nil
}
