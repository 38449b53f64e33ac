package services

import (
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/domain"
	"auction-marketplace/pkg/utils"
)

// ListingFactory constructs open listings with a fresh identity.
type ListingFactory struct {
	clk clock.Clock
}

func NewListingFactory(clk clock.Clock) *ListingFactory {
	return &ListingFactory{clk: clk}
}

// CreateListing assigns a fresh listing id and captures the start time
// from the clock. Price ordering is not validated here; that is the
// caller's concern.
func (f *ListingFactory) CreateListing(owner string, startingPrice float64, buyItNowPrice *float64, auctionLengthDays int) *domain.Listing {
	return domain.NewListing(f.clk, utils.GenerateID("listing"), owner, startingPrice, buyItNowPrice, auctionLengthDays)
}
