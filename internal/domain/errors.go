package domain

import "errors"

// Caller-facing failures. Every bad input maps to one of these;
// a too-low bid is deliberately not among them (it is ignored, not
// refused).
var (
	ErrInvalidCredentials = errors.New("invalid user/pass combination")
	ErrInvalidToken       = errors.New("unrecognized auth token")
	ErrUnknownListing     = errors.New("unknown listing id")
	ErrSelfBidding        = errors.New("purchasing on your own listing is not allowed")
	ErrNoBuyItNowOption   = errors.New("listing has no buy-it-now price")
)
