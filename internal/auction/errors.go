package auction

import "errors"

// Reason strings for stopped and expired purchases are kept stable;
// API clients match on them.
var (
	ErrInvalidPricing    = errors.New("incorrect starting price")
	ErrNotAuthorized     = errors.New("not the owner")
	ErrNotFound          = errors.New("auction not found")
	ErrStopped           = errors.New("Stopped!")
	ErrExpired           = errors.New("Endet!")
	ErrInsufficientValue = errors.New("offered value below current price")
)
