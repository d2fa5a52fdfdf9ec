package domain

import "errors"

var (
	ErrListingNotFound      = errors.New("auction item not found")
	ErrBidTooLow            = errors.New("bid amount must be higher than the current price")
	ErrInvalidStartingPrice = errors.New("starting price must be greater than zero")
)
