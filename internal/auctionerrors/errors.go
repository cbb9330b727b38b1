package auctionerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrNoBids          = errors.New("no bids found for auction")
)

// business logic errors
var (
	ErrValidation    = errors.New("invalid request")
	ErrState         = errors.New("operation not allowed in current auction state")
	ErrBidTooLow     = errors.New("bid amount too low")
	ErrExceedsBuyNow = errors.New("bid amount reaches buy-now price")
	ErrRaceLost      = errors.New("lost price update race")
	ErrAuth          = errors.New("missing or invalid identity")
)

// BidTooLowError reports the minimum acceptable amount so the caller can
// retry without guessing.
type BidTooLowError struct {
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount too low, minimum acceptable bid is %.2f", e.Minimum)
}

// Is makes BidTooLowError match ErrBidTooLow under errors.Is.
func (e *BidTooLowError) Is(target error) bool { return target == ErrBidTooLow }

// ExceedsBuyNowError reports the buy-now price a bid collided with; buying
// out is a separate purchase action, not reachable through bidding.
type ExceedsBuyNowError struct {
	BuyNowPrice float64
}

func (e *ExceedsBuyNowError) Error() string {
	return fmt.Sprintf("bid reaches buy-now price %.2f, use the buy-now action instead", e.BuyNowPrice)
}

// Is makes ExceedsBuyNowError match ErrExceedsBuyNow under errors.Is.
func (e *ExceedsBuyNowError) Is(target error) bool { return target == ErrExceedsBuyNow }
