package models

import (
	"fmt"
	"time"

	"live-auction/internal/auctionerrors"
)

// AuctionStatus is the lifecycle state of an auction listing.
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
	AuctionSoldBid   AuctionStatus = "sold_bid"
	AuctionSoldOffer AuctionStatus = "sold_offer"
	AuctionCancelled AuctionStatus = "cancelled"
)

// BidStatus is the lifecycle state of a bid.
type BidStatus string

const (
	BidAccepted BidStatus = "accepted"
	BidOutbid   BidStatus = "outbid"
	BidRejected BidStatus = "rejected"
)

// OfferStatus is the lifecycle state of a direct purchase offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferCountered OfferStatus = "countered"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferExpired   OfferStatus = "expired"
)

// antiSnipeWindow is how close to the deadline a bid must land to trigger
// an end-time extension.
const antiSnipeWindow = 60 * time.Second

// User represents a participant in the marketplace.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Auction is a timed listing. Its price/leader/end-time fields are the single
// point of contention between concurrent bidders and must only be changed
// through the repository's conditional updates.
type Auction struct {
	AuctionID     string        `json:"auction_id"`
	SellerID      string        `json:"seller_id"`
	Title         string        `json:"title"`
	Currency      string        `json:"currency"`
	StartingPrice float64       `json:"starting_price"`
	ReservePrice  float64       `json:"reserve_price,omitempty"` // 0 = no reserve
	BuyNowPrice   float64       `json:"buy_now_price,omitempty"` // 0 = no buy-now
	CurrentBid    float64       `json:"current_bid"`
	LeaderID      string        `json:"leader_id,omitempty"`
	Status        AuctionStatus `json:"status"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	ExtendSeconds int           `json:"extend_seconds"`
	MinIncrement  float64       `json:"min_increment"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Bid represents a user's bid on an auction. Client metadata is kept for
// audit only and never exposed in public views.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	Status    BidStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	IP        string    `json:"-"`
	UserAgent string    `json:"-"`
}

// Offer is a direct purchase proposal. Counter-offers form a forward-only
// chain: parent -> child via CounterOfferID, never a cycle.
type Offer struct {
	OfferID        string      `json:"offer_id"`
	AuctionID      string      `json:"auction_id"`
	BuyerID        string      `json:"buyer_id"`
	Amount         float64     `json:"amount"`
	Status         OfferStatus `json:"status"`
	ExpiresAt      time.Time   `json:"expires_at"`
	CounterOfferID string      `json:"counter_offer_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Validate enforces the creation invariants of a listing.
func (a Auction) Validate() error {
	if a.Title == "" || a.SellerID == "" {
		return fmt.Errorf("auction %q: %w - missing title or seller", a.AuctionID, auctionerrors.ErrValidation)
	}
	if a.StartingPrice <= 0 {
		return fmt.Errorf("auction %q: %w - starting price must be positive", a.AuctionID, auctionerrors.ErrValidation)
	}
	if a.MinIncrement <= 0 {
		return fmt.Errorf("auction %q: %w - minimum increment must be positive", a.AuctionID, auctionerrors.ErrValidation)
	}
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("auction %q: %w - end time must be after start time", a.AuctionID, auctionerrors.ErrValidation)
	}
	if a.BuyNowPrice != 0 && a.BuyNowPrice <= a.StartingPrice {
		return fmt.Errorf("auction %q: %w - buy-now price must exceed starting price", a.AuctionID, auctionerrors.ErrValidation)
	}
	if a.ReservePrice != 0 && a.BuyNowPrice != 0 && a.ReservePrice > a.BuyNowPrice {
		return fmt.Errorf("auction %q: %w - reserve price must not exceed buy-now price", a.AuctionID, auctionerrors.ErrValidation)
	}
	if a.ExtendSeconds < 0 {
		return fmt.Errorf("auction %q: %w - extend seconds must not be negative", a.AuctionID, auctionerrors.ErrValidation)
	}
	return nil
}

// EffectiveStatus resolves the stored status against the clock: a scheduled
// auction inside its window reads as active, an active one past its deadline
// reads as ended. Terminal states are returned as stored.
func (a Auction) EffectiveStatus(now time.Time) AuctionStatus {
	switch a.Status {
	case AuctionScheduled, AuctionActive:
		if now.Before(a.StartTime) {
			return AuctionScheduled
		}
		if now.After(a.EndTime) {
			return AuctionEnded
		}
		return AuctionActive
	default:
		return a.Status
	}
}

// Terminal reports whether the stored status can never change again.
func (a Auction) Terminal() bool {
	switch a.Status {
	case AuctionEnded, AuctionSoldBid, AuctionSoldOffer, AuctionCancelled:
		return true
	}
	return false
}

// CanAcceptBids reports whether a bid submitted at now may be considered.
func (a Auction) CanAcceptBids(now time.Time) bool {
	return a.EffectiveStatus(now) == AuctionActive
}

// CanAcceptOffers reports whether a direct offer may be opened at now.
// Offers are allowed before the bidding window opens.
func (a Auction) CanAcceptOffers(now time.Time) bool {
	s := a.EffectiveStatus(now)
	return s == AuctionScheduled || s == AuctionActive
}

// MinimumBid returns the lowest amount the next bid must reach.
func (a Auction) MinimumBid() float64 {
	high := a.CurrentBid
	if a.StartingPrice > high {
		high = a.StartingPrice
	}
	return high + a.MinIncrement
}

// AntiSnipeEndTime returns the deadline after a bid accepted at now: extended
// by ExtendSeconds when the bid lands inside the anti-snipe window, unchanged
// otherwise. A zero ExtendSeconds disables extension entirely.
func (a Auction) AntiSnipeEndTime(now time.Time) time.Time {
	if a.ExtendSeconds == 0 {
		return a.EndTime
	}
	if a.EndTime.Sub(now) > antiSnipeWindow {
		return a.EndTime
	}
	return a.EndTime.Add(time.Duration(a.ExtendSeconds) * time.Second)
}

// ReserveMet reports whether the current price has reached the seller's
// reserve. Listings without a reserve always report true.
func (a Auction) ReserveMet() bool {
	return a.ReservePrice == 0 || a.CurrentBid >= a.ReservePrice
}

// Open reports whether an offer can still be countered or accepted.
func (o Offer) Open() bool {
	return o.Status == OfferPending || o.Status == OfferCountered
}
