package helpers

import "time"

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title         string    `json:"title" binding:"required"`
	Currency      string    `json:"currency" binding:"required"`
	StartingPrice float64   `json:"starting_price" binding:"required,gt=0"`
	ReservePrice  float64   `json:"reserve_price" binding:"omitempty,gt=0"`
	BuyNowPrice   float64   `json:"buy_now_price" binding:"omitempty,gt=0"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	ExtendSeconds int       `json:"extend_seconds" binding:"omitempty,gte=0"`
	MinIncrement  float64   `json:"min_increment" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type CreateOfferRequest struct {
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

type CounterOfferRequest struct {
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

type OfferResponse struct {
	OfferID        string  `json:"offer_id"`
	AuctionID      string  `json:"auction_id"`
	BuyerID        string  `json:"buyer_id"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	ExpiresAt      string  `json:"expires_at"`
	CounterOfferID string  `json:"counter_offer_id,omitempty"`
}
