package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"live-auction/internal/auctionerrors"
	"live-auction/internal/hub"
	model "live-auction/internal/models"
	"live-auction/internal/repository"
	"live-auction/internal/snapshot"
	"live-auction/utils"
)

// Broadcaster is the slice of the hub the ledger needs: signal a room after a
// committed mutation and read its size for snapshots.
type Broadcaster interface {
	Notify(auctionID, event string)
	OnlineCount(auctionID string) int
}

// OfferCanceller lets the ledger expire offers overtaken by a higher bid.
type OfferCanceller interface {
	CancelOffersBelowBid(auctionID string, bidAmount float64) error
}

// BidMeta is client metadata recorded with each bid for audit only.
type BidMeta struct {
	IP        string
	UserAgent string
}

// LedgerService validates and atomically applies bids against the auction
// record. One explicit orchestrated operation per bid: validate, conditional
// update, persist, signal.
type LedgerService struct {
	repo      repository.AuctionDB
	offers    OfferCanceller
	broadcast Broadcaster
	snapshots *snapshot.Builder
	now       func() time.Time
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(repo repository.AuctionDB, offers OfferCanceller, broadcast Broadcaster, snapshots *snapshot.Builder) *LedgerService {
	return &LedgerService{
		repo:      repo,
		offers:    offers,
		broadcast: broadcast,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// CreateAuction validates and stores a new listing for a seller.
func (s *LedgerService) CreateAuction(a model.Auction) (model.Auction, error) {
	a.AuctionID = utils.GenerateID()
	a.Status = model.AuctionScheduled
	a.CurrentBid = a.StartingPrice
	a.LeaderID = ""
	a.CreatedAt = s.now().UTC()

	if err := a.Validate(); err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	if err := s.repo.CreateAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return a, nil
}

// GetAuction returns one listing.
func (s *LedgerService) GetAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListOpenAuctions returns every listing still open for bidding or offers.
func (s *LedgerService) ListOpenAuctions() ([]model.Auction, error) {
	auctions, err := s.repo.ListOpenAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// Snapshot returns the public view of one auction.
func (s *LedgerService) Snapshot(auctionID string) (snapshot.Snapshot, error) {
	if auctionID == "" {
		return snapshot.Snapshot{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	snap, err := s.snapshots.Build(auctionID, s.broadcast.OnlineCount(auctionID))
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to build snapshot for auction %s: %w", auctionID, err)
	}
	return snap, nil
}

// SubmitBid validates a bid, applies it through the atomic conditional
// update, expires overtaken offers and signals the room. ErrRaceLost is an
// expected outcome under contention: the caller re-reads the snapshot and may
// resubmit.
func (s *LedgerService) SubmitBid(auctionID, bidderID string, amount float64, meta BidMeta) (snapshot.Snapshot, error) {
	if err := validateAmount(auctionID, bidderID, amount); err != nil {
		return snapshot.Snapshot{}, err
	}
	amount = math.Round(amount*100) / 100 // cent precision

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	now := s.now()
	if !a.CanAcceptBids(now) {
		return snapshot.Snapshot{}, fmt.Errorf("service: auction %s is not accepting bids: %w", auctionID, auctionerrors.ErrState)
	}
	if minimum := a.MinimumBid(); amount < minimum {
		return snapshot.Snapshot{}, fmt.Errorf("service: bid on auction %s: %w", auctionID, &auctionerrors.BidTooLowError{Minimum: minimum})
	}
	if a.BuyNowPrice != 0 && amount >= a.BuyNowPrice {
		return snapshot.Snapshot{}, fmt.Errorf("service: bid on auction %s: %w", auctionID, &auctionerrors.ExceedsBuyNowError{BuyNowPrice: a.BuyNowPrice})
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: now.UTC(),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if _, err := s.repo.ApplyBid(bid, now); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to apply bid for auction %s: %w", auctionID, err)
	}

	// Offers below the new price are stale from this point on. Failure here
	// never rolls back the committed bid.
	if err := s.offers.CancelOffersBelowBid(auctionID, amount); err != nil {
		utils.Error("failed to expire offers under new bid", map[string]any{
			"auction_id": auctionID,
			"amount":     amount,
			"error":      err.Error(),
		})
	}

	s.broadcast.Notify(auctionID, hub.EventBidUpdate)
	return s.Snapshot(auctionID)
}

// BuyNow closes the auction instantly at its buy-now price. A distinct
// purchase action: bids at or above the buy-now price are rejected instead of
// being reinterpreted as purchases.
func (s *LedgerService) BuyNow(auctionID, buyerID string, meta BidMeta) (snapshot.Snapshot, error) {
	if auctionID == "" || buyerID == "" {
		return snapshot.Snapshot{}, fmt.Errorf("service: %w - missing auctionID or buyerID", auctionerrors.ErrValidation)
	}

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if a.BuyNowPrice == 0 {
		return snapshot.Snapshot{}, fmt.Errorf("service: auction %s has no buy-now price: %w", auctionID, auctionerrors.ErrState)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  buyerID,
		Amount:    a.BuyNowPrice,
		CreatedAt: s.now().UTC(),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if _, err := s.repo.BuyNow(bid, s.now()); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to buy now on auction %s: %w", auctionID, err)
	}

	// Every open offer sits strictly below the buy-now price, so this clears
	// them all.
	if err := s.offers.CancelOffersBelowBid(auctionID, a.BuyNowPrice); err != nil {
		utils.Error("failed to expire offers after buy-now", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
	}

	s.broadcast.Notify(auctionID, hub.EventBidUpdate)
	return s.Snapshot(auctionID)
}

// CancelAuction cancels a listing. Pre-bid only: a listing with a leader can
// no longer be withdrawn. Seller-only is policy enforced here, not in the
// state machine.
func (s *LedgerService) CancelAuction(auctionID, sellerID string) (snapshot.Snapshot, error) {
	if auctionID == "" || sellerID == "" {
		return snapshot.Snapshot{}, fmt.Errorf("service: %w - missing auctionID or sellerID", auctionerrors.ErrValidation)
	}

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if a.SellerID != sellerID {
		return snapshot.Snapshot{}, fmt.Errorf("service: only the seller may cancel auction %s: %w", auctionID, auctionerrors.ErrAuth)
	}
	if a.LeaderID != "" {
		return snapshot.Snapshot{}, fmt.Errorf("service: auction %s already has bids: %w", auctionID, auctionerrors.ErrState)
	}

	if _, err := s.repo.CancelAuction(auctionID); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to cancel auction %s: %w", auctionID, err)
	}

	s.broadcast.Notify(auctionID, hub.EventSnapshot)
	return s.Snapshot(auctionID)
}

// GetBidHistory returns all bids for an auction, oldest first.
func (s *LedgerService) GetBidHistory(auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	bids, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// validateAmount checks input validity before any storage round-trip.
func validateAmount(auctionID, bidderID string, amount float64) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrValidation)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("service: %w - bid amount must be a positive monetary value", auctionerrors.ErrValidation)
	}
	return nil
}
