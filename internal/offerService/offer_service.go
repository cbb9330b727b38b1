package offers

import (
	"context"
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

// maxCounterChain caps a negotiation at 16 linked offers. The chain is
// forward-only (parent -> child), so the cap turns a pathological
// counter-for-counter loop into a StateError instead of unbounded growth.
const maxCounterChain = 16

// defaultSweepInterval is the cadence of the background expiry pass.
const defaultSweepInterval = 60 * time.Second

// Broadcaster is the slice of the hub the negotiator needs.
type Broadcaster interface {
	Notify(auctionID, event string)
	OnlineCount(auctionID string) int
}

// OfferService manages proposal, counter-proposal, acceptance and expiry of
// direct purchase offers. It reacts to the bid ledger through
// CancelOffersBelowBid but never blocks it.
type OfferService struct {
	repo      repository.AuctionDB
	broadcast Broadcaster
	snapshots *snapshot.Builder
	now       func() time.Time
}

// NewOfferService creates a new OfferService instance
func NewOfferService(repo repository.AuctionDB, broadcast Broadcaster, snapshots *snapshot.Builder) *OfferService {
	return &OfferService{
		repo:      repo,
		broadcast: broadcast,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// CreateOffer opens a direct purchase proposal on a listing.
func (s *OfferService) CreateOffer(auctionID, buyerID string, amount float64, expiresAt time.Time) (model.Offer, error) {
	if err := s.validateOfferInput(auctionID, buyerID, amount, expiresAt); err != nil {
		return model.Offer{}, err
	}

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Offer{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if err := s.validateOfferAgainstAuction(a, amount); err != nil {
		return model.Offer{}, err
	}

	// At most one open offer per (auction, buyer).
	if _, err := s.repo.GetOpenOfferByBuyer(auctionID, buyerID); err == nil {
		return model.Offer{}, fmt.Errorf("service: buyer %s already has an open offer on auction %s: %w", buyerID, auctionID, auctionerrors.ErrState)
	}

	offer := model.Offer{
		OfferID:   utils.GenerateID(),
		AuctionID: auctionID,
		BuyerID:   buyerID,
		Amount:    math.Round(amount*100) / 100,
		Status:    model.OfferPending,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateOffer(offer); err != nil {
		return model.Offer{}, fmt.Errorf("service: failed to create offer for auction %s: %w", auctionID, err)
	}

	s.broadcast.Notify(auctionID, hub.EventOfferUpdate)
	return offer, nil
}

// CounterOffer answers a pending offer with a new amount, spawning the next
// link of the chain. The original offer becomes countered and keeps a forward
// link to the child. Seller-only: countering is the seller's half of the
// negotiation.
func (s *OfferService) CounterOffer(offerID, sellerID string, amount float64, expiresAt time.Time) (model.Offer, error) {
	if offerID == "" || sellerID == "" {
		return model.Offer{}, fmt.Errorf("service: %w - missing offerID or sellerID", auctionerrors.ErrValidation)
	}

	parent, err := s.repo.GetOffer(offerID)
	if err != nil {
		return model.Offer{}, fmt.Errorf("service: failed to load offer %s: %w", offerID, err)
	}
	if parent.Status != model.OfferPending {
		return model.Offer{}, fmt.Errorf("service: offer %s is not pending: %w", offerID, auctionerrors.ErrState)
	}
	if err := s.validateOfferInput(parent.AuctionID, parent.BuyerID, amount, expiresAt); err != nil {
		return model.Offer{}, err
	}

	a, err := s.repo.GetAuction(parent.AuctionID)
	if err != nil {
		return model.Offer{}, fmt.Errorf("service: failed to load auction %s: %w", parent.AuctionID, err)
	}
	if a.SellerID != sellerID {
		return model.Offer{}, fmt.Errorf("service: only the seller may counter offers on auction %s: %w", a.AuctionID, auctionerrors.ErrAuth)
	}
	if err := s.validateOfferAgainstAuction(a, amount); err != nil {
		return model.Offer{}, err
	}
	if err := s.checkChainDepth(parent); err != nil {
		return model.Offer{}, err
	}

	child := model.Offer{
		OfferID:   utils.GenerateID(),
		AuctionID: parent.AuctionID,
		BuyerID:   parent.BuyerID,
		Amount:    math.Round(amount*100) / 100,
		Status:    model.OfferPending,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.MarkOfferCountered(parent.OfferID, child); err != nil {
		return model.Offer{}, fmt.Errorf("service: failed to counter offer %s: %w", offerID, err)
	}

	s.broadcast.Notify(parent.AuctionID, hub.EventOfferUpdate)
	return child, nil
}

// AcceptOffer closes the auction for the offer's buyer at the offer amount.
// Every other open offer on the auction expires. Seller-only: a buyer can
// never close the sale against their own offer.
func (s *OfferService) AcceptOffer(offerID, sellerID string) (snapshot.Snapshot, error) {
	if offerID == "" || sellerID == "" {
		return snapshot.Snapshot{}, fmt.Errorf("service: %w - missing offerID or sellerID", auctionerrors.ErrValidation)
	}

	o, err := s.repo.GetOffer(offerID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to load offer %s: %w", offerID, err)
	}
	owner, err := s.repo.GetAuction(o.AuctionID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to load auction %s: %w", o.AuctionID, err)
	}
	if owner.SellerID != sellerID {
		return snapshot.Snapshot{}, fmt.Errorf("service: only the seller may accept offers on auction %s: %w", owner.AuctionID, auctionerrors.ErrAuth)
	}

	a, _, err := s.repo.AcceptOfferAndSell(offerID, s.now())
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to accept offer %s: %w", offerID, err)
	}

	s.broadcast.Notify(a.AuctionID, hub.EventOfferUpdate)
	s.broadcast.Notify(a.AuctionID, hub.EventSnapshot)

	snap, err := s.snapshots.Build(a.AuctionID, s.broadcast.OnlineCount(a.AuctionID))
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("service: failed to build snapshot for auction %s: %w", a.AuctionID, err)
	}
	return snap, nil
}

// GetOffersByAuction returns all offers for one auction, oldest first.
func (s *OfferService) GetOffersByAuction(auctionID string) ([]model.Offer, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	offers, err := s.repo.GetOffersByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get offers for auction %s: %w", auctionID, err)
	}
	return offers, nil
}

// CancelOffersBelowBid expires every open offer under the new accepted bid.
// Called by the bid ledger, never by clients. Offer expiry is silent for the
// owner: the status change shows up on their next read.
func (s *OfferService) CancelOffersBelowBid(auctionID string, bidAmount float64) error {
	expired, err := s.repo.ExpireOffersBelow(auctionID, bidAmount)
	if err != nil {
		return fmt.Errorf("service: failed to expire offers below %.2f on auction %s: %w", bidAmount, auctionID, err)
	}
	if len(expired) > 0 {
		utils.Info("expired offers overtaken by bid", map[string]any{
			"auction_id": auctionID,
			"bid_amount": bidAmount,
			"count":      len(expired),
		})
		s.broadcast.Notify(auctionID, hub.EventOfferUpdate)
	}
	return nil
}

// ExpireSweep is the single source of truth for offer timeouts: one periodic
// pass, no per-offer timers, so correctness survives process restarts. It
// also makes clock-driven auction transitions durable.
func (s *OfferService) ExpireSweep(now time.Time) error {
	expired, err := s.repo.ExpireOffersDue(now)
	if err != nil {
		return fmt.Errorf("service: offer expiry sweep: %w", err)
	}
	touched := make(map[string]bool)
	for _, o := range expired {
		touched[o.AuctionID] = true
	}
	for auctionID := range touched {
		s.broadcast.Notify(auctionID, hub.EventOfferUpdate)
	}

	finalized, err := s.repo.FinalizeDueAuctions(now)
	if err != nil {
		return fmt.Errorf("service: auction finalize sweep: %w", err)
	}
	for _, a := range finalized {
		s.broadcast.Notify(a.AuctionID, hub.EventSnapshot)
	}

	if len(expired) > 0 || len(finalized) > 0 {
		utils.Info("expiry sweep applied", map[string]any{
			"offers_expired":     len(expired),
			"auctions_finalized": len(finalized),
		})
	}
	return nil
}

// RunSweeper blocks, running ExpireSweep on a fixed cadence until the context
// is cancelled. interval <= 0 selects the default.
func (s *OfferService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ExpireSweep(s.now()); err != nil {
				utils.Error("expiry sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

func (s *OfferService) validateOfferInput(auctionID, buyerID string, amount float64, expiresAt time.Time) error {
	if auctionID == "" || buyerID == "" {
		return fmt.Errorf("service: %w - missing auctionID or buyerID", auctionerrors.ErrValidation)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("service: %w - offer amount must be a positive monetary value", auctionerrors.ErrValidation)
	}
	if !expiresAt.After(s.now()) {
		return fmt.Errorf("service: %w - offer expiry must be in the future", auctionerrors.ErrValidation)
	}
	return nil
}

func (s *OfferService) validateOfferAgainstAuction(a model.Auction, amount float64) error {
	if !a.CanAcceptOffers(s.now()) {
		return fmt.Errorf("service: auction %s is not accepting offers: %w", a.AuctionID, auctionerrors.ErrState)
	}
	if amount < a.StartingPrice {
		return fmt.Errorf("service: %w - offer must be at least the starting price %.2f", auctionerrors.ErrValidation, a.StartingPrice)
	}
	if a.BuyNowPrice != 0 && amount >= a.BuyNowPrice {
		return fmt.Errorf("service: offer on auction %s: %w", a.AuctionID, &auctionerrors.ExceedsBuyNowError{BuyNowPrice: a.BuyNowPrice})
	}
	return nil
}

// checkChainDepth bounds the negotiation chain. Chain length equals the
// buyer's countered offers plus the open tip, since a buyer holds at most one
// open chain per auction.
func (s *OfferService) checkChainDepth(parent model.Offer) error {
	all, err := s.repo.GetOffersByAuction(parent.AuctionID)
	if err != nil {
		return fmt.Errorf("service: failed to measure offer chain for auction %s: %w", parent.AuctionID, err)
	}
	depth := 1
	for _, o := range all {
		if o.BuyerID == parent.BuyerID && o.Status == model.OfferCountered {
			depth++
		}
	}
	if depth >= maxCounterChain {
		return fmt.Errorf("service: offer chain on auction %s reached its limit: %w", parent.AuctionID, auctionerrors.ErrState)
	}
	return nil
}
