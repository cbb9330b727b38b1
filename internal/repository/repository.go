package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"live-auction/internal/auctionerrors"
	model "live-auction/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_auctiondb.go -package=repository

// AuctionDB defines the storage contract for the auction core. The mutating
// methods are transactional: each one either applies its whole transition or
// returns an error with nothing changed. ApplyBid, BuyNow, CancelAuction and
// AcceptOfferAndSell are conditional updates and fail with ErrRaceLost or
// ErrState when the record moved under the caller.
type AuctionDB interface {
	CreateAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListOpenAuctions() ([]model.Auction, error)

	// ApplyBid atomically accepts a bid: re-checks that the auction still
	// takes bids and that the amount still clears the minimum, sets
	// currentBid/leaderId, extends endTime inside the anti-snipe window,
	// persists the bid as accepted and flips the previously accepted bid to
	// outbid. Exactly one of two concurrent qualifying bids succeeds; the
	// loser gets ErrRaceLost.
	ApplyBid(bid model.Bid, now time.Time) (model.Auction, error)
	GetBidsByAuction(auctionID string) ([]model.Bid, error)

	// BuyNow closes the auction at its buy-now price for the bidder.
	BuyNow(bid model.Bid, now time.Time) (model.Auction, error)
	// CancelAuction cancels a listing that has no leader yet.
	CancelAuction(auctionID string) (model.Auction, error)

	CreateOffer(o model.Offer) error
	GetOffer(offerID string) (model.Offer, error)
	GetOffersByAuction(auctionID string) ([]model.Offer, error)
	// GetOpenOfferByBuyer returns the buyer's pending or countered offer on
	// the auction, or ErrOfferNotFound.
	GetOpenOfferByBuyer(auctionID, buyerID string) (model.Offer, error)
	// MarkOfferCountered atomically flips a pending parent to countered,
	// links it to the child and persists the child as pending.
	MarkOfferCountered(parentID string, child model.Offer) error
	// AcceptOfferAndSell atomically accepts a pending offer, moves the
	// auction to sold_offer with the offer's amount and buyer, and expires
	// every other open offer on the auction.
	AcceptOfferAndSell(offerID string, now time.Time) (model.Auction, model.Offer, error)
	// ExpireOffersBelow expires every open offer under the given amount and
	// returns the offers it changed.
	ExpireOffersBelow(auctionID string, amount float64) ([]model.Offer, error)
	// ExpireOffersDue expires every open offer past its deadline.
	ExpireOffersDue(now time.Time) ([]model.Offer, error)
	// FinalizeDueAuctions makes clock-driven status transitions durable:
	// scheduled listings inside their window become active, open listings
	// past their deadline become ended. Returns the auctions it changed.
	FinalizeDueAuctions(now time.Time) ([]model.Auction, error)
}

// auctionRecord bundles an auction with its bids and offers under one mutex,
// so contended updates serialize per auction and independent auctions never
// block each other.
type auctionRecord struct {
	mu      sync.Mutex
	auction model.Auction
	bids    []model.Bid
	offers  []model.Offer
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]*auctionRecord // key: auctionID
	offerIdx map[string]string         // key: offerID -> value: auctionID
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]*auctionRecord),
		offerIdx: make(map[string]string),
	}
}

func (r *MemoryRepo) record(auctionID string) (*auctionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return rec, nil
}

// CreateAuction stores a new listing.
func (r *MemoryRepo) CreateAuction(a model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[a.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w - id already exists", a.AuctionID, auctionerrors.ErrValidation)
	}
	r.auctions[a.AuctionID] = &auctionRecord{auction: a}
	return nil
}

// GetAuction returns the auction by id.
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	rec, err := r.record(auctionID)
	if err != nil {
		return model.Auction{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.auction, nil
}

// ListOpenAuctions returns every non-terminal listing.
func (r *MemoryRepo) ListOpenAuctions() ([]model.Auction, error) {
	r.mu.RLock()
	recs := make([]*auctionRecord, 0, len(r.auctions))
	for _, rec := range r.auctions {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	open := make([]model.Auction, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if !rec.auction.Terminal() {
			open = append(open, rec.auction)
		}
		rec.mu.Unlock()
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreatedAt.Before(open[j].CreatedAt) })
	return open, nil
}

// ApplyBid implements the atomic conditional price update.
func (r *MemoryRepo) ApplyBid(bid model.Bid, now time.Time) (model.Auction, error) {
	rec, err := r.record(bid.AuctionID)
	if err != nil {
		return model.Auction{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	a := rec.auction
	// The conditional part: state and minimum are re-checked inside the
	// critical section, not trusted from the caller's earlier read.
	if !a.CanAcceptBids(now) || bid.Amount < a.MinimumBid() {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrRaceLost)
	}

	for i := range rec.bids {
		if rec.bids[i].Status == model.BidAccepted {
			rec.bids[i].Status = model.BidOutbid
		}
	}
	bid.Status = model.BidAccepted
	rec.bids = append(rec.bids, bid)

	a.EndTime = a.AntiSnipeEndTime(now)
	a.CurrentBid = bid.Amount
	a.LeaderID = bid.BidderID
	a.Status = model.AuctionActive
	rec.auction = a
	return a, nil
}

// GetBidsByAuction returns all bids for an auction, oldest first.
func (r *MemoryRepo) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	rec, err := r.record(auctionID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), rec.bids...), nil
}

// BuyNow closes the listing at its buy-now price.
func (r *MemoryRepo) BuyNow(bid model.Bid, now time.Time) (model.Auction, error) {
	rec, err := r.record(bid.AuctionID)
	if err != nil {
		return model.Auction{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	a := rec.auction
	if a.BuyNowPrice == 0 || !a.CanAcceptOffers(now) {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, auctionerrors.ErrState)
	}

	for i := range rec.bids {
		if rec.bids[i].Status == model.BidAccepted {
			rec.bids[i].Status = model.BidOutbid
		}
	}
	bid.Amount = a.BuyNowPrice
	bid.Status = model.BidAccepted
	rec.bids = append(rec.bids, bid)

	a.CurrentBid = a.BuyNowPrice
	a.LeaderID = bid.BidderID
	a.Status = model.AuctionSoldBid
	rec.auction = a
	return a, nil
}

// CancelAuction cancels a listing, refusing once a leader exists.
func (r *MemoryRepo) CancelAuction(auctionID string) (model.Auction, error) {
	rec, err := r.record(auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	a := rec.auction
	if a.Terminal() || a.LeaderID != "" {
		return model.Auction{}, fmt.Errorf("cancel auction %s: %w", auctionID, auctionerrors.ErrState)
	}
	a.Status = model.AuctionCancelled
	rec.auction = a
	return a, nil
}

// CreateOffer stores a new offer on its auction.
func (r *MemoryRepo) CreateOffer(o model.Offer) error {
	rec, err := r.record(o.AuctionID)
	if err != nil {
		return fmt.Errorf("create offer %s: %w", o.OfferID, err)
	}

	rec.mu.Lock()
	rec.offers = append(rec.offers, o)
	rec.mu.Unlock()

	r.mu.Lock()
	r.offerIdx[o.OfferID] = o.AuctionID
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) offerRecord(offerID string) (*auctionRecord, error) {
	r.mu.RLock()
	auctionID, ok := r.offerIdx[offerID]
	rec := r.auctions[auctionID]
	r.mu.RUnlock()
	if !ok || rec == nil {
		return nil, fmt.Errorf("offer %s: %w", offerID, auctionerrors.ErrOfferNotFound)
	}
	return rec, nil
}

// GetOffer returns the offer by id.
func (r *MemoryRepo) GetOffer(offerID string) (model.Offer, error) {
	rec, err := r.offerRecord(offerID)
	if err != nil {
		return model.Offer{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, o := range rec.offers {
		if o.OfferID == offerID {
			return o, nil
		}
	}
	return model.Offer{}, fmt.Errorf("offer %s: %w", offerID, auctionerrors.ErrOfferNotFound)
}

// GetOffersByAuction returns all offers for an auction, oldest first.
func (r *MemoryRepo) GetOffersByAuction(auctionID string) ([]model.Offer, error) {
	rec, err := r.record(auctionID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]model.Offer(nil), rec.offers...), nil
}

// GetOpenOfferByBuyer returns the buyer's pending/countered offer, if any.
func (r *MemoryRepo) GetOpenOfferByBuyer(auctionID, buyerID string) (model.Offer, error) {
	rec, err := r.record(auctionID)
	if err != nil {
		return model.Offer{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, o := range rec.offers {
		if o.BuyerID == buyerID && o.Open() {
			return o, nil
		}
	}
	return model.Offer{}, fmt.Errorf("open offer for buyer %s on auction %s: %w", buyerID, auctionID, auctionerrors.ErrOfferNotFound)
}

// MarkOfferCountered links a pending parent to its counter offer.
func (r *MemoryRepo) MarkOfferCountered(parentID string, child model.Offer) error {
	rec, err := r.offerRecord(parentID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	countered := false
	for i := range rec.offers {
		if rec.offers[i].OfferID != parentID {
			continue
		}
		if rec.offers[i].Status != model.OfferPending {
			rec.mu.Unlock()
			return fmt.Errorf("counter offer %s: %w", parentID, auctionerrors.ErrState)
		}
		rec.offers[i].Status = model.OfferCountered
		rec.offers[i].CounterOfferID = child.OfferID
		countered = true
		break
	}
	if !countered {
		rec.mu.Unlock()
		return fmt.Errorf("offer %s: %w", parentID, auctionerrors.ErrOfferNotFound)
	}
	rec.offers = append(rec.offers, child)
	rec.mu.Unlock()

	r.mu.Lock()
	r.offerIdx[child.OfferID] = child.AuctionID
	r.mu.Unlock()
	return nil
}

// AcceptOfferAndSell closes the auction for the offer's buyer.
func (r *MemoryRepo) AcceptOfferAndSell(offerID string, now time.Time) (model.Auction, model.Offer, error) {
	rec, err := r.offerRecord(offerID)
	if err != nil {
		return model.Auction{}, model.Offer{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	a := rec.auction
	if a.Terminal() {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, auctionerrors.ErrState)
	}

	var accepted model.Offer
	found := false
	for i := range rec.offers {
		if rec.offers[i].OfferID == offerID {
			if rec.offers[i].Status != model.OfferPending {
				return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, auctionerrors.ErrState)
			}
			rec.offers[i].Status = model.OfferAccepted
			accepted = rec.offers[i]
			found = true
			break
		}
	}
	if !found {
		return model.Auction{}, model.Offer{}, fmt.Errorf("offer %s: %w", offerID, auctionerrors.ErrOfferNotFound)
	}

	for i := range rec.offers {
		if rec.offers[i].OfferID != offerID && rec.offers[i].Open() {
			rec.offers[i].Status = model.OfferExpired
		}
	}

	a.CurrentBid = accepted.Amount
	a.LeaderID = accepted.BuyerID
	a.Status = model.AuctionSoldOffer
	rec.auction = a
	return a, accepted, nil
}

// ExpireOffersBelow expires open offers priced under the given amount.
func (r *MemoryRepo) ExpireOffersBelow(auctionID string, amount float64) ([]model.Offer, error) {
	rec, err := r.record(auctionID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	var expired []model.Offer
	for i := range rec.offers {
		if rec.offers[i].Open() && rec.offers[i].Amount < amount {
			rec.offers[i].Status = model.OfferExpired
			expired = append(expired, rec.offers[i])
		}
	}
	return expired, nil
}

// ExpireOffersDue expires open offers past their deadline.
func (r *MemoryRepo) ExpireOffersDue(now time.Time) ([]model.Offer, error) {
	r.mu.RLock()
	recs := make([]*auctionRecord, 0, len(r.auctions))
	for _, rec := range r.auctions {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	var expired []model.Offer
	for _, rec := range recs {
		rec.mu.Lock()
		for i := range rec.offers {
			if rec.offers[i].Open() && !rec.offers[i].ExpiresAt.After(now) {
				rec.offers[i].Status = model.OfferExpired
				expired = append(expired, rec.offers[i])
			}
		}
		rec.mu.Unlock()
	}
	return expired, nil
}

// FinalizeDueAuctions makes clock-driven transitions durable.
func (r *MemoryRepo) FinalizeDueAuctions(now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	recs := make([]*auctionRecord, 0, len(r.auctions))
	for _, rec := range r.auctions {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	var changed []model.Auction
	for _, rec := range recs {
		rec.mu.Lock()
		effective := rec.auction.EffectiveStatus(now)
		if !rec.auction.Terminal() && effective != rec.auction.Status {
			rec.auction.Status = effective
			changed = append(changed, rec.auction)
		}
		rec.mu.Unlock()
	}
	return changed, nil
}
