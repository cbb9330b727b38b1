package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"live-auction/internal/auctionerrors"
	model "live-auction/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRepo is a durable AuctionDB. The bid path relies on a conditional
// UPDATE inside a write transaction, so the read-then-write gap between two
// concurrent bidders is closed by the database instead of process memory.
type SQLiteRepo struct {
	db *sql.DB
}

// NewSQLiteRepo opens (or creates) the database and initializes the schema.
func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	// Write transactions start immediate: every mutating method reads then
	// writes, and deferred transactions would deadlock on lock upgrade under
	// concurrent bidders.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS auctions (
			auction_id     TEXT PRIMARY KEY,
			seller_id      TEXT NOT NULL,
			title          TEXT NOT NULL,
			currency       TEXT NOT NULL,
			starting_price REAL NOT NULL,
			reserve_price  REAL NOT NULL DEFAULT 0,
			buy_now_price  REAL NOT NULL DEFAULT 0,
			current_bid    REAL NOT NULL,
			leader_id      TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			start_time     INTEGER NOT NULL,
			end_time       INTEGER NOT NULL,
			extend_seconds INTEGER NOT NULL DEFAULT 0,
			min_increment  REAL NOT NULL,
			created_at     INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bids (
			bid_id     TEXT PRIMARY KEY,
			auction_id TEXT NOT NULL REFERENCES auctions(auction_id),
			bidder_id  TEXT NOT NULL,
			amount     REAL NOT NULL,
			status     TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			ip         TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS offers (
			offer_id         TEXT PRIMARY KEY,
			auction_id       TEXT NOT NULL REFERENCES auctions(auction_id),
			buyer_id         TEXT NOT NULL,
			amount           REAL NOT NULL,
			status           TEXT NOT NULL,
			expires_at       INTEGER NOT NULL,
			counter_offer_id TEXT NOT NULL DEFAULT '',
			created_at       INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_bids_auction ON bids(auction_id);
		CREATE INDEX IF NOT EXISTS idx_offers_auction ON offers(auction_id);
	`)
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// Close closes the underlying database handle.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

const auctionColumns = `auction_id, seller_id, title, currency, starting_price, reserve_price,
	buy_now_price, current_bid, leader_id, status, start_time, end_time,
	extend_seconds, min_increment, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (model.Auction, error) {
	var a model.Auction
	var start, end, created int64
	err := row.Scan(&a.AuctionID, &a.SellerID, &a.Title, &a.Currency, &a.StartingPrice,
		&a.ReservePrice, &a.BuyNowPrice, &a.CurrentBid, &a.LeaderID, &a.Status,
		&start, &end, &a.ExtendSeconds, &a.MinIncrement, &created)
	if err != nil {
		return model.Auction{}, err
	}
	a.StartTime = time.Unix(0, start).UTC()
	a.EndTime = time.Unix(0, end).UTC()
	a.CreatedAt = time.Unix(0, created).UTC()
	return a, nil
}

func scanOffer(row rowScanner) (model.Offer, error) {
	var o model.Offer
	var expires, created int64
	err := row.Scan(&o.OfferID, &o.AuctionID, &o.BuyerID, &o.Amount, &o.Status,
		&expires, &o.CounterOfferID, &created)
	if err != nil {
		return model.Offer{}, err
	}
	o.ExpiresAt = time.Unix(0, expires).UTC()
	o.CreatedAt = time.Unix(0, created).UTC()
	return o, nil
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getAuction(q querier, auctionID string) (model.Auction, error) {
	a, err := scanAuction(q.QueryRow(`SELECT `+auctionColumns+` FROM auctions WHERE auction_id = ?`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

func getOffer(q querier, offerID string) (model.Offer, error) {
	o, err := scanOffer(q.QueryRow(`SELECT offer_id, auction_id, buyer_id, amount, status, expires_at,
		counter_offer_id, created_at FROM offers WHERE offer_id = ?`, offerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Offer{}, fmt.Errorf("offer %s: %w", offerID, auctionerrors.ErrOfferNotFound)
	}
	if err != nil {
		return model.Offer{}, fmt.Errorf("get offer %s: %w", offerID, err)
	}
	return o, nil
}

// CreateAuction stores a new listing.
func (r *SQLiteRepo) CreateAuction(a model.Auction) error {
	_, err := r.db.Exec(`INSERT INTO auctions (`+auctionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AuctionID, a.SellerID, a.Title, a.Currency, a.StartingPrice, a.ReservePrice,
		a.BuyNowPrice, a.CurrentBid, a.LeaderID, a.Status, a.StartTime.UnixNano(),
		a.EndTime.UnixNano(), a.ExtendSeconds, a.MinIncrement, a.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create auction %s: %w", a.AuctionID, err)
	}
	return nil
}

// GetAuction returns the auction by id.
func (r *SQLiteRepo) GetAuction(auctionID string) (model.Auction, error) {
	return getAuction(r.db, auctionID)
}

// ListOpenAuctions returns every non-terminal listing.
func (r *SQLiteRepo) ListOpenAuctions() ([]model.Auction, error) {
	rows, err := r.db.Query(`SELECT ` + auctionColumns + ` FROM auctions
		WHERE status IN ('scheduled', 'active') ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list open auctions: %w", err)
	}
	defer rows.Close()

	var open []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("list open auctions: %w", err)
		}
		open = append(open, a)
	}
	return open, rows.Err()
}

// ApplyBid implements the atomic conditional price update: the UPDATE only
// matches while the auction is still biddable and the amount still clears the
// minimum, so exactly one of two concurrent bidders changes the row.
func (r *SQLiteRepo) ApplyBid(bid model.Bid, now time.Time) (model.Auction, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.Auction{}, fmt.Errorf("apply bid: %w", err)
	}
	defer tx.Rollback()

	a, err := getAuction(tx, bid.AuctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if !a.CanAcceptBids(now) {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrRaceLost)
	}
	newEnd := a.AntiSnipeEndTime(now)

	res, err := tx.Exec(`UPDATE auctions
		SET current_bid = ?, leader_id = ?, end_time = ?, status = 'active'
		WHERE auction_id = ?
		  AND status IN ('scheduled', 'active')
		  AND ? >= MAX(current_bid, starting_price) + min_increment`,
		bid.Amount, bid.BidderID, newEnd.UnixNano(), bid.AuctionID, bid.Amount)
	if err != nil {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrRaceLost)
	}

	if _, err := tx.Exec(`UPDATE bids SET status = 'outbid' WHERE auction_id = ? AND status = 'accepted'`,
		bid.AuctionID); err != nil {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, err)
	}
	if _, err := tx.Exec(`INSERT INTO bids (bid_id, auction_id, bidder_id, amount, status, created_at, ip, user_agent)
		VALUES (?, ?, ?, ?, 'accepted', ?, ?, ?)`,
		bid.BidID, bid.AuctionID, bid.BidderID, bid.Amount, bid.CreatedAt.UnixNano(), bid.IP, bid.UserAgent); err != nil {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, err)
	}

	a, err = getAuction(tx, bid.AuctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Auction{}, fmt.Errorf("apply bid for auction %s: %w", bid.AuctionID, err)
	}
	return a, nil
}

// GetBidsByAuction returns all bids for an auction, oldest first.
func (r *SQLiteRepo) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	rows, err := r.db.Query(`SELECT bid_id, auction_id, bidder_id, amount, status, created_at, ip, user_agent
		FROM bids WHERE auction_id = ? ORDER BY created_at`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		var created int64
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Status, &created, &b.IP, &b.UserAgent); err != nil {
			return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
		}
		b.CreatedAt = time.Unix(0, created).UTC()
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

// BuyNow closes the listing at its buy-now price.
func (r *SQLiteRepo) BuyNow(bid model.Bid, now time.Time) (model.Auction, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.Auction{}, fmt.Errorf("buy now: %w", err)
	}
	defer tx.Rollback()

	a, err := getAuction(tx, bid.AuctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if a.BuyNowPrice == 0 || !a.CanAcceptOffers(now) {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, auctionerrors.ErrState)
	}

	res, err := tx.Exec(`UPDATE auctions
		SET current_bid = buy_now_price, leader_id = ?, status = 'sold_bid'
		WHERE auction_id = ? AND status IN ('scheduled', 'active')`,
		bid.BidderID, bid.AuctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, auctionerrors.ErrRaceLost)
	}

	if _, err := tx.Exec(`UPDATE bids SET status = 'outbid' WHERE auction_id = ? AND status = 'accepted'`,
		bid.AuctionID); err != nil {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, err)
	}
	if _, err := tx.Exec(`INSERT INTO bids (bid_id, auction_id, bidder_id, amount, status, created_at, ip, user_agent)
		VALUES (?, ?, ?, ?, 'accepted', ?, ?, ?)`,
		bid.BidID, bid.AuctionID, bid.BidderID, a.BuyNowPrice, bid.CreatedAt.UnixNano(), bid.IP, bid.UserAgent); err != nil {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, err)
	}

	a, err = getAuction(tx, bid.AuctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Auction{}, fmt.Errorf("buy now for auction %s: %w", bid.AuctionID, err)
	}
	return a, nil
}

// CancelAuction cancels a listing, refusing once a leader exists.
func (r *SQLiteRepo) CancelAuction(auctionID string) (model.Auction, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.Auction{}, fmt.Errorf("cancel auction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getAuction(tx, auctionID); err != nil {
		return model.Auction{}, err
	}

	res, err := tx.Exec(`UPDATE auctions SET status = 'cancelled'
		WHERE auction_id = ? AND status IN ('scheduled', 'active') AND leader_id = ''`, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("cancel auction %s: %w", auctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Auction{}, fmt.Errorf("cancel auction %s: %w", auctionID, auctionerrors.ErrState)
	}

	a, err := getAuction(tx, auctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Auction{}, fmt.Errorf("cancel auction %s: %w", auctionID, err)
	}
	return a, nil
}

// CreateOffer stores a new offer on its auction.
func (r *SQLiteRepo) CreateOffer(o model.Offer) error {
	if _, err := getAuction(r.db, o.AuctionID); err != nil {
		return fmt.Errorf("create offer %s: %w", o.OfferID, err)
	}
	_, err := r.db.Exec(`INSERT INTO offers (offer_id, auction_id, buyer_id, amount, status, expires_at, counter_offer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OfferID, o.AuctionID, o.BuyerID, o.Amount, o.Status, o.ExpiresAt.UnixNano(), o.CounterOfferID, o.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create offer %s: %w", o.OfferID, err)
	}
	return nil
}

// GetOffer returns the offer by id.
func (r *SQLiteRepo) GetOffer(offerID string) (model.Offer, error) {
	return getOffer(r.db, offerID)
}

// GetOffersByAuction returns all offers for an auction, oldest first.
func (r *SQLiteRepo) GetOffersByAuction(auctionID string) ([]model.Offer, error) {
	if _, err := getAuction(r.db, auctionID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(`SELECT offer_id, auction_id, buyer_id, amount, status, expires_at, counter_offer_id, created_at
		FROM offers WHERE auction_id = ? ORDER BY created_at`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get offers for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("get offers for auction %s: %w", auctionID, err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// GetOpenOfferByBuyer returns the buyer's pending/countered offer, if any.
func (r *SQLiteRepo) GetOpenOfferByBuyer(auctionID, buyerID string) (model.Offer, error) {
	if _, err := getAuction(r.db, auctionID); err != nil {
		return model.Offer{}, err
	}
	o, err := scanOffer(r.db.QueryRow(`SELECT offer_id, auction_id, buyer_id, amount, status, expires_at, counter_offer_id, created_at
		FROM offers WHERE auction_id = ? AND buyer_id = ? AND status IN ('pending', 'countered')
		ORDER BY created_at LIMIT 1`, auctionID, buyerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Offer{}, fmt.Errorf("open offer for buyer %s on auction %s: %w", buyerID, auctionID, auctionerrors.ErrOfferNotFound)
	}
	if err != nil {
		return model.Offer{}, fmt.Errorf("open offer for buyer %s on auction %s: %w", buyerID, auctionID, err)
	}
	return o, nil
}

// MarkOfferCountered links a pending parent to its counter offer.
func (r *SQLiteRepo) MarkOfferCountered(parentID string, child model.Offer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("counter offer: %w", err)
	}
	defer tx.Rollback()

	if _, err := getOffer(tx, parentID); err != nil {
		return err
	}

	res, err := tx.Exec(`UPDATE offers SET status = 'countered', counter_offer_id = ?
		WHERE offer_id = ? AND status = 'pending'`, child.OfferID, parentID)
	if err != nil {
		return fmt.Errorf("counter offer %s: %w", parentID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("counter offer %s: %w", parentID, auctionerrors.ErrState)
	}

	if _, err := tx.Exec(`INSERT INTO offers (offer_id, auction_id, buyer_id, amount, status, expires_at, counter_offer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		child.OfferID, child.AuctionID, child.BuyerID, child.Amount, child.Status,
		child.ExpiresAt.UnixNano(), child.CounterOfferID, child.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("counter offer %s: %w", parentID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("counter offer %s: %w", parentID, err)
	}
	return nil
}

// AcceptOfferAndSell closes the auction for the offer's buyer.
func (r *SQLiteRepo) AcceptOfferAndSell(offerID string, now time.Time) (model.Auction, model.Offer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer: %w", err)
	}
	defer tx.Rollback()

	o, err := getOffer(tx, offerID)
	if err != nil {
		return model.Auction{}, model.Offer{}, err
	}
	if o.Status != model.OfferPending {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, auctionerrors.ErrState)
	}

	res, err := tx.Exec(`UPDATE auctions SET current_bid = ?, leader_id = ?, status = 'sold_offer'
		WHERE auction_id = ? AND status IN ('scheduled', 'active')`,
		o.Amount, o.BuyerID, o.AuctionID)
	if err != nil {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, auctionerrors.ErrState)
	}

	if _, err := tx.Exec(`UPDATE offers SET status = 'accepted' WHERE offer_id = ?`, offerID); err != nil {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, err)
	}
	if _, err := tx.Exec(`UPDATE offers SET status = 'expired'
		WHERE auction_id = ? AND offer_id != ? AND status IN ('pending', 'countered')`,
		o.AuctionID, offerID); err != nil {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, err)
	}

	o.Status = model.OfferAccepted
	a, err := getAuction(tx, o.AuctionID)
	if err != nil {
		return model.Auction{}, model.Offer{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Auction{}, model.Offer{}, fmt.Errorf("accept offer %s: %w", offerID, err)
	}
	return a, o, nil
}

// ExpireOffersBelow expires open offers priced under the given amount.
func (r *SQLiteRepo) ExpireOffersBelow(auctionID string, amount float64) ([]model.Offer, error) {
	return r.expireWhere(`auction_id = ? AND status IN ('pending', 'countered') AND amount < ?`, auctionID, amount)
}

// ExpireOffersDue expires open offers past their deadline.
func (r *SQLiteRepo) ExpireOffersDue(now time.Time) ([]model.Offer, error) {
	return r.expireWhere(`status IN ('pending', 'countered') AND expires_at <= ?`, now.UnixNano())
}

func (r *SQLiteRepo) expireWhere(cond string, args ...any) ([]model.Offer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("expire offers: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT offer_id, auction_id, buyer_id, amount, status, expires_at, counter_offer_id, created_at
		FROM offers WHERE `+cond, args...)
	if err != nil {
		return nil, fmt.Errorf("expire offers: %w", err)
	}
	var expired []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("expire offers: %w", err)
		}
		o.Status = model.OfferExpired
		expired = append(expired, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(expired) == 0 {
		return nil, tx.Commit()
	}
	if _, err := tx.Exec(`UPDATE offers SET status = 'expired' WHERE `+cond, args...); err != nil {
		return nil, fmt.Errorf("expire offers: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("expire offers: %w", err)
	}
	return expired, nil
}

// FinalizeDueAuctions makes clock-driven transitions durable.
func (r *SQLiteRepo) FinalizeDueAuctions(now time.Time) ([]model.Auction, error) {
	open, err := r.ListOpenAuctions()
	if err != nil {
		return nil, err
	}

	var changed []model.Auction
	for _, a := range open {
		effective := a.EffectiveStatus(now)
		if effective == a.Status {
			continue
		}
		res, err := r.db.Exec(`UPDATE auctions SET status = ? WHERE auction_id = ? AND status = ?`,
			effective, a.AuctionID, a.Status)
		if err != nil {
			return nil, fmt.Errorf("finalize auction %s: %w", a.AuctionID, err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			a.Status = effective
			changed = append(changed, a)
		}
	}
	return changed, nil
}
