package snapshot

import (
	"fmt"
	"time"

	"live-auction/internal/identity"
	model "live-auction/internal/models"
	"live-auction/internal/repository"
)

// Leader is the public identity of the current highest bidder or buyer.
type Leader struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is the complete read-optimized public state of one auction, sent
// to every viewer. It never exposes the reserve price itself, only whether
// it has been met.
type Snapshot struct {
	AuctionID     string    `json:"id"`
	Title         string    `json:"title"`
	Currency      string    `json:"currency"`
	HighBid       float64   `json:"highBid"`
	Leader        *Leader   `json:"leader"`
	OnlineCount   int       `json:"onlineCount"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	ReserveMet    bool      `json:"reserveMet"`
	Status        string    `json:"status"`
	BuyNowPrice   float64   `json:"buyNowPrice,omitempty"`
	TimeRemaining int64     `json:"timeRemaining"`
}

// Builder derives snapshots from the stored auction state.
type Builder struct {
	repo  repository.AuctionDB
	names identity.Directory
	now   func() time.Time
}

// NewBuilder creates a snapshot builder.
func NewBuilder(repo repository.AuctionDB, names identity.Directory) *Builder {
	return &Builder{repo: repo, names: names, now: time.Now}
}

// Build derives the public view of one auction. onlineCount is the caller's
// current room size; it is ephemeral per-process state, not storage.
func (b *Builder) Build(auctionID string, onlineCount int) (Snapshot, error) {
	a, err := b.repo.GetAuction(auctionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build snapshot: %w", err)
	}
	return b.FromAuction(a, onlineCount), nil
}

// FromAuction derives a snapshot from an already-loaded record.
func (b *Builder) FromAuction(a model.Auction, onlineCount int) Snapshot {
	now := b.now()
	status := a.EffectiveStatus(now)

	var remaining int64
	if status == model.AuctionActive {
		if d := a.EndTime.Sub(now); d > 0 {
			remaining = int64(d.Seconds())
		}
	}

	var leader *Leader
	if a.LeaderID != "" {
		leader = &Leader{ID: a.LeaderID, Name: b.names.DisplayName(a.LeaderID)}
	}

	return Snapshot{
		AuctionID:     a.AuctionID,
		Title:         a.Title,
		Currency:      a.Currency,
		HighBid:       a.CurrentBid,
		Leader:        leader,
		OnlineCount:   onlineCount,
		Start:         a.StartTime,
		End:           a.EndTime,
		ReserveMet:    a.ReserveMet(),
		Status:        string(status),
		BuyNowPrice:   a.BuyNowPrice,
		TimeRemaining: remaining,
	}
}
