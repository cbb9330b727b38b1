package models

import (
	"errors"
	"testing"
	"time"

	"live-auction/internal/auctionerrors"

	"github.com/stretchr/testify/require"
)

func validAuction() Auction {
	start := time.Now().UTC().Add(-time.Hour)
	return Auction{
		AuctionID:     "auction1",
		SellerID:      "seller1",
		Title:         "first edition",
		Currency:      "USD",
		StartingPrice: 50,
		CurrentBid:    50,
		Status:        AuctionActive,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		ExtendSeconds: 30,
		MinIncrement:  5,
	}
}

// Tests Validate
func TestAuction_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(a *Auction)
		expectError bool
	}{
		{name: "valid_auction", mutate: func(a *Auction) {}, expectError: false},
		{name: "missing_title", mutate: func(a *Auction) { a.Title = "" }, expectError: true},
		{name: "missing_seller", mutate: func(a *Auction) { a.SellerID = "" }, expectError: true},
		{name: "zero_starting_price", mutate: func(a *Auction) { a.StartingPrice = 0 }, expectError: true},
		{name: "zero_min_increment", mutate: func(a *Auction) { a.MinIncrement = 0 }, expectError: true},
		{name: "end_before_start", mutate: func(a *Auction) { a.EndTime = a.StartTime.Add(-time.Minute) }, expectError: true},
		{name: "buy_now_below_starting", mutate: func(a *Auction) { a.BuyNowPrice = 40 }, expectError: true},
		{name: "buy_now_above_starting", mutate: func(a *Auction) { a.BuyNowPrice = 200 }, expectError: false},
		{name: "reserve_above_buy_now", mutate: func(a *Auction) { a.BuyNowPrice = 200; a.ReservePrice = 250 }, expectError: true},
		{name: "reserve_below_buy_now", mutate: func(a *Auction) { a.BuyNowPrice = 200; a.ReservePrice = 150 }, expectError: false},
		{name: "negative_extend_seconds", mutate: func(a *Auction) { a.ExtendSeconds = -1 }, expectError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := validAuction()
			tc.mutate(&a)

			err := a.Validate()
			if tc.expectError {
				require.Error(t, err)
				require.True(t, errors.Is(err, auctionerrors.ErrValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Tests EffectiveStatus and CanAcceptBids
func TestAuction_StateMachine(t *testing.T) {
	a := validAuction()
	now := time.Now().UTC()

	t.Run("scheduled_before_window", func(t *testing.T) {
		b := a
		b.Status = AuctionScheduled
		b.StartTime = now.Add(time.Hour)
		b.EndTime = now.Add(2 * time.Hour)
		require.Equal(t, AuctionScheduled, b.EffectiveStatus(now))
		require.False(t, b.CanAcceptBids(now))
		require.True(t, b.CanAcceptOffers(now))
	})

	t.Run("scheduled_flips_active_inside_window", func(t *testing.T) {
		b := a
		b.Status = AuctionScheduled
		require.Equal(t, AuctionActive, b.EffectiveStatus(now))
		require.True(t, b.CanAcceptBids(now))
	})

	t.Run("active_past_deadline_reads_ended", func(t *testing.T) {
		b := a
		b.EndTime = now.Add(-time.Minute)
		require.Equal(t, AuctionEnded, b.EffectiveStatus(now))
		require.False(t, b.CanAcceptBids(now))
		require.False(t, b.CanAcceptOffers(now))
	})

	t.Run("terminal_states_stay_put", func(t *testing.T) {
		for _, status := range []AuctionStatus{AuctionEnded, AuctionSoldBid, AuctionSoldOffer, AuctionCancelled} {
			b := a
			b.Status = status
			require.Equal(t, status, b.EffectiveStatus(now))
			require.True(t, b.Terminal())
			require.False(t, b.CanAcceptBids(now))
		}
	})
}

// Tests AntiSnipeEndTime arithmetic
func TestAuction_AntiSnipeEndTime(t *testing.T) {
	end := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		extendSeconds int
		bidAt         time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "bid_inside_window_extends",
			extendSeconds: 30,
			bidAt:         end.Add(-10 * time.Second),
			expectedEnd:   end.Add(20 * time.Second),
		},
		{
			name:          "bid_outside_window_unchanged",
			extendSeconds: 30,
			bidAt:         end.Add(-120 * time.Second),
			expectedEnd:   end,
		},
		{
			name:          "bid_exactly_on_window_edge_extends",
			extendSeconds: 30,
			bidAt:         end.Add(-60 * time.Second),
			expectedEnd:   end.Add(30 * time.Second),
		},
		{
			name:          "zero_extend_is_noop",
			extendSeconds: 0,
			bidAt:         end.Add(-10 * time.Second),
			expectedEnd:   end,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := validAuction()
			a.EndTime = end
			a.ExtendSeconds = tc.extendSeconds

			require.Equal(t, tc.expectedEnd, a.AntiSnipeEndTime(tc.bidAt))
		})
	}
}

// Tests MinimumBid and ReserveMet
func TestAuction_Pricing(t *testing.T) {
	a := validAuction()

	require.Equal(t, 55.0, a.MinimumBid(), "first bid must clear starting price plus increment")

	a.CurrentBid = 60
	require.Equal(t, 65.0, a.MinimumBid())

	require.True(t, a.ReserveMet(), "no reserve means reserve is always met")

	a.ReservePrice = 100
	require.False(t, a.ReserveMet())
	a.CurrentBid = 100
	require.True(t, a.ReserveMet())
}

func TestOffer_Open(t *testing.T) {
	o := Offer{Status: OfferPending}
	require.True(t, o.Open())
	o.Status = OfferCountered
	require.True(t, o.Open())
	for _, status := range []OfferStatus{OfferAccepted, OfferRejected, OfferExpired} {
		o.Status = status
		require.False(t, o.Open())
	}
}
