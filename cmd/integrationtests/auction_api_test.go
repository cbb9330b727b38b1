package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Tests the full bid/offer lifecycle against the HTTP API: opening bid,
// rejected underbid with the minimum reported back, outbidding, an offer that
// a later bid invalidates, and a final accepted offer closing the auction.
func TestAuctionLifecycle(t *testing.T) {
	router := SetupTestRouterWithAuctions(liveAuction("auction1"))

	// Alice opens the bidding at 60.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", aliceToken,
		map[string]any{"amount": 60})
	require.Equal(t, http.StatusCreated, w.Code)
	snap := data(t, resp)
	require.Equal(t, 60.0, snap["highBid"])
	require.Equal(t, "alice", snap["leader"].(map[string]any)["name"])

	// Bob underbids: the next acceptable bid is 65 and the response says so.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", bobToken,
		map[string]any{"amount": 58})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 65.0, resp["minimum_bid"])

	// Bob retries at exactly the minimum and takes the lead.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", bobToken,
		map[string]any{"amount": 65})
	require.Equal(t, http.StatusCreated, w.Code)
	snap = data(t, resp)
	require.Equal(t, 65.0, snap["highBid"])
	require.Equal(t, "bob", snap["leader"].(map[string]any)["name"])

	// Carol opens a direct offer at 70.
	expiry := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/offers", carolToken,
		map[string]any{"amount": 70, "expires_at": expiry})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "pending", data(t, resp)["status"])

	// Alice bids 120, overtaking the offer: it expires.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", aliceToken,
		map[string]any{"amount": 120})
	require.Equal(t, http.StatusCreated, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/auctions/auction1/offers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	offerList := resp["data"].([]any)
	require.Len(t, offerList, 1)
	require.Equal(t, "expired", offerList[0].(map[string]any)["status"])

	// Carol offers again above the running price; the seller accepts and the
	// auction closes at the offer amount.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/offers", carolToken,
		map[string]any{"amount": 150, "expires_at": expiry})
	require.Equal(t, http.StatusCreated, w.Code)
	offerID := data(t, resp)["offer_id"].(string)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+offerID+"/accept", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = data(t, resp)
	require.Equal(t, "sold_offer", snap["status"])
	require.Equal(t, 150.0, snap["highBid"])
	require.Equal(t, "carol", snap["leader"].(map[string]any)["name"])

	// The auction is closed: further bids are refused.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", aliceToken,
		map[string]any{"amount": 160})
	require.Equal(t, http.StatusConflict, w.Code)
}

// Tests the buy-now path: a distinct purchase action, never inferred from a
// bid amount.
func TestBuyNow(t *testing.T) {
	router := SetupTestRouterWithAuctions(liveAuction("auction1"))

	// A bid at the buy-now price is rejected, not converted into a purchase.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", aliceToken,
		map[string]any{"amount": 200})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 200.0, resp["buy_now_price"])

	// The explicit buy-now closes the auction at 200 over the current leader.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", aliceToken,
		map[string]any{"amount": 60})
	require.Equal(t, http.StatusCreated, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/buy-now", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := data(t, resp)
	require.Equal(t, "sold_bid", snap["status"])
	require.Equal(t, 200.0, snap["highBid"])
	require.Equal(t, "bob", snap["leader"].(map[string]any)["name"])

	// Closed for good.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/buy-now", carolToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

// Tests listing creation and cancellation rules over the API.
func TestCreateAndCancelAuction(t *testing.T) {
	router, _ := SetupTestRouter()
	now := time.Now().UTC()

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", sellerToken, map[string]any{
		"title":          "walnut desk",
		"currency":       "USD",
		"starting_price": 50,
		"min_increment":  5,
		"start_time":     now.Add(-time.Minute).Format(time.RFC3339),
		"end_time":       now.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := data(t, resp)
	auctionID := created["auction_id"].(string)
	require.Equal(t, "seller1", created["seller_id"], "the seller is the verified caller")

	// Another verified user may not cancel it.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+auctionID+"/cancel", aliceToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Once a bid lands, even the seller cannot withdraw.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+auctionID+"/bids", aliceToken,
		map[string]any{"amount": 60})
	require.Equal(t, http.StatusCreated, w.Code)
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+auctionID+"/cancel", sellerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// A fresh listing with no bids cancels fine.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", sellerToken, map[string]any{
		"title":          "spare chair",
		"currency":       "USD",
		"starting_price": 20,
		"min_increment":  1,
		"start_time":     now.Add(-time.Minute).Format(time.RFC3339),
		"end_time":       now.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	freshID := data(t, resp)["auction_id"].(string)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+freshID+"/cancel", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "cancelled", data(t, resp)["status"])
}

// Tests that mutation without a token is refused while reads stay public.
func TestAnonymousAccess(t *testing.T) {
	router := SetupTestRouterWithAuctions(liveAuction("auction1"))

	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/bids", "",
		map[string]any{"amount": 60})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/auctions/auction1/snapshot", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/auctions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

// Tests the negotiation chain over the API: offer, seller counter, accept the
// counter.
func TestOfferNegotiation(t *testing.T) {
	router := SetupTestRouterWithAuctions(liveAuction("auction1"))
	expiry := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/offers", carolToken,
		map[string]any{"amount": 70, "expires_at": expiry})
	require.Equal(t, http.StatusCreated, w.Code)
	offerID := data(t, resp)["offer_id"].(string)

	// Only the seller closes or answers a negotiation: the buyer must not be
	// able to accept their own floor-price offer and buy the auction out from
	// under the seller, and other bidders cannot accept or counter either.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+offerID+"/accept", carolToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+offerID+"/accept", aliceToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+offerID+"/counter", carolToken,
		map[string]any{"amount": 80, "expires_at": expiry})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/auctions/auction1/snapshot", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "active", data(t, resp)["status"], "refused acceptances leave the auction open")

	// One open offer per buyer per auction.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/auction1/offers", carolToken,
		map[string]any{"amount": 80, "expires_at": expiry})
	require.Equal(t, http.StatusConflict, w.Code)

	// The seller counters at 90; the parent links forward to the child.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+offerID+"/counter", sellerToken,
		map[string]any{"amount": 90, "expires_at": expiry})
	require.Equal(t, http.StatusCreated, w.Code)
	child := data(t, resp)
	childID := child["offer_id"].(string)
	require.Equal(t, "carol", child["buyer_id"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/auctions/auction1/offers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var countered map[string]any
	for _, o := range resp["data"].([]any) {
		if o.(map[string]any)["offer_id"] == offerID {
			countered = o.(map[string]any)
		}
	}
	require.Equal(t, "countered", countered["status"])
	require.Equal(t, childID, countered["counter_offer_id"])

	// A countered offer is no longer actionable.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+offerID+"/accept", sellerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/offers/"+childID+"/accept", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "sold_offer", data(t, resp)["status"])
}
