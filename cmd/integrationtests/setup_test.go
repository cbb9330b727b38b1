package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"live-auction/internal/hub"
	"live-auction/internal/identity"
	ledger "live-auction/internal/ledgerService"
	model "live-auction/internal/models"
	offers "live-auction/internal/offerService"
	"live-auction/internal/repository"
	"live-auction/internal/server"
	"live-auction/internal/snapshot"

	"github.com/gin-gonic/gin"
)

// Bearer tokens the test verifier knows about.
const (
	sellerToken = "seller-token"
	aliceToken  = "alice-token"
	bobToken    = "bob-token"
	carolToken  = "carol-token"
)

// SetupTestRouter wires the full stack over the in-memory repository, exactly
// as main does minus the relay.
func SetupTestRouter() (*gin.Engine, *repository.MemoryRepo) {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	verifier := identity.NewStaticVerifier(map[string]model.User{
		sellerToken: {UserID: "seller1", Username: "the-seller"},
		aliceToken:  {UserID: "alice", Username: "alice"},
		bobToken:    {UserID: "bob", Username: "bob"},
		carolToken:  {UserID: "carol", Username: "carol"},
	})
	snapshots := snapshot.NewBuilder(repo, verifier)
	broadcastHub := hub.New(snapshots, nil)

	offerSvc := offers.NewOfferService(repo, broadcastHub, snapshots)
	ledgerSvc := ledger.NewLedgerService(repo, offerSvc, broadcastHub, snapshots)

	return server.SetupRouter(ledgerSvc, offerSvc, broadcastHub, verifier), repo
}

// SetupTestRouterWithAuctions seeds the repo with already-stored listings.
func SetupTestRouterWithAuctions(auctions ...model.Auction) *gin.Engine {
	router, repo := SetupTestRouter()
	for _, a := range auctions {
		if err := repo.CreateAuction(a); err != nil {
			panic(err)
		}
	}
	return router
}

// liveAuction is a listing in its bidding window: starting price 50,
// increment 5, buy-now 200.
func liveAuction(auctionID string) model.Auction {
	now := time.Now().UTC()
	return model.Auction{
		AuctionID:     auctionID,
		SellerID:      "seller1",
		Title:         "title-" + auctionID,
		Currency:      "USD",
		StartingPrice: 50,
		CurrentBid:    50,
		BuyNowPrice:   200,
		Status:        model.AuctionActive,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		ExtendSeconds: 30,
		MinIncrement:  5,
	}
}

// ExecuteRequestAndParse executes an HTTP request with an optional bearer
// token and parses the JSON response.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// data extracts the payload object from a success envelope.
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response carries no data object: %v", resp)
	}
	return d
}
