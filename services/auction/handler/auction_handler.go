package handler

import (
	"net/http"
	"time"

	ledger "live-auction/internal/ledgerService"
	model "live-auction/internal/models"
	"live-auction/internal/snapshot"
	"live-auction/services/auction/helpers"
	"live-auction/utils"

	"github.com/gin-gonic/gin"
)

type LedgerServiceInterface interface {
	CreateAuction(a model.Auction) (model.Auction, error)
	GetAuction(auctionID string) (model.Auction, error)
	ListOpenAuctions() ([]model.Auction, error)
	Snapshot(auctionID string) (snapshot.Snapshot, error)
	SubmitBid(auctionID, bidderID string, amount float64, meta ledger.BidMeta) (snapshot.Snapshot, error)
	BuyNow(auctionID, buyerID string, meta ledger.BidMeta) (snapshot.Snapshot, error)
	CancelAuction(auctionID, sellerID string) (snapshot.Snapshot, error)
	GetBidHistory(auctionID string) ([]model.Bid, error)
}

type OfferServiceInterface interface {
	CreateOffer(auctionID, buyerID string, amount float64, expiresAt time.Time) (model.Offer, error)
	CounterOffer(offerID, sellerID string, amount float64, expiresAt time.Time) (model.Offer, error)
	AcceptOffer(offerID, sellerID string) (snapshot.Snapshot, error)
	GetOffersByAuction(auctionID string) ([]model.Offer, error)
}

type AuctionHandler struct {
	ledger LedgerServiceInterface
	offers OfferServiceInterface
}

func NewAuctionHandler(ledger LedgerServiceInterface, offers OfferServiceInterface) *AuctionHandler {
	return &AuctionHandler{ledger: ledger, offers: offers}
}

// caller returns the verified user set by the auth middleware.
func caller(c *gin.Context) model.User {
	return c.MustGet("user").(model.User)
}

func bidMeta(c *gin.Context) ledger.BidMeta {
	return ledger.BidMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	a, err := h.ledger.CreateAuction(model.Auction{
		SellerID:      caller(c).UserID,
		Title:         req.Title,
		Currency:      req.Currency,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		BuyNowPrice:   req.BuyNowPrice,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		ExtendSeconds: req.ExtendSeconds,
		MinIncrement:  req.MinIncrement,
	})
	if err != nil {
		helpers.RespondDomainError(c, "CreateAuctionHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, a, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": a.AuctionID,
		"seller_id":  a.SellerID,
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.ledger.ListOpenAuctions()
	if err != nil {
		helpers.RespondDomainError(c, "ListAuctionsHandler", err)
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}
	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	a, err := h.ledger.GetAuction(c.Param("auction_id"))
	if err != nil {
		helpers.RespondDomainError(c, "GetAuctionHandler", err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, a, "auction retrieved successfully")
}

// GetSnapshotHandler handles GET /auctions/:auction_id/snapshot
func (h *AuctionHandler) GetSnapshotHandler(c *gin.Context) {
	snap, err := h.ledger.Snapshot(c.Param("auction_id"))
	if err != nil {
		helpers.RespondDomainError(c, "GetSnapshotHandler", err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, snap, "snapshot retrieved successfully")
}

// SubmitBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) SubmitBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	snap, err := h.ledger.SubmitBid(auctionID, caller(c).UserID, req.Amount, bidMeta(c))
	if err != nil {
		helpers.RespondDomainError(c, "SubmitBidHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, snap, "bid accepted")
	helpers.LogSuccess("SubmitBidHandler", "bid accepted", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  caller(c).UserID,
		"amount":     req.Amount,
	})
}

// BuyNowHandler handles POST /auctions/:auction_id/buy-now
func (h *AuctionHandler) BuyNowHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	snap, err := h.ledger.BuyNow(auctionID, caller(c).UserID, bidMeta(c))
	if err != nil {
		helpers.RespondDomainError(c, "BuyNowHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, snap, "auction sold at buy-now price")
	helpers.LogSuccess("BuyNowHandler", "auction sold at buy-now price", map[string]any{
		"auction_id": auctionID,
		"buyer_id":   caller(c).UserID,
	})
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	snap, err := h.ledger.CancelAuction(auctionID, caller(c).UserID)
	if err != nil {
		helpers.RespondDomainError(c, "CancelAuctionHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, snap, "auction cancelled")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled", map[string]any{
		"auction_id": auctionID,
	})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	bids, err := h.ledger.GetBidHistory(c.Param("auction_id"))
	if err != nil {
		helpers.RespondDomainError(c, "GetBidsHandler", err)
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
}

// CreateOfferHandler handles POST /auctions/:auction_id/offers
func (h *AuctionHandler) CreateOfferHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateOfferHandler", err)
		return
	}

	offer, err := h.offers.CreateOffer(auctionID, caller(c).UserID, req.Amount, req.ExpiresAt)
	if err != nil {
		helpers.RespondDomainError(c, "CreateOfferHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, offerResponse(offer), "offer created successfully")
	helpers.LogSuccess("CreateOfferHandler", "offer created successfully", map[string]any{
		"auction_id": auctionID,
		"offer_id":   offer.OfferID,
		"buyer_id":   offer.BuyerID,
		"amount":     offer.Amount,
	})
}

// GetOffersHandler handles GET /auctions/:auction_id/offers
func (h *AuctionHandler) GetOffersHandler(c *gin.Context) {
	offers, err := h.offers.GetOffersByAuction(c.Param("auction_id"))
	if err != nil {
		helpers.RespondDomainError(c, "GetOffersHandler", err)
		return
	}
	resp := make([]helpers.OfferResponse, 0, len(offers))
	for _, o := range offers {
		resp = append(resp, offerResponse(o))
	}
	utils.JSONResponse(c, http.StatusOK, resp, "offers retrieved successfully")
}

// CounterOfferHandler handles POST /offers/:offer_id/counter
func (h *AuctionHandler) CounterOfferHandler(c *gin.Context) {
	offerID := c.Param("offer_id")
	var req helpers.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CounterOfferHandler", err)
		return
	}

	child, err := h.offers.CounterOffer(offerID, caller(c).UserID, req.Amount, req.ExpiresAt)
	if err != nil {
		helpers.RespondDomainError(c, "CounterOfferHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, offerResponse(child), "counter offer created")
	helpers.LogSuccess("CounterOfferHandler", "counter offer created", map[string]any{
		"parent_offer_id": offerID,
		"offer_id":        child.OfferID,
		"amount":          child.Amount,
	})
}

// AcceptOfferHandler handles POST /offers/:offer_id/accept
func (h *AuctionHandler) AcceptOfferHandler(c *gin.Context) {
	offerID := c.Param("offer_id")
	snap, err := h.offers.AcceptOffer(offerID, caller(c).UserID)
	if err != nil {
		helpers.RespondDomainError(c, "AcceptOfferHandler", err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, snap, "offer accepted, auction sold")
	helpers.LogSuccess("AcceptOfferHandler", "offer accepted", map[string]any{
		"offer_id":   offerID,
		"auction_id": snap.AuctionID,
	})
}

func offerResponse(o model.Offer) helpers.OfferResponse {
	return helpers.OfferResponse{
		OfferID:        o.OfferID,
		AuctionID:      o.AuctionID,
		BuyerID:        o.BuyerID,
		Amount:         o.Amount,
		Status:         string(o.Status),
		ExpiresAt:      o.ExpiresAt.UTC().Format(time.RFC3339),
		CounterOfferID: o.CounterOfferID,
	}
}
