package server

import (
	"live-auction/internal/hub"
	"live-auction/internal/identity"
	handler "live-auction/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(ledgerSvc handler.LedgerServiceInterface, offerSvc handler.OfferServiceInterface, broadcastHub *hub.Hub, verifier identity.Verifier) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(ledgerSvc, offerSvc)
	authed := RequireUser(verifier)

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/snapshot", auctionHandler.GetSnapshotHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsHandler)
		auctions.GET("/:auction_id/offers", auctionHandler.GetOffersHandler)

		auctions.POST("", authed, auctionHandler.CreateAuctionHandler)
		auctions.POST("/:auction_id/bids", authed, auctionHandler.SubmitBidHandler)
		auctions.POST("/:auction_id/buy-now", authed, auctionHandler.BuyNowHandler)
		auctions.POST("/:auction_id/cancel", authed, auctionHandler.CancelAuctionHandler)
		auctions.POST("/:auction_id/offers", authed, auctionHandler.CreateOfferHandler)
	}

	offers := router.Group("/offers")
	{
		offers.POST("/:offer_id/counter", authed, auctionHandler.CounterOfferHandler)
		offers.POST("/:offer_id/accept", authed, auctionHandler.AcceptOfferHandler)
	}

	// Real-time channel. Anonymous viewing is allowed; the hub refuses
	// unknown auction ids with a policy-violation close.
	router.GET("/ws", func(c *gin.Context) {
		broadcastHub.Join(c.Writer, c.Request, c.Query("auction_id"))
	})

	return router
}
