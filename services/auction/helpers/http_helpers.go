package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"live-auction/internal/auctionerrors"
	"live-auction/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound),
		errors.Is(err, auctionerrors.ErrBidNotFound),
		errors.Is(err, auctionerrors.ErrOfferNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, auctionerrors.ErrAuth):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrExceedsBuyNow):
		return http.StatusConflict, "amount reaches buy-now price"
	case errors.Is(err, auctionerrors.ErrRaceLost):
		return http.StatusConflict, "lost a concurrent update, refetch and retry"
	case errors.Is(err, auctionerrors.ErrState):
		return http.StatusConflict, "operation not allowed in current state"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusOK, "no bids found for auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondDomainError writes the mapped error plus machine-readable detail so
// a caller can retry without guessing (e.g. the minimum acceptable bid).
func RespondDomainError(c *gin.Context, handlerName string, err error) {
	status, message := MapErrorToHTTP(err)

	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	var tooLow *auctionerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		body["minimum_bid"] = tooLow.Minimum
	}
	var buyNow *auctionerrors.ExceedsBuyNowError
	if errors.As(err, &buyNow) {
		body["buy_now_price"] = buyNow.BuyNowPrice
	}
	body["retryable"] = errors.Is(err, auctionerrors.ErrRaceLost)

	c.JSON(status, body)
	utils.Warn(handlerName+": request rejected", map[string]any{
		"status": status,
		"error":  err.Error(),
	})
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
