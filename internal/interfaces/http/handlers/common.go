// internal/interfaces/http/handlers/common.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
)

// respondError translates service errors into HTTP responses. Coded errors
// carry their own status; anything else is a 500 with a generic message so
// internals never leak to clients.
func respondError(c *gin.Context, err error) {
	if stockErr, ok := apperrors.IsInsufficientStock(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
			"code":  apperrors.CodeInsufficientStock,
			"details": gin.H{
				"variant_id": stockErr.VariantID,
				"available":  stockErr.Available,
				"requested":  stockErr.Requested,
			},
		})
		return
	}

	if typed := apperrors.As(err); typed != nil {
		c.JSON(apperrors.HTTPStatus(typed.Code()), gin.H{
			"error": typed.Error(),
			"code":  typed.Code(),
		})
		return
	}

	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

// getOrCreateSessionID gets the guest session ID from the cookie or mints
// a new one (24 hours, matching the session cart TTL)
func getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}
	return sessionID
}
