package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"live-auction/internal/identity"
	model "live-auction/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Tests RequireUser
func TestRequireUser(t *testing.T) {
	verifier := identity.NewStaticVerifier(map[string]model.User{
		"token1": {UserID: "user1", Username: "alice"},
	})

	router := gin.New()
	router.GET("/whoami", RequireUser(verifier), func(c *gin.Context) {
		u := c.MustGet("user").(model.User)
		c.JSON(http.StatusOK, gin.H{"user_id": u.UserID})
	})

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{name: "valid_bearer_token", authorization: "Bearer token1", expectedStatus: http.StatusOK},
		{name: "unknown_token", authorization: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "missing_header", authorization: "", expectedStatus: http.StatusUnauthorized},
		{name: "token_without_scheme", authorization: "token1", expectedStatus: http.StatusOK},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				require.Contains(t, w.Body.String(), `"user_id":"user1"`)
			}
		})
	}
}
