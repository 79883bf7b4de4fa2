package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/psergee/authd/internal/services"
)

const userIDKey = "user_id"

// authRequired validates the bearer access token and stores the user id in
// the request context. Requests without a valid token are rejected before the
// handler runs.
func authRequired(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "InvalidToken",
				"message": "missing bearer token",
			})
			return
		}

		userID, err := tokens.VerifyAccessToken(token)
		if err != nil {
			c.Abort()
			respondError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentUserID(c *gin.Context) int64 {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(int64)
	return userID
}
