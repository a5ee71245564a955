package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/services"
)

const UserIDKey = "user_id"

// JWTAuth rejects requests without a valid bearer token and stores the user ID
// on the context for handlers.
func JWTAuth(jwtService services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, jwtService)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authorization required",
				"message": "Please provide a valid bearer token in the Authorization header",
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalJWTAuth attaches the user ID when a valid token is present and lets
// anonymous requests through. The pricing page works for visitors who have not
// signed in; their checkouts simply carry no user_id metadata.
func OptionalJWTAuth(jwtService services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromRequest(c, jwtService); ok {
			c.Set(UserIDKey, claims.UserID)
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtService services.JWTService) (*services.JWTClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, false
	}

	claims, err := jwtService.ValidateToken(tokenParts[1])
	if err != nil {
		return nil, false
	}

	return claims, true
}

// UserID reads the authenticated user ID off the context; zero means
// anonymous.
func UserID(c *gin.Context) int64 {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
