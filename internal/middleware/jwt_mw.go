package middleware

import (
	"net/http"

	"auth_service/internal/repository"
	"auth_service/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie is the cookie carrying the session token
	SessionCookie = "token"
	// AuthUserKey is the context key holding the authenticated *model.User
	AuthUserKey = "authUser"
)

// SessionAuthMiddleware authenticates requests by the session cookie and
// loads the bound account into the request context. Signature and expiry
// failures both get the same generic message.
func SessionAuthMiddleware(jwtUtil *utils.JWTUtil, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Please login first to access this page!",
			})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}
