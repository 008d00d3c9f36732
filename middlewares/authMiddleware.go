package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and fans the claims out into the
// request context. Requests without an Authorization header pass through
// unauthenticated; RequireAuth gates the protected routes.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		token := auth[len(bearer):]

		validated, err := utils.JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claims, ok := validated.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = utils.SetTokenInContext(ctx, token)
		ctx = utils.SetBusinessIdInContext(ctx, claims.BusinessId)
		ctx = utils.SetUserIdInContext(ctx, claims.ID)
		ctx = utils.SetUserRoleInContext(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless AuthMiddleware has populated the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, ok := utils.GetUserIdFromContext(ctx)
		businessId, okBusiness := utils.GetBusinessIdFromContext(ctx)
		if !ok || userId <= 0 || !okBusiness || businessId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole further restricts a route group to the given roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetUserRoleFromContext(c.Request.Context())
		if ok {
			for _, allowed := range roles {
				if role == string(allowed) {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}
