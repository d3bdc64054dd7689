package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/insiderbookings/backoffice/pkg/jwt"
)

// ActorContextKey is the key used to store actor information in Gin context
const ActorContextKey = "actor"

// ActorContext represents the authenticated actor's information
type ActorContext struct {
	ID       int64         `json:"id"`
	Type     jwt.ActorType `json:"type"`
	RoleName string        `json:"roleName"`
}

// AuthMiddleware creates a middleware that validates session tokens
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Invalid or expired access token",
				"code":    "INVALID_TOKEN",
			})
			c.Abort()
			return
		}

		c.Set(ActorContextKey, ActorContext{
			ID:       claims.ActorID,
			Type:     claims.ActorType,
			RoleName: claims.RoleName,
		})

		c.Next()
	}
}

// RequireStaff creates a middleware that only lets staff tokens through
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActorContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Actor context not found. Auth middleware may not be applied.",
				"code":    "MISSING_ACTOR_CONTEXT",
			})
			c.Abort()
			return
		}

		if actor.Type != jwt.ActorStaff {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Staff account required",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole creates a middleware that checks the staff role name
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActorContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Actor context not found. Auth middleware may not be applied.",
				"code":    "MISSING_ACTOR_CONTEXT",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if actor.Type == jwt.ActorStaff && actor.RoleName == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActorContext retrieves the actor context from Gin context
func GetActorContext(c *gin.Context) (ActorContext, bool) {
	value, exists := c.Get(ActorContextKey)
	if !exists {
		return ActorContext{}, false
	}

	actor, ok := value.(ActorContext)
	if !ok {
		return ActorContext{}, false
	}

	return actor, true
}

// MustGetActorContext retrieves the actor context or panics (use only
// after AuthMiddleware)
func MustGetActorContext(c *gin.Context) ActorContext {
	actor, exists := GetActorContext(c)
	if !exists {
		panic("actor context not found - ensure AuthMiddleware is applied")
	}
	return actor
}
