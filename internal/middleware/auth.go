package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates an HS256 bearer token and stores the sub and role claims
// on the gin context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		userID, ok := subject(claims["sub"])
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, domain.Role(role))
		c.Next()
	}
}

// subject accepts numeric and string user ids.
func subject(v interface{}) (int64, bool) {
	switch sub := v.(type) {
	case float64:
		if sub <= 0 || sub != float64(int64(sub)) {
			return 0, false
		}
		return int64(sub), true
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// RequireRole rejects callers whose role is not listed. It must run after JWTAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		for _, role := range roles {
			if actor.Is(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden."})
	}
}

func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	userID, ok := c.Get(ctxUserID)
	if !ok {
		return domain.Actor{}, false
	}
	id, ok := userID.(int64)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := c.Get(ctxRole)
	r, _ := role.(domain.Role)
	return domain.Actor{UserID: id, Role: r}, true
}

// SetActor is used by tests and internal callers that authenticate differently.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(ctxUserID, actor.UserID)
	c.Set(ctxRole, actor.Role)
}
