package mw

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"

	"lab-reservation-backend/internal/model"
)

const userKey = "currentUser"

// UserMirror is the slice of the store the auth middleware needs.
type UserMirror interface {
	UpsertUser(ctx context.Context, user *model.User) error
}

// Claims is the token payload issued by the identity provider. The user id
// travels in the registered subject claim.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Sign mints an HS256 token for a user. Used by the seed tool and tests.
func Sign(secret string, user *model.User, ttl time.Duration) (string, error) {
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// Auth validates the Bearer token, mirrors the identity into the users
// table and puts the resolved user on the request context. The mirror
// write is deduplicated for a few minutes per identity so reads do not
// pay for a write on every request.
func Auth(secret string, mirror UserMirror) gin.HandlerFunc {
	seen := cache.New(5*time.Minute, 10*time.Minute)

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": "UNAUTHORIZED"})
			return
		}

		claims, err := parseToken(secret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "UNAUTHORIZED"})
			return
		}

		role := model.RoleUser
		if claims.Role == model.RoleAdmin {
			role = model.RoleAdmin
		}
		user := &model.User{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  claims.Name,
			Role:  role,
		}

		mirrorKey := user.ID + "|" + user.Email + "|" + user.Name + "|" + user.Role
		if _, ok := seen.Get(mirrorKey); !ok {
			if err := mirror.UpsertUser(c.Request.Context(), user); err != nil {
				log.Printf("Failed to mirror user %s: %v", user.ID, err)
			} else {
				seen.SetDefault(mirrorKey, struct{}{})
			}
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// AdminOnly rejects requests whose authenticated user is not an admin.
// Must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required", "code": "FORBIDDEN"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil outside Auth.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
