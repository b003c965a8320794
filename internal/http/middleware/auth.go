package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

const (
	ctxKeyActorID   = "actor_id"
	ctxKeyActorName = "actor_name"
)

// AuthMiddleware verifies bearer access tokens issued elsewhere in the
// platform and exposes the acting admin identity to handlers. Token
// issuance, refresh and session state are out of scope here.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(baseLog *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    baseLog.With("middleware", "AuthMiddleware"),
		secret: []byte(secret),
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return am.secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		sub, _ := claims.GetSubject()
		actorID, err := uuid.Parse(sub)
		if err != nil || actorID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "forbidden"},
			})
			return
		}

		name, _ := claims["name"].(string)
		c.Set(ctxKeyActorID, actorID)
		c.Set(ctxKeyActorName, name)
		c.Next()
	}
}

// Actor returns the authenticated admin identity set by RequireAuth.
func Actor(c *gin.Context) (uuid.UUID, string) {
	id, _ := c.Get(ctxKeyActorID)
	name, _ := c.Get(ctxKeyActorName)
	actorID, _ := id.(uuid.UUID)
	actorName, _ := name.(string)
	return actorID, actorName
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
