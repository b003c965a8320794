package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T) (*gin.Engine, *struct {
	actorID   uuid.UUID
	actorName string
}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	captured := &struct {
		actorID   uuid.UUID
		actorName string
	}{}

	router := gin.New()
	router.Use(NewAuthMiddleware(log, testSecret).RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		captured.actorID, captured.actorName = Actor(c)
		c.Status(http.StatusOK)
	})
	return router, captured
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	router, captured := newAuthRouter(t)

	actorID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  actorID.String(),
		"name": "Ops Admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if captured.actorID != actorID || captured.actorName != "Ops Admin" {
		t.Fatalf("actor = %s/%q", captured.actorID, captured.actorName)
	}
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	router, _ := newAuthRouter(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
			"sub": uuid.NewString(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": uuid.NewString(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"non-uuid subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "admin-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
