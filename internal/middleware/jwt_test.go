package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhive/streamhive/config"
	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/model"
	"github.com/streamhive/streamhive/internal/service"
	"gorm.io/gorm"
)

// fakeUserLoader serves the accounts tokens may resolve to.
type fakeUserLoader struct {
	users map[uint]*model.User
}

func (f *fakeUserLoader) GetByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := service.NewJWTService(config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	loader := &fakeUserLoader{users: map[uint]*model.User{
		42: {
			Model:    gorm.Model{ID: 42},
			Username: "alice",
			Email:    "alice@example.com",
			FullName: "Alice Doe",
			Password: "hashed-secret",
		},
	}}
	mw := NewJWTMiddleware(jwtService, loader)

	router := gin.New()
	router.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
		user := c.MustGet("user").(*model.User)
		c.JSON(http.StatusOK, gin.H{
			"user_id":  user.ID,
			"username": user.Username,
			"password": user.Password,
		})
	})
	router.GET("/optional", mw.OptionalAuth(), func(c *gin.Context) {
		if id, ok := c.Get("user_id"); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
	})

	return router, jwtService
}

func issueAccessToken(t *testing.T, jwtService *service.JWTService) string {
	t.Helper()
	token, err := jwtService.GenerateAccessToken(42, "alice@example.com", "alice", "Alice Doe")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	return token
}

func TestRequireAuth_CookieToken(t *testing.T) {
	router, jwtService := newTestRouter(t)
	token := issueAccessToken(t, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"password":""`) {
		t.Errorf("credential field leaked into context: %s", rec.Body.String())
	}
}

func TestRequireAuth_BearerToken(t *testing.T) {
	router, jwtService := newTestRouter(t)
	token := issueAccessToken(t, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	router, jwtService := newTestRouter(t)

	expiredService := service.NewJWTService(config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessExpiry:  -time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	expired := issueAccessToken(t, expiredService)

	refresh, err := jwtService.GenerateRefreshToken(42)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	// Validly signed, but the account behind it no longer exists.
	ghost, err := jwtService.GenerateAccessToken(999, "ghost@example.com", "ghost", "Ghost")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{"no token", func(*http.Request) {}},
		{"malformed header", func(req *http.Request) {
			req.Header.Set(constants.HeaderAuthorization, "Token abc")
		}},
		{"garbage token", func(req *http.Request) {
			req.Header.Set(constants.HeaderAuthorization, "Bearer not-a-jwt")
		}},
		{"expired token", func(req *http.Request) {
			req.Header.Set(constants.HeaderAuthorization, "Bearer "+expired)
		}},
		{"expired token via cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: expired})
		}},
		{"refresh token in access slot", func(req *http.Request) {
			req.Header.Set(constants.HeaderAuthorization, "Bearer "+refresh)
		}},
		{"token for deleted account", func(req *http.Request) {
			req.Header.Set(constants.HeaderAuthorization, "Bearer "+ghost)
		}},
		{"token for deleted account via cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: ghost})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router, jwtService := newTestRouter(t)
	token := issueAccessToken(t, jwtService)

	// Anonymous passes through.
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d, want 200", rec.Code)
	}

	// Invalid token degrades to anonymous instead of rejecting.
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer junk")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invalid-token status = %d, want 200", rec.Code)
	}

	// A token for a deleted account degrades to anonymous.
	ghost, err := jwtService.GenerateAccessToken(999, "ghost@example.com", "ghost", "Ghost")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+ghost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"anonymous":true}` {
		t.Fatalf("deleted-account token: status = %d body = %s, want anonymous 200", rec.Code, rec.Body.String())
	}

	// Valid token sets identity.
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid-token status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body == "" || body == `{"anonymous":true}` {
		t.Errorf("identity not set under valid token: %s", body)
	}
}
