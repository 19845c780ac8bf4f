package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	"skillex/pkg/logger"
	"skillex/pkg/model"
)

const testSecret = "test-secret"

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(testSecret, logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}))
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "6653f1a2b3c4d5e6f7a8b9c0",
		"role": model.RoleLearner,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequire(t *testing.T) {
	auth := newTestAuthenticator()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, validClaims()), http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", validClaims()), http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub":  "6653f1a2b3c4d5e6f7a8b9c0",
			"role": model.RoleLearner,
			"exp":  time.Now().Add(-time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"missing role claim", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "6653f1a2b3c4d5e6f7a8b9c0",
			"exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := auth.Require(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				identity, ok := IdentityFrom(r.Context())
				if !ok {
					t.Error("identity missing from context inside guarded handler")
				}
				if identity.UserID != "6653f1a2b3c4d5e6f7a8b9c0" {
					t.Errorf("UserID = %s", identity.UserID)
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := newTestAuthenticator()

	handler := auth.RequireRole(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}, model.RoleAdmin)

	t.Run("learner rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
		rec := httptest.NewRecorder()
		handler(rec, req, nil)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin allowed", func(t *testing.T) {
		claims := validClaims()
		claims["role"] = model.RoleAdmin
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
		rec := httptest.NewRecorder()
		handler(rec, req, nil)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

func TestOptional(t *testing.T) {
	auth := newTestAuthenticator()

	t.Run("anonymous passes through", func(t *testing.T) {
		handler := auth.Optional(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			if _, ok := IdentityFrom(r.Context()); ok {
				t.Error("anonymous request should carry no identity")
			}
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/listings/abc", nil)
		rec := httptest.NewRecorder()
		handler(rec, req, nil)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("token injects identity", func(t *testing.T) {
		handler := auth.Optional(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			identity, ok := IdentityFrom(r.Context())
			if !ok || identity.Role != model.RoleLearner {
				t.Errorf("identity = %+v, ok = %v", identity, ok)
			}
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/listings/abc", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
		rec := httptest.NewRecorder()
		handler(rec, req, nil)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}
