package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	"skillex/pkg/logger"
	"skillex/pkg/model"
)

const identityKey contextKey = "identity"

// Authenticator validates bearer tokens and exposes the caller's identity to
// handlers. Tokens are HS256 JWTs carrying sub (user id) and role claims.
type Authenticator struct {
	secret []byte
	log    *logger.Logger
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: log}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, ok := a.identityFromRequest(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, no valid token")
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), identity)), ps)
	}
}

// RequireRole additionally checks the role claim against the allowed set.
func (a *Authenticator) RequireRole(next httprouter.Handle, roles ...string) httprouter.Handle {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return a.Require(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, _ := IdentityFrom(r.Context())
		if !allowed[identity.Role] {
			writeAuthError(w, http.StatusForbidden, "Forbidden: insufficient role")
			return
		}
		next(w, r, ps)
	})
}

// Optional injects the identity when a valid token is present but lets
// anonymous requests through. Public reads use this to personalize results.
func (a *Authenticator) Optional(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if identity, ok := a.identityFromRequest(r); ok {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next(w, r, ps)
	}
}

func (a *Authenticator) identityFromRequest(r *http.Request) (model.Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return model.Identity{}, false
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		a.log.Debug("Token rejected", "error", err)
		return model.Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, false
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return model.Identity{}, false
	}

	return model.Identity{UserID: sub, Role: role}, true
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
