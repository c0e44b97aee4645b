// Package middleware provides HTTP middleware shared by the server routes.
package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "cv_session"

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const sessionIDKey ContextKey = "sessionID"

// ErrNoSession is returned by SessionID when the context carries no session.
var ErrNoSession = errors.New("session ID not found in request context")

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	IssueToken(id uuid.UUID) (token string, expires time.Time, err error)
	ValidateToken(token string) (uuid.UUID, error)
}

// Sessions makes sure every request belongs to a session. A request without a
// valid session cookie starts a new session and receives a fresh cookie.
func Sessions(tokens TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
				if id, err := tokens.ValidateToken(c.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
					return
				}
			}

			id := uuid.New()
			token, expires, err := tokens.IssueToken(id)
			if err != nil {
				log.Printf("[SERVER] Failed to issue session token: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				Expires:  expires,
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// WithSessionID returns ctx carrying the session id.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID extracts the session id from the request context.
func SessionID(r *http.Request) (uuid.UUID, error) {
	id, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	return id, nil
}
