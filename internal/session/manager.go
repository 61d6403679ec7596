package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// SameSite is None for cross-site production deployments and Lax otherwise.
func (c CookieConfig) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Manager ties sessions to HTTP requests.
type Manager struct {
	store  Store
	tokens *Tokens
	cookie CookieConfig
}

func NewManager(store Store, tokens *Tokens, cookie CookieConfig) *Manager {
	if cookie.Name == "" {
		cookie.Name = "thumbgen_session"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 7 * 24 * time.Hour
	}
	return &Manager{store: store, tokens: tokens, cookie: cookie}
}

// Start creates a session for userID and sets the cookie on w.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID string) error {
	s, err := m.store.Create(ctx, userID, m.cookie.TTL)
	if err != nil {
		return err
	}
	token, err := m.tokens.Sign(s)
	if err != nil {
		_ = m.store.Destroy(ctx, s.ID)
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cookie.TTL.Seconds()),
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.sameSite(),
	})
	return nil
}

// Resolve returns the user id behind the request cookie. Any failure yields
// ErrNotFound or ErrInvalidToken.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (string, error) {
	s, err := m.lookup(ctx, r)
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

// End destroys the session and expires the cookie. A request without a valid
// session still gets the cookie cleared.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	c, err := r.Cookie(m.cookie.Name)
	if err != nil {
		return nil
	}
	claims, err := m.tokens.Parse(c.Value)
	if err != nil {
		return nil
	}
	if err := m.store.Destroy(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (m *Manager) lookup(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return nil, ErrNotFound
	}
	claims, err := m.tokens.Parse(c.Value)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Lookup(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "" && claims.Subject != s.UserID {
		return nil, ErrInvalidToken
	}
	return s, nil
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.sameSite(),
	})
}

// IsUnauthenticated reports whether err means the caller has no usable session.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidToken)
}
