package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/apperrors"
)

// CookieName is the session cookie.
const CookieName = "attendance_session"

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

// AccountLoader reloads the account behind a session.
type AccountLoader interface {
	Get(ctx context.Context, id uint) (account.Account, error)
}

// Middleware ties session tokens, revocations and account lookup together.
type Middleware struct {
	sessions    *Sessions
	revocations Revocations
	accounts    AccountLoader
	secure      bool
	lg          zerolog.Logger
}

// NewMiddleware builds the session middleware. secure marks cookies Secure.
func NewMiddleware(sessions *Sessions, revocations Revocations, accounts AccountLoader, secure bool, lg zerolog.Logger) *Middleware {
	return &Middleware{
		sessions:    sessions,
		revocations: revocations,
		accounts:    accounts,
		secure:      secure,
		lg:          lg.With().Str("component", "auth").Logger(),
	}
}

// Login issues a session for a and sets the cookie.
func (m *Middleware) Login(c *gin.Context, a account.Account) error {
	tok, err := m.sessions.Issue(a.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tok.Value, int(m.sessions.TTL().Seconds()), "/", "", m.secure, true)
	return nil
}

// Logout revokes the current token, if there is a valid one, and clears the
// cookie. Calling it without a session is fine.
func (m *Middleware) Logout(c *gin.Context) {
	if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
		if claims, err := m.sessions.Parse(raw); err == nil {
			if err := m.revocations.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				m.lg.Error().Err(err).Uint("accountID", claims.AccountID).Msg("revoke session failed")
			}
		}
	}
	m.clearCookie(c)
}

func (m *Middleware) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}

// RequireSession rejects requests without a valid session and stores the
// freshly loaded account in the request context.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		claims, err := m.sessions.Parse(raw)
		if err != nil {
			m.clearCookie(c)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		revoked, err := m.revocations.Revoked(ctx, claims.ID)
		if err != nil {
			m.lg.Error().Err(err).Msg("revocation lookup failed")
			c.String(http.StatusInternalServerError, "internal server error")
			c.Abort()
			return
		}
		if revoked {
			m.clearCookie(c)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		a, err := m.accounts.Get(ctx, claims.AccountID)
		if errors.Is(err, apperrors.ErrNotFound) {
			m.clearCookie(c)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		if err != nil {
			m.lg.Error().Err(err).Uint("accountID", claims.AccountID).Msg("session account lookup failed")
			c.String(http.StatusInternalServerError, "internal server error")
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAccount(ctx, a))
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := Current(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		if !account.IsAdmin(a) {
			c.String(http.StatusForbidden, "Access denied. Only the admin can access this page.")
			c.Abort()
			return
		}
		c.Next()
	}
}
