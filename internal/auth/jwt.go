package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token is a signed session token and the facts needed to store or revoke it.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Claims is the session token payload. Only the account id travels; the role
// is always reloaded from the database.
type Claims struct {
	AccountID uint `json:"aid"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a token issuer.
func NewSessions(key, issuer string, ttl time.Duration) *Sessions {
	return &Sessions{key: []byte(key), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a token for accountID.
func (s *Sessions) Issue(accountID uint) (Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	id := uuid.NewString()

	claims := Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: id, ExpiresAt: exp}, nil
}

// Parse validates a token and returns its claims.
func (s *Sessions) Parse(tokenStr string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.AccountID == 0 || claims.ID == "" {
		return Claims{}, errors.New("invalid token")
	}
	return *claims, nil
}
