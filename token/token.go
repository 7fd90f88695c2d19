// Package token issues and verifies the signed bearer tokens used for
// sessions and password reset grants.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type Scope string

const (
	ScopeSession Scope = "session"
	ScopeReset   Scope = "reset"
)

// ErrInvalidToken is the only error returned by verification. Which check
// failed is deliberately not reported.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of every token.
type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// Grant is a verified token.
type Grant struct {
	Subject   string
	Id        string
	ExpiresAt time.Time
}

type Service struct {
	sessionSecret []byte
	resetSecret   []byte
	sessionTTL    time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

func NewService(sessionSecret, resetSecret string, sessionTTL, resetTTL time.Duration) (*Service, error) {
	if sessionSecret == "" || resetSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if sessionSecret == resetSecret {
		return nil, errors.New("session and reset secrets must differ")
	}
	return &Service{
		sessionSecret: []byte(sessionSecret),
		resetSecret:   []byte(resetSecret),
		sessionTTL:    sessionTTL,
		resetTTL:      resetTTL,
		now:           time.Now,
	}, nil
}

// SetClock overrides the clock used when issuing tokens. Test only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) IssueSession(subject string) (string, error) {
	return s.issue(subject, ScopeSession, s.sessionSecret, s.sessionTTL)
}

func (s *Service) IssueReset(subject string) (string, error) {
	return s.issue(subject, ScopeReset, s.resetSecret, s.resetTTL)
}

func (s *Service) VerifySession(tokenString string) (*Grant, error) {
	return s.verify(tokenString, ScopeSession, s.sessionSecret)
}

func (s *Service) VerifyReset(tokenString string) (*Grant, error) {
	return s.verify(tokenString, ScopeReset, s.resetSecret)
}

func (s *Service) issue(subject string, scope Scope, secret []byte, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}
	now := s.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) verify(tokenString string, scope Scope, secret []byte) (*Grant, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != scope || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &Grant{
		Subject:   claims.Subject,
		Id:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
