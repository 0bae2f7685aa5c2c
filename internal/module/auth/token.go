package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/simp-lee/touradmin/internal/domain"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewTokens creates a Tokens. Panics if secret is empty.
func NewTokens(secret, issuer string, expiry time.Duration) *Tokens {
	if secret == "" {
		panic("auth.NewTokens: secret must not be empty")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue signs a token for u and returns it with its expiry.
func (t *Tokens) Issue(u *domain.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.expiry)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses a signed token and returns the actor it names.
func (t *Tokens) Verify(token string) (domain.Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method " + tok.Method.Alg())
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Actor{}, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", err)
	}
	if t.issuer != "" && !claims.VerifyIssuer(t.issuer, true) {
		return domain.Actor{}, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", nil)
	}
	if claims.Subject == "" {
		return domain.Actor{}, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", nil)
	}
	return domain.Actor{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
