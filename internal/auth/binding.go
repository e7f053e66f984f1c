package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateCookieName is the cookie that binds a login attempt to the browser
// that started it.
const StateCookieName = "malauth_state"

// StateBinder ties the state marker to a signed, short-lived cookie so a
// callback is only accepted from the browser that began the login.
type StateBinder struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewStateBinder creates a StateBinder signing cookies with key (HS256).
func NewStateBinder(key []byte, ttl time.Duration, secure bool) *StateBinder {
	return &StateBinder{
		key:    key,
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Bind returns a new random marker and the cookie carrying it.
func (b *StateBinder) Bind() (string, *http.Cookie, error) {
	nonce := uuid.NewString()
	now := b.now()

	claims := jwt.RegisteredClaims{
		ID:        nonce,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign state cookie: %w", err)
	}

	return nonce, &http.Cookie{
		Name:     StateCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(b.ttl.Seconds()),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Verify checks that cookieValue was issued by Bind for marker and has not
// expired.
func (b *StateBinder) Verify(cookieValue, marker string) error {
	if cookieValue == "" {
		return errors.New("state cookie is missing")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(cookieValue, &claims,
		func(*jwt.Token) (any, error) { return b.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return fmt.Errorf("state cookie rejected: %w", err)
	}

	if claims.ID == "" || subtle.ConstantTimeCompare([]byte(claims.ID), []byte(marker)) != 1 {
		return errors.New("state does not match state cookie")
	}
	return nil
}

// Clear returns a cookie that removes the binding cookie.
func (b *StateBinder) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
