package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// TokenManager mints and parses the signed session tokens carried in the
// session cookie. A plain login token lives for sessionTTL; "remember me"
// extends it to rememberTTL so the session survives browser restarts until
// the token expires and re-authentication is forced.
type TokenManager struct {
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewTokenManager(secret string, sessionTTL, rememberTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

type Claims struct {
	Remember bool `json:"rem,omitempty"`
	jwt.RegisteredClaims
}

func (tm *TokenManager) Issue(userID int64, remember bool) (string, time.Time, error) {
	now := time.Now()
	ttl := tm.sessionTTL
	if remember {
		ttl = tm.rememberTTL
	}
	exp := now.Add(ttl)

	claims := Claims{
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse returns the user id the token was issued to, and whether it was a
// remember-me token. Expired or tampered tokens fail with ErrInvalidToken.
func (tm *TokenManager) Parse(tokenStr string) (int64, bool, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	})
	if err != nil {
		return 0, false, ErrInvalidToken
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return 0, false, ErrInvalidToken
	}
	return uid, claims.Remember, nil
}
