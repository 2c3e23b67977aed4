package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the client's record of an authenticated user: the tokens
// returned by the backend plus the user's id. The zero value means
// logged out.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// IsZero reports whether the session is empty (no authenticated user).
func (s Session) IsZero() bool {
	return s == Session{}
}

// TokenExpiry decodes the access token's exp claim without verifying the
// signature. The backend is the only party that validates tokens; this is
// purely advisory, e.g. to warn that a stored login has gone stale.
// Returns false if there is no token or the claim cannot be read.
func (s Session) TokenExpiry() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
