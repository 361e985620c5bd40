package backend

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by InspectToken for a JWT past its exp claim.
var ErrTokenExpired = errors.New("api token has expired")

// TokenInfo is what can be read from a bearer token without its signing key.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// InspectToken reads the claims of a JWT bearer token without verifying the
// signature; the backend does that. Opaque (non-JWT) tokens return ok=false.
func InspectToken(token string, now time.Time) (info TokenInfo, ok bool, err error) {
	var claims jwt.RegisteredClaims
	if _, _, perr := jwt.NewParser().ParseUnverified(token, &claims); perr != nil {
		return TokenInfo{}, false, nil
	}
	info.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(info.ExpiresAt) {
			return info, true, ErrTokenExpired
		}
	}
	return info, true, nil
}
