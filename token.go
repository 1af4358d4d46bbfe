package portalauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether the access token carries an exp claim
// within skew of the past. The signature is deliberately not verified —
// the server remains authoritative; this check only avoids sending a
// request that is certain to come back 401. Tokens that are not JWTs or
// carry no exp claim are never considered expired here.
func tokenExpired(token string, skew time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Now().Add(skew).After(exp.Time)
}
