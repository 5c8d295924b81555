package directory

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityParser turns the token of an "Authorization: Bearer <token>"
// header into a directory lookup key. Token semantics belong to the
// deployment, so callers supply whichever parser fits their environment.
type IdentityParser func(token string) (string, error)

// RawIdentity treats the bearer token itself as the lookup key.
func RawIdentity(token string) (string, error) {
	return token, nil
}

// JWTClaimIdentity verifies an HS256-signed JWT and extracts the named
// claim as the lookup key.
func JWTClaimIdentity(secret, claim string) IdentityParser {
	return func(token string) (string, error) {
		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			return "", fmt.Errorf("invalid bearer token: %w", err)
		}
		if !tkn.Valid {
			return "", errors.New("invalid bearer token")
		}

		value, _ := claims[claim].(string)
		if value == "" {
			return "", fmt.Errorf("bearer token missing %q claim", claim)
		}
		return value, nil
	}
}
