// Package session owns the client-side credential: it stores the bearer
// token, decodes it into an identity and hands out consistent snapshots of
// that identity to guards and policy checks.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"articledesk/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names issued by the articledesk backend.
const (
	ClaimSubject  = "sub"
	ClaimUsername = "name"
	ClaimRole     = "role"
)

// Long-form claim URIs used by .NET identity backends.
const (
	claimNameIdentifierURI = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimNameURI           = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimRoleURI           = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

var ErrInvalidToken = errors.New("session: invalid token")

// Decode extracts the identity from a bearer token without verifying its
// signature; the backend verifies on every request. An expired or
// malformed token is an error, which callers treat as logged out.
func Decode(token string, now time.Time) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if exp, err := claims.GetExpirationTime(); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	} else if exp != nil && !now.Before(exp.Time) {
		return domain.Identity{}, fmt.Errorf("%w: expired at %s", ErrInvalidToken, exp.Time.Format(time.RFC3339))
	}

	id := firstString(claims, ClaimSubject, claimNameIdentifierURI, "user_id")
	username := firstString(claims, ClaimUsername, claimNameURI, "username")
	rawRole := firstString(claims, ClaimRole, claimRoleURI)
	if id == "" || rawRole == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject or role claim", ErrInvalidToken)
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return domain.Identity{ID: id, Username: username, Role: role}, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
