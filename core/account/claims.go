package account

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

const Audience = "EduFlex Dashboard"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OriginalIssuedAt int64    `json:"oriat,omitempty"`
	Username         string   `json:"username,omitempty"`
	Name             string   `json:"name,omitempty"`
	IsTeacher        bool     `json:"is_teacher,omitempty"`
	IsAdmin          bool     `json:"is_admin,omitempty"`
	Roles            []string `json:"roles,omitempty"`
}

// GetAccountClaims builds the claims of acc, expiring after ttl.
// A non-zero origIat carries the first login time over a token refresh.
func GetAccountClaims(acc Account, issuer string, ttl time.Duration, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 && origIat[0] > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   acc.ID,
			Audience:  Audience,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  nownix,
		},
		OriginalIssuedAt: oriat,
		Username:         acc.Username,
		Name:             acc.Name,
		IsTeacher:        acc.IsTeacher(),
		IsAdmin:          acc.IsAdmin(),
		Roles:            acc.Roles,
	}
}

// HasAnyRole reports whether the claims hold one of roles. No roles means any.
func (c *Claims) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, want := range roles {
		for _, have := range c.Roles {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Expired reports whether the token expiry is at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && now.Unix() >= c.ExpiresAt
}
