package membership

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MemberClaims are the verified claims the core trusts after signature
// validation. The subject must parse as the member's primary key; name,
// email, and phone ride along as provisioning hints.
type MemberClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// SubjectUUID parses the subject claim as the member primary key.
func (c *MemberClaims) SubjectUUID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Expires returns the expiration time, zero when the claim is absent.
func (c *MemberClaims) Expires() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedTime returns the issued-at time, zero when the claim is absent.
func (c *MemberClaims) IssuedTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}
