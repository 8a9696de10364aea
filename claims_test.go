package membership_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerhaus/go-membership"
)

func TestMemberClaimsSubjectUUID(t *testing.T) {
	id := uuid.New()

	claims := &membership.MemberClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	}

	got, err := claims.SubjectUUID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	claims.Subject = "member-42"
	_, err = claims.SubjectUUID()
	assert.Error(t, err)

	claims.Subject = ""
	_, err = claims.SubjectUUID()
	assert.Error(t, err)
}

func TestMemberClaimsTimes(t *testing.T) {
	claims := &membership.MemberClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedTime().IsZero())

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	iat := time.Now().Add(-time.Minute).Truncate(time.Second)

	claims.ExpiresAt = jwt.NewNumericDate(exp)
	claims.IssuedAt = jwt.NewNumericDate(iat)

	assert.True(t, claims.Expires().Equal(exp))
	assert.True(t, claims.IssuedTime().Equal(iat))
}
