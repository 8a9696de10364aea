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

type testConfig struct {
	signingKey    string
	signingMethod string
	issuer        string
	audience      []string
	jwkSetURLs    []string
	storageEngine string
	phoneRegion   string
}

func (c testConfig) GetSigningKey() string    { return c.signingKey }
func (c testConfig) GetSigningMethod() string { return c.signingMethod }
func (c testConfig) GetIssuer() string        { return c.issuer }
func (c testConfig) GetAudience() []string    { return c.audience }
func (c testConfig) GetJWKSetURLs() []string  { return c.jwkSetURLs }
func (c testConfig) GetContextKey() string    { return "principal" }
func (c testConfig) GetTokenLookup() string   { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string    { return "Bearer" }
func (c testConfig) GetStorageEngine() string { return c.storageEngine }
func (c testConfig) GetPhoneRegion() string   { return c.phoneRegion }

func signToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()

	if claims["exp"] == nil {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestTokenVerifier_ValidToken(t *testing.T) {
	key := []byte("test-secret")
	subject := uuid.New()

	verifier, err := membership.NewTokenVerifier(testConfig{
		signingKey:    string(key),
		signingMethod: "HS256",
	})
	require.NoError(t, err)

	raw := signToken(t, key, jwt.MapClaims{
		"sub":         subject.String(),
		"email":       "maker@example.com",
		"given_name":  "Ada",
		"family_name": "Lovelace",
		"phone":       "+15125551234",
	})

	claims, err := verifier.Verify(raw)
	require.NoError(t, err)

	id, err := claims.SubjectUUID()
	require.NoError(t, err)
	assert.Equal(t, subject, id)
	assert.Equal(t, "maker@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.GivenName)
	assert.Equal(t, "Lovelace", claims.FamilyName)
	assert.Equal(t, "+15125551234", claims.Phone)
}

func TestTokenVerifier_ExpiredToken(t *testing.T) {
	key := []byte("test-secret")

	verifier, err := membership.NewTokenVerifier(testConfig{signingKey: string(key)})
	require.NoError(t, err)

	raw := signToken(t, key, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err = verifier.Verify(raw)
	require.Error(t, err)
	assert.True(t, membership.IsTokenExpiredError(err))
	assert.True(t, membership.IsAuthError(err))
}

func TestTokenVerifier_WrongKey(t *testing.T) {
	verifier, err := membership.NewTokenVerifier(testConfig{signingKey: "verifier-secret"})
	require.NoError(t, err)

	raw := signToken(t, []byte("other-secret"), jwt.MapClaims{
		"sub": uuid.New().String(),
	})

	_, err = verifier.Verify(raw)
	require.Error(t, err)
	assert.True(t, membership.IsAuthError(err))
	assert.False(t, membership.IsTokenExpiredError(err))
}

func TestTokenVerifier_MalformedToken(t *testing.T) {
	verifier, err := membership.NewTokenVerifier(testConfig{signingKey: "test-secret"})
	require.NoError(t, err)

	_, err = verifier.Verify("not.a.token")
	require.Error(t, err)
	assert.True(t, membership.IsAuthError(err))
}

func TestTokenVerifier_SubjectMustBeMemberID(t *testing.T) {
	key := []byte("test-secret")

	verifier, err := membership.NewTokenVerifier(testConfig{signingKey: string(key)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{
			name:   "non-uuid subject",
			claims: jwt.MapClaims{"sub": "member-42"},
		},
		{
			name:   "missing subject",
			claims: jwt.MapClaims{"email": "maker@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(signToken(t, key, tt.claims))
			require.Error(t, err)
			assert.True(t, membership.IsAuthError(err))
		})
	}
}

func TestTokenVerifier_IssuerAndAudience(t *testing.T) {
	key := []byte("test-secret")

	verifier, err := membership.NewTokenVerifier(testConfig{
		signingKey: string(key),
		issuer:     "https://sso.makerhaus.example",
		audience:   []string{"membership-api"},
	})
	require.NoError(t, err)

	good := signToken(t, key, jwt.MapClaims{
		"sub": uuid.New().String(),
		"iss": "https://sso.makerhaus.example",
		"aud": "membership-api",
	})

	_, err = verifier.Verify(good)
	require.NoError(t, err)

	wrongIssuer := signToken(t, key, jwt.MapClaims{
		"sub": uuid.New().String(),
		"iss": "https://evil.example",
		"aud": "membership-api",
	})

	_, err = verifier.Verify(wrongIssuer)
	require.Error(t, err)
	assert.True(t, membership.IsAuthError(err))

	wrongAudience := signToken(t, key, jwt.MapClaims{
		"sub": uuid.New().String(),
		"iss": "https://sso.makerhaus.example",
		"aud": "other-api",
	})

	_, err = verifier.Verify(wrongAudience)
	require.Error(t, err)
	assert.True(t, membership.IsAuthError(err))
}

func TestTokenVerifier_RequiresKeyMaterial(t *testing.T) {
	_, err := membership.NewTokenVerifier(testConfig{})
	assert.Error(t, err)
}

func TestTokenVerifier_WithSigningKeys(t *testing.T) {
	key := []byte("keyed-secret")

	verifier, err := membership.NewTokenVerifier(testConfig{signingKey: "ignored"},
		membership.WithSigningKeys(map[string]membership.SigningKey{
			"kid-1": {JWTAlg: "HS256", Key: key},
		}))
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "kid-1"

	raw, err := token.SignedString(key)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.NoError(t, err)
}
