package membership

import (
	"fmt"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// SigningKey holds a single verification key and the algorithm it expects.
type SigningKey struct {
	JWTAlg string
	Key    any
}

// TokenVerifier validates bearer tokens against a configured key set and
// extracts the identity claim. It performs pure validation: no storage
// access, no side effects.
type TokenVerifier struct {
	keyFunc  jwt.Keyfunc
	issuer   string
	audience jwt.ClaimStrings
	logger   Logger
}

// NewTokenVerifier builds a verifier from the configured key material. The
// key set is resolved in order of specificity: an explicit keyfunc, keyed
// signing keys and/or JWK Set URLs, then the shared HMAC signing key.
func NewTokenVerifier(cfg Config, opts ...VerifierOption) (*TokenVerifier, error) {
	v := &TokenVerifier{
		issuer: cfg.GetIssuer(),
		logger: defLogger{},
	}

	if len(cfg.GetAudience()) > 0 {
		v.audience = append(v.audience, cfg.GetAudience()...)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.keyFunc == nil {
		kf, err := resolveKeyfunc(cfg)
		if err != nil {
			return nil, err
		}
		v.keyFunc = kf
	}

	return v, nil
}

// VerifierOption customizes a TokenVerifier.
type VerifierOption func(*TokenVerifier)

// WithVerifierLogger overrides the verifier logger.
func WithVerifierLogger(l Logger) VerifierOption {
	return func(v *TokenVerifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithSigningKeys installs a keyed verification set, keyed by kid.
func WithSigningKeys(keys map[string]SigningKey) VerifierOption {
	return func(v *TokenVerifier) {
		if len(keys) == 0 {
			return
		}
		givenKeys := make(map[string]keyfunc.GivenKey, len(keys))
		for kid, key := range keys {
			givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
				Algorithm: key.JWTAlg,
			})
		}
		v.keyFunc = keyfunc.NewGiven(givenKeys).Keyfunc
	}
}

// WithKeyFunc installs a custom jwt.Keyfunc, bypassing config resolution.
func WithKeyFunc(fn jwt.Keyfunc) VerifierOption {
	return func(v *TokenVerifier) {
		v.keyFunc = fn
	}
}

// Verify validates the raw token and returns its claims. Signature
// validation happens before any claim is trusted; expiry and audience checks
// run on the already-verified claim set. Returns ErrTokenExpired for valid
// but stale tokens and ErrTokenInvalid for everything else.
func (v *TokenVerifier) Verify(raw string) (*MemberClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if len(v.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience...))
	}

	token, err := jwt.ParseWithClaims(raw, &MemberClaims{}, v.keyFunc, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*MemberClaims)
	if !ok || !token.Valid {
		v.logger.Error("token verifier could not decode validated claims")
		return nil, ErrTokenInvalid
	}

	if _, err := claims.SubjectUUID(); err != nil {
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, "token subject is not a member id").
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	return claims, nil
}

func resolveKeyfunc(cfg Config) (jwt.Keyfunc, error) {
	if urls := cfg.GetJWKSetURLs(); len(urls) > 0 {
		m := make(map[string]keyfunc.Options, len(urls))
		for _, url := range urls {
			m[url] = keyfunc.Options{}
		}
		multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
			KeySelector: keyfunc.KeySelectorFirst,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load JWK Set URLs")
		}
		return multi.Keyfunc, nil
	}

	if cfg.GetSigningKey() == "" {
		return nil, errors.New("token verifier requires a signing key or JWK Set URL", errors.CategoryInternal)
	}

	method := cfg.GetSigningMethod()
	key := []byte(cfg.GetSigningKey())

	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		if method != "" {
			if alg, _ := t.Header["alg"].(string); alg != method {
				return nil, fmt.Errorf("unexpected signing method: expected %q got %q", method, alg)
			}
		}
		return key, nil
	}, nil
}
