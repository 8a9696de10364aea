package membership

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenInvalid   = "auth_token_invalid"
	TextCodeTokenExpired   = "auth_token_expired"
	TextCodeForbidden      = "auth_forbidden"
	TextCodeUserNotFound   = "user_not_found"
	TextCodeApiKeyInvalid  = "api_key_invalid"
	TextCodeApiKeyExpired  = "api_key_expired"
	TextCodeApiKeyInactive = "api_key_inactive"
	TextCodeApiKeyNotFound = "api_key_not_found"
	TextCodeUniqueConflict = "unique_violation"
)

// ErrTokenInvalid is returned when a bearer token fails signature validation
// or carries a missing/malformed subject.
var ErrTokenInvalid = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when an otherwise valid token is past its expiry.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned by services when an authenticated caller lacks the
// required role. Guard predicates only answer questions; services raise this.
var ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrUserNotFound is returned when a referenced member does not exist.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidApiKey is returned when no API key matches the presented secret.
var ErrInvalidApiKey = errors.New("invalid api key", errors.CategoryAuth).
	WithTextCode(TextCodeApiKeyInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrApiKeyExpired is returned when a matching key is past its expiry.
// The stored is_active flag is not consulted for this; expiry is derived.
var ErrApiKeyExpired = errors.New("api key expired", errors.CategoryAuth).
	WithTextCode(TextCodeApiKeyExpired).
	WithCode(errors.CodeUnauthorized)

// ErrApiKeyInactive is returned when a matching key has been deactivated.
var ErrApiKeyInactive = errors.New("api key inactive", errors.CategoryAuth).
	WithTextCode(TextCodeApiKeyInactive).
	WithCode(errors.CodeUnauthorized)

// ErrApiKeyNotFound is returned when a key referenced by id does not exist.
var ErrApiKeyNotFound = errors.New("api key not found", errors.CategoryNotFound).
	WithTextCode(TextCodeApiKeyNotFound).
	WithCode(errors.CodeNotFound)

// NewUniqueViolation builds the typed conflict error surfaced by the
// constraint translator. The violated field name rides in the metadata so
// transport layers can point at the offending input.
func NewUniqueViolation(field string) *errors.Error {
	return errors.New(field+" already exists", errors.CategoryConflict).
		WithTextCode(TextCodeUniqueConflict).
		WithCode(errors.CodeConflict).
		WithMetadata(map[string]any{"field": field})
}

// IsUniqueViolation reports whether err is a translated uniqueness conflict
// and, if so, which field it names.
func IsUniqueViolation(err error) (string, bool) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return "", false
	}
	if richErr.TextCode != TextCodeUniqueConflict {
		return "", false
	}
	field, _ := richErr.Metadata["field"].(string)
	return field, true
}

// IsTokenExpiredError will check for expired tokens, including legacy
// string-matched errors coming out of middleware layers.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsAuthError reports whether err should surface as an authentication
// failure rather than a server error.
func IsAuthError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth || richErr.Category == errors.CategoryAuthz
}
