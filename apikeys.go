package membership

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateApiKeyPayload carries the inputs for issuing a new API key.
type CreateApiKeyPayload struct {
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate checks the payload shape.
func (p CreateApiKeyPayload) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("user_id is required", errors.CategoryValidation)
	}

	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
	)
}

// ApiKeyResponse is the creation result. Secret carries the plaintext
// exactly once; it is not recoverable afterwards.
type ApiKeyResponse struct {
	Key    *ApiKey `json:"key"`
	Secret string  `json:"secret,omitempty"`
}

// ApiKeyService issues, verifies, lists, and revokes API keys. Caller-side
// authorization (admin only) happens before these methods are invoked; the
// service itself does not authorize.
type ApiKeyService struct {
	repo   RepositoryManager
	audit  *AuditLogger
	logger Logger
	now    func() time.Time
}

// NewApiKeyService returns a new ApiKeyService.
func NewApiKeyService(repo RepositoryManager, audit *AuditLogger, opts ...ApiKeyServiceOption) *ApiKeyService {
	s := &ApiKeyService{
		repo:   repo,
		audit:  audit,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// ApiKeyServiceOption customizes an ApiKeyService.
type ApiKeyServiceOption func(*ApiKeyService)

// WithApiKeyLogger overrides the service logger.
func WithApiKeyLogger(l Logger) ApiKeyServiceOption {
	return func(s *ApiKeyService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithApiKeyClock overrides the expiry clock.
func WithApiKeyClock(now func() time.Time) ApiKeyServiceOption {
	return func(s *ApiKeyService) {
		if now != nil {
			s.now = now
		}
	}
}

// Create issues a key for payload.UserID, persisting the key row and its
// audit entry in one transaction. The returned response is the only place
// the plaintext secret ever appears.
func (s *ApiKeyService) Create(ctx context.Context, actor uuid.UUID, payload CreateApiKeyPayload) (*ApiKeyResponse, error) {
	if err := payload.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid api key payload")
	}

	exists, err := s.repo.Users().Exists(ctx, payload.UserID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check api key owner")
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	secret, err := GenerateApiKeySecret()
	if err != nil {
		return nil, err
	}

	hash, err := HashApiKeySecret(secret)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash api key secret")
	}

	record := &ApiKey{
		UserID:      payload.UserID,
		Name:        payload.Name,
		KeyHash:     hash,
		Fingerprint: ApiKeyFingerprint(secret),
		IsActive:    true,
		ExpiresAt:   payload.ExpiresAt,
		CreatedBy:   actor,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.ApiKeys().CreateTx(ctx, tx, record); err != nil {
			return err
		}

		return s.audit.AddLogTx(ctx, tx, actor,
			fmt.Sprintf("created api key %q for user %s", record.Name, record.UserID))
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create api key")
	}

	return &ApiKeyResponse{Key: record, Secret: secret}, nil
}

// Verify resolves the presented plaintext secret to its key record. Expiry
// is derived from expires_at at call time; the stored is_active flag is not
// rewritten when a key lapses.
func (s *ApiKeyService) Verify(ctx context.Context, presented string) (*ApiKey, error) {
	if presented == "" {
		return nil, ErrInvalidApiKey
	}

	key, err := s.repo.ApiKeys().GetByFingerprint(ctx, ApiKeyFingerprint(presented))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidApiKey
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up api key")
	}

	if key.Expired(s.now()) {
		return nil, ErrApiKeyExpired
	}

	if !key.IsActive {
		return nil, ErrApiKeyInactive
	}

	if err := CompareApiKeySecretAndHash(presented, key.KeyHash); err != nil {
		return nil, ErrInvalidApiKey
	}

	key.KeyHash = ""
	key.Fingerprint = ""

	return key, nil
}

// List returns every key for the user with secret material blanked. The
// listing shows metadata only; the original secret is unrecoverable.
func (s *ApiKeyService) List(ctx context.Context, userID uuid.UUID) ([]*ApiKey, error) {
	keys, err := s.repo.ApiKeys().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list api keys")
	}

	for _, key := range keys {
		key.KeyHash = ""
		key.Fingerprint = ""
	}

	return keys, nil
}

// Delete revokes the key and writes the audit entry in the same
// transaction. There is no reactivate path.
func (s *ApiKeyService) Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rows, err := s.repo.ApiKeys().DeleteTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if rows == 0 {
			return ErrApiKeyNotFound
		}

		return s.audit.AddLogTx(ctx, tx, actor, fmt.Sprintf("deleted api key %s", id))
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete api key")
	}

	return nil
}
