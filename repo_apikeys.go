package membership

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApiKeys is the API key repository. Writes take an explicit bun.IDB so the
// caller decides which transaction the mutation joins.
type ApiKeys interface {
	CreateTx(ctx context.Context, tx bun.IDB, record *ApiKey) (*ApiKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ApiKey, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*ApiKey, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*ApiKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ApiKey, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (int64, error)
}

type apiKeys struct {
	db *bun.DB
}

var _ ApiKeys = (*apiKeys)(nil)

func NewApiKeysRepository(db *bun.DB) ApiKeys {
	return &apiKeys{db: db}
}

func (r *apiKeys) CreateTx(ctx context.Context, tx bun.IDB, record *ApiKey) (*ApiKey, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
		record.UpdatedAt = &now
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *apiKeys) GetByID(ctx context.Context, id uuid.UUID) (*ApiKey, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

func (r *apiKeys) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*ApiKey, error) {
	record := &ApiKey{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *apiKeys) GetByFingerprint(ctx context.Context, fingerprint string) (*ApiKey, error) {
	record := &ApiKey{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.fingerprint = ?", fingerprint).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *apiKeys) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ApiKey, error) {
	var records []*ApiKey

	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return records, nil
}

func (r *apiKeys) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (int64, error) {
	res, err := tx.NewDelete().
		Model((*ApiKey)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
