package membership

import (
	"context"

	"github.com/uptrace/bun"
)

// Badges is the competency badge repository.
type Badges interface {
	CreateTx(ctx context.Context, tx bun.IDB, record *Badge) (*Badge, error)
	GetByID(ctx context.Context, id int64) (*Badge, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id int64) (int64, error)
}

// Stations is the workshop station repository.
type Stations interface {
	CreateTx(ctx context.Context, tx bun.IDB, record *Station) (*Station, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type badges struct {
	db *bun.DB
}

var _ Badges = (*badges)(nil)

func NewBadgesRepository(db *bun.DB) Badges {
	return &badges{db: db}
}

func (r *badges) CreateTx(ctx context.Context, tx bun.IDB, record *Badge) (*Badge, error) {
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *badges) GetByID(ctx context.Context, id int64) (*Badge, error) {
	record := &Badge{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Station").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *badges) DeleteTx(ctx context.Context, tx bun.IDB, id int64) (int64, error) {
	res, err := tx.NewDelete().
		Model((*Badge)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

type stations struct {
	db *bun.DB
}

var _ Stations = (*stations)(nil)

func NewStationsRepository(db *bun.DB) Stations {
	return &stations{db: db}
}

func (r *stations) CreateTx(ctx context.Context, tx bun.IDB, record *Station) (*Station, error) {
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *stations) Exists(ctx context.Context, id int64) (bool, error) {
	return r.db.NewSelect().
		Model((*Station)(nil)).
		Where("?TableAlias.id = ?", id).
		Exists(ctx)
}
