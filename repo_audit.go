package membership

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// AuditLogs is the append-only audit repository. There is no update or
// delete path, deliberately.
type AuditLogs interface {
	CreateTx(ctx context.Context, tx bun.IDB, entry *AuditLog) (*AuditLog, error)
	List(ctx context.Context, page, perPage int) ([]*AuditLog, int, error)
}

type auditLogs struct {
	db *bun.DB
}

var _ AuditLogs = (*auditLogs)(nil)

func NewAuditLogsRepository(db *bun.DB) AuditLogs {
	return &auditLogs{db: db}
}

func (r *auditLogs) CreateTx(ctx context.Context, tx bun.IDB, entry *AuditLog) (*AuditLog, error) {
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns one page of entries ordered by creation ascending, with the
// acting user summary loaded, plus the total entry count.
func (r *auditLogs) List(ctx context.Context, page, perPage int) ([]*AuditLog, int, error) {
	var records []*AuditLog

	count, err := r.db.NewSelect().
		Model(&records).
		Relation("User").
		Order("alg.created_at ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		ScanAndCount(ctx)

	if err != nil && err != sql.ErrNoRows {
		return nil, 0, err
	}

	return records, count, nil
}
