package membership

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultLogsPerPage = 25
	maxLogsPerPage     = 100
)

// AuditLogPage is one page of audit entries.
type AuditLogPage struct {
	Entries []*AuditLog `json:"entries"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Total   int         `json:"total"`
}

// AuditLogger appends audit entries for privileged mutations. AddLogTx takes
// the caller's transaction handle: the entry commits with the mutation it
// describes or not at all.
type AuditLogger struct {
	repo   RepositoryManager
	logger Logger
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(repo RepositoryManager) *AuditLogger {
	return &AuditLogger{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the audit logger's diagnostic logger.
func (a *AuditLogger) WithLogger(l Logger) *AuditLogger {
	if l != nil {
		a.logger = l
	}
	return a
}

// AddLogTx appends one entry on the given handle. The acting user must
// exist; the foreign key enforces it at commit time.
func (a *AuditLogger) AddLogTx(ctx context.Context, tx bun.IDB, actorID uuid.UUID, message string) error {
	if actorID == uuid.Nil {
		return errors.New("audit entry requires an acting user", errors.CategoryBadInput)
	}

	if message == "" {
		return errors.New("audit entry requires a message", errors.CategoryBadInput)
	}

	entry := &AuditLog{
		UserID: actorID,
		Log:    message,
	}

	if _, err := a.repo.AuditLogs().CreateTx(ctx, tx, entry); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to write audit entry")
	}

	return nil
}

// GetLogs returns one page of entries, creation ascending, each with the
// acting user's summary embedded. Admin gating is the caller's concern.
func (a *AuditLogger) GetLogs(ctx context.Context, page, perPage int) (*AuditLogPage, error) {
	if page < 1 {
		page = 1
	}

	if perPage < 1 {
		perPage = defaultLogsPerPage
	} else if perPage > maxLogsPerPage {
		perPage = maxLogsPerPage
	}

	entries, total, err := a.repo.AuditLogs().List(ctx, page, perPage)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list audit entries")
	}

	return &AuditLogPage{
		Entries: entries,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}
