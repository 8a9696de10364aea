package membership

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories plus the shared transaction
// runner. Every privileged mutation and its audit entry go through the same
// RunInTx call so they commit or roll back atomically.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	ApiKeys() ApiKeys
	AuditLogs() AuditLogs
	Badges() Badges
	Stations() Stations
}

type mngr struct {
	db        *bun.DB
	users     Users
	apiKeys   ApiKeys
	auditLogs AuditLogs
	badges    Badges
	stations  Stations
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		apiKeys:   NewApiKeysRepository(db),
		auditLogs: NewAuditLogsRepository(db),
		badges:    NewBadgesRepository(db),
		stations:  NewStationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.apiKeys == nil {
		return errors.New("repository apiKeys should be initialized")
	}

	if m.auditLogs == nil {
		return errors.New("repository auditLogs should be initialized")
	}

	if m.badges == nil {
		return errors.New("repository badges should be initialized")
	}

	if m.stations == nil {
		return errors.New("repository stations should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) ApiKeys() ApiKeys {
	return m.apiKeys
}

func (m mngr) AuditLogs() AuditLogs {
	return m.auditLogs
}

func (m mngr) Badges() Badges {
	return m.badges
}

func (m mngr) Stations() Stations {
	return m.stations
}
