package membership

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the member repository. GetWithGrants eagerly loads the role and
// station-instructor associations so Principal construction never has to
// chase relations lazily.
type Users interface {
	repository.Repository[*User]

	GetWithGrants(ctx context.Context, id uuid.UUID) (*User, error)
	GetWithGrantsTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetWithGrants(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetWithGrantsTx(ctx, a.db, id)
}

func (a *users) GetWithGrantsTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Stations").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errorsIsNoRows(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return a.ExistsTx(ctx, a.db, id)
}

func (a *users) ExistsTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exists(ctx)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareMemberDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func prepareMemberDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.FirstName == "" {
		record.FirstName = defaultFirstName
	}

	if record.LastName == "" {
		record.LastName = defaultLastName
	}
}

func errorsIsNoRows(err error) bool {
	if err == nil {
		return false
	}
	if err == sql.ErrNoRows {
		return true
	}
	return repository.IsRecordNotFound(err)
}
