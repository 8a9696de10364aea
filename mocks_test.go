package membership_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/makerhaus/go-membership"
)

// MockUsers implements membership.Users. The embedded interface covers the
// generic repository surface the tests never touch.
type MockUsers struct {
	mock.Mock
	membership.Users
}

func (m *MockUsers) GetWithGrants(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*membership.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetWithGrantsTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*membership.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*membership.User)
	return user, args.Error(1)
}

func (m *MockUsers) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) ExistsTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *membership.User, criteria ...repository.InsertCriteria) (*membership.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*membership.User)
	return user, args.Error(1)
}

// MockApiKeys implements membership.ApiKeys.
type MockApiKeys struct {
	mock.Mock
}

func (m *MockApiKeys) CreateTx(ctx context.Context, tx bun.IDB, record *membership.ApiKey) (*membership.ApiKey, error) {
	args := m.Called(ctx, tx, record)
	key, _ := args.Get(0).(*membership.ApiKey)
	return key, args.Error(1)
}

func (m *MockApiKeys) GetByID(ctx context.Context, id uuid.UUID) (*membership.ApiKey, error) {
	args := m.Called(ctx, id)
	key, _ := args.Get(0).(*membership.ApiKey)
	return key, args.Error(1)
}

func (m *MockApiKeys) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*membership.ApiKey, error) {
	args := m.Called(ctx, tx, id)
	key, _ := args.Get(0).(*membership.ApiKey)
	return key, args.Error(1)
}

func (m *MockApiKeys) GetByFingerprint(ctx context.Context, fingerprint string) (*membership.ApiKey, error) {
	args := m.Called(ctx, fingerprint)
	key, _ := args.Get(0).(*membership.ApiKey)
	return key, args.Error(1)
}

func (m *MockApiKeys) ListByUser(ctx context.Context, userID uuid.UUID) ([]*membership.ApiKey, error) {
	args := m.Called(ctx, userID)
	keys, _ := args.Get(0).([]*membership.ApiKey)
	return keys, args.Error(1)
}

func (m *MockApiKeys) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditLogs implements membership.AuditLogs.
type MockAuditLogs struct {
	mock.Mock
}

func (m *MockAuditLogs) CreateTx(ctx context.Context, tx bun.IDB, entry *membership.AuditLog) (*membership.AuditLog, error) {
	args := m.Called(ctx, tx, entry)
	out, _ := args.Get(0).(*membership.AuditLog)
	return out, args.Error(1)
}

func (m *MockAuditLogs) List(ctx context.Context, page, perPage int) ([]*membership.AuditLog, int, error) {
	args := m.Called(ctx, page, perPage)
	entries, _ := args.Get(0).([]*membership.AuditLog)
	return entries, args.Int(1), args.Error(2)
}

// MockBadges implements membership.Badges.
type MockBadges struct {
	mock.Mock
}

func (m *MockBadges) CreateTx(ctx context.Context, tx bun.IDB, record *membership.Badge) (*membership.Badge, error) {
	args := m.Called(ctx, tx, record)
	badge, _ := args.Get(0).(*membership.Badge)
	return badge, args.Error(1)
}

func (m *MockBadges) GetByID(ctx context.Context, id int64) (*membership.Badge, error) {
	args := m.Called(ctx, id)
	badge, _ := args.Get(0).(*membership.Badge)
	return badge, args.Error(1)
}

func (m *MockBadges) DeleteTx(ctx context.Context, tx bun.IDB, id int64) (int64, error) {
	args := m.Called(ctx, tx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockStations implements membership.Stations.
type MockStations struct {
	mock.Mock
}

func (m *MockStations) CreateTx(ctx context.Context, tx bun.IDB, record *membership.Station) (*membership.Station, error) {
	args := m.Called(ctx, tx, record)
	station, _ := args.Get(0).(*membership.Station)
	return station, args.Error(1)
}

func (m *MockStations) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockRepositoryManager wires the repository mocks behind the manager
// interface. RunInTx invokes the closure with a zero transaction handle so
// service logic runs without a live database; set TxErr to simulate a
// transaction that cannot begin.
type MockRepositoryManager struct {
	UsersMock     *MockUsers
	ApiKeysMock   *MockApiKeys
	AuditLogsMock *MockAuditLogs
	BadgesMock    *MockBadges
	StationsMock  *MockStations
	TxErr         error
}

func newMockRepo() *MockRepositoryManager {
	return &MockRepositoryManager{
		UsersMock:     new(MockUsers),
		ApiKeysMock:   new(MockApiKeys),
		AuditLogsMock: new(MockAuditLogs),
		BadgesMock:    new(MockBadges),
		StationsMock:  new(MockStations),
	}
}

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	if m.TxErr != nil {
		return m.TxErr
	}
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() membership.Users         { return m.UsersMock }
func (m *MockRepositoryManager) ApiKeys() membership.ApiKeys     { return m.ApiKeysMock }
func (m *MockRepositoryManager) AuditLogs() membership.AuditLogs { return m.AuditLogsMock }
func (m *MockRepositoryManager) Badges() membership.Badges       { return m.BadgesMock }
func (m *MockRepositoryManager) Stations() membership.Stations   { return m.StationsMock }

func (m *MockRepositoryManager) assertExpectations(t interface {
	mock.TestingT
}) {
	m.UsersMock.AssertExpectations(t)
	m.ApiKeysMock.AssertExpectations(t)
	m.AuditLogsMock.AssertExpectations(t)
	m.BadgesMock.AssertExpectations(t)
	m.StationsMock.AssertExpectations(t)
}
