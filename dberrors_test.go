package membership_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerhaus/go-membership"
)

func TestSQLiteExtractor(t *testing.T) {
	extractor := membership.SQLiteExtractor{}

	tests := []struct {
		name           string
		err            error
		wantConstraint string
		wantOK         bool
	}{
		{
			name:           "single column",
			err:            stderrors.New("UNIQUE constraint failed: users.email"),
			wantConstraint: "users.email",
			wantOK:         true,
		},
		{
			name:           "composite constraint",
			err:            stderrors.New("UNIQUE constraint failed: user_roles.user_id, user_roles.role"),
			wantConstraint: "user_roles.user_id, user_roles.role",
			wantOK:         true,
		},
		{
			name:           "wrapped by driver prefix",
			err:            fmt.Errorf("step: UNIQUE constraint failed: badges.name"),
			wantConstraint: "badges.name",
			wantOK:         true,
		},
		{
			name:   "not a unique violation",
			err:    stderrors.New("NOT NULL constraint failed: users.email"),
			wantOK: false,
		},
		{
			name:   "nil error",
			err:    nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraint, ok := extractor.Extract(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantConstraint, constraint)
		})
	}
}

// stubExtractor lets the translator tests control exactly what the storage
// engine reports.
type stubExtractor struct {
	constraint string
	ok         bool
}

func (s stubExtractor) Extract(err error) (string, bool) {
	return s.constraint, s.ok
}

func TestTranslator(t *testing.T) {
	t.Run("known constraint becomes typed conflict", func(t *testing.T) {
		translator := membership.NewTranslator(stubExtractor{constraint: "users_email_key", ok: true})

		err := translator.Translate(stderrors.New("driver says no"))
		require.Error(t, err)

		field, ok := membership.IsUniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, "email", field)
	})

	t.Run("unknown constraint passes through", func(t *testing.T) {
		translator := membership.NewTranslator(stubExtractor{constraint: "mystery_key", ok: true})

		original := stderrors.New("driver says no")
		err := translator.Translate(original)

		assert.Same(t, original, err)
		_, ok := membership.IsUniqueViolation(err)
		assert.False(t, ok)
	})

	t.Run("unrecognized error passes through", func(t *testing.T) {
		translator := membership.NewTranslator(stubExtractor{})

		original := stderrors.New("connection reset")
		assert.Same(t, original, translator.Translate(original))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		translator := membership.NewTranslator(stubExtractor{})
		assert.NoError(t, translator.Translate(nil))
	})

	t.Run("custom constraint mapping", func(t *testing.T) {
		translator := membership.NewTranslator(
			stubExtractor{constraint: "widgets_serial_key", ok: true},
			membership.WithConstraintField("widgets_serial_key", "serial"),
		)

		err := translator.Translate(stderrors.New("duplicate"))
		field, ok := membership.IsUniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, "serial", field)
	})
}

func TestTranslatorSQLiteShapes(t *testing.T) {
	translator := membership.NewTranslator(membership.SQLiteExtractor{})

	tests := []struct {
		name      string
		err       error
		wantField string
	}{
		{
			name:      "email",
			err:       stderrors.New("UNIQUE constraint failed: users.email"),
			wantField: "email",
		},
		{
			name:      "badge name",
			err:       stderrors.New("UNIQUE constraint failed: badges.name"),
			wantField: "name",
		},
		{
			name:      "api key fingerprint",
			err:       stderrors.New("UNIQUE constraint failed: api_keys.fingerprint"),
			wantField: "api_key",
		},
		{
			name:      "role grant pair",
			err:       stderrors.New("UNIQUE constraint failed: user_roles.user_id, user_roles.role"),
			wantField: "role",
		},
		{
			name:      "instructor pair",
			err:       stderrors.New("UNIQUE constraint failed: station_instructors.user_id, station_instructors.station_id"),
			wantField: "instructor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := membership.IsUniqueViolation(translator.Translate(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.wantField, field)
		})
	}
}

func TestNewTranslatorForEngine(t *testing.T) {
	translator, err := membership.NewTranslatorForEngine(membership.EngineSQLite)
	require.NoError(t, err)
	require.NotNil(t, translator)

	translator, err = membership.NewTranslatorForEngine(membership.EnginePostgres)
	require.NoError(t, err)
	require.NotNil(t, translator)

	// empty engine name defaults to sqlite
	translator, err = membership.NewTranslatorForEngine("")
	require.NoError(t, err)

	field, ok := membership.IsUniqueViolation(
		translator.Translate(stderrors.New("UNIQUE constraint failed: stations.name")))
	assert.True(t, ok)
	assert.Equal(t, "name", field)

	_, err = membership.NewTranslatorForEngine("oracle")
	assert.Error(t, err)
}
