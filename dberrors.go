package membership

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Storage engine names accepted by NewTranslatorForEngine.
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// ConstraintExtractor pulls the identifying name of a violated uniqueness
// constraint out of a storage-layer error. Implementations are engine
// specific: postgres reports a structured error with a named constraint
// field, sqlite only a message string that needs prefix stripping.
type ConstraintExtractor interface {
	Extract(err error) (constraint string, ok bool)
}

// PostgresExtractor reads the constraint name from a pgdriver error.
type PostgresExtractor struct{}

const pgUniqueViolationCode = "23505"

// Extract implements ConstraintExtractor.
func (PostgresExtractor) Extract(err error) (string, bool) {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Field('C') != pgUniqueViolationCode {
		return "", false
	}
	return pgErr.Field('n'), true
}

// SQLiteExtractor parses the sqlite unique-violation message shape
// "UNIQUE constraint failed: table.column[, table.column2]". The stripped
// tail identifies the constraint.
type SQLiteExtractor struct{}

const sqliteUniquePrefix = "UNIQUE constraint failed: "

// Extract implements ConstraintExtractor.
func (SQLiteExtractor) Extract(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	msg := err.Error()
	idx := strings.Index(msg, sqliteUniquePrefix)
	if idx < 0 {
		return "", false
	}

	constraint := strings.TrimSpace(msg[idx+len(sqliteUniquePrefix):])
	if constraint == "" {
		return "", false
	}

	return constraint, true
}

// Translator maps storage-layer uniqueness violations to typed domain
// conflicts. Failures it does not recognize pass through unchanged so
// callers see a generic server error instead of a misleading domain one.
type Translator struct {
	extractor ConstraintExtractor
	fields    map[string]string
}

// NewTranslator builds a translator over the given extractor with the
// default constraint-to-field table for the membership schema.
func NewTranslator(extractor ConstraintExtractor, opts ...TranslatorOption) *Translator {
	t := &Translator{
		extractor: extractor,
		fields:    defaultConstraintFields(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// NewTranslatorForEngine selects the extractor by configured engine name.
func NewTranslatorForEngine(engine string, opts ...TranslatorOption) (*Translator, error) {
	switch engine {
	case EnginePostgres:
		return NewTranslator(PostgresExtractor{}, opts...), nil
	case EngineSQLite, "":
		return NewTranslator(SQLiteExtractor{}, opts...), nil
	default:
		return nil, errors.New("unsupported storage engine: "+engine, errors.CategoryBadInput)
	}
}

// TranslatorOption customizes a Translator.
type TranslatorOption func(*Translator)

// WithConstraintField registers an additional constraint-to-field mapping.
func WithConstraintField(constraint, field string) TranslatorOption {
	return func(t *Translator) {
		t.fields[constraint] = field
	}
}

// Translate maps err onto the domain error taxonomy. A recognized unique
// violation becomes a typed conflict naming the violated field; anything
// else, including a unique violation on an unknown constraint, is returned
// as-is, never swallowed.
func (t *Translator) Translate(err error) error {
	if err == nil {
		return nil
	}

	constraint, ok := t.extractor.Extract(err)
	if !ok {
		return err
	}

	field, known := t.fields[constraint]
	if !known {
		return err
	}

	return errors.Wrap(err, errors.CategoryConflict, field+" already exists").
		WithTextCode(TextCodeUniqueConflict).
		WithCode(errors.CodeConflict).
		WithMetadata(map[string]any{
			"field":      field,
			"constraint": constraint,
		})
}

func defaultConstraintFields() map[string]string {
	return map[string]string{
		// postgres constraint names
		"users_email_key":          "email",
		"badges_name_key":          "name",
		"stations_name_key":        "name",
		"api_keys_fingerprint_key": "api_key",
		"user_roles_user_id_role_key":                "role",
		"station_instructors_user_id_station_id_key": "instructor",

		// sqlite column lists
		"users.email":          "email",
		"badges.name":          "name",
		"stations.name":        "name",
		"api_keys.fingerprint": "api_key",
		"user_roles.user_id, user_roles.role":                         "role",
		"station_instructors.user_id, station_instructors.station_id": "instructor",
	}
}
