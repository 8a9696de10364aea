package membership

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrBadgeNotFound is returned when a badge referenced by id does not exist.
var ErrBadgeNotFound = errors.New("badge not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrStationNotFound is returned when a badge references a missing station.
var ErrStationNotFound = errors.New("station not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// CreateBadgePayload carries the inputs for a new competency badge.
type CreateBadgePayload struct {
	Name      string `json:"name"`
	StationID int64  `json:"station_id"`
}

// Validate checks the payload shape.
func (p CreateBadgePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.StationID, validation.Required),
	)
}

// BadgeService is the exemplar privileged-mutation service: every write
// pairs with an audit entry in the same transaction, and storage conflicts
// come back through the constraint translator.
type BadgeService struct {
	repo      RepositoryManager
	audit     *AuditLogger
	translate *Translator
	logger    Logger
}

// NewBadgeService returns a new BadgeService.
func NewBadgeService(repo RepositoryManager, audit *AuditLogger, translate *Translator) *BadgeService {
	return &BadgeService{
		repo:      repo,
		audit:     audit,
		translate: translate,
		logger:    defLogger{},
	}
}

// WithLogger overrides the service logger.
func (s *BadgeService) WithLogger(l Logger) *BadgeService {
	if l != nil {
		s.logger = l
	}
	return s
}

// Create adds a badge for a station. Admin only; a duplicate badge name
// surfaces as a unique-violation conflict on "name".
func (s *BadgeService) Create(ctx context.Context, actor *Principal, payload CreateBadgePayload) (*Badge, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if err := payload.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid badge payload")
	}

	exists, err := s.repo.Stations().Exists(ctx, payload.StationID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check badge station")
	}
	if !exists {
		return nil, ErrStationNotFound
	}

	record := &Badge{
		Name:      payload.Name,
		StationID: payload.StationID,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Badges().CreateTx(ctx, tx, record); err != nil {
			return err
		}

		return s.audit.AddLogTx(ctx, tx, actor.ID(),
			fmt.Sprintf("created badge %q for station %d", record.Name, record.StationID))
	})

	if err != nil {
		return nil, s.surface(err, "failed to create badge")
	}

	return s.repo.Badges().GetByID(ctx, record.ID)
}

// Delete removes a badge and writes the audit entry in the same transaction.
func (s *BadgeService) Delete(ctx context.Context, actor *Principal, id int64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rows, err := s.repo.Badges().DeleteTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if rows == 0 {
			return ErrBadgeNotFound
		}

		return s.audit.AddLogTx(ctx, tx, actor.ID(), fmt.Sprintf("deleted badge %d", id))
	})

	if err != nil {
		return s.surface(err, "failed to delete badge")
	}

	return nil
}

func (s *BadgeService) surface(err error, msg string) error {
	err = s.translate.Translate(err)

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	return errors.Wrap(err, errors.CategoryInternal, msg)
}

// StationService manages workshop stations; same audit pattern as badges.
type StationService struct {
	repo      RepositoryManager
	audit     *AuditLogger
	translate *Translator
}

// NewStationService returns a new StationService.
func NewStationService(repo RepositoryManager, audit *AuditLogger, translate *Translator) *StationService {
	return &StationService{
		repo:      repo,
		audit:     audit,
		translate: translate,
	}
}

// Create adds a station. Admin only.
func (s *StationService) Create(ctx context.Context, actor *Principal, name string) (*Station, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if name == "" {
		return nil, errors.New("station name is required", errors.CategoryValidation)
	}

	record := &Station{Name: name}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Stations().CreateTx(ctx, tx, record); err != nil {
			return err
		}

		return s.audit.AddLogTx(ctx, tx, actor.ID(), fmt.Sprintf("created station %q", record.Name))
	})

	if err != nil {
		err = s.translate.Translate(err)

		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create station")
	}

	return record, nil
}
