package membership

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

const (
	defaultFirstName   = "Member"
	defaultLastName    = "Unknown"
	defaultPhoneRegion = "US"
)

// Provisioner resolves a verified claim to a persisted member record,
// creating one the first time a subject is seen.
type Provisioner struct {
	repo        RepositoryManager
	hook        RegistrationHook
	logger      Logger
	phoneRegion string
}

// NewProvisioner will create a new Provisioner.
func NewProvisioner(repo RepositoryManager, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		repo:        repo,
		hook:        noopRegistrationHook{},
		logger:      defLogger{},
		phoneRegion: defaultPhoneRegion,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// ProvisionerOption customizes a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithRegistrationHook registers the webhook dispatcher notified after a new
// member record commits.
func WithRegistrationHook(hook RegistrationHook) ProvisionerOption {
	return func(p *Provisioner) {
		p.hook = normalizeRegistrationHook(hook)
	}
}

// WithProvisionerLogger overrides the provisioner logger.
func WithProvisionerLogger(l Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPhoneRegion sets the default region used to normalize phone hints.
func WithPhoneRegion(region string) ProvisionerOption {
	return func(p *Provisioner) {
		if region != "" {
			p.phoneRegion = region
		}
	}
}

// Provision looks up the member by the claim subject, creating the record on
// first sight. Creation is at-least-once idempotent: when two requests race
// for the same new subject, the loser of the insert re-reads the winner's
// row. An email uniqueness collision against a different member is a server
// error; the existing record is never overwritten.
func (p *Provisioner) Provision(ctx context.Context, claims *MemberClaims) (*User, error) {
	id, err := claims.SubjectUUID()
	if err != nil {
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, "claim subject is not a member id").
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	user, err := p.repo.Users().GetWithGrants(ctx, id)
	if err == nil {
		return user, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up member during provisioning")
	}

	record := p.newMemberRecord(id, claims)

	if _, err := p.repo.Users().Create(ctx, record); err != nil {
		// Insert lost a race for the same subject: the winner's row is the
		// canonical identity. Anything else, including an email collision
		// with a different member, surfaces as a server error.
		if existing, lookupErr := p.repo.Users().GetWithGrants(ctx, id); lookupErr == nil {
			return existing, nil
		}

		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to provision member").
			WithMetadata(map[string]any{"user_id": id.String()})
	}

	p.dispatchRegistered(ctx, record)

	return record, nil
}

func (p *Provisioner) newMemberRecord(id uuid.UUID, claims *MemberClaims) *User {
	record := &User{
		ID:        id,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Hidden:    true,
	}

	if record.Email == "" {
		record.Email = id.String() + "@members.invalid"
	}
	if record.FirstName == "" {
		record.FirstName = defaultFirstName
	}
	if record.LastName == "" {
		record.LastName = defaultLastName
	}
	if claims.Phone != "" {
		record.Phone = p.normalizePhone(claims.Phone)
	}

	return record
}

func (p *Provisioner) normalizePhone(raw string) string {
	num, err := phonenumbers.Parse(raw, p.phoneRegion)
	if err != nil {
		p.logger.Debug("could not parse phone hint", "error", err)
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func (p *Provisioner) dispatchRegistered(ctx context.Context, user *User) {
	hook := normalizeRegistrationHook(p.hook)

	event := RegistrationEvent{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now(),
	}

	if id, err := hashid.NewUUID(user.Email); err == nil {
		event.EventID = id
	} else {
		event.EventID = uuid.New()
	}

	if err := hook.MemberRegistered(ctx, event); err != nil {
		p.logger.Error("registration hook error", "error", err)
	}
}
