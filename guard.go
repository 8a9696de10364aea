package membership

import (
	"github.com/google/uuid"
)

// Principal is the authorized identity handed to request handlers. It is
// built from an eagerly loaded user record: roles and instructor stations
// are materialized at construction, so predicates never touch storage and
// never observe half-loaded state.
type Principal struct {
	user     *User
	roles    map[Role]struct{}
	stations map[int64]struct{}
}

// NewPrincipal materializes a principal from a loaded user record. The
// role and station associations must already be populated on the record;
// there is no lazy path.
func NewPrincipal(user *User) *Principal {
	p := &Principal{
		user:     user,
		roles:    make(map[Role]struct{}, len(user.Roles)),
		stations: make(map[int64]struct{}, len(user.Stations)),
	}

	for _, grant := range user.Roles {
		if grant != nil {
			p.roles[grant.Role] = struct{}{}
		}
	}

	for _, assoc := range user.Stations {
		if assoc != nil {
			p.stations[assoc.StationID] = struct{}{}
		}
	}

	return p
}

// ID returns the member primary key.
func (p *Principal) ID() uuid.UUID {
	return p.user.ID
}

// Email returns the member email.
func (p *Principal) Email() string {
	return p.user.Email
}

// User returns the underlying member record.
func (p *Principal) User() *User {
	return p.user
}

// HasRole reports whether the principal holds the given role grant.
func (p *Principal) HasRole(role Role) bool {
	_, ok := p.roles[role]
	return ok
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// IsSelfOrAdmin reports whether the principal is the target member or an
// admin acting on their behalf.
func (p *Principal) IsSelfOrAdmin(target uuid.UUID) bool {
	return p.user.ID == target || p.IsAdmin()
}

// IsInstructorFor reports whether the principal instructs the station.
func (p *Principal) IsInstructorFor(stationID int64) bool {
	_, ok := p.stations[stationID]
	return ok
}
