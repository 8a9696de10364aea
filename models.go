package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is a grantable role name
type Role = string

const (
	// RoleAdmin can manage members, stations, badges, and api keys
	RoleAdmin Role = "admin"
	// RoleAccountant can review donations and payment records
	RoleAccountant Role = "accountant"
	// RoleCardHolder has physical access to the workshop
	RoleCardHolder Role = "card-holder"
)

// ValidRole checks if the role is one of the predefined valid roles
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleCardHolder:
		return true
	default:
		return false
	}
}

// User is the member model. Role grants and station instructor associations
// hang off separate tables so a member can hold each at most once.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID            `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Email             string               `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName         string               `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName          string               `bun:"last_name,notnull" json:"last_name,omitempty"`
	Phone             string               `bun:"phone_number" json:"phone_number,omitempty"`
	Hidden            bool                 `bun:"is_hidden" json:"is_hidden,omitempty"`
	MembershipLevelID *int64               `bun:"membership_level_id" json:"membership_level_id,omitempty"`
	Roles             []*RoleGrant         `bun:"rel:has-many,join:id=user_id" json:"roles,omitempty"`
	Stations          []*StationInstructor `bun:"rel:has-many,join:id=user_id" json:"stations,omitempty"`
	CreatedAt         *time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FullName is the display name used in audit summaries.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}

// RoleGrant assigns one role to one user. The (user_id, role) pair is unique.
type RoleGrant struct {
	bun.BaseModel `bun:"table:user_roles,alias:url"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid,unique:user_roles_user_id_role_key" json:"user_id,omitempty"`
	Role          Role      `bun:"role,notnull,unique:user_roles_user_id_role_key" json:"role,omitempty"`
}

// StationInstructor marks a user as instructor for a station.
type StationInstructor struct {
	bun.BaseModel `bun:"table:station_instructors,alias:sti"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid,unique:station_instructors_user_id_station_id_key" json:"user_id,omitempty"`
	StationID     int64     `bun:"station_id,notnull,unique:station_instructors_user_id_station_id_key" json:"station_id,omitempty"`
}

// ApiKey is a long-lived credential scoped to a user. The plaintext secret
// is never persisted: KeyHash holds a bcrypt digest for verification and
// Fingerprint a SHA-256 digest for indexed lookup.
type ApiKey struct {
	bun.BaseModel `bun:"table:api_keys,alias:apk"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	KeyHash       string     `bun:"key_hash,notnull" json:"-"`
	Fingerprint   string     `bun:"fingerprint,notnull,unique" json:"-"`
	IsActive      bool       `bun:"is_active" json:"is_active"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	CreatedBy     uuid.UUID  `bun:"created_by,type:uuid" json:"created_by,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Expired reports whether the key is past its expiry at the given instant.
// Expiry is derived, never written back: a listing can show is_active=true
// on a key that is already unusable.
func (k *ApiKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

// AuditLog is one append-only record of a privileged action. Entries are
// written on the same transaction handle as the mutation they describe.
type AuditLog struct {
	bun.BaseModel `bun:"table:admin_logs,alias:alg"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Log           string     `bun:"log,notnull" json:"log,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Station is a workshop station (laser cutter, lathe, ...). Kept minimal:
// it exists so badge and instructor mutations have something to reference.
type Station struct {
	bun.BaseModel `bun:"table:stations,alias:stn"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Badge is a competency badge tied to a station.
type Badge struct {
	bun.BaseModel `bun:"table:badges,alias:bdg"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	StationID     int64      `bun:"station_id,notnull" json:"station_id,omitempty"`
	Station       *Station   `bun:"rel:belongs-to,join:station_id=id" json:"station,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
