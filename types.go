package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds membership core options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetIssuer() string
	GetAudience() []string
	GetJWKSetURLs() []string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetStorageEngine() string
	GetPhoneRegion() string
}

// RegistrationEvent describes a member record created by just-in-time
// provisioning. EventID is derived deterministically from the member email so
// downstream webhook consumers can dedupe redelivery.
type RegistrationEvent struct {
	EventID    uuid.UUID
	UserID     uuid.UUID
	Email      string
	OccurredAt time.Time
}

// RegistrationHook is notified after a new member record has been committed.
// Hooks run best-effort outside the provisioning transaction: failures are
// logged and never roll back the new identity.
type RegistrationHook interface {
	MemberRegistered(ctx context.Context, event RegistrationEvent) error
}

// RegistrationHookFunc adapts a function to the RegistrationHook interface.
type RegistrationHookFunc func(ctx context.Context, event RegistrationEvent) error

// MemberRegistered implements RegistrationHook.
func (f RegistrationHookFunc) MemberRegistered(ctx context.Context, event RegistrationEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopRegistrationHook struct{}

func (noopRegistrationHook) MemberRegistered(context.Context, RegistrationEvent) error {
	return nil
}

func normalizeRegistrationHook(h RegistrationHook) RegistrationHook {
	if h == nil {
		return noopRegistrationHook{}
	}
	return h
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MEMBERSHIP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
