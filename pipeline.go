package membership

import (
	"context"
)

// ClaimVerifier validates a raw bearer token and returns its claims.
type ClaimVerifier interface {
	Verify(raw string) (*MemberClaims, error)
}

// IdentityProvisioner resolves a verified claim to a member record.
type IdentityProvisioner interface {
	Provision(ctx context.Context, claims *MemberClaims) (*User, error)
}

// Pipeline composes token verification, just-in-time provisioning, and
// principal materialization. It is the entry point routing code invokes for
// every authenticated request; the result is a typed Principal passed to
// handlers explicitly, never stashed in ambient state.
type Pipeline struct {
	verifier    ClaimVerifier
	provisioner IdentityProvisioner
	logger      Logger
}

// NewPipeline returns a new Pipeline.
func NewPipeline(verifier ClaimVerifier, provisioner IdentityProvisioner) *Pipeline {
	return &Pipeline{
		verifier:    verifier,
		provisioner: provisioner,
		logger:      defLogger{},
	}
}

// WithLogger overrides the pipeline logger.
func (p *Pipeline) WithLogger(l Logger) *Pipeline {
	if l != nil {
		p.logger = l
	}
	return p
}

// Authenticate verifies the bearer token, provisions the member on first
// sight, and returns the materialized principal. Failures keep their typed
// categories: token problems surface as auth errors, storage problems as
// internal errors.
func (p *Pipeline) Authenticate(ctx context.Context, rawToken string) (*Principal, error) {
	claims, err := p.verifier.Verify(rawToken)
	if err != nil {
		p.logger.Debug("pipeline token verification failed", "error", err)
		return nil, err
	}

	user, err := p.provisioner.Provision(ctx, claims)
	if err != nil {
		p.logger.Error("pipeline provisioning failed", "subject", claims.Subject, "error", err)
		return nil, err
	}

	return NewPrincipal(user), nil
}
