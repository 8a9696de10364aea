// Package membership provides the identity, authorization, and audit core of
// a community-workshop membership backend: bearer token verification with
// just-in-time provisioning, role-based authorization predicates, an API key
// lifecycle with hashed secrets, and transactional audit logging.
//
// Request pipeline:
//   - Pipeline verifies a bearer token, resolves (or lazily creates) the
//     member record, and returns a fully materialized Principal. Handlers
//     receive the Principal by value; there is no ambient per-request state.
//   - Guard predicates (IsAdmin, IsSelfOrAdmin, IsInstructorFor) evaluate
//     only data the Principal already carries, so "forgot to load roles" is
//     a compile-time impossibility instead of a runtime surprise.
//
// Audit logging:
//   - AuditLogger appends one entry per privileged mutation on the same
//     bun.IDB handle as the mutation itself. Services run both inside
//     RepositoryManager.RunInTx so the mutation and its audit record commit
//     or roll back as a unit.
//
// Constraint translation:
//   - Translator inspects storage failures through an engine-specific
//     ConstraintExtractor (postgres, sqlite) and surfaces uniqueness
//     violations as typed conflict errors carrying the offending field.
//     Anything it does not recognize passes through unchanged.
package membership
