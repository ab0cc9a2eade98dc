package rbac

import (
	"context"
	"errors"
)

// ErrMissingUser is returned when a check is attempted without an
// authenticated subject.
var ErrMissingUser = errors.New("access context requires a user id")

// AccessContext carries the request-scoped facts an evaluation may use.
// Only UserID is mandatory; everything else is advisory and flows into
// audit entries.
type AccessContext struct {
	UserID           int64
	OrganizationID   int64
	IPAddress        string
	UserAgent        string
	ResourceMetadata map[string]string
}

// Validate checks the context is usable for a permission check.
func (c AccessContext) Validate() error {
	if c.UserID <= 0 {
		return ErrMissingUser
	}
	return nil
}

// Subject is the evaluator's view of an authenticated user: identity,
// role membership and any ad-hoc permission strings granted directly to
// the user. The auth layer builds one per request.
type Subject struct {
	UserID         int64
	OrganizationID int64
	Role           string
	// ExtraPermissions are user-level grants in category:action[:resource]
	// form, on top of whatever the role provides.
	ExtraPermissions []string
	IsActive         bool
}

type subjectCtxKey struct{}

// ContextWithSubject stores the authenticated subject for downstream
// middleware and handlers.
func ContextWithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, s)
}

// SubjectFromContext retrieves the subject placed by the auth middleware.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectCtxKey{}).(Subject)
	return s, ok
}
