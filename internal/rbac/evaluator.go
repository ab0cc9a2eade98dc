package rbac

import (
	"log/slog"
	"strings"
	"time"
)

// Deny reasons reported to callers and audit. Denies name the layer
// that failed: unknown role, role set, or ad-hoc grants.
const (
	ReasonSuperAdmin      = "super admin access"
	ReasonRoleGrant       = "granted by role"
	ReasonUserGrant       = "granted directly to user"
	ReasonUnknownRole     = "unknown role"
	ReasonNotInRole       = "permission not in role"
	ReasonNotInGrants     = "permission not in ad-hoc grants"
	ReasonInactiveUser    = "user is inactive"
	ReasonMissingUser     = "no authenticated user"
	ReasonEvaluationError = "evaluation error"
	ReasonAllRequired     = "not all required permissions granted"
	ReasonAnyRequired     = "none of the required permissions granted"
)

// PermissionCheckResult is the outcome of one evaluation.
type PermissionCheckResult struct {
	Granted            bool     `json:"granted"`
	Reason             string   `json:"reason"`
	EvaluationTimeMs   float64  `json:"evaluation_time_ms"`
	Cached             bool     `json:"cached"`
	PermissionsChecked []string `json:"permissions_checked"`
}

// Metrics receives evaluation telemetry. Implementations must be cheap
// and non-blocking.
type Metrics interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordEvaluation(granted bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit()       {}
func (noopMetrics) RecordCacheMiss()      {}
func (noopMetrics) RecordEvaluation(bool) {}

// Evaluator answers permission checks for subjects. It is safe for
// concurrent use.
type Evaluator struct {
	registry           *Registry
	cache              *DecisionCache
	audit              AuditRecorder
	metrics            Metrics
	logger             *slog.Logger
	superAdminPriority int
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithAuditRecorder sets the audit sink. Defaults to a slog recorder.
func WithAuditRecorder(a AuditRecorder) EvaluatorOption {
	return func(e *Evaluator) { e.audit = a }
}

// WithMetrics sets the telemetry sink.
func WithMetrics(m Metrics) EvaluatorOption {
	return func(e *Evaluator) { e.metrics = m }
}

// WithSuperAdminPriority overrides the role priority threshold at or
// above which checks are bypassed entirely.
func WithSuperAdminPriority(p int) EvaluatorOption {
	return func(e *Evaluator) { e.superAdminPriority = p }
}

// NewEvaluator wires a registry and cache into an evaluator.
func NewEvaluator(registry *Registry, cache *DecisionCache, logger *slog.Logger, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		registry:           registry,
		cache:              cache,
		metrics:            noopMetrics{},
		logger:             logger,
		superAdminPriority: 100,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.audit == nil {
		e.audit = NewLogAuditRecorder(logger)
	}
	return e
}

// CheckPermission evaluates whether the subject holds the permission.
// Evaluation order: super-admin bypass, decision cache, role-derived
// permissions, user-level grants. Any internal failure resolves to a
// deny, never an error: authorization fails closed.
func (e *Evaluator) CheckPermission(subject Subject, permission Permission, accessCtx AccessContext) (result PermissionCheckResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("permission evaluation panicked",
				"user_id", subject.UserID,
				"permission", permission.String(),
				"panic", r,
			)
			result = PermissionCheckResult{
				Granted:            false,
				Reason:             ReasonEvaluationError,
				EvaluationTimeMs:   msSince(start),
				PermissionsChecked: []string{permission.String()},
			}
		}
		e.metrics.RecordEvaluation(result.Granted)
	}()

	if err := accessCtx.Validate(); err != nil {
		return e.deny(permission, ReasonMissingUser, start)
	}
	if !subject.IsActive {
		return e.deny(permission, ReasonInactiveUser, start)
	}

	// Super admins skip both cache and evaluation; their decisions are
	// never cached so a demotion takes effect immediately.
	if e.isSuperAdmin(subject) {
		return e.grant(permission, ReasonSuperAdmin, start)
	}

	key := Key(subject.UserID, permission, accessCtx.OrganizationID)
	if cached, ok := e.cache.Get(key); ok {
		e.metrics.RecordCacheHit()
		cached.Cached = true
		cached.EvaluationTimeMs = msSince(start)
		return cached
	}
	e.metrics.RecordCacheMiss()

	result = e.evaluate(subject, permission, start)

	e.cache.Set(key, subject.UserID, result)
	// Audit only on cache misses: repeated identical checks inside the
	// TTL window produce a single trail entry.
	e.audit.Record(AuditEntry{
		UserID:         subject.UserID,
		OrganizationID: accessCtx.OrganizationID,
		Permission:     permission.String(),
		Granted:        result.Granted,
		Reason:         result.Reason,
		IPAddress:      accessCtx.IPAddress,
		UserAgent:      accessCtx.UserAgent,
		CheckedAt:      time.Now(),
	})

	return result
}

func (e *Evaluator) evaluate(subject Subject, permission Permission, start time.Time) PermissionCheckResult {
	// An unknown role contributes zero permissions; ad-hoc grants are
	// still honored below.
	_, roleKnown := e.registry.Get(subject.Role)
	if roleKnown && e.registry.HasPermission(subject.Role, permission) {
		return e.grant(permission, ReasonRoleGrant, start)
	}

	checkedGrants := false
	for _, raw := range subject.ExtraPermissions {
		granted, err := ParsePermission(raw)
		if err != nil {
			// A malformed stored grant is skipped, not fatal; it can
			// never widen access.
			e.logger.Warn("skipping malformed user grant",
				"user_id", subject.UserID,
				"grant", raw,
			)
			continue
		}
		checkedGrants = true
		if granted.Matches(permission) {
			return e.grant(permission, ReasonUserGrant, start)
		}
	}

	if !roleKnown {
		return e.deny(permission, ReasonUnknownRole, start)
	}
	if checkedGrants {
		return e.deny(permission, ReasonNotInGrants, start)
	}
	return e.deny(permission, ReasonNotInRole, start)
}

// CheckMultiplePermissions evaluates a batch. With requireAll, every
// permission is evaluated through the single-check path (each one is
// cached and audited individually) and a deny names every missing
// permission. With requireAll=false, one grant suffices, but every
// permission string is still reported in PermissionsChecked so callers
// see the full request.
func (e *Evaluator) CheckMultiplePermissions(subject Subject, permissions []Permission, accessCtx AccessContext, requireAll bool) PermissionCheckResult {
	start := time.Now()

	checked := make([]string, len(permissions))
	for i, p := range permissions {
		checked[i] = p.String()
	}

	if len(permissions) == 0 {
		return PermissionCheckResult{
			Granted:            true,
			Reason:             "no permissions required",
			EvaluationTimeMs:   msSince(start),
			PermissionsChecked: checked,
		}
	}

	if requireAll {
		var missing []string
		for _, p := range permissions {
			if res := e.CheckPermission(subject, p, accessCtx); !res.Granted {
				missing = append(missing, p.String())
			}
		}
		if len(missing) > 0 {
			return PermissionCheckResult{
				Granted:            false,
				Reason:             ReasonAllRequired + ": missing " + strings.Join(missing, ", "),
				EvaluationTimeMs:   msSince(start),
				PermissionsChecked: checked,
			}
		}
		return PermissionCheckResult{
			Granted:            true,
			Reason:             "all permissions granted",
			EvaluationTimeMs:   msSince(start),
			PermissionsChecked: checked,
		}
	}

	for _, p := range permissions {
		if res := e.CheckPermission(subject, p, accessCtx); res.Granted {
			return PermissionCheckResult{
				Granted:            true,
				Reason:             res.Reason,
				EvaluationTimeMs:   msSince(start),
				PermissionsChecked: checked,
			}
		}
	}

	return PermissionCheckResult{
		Granted:            false,
		Reason:             ReasonAnyRequired,
		EvaluationTimeMs:   msSince(start),
		PermissionsChecked: checked,
	}
}

// EffectivePermissions returns everything the subject can do: role
// permissions plus parseable user grants.
func (e *Evaluator) EffectivePermissions(subject Subject) []Permission {
	perms := e.registry.EffectivePermissions(subject.Role)
	seen := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		seen[p] = struct{}{}
	}
	for _, raw := range subject.ExtraPermissions {
		p, err := ParsePermission(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	return perms
}

// isSuperAdmin reports whether the subject bypasses evaluation: either
// the role's priority meets the threshold, or the role carries
// system:manage.
func (e *Evaluator) isSuperAdmin(subject Subject) bool {
	def, ok := e.registry.Get(subject.Role)
	if !ok || !def.IsActive {
		return false
	}
	if def.Priority >= e.superAdminPriority {
		return true
	}
	return e.registry.HasPermission(subject.Role, Permission{Category: CategorySystem, Action: ActionManage})
}

func (e *Evaluator) grant(p Permission, reason string, start time.Time) PermissionCheckResult {
	return PermissionCheckResult{
		Granted:            true,
		Reason:             reason,
		EvaluationTimeMs:   msSince(start),
		PermissionsChecked: []string{p.String()},
	}
}

func (e *Evaluator) deny(p Permission, reason string, start time.Time) PermissionCheckResult {
	return PermissionCheckResult{
		Granted:            false,
		Reason:             reason,
		EvaluationTimeMs:   msSince(start),
		PermissionsChecked: []string{p.String()},
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
