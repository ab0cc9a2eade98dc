package rbac

import (
	"context"
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	"github.com/opsvista/opsvista/internal/core/events"
)

// GrantStore persists user-level permission grants.
type GrantStore interface {
	ListGrants(ctx context.Context, userID int64) ([]string, error)
	AddGrant(ctx context.Context, userID int64, permission string, grantedBy int64) error
	RemoveGrant(ctx context.Context, userID int64, permission string) error
}

// StatsStore reads aggregate data for the admin stats endpoint: how
// users are distributed across roles and the latest audit entries.
type StatsStore interface {
	RoleDistribution(ctx context.Context) (map[string]int64, error)
	RecentAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Service is the facade the rest of the platform talks to: it owns the
// registry, cache, evaluator and grant store, and keeps the cache
// coherent when grants change.
type Service struct {
	registry  *Registry
	cache     *DecisionCache
	evaluator *Evaluator
	grants    GrantStore
	stats     StatsStore
	logger    *slog.Logger
	bus       *events.EventBus
}

type ServiceOption func(*Service)

// WithEventBus publishes grant and revoke events for live consumers.
func WithEventBus(bus *events.EventBus) ServiceOption {
	return func(s *Service) { s.bus = bus }
}

// WithStatsStore enables role distribution and audit reads on the admin
// stats endpoint.
func WithStatsStore(stats StatsStore) ServiceOption {
	return func(s *Service) { s.stats = stats }
}

func NewService(registry *Registry, cache *DecisionCache, evaluator *Evaluator, grants GrantStore, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		registry:  registry,
		cache:     cache,
		evaluator: evaluator,
		grants:    grants,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check evaluates one permission for the subject.
func (s *Service) Check(subject Subject, permission Permission, accessCtx AccessContext) PermissionCheckResult {
	return s.evaluator.CheckPermission(subject, permission, accessCtx)
}

// CheckMultiple evaluates a batch with ALL or ANY semantics.
func (s *Service) CheckMultiple(subject Subject, permissions []Permission, accessCtx AccessContext, requireAll bool) PermissionCheckResult {
	return s.evaluator.CheckMultiplePermissions(subject, permissions, accessCtx, requireAll)
}

// EffectivePermissions lists everything the subject can do.
func (s *Service) EffectivePermissions(subject Subject) []Permission {
	return s.evaluator.EffectivePermissions(subject)
}

// Roles returns the role table sorted by priority.
func (s *Service) Roles() []RoleDefinition {
	return s.registry.All()
}

// Grant adds a user-level permission and invalidates the user's cached
// decisions so the new grant is visible on the next check.
func (s *Service) Grant(ctx context.Context, userID int64, permission string, grantedBy int64) error {
	if _, err := ParsePermission(permission); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidPermissionFormat)
	}
	if err := s.grants.AddGrant(ctx, userID, permission, grantedBy); err != nil {
		return internal.NewInternalError("failed to store permission grant", err)
	}
	invalidated := s.cache.InvalidateUser(userID)
	s.logger.Info("permission granted",
		"user_id", userID,
		"permission", permission,
		"granted_by", grantedBy,
		"cache_entries_invalidated", invalidated,
	)
	s.publish(ctx, events.PermissionGrantedEvent, map[string]interface{}{
		"user_id":    userID,
		"permission": permission,
		"granted_by": grantedBy,
	})
	return nil
}

// Revoke removes a user-level permission and invalidates the user's
// cached decisions. Revoking only affects direct grants: a permission the
// user's role provides stays in effect until the role itself changes.
func (s *Service) Revoke(ctx context.Context, userID int64, permission string, revokedBy int64) error {
	if _, err := ParsePermission(permission); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidPermissionFormat)
	}
	if err := s.grants.RemoveGrant(ctx, userID, permission); err != nil {
		return internal.NewInternalError("failed to remove permission grant", err)
	}
	invalidated := s.cache.InvalidateUser(userID)
	s.logger.Info("permission revoked",
		"user_id", userID,
		"permission", permission,
		"revoked_by", revokedBy,
		"cache_entries_invalidated", invalidated,
	)
	s.publish(ctx, events.PermissionRevokedEvent, map[string]interface{}{
		"user_id":    userID,
		"permission": permission,
		"revoked_by": revokedBy,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, events.NewPlatformEvent(eventType, data)); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}

// UserGrants lists the user's direct permission grants.
func (s *Service) UserGrants(ctx context.Context, userID int64) ([]string, error) {
	return s.grants.ListGrants(ctx, userID)
}

// CacheStats exposes decision cache counters.
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// AdminStatsData aggregates everything the admin stats endpoint reports.
type AdminStatsData struct {
	Cache            CacheStats
	RoleDistribution map[string]int64
	RecentAudit      []AuditEntry
}

// AdminStats combines cache counters with the role distribution and the
// most recent audit entries. Without a stats store only the cache
// counters are populated.
func (s *Service) AdminStats(ctx context.Context, auditLimit int) (AdminStatsData, error) {
	data := AdminStatsData{Cache: s.cache.Stats()}
	if s.stats == nil {
		return data, nil
	}

	distribution, err := s.stats.RoleDistribution(ctx)
	if err != nil {
		return AdminStatsData{}, internal.NewInternalError("failed to read role distribution", err)
	}
	data.RoleDistribution = distribution

	entries, err := s.stats.RecentAuditEntries(ctx, auditLimit)
	if err != nil {
		return AdminStatsData{}, internal.NewInternalError("failed to read audit entries", err)
	}
	data.RecentAudit = entries

	return data, nil
}

// ClearCache drops every cached decision and returns how many were
// removed. Counters are unaffected.
func (s *Service) ClearCache() int {
	removed := s.cache.Clear()
	s.logger.Info("decision cache cleared", "entries_removed", removed)
	return removed
}
