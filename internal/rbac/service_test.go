package rbac_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal"
	"github.com/opsvista/opsvista/internal/rbac"
)

type MockGrantStore struct {
	grants     map[int64][]string
	shouldFail bool
	failError  error
}

func NewMockGrantStore() *MockGrantStore {
	return &MockGrantStore{grants: make(map[int64][]string)}
}

func (m *MockGrantStore) ListGrants(ctx context.Context, userID int64) ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.grants[userID], nil
}

func (m *MockGrantStore) AddGrant(ctx context.Context, userID int64, permission string, grantedBy int64) error {
	if m.shouldFail {
		return m.failError
	}
	for _, existing := range m.grants[userID] {
		if existing == permission {
			return nil
		}
	}
	m.grants[userID] = append(m.grants[userID], permission)
	return nil
}

func (m *MockGrantStore) RemoveGrant(ctx context.Context, userID int64, permission string) error {
	if m.shouldFail {
		return m.failError
	}
	kept := m.grants[userID][:0]
	for _, existing := range m.grants[userID] {
		if existing != permission {
			kept = append(kept, existing)
		}
	}
	m.grants[userID] = kept
	return nil
}

type MockStatsStore struct {
	distribution map[string]int64
	audit        []rbac.AuditEntry
	shouldFail   bool
	failError    error
	lastLimit    int
}

func (m *MockStatsStore) RoleDistribution(ctx context.Context) (map[string]int64, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.distribution, nil
}

func (m *MockStatsStore) RecentAuditEntries(ctx context.Context, limit int) ([]rbac.AuditEntry, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.lastLimit = limit
	return m.audit, nil
}

var _ = Describe("Service", func() {
	var (
		cache   *rbac.DecisionCache
		service *rbac.Service
		store   *MockGrantStore
	)

	subject := rbac.Subject{UserID: 1, OrganizationID: 10, Role: "viewer", IsActive: true}
	accessCtx := rbac.AccessContext{UserID: 1, OrganizationID: 10}

	BeforeEach(func() {
		registry := rbac.MustNewRegistry(rbac.RoleDefinitions())
		cache = rbac.NewDecisionCache(time.Minute)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		evaluator := rbac.NewEvaluator(registry, cache, logger,
			rbac.WithAuditRecorder(rbac.NewLogAuditRecorder(logger)))
		store = NewMockGrantStore()
		service = rbac.NewService(registry, cache, evaluator, store, logger)
	})

	Describe("Grant", func() {
		It("should persist the grant and invalidate the user's cache", func() {
			perm := rbac.MustParsePermission("cost:read")

			denied := service.Check(subject, perm, accessCtx)
			Expect(denied.Granted).To(BeFalse())

			Expect(service.Grant(context.Background(), 1, "cost:read", 99)).To(Succeed())

			// A fresh subject reflects the stored grants.
			granted, err := service.UserGrants(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())

			refreshed := subject
			refreshed.ExtraPermissions = granted
			result := service.Check(refreshed, perm, accessCtx)
			Expect(result.Granted).To(BeTrue())
			Expect(result.Cached).To(BeFalse(), "stale deny must not be served after a grant")
		})

		It("should reject a malformed permission string", func() {
			err := service.Grant(context.Background(), 1, "garbage", 99)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidPermissionFormat))
		})

		It("should wrap store failures", func() {
			store.shouldFail = true
			store.failError = errors.New("connection refused")

			err := service.Grant(context.Background(), 1, "cost:read", 99)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("Revoke", func() {
		It("should remove the grant and invalidate cached decisions", func() {
			Expect(service.Grant(context.Background(), 1, "cost:read", 99)).To(Succeed())

			withGrant := subject
			withGrant.ExtraPermissions = []string{"cost:read"}
			perm := rbac.MustParsePermission("cost:read")

			Expect(service.Check(withGrant, perm, accessCtx).Granted).To(BeTrue())

			Expect(service.Revoke(context.Background(), 1, "cost:read", 99)).To(Succeed())

			grants, err := service.UserGrants(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())

			refreshed := subject
			refreshed.ExtraPermissions = grants
			result := service.Check(refreshed, perm, accessCtx)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Cached).To(BeFalse(), "stale grant must not be served after a revoke")
		})

		It("should not suppress role-derived permissions", func() {
			// viewer holds alert:read via its role; revoking the same
			// string as a direct grant changes nothing.
			Expect(service.Revoke(context.Background(), 1, "alert:read", 99)).To(Succeed())

			result := service.Check(subject, rbac.MustParsePermission("alert:read"), accessCtx)
			Expect(result.Granted).To(BeTrue())
		})
	})

	Describe("ClearCache", func() {
		It("should report removed entries and keep counters", func() {
			service.Check(subject, rbac.MustParsePermission("alert:read"), accessCtx)
			Expect(service.ClearCache()).To(Equal(1))

			stats := service.CacheStats()
			Expect(stats.Entries).To(BeZero())
			Expect(stats.Misses).To(Equal(uint64(1)))
		})
	})

	Describe("AdminStats", func() {
		var stats *MockStatsStore

		BeforeEach(func() {
			stats = &MockStatsStore{
				distribution: map[string]int64{"viewer": 4, "developer": 2},
				audit: []rbac.AuditEntry{
					{UserID: 1, Permission: "alert:read", Granted: true, Reason: "granted by role"},
				},
			}
			registry := rbac.MustNewRegistry(rbac.RoleDefinitions())
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			evaluator := rbac.NewEvaluator(registry, cache, logger)
			service = rbac.NewService(registry, cache, evaluator, store, logger, rbac.WithStatsStore(stats))
		})

		It("should combine cache counters, role distribution and audit entries", func() {
			service.Check(subject, rbac.MustParsePermission("alert:read"), accessCtx)

			data, err := service.AdminStats(context.Background(), 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Cache.Misses).To(Equal(uint64(1)))
			Expect(data.RoleDistribution).To(HaveKeyWithValue("viewer", int64(4)))
			Expect(data.RecentAudit).To(HaveLen(1))
			Expect(stats.lastLimit).To(Equal(20))
		})

		It("should wrap store failures", func() {
			stats.shouldFail = true
			stats.failError = errors.New("connection refused")

			_, err := service.AdminStats(context.Background(), 20)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})

		It("should still report cache counters without a stats store", func() {
			registry := rbac.MustNewRegistry(rbac.RoleDefinitions())
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			evaluator := rbac.NewEvaluator(registry, cache, logger)
			plain := rbac.NewService(registry, cache, evaluator, store, logger)

			plain.Check(subject, rbac.MustParsePermission("alert:read"), accessCtx)

			data, err := plain.AdminStats(context.Background(), 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Cache.Misses).To(Equal(uint64(1)))
			Expect(data.RoleDistribution).To(BeEmpty())
			Expect(data.RecentAudit).To(BeEmpty())
		})
	})

	Describe("Roles", func() {
		It("should list built-in roles ordered by priority", func() {
			roles := service.Roles()
			Expect(roles).To(HaveLen(6))
			Expect(roles[0].Name).To(Equal("viewer"))
			Expect(roles[len(roles)-1].Name).To(Equal("super_admin"))
		})
	})
})
