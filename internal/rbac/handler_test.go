package rbac_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/rbac"
	"github.com/opsvista/opsvista/internal/transport"
)

var _ = Describe("RBAC Handler", func() {
	var (
		handler *rbac.Handler
		cache   *rbac.DecisionCache
		stats   *MockStatsStore
	)

	subject := rbac.Subject{
		UserID:           1,
		OrganizationID:   10,
		Role:             "developer",
		ExtraPermissions: []string{"cost:read"},
		IsActive:         true,
	}

	request := func(method, target string, body interface{}) *http.Request {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(payload)
		}
		req := httptest.NewRequest(method, target, reader)
		return req.WithContext(rbac.ContextWithSubject(req.Context(), subject))
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		registry := rbac.MustNewRegistry(rbac.RoleDefinitions())
		cache = rbac.NewDecisionCache(time.Minute)
		evaluator := rbac.NewEvaluator(registry, cache, logger)
		stats = &MockStatsStore{
			distribution: map[string]int64{"developer": 3},
			audit: []rbac.AuditEntry{
				{UserID: 1, Permission: "alert:read", Granted: true, Reason: "granted by role", CheckedAt: time.Now()},
			},
		}
		service := rbac.NewService(registry, cache, evaluator, NewMockGrantStore(), logger,
			rbac.WithStatsStore(stats))
		handler = rbac.NewHandler(transport.NewBaseHandler(logger), service)
	})

	Describe("MyPermissions", func() {
		It("reports the role, raw ad-hoc grants and effective permissions separately", func() {
			rec := httptest.NewRecorder()
			handler.MyPermissions(rec, request(http.MethodGet, "/api/v1/rbac/my-permissions", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp rbac.MyPermissionsResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Role).To(Equal("developer"))
			Expect(resp.AdHocPermissions).To(Equal([]string{"cost:read"}))
			Expect(resp.Permissions).To(ContainElement("cost:read"))
			Expect(len(resp.Permissions)).To(BeNumerically(">", len(resp.AdHocPermissions)))
		})
	})

	Describe("CheckMultiple", func() {
		It("scopes unscoped permissions with the request resource_id", func() {
			rec := httptest.NewRecorder()
			handler.CheckMultiple(rec, request(http.MethodPost, "/api/v1/rbac/check-multiple", rbac.CheckMultipleRequest{
				Permissions: []string{"deployment:execute"},
				RequireAll:  true,
				ResourceID:  "staging",
				ContextMetadata: map[string]string{
					"pipeline": "api-gateway-deploy",
				},
			}))

			Expect(rec.Code).To(Equal(http.StatusOK))

			var result rbac.PermissionCheckResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
			Expect(result.PermissionsChecked).To(Equal([]string{"deployment:execute:staging"}))
		})

		It("names every missing permission in an ALL deny", func() {
			rec := httptest.NewRecorder()
			handler.CheckMultiple(rec, request(http.MethodPost, "/api/v1/rbac/check-multiple", rbac.CheckMultipleRequest{
				Permissions: []string{"security:manage", "cost:delete"},
				RequireAll:  true,
			}))

			var result rbac.PermissionCheckResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(ContainSubstring("security:manage"))
			Expect(result.Reason).To(ContainSubstring("cost:delete"))
		})
	})

	Describe("AdminStats", func() {
		It("aggregates cache counters, role distribution and recent audit entries", func() {
			rec := httptest.NewRecorder()
			handler.AdminStats(rec, request(http.MethodGet, "/api/v1/rbac/admin/stats", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp rbac.AdminStatsResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.RoleDistribution).To(HaveKeyWithValue("developer", int64(3)))
			Expect(resp.RecentAudit).To(HaveLen(1))
			Expect(resp.RecentAudit[0].Permission).To(Equal("alert:read"))
			Expect(resp.Cache.TTL).NotTo(BeEmpty())
		})
	})
})
