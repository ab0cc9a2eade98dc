package rbac_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/rbac"
)

var _ = Describe("Guard", func() {
	var (
		guard *rbac.Guard
		next  http.Handler
	)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	newRequest := func(method, path string, subject *rbac.Subject) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		if subject != nil {
			req = req.WithContext(rbac.ContextWithSubject(req.Context(), *subject))
		}
		return req
	}

	BeforeEach(func() {
		registry := rbac.MustNewRegistry(rbac.RoleDefinitions())
		cache := rbac.NewDecisionCache(time.Minute)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		evaluator := rbac.NewEvaluator(registry, cache, logger)
		service := rbac.NewService(registry, cache, evaluator, NewMockGrantStore(), logger)

		var err error
		guard, err = rbac.NewGuard(service, logger, rbac.DefaultRouteRules(), rbac.DefaultPublicPaths())
		Expect(err).NotTo(HaveOccurred())
		next = guard.Middleware(okHandler)
	})

	It("should let public paths through without a subject", func() {
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodGet, "/health", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should let unmatched paths through", func() {
		subject := rbac.Subject{UserID: 1, OrganizationID: 1, Role: "viewer", IsActive: true}
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/something-else", &subject))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should return 401 for a guarded path without a subject", func() {
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/alerts", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should allow a subject whose role grants the route permission", func() {
		subject := rbac.Subject{UserID: 1, OrganizationID: 1, Role: "viewer", IsActive: true}
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/alerts", &subject))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should deny with 403 and a reason when the role lacks the permission", func() {
		subject := rbac.Subject{UserID: 1, OrganizationID: 1, Role: "viewer", IsActive: true}
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodDelete, "/api/v1/alerts/5", &subject))
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKey("error"))
	})

	It("should gate pipeline runs on deployment:execute", func() {
		viewer := rbac.Subject{UserID: 1, OrganizationID: 1, Role: "viewer", IsActive: true}
		operator := rbac.Subject{UserID: 2, OrganizationID: 1, Role: "operator", IsActive: true}

		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/pipelines/3/run", &viewer))
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec = httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/pipelines/3/run", &operator))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should gate rbac admin routes on security:manage", func() {
		admin := rbac.Subject{UserID: 3, OrganizationID: 1, Role: "org_admin", IsActive: true}
		viewer := rbac.Subject{UserID: 1, OrganizationID: 1, Role: "viewer", IsActive: true}

		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/rbac/admin/grant", &viewer))
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec = httptest.NewRecorder()
		next.ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/rbac/admin/grant", &admin))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should let super_admin through everywhere", func() {
		root := rbac.Subject{UserID: 9, OrganizationID: 1, Role: "super_admin", IsActive: true}
		for _, path := range []string{"/api/v1/alerts", "/api/v1/rbac/admin/cache/stats", "/api/v1/organizations/2"} {
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, newRequest(http.MethodDelete, path, &root))
			Expect(rec.Code).To(Equal(http.StatusOK), "path %s", path)
		}
	})
})
