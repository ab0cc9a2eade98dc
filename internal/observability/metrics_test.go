package observability_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/opsvista/opsvista/internal/observability"
)

var _ = Describe("Metrics", func() {
	var metrics *observability.Metrics

	BeforeEach(func() {
		metrics = observability.NewMetrics()
	})

	Describe("permission evaluator counters", func() {
		It("counts cache hits and misses separately", func() {
			metrics.RecordCacheHit()
			metrics.RecordCacheHit()
			metrics.RecordCacheMiss()

			Expect(testutil.ToFloat64(metrics.RBACCacheHitsTotal)).To(Equal(2.0))
			Expect(testutil.ToFloat64(metrics.RBACCacheMissesTotal)).To(Equal(1.0))
		})

		It("labels evaluation outcomes", func() {
			metrics.RecordEvaluation(true)
			metrics.RecordEvaluation(true)
			metrics.RecordEvaluation(false)

			Expect(testutil.ToFloat64(metrics.RBACEvaluationsTotal.WithLabelValues("granted"))).To(Equal(2.0))
			Expect(testutil.ToFloat64(metrics.RBACEvaluationsTotal.WithLabelValues("denied"))).To(Equal(1.0))
		})
	})

	Describe("HTTP middleware", func() {
		It("records request counts with the response status", func() {
			handler := metrics.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			count := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/v1/alerts", http.MethodGet, "418"))
			Expect(count).To(Equal(1.0))
		})
	})

	It("serves the registry over HTTP", func() {
		metrics.RecordCacheHit()

		recorder := httptest.NewRecorder()
		metrics.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(recorder.Body.String()).To(ContainSubstring("opsvista_rbac_decision_cache_hits_total 1"))
	})
})
