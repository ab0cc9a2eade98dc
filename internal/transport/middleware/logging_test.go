package middleware_test

import (
	"bufio"
	"bytes"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/transport/middleware"
)

// hijackableRecorder marks the original writer so handlers can tell
// whether the middleware wrapped it.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, errors.New("not a real connection")
}

var _ = Describe("LoggingMiddleware", func() {
	var (
		logOutput *bytes.Buffer
		logged    func(next http.Handler) http.Handler
	)

	BeforeEach(func() {
		logOutput = &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(logOutput, nil))
		logged = middleware.LoggingMiddleware(logger)
	})

	It("masks credential fields in the request body", func() {
		handler := logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		body := strings.NewReader(`{"email":"dev@acme.dev","password":"hunter2"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(logOutput.String()).To(ContainSubstring("[FILTERED]"))
		Expect(logOutput.String()).NotTo(ContainSubstring("hunter2"))
		Expect(logOutput.String()).To(ContainSubstring("dev@acme.dev"))
	})

	It("masks the authorization header", func() {
		handler := logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
		req.Header.Set("Authorization", "Bearer super-secret-jwt")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(logOutput.String()).NotTo(ContainSubstring("super-secret-jwt"))
	})

	It("leaves the request body readable for the handler", func() {
		var received string
		handler := logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := new(bytes.Buffer)
			_, err := buf.ReadFrom(r.Body)
			Expect(err).NotTo(HaveOccurred())
			received = buf.String()
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/teams", strings.NewReader(`{"name":"platform"}`))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(received).To(Equal(`{"name":"platform"}`))
	})

	It("logs elevated levels for error responses", func() {
		handler := logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/rbac/admin/stats", nil))

		Expect(logOutput.String()).To(ContainSubstring("level=WARN"))
		Expect(logOutput.String()).To(ContainSubstring("status_code=403"))
	})

	It("passes websocket upgrades through without wrapping the writer", func() {
		var sawHijacker bool
		handler := logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawHijacker = w.(http.Hijacker)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		handler.ServeHTTP(&hijackableRecorder{httptest.NewRecorder()}, req)

		Expect(sawHijacker).To(BeTrue())
	})
})
