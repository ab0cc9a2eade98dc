package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/httprate"

	"github.com/opsvista/opsvista/internal/alert"
	"github.com/opsvista/opsvista/internal/auth"
	"github.com/opsvista/opsvista/internal/cluster"
	"github.com/opsvista/opsvista/internal/integration"
	"github.com/opsvista/opsvista/internal/observability"
	"github.com/opsvista/opsvista/internal/organization"
	"github.com/opsvista/opsvista/internal/pipeline"
	"github.com/opsvista/opsvista/internal/project"
	"github.com/opsvista/opsvista/internal/rbac"
	"github.com/opsvista/opsvista/internal/team"
	"github.com/opsvista/opsvista/internal/transport/middleware"
	"github.com/opsvista/opsvista/internal/transport/swagger"
	"github.com/opsvista/opsvista/internal/user"
	"github.com/opsvista/opsvista/internal/ws"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	RBAC         *rbac.Handler
	Organization *organization.Handler
	User         *user.Handler
	Team         *team.Handler
	Project      *project.Handler
	Pipeline     *pipeline.Handler
	Cluster      *cluster.Handler
	Alert        *alert.Handler
	Kubernetes   *integration.KubernetesHandler
	Ansible      *integration.AnsibleHandler
	Slack        *integration.SlackHandler
	WS           *ws.Handler
}

// RegisterAllRoutes wires middleware and every module route onto the
// mux. Everything under /api/v1 except auth, health and the websocket
// demo sits behind the auth middleware and the permission guard.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, guard *rbac.Guard, metrics *observability.Metrics, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(metrics.HTTPMiddleware)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			// brute-force protection on the credential endpoints
			sr.Use(httprate.Limit(20, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// websocket demo stream, open like the health endpoints
		r.Get("/ws", h.WS.Serve)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(guard.Middleware)
			pr.Use(httprate.Limit(300, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))

			pr.Route("/rbac", func(rr chi.Router) {
				rr.Get("/check", h.RBAC.Check)
				rr.Post("/check-multiple", h.RBAC.CheckMultiple)
				rr.Get("/my-permissions", h.RBAC.MyPermissions)
				rr.Get("/roles", h.RBAC.Roles)
				rr.Get("/health", h.RBAC.Health)

				rr.Route("/admin", func(ar chi.Router) {
					ar.Post("/grant", h.RBAC.Grant)
					ar.Post("/revoke", h.RBAC.Revoke)
					ar.Get("/stats", h.RBAC.AdminStats)
					ar.Get("/cache/stats", h.RBAC.CacheStats)
					ar.Post("/cache/clear", h.RBAC.CacheClear)
				})
			})

			pr.Route("/organizations", func(or chi.Router) {
				or.Get("/", h.Organization.List)
				or.Post("/", h.Organization.Create)
				or.Get("/{id}", h.Organization.Get)
				or.Put("/{id}", h.Organization.Update)
				or.Delete("/{id}", h.Organization.Delete)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.List)
				ur.Post("/", h.User.Create)
				ur.Get("/{id}", h.User.Get)
				ur.Put("/{id}", h.User.Update)
				ur.Delete("/{id}", h.User.Deactivate)
			})

			pr.Route("/teams", func(tr chi.Router) {
				tr.Get("/", h.Team.List)
				tr.Post("/", h.Team.Create)
				tr.Get("/{id}", h.Team.Get)
				tr.Delete("/{id}", h.Team.Delete)
				tr.Get("/{id}/members", h.Team.Members)
				tr.Post("/{id}/members", h.Team.AddMember)
				tr.Delete("/{id}/members/{userID}", h.Team.RemoveMember)
			})

			pr.Route("/projects", func(jr chi.Router) {
				jr.Get("/", h.Project.List)
				jr.Post("/", h.Project.Create)
				jr.Get("/{id}", h.Project.Get)
				jr.Put("/{id}", h.Project.Update)
				jr.Delete("/{id}", h.Project.Delete)
			})

			pr.Route("/pipelines", func(plr chi.Router) {
				plr.Get("/", h.Pipeline.List)
				plr.Post("/", h.Pipeline.Create)
				plr.Get("/{id}", h.Pipeline.Get)
				plr.Delete("/{id}", h.Pipeline.Delete)
				plr.Post("/{id}/run", h.Pipeline.Run)
			})

			pr.Route("/clusters", func(cr chi.Router) {
				cr.Get("/", h.Cluster.List)
				cr.Post("/", h.Cluster.Create)
				cr.Get("/{id}", h.Cluster.Get)
				cr.Put("/{id}", h.Cluster.Update)
				cr.Delete("/{id}", h.Cluster.Delete)
			})

			pr.Route("/alerts", func(ar chi.Router) {
				ar.Get("/", h.Alert.List)
				ar.Post("/", h.Alert.Create)
				ar.Get("/{id}", h.Alert.Get)
				ar.Delete("/{id}", h.Alert.Delete)
				ar.Post("/{id}/acknowledge", h.Alert.Acknowledge)
				ar.Post("/{id}/resolve", h.Alert.Resolve)
			})

			pr.Route("/integrations", func(ir chi.Router) {
				ir.Get("/kubernetes/namespaces", h.Kubernetes.Namespaces)
				ir.Get("/kubernetes/pods", h.Kubernetes.Pods)
				ir.Get("/ansible/runs", h.Ansible.Runs)
				ir.Get("/ansible/hosts", h.Ansible.Hosts)
				ir.Get("/slack/channels", h.Slack.Channels)
				ir.Post("/slack/post", h.Slack.Post)
			})
		})
	})
}
