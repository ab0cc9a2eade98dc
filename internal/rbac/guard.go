package rbac

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

// RouteRule maps a URL pattern and method set to required permissions.
// Methods is uppercase; an empty method map applies to all methods.
type RouteRule struct {
	Pattern    string
	Methods    map[string][]Permission
	AnyMethod  []Permission
	RequireAll bool
	compiled   *regexp.Regexp
}

// Guard is the route-level authorization middleware. It matches the
// request path against its rule table, resolves the required
// permissions for the method, and asks the evaluator. Unmatched paths
// pass through: the guard protects what it knows about, module handlers
// still run their own checks.
type Guard struct {
	rules       []RouteRule
	publicPaths []string
	service     *Service
	logger      *slog.Logger
}

// NewGuard compiles the rule table. An invalid pattern is a programming
// error surfaced at startup.
func NewGuard(service *Service, logger *slog.Logger, rules []RouteRule, publicPaths []string) (*Guard, error) {
	compiled := make([]RouteRule, len(rules))
	for i, rule := range rules {
		re, err := regexp.Compile("^" + rule.Pattern + "$")
		if err != nil {
			return nil, err
		}
		rule.compiled = re
		compiled[i] = rule
	}
	return &Guard{
		rules:       compiled,
		publicPaths: publicPaths,
		service:     service,
		logger:      logger,
	}, nil
}

// DefaultPublicPaths are prefixes that skip authorization entirely.
func DefaultPublicPaths() []string {
	return []string{
		"/ping",
		"/health",
		"/metrics",
		"/swagger",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
		"/api/v1/ws",
	}
}

// DefaultRouteRules protects the platform's API surface.
func DefaultRouteRules() []RouteRule {
	read := func(c Category) []Permission { return []Permission{{Category: c, Action: ActionRead}} }
	manage := func(c Category) []Permission { return []Permission{{Category: c, Action: ActionManage}} }
	crud := func(c Category) map[string][]Permission {
		return map[string][]Permission{
			http.MethodGet:    read(c),
			http.MethodPost:   {{Category: c, Action: ActionCreate}},
			http.MethodPut:    {{Category: c, Action: ActionUpdate}},
			http.MethodPatch:  {{Category: c, Action: ActionUpdate}},
			http.MethodDelete: {{Category: c, Action: ActionDelete}},
		}
	}

	return []RouteRule{
		{Pattern: `/api/v1/organizations(/.*)?`, Methods: map[string][]Permission{
			http.MethodGet: read(CategoryOrganization),
		}, AnyMethod: manage(CategoryOrganization)},
		{Pattern: `/api/v1/users(/.*)?`, Methods: map[string][]Permission{
			http.MethodGet: read(CategoryUser),
		}, AnyMethod: manage(CategoryUser)},
		{Pattern: `/api/v1/teams(/.*)?`, Methods: map[string][]Permission{
			http.MethodGet: read(CategoryUser),
		}, AnyMethod: []Permission{{Category: CategoryCollaboration, Action: ActionManage}}},
		{Pattern: `/api/v1/projects(/.*)?`, Methods: crud(CategoryService)},
		{Pattern: `/api/v1/pipelines/\d+/run`, AnyMethod: []Permission{{Category: CategoryDeployment, Action: ActionExecute}}},
		{Pattern: `/api/v1/pipelines(/.*)?`, Methods: crud(CategoryDeployment)},
		{Pattern: `/api/v1/clusters(/.*)?`, Methods: crud(CategoryService)},
		{Pattern: `/api/v1/alerts/\d+/acknowledge`, AnyMethod: []Permission{{Category: CategoryAlert, Action: ActionManage}}},
		{Pattern: `/api/v1/alerts(/.*)?`, Methods: crud(CategoryAlert)},
		{Pattern: `/api/v1/integrations/slack/post`, AnyMethod: []Permission{{Category: CategoryIntegration, Action: ActionExecute}}},
		{Pattern: `/api/v1/integrations(/.*)?`, AnyMethod: read(CategoryIntegration)},
		{Pattern: `/api/v1/rbac/admin(/.*)?`, AnyMethod: []Permission{{Category: CategorySecurity, Action: ActionManage}}},
	}
}

// Middleware returns the chi-compatible handler wrapper.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rule, perms, matched := g.match(r.URL.Path, r.Method)
		if !matched {
			next.ServeHTTP(w, r)
			return
		}

		subject, ok := SubjectFromContext(r.Context())
		if !ok {
			g.writeDeny(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		accessCtx := AccessContext{
			UserID:         subject.UserID,
			OrganizationID: subject.OrganizationID,
			IPAddress:      clientIP(r),
			UserAgent:      r.UserAgent(),
		}

		result := g.service.CheckMultiple(subject, perms, accessCtx, rule.RequireAll)
		if !result.Granted {
			g.logger.Warn("request denied by route guard",
				"path", r.URL.Path,
				"method", r.Method,
				"user_id", subject.UserID,
				"reason", result.Reason,
			)
			g.writeDeny(w, http.StatusForbidden, result.Reason, result.PermissionsChecked)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) isPublic(path string) bool {
	for _, p := range g.publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (g *Guard) match(path, method string) (RouteRule, []Permission, bool) {
	for _, rule := range g.rules {
		if !rule.compiled.MatchString(path) {
			continue
		}
		if perms, ok := rule.Methods[method]; ok {
			return rule, perms, true
		}
		if len(rule.AnyMethod) > 0 {
			return rule, rule.AnyMethod, true
		}
	}
	return RouteRule{}, nil, false
}

func (g *Guard) writeDeny(w http.ResponseWriter, status int, reason string, checked []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": reason,
		},
	}
	if len(checked) > 0 {
		body["permissions_checked"] = checked
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to encode deny response", "error", err)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		return host[:i]
	}
	return host
}
