package rbac

import (
	"encoding/json"
	"net/http"

	"github.com/opsvista/opsvista/internal"
	"github.com/opsvista/opsvista/internal/transport"
)

// recentAuditLimit caps how many audit rows the admin stats endpoint
// returns.
const recentAuditLimit = 20

// Handler exposes the permission API under /api/v1/rbac.
type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(base *transport.BaseHandler, service *Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) subject(w http.ResponseWriter, r *http.Request) (Subject, bool) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return Subject{}, false
	}
	return subject, true
}

func (h *Handler) accessContext(subject Subject, r *http.Request) AccessContext {
	return AccessContext{
		UserID:         subject.UserID,
		OrganizationID: subject.OrganizationID,
		IPAddress:      clientIP(r),
		UserAgent:      r.UserAgent(),
	}
}

// Check handles GET /rbac/check?permission=alert:read&resource=api-gateway.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("permission")
	if raw == "" {
		h.WriteError(w, http.StatusBadRequest, "permission query parameter is required")
		return
	}

	perm, err := ParsePermission(raw)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		resource = r.URL.Query().Get("resource_id")
	}
	if resource != "" {
		perm = perm.WithResource(resource)
	}

	result := h.service.Check(subject, perm, h.accessContext(subject, r))
	h.WriteJSON(w, http.StatusOK, result)
}

// CheckMultiple handles POST /rbac/check-multiple.
func (h *Handler) CheckMultiple(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req CheckMultipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Permissions) == 0 {
		h.WriteError(w, http.StatusBadRequest, "permissions list is required")
		return
	}

	perms := make([]Permission, 0, len(req.Permissions))
	for _, raw := range req.Permissions {
		p, err := ParsePermission(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.ResourceID != "" && p.Resource == "" {
			p = p.WithResource(req.ResourceID)
		}
		perms = append(perms, p)
	}

	accessCtx := h.accessContext(subject, r)
	accessCtx.ResourceMetadata = req.ContextMetadata

	result := h.service.CheckMultiple(subject, perms, accessCtx, req.RequireAll)
	h.WriteJSON(w, http.StatusOK, result)
}

// MyPermissions handles GET /rbac/my-permissions.
func (h *Handler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	perms := h.service.EffectivePermissions(subject)
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.String()
	}

	adHoc := subject.ExtraPermissions
	if adHoc == nil {
		adHoc = []string{}
	}

	h.WriteJSON(w, http.StatusOK, MyPermissionsResponse{
		UserID:           subject.UserID,
		Role:             subject.Role,
		AdHocPermissions: adHoc,
		Permissions:      out,
	})
}

// Roles handles GET /rbac/roles.
func (h *Handler) Roles(w http.ResponseWriter, r *http.Request) {
	defs := h.service.Roles()
	out := make([]RoleResponse, len(defs))
	for i, d := range defs {
		out[i] = toRoleResponse(d)
	}
	h.WriteJSON(w, http.StatusOK, out)
}

// Grant handles POST /rbac/admin/grant. The route guard has already
// required security:manage.
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.Permission == "" {
		h.WriteError(w, http.StatusBadRequest, "user_id and permission are required")
		return
	}

	if err := h.service.Grant(r.Context(), req.UserID, req.Permission, subject.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantResponse{UserID: req.UserID, Permission: req.Permission, Status: "granted"})
}

// Revoke handles POST /rbac/admin/revoke.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.Permission == "" {
		h.WriteError(w, http.StatusBadRequest, "user_id and permission are required")
		return
	}

	if err := h.service.Revoke(r.Context(), req.UserID, req.Permission, subject.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantResponse{UserID: req.UserID, Permission: req.Permission, Status: "revoked"})
}

// AdminStats handles GET /rbac/admin/stats: cache counters, users per
// role and the latest audit entries.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.AdminStats(r.Context(), recentAuditLimit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	recent := make([]AuditEntryResponse, len(data.RecentAudit))
	for i, entry := range data.RecentAudit {
		recent[i] = toAuditEntryResponse(entry)
	}

	h.WriteJSON(w, http.StatusOK, AdminStatsResponse{
		Cache:            data.Cache,
		RoleDistribution: data.RoleDistribution,
		RecentAudit:      recent,
	})
}

// CacheStats handles GET /rbac/admin/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.service.CacheStats())
}

// CacheClear handles POST /rbac/admin/cache/clear.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	removed := h.service.ClearCache()
	h.WriteJSON(w, http.StatusOK, CacheClearResponse{EntriesRemoved: removed})
}

// Health handles GET /rbac/health: reports the core is wired and the
// cache is answering.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.service.CacheStats()
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"roles":  len(h.service.Roles()),
		"cache":  stats,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteJSON(w, appErr.StatusCode, internal.Response{Error: appErr})
		return
	}
	h.WriteError(w, http.StatusInternalServerError, "internal error")
}
