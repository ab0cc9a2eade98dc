package rbac

import "time"

// CheckMultipleRequest is the body of POST /rbac/check-multiple.
// ResourceID scopes any permission that does not already carry a
// resource; ContextMetadata flows into the access context and audit.
type CheckMultipleRequest struct {
	Permissions     []string          `json:"permissions"`
	RequireAll      bool              `json:"require_all"`
	ResourceID      string            `json:"resource_id,omitempty"`
	ContextMetadata map[string]string `json:"context_metadata,omitempty"`
}

// GrantRequest is the body of the admin grant/revoke endpoints.
type GrantRequest struct {
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
}

// RoleResponse is the public shape of a role definition.
type RoleResponse struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	Description  string   `json:"description"`
	Permissions  []string `json:"permissions"`
	InheritsFrom []string `json:"inherits_from,omitempty"`
	Priority     int      `json:"priority"`
	IsSystemRole bool     `json:"is_system_role"`
	IsActive     bool     `json:"is_active"`
}

func toRoleResponse(def RoleDefinition) RoleResponse {
	perms := make([]string, len(def.Permissions))
	for i, p := range def.Permissions {
		perms[i] = p.String()
	}
	return RoleResponse{
		Name:         def.Name,
		DisplayName:  def.DisplayName,
		Description:  def.Description,
		Permissions:  perms,
		InheritsFrom: def.InheritsFrom,
		Priority:     def.Priority,
		IsSystemRole: def.IsSystemRole,
		IsActive:     def.IsActive,
	}
}

// MyPermissionsResponse lists a subject's role, the raw ad-hoc grants
// layered on top of it, and the resolved effective permissions.
type MyPermissionsResponse struct {
	UserID           int64    `json:"user_id"`
	Role             string   `json:"role"`
	AdHocPermissions []string `json:"ad_hoc_permissions"`
	Permissions      []string `json:"permissions"`
}

// GrantResponse confirms a grant or revoke.
type GrantResponse struct {
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
	Status     string `json:"status"`
}

// CacheClearResponse reports how many entries a clear removed.
type CacheClearResponse struct {
	EntriesRemoved int `json:"entries_removed"`
}

// AuditEntryResponse is the public shape of one audit trail row.
type AuditEntryResponse struct {
	UserID         int64     `json:"user_id"`
	OrganizationID int64     `json:"organization_id"`
	Permission     string    `json:"permission"`
	Granted        bool      `json:"granted"`
	Reason         string    `json:"reason"`
	IPAddress      string    `json:"ip_address,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// AdminStatsResponse aggregates cache counters, how users are spread
// across roles, and the latest audit entries.
type AdminStatsResponse struct {
	Cache            CacheStats           `json:"cache"`
	RoleDistribution map[string]int64     `json:"role_distribution"`
	RecentAudit      []AuditEntryResponse `json:"recent_audit"`
}

func toAuditEntryResponse(entry AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		UserID:         entry.UserID,
		OrganizationID: entry.OrganizationID,
		Permission:     entry.Permission,
		Granted:        entry.Granted,
		Reason:         entry.Reason,
		IPAddress:      entry.IPAddress,
		CheckedAt:      entry.CheckedAt,
	}
}
