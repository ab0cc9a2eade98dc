package rbac

import (
	"fmt"
	"strings"
)

// Category groups permissions by the platform area they protect.
type Category string

const (
	CategorySystem        Category = "system"
	CategoryOrganization  Category = "organization"
	CategoryUser          Category = "user"
	CategoryService       Category = "service"
	CategoryAlert         Category = "alert"
	CategoryDeployment    Category = "deployment"
	CategoryMetric        Category = "metric"
	CategoryAudit         Category = "audit"
	CategorySecurity      Category = "security"
	CategoryCost          Category = "cost"
	CategoryCollaboration Category = "collaboration"
	CategoryIntegration   Category = "integration"
	CategoryReporting     Category = "reporting"
)

// Action is the operation a permission allows within its category.
type Action string

const (
	ActionRead    Action = "read"
	ActionManage  Action = "manage"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExecute Action = "execute"
	ActionApprove Action = "approve"
)

var validCategories = map[Category]struct{}{
	CategorySystem:        {},
	CategoryOrganization:  {},
	CategoryUser:          {},
	CategoryService:       {},
	CategoryAlert:         {},
	CategoryDeployment:    {},
	CategoryMetric:        {},
	CategoryAudit:         {},
	CategorySecurity:      {},
	CategoryCost:          {},
	CategoryCollaboration: {},
	CategoryIntegration:   {},
	CategoryReporting:     {},
}

var validActions = map[Action]struct{}{
	ActionRead:    {},
	ActionManage:  {},
	ActionCreate:  {},
	ActionUpdate:  {},
	ActionDelete:  {},
	ActionExecute: {},
	ActionApprove: {},
}

// ErrInvalidPermissionFormat distinguishes "can't parse" from "evaluated and
// denied"; callers surface it as a 400, never as a silent deny.
type ErrInvalidPermissionFormat struct {
	Raw    string
	Reason string
}

func (e *ErrInvalidPermissionFormat) Error() string {
	return fmt.Sprintf("invalid permission format %q: %s", e.Raw, e.Reason)
}

// Permission is an immutable category:action[:resource] triple. An empty
// Resource means the permission is unscoped and covers every resource of its
// category:action pair.
type Permission struct {
	Category Category
	Action   Action
	Resource string
}

// ParsePermission is the single parsing entry point for permission strings.
// It accepts "category:action" or "category:action:resource".
func ParsePermission(s string) (Permission, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Permission{}, &ErrInvalidPermissionFormat{Raw: s, Reason: "expected 2 or 3 colon-separated segments"}
	}
	for _, p := range parts {
		if p == "" {
			return Permission{}, &ErrInvalidPermissionFormat{Raw: s, Reason: "empty segment"}
		}
	}

	cat := Category(parts[0])
	if _, ok := validCategories[cat]; !ok {
		return Permission{}, &ErrInvalidPermissionFormat{Raw: s, Reason: fmt.Sprintf("unknown category %q", parts[0])}
	}

	act := Action(parts[1])
	if _, ok := validActions[act]; !ok {
		return Permission{}, &ErrInvalidPermissionFormat{Raw: s, Reason: fmt.Sprintf("unknown action %q", parts[1])}
	}

	perm := Permission{Category: cat, Action: act}
	if len(parts) == 3 {
		perm.Resource = parts[2]
	}
	return perm, nil
}

// MustParsePermission panics on malformed input; reserved for static tables.
func MustParsePermission(s string) Permission {
	p, err := ParsePermission(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the canonical form. ParsePermission(p.String()) == p for
// every valid permission.
func (p Permission) String() string {
	if p.Resource == "" {
		return string(p.Category) + ":" + string(p.Action)
	}
	return string(p.Category) + ":" + string(p.Action) + ":" + p.Resource
}

// Matches reports whether this granted permission satisfies the required one.
// The match is asymmetric: an unscoped grant (no resource) satisfies any
// resource-scoped request for the same category and action, but a scoped
// grant only satisfies a request for that exact resource.
func (p Permission) Matches(required Permission) bool {
	if p.Category != required.Category || p.Action != required.Action {
		return false
	}
	if p.Resource == "" {
		return true
	}
	return p.Resource == required.Resource
}

// WithResource returns a copy of p scoped to the given resource.
func (p Permission) WithResource(resource string) Permission {
	p.Resource = resource
	return p
}
