package rbac

import (
	"fmt"
	"sort"
)

// RoleDefinition describes a named role. Roles are static configuration:
// the registry is built once at startup and read-only afterwards.
type RoleDefinition struct {
	Name         string
	DisplayName  string
	Description  string
	Permissions  []Permission
	InheritsFrom []string
	Priority     int
	IsSystemRole bool
	IsActive     bool
}

// RoleDefinitions returns the built-in role table. Inheritance forms a
// chain viewer -> operator -> developer -> team_lead -> org_admin, with
// super_admin on top.
func RoleDefinitions() []RoleDefinition {
	return []RoleDefinition{
		{
			Name:        "viewer",
			DisplayName: "Viewer",
			Description: "Read-only access to dashboards, services and alerts",
			Permissions: []Permission{
				{Category: CategoryService, Action: ActionRead},
				{Category: CategoryAlert, Action: ActionRead},
				{Category: CategoryMetric, Action: ActionRead},
				{Category: CategoryDeployment, Action: ActionRead},
				{Category: CategoryReporting, Action: ActionRead},
			},
			Priority:     10,
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			Name:        "operator",
			DisplayName: "Operator",
			Description: "Day-to-day operations: acknowledge alerts, run deployments",
			Permissions: []Permission{
				{Category: CategoryAlert, Action: ActionManage},
				{Category: CategoryDeployment, Action: ActionExecute},
				{Category: CategoryIntegration, Action: ActionRead},
			},
			InheritsFrom: []string{"viewer"},
			Priority:     20,
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			Name:        "developer",
			DisplayName: "Developer",
			Description: "Manage services and pipelines for owned projects",
			Permissions: []Permission{
				{Category: CategoryService, Action: ActionCreate},
				{Category: CategoryService, Action: ActionUpdate},
				{Category: CategoryDeployment, Action: ActionCreate},
				{Category: CategoryCollaboration, Action: ActionManage},
			},
			InheritsFrom: []string{"operator"},
			Priority:     30,
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			Name:        "team_lead",
			DisplayName: "Team Lead",
			Description: "Team management plus approval rights",
			Permissions: []Permission{
				{Category: CategoryUser, Action: ActionRead},
				{Category: CategoryDeployment, Action: ActionApprove},
				{Category: CategoryCost, Action: ActionRead},
				{Category: CategoryReporting, Action: ActionManage},
			},
			InheritsFrom: []string{"developer"},
			Priority:     50,
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			Name:        "org_admin",
			DisplayName: "Organization Admin",
			Description: "Full control inside one organization",
			Permissions: []Permission{
				{Category: CategoryOrganization, Action: ActionManage},
				{Category: CategoryUser, Action: ActionManage},
				{Category: CategorySecurity, Action: ActionManage},
				{Category: CategoryAudit, Action: ActionRead},
				{Category: CategoryCost, Action: ActionManage},
				{Category: CategoryIntegration, Action: ActionManage},
			},
			InheritsFrom: []string{"team_lead"},
			Priority:     80,
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			Name:        "super_admin",
			DisplayName: "Super Admin",
			Description: "Platform-wide administration, bypasses permission checks",
			Permissions: []Permission{
				{Category: CategorySystem, Action: ActionManage},
			},
			InheritsFrom: []string{"org_admin"},
			Priority:     100,
			IsSystemRole: true,
			IsActive:     true,
		},
	}
}

// Registry resolves role names to definitions and computes effective
// permission sets across inheritance chains.
type Registry struct {
	roles map[string]RoleDefinition
}

// NewRegistry builds a registry and validates every inheritance chain
// eagerly. A cycle or a reference to a missing role is a configuration
// error the process must not start with.
func NewRegistry(defs []RoleDefinition) (*Registry, error) {
	roles := make(map[string]RoleDefinition, len(defs))
	for _, d := range defs {
		if _, dup := roles[d.Name]; dup {
			return nil, fmt.Errorf("duplicate role definition %q", d.Name)
		}
		roles[d.Name] = d
	}
	r := &Registry{roles: roles}

	for name := range roles {
		if err := r.walkChain(name, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry wraps NewRegistry for the static built-in table.
func MustNewRegistry(defs []RoleDefinition) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) walkChain(name string, visited map[string]bool) error {
	if visited[name] {
		return fmt.Errorf("cyclic role inheritance detected at %q", name)
	}
	def, ok := r.roles[name]
	if !ok {
		return fmt.Errorf("role %q inherits from unknown role", name)
	}
	visited[name] = true
	defer delete(visited, name)

	for _, parent := range def.InheritsFrom {
		if err := r.walkChain(parent, visited); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the definition for a role name. A missing role is not an
// error at evaluation time; callers treat it as zero permissions.
func (r *Registry) Get(name string) (RoleDefinition, bool) {
	def, ok := r.roles[name]
	return def, ok
}

// Names returns all registered role names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.roles))
	for n := range r.roles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every definition, sorted by ascending priority.
func (r *Registry) All() []RoleDefinition {
	defs := make([]RoleDefinition, 0, len(r.roles))
	for _, d := range r.roles {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Priority < defs[j].Priority })
	return defs
}

// EffectivePermissions returns the union of a role's own permissions and
// everything inherited, deduplicated. Inactive roles contribute nothing.
// Unknown roles yield an empty set; the registry was validated at startup,
// so a dangling reference here means the caller passed a name that never
// existed.
func (r *Registry) EffectivePermissions(name string) []Permission {
	seen := make(map[Permission]struct{})
	var out []Permission
	r.collect(name, map[string]bool{}, seen, &out)
	return out
}

func (r *Registry) collect(name string, visited map[string]bool, seen map[Permission]struct{}, out *[]Permission) {
	if visited[name] {
		return
	}
	visited[name] = true

	def, ok := r.roles[name]
	if !ok || !def.IsActive {
		return
	}
	for _, p := range def.Permissions {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		*out = append(*out, p)
	}
	for _, parent := range def.InheritsFrom {
		r.collect(parent, visited, seen, out)
	}
}

// HasPermission reports whether the role's effective set contains a grant
// matching the required permission.
func (r *Registry) HasPermission(name string, required Permission) bool {
	for _, granted := range r.EffectivePermissions(name) {
		if granted.Matches(required) {
			return true
		}
	}
	return false
}
