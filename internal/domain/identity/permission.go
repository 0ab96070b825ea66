package identity

import (
	"sort"
	"strings"
)

// WildcardPermission grants every permission
const WildcardPermission = "*"

// Resources guarded by permissions
const (
	ResourceSupplier   = "supplier"
	ResourceProduct    = "product"
	ResourceRate       = "rate"
	ResourceCollection = "collection"
	ResourcePayment    = "payment"
	ResourceRole       = "role"
	ResourceUser       = "user"
	ResourceReport     = "report"
)

// Actions that can be granted on a resource
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// Permission is a resource:action pair such as "collection:create"
type Permission struct {
	Code     string `json:"code"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

var crudActions = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

// PermissionCatalogue lists every grantable permission
func PermissionCatalogue() []Permission {
	var perms []Permission
	for _, resource := range []string{
		ResourceSupplier, ResourceProduct, ResourceRate, ResourceCollection,
		ResourcePayment, ResourceRole, ResourceUser,
	} {
		for _, action := range crudActions {
			perms = append(perms, newPermission(resource, action))
		}
	}
	perms = append(perms,
		newPermission(ResourceReport, ActionRead),
		newPermission(ResourceReport, ActionExport),
	)
	return perms
}

// PermissionCode joins a resource and action
func PermissionCode(resource, action string) string {
	return resource + ":" + action
}

// IsKnownPermission reports whether code is in the catalogue or the wildcard
func IsKnownPermission(code string) bool {
	if code == WildcardPermission {
		return true
	}
	_, ok := knownPermissions[code]
	return ok
}

// NormalizePermissions trims, lower-cases, de-duplicates and sorts codes
func NormalizePermissions(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// GrantsPermission reports whether granted satisfies required
func GrantsPermission(granted []string, required string) bool {
	for _, p := range granted {
		if p == WildcardPermission || p == required {
			return true
		}
	}
	return false
}

var knownPermissions = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, p := range PermissionCatalogue() {
		m[p.Code] = struct{}{}
	}
	return m
}()

func newPermission(resource, action string) Permission {
	return Permission{Code: PermissionCode(resource, action), Resource: resource, Action: action}
}
