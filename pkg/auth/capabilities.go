package auth

import "github.com/mariasandoval/storelocator-backend/pkg/enums"

// Capability names a guarded action on the admin surface.
type Capability string

const (
	CapabilityStoresRead   Capability = "stores:read"
	CapabilityStoresWrite  Capability = "stores:write"
	CapabilityStoresImport Capability = "stores:import"
	CapabilityUsersManage  Capability = "users:manage"
)

// capabilitiesByRole is the single source of truth for role grants.
// Handlers check capabilities, never role strings.
var capabilitiesByRole = map[enums.Role]map[Capability]struct{}{
	enums.RoleAdmin: {
		CapabilityStoresRead:   {},
		CapabilityStoresWrite:  {},
		CapabilityStoresImport: {},
		CapabilityUsersManage:  {},
	},
	enums.RoleMarketer: {
		CapabilityStoresRead:   {},
		CapabilityStoresWrite:  {},
		CapabilityStoresImport: {},
	},
	enums.RoleViewer: {
		CapabilityStoresRead: {},
	},
}

// RoleHasCapability reports whether the role grants the capability.
func RoleHasCapability(role enums.Role, capability Capability) bool {
	grants, ok := capabilitiesByRole[role]
	if !ok {
		return false
	}
	_, granted := grants[capability]
	return granted
}
