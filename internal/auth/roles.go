package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/domain"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// Capability names a gated area of the application.
type Capability string

const (
	CapDashboard       Capability = "dashboard"
	CapItemsManage     Capability = "items.manage"
	CapMovementsRecord Capability = "movements.record"
	CapMovementsView   Capability = "movements.view"
	CapReportsView     Capability = "reports.view"
	CapUsersManage     Capability = "users.manage"
	CapAuditView       Capability = "audit.view"
	CapEquipmentMine   Capability = "equipment.mine"
)

// capabilityRoles maps each capability to the roles allowed to use it. An
// empty list means any authenticated role.
var capabilityRoles = map[Capability][]domain.Role{
	CapDashboard:       nil,
	CapItemsManage:     {domain.RoleWarehouseManager, domain.RoleHR},
	CapMovementsRecord: {domain.RoleWarehouseManager},
	CapMovementsView:   {domain.RoleWarehouseManager, domain.RoleHR},
	CapReportsView:     {domain.RoleHR},
	CapUsersManage:     {domain.RoleHR},
	CapAuditView:       {domain.RoleHR},
	CapEquipmentMine:   {domain.RoleEmployee},
}

// Capabilities lists every known capability.
func Capabilities() []Capability {
	return []Capability{
		CapDashboard, CapItemsManage, CapMovementsRecord, CapMovementsView,
		CapReportsView, CapUsersManage, CapAuditView, CapEquipmentMine,
	}
}

// RequiredRoles returns the roles a capability is restricted to and whether
// the capability is known.
func RequiredRoles(c Capability) ([]domain.Role, bool) {
	roles, ok := capabilityRoles[c]
	return roles, ok
}

// Allowed reports whether role satisfies required. No required roles means allowed.
func Allowed(role domain.Role, required ...domain.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

// Can reports whether role may use capability c. Unknown capabilities are denied.
func Can(role domain.Role, c Capability) bool {
	required, ok := capabilityRoles[c]
	if !ok {
		return false
	}
	return Allowed(role, required...)
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Allowed(principal.Identity.Role, allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireCapability ensures the principal's role may use capability.
func RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Can(principal.Identity.Role, capability) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
