package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Access is the role requirement for an operation.
type Access int

const (
	// AccessAuthenticated allows any valid principal.
	AccessAuthenticated Access = iota
	// AccessUser allows only role USER.
	AccessUser
	// AccessTech allows only role TECH.
	AccessTech
)

// Policies is the authorization table for the whole API, kept in one place
// so the role rules stay auditable. Routes absent from this table are
// public. Ownership checks that depend on fetched data (USER reading only
// their own ticket) remain in the handlers.
var Policies = map[string]Access{
	"tickets.list":   AccessAuthenticated,
	"tickets.get":    AccessAuthenticated,
	"tickets.create": AccessUser,
	"tickets.update": AccessTech,
	"tickets.delete": AccessTech,
	"users.list":     AccessTech,
	"users.delete":   AccessTech,
	"users.me":       AccessAuthenticated,
	"users.update":   AccessAuthenticated,
}

// Require returns a handler enforcing the named policy. Unknown policy names
// deny outright so a route can never be wired past the table by mistake.
func Require(policy string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		access, known := Policies[policy]
		if !known {
			return apperrors.NewForbidden("no policy for operation")
		}
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Allows(access, principal.Role) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// Allows reports whether a role satisfies an access requirement.
func Allows(access Access, role domain.Role) bool {
	switch access {
	case AccessAuthenticated:
		return role.Valid()
	case AccessUser:
		return role == domain.RoleUser
	case AccessTech:
		return role == domain.RoleTech
	}
	return false
}
