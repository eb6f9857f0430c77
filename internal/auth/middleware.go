package auth

import (
	"strings"

	"furniture-backend/internal/config"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey     = "user_id"
	CtxUserEmailKey  = "user_email"
	CtxUserRoleKey   = "user_role"
	CtxDepartmentKey = "department"
)

// Identity is the authenticated caller as carried by the token.
type Identity struct {
	UserID     uint
	Email      string
	Role       models.UserRole
	Department *models.Department
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// InDepartment reports whether the caller may act for dept: admins always,
// department users only for their own department.
func (i Identity) InDepartment(dept models.Department) bool {
	if i.IsAdmin() {
		return true
	}
	return i.Role == models.RoleDepartment && i.Department != nil && *i.Department == dept
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		SetIdentity(c, Identity{
			UserID:     claims.UserID,
			Email:      claims.Email,
			Role:       claims.Role,
			Department: claims.Department,
		})
		return c.Next()
	}
}

// SetIdentity stores id in the request locals the way JWTMiddleware does.
func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(CtxUserIDKey, id.UserID)
	c.Locals(CtxUserEmailKey, id.Email)
	c.Locals(CtxUserRoleKey, id.Role)
	c.Locals(CtxDepartmentKey, id.Department)
}

// CurrentUser reads the identity placed by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (Identity, error) {
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return Identity{}, fiber.NewError(fiber.StatusForbidden, "Role information missing")
	}
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return Identity{}, fiber.NewError(fiber.StatusForbidden, "User information missing")
	}
	email, _ := c.Locals(CtxUserEmailKey).(string)
	dept, _ := c.Locals(CtxDepartmentKey).(*models.Department)

	return Identity{UserID: userID, Email: email, Role: role, Department: dept}, nil
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role information missing")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

// RequireDepartment lets admins through, and department users whose
// department is one of depts.
func RequireDepartment(depts ...models.Department) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentUser(c)
		if err != nil {
			return err
		}
		for _, d := range depts {
			if id.InDepartment(d) {
				return c.Next()
			}
		}
		if id.IsAdmin() {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusForbidden, "Not allowed for this department")
	}
}
