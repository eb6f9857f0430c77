package users

import (
	"log/slog"
	"strings"

	"furniture-backend/internal/auth"
	"furniture-backend/internal/database"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateUserRequest struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Role       models.UserRole `json:"role"`
	Department string          `json:"department"`
}

type UpdateUserRequest struct {
	Department *string `json:"department"`
}

// parseDepartment treats an empty string as "no department".
func parseDepartment(raw string) (*models.Department, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	d := models.Department(raw)
	if !d.Valid() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Unknown department "+raw)
	}
	return &d, nil
}

// POST /api/users
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = auth.NormalizeEmail(body.Email)
		if body.Email == "" || body.Password == "" || body.Role == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing fields")
		}
		if !body.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be ADMIN or DEPARTMENT")
		}

		dept, err := parseDepartment(body.Department)
		if err != nil {
			return err
		}

		var exists int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&exists)
		if exists > 0 {
			return fiber.NewError(fiber.StatusConflict, "A user with this email already exists")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Email:        body.Email,
			PasswordHash: hash,
			Role:         body.Role,
			Department:   dept,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			slog.Error("create user failed", "email", body.Email, "err", err)
			return fiber.NewError(fiber.StatusBadRequest, "Failed to create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "User created",
			"user":    auth.ViewOf(&user),
		})
	}
}

// GET /api/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("id asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		res := make([]auth.UserView, 0, len(users))
		for i := range users {
			res = append(res, auth.ViewOf(&users[i]))
		}
		return c.JSON(res)
	}
}

// PATCH /api/users/:id
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var dept *models.Department
		if body.Department != nil {
			if dept, err = parseDepartment(*body.Department); err != nil {
				return err
			}
		}

		if err := database.DB.Model(&user).Update("department", dept).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to update user")
		}
		user.Department = dept

		return c.JSON(fiber.Map{
			"message": "Updated",
			"user":    auth.ViewOf(&user),
		})
	}
}
