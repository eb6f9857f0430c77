package audit

import (
	"errors"
	"fmt"

	"furniture-backend/internal/auth"
	"furniture-backend/internal/database"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultListLimit = 200

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"createdAt"`
	UserID      uint               `json:"userId"`
	UserEmail   string             `json:"userEmail"`
	EntityType  string             `json:"entityType"`
	EntityID    uint               `json:"entityId"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	IsUndone    bool               `json:"isUndone"`
	UndoneBy    *uint              `json:"undoneBy"`
	UndoneAt    *string            `json:"undoneAt"`
}

// Actor returns who is making the current request, for LogOptions.
func Actor(c *fiber.Ctx) (uint, string) {
	id, err := auth.CurrentUser(c)
	if err != nil {
		return 0, ""
	}
	return id.UserID, id.Email
}

// GET /api/audit-logs?entity_type=supplier&entity_id=1&user_id=2&limit=50
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if s := c.Query("entity_id"); s != "" {
			var eid uint
			if _, err := fmt.Sscan(s, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}
		if s := c.Query("user_id"); s != "" {
			var uid uint
			if _, err := fmt.Sscan(s, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}

		limit := c.QueryInt("limit", defaultListLimit)
		if limit <= 0 || limit > 1000 {
			limit = defaultListLimit
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			var undoneAt *string
			if log.UndoneAt != nil {
				formatted := log.UndoneAt.Format("2006-01-02 15:04:05")
				undoneAt = &formatted
			}
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      log.UserID,
				UserEmail:   log.UserEmail,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
				IsUndone:    log.IsUndone,
				UndoneBy:    log.UndoneBy,
				UndoneAt:    undoneAt,
			})
		}

		return c.JSON(resp)
	}
}

// POST /api/audit-logs/:id/undo
func UndoAuditLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var logID uint
		if _, err := fmt.Sscan(c.Params("id"), &logID); err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid log id")
		}

		userID, email := Actor(c)
		if err := UndoLog(database.DB, logID, userID, email); err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Audit log not found")
			case errors.Is(err, ErrAlreadyUndone), errors.Is(err, ErrNotUndoable):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not undo: "+err.Error())
		}

		return c.JSON(fiber.Map{"message": "Change undone"})
	}
}
