package cutting

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"furniture-backend/internal/auth"
	"furniture-backend/internal/metrics"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// DepartmentForPath maps the :dept route segment onto a cutting department.
func DepartmentForPath(segment string) (models.Department, bool) {
	switch strings.ToLower(segment) {
	case "fabric":
		return models.DeptMaterials, true
	case "wood":
		return models.DeptWood, true
	case "foam":
		return models.DeptFoam, true
	}
	return "", false
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// slipFor resolves the slip addressed by the request, after checking that
// the caller may see the department's slips.
func (h *Handler) slipFor(c *fiber.Ctx) (*Slip, error) {
	dept, ok := DepartmentForPath(c.Params("dept"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Unknown department")
	}

	id, err := auth.CurrentUser(c)
	if err != nil {
		return nil, err
	}
	if !id.InDepartment(dept) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Not allowed to view this department's cutting slips")
	}

	var slip *Slip
	scope := "all"
	if raw := c.Params("orderId"); raw != "" {
		orderID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || orderID == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
		}
		scope = "order"
		slip, err = h.svc.OrderSlip(c.UserContext(), dept, uint(orderID))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fiber.NewError(fiber.StatusNotFound,
					fmt.Sprintf("No %s cutting slip for order %d", strings.ToLower(c.Params("dept")), orderID))
			}
			slog.Error("order cutting slip failed", "department", dept, "order_id", orderID, "err", err)
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not compute cutting slip")
		}
	} else {
		slip, err = h.svc.AggregateSlip(c.UserContext(), dept)
		if err != nil {
			slog.Error("aggregate cutting slip failed", "department", dept, "err", err)
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not compute cutting slip")
		}
	}

	metrics.ObserveSlip(string(dept), scope, len(slip.Pieces))
	return slip, nil
}

// GetSlip serves GET /departments/:dept/cutting-slips[/:orderId].
func (h *Handler) GetSlip() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slip, err := h.slipFor(c)
		if err != nil {
			return err
		}
		return c.JSON(slip)
	}
}

// ExportSlip serves the same slip as an XLSX attachment.
func (h *Handler) ExportSlip() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slip, err := h.slipFor(c)
		if err != nil {
			return err
		}

		buf := &bytes.Buffer{}
		if err := WriteXLSX(slip, buf); err != nil {
			slog.Error("cutting slip export failed", "department", slip.Department, "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build spreadsheet")
		}

		c.Attachment(ExportFileName(slip))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}
