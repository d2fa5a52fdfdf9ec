package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rmontero/liveauction/internal/admin/application"
	"github.com/rmontero/liveauction/internal/admin/domain"
	"github.com/rmontero/liveauction/internal/shared/logger"
)

var log = logger.GetLogger()

// AdminHandler exposes administrator registration.
type AdminHandler struct {
	adminService application.AdminService
}

func NewAdminHandler(adminService application.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RegisterRoutes mounts the admin endpoints on the fiber app.
func (h *AdminHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/admin/register", h.register)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "username and password are required")
	}

	if err := h.adminService.Register(c.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, domain.ErrAdminExists) {
			return fiber.NewError(fiber.StatusConflict, domain.ErrAdminExists.Error())
		}
		log.Error("failed to register admin", zap.String("username", req.Username), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to register admin")
	}

	return c.JSON(fiber.Map{"detail": "Admin registered successfully"})
}
