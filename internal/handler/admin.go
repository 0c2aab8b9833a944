package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhk7784/pungro-payment-server/internal/service"
)

type AdminHandler struct {
	directory *service.StoreDirectory
}

func NewAdminHandler(directory *service.StoreDirectory) *AdminHandler {
	return &AdminHandler{directory: directory}
}

// RefreshStores reloads the channel→store mapping from the database and
// swaps the directory snapshot wholesale.
func (h *AdminHandler) RefreshStores(c *fiber.Ctx) error {
	if err := h.directory.Refresh(c.Context()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "refresh failed"})
	}
	return c.JSON(fiber.Map{"status": "ok", "version": h.directory.Version()})
}
