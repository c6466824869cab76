package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleAdminStats(c *fiber.Ctx) error {
	stats, err := s.store.EndpointStats(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch statistics")
	}
	return c.JSON(fiber.Map{"endpoints": stats})
}

func (s *Server) handleAdminUsers(c *fiber.Ctx) error {
	users, err := s.store.UserUsageStats(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch user statistics")
	}
	return c.JSON(fiber.Map{"users": users})
}
