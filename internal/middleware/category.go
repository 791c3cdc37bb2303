package middleware

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// KnownCategory rejects routes whose :category param is not in the catalog and stores
// the resolved category in Locals("category").
func KnownCategory(registry *curriculum.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("category")
		cat := registry.Get(id)
		if cat == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unknown category: " + id,
			})
		}
		c.Locals("category", cat)
		return c.Next()
	}
}

// TierCategory validates an optional ?category query against one tier.
func TierCategory(registry *curriculum.Registry, tier string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Query("category")
		if id == "" {
			return c.Next()
		}
		cat := registry.Get(id)
		if cat == nil || cat.Tier != tier {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Invalid category for " + tier + ": " + id,
			})
		}
		c.Locals("category", cat)
		return c.Next()
	}
}
