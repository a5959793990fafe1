package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pathfinder-ai/backend/internal/places"
)

type PlacesHandler struct {
	resolver *places.Resolver
}

func NewPlacesHandler(resolver *places.Resolver) *PlacesHandler {
	return &PlacesHandler{resolver: resolver}
}

// HandlePlaces returns every configured place for the map view.
func (h *PlacesHandler) HandlePlaces(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"places": h.resolver.All(),
	})
}
