package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/pathfinder-ai/backend/pkg/geo"
)

type RouteHandler struct{}

func NewRouteHandler() *RouteHandler {
	return &RouteHandler{}
}

type coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c coordinate) valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// travelModes are the transport options available on the island, with average
// speeds in km/h.
var travelModes = []struct {
	mode    string
	speedKm float64
}{
	{"walking", 4.5},
	{"tricycle", 25},
	{"jeepney", 30},
}

// HandleRouteOptions estimates travel options between two coordinates using
// straight-line distance. Walking is omitted beyond 5 km.
func (h *RouteHandler) HandleRouteOptions(c *fiber.Ctx) error {
	var req struct {
		From coordinate `json:"from"`
		To   coordinate `json:"to"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !req.From.valid() || !req.To.valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Coordinates out of range",
		})
	}

	distance := geo.Haversine(req.From.Lat, req.From.Lng, req.To.Lat, req.To.Lng)

	options := make([]fiber.Map, 0, len(travelModes))
	for _, m := range travelModes {
		if m.mode == "walking" && distance > 5 {
			continue
		}
		etaMinutes := int(math.Ceil(distance / m.speedKm * 60))
		options = append(options, fiber.Map{
			"mode":        m.mode,
			"eta_minutes": etaMinutes,
		})
	}

	return c.JSON(fiber.Map{
		"distance_km": math.Round(distance*100) / 100,
		"options":     options,
	})
}
