package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(handler.metrics.Handler()))

	api := app.Group("/api", handler.AuthRequired)

	api.Get("/calendar", handler.GetCalendar)
	api.Get("/calendar.ics", handler.GetCalendarICS)
	api.Get("/stats", handler.GetStats)

	periods := api.Group("/periods")
	periods.Get("", handler.ListPeriods)
	periods.Post("/:date", handler.AddPeriod)
	periods.Delete("/:date", handler.RemovePeriod)

	days := api.Group("/days")
	days.Get("/:date", handler.GetDay)
	days.Put("/:date", handler.UpdateDay)

	settings := api.Group("/settings")
	settings.Get("", handler.GetSettings)
	settings.Put("", handler.UpdateSettings)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
