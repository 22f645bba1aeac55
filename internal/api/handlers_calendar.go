package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/periodical/internal/models"
	"github.com/terraincognita07/periodical/internal/services"
)

type calendarResponse struct {
	From    models.Date         `json:"from"`
	To      models.Date         `json:"to"`
	Entries []services.DayEntry `json:"entries"`
	Stats   services.CycleStats `json:"stats"`
}

type statsResponse struct {
	Stats       services.CycleStats  `json:"stats"`
	Preferences services.Preferences `json:"preferences"`
	Today       services.DayEntry    `json:"today"`
	NextPeriod  *models.Date         `json:"next_period,omitempty"`
}

func (handler *Handler) GetCalendar(c *fiber.Ctx) error {
	from, to, err := handler.calendarRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}

	calculation, err := handler.calculation.Calculation()
	if err != nil {
		return serviceError(c, "calendar", err)
	}

	return c.JSON(calendarResponse{
		From:    from,
		To:      to,
		Entries: calculation.Between(from, to),
		Stats:   calculation.Stats,
	})
}

func (handler *Handler) GetCalendarICS(c *fiber.Ctx) error {
	calculation, err := handler.calculation.Calculation()
	if err != nil {
		return serviceError(c, "calendar export", err)
	}

	feed, err := services.ExportCalendar(calculation.Entries, handler.now())
	if err != nil {
		return serviceError(c, "calendar export", err)
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="periodical.ics"`)
	return c.Send(feed)
}

func (handler *Handler) GetStats(c *fiber.Ctx) error {
	calculation, err := handler.calculation.Calculation()
	if err != nil {
		return serviceError(c, "stats", err)
	}
	prefs, err := handler.calculation.Preferences()
	if err != nil {
		return serviceError(c, "stats", err)
	}

	today := handler.today()
	entry, ok := calculation.EntryFor(today)
	if !ok {
		entry = services.DayEntry{Date: today, Kind: models.EntryEmpty}
	}

	response := statsResponse{
		Stats:       calculation.Stats,
		Preferences: prefs,
		Today:       entry,
	}
	for _, candidate := range calculation.Entries {
		if candidate.Date.After(today) && candidate.Kind == models.EntryPeriodPredicted {
			next := candidate.Date
			response.NextPeriod = &next
			break
		}
	}
	return c.JSON(response)
}
