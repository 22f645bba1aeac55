package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"github.com/terraincognita07/periodical/internal/models"
	"github.com/terraincognita07/periodical/internal/services"
)

const monthLayout = "2006-01"

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps service sentinels to responses; anything unknown is logged and hidden.
func serviceError(c *fiber.Ctx, operation string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDate):
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	case errors.Is(err, services.ErrInvalidDetails), errors.Is(err, services.ErrInvalidPreferences):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("api: %s failed: %v", operation, err)
		return apiError(c, fiber.StatusInternalServerError, operation+" failed")
	}
}

func parseDateParam(raw string) (models.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Date{}, errors.New("date is required")
	}
	return models.ParseDate(strings.TrimSpace(raw))
}

// parseMonthQuery returns the first and last day of the YYYY-MM month.
func parseMonthQuery(raw string, location *time.Location) (models.Date, models.Date, error) {
	parsed, err := time.ParseInLocation(monthLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	month := now.With(parsed)
	return models.DateOf(month.BeginningOfMonth()), models.DateOf(month.EndOfMonth()), nil
}

// calendarRange resolves ?month= or ?from=&to=; without either it covers the
// current month.
func (handler *Handler) calendarRange(c *fiber.Ctx) (models.Date, models.Date, error) {
	if month := c.Query("month"); month != "" {
		return parseMonthQuery(month, handler.location)
	}

	rawFrom, rawTo := c.Query("from"), c.Query("to")
	if rawFrom == "" && rawTo == "" {
		return parseMonthQuery(handler.now().In(handler.location).Format(monthLayout), handler.location)
	}
	if rawFrom == "" || rawTo == "" {
		return models.Date{}, models.Date{}, errors.New("from and to must be given together")
	}

	from, err := models.ParseDate(rawFrom)
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	to, err := models.ParseDate(rawTo)
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	if to.Before(from) {
		return models.Date{}, models.Date{}, errors.New("to must not be before from")
	}
	return from, to, nil
}
