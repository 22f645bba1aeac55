package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/periodical/internal/models"
	"github.com/terraincognita07/periodical/internal/services"
)

type periodMutation func(date models.Date) (services.PeriodChange, error)

func (handler *Handler) ListPeriods(c *fiber.Ctx) error {
	starts, err := handler.periods.ListPeriodStarts()
	if err != nil {
		return serviceError(c, "list periods", err)
	}
	return c.JSON(fiber.Map{"periods": starts})
}

func (handler *Handler) AddPeriod(c *fiber.Ctx) error {
	return handler.mutatePeriod(c, "add period", handler.periods.AddPeriod)
}

func (handler *Handler) RemovePeriod(c *fiber.Ctx) error {
	return handler.mutatePeriod(c, "remove period", handler.periods.RemovePeriod)
}

func (handler *Handler) mutatePeriod(c *fiber.Ctx, operation string, mutate periodMutation) error {
	date, err := parseDateParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	change, err := mutate(date)
	handler.metrics.ObserveMutation(operation, err)
	if err != nil {
		return serviceError(c, operation, err)
	}
	return c.JSON(change)
}
