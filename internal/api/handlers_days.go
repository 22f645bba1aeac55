package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/periodical/internal/services"
)

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	date, err := parseDateParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	entry, err := handler.details.EntryWithDetails(date)
	if err != nil {
		return serviceError(c, "load day", err)
	}
	return c.JSON(entry)
}

func (handler *Handler) UpdateDay(c *fiber.Ctx) error {
	date, err := parseDateParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	input := services.DayDetailsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err = handler.details.SaveDetails(date, input)
	handler.metrics.ObserveMutation("save details", err)
	if err != nil {
		return serviceError(c, "save day", err)
	}

	entry, err := handler.details.EntryWithDetails(date)
	if err != nil {
		return serviceError(c, "load day", err)
	}
	return c.JSON(entry)
}
