package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/periodical/internal/services"
)

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	prefs, err := handler.settings.LoadPreferences()
	if err != nil {
		return serviceError(c, "load settings", err)
	}
	return c.JSON(prefs)
}

// UpdateSettings accepts a partial payload; omitted fields keep their current value.
func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	prefs, err := handler.settings.LoadPreferences()
	if err != nil {
		return serviceError(c, "load settings", err)
	}

	update := prefs
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err = handler.settings.SavePreferences(update)
	handler.metrics.ObserveMutation("save settings", err)
	if err != nil {
		return serviceError(c, "save settings", err)
	}
	return c.JSON(update)
}

var _ SettingsEditor = (*services.SettingsService)(nil)
