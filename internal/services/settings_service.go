package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/periodical/internal/models"
)

var (
	ErrInvalidPreferences    = errors.New("invalid preferences")
	ErrPreferencesLoadFailed = errors.New("load preferences failed")
	ErrPreferencesSaveFailed = errors.New("save preferences failed")
)

var validate = validator.New()

type OptionStore interface {
	LoadOptions() (map[string]string, error)
	SaveOptions(values map[string]string) error
}

// SettingsService resolves preferences from stored options on top of configured defaults.
type SettingsService struct {
	options     OptionStore
	defaults    Preferences
	invalidator Invalidator
}

func NewSettingsService(options OptionStore, defaults Preferences, invalidator Invalidator) *SettingsService {
	return &SettingsService{
		options:     options,
		defaults:    NormalizePreferences(defaults),
		invalidator: invalidator,
	}
}

// SetInvalidator breaks the construction cycle with the calculation service that
// reads preferences from this service.
func (service *SettingsService) SetInvalidator(invalidator Invalidator) {
	service.invalidator = invalidator
}

func (service *SettingsService) Defaults() Preferences {
	return service.defaults
}

// LoadPreferences never fails on a malformed stored value; the default is used instead.
func (service *SettingsService) LoadPreferences() (Preferences, error) {
	values, err := service.options.LoadOptions()
	if err != nil {
		return Preferences{}, fmt.Errorf("%w: %v", ErrPreferencesLoadFailed, err)
	}

	prefs := service.defaults
	prefs.PeriodLength = optionInt(values, models.OptionPeriodLength, prefs.PeriodLength)
	prefs.LutealLength = optionInt(values, models.OptionLutealLength, prefs.LutealLength)
	prefs.MaximumCycleLength = optionInt(values, models.OptionMaximumCycleLength, prefs.MaximumCycleLength)
	return NormalizePreferences(prefs), nil
}

func (service *SettingsService) SavePreferences(prefs Preferences) error {
	if err := ValidatePreferences(prefs); err != nil {
		return err
	}

	values := map[string]string{
		models.OptionPeriodLength:       strconv.Itoa(prefs.PeriodLength),
		models.OptionLutealLength:       strconv.Itoa(prefs.LutealLength),
		models.OptionMaximumCycleLength: strconv.Itoa(prefs.MaximumCycleLength),
	}
	if err := service.options.SaveOptions(values); err != nil {
		return fmt.Errorf("%w: %v", ErrPreferencesSaveFailed, err)
	}
	if service.invalidator != nil {
		service.invalidator.Invalidate()
	}
	return nil
}

func ValidatePreferences(prefs Preferences) error {
	if err := validate.Struct(prefs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	return nil
}

func optionInt(values map[string]string, name string, fallback int) int {
	raw, ok := values[name]
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("settings: ignoring option %s=%q: %v", name, raw, err)
		return fallback
	}
	return parsed
}
