package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/periodical/internal/metrics"
	"github.com/terraincognita07/periodical/internal/models"
	"github.com/terraincognita07/periodical/internal/services"
)

type CalculationProvider interface {
	Calculation() (services.Calculation, error)
	Preferences() (services.Preferences, error)
}

type PeriodMutator interface {
	AddPeriod(date models.Date) (services.PeriodChange, error)
	RemovePeriod(date models.Date) (services.PeriodChange, error)
	ListPeriodStarts() ([]services.PeriodStartSummary, error)
}

type DetailEditor interface {
	EntryWithDetails(date models.Date) (services.DayEntry, error)
	SaveDetails(date models.Date, input services.DayDetailsInput) error
}

type SettingsEditor interface {
	LoadPreferences() (services.Preferences, error)
	SavePreferences(prefs services.Preferences) error
}

type Dependencies struct {
	Calculation CalculationProvider
	Periods     PeriodMutator
	Details     DetailEditor
	Settings    SettingsEditor
	Metrics     *metrics.Metrics
	SecretKey   string
	Location    *time.Location
}

type Handler struct {
	calculation CalculationProvider
	periods     PeriodMutator
	details     DetailEditor
	settings    SettingsEditor
	metrics     *metrics.Metrics
	secretKey   []byte
	location    *time.Location
	now         func() time.Time
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Calculation == nil || deps.Periods == nil || deps.Details == nil || deps.Settings == nil {
		return nil, errors.New("calculation, periods, details and settings services are required")
	}
	if deps.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	location := deps.Location
	if location == nil {
		location = time.Local
	}

	return &Handler{
		calculation: deps.Calculation,
		periods:     deps.Periods,
		details:     deps.Details,
		settings:    deps.Settings,
		metrics:     deps.Metrics,
		secretKey:   []byte(deps.SecretKey),
		location:    location,
		now:         time.Now,
	}, nil
}

func (handler *Handler) today() models.Date {
	return models.DateOf(handler.now().In(handler.location))
}
