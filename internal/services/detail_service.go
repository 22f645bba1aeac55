package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/periodical/internal/models"
)

var (
	ErrInvalidDetails    = errors.New("invalid day details")
	ErrDetailsLoadFailed = errors.New("load day details failed")
	ErrDetailsSaveFailed = errors.New("save day details failed")
)

const MaxNotesLength = 2000

type DetailStore interface {
	FindDetails(date models.Date) (string, []int, error)
	SaveDayDetails(date models.Date, content string, symptoms []int, intensity int) (bool, error)
}

type CalculationReader interface {
	Calculation() (Calculation, error)
}

type DayDetailsInput struct {
	// Intensity 0 keeps the stored value. Any other value needs a recorded period day.
	Intensity int    `json:"intensity" validate:"gte=0,lte=4"`
	Notes     string `json:"notes"`
	Symptoms  []int  `json:"symptoms" validate:"dive,gt=0"`
}

type DetailService struct {
	details     DetailStore
	calculation CalculationReader
	invalidator Invalidator
}

func NewDetailService(details DetailStore, calculation CalculationReader, invalidator Invalidator) *DetailService {
	return &DetailService{
		details:     details,
		calculation: calculation,
		invalidator: invalidator,
	}
}

func ValidateDayDetails(input DayDetailsInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDetails, err)
	}
	if utf8.RuneCountInString(input.Notes) > MaxNotesLength {
		return fmt.Errorf("%w: notes longer than %d characters", ErrInvalidDetails, MaxNotesLength)
	}
	return nil
}

// SaveDetails replaces the notes, symptoms and intensity of date in one write. A notes
// row is written even for blank notes so the date still joins its symptoms.
func (service *DetailService) SaveDetails(date models.Date, input DayDetailsInput) error {
	if date.IsZero() {
		return ErrInvalidDate
	}
	if err := ValidateDayDetails(input); err != nil {
		return err
	}

	notes := strings.TrimSpace(input.Notes)
	saved, err := service.details.SaveDayDetails(date, notes, UniqueSymptoms(input.Symptoms), input.Intensity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDetailsSaveFailed, err)
	}
	if !saved {
		return fmt.Errorf("%w: intensity needs a period day on %s", ErrInvalidDetails, date)
	}

	if service.invalidator != nil {
		service.invalidator.Invalidate()
	}
	return nil
}

// EntryWithDetails returns the calculated entry for date, or an Empty one, with the
// stored notes and symptoms attached.
func (service *DetailService) EntryWithDetails(date models.Date) (DayEntry, error) {
	if date.IsZero() {
		return DayEntry{}, ErrInvalidDate
	}

	entry := DayEntry{Date: date, Kind: models.EntryEmpty}
	if service.calculation != nil {
		calculation, err := service.calculation.Calculation()
		if err != nil {
			return DayEntry{}, err
		}
		if found, ok := calculation.EntryFor(date); ok {
			entry = cloneDayEntry(found)
		}
	}

	notes, symptoms, err := service.details.FindDetails(date)
	if err != nil {
		return DayEntry{}, fmt.Errorf("%w: %v", ErrDetailsLoadFailed, err)
	}
	entry.Notes = notes
	entry.Symptoms = UniqueSymptoms(symptoms)
	return entry, nil
}
