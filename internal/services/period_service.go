package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/terraincognita07/periodical/internal/models"
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrPeriodLoadFailed   = errors.New("load period days failed")
	ErrPeriodAddFailed    = errors.New("add period failed")
	ErrPeriodRemoveFailed = errors.New("remove period failed")
)

const (
	firstDayIntensity  = 2
	secondDayIntensity = models.MaxIntensity
)

type PeriodStore interface {
	ListPeriodRecords() ([]models.PeriodRecord, error)
	ListPeriodStarts() ([]models.PeriodRecord, error)
	ApplyChanges(upserts []models.PeriodRecord, deletes []models.Date) error
}

type PreferencesReader interface {
	LoadPreferences() (Preferences, error)
}

// Invalidator is notified after every successful mutation.
type Invalidator interface {
	Invalidate()
}

// PeriodChange lists what one mutation wrote.
type PeriodChange struct {
	Upserts []models.PeriodRecord `json:"upserts"`
	Deletes []models.Date         `json:"deletes"`
}

func (change PeriodChange) Empty() bool {
	return len(change.Upserts) == 0 && len(change.Deletes) == 0
}

type PeriodStartSummary struct {
	Date models.Date `json:"date"`
	// CycleLength is the distance to the following start, 0 for the latest one.
	CycleLength int `json:"cycle_length"`
}

type PeriodService struct {
	periods     PeriodStore
	preferences PreferencesReader
	invalidator Invalidator
	now         func() time.Time
	mu          sync.Mutex
}

func NewPeriodService(periods PeriodStore, preferences PreferencesReader, invalidator Invalidator) *PeriodService {
	return &PeriodService{
		periods:     periods,
		preferences: preferences,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// AddPeriod marks date as a period day. A day right after a period day continues it,
// a day right before a start moves the start, anything else opens a new period that
// is filled up to the configured period length.
func (service *PeriodService) AddPeriod(date models.Date) (PeriodChange, error) {
	if date.IsZero() {
		return PeriodChange{}, ErrInvalidDate
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	days, err := service.loadPeriodDays()
	if err != nil {
		return PeriodChange{}, err
	}

	stamp := service.now().UTC()
	record := func(day models.Date, kind models.EntryKind, intensity int) models.PeriodRecord {
		return models.PeriodRecord{Date: day, Kind: kind, Intensity: intensity, CreatedAt: stamp, UpdatedAt: stamp}
	}

	change := PeriodChange{}
	switch {
	case days[date.AddDays(-1)].Kind.IsPeriod():
		change.Upserts = append(change.Upserts, record(date, models.EntryPeriodConfirmed, models.MinIntensity))
	case days[date.AddDays(1)].Kind == models.EntryPeriodStart:
		oldStart := days[date.AddDays(1)]
		oldStart.ID = 0
		oldStart.Kind = models.EntryPeriodConfirmed
		oldStart.UpdatedAt = stamp
		change.Upserts = append(change.Upserts,
			record(date, models.EntryPeriodStart, firstDayIntensity),
			oldStart,
		)
	default:
		prefs, err := service.loadPreferences()
		if err != nil {
			return PeriodChange{}, err
		}
		change.Upserts = append(change.Upserts, record(date, models.EntryPeriodStart, firstDayIntensity))
		for day := 1; day < prefs.PeriodLength; day++ {
			fillDate := date.AddDays(day)
			if days[fillDate].Kind.IsPeriod() {
				continue
			}
			change.Upserts = append(change.Upserts, record(fillDate, models.EntryPeriodConfirmed, AutoFillIntensity(day)))
		}
	}

	if err := service.periods.ApplyChanges(change.Upserts, nil); err != nil {
		return PeriodChange{}, fmt.Errorf("%w: %v", ErrPeriodAddFailed, err)
	}
	service.invalidate()
	return change, nil
}

// RemovePeriod deletes date and every period day directly following it. Dates that
// are not period days leave the store untouched.
func (service *PeriodService) RemovePeriod(date models.Date) (PeriodChange, error) {
	if date.IsZero() {
		return PeriodChange{}, ErrInvalidDate
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	days, err := service.loadPeriodDays()
	if err != nil {
		return PeriodChange{}, err
	}

	change := PeriodChange{}
	for day := date; days[day].Kind.IsPeriod(); day = day.AddDays(1) {
		change.Deletes = append(change.Deletes, day)
	}
	if change.Empty() {
		return change, nil
	}

	if err := service.periods.ApplyChanges(nil, change.Deletes); err != nil {
		return PeriodChange{}, fmt.Errorf("%w: %v", ErrPeriodRemoveFailed, err)
	}
	service.invalidate()
	return change, nil
}

// ListPeriodStarts returns the period starts newest first with their cycle lengths.
func (service *PeriodService) ListPeriodStarts() ([]PeriodStartSummary, error) {
	starts, err := service.periods.ListPeriodStarts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeriodLoadFailed, err)
	}

	summaries := make([]PeriodStartSummary, 0, len(starts))
	for index, start := range starts {
		summary := PeriodStartSummary{Date: start.Date}
		if index > 0 {
			summary.CycleLength = models.DayDifference(start.Date, starts[index-1].Date)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// AutoFillIntensity is the default intensity for the n-th day (zero-based) of a new period.
func AutoFillIntensity(day int) int {
	switch day {
	case 0:
		return firstDayIntensity
	case 1:
		return secondDayIntensity
	default:
		return max(models.MinIntensity, secondDayIntensity-(day-1))
	}
}

// loadPeriodDays indexes the stored period records by date, first record wins.
func (service *PeriodService) loadPeriodDays() (map[models.Date]models.PeriodRecord, error) {
	records, err := service.periods.ListPeriodRecords()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeriodLoadFailed, err)
	}
	days := make(map[models.Date]models.PeriodRecord, len(records))
	for _, record := range records {
		if _, seen := days[record.Date]; !seen {
			days[record.Date] = record
		}
	}
	return days, nil
}

func (service *PeriodService) loadPreferences() (Preferences, error) {
	if service.preferences == nil {
		return DefaultPreferences(), nil
	}
	prefs, err := service.preferences.LoadPreferences()
	if err != nil {
		return Preferences{}, fmt.Errorf("%w: %v", ErrPeriodAddFailed, err)
	}
	return NormalizePreferences(prefs), nil
}

func (service *PeriodService) invalidate() {
	if service.invalidator != nil {
		service.invalidator.Invalidate()
	}
}
