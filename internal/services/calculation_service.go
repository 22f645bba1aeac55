package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/terraincognita07/periodical/internal/metrics"
	"github.com/terraincognita07/periodical/internal/models"
)

var ErrCalculationFailed = errors.New("calculate cycle failed")

const calculationCacheKey = "calculation"

type PeriodRecordReader interface {
	ListPeriodRecords() ([]models.PeriodRecord, error)
}

type DetailRowReader interface {
	ListDetailRows() ([]models.DetailRow, error)
}

// CalculationService runs the cycle calculation over the stored records, overlays the
// day details and keeps the result until the next mutation or the cache TTL.
type CalculationService struct {
	periods     PeriodRecordReader
	details     DetailRowReader
	preferences PreferencesReader
	merge       MergeOptions
	cache       *cache.Cache
	metrics     *metrics.Metrics
	mu          sync.Mutex

	// generation guards cache writes; Invalidate bumps it so a calculation
	// that started before a mutation never lands in the cache.
	cacheMu    sync.Mutex
	generation uint64
}

// NewCalculationService disables caching when ttl is not positive.
func NewCalculationService(
	periods PeriodRecordReader,
	details DetailRowReader,
	preferences PreferencesReader,
	merge MergeOptions,
	ttl time.Duration,
	recorder *metrics.Metrics,
) *CalculationService {
	service := &CalculationService{
		periods:     periods,
		details:     details,
		preferences: preferences,
		merge:       merge,
		metrics:     recorder,
	}
	if ttl > 0 {
		service.cache = cache.New(ttl, 2*ttl)
	}
	return service
}

func (service *CalculationService) Calculation() (Calculation, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.cache != nil {
		if cached, ok := service.cache.Get(calculationCacheKey); ok {
			service.metrics.ObserveCacheHit()
			return cached.(Calculation), nil
		}
	}

	generation := service.currentGeneration()
	started := time.Now()
	calculation, err := service.calculate()
	service.metrics.ObserveCalculation(time.Since(started), len(calculation.Entries), err)
	if err != nil {
		return Calculation{}, err
	}

	service.store(generation, calculation)
	return calculation, nil
}

// Invalidate drops the cached calculation, including one still being computed.
func (service *CalculationService) Invalidate() {
	service.cacheMu.Lock()
	defer service.cacheMu.Unlock()

	service.generation++
	if service.cache != nil {
		service.cache.Flush()
	}
}

func (service *CalculationService) currentGeneration() uint64 {
	service.cacheMu.Lock()
	defer service.cacheMu.Unlock()
	return service.generation
}

func (service *CalculationService) store(generation uint64, calculation Calculation) {
	service.cacheMu.Lock()
	defer service.cacheMu.Unlock()

	if service.cache == nil || generation != service.generation {
		return
	}
	service.cache.Set(calculationCacheKey, calculation, cache.DefaultExpiration)
}

func (service *CalculationService) Preferences() (Preferences, error) {
	if service.preferences == nil {
		return DefaultPreferences(), nil
	}
	prefs, err := service.preferences.LoadPreferences()
	if err != nil {
		return Preferences{}, err
	}
	return NormalizePreferences(prefs), nil
}

func (service *CalculationService) calculate() (Calculation, error) {
	prefs, err := service.Preferences()
	if err != nil {
		return Calculation{}, fmt.Errorf("%w: %v", ErrCalculationFailed, err)
	}

	records, err := service.periods.ListPeriodRecords()
	if err != nil {
		return Calculation{}, fmt.Errorf("%w: %v", ErrCalculationFailed, err)
	}
	calculation := CalculateCycle(records, prefs)

	if service.details == nil {
		return calculation, nil
	}
	rows, err := service.details.ListDetailRows()
	if err != nil {
		return Calculation{}, fmt.Errorf("%w: %v", ErrCalculationFailed, err)
	}
	calculation.Entries = MergeDetails(calculation.Entries, rows, service.merge)
	return calculation, nil
}
