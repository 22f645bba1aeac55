package services

import (
	"sort"

	"github.com/terraincognita07/periodical/internal/models"
)

const (
	fallbackCycleLength = 28
	// Only the most recent cycles move the shortest/longest bounds.
	recentCycleWindow = 13
	projectedCycles   = 3
)

type DayEntry struct {
	Date       models.Date      `json:"date"`
	Kind       models.EntryKind `json:"kind"`
	DayOfCycle int              `json:"day_of_cycle"`
	Intensity  int              `json:"intensity"`
	Notes      string           `json:"notes"`
	Symptoms   []int            `json:"symptoms"`
}

type CycleStats struct {
	Average  int `json:"average"`
	Shortest int `json:"shortest"`
	Longest  int `json:"longest"`
}

func DefaultCycleStats() CycleStats {
	return CycleStats{Average: 0, Shortest: fallbackCycleLength, Longest: fallbackCycleLength}
}

// Calculation is the derived calendar: recorded, backfilled and projected days in date order.
type Calculation struct {
	Entries []DayEntry `json:"entries"`
	Stats   CycleStats `json:"stats"`
}

type cycleState struct {
	prefs        Preferences
	stats        CycleStats
	countLimit   int
	cycleCount   int
	averageSum   int
	ovulationDay int
}

func (state *cycleState) fertile(day int) bool {
	return day >= state.stats.Shortest-state.prefs.LutealLength-4 &&
		day <= state.stats.Longest-state.prefs.LutealLength+3
}

// countCycle folds one usable cycle length into the statistics.
func (state *cycleState) countCycle(length int) {
	state.cycleCount++
	switch {
	case state.cycleCount == state.countLimit:
		state.stats.Shortest = length
		state.stats.Longest = length
	case state.cycleCount > state.countLimit:
		state.stats.Shortest = min(state.stats.Shortest, length)
		state.stats.Longest = max(state.stats.Longest, length)
	}
	state.averageSum += length
	state.ovulationDay = length - state.prefs.LutealLength
}

// CalculateCycle derives the day entries and cycle statistics from period records.
// Records of other kinds are ignored; records sharing a date keep the first one.
func CalculateCycle(records []models.PeriodRecord, prefs Preferences) Calculation {
	prefs = NormalizePreferences(prefs)
	sorted := sortedPeriodRecords(records)

	state := &cycleState{
		prefs:      prefs,
		stats:      DefaultCycleStats(),
		countLimit: max(1, countPeriodStarts(sorted)-recentCycleWindow),
	}

	entries := make([]DayEntry, 0, len(sorted))
	var previousStart models.Date
	hasStart := false

	for _, record := range sorted {
		switch record.Kind {
		case models.EntryPeriodStart:
			if hasStart {
				length := models.DayDifference(previousStart, record.Date)
				if length <= prefs.MaximumCycleLength {
					state.countCycle(length)
					entries = appendBackfill(entries, state, previousStart, record.Date)
				}
			}
			entries = append(entries, DayEntry{
				Date:       record.Date,
				Kind:       models.EntryPeriodStart,
				DayOfCycle: 1,
				Intensity:  record.Intensity,
			})
			previousStart = record.Date
			hasStart = true
		case models.EntryPeriodConfirmed:
			dayOfCycle := 1
			if len(entries) > 0 {
				dayOfCycle = entries[len(entries)-1].DayOfCycle + 1
			}
			entries = append(entries, DayEntry{
				Date:       record.Date,
				Kind:       models.EntryPeriodConfirmed,
				DayOfCycle: dayOfCycle,
				Intensity:  record.Intensity,
			})
		}
	}

	if state.cycleCount > 0 {
		state.stats.Average = state.averageSum / state.cycleCount
		entries = appendProjection(entries, state)
	}

	return Calculation{Entries: entries, Stats: state.stats}
}

// appendBackfill fills the days after the last emitted entry up to nextStart (exclusive).
// Classification uses the zero-based offset from the cycle start.
func appendBackfill(entries []DayEntry, state *cycleState, cycleStart models.Date, nextStart models.Date) []DayEntry {
	if len(entries) == 0 {
		return entries
	}
	for date := entries[len(entries)-1].Date.AddDays(1); date.Before(nextStart); date = date.AddDays(1) {
		offset := models.DayDifference(cycleStart, date)
		kind := models.EntryInfertilePredicted
		switch {
		case offset == state.ovulationDay:
			kind = models.EntryOvulationPredicted
		case state.fertile(offset):
			kind = models.EntryFertilityPredicted
		}
		entries = append(entries, DayEntry{
			Date:       date,
			Kind:       kind,
			DayOfCycle: offset + 1,
			Intensity:  1,
		})
	}
	return entries
}

// appendProjection adds three cycles of average length after the last entry. The
// first one continues the current cycle; classification uses the day of cycle.
func appendProjection(entries []DayEntry, state *cycleState) []DayEntry {
	if len(entries) == 0 {
		return entries
	}
	last := entries[len(entries)-1]
	date := last.Date
	dayOfCycle := last.DayOfCycle + 1

	for cycle := 0; cycle < projectedCycles; cycle++ {
		for ; dayOfCycle <= state.stats.Average; dayOfCycle++ {
			date = date.AddDays(1)
			kind := models.EntryInfertileFuture
			switch {
			case dayOfCycle <= state.prefs.PeriodLength:
				kind = models.EntryPeriodPredicted
			case dayOfCycle == state.ovulationDay:
				kind = models.EntryOvulationFuture
			case state.fertile(dayOfCycle):
				kind = models.EntryFertilityFuture
			}
			entries = append(entries, DayEntry{
				Date:       date,
				Kind:       kind,
				DayOfCycle: dayOfCycle,
				Intensity:  1,
			})
		}
		dayOfCycle = 1
	}
	return entries
}

func sortedPeriodRecords(records []models.PeriodRecord) []models.PeriodRecord {
	sorted := make([]models.PeriodRecord, 0, len(records))
	for _, record := range records {
		if record.Kind.IsPeriod() && !record.Date.IsZero() {
			sorted = append(sorted, record)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	unique := sorted[:0]
	for _, record := range sorted {
		if len(unique) > 0 && unique[len(unique)-1].Date == record.Date {
			continue
		}
		unique = append(unique, record)
	}
	return unique
}

func countPeriodStarts(records []models.PeriodRecord) int {
	count := 0
	for _, record := range records {
		if record.Kind == models.EntryPeriodStart {
			count++
		}
	}
	return count
}

// EntryFor returns the entry for date by linear scan.
func (calculation Calculation) EntryFor(date models.Date) (DayEntry, bool) {
	for _, entry := range calculation.Entries {
		if entry.Date == date {
			return entry, true
		}
	}
	return DayEntry{}, false
}

func (calculation Calculation) EntryAt(year int, month int, day int) (DayEntry, bool) {
	for _, entry := range calculation.Entries {
		if entry.Date.Year == year && int(entry.Date.Month) == month && entry.Date.Day == day {
			return entry, true
		}
	}
	return DayEntry{}, false
}

// KindOn returns EntryEmpty for dates without an entry.
func (calculation Calculation) KindOn(date models.Date) models.EntryKind {
	if entry, ok := calculation.EntryFor(date); ok {
		return entry.Kind
	}
	return models.EntryEmpty
}

// Between returns the entries within [from, to].
func (calculation Calculation) Between(from models.Date, to models.Date) []DayEntry {
	start := sort.Search(len(calculation.Entries), func(i int) bool {
		return !calculation.Entries[i].Date.Before(from)
	})
	selected := make([]DayEntry, 0)
	for _, entry := range calculation.Entries[start:] {
		if entry.Date.After(to) {
			break
		}
		selected = append(selected, entry)
	}
	return selected
}
