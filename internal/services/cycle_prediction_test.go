package services

import (
	"reflect"
	"testing"

	"github.com/terraincognita07/periodical/internal/models"
)

func startRecord(t *testing.T, raw string) models.PeriodRecord {
	t.Helper()
	return models.PeriodRecord{Date: mustDate(t, raw), Kind: models.EntryPeriodStart, Intensity: 2}
}

func confirmedRecord(t *testing.T, raw string) models.PeriodRecord {
	t.Helper()
	return models.PeriodRecord{Date: mustDate(t, raw), Kind: models.EntryPeriodConfirmed, Intensity: 3}
}

func assertStrictlyAscending(t *testing.T, entries []DayEntry) {
	t.Helper()
	for index := 1; index < len(entries); index++ {
		if !entries[index-1].Date.Before(entries[index].Date) {
			t.Fatalf("entries not strictly ascending at %d: %s then %s", index, entries[index-1].Date, entries[index].Date)
		}
	}
}

func TestCalculateCycleWithoutRecords(t *testing.T) {
	calculation := CalculateCycle(nil, DefaultPreferences())

	if len(calculation.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(calculation.Entries))
	}
	if calculation.Stats != (CycleStats{Average: 0, Shortest: 28, Longest: 28}) {
		t.Fatalf("expected fallback stats, got %+v", calculation.Stats)
	}
}

func TestCalculateCycleWithSingleStart(t *testing.T) {
	calculation := CalculateCycle([]models.PeriodRecord{startRecord(t, "2026-01-01")}, DefaultPreferences())

	if len(calculation.Entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(calculation.Entries))
	}
	entry := calculation.Entries[0]
	if entry.Kind != models.EntryPeriodStart || entry.DayOfCycle != 1 || entry.Intensity != 2 {
		t.Fatalf("unexpected single entry %+v", entry)
	}
	if calculation.Stats != DefaultCycleStats() {
		t.Fatalf("expected fallback stats, got %+v", calculation.Stats)
	}
}

func TestCalculateCycleTwoStartsTwentyEightDaysApart(t *testing.T) {
	records := []models.PeriodRecord{startRecord(t, "2026-01-01"), startRecord(t, "2026-01-29")}
	calculation := CalculateCycle(records, Preferences{PeriodLength: 4, LutealLength: 14, MaximumCycleLength: 183})

	if calculation.Stats != (CycleStats{Average: 28, Shortest: 28, Longest: 28}) {
		t.Fatalf("expected stats 28/28/28, got %+v", calculation.Stats)
	}
	if len(calculation.Entries) != 112 {
		t.Fatalf("expected 112 entries, got %d", len(calculation.Entries))
	}
	assertStrictlyAscending(t, calculation.Entries)

	ovulation, ok := calculation.EntryFor(mustDate(t, "2026-01-15"))
	if !ok || ovulation.Kind != models.EntryOvulationPredicted || ovulation.DayOfCycle != 15 {
		t.Fatalf("expected ovulation at offset 14, got %+v", ovulation)
	}
	for _, entry := range calculation.Between(mustDate(t, "2026-01-02"), mustDate(t, "2026-01-28")) {
		if entry.Kind == models.EntryOvulationPredicted && entry.Date != ovulation.Date {
			t.Fatalf("unexpected second ovulation day %s", entry.Date)
		}
	}

	if kind := calculation.KindOn(mustDate(t, "2026-01-11")); kind != models.EntryFertilityPredicted {
		t.Fatalf("expected offset 10 to be fertile, got %s", kind)
	}
	if kind := calculation.KindOn(mustDate(t, "2026-01-18")); kind != models.EntryFertilityPredicted {
		t.Fatalf("expected offset 17 to be fertile, got %s", kind)
	}
	if kind := calculation.KindOn(mustDate(t, "2026-01-10")); kind != models.EntryInfertilePredicted {
		t.Fatalf("expected offset 9 to be infertile, got %s", kind)
	}
	if kind := calculation.KindOn(mustDate(t, "2026-01-19")); kind != models.EntryInfertilePredicted {
		t.Fatalf("expected offset 18 to be infertile, got %s", kind)
	}
}

func TestCalculateCycleProjectsThreeCycles(t *testing.T) {
	records := []models.PeriodRecord{startRecord(t, "2026-01-01"), startRecord(t, "2026-01-29")}
	calculation := CalculateCycle(records, DefaultPreferences())

	last := calculation.Entries[len(calculation.Entries)-1]
	if last.Date.String() != "2026-04-22" || last.DayOfCycle != 28 {
		t.Fatalf("expected projection to end on 2026-04-22 day 28, got %s day %d", last.Date, last.DayOfCycle)
	}

	// cycles two and three restart at day 1 with predicted period days
	for _, raw := range []string{"2026-02-26", "2026-03-01", "2026-03-26", "2026-03-29"} {
		if kind := calculation.KindOn(mustDate(t, raw)); kind != models.EntryPeriodPredicted {
			t.Fatalf("expected %s to be a predicted period day, got %s", raw, kind)
		}
	}
	if kind := calculation.KindOn(mustDate(t, "2026-03-02")); kind != models.EntryInfertileFuture {
		t.Fatalf("expected day 5 of a projected cycle to be infertile, got %s", kind)
	}

	// projected days classify by 1-based day of cycle
	ovulation, _ := calculation.EntryFor(mustDate(t, "2026-03-11"))
	if ovulation.Kind != models.EntryOvulationFuture || ovulation.DayOfCycle != 14 {
		t.Fatalf("expected future ovulation on day 14, got %+v", ovulation)
	}
	if kind := calculation.KindOn(mustDate(t, "2026-03-07")); kind != models.EntryFertilityFuture {
		t.Fatalf("expected day 10 to be a future fertile day, got %s", kind)
	}
	if kind := calculation.KindOn(mustDate(t, "2026-03-15")); kind != models.EntryInfertileFuture {
		t.Fatalf("expected day 18 to be outside the window, got %s", kind)
	}
}

func TestCalculateCycleSkipsOverlongGap(t *testing.T) {
	records := []models.PeriodRecord{startRecord(t, "2024-01-01"), startRecord(t, "2025-02-04")}
	calculation := CalculateCycle(records, DefaultPreferences())

	if len(calculation.Entries) != 2 {
		t.Fatalf("expected only the two starts, got %d entries", len(calculation.Entries))
	}
	if calculation.Stats != DefaultCycleStats() {
		t.Fatalf("expected stats untouched by the gap, got %+v", calculation.Stats)
	}
}

func TestCalculateCycleOverlongGapDoesNotCountCycle(t *testing.T) {
	records := []models.PeriodRecord{
		startRecord(t, "2024-01-01"),
		startRecord(t, "2025-02-04"),
		startRecord(t, "2025-03-06"),
	}
	calculation := CalculateCycle(records, DefaultPreferences())

	if calculation.Stats != (CycleStats{Average: 30, Shortest: 30, Longest: 30}) {
		t.Fatalf("expected only the 30 day cycle counted, got %+v", calculation.Stats)
	}
	if _, ok := calculation.EntryFor(mustDate(t, "2024-06-01")); ok {
		t.Fatal("expected no entries inside the overlong gap")
	}
}

func TestCalculateCycleIsIdempotent(t *testing.T) {
	records := []models.PeriodRecord{
		startRecord(t, "2025-11-03"),
		confirmedRecord(t, "2025-11-04"),
		startRecord(t, "2025-12-01"),
		confirmedRecord(t, "2025-12-02"),
		confirmedRecord(t, "2025-12-03"),
		startRecord(t, "2026-01-01"),
	}

	first := CalculateCycle(records, DefaultPreferences())
	second := CalculateCycle(records, DefaultPreferences())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical calculations for unchanged input")
	}
}

func TestCalculateCycleConfirmedDaysContinueDayOfCycle(t *testing.T) {
	records := []models.PeriodRecord{
		startRecord(t, "2026-01-01"),
		confirmedRecord(t, "2026-01-02"),
		confirmedRecord(t, "2026-01-03"),
	}
	calculation := CalculateCycle(records, DefaultPreferences())

	for index, want := range []int{1, 2, 3} {
		if calculation.Entries[index].DayOfCycle != want {
			t.Fatalf("expected day of cycle %d at %d, got %d", want, index, calculation.Entries[index].DayOfCycle)
		}
	}
	if calculation.Entries[2].Intensity != 3 {
		t.Fatalf("expected stored intensity kept, got %d", calculation.Entries[2].Intensity)
	}
}

func TestCalculateCycleDanglingConfirmedDay(t *testing.T) {
	records := []models.PeriodRecord{confirmedRecord(t, "2026-01-05"), startRecord(t, "2026-01-10")}
	calculation := CalculateCycle(records, DefaultPreferences())

	if len(calculation.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(calculation.Entries))
	}
	if calculation.Entries[0].Kind != models.EntryPeriodConfirmed || calculation.Entries[0].DayOfCycle != 1 {
		t.Fatalf("expected dangling confirmed day with day of cycle 1, got %+v", calculation.Entries[0])
	}
}

func TestCalculateCycleIgnoresUnsortedInputAndDuplicates(t *testing.T) {
	records := []models.PeriodRecord{
		startRecord(t, "2026-01-29"),
		startRecord(t, "2026-01-01"),
		confirmedRecord(t, "2026-01-01"),
		{Date: mustDate(t, "2026-01-05"), Kind: models.EntryPeriodPredicted},
	}
	calculation := CalculateCycle(records, DefaultPreferences())

	assertStrictlyAscending(t, calculation.Entries)
	if calculation.Entries[0].Kind != models.EntryPeriodStart {
		t.Fatalf("expected first record for a date to win, got %s", calculation.Entries[0].Kind)
	}
	if calculation.Stats.Average != 28 {
		t.Fatalf("expected average 28, got %d", calculation.Stats.Average)
	}
}

func TestCalculateCycleShortestAndLongestUseRecentCycles(t *testing.T) {
	// 16 starts give 15 cycles; only the most recent ones move the bounds
	records := make([]models.PeriodRecord, 0)
	date := mustDate(t, "2024-01-01")
	lengths := []int{20, 40, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 27, 29}
	records = append(records, models.PeriodRecord{Date: date, Kind: models.EntryPeriodStart, Intensity: 2})
	for _, length := range lengths {
		date = date.AddDays(length)
		records = append(records, models.PeriodRecord{Date: date, Kind: models.EntryPeriodStart, Intensity: 2})
	}

	calculation := CalculateCycle(records, DefaultPreferences())

	// countLimit = 16 - 13 = 3: cycles 1 and 2 only feed the average
	if calculation.Stats.Shortest != 27 || calculation.Stats.Longest != 29 {
		t.Fatalf("expected shortest 27 and longest 29, got %+v", calculation.Stats)
	}
	sum := 0
	for _, length := range lengths {
		sum += length
	}
	if calculation.Stats.Average != sum/len(lengths) {
		t.Fatalf("expected average %d, got %d", sum/len(lengths), calculation.Stats.Average)
	}
}

func TestCalculateCycleClampsMaximumCycleLength(t *testing.T) {
	records := []models.PeriodRecord{startRecord(t, "2026-01-01"), startRecord(t, "2026-02-20")}
	calculation := CalculateCycle(records, Preferences{PeriodLength: 4, LutealLength: 14, MaximumCycleLength: 10})

	if calculation.Stats.Average != 50 {
		t.Fatalf("expected the 50 day cycle to count once the maximum is lifted to 60, got %+v", calculation.Stats)
	}
}

func TestCalculationEntryAt(t *testing.T) {
	calculation := CalculateCycle([]models.PeriodRecord{startRecord(t, "2026-01-01"), startRecord(t, "2026-01-29")}, DefaultPreferences())

	entry, ok := calculation.EntryAt(2026, 1, 15)
	if !ok || entry.Kind != models.EntryOvulationPredicted {
		t.Fatalf("expected ovulation entry for 2026-01-15, got %+v ok=%v", entry, ok)
	}
	if _, ok := calculation.EntryAt(2030, 1, 1); ok {
		t.Fatal("expected no entry far in the future")
	}
	if kind := calculation.KindOn(mustDate(t, "2030-01-01")); kind != models.EntryEmpty {
		t.Fatalf("expected empty kind for missing date, got %s", kind)
	}
}

func TestCalculationBetween(t *testing.T) {
	calculation := CalculateCycle([]models.PeriodRecord{startRecord(t, "2026-01-01"), startRecord(t, "2026-01-29")}, DefaultPreferences())

	entries := calculation.Between(mustDate(t, "2026-01-10"), mustDate(t, "2026-01-12"))
	if len(entries) != 3 || entries[0].Date.String() != "2026-01-10" || entries[2].Date.String() != "2026-01-12" {
		t.Fatalf("unexpected range %+v", entries)
	}
	if got := calculation.Between(mustDate(t, "2027-01-01"), mustDate(t, "2027-01-31")); len(got) != 0 {
		t.Fatalf("expected empty range, got %d entries", len(got))
	}
}
