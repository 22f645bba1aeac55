package services

import (
	"sort"
	"testing"

	"github.com/terraincognita07/periodical/internal/models"
)

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	date, err := models.ParseDate(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return date
}

type periodStoreStub struct {
	records  map[models.Date]models.PeriodRecord
	listErr  error
	applyErr error
	applied  int
}

func newPeriodStoreStub(records ...models.PeriodRecord) *periodStoreStub {
	stub := &periodStoreStub{records: make(map[models.Date]models.PeriodRecord)}
	for _, record := range records {
		stub.records[record.Date] = record
	}
	return stub
}

func (stub *periodStoreStub) ListPeriodRecords() ([]models.PeriodRecord, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	records := make([]models.PeriodRecord, 0, len(stub.records))
	for _, record := range stub.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

func (stub *periodStoreStub) ListPeriodStarts() ([]models.PeriodRecord, error) {
	records, err := stub.ListPeriodRecords()
	if err != nil {
		return nil, err
	}
	starts := make([]models.PeriodRecord, 0)
	for index := len(records) - 1; index >= 0; index-- {
		if records[index].Kind == models.EntryPeriodStart {
			starts = append(starts, records[index])
		}
	}
	return starts, nil
}

func (stub *periodStoreStub) ApplyChanges(upserts []models.PeriodRecord, deletes []models.Date) error {
	if stub.applyErr != nil {
		return stub.applyErr
	}
	for _, date := range deletes {
		delete(stub.records, date)
	}
	for _, record := range upserts {
		stub.records[record.Date] = record
	}
	stub.applied++
	return nil
}

func (stub *periodStoreStub) kindOn(date models.Date) models.EntryKind {
	return stub.records[date].Kind
}

func (stub *periodStoreStub) periodDayCount() int {
	count := 0
	for _, record := range stub.records {
		if record.Kind.IsPeriod() {
			count++
		}
	}
	return count
}

type detailStoreStub struct {
	notes    map[models.Date]string
	symptoms map[models.Date][]int
	periods  *periodStoreStub
	rowsErr  error
	saveErr  error
}

func newDetailStoreStub() *detailStoreStub {
	return &detailStoreStub{
		notes:    make(map[models.Date]string),
		symptoms: make(map[models.Date][]int),
	}
}

func (stub *detailStoreStub) FindDetails(date models.Date) (string, []int, error) {
	return stub.notes[date], append([]int(nil), stub.symptoms[date]...), nil
}

// SaveDayDetails writes nothing when it fails or refuses the intensity.
func (stub *detailStoreStub) SaveDayDetails(date models.Date, content string, symptoms []int, intensity int) (bool, error) {
	if stub.saveErr != nil {
		return false, stub.saveErr
	}
	if intensity > 0 {
		if stub.periods == nil {
			return false, nil
		}
		record, ok := stub.periods.records[date]
		if !ok {
			return false, nil
		}
		record.Intensity = intensity
		stub.periods.records[date] = record
	}
	stub.notes[date] = content
	stub.symptoms[date] = append([]int(nil), symptoms...)
	return true, nil
}

func (stub *detailStoreStub) ListDetailRows() ([]models.DetailRow, error) {
	if stub.rowsErr != nil {
		return nil, stub.rowsErr
	}
	dates := make([]models.Date, 0, len(stub.notes))
	for date := range stub.notes {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	rows := make([]models.DetailRow, 0)
	for _, date := range dates {
		if len(stub.symptoms[date]) == 0 {
			rows = append(rows, models.DetailRow{Date: date, Notes: stub.notes[date]})
			continue
		}
		for _, symptom := range stub.symptoms[date] {
			rows = append(rows, models.DetailRow{Date: date, Notes: stub.notes[date], Symptom: symptom})
		}
	}
	return rows, nil
}

type optionStoreStub struct {
	values  map[string]string
	loadErr error
	saveErr error
}

func newOptionStoreStub(values map[string]string) *optionStoreStub {
	if values == nil {
		values = make(map[string]string)
	}
	return &optionStoreStub{values: values}
}

func (stub *optionStoreStub) LoadOptions() (map[string]string, error) {
	if stub.loadErr != nil {
		return nil, stub.loadErr
	}
	copied := make(map[string]string, len(stub.values))
	for name, value := range stub.values {
		copied[name] = value
	}
	return copied, nil
}

func (stub *optionStoreStub) SaveOptions(values map[string]string) error {
	if stub.saveErr != nil {
		return stub.saveErr
	}
	for name, value := range values {
		stub.values[name] = value
	}
	return nil
}

type preferencesStub struct {
	prefs Preferences
	err   error
}

func (stub preferencesStub) LoadPreferences() (Preferences, error) {
	return stub.prefs, stub.err
}

type invalidatorStub struct {
	calls int
}

func (stub *invalidatorStub) Invalidate() {
	stub.calls++
}
