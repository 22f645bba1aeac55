package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/periodical/internal/models"
)

func TestLoadPreferencesFallsBackToDefaults(t *testing.T) {
	defaults := Preferences{PeriodLength: 5, LutealLength: 13, MaximumCycleLength: 120}
	service := NewSettingsService(newOptionStoreStub(nil), defaults, nil)

	prefs, err := service.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if prefs != defaults {
		t.Fatalf("expected configured defaults %+v, got %+v", defaults, prefs)
	}
}

func TestLoadPreferencesOverlaysStoredOptions(t *testing.T) {
	store := newOptionStoreStub(map[string]string{
		models.OptionPeriodLength:       "6",
		models.OptionLutealLength:       "twelve",
		models.OptionMaximumCycleLength: "30",
	})
	service := NewSettingsService(store, DefaultPreferences(), nil)

	prefs, err := service.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if prefs.PeriodLength != 6 {
		t.Fatalf("expected stored period length 6, got %d", prefs.PeriodLength)
	}
	if prefs.LutealLength != DefaultLutealLength {
		t.Fatalf("expected malformed luteal length to fall back, got %d", prefs.LutealLength)
	}
	if prefs.MaximumCycleLength != MinMaximumCycleLength {
		t.Fatalf("expected maximum cycle length lifted to %d, got %d", MinMaximumCycleLength, prefs.MaximumCycleLength)
	}
}

func TestLoadPreferencesWrapsStoreError(t *testing.T) {
	store := newOptionStoreStub(nil)
	store.loadErr = errors.New("locked")
	service := NewSettingsService(store, DefaultPreferences(), nil)

	if _, err := service.LoadPreferences(); !errors.Is(err, ErrPreferencesLoadFailed) {
		t.Fatalf("expected ErrPreferencesLoadFailed, got %v", err)
	}
}

func TestSavePreferencesValidatesAndInvalidates(t *testing.T) {
	store := newOptionStoreStub(nil)
	invalidator := &invalidatorStub{}
	service := NewSettingsService(store, DefaultPreferences(), invalidator)

	invalid := []Preferences{
		{PeriodLength: 0, LutealLength: 14, MaximumCycleLength: 183},
		{PeriodLength: 15, LutealLength: 14, MaximumCycleLength: 183},
		{PeriodLength: 4, LutealLength: 0, MaximumCycleLength: 183},
		{PeriodLength: 4, LutealLength: 14, MaximumCycleLength: 59},
	}
	for _, prefs := range invalid {
		if err := service.SavePreferences(prefs); !errors.Is(err, ErrInvalidPreferences) {
			t.Fatalf("expected ErrInvalidPreferences for %+v, got %v", prefs, err)
		}
	}
	if len(store.values) != 0 || invalidator.calls != 0 {
		t.Fatalf("expected nothing stored for invalid input, got %v and %d invalidations", store.values, invalidator.calls)
	}

	valid := Preferences{PeriodLength: 5, LutealLength: 12, MaximumCycleLength: 90}
	if err := service.SavePreferences(valid); err != nil {
		t.Fatalf("SavePreferences() unexpected error: %v", err)
	}
	if store.values[models.OptionPeriodLength] != "5" || store.values[models.OptionMaximumCycleLength] != "90" {
		t.Fatalf("unexpected stored options %v", store.values)
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected one invalidation, got %d", invalidator.calls)
	}

	prefs, err := service.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if prefs != valid {
		t.Fatalf("expected %+v after save, got %+v", valid, prefs)
	}
}

func TestSavePreferencesWrapsStoreError(t *testing.T) {
	store := newOptionStoreStub(nil)
	store.saveErr = errors.New("readonly")
	service := NewSettingsService(store, DefaultPreferences(), nil)

	if err := service.SavePreferences(DefaultPreferences()); !errors.Is(err, ErrPreferencesSaveFailed) {
		t.Fatalf("expected ErrPreferencesSaveFailed, got %v", err)
	}
}

func TestNormalizePreferences(t *testing.T) {
	got := NormalizePreferences(Preferences{PeriodLength: -1, LutealLength: 0, MaximumCycleLength: 10})
	want := Preferences{PeriodLength: DefaultPeriodLength, LutealLength: DefaultLutealLength, MaximumCycleLength: MinMaximumCycleLength}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
