package models

import (
	"fmt"
	"time"
)

type EntryKind int

const (
	EntryEmpty EntryKind = iota
	EntryPeriodStart
	EntryPeriodConfirmed
	EntryPeriodPredicted
	EntryFertilityPredicted
	EntryOvulationPredicted
	EntryFertilityFuture
	EntryOvulationFuture
	EntryInfertilePredicted
	EntryInfertileFuture
)

var entryKindNames = map[EntryKind]string{
	EntryEmpty:              "empty",
	EntryPeriodStart:        "period_start",
	EntryPeriodConfirmed:    "period_confirmed",
	EntryPeriodPredicted:    "period_predicted",
	EntryFertilityPredicted: "fertility_predicted",
	EntryOvulationPredicted: "ovulation_predicted",
	EntryFertilityFuture:    "fertility_future",
	EntryOvulationFuture:    "ovulation_future",
	EntryInfertilePredicted: "infertile_predicted",
	EntryInfertileFuture:    "infertile_future",
}

func (kind EntryKind) String() string {
	if name, ok := entryKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

func (kind EntryKind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

func (kind *EntryKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEntryKind(string(text))
	if err != nil {
		return err
	}
	*kind = parsed
	return nil
}

func ParseEntryKind(name string) (EntryKind, error) {
	for kind, candidate := range entryKindNames {
		if candidate == name {
			return kind, nil
		}
	}
	return EntryEmpty, fmt.Errorf("unknown entry kind %q", name)
}

// IsPeriod reports whether kind is a recorded period day.
func (kind EntryKind) IsPeriod() bool {
	return kind == EntryPeriodStart || kind == EntryPeriodConfirmed
}

const (
	MinIntensity = 1
	MaxIntensity = 4
)

// PeriodRecord is one stored period day.
type PeriodRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Date      Date      `gorm:"column:event_date;type:text;not null;uniqueIndex:uidx_period_days_date"`
	Kind      EntryKind `gorm:"column:event_type;not null"`
	Intensity int       `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PeriodRecord) TableName() string {
	return "period_days"
}
