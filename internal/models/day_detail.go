package models

type DayNote struct {
	ID      uint   `gorm:"primaryKey"`
	Date    Date   `gorm:"column:event_date;type:text;not null;uniqueIndex:uidx_day_notes_date"`
	Content string `gorm:"not null;default:''"`
}

func (DayNote) TableName() string {
	return "day_notes"
}

type DaySymptom struct {
	ID      uint `gorm:"primaryKey"`
	Date    Date `gorm:"column:event_date;type:text;not null;index:idx_day_symptoms_date"`
	Symptom int  `gorm:"not null"`
}

func (DaySymptom) TableName() string {
	return "day_symptoms"
}

// DetailRow is one row of the notes/symptoms join; Symptom is 0 when the date has no tags.
type DetailRow struct {
	Date    Date   `gorm:"column:event_date"`
	Notes   string `gorm:"column:content"`
	Symptom int    `gorm:"column:symptom"`
}

// Option is a persisted named setting.
type Option struct {
	Name  string `gorm:"primaryKey;size:100"`
	Value string `gorm:"size:500;not null"`
}

func (Option) TableName() string {
	return "options"
}

const (
	OptionPeriodLength       = "period_length"
	OptionLutealLength       = "luteal_length"
	OptionMaximumCycleLength = "maximum_cycle_length"
)
