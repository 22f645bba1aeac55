package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day or zone. The zero value is invalid.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the wall-clock date of value in its own location.
func DateOf(value time.Time) Date {
	year, month, day := value.Date()
	return Date{Year: year, Month: month, Day: day}
}

func ParseDate(raw string) (Date, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, err
	}
	return DateOf(parsed), nil
}

func (date Date) IsZero() bool {
	return date == Date{}
}

func (date Date) midnightUTC() time.Time {
	return time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of the date in location.
func (date Date) In(location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	return time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, location)
}

func (date Date) AddDays(days int) Date {
	return DateOf(date.midnightUTC().AddDate(0, 0, days))
}

// DayDifference returns the signed number of calendar days from a to b.
func DayDifference(a Date, b Date) int {
	return int(b.midnightUTC().Sub(a.midnightUTC()).Hours() / 24)
}

func (date Date) Compare(other Date) int {
	switch {
	case date.Year != other.Year:
		return compareInts(date.Year, other.Year)
	case date.Month != other.Month:
		return compareInts(int(date.Month), int(other.Month))
	default:
		return compareInts(date.Day, other.Day)
	}
}

func (date Date) Before(other Date) bool {
	return date.Compare(other) < 0
}

func (date Date) After(other Date) bool {
	return date.Compare(other) > 0
}

func (date Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", date.Year, int(date.Month), date.Day)
}

func (date Date) MarshalText() ([]byte, error) {
	return []byte(date.String()), nil
}

func (date *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*date = parsed
	return nil
}

func (date Date) Value() (driver.Value, error) {
	return date.String(), nil
}

func (date *Date) Scan(value any) error {
	switch typed := value.(type) {
	case nil:
		*date = Date{}
		return nil
	case string:
		return date.scanString(typed)
	case []byte:
		return date.scanString(string(typed))
	case time.Time:
		*date = DateOf(typed)
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", value)
	}
}

func (date *Date) scanString(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > len(DateLayout) {
		trimmed = trimmed[:len(DateLayout)]
	}
	parsed, err := ParseDate(trimmed)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", raw, err)
	}
	*date = parsed
	return nil
}

func compareInts(a int, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
