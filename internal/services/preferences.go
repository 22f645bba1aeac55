package services

const (
	DefaultPeriodLength       = 4
	DefaultLutealLength       = 14
	DefaultMaximumCycleLength = 183
	MinMaximumCycleLength     = 60
)

// Preferences are the tunable inputs of the cycle calculation.
type Preferences struct {
	PeriodLength       int `json:"period_length" mapstructure:"period_length" validate:"gte=1,lte=14"`
	LutealLength       int `json:"luteal_length" mapstructure:"luteal_length" validate:"gte=1"`
	MaximumCycleLength int `json:"maximum_cycle_length" mapstructure:"maximum_cycle_length" validate:"gte=60"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		PeriodLength:       DefaultPeriodLength,
		LutealLength:       DefaultLutealLength,
		MaximumCycleLength: DefaultMaximumCycleLength,
	}
}

// NormalizePreferences replaces unusable lengths with defaults and lifts the
// maximum cycle length to its allowed minimum.
func NormalizePreferences(prefs Preferences) Preferences {
	if prefs.PeriodLength < 1 {
		prefs.PeriodLength = DefaultPeriodLength
	}
	if prefs.LutealLength < 1 {
		prefs.LutealLength = DefaultLutealLength
	}
	if prefs.MaximumCycleLength < MinMaximumCycleLength {
		prefs.MaximumCycleLength = MinMaximumCycleLength
	}
	return prefs
}
