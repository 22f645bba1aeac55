package db

import "gorm.io/gorm"

type Repositories struct {
	Periods *PeriodRepository
	Details *DetailRepository
	Options *OptionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Periods: NewPeriodRepository(database),
		Details: NewDetailRepository(database),
		Options: NewOptionRepository(database),
	}
}
