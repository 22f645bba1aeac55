package db

import (
	"github.com/terraincognita07/periodical/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OptionRepository struct {
	database *gorm.DB
}

func NewOptionRepository(database *gorm.DB) *OptionRepository {
	return &OptionRepository{database: database}
}

func (repo *OptionRepository) LoadOptions() (map[string]string, error) {
	options := make([]models.Option, 0)
	if err := repo.database.Find(&options).Error; err != nil {
		return nil, err
	}

	values := make(map[string]string, len(options))
	for _, option := range options {
		values[option.Name] = option.Value
	}
	return values, nil
}

func (repo *OptionRepository) SaveOptions(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	options := make([]models.Option, 0, len(values))
	for name, value := range values {
		options = append(options, models.Option{Name: name, Value: value})
	}
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&options).Error
}
