package db

import (
	"github.com/terraincognita07/periodical/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PeriodRepository struct {
	database *gorm.DB
}

func NewPeriodRepository(database *gorm.DB) *PeriodRepository {
	return &PeriodRepository{database: database}
}

func (repo *PeriodRepository) ListPeriodRecords() ([]models.PeriodRecord, error) {
	records := make([]models.PeriodRecord, 0)
	if err := repo.database.
		Where("event_type IN ?", []models.EntryKind{models.EntryPeriodStart, models.EntryPeriodConfirmed}).
		Order("event_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *PeriodRepository) ListPeriodStarts() ([]models.PeriodRecord, error) {
	records := make([]models.PeriodRecord, 0)
	if err := repo.database.
		Where("event_type = ?", models.EntryPeriodStart).
		Order("event_date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *PeriodRepository) FindByDate(date models.Date) (models.PeriodRecord, bool, error) {
	record := models.PeriodRecord{}
	result := repo.database.Where("event_date = ?", date).Limit(1).Find(&record)
	if result.Error != nil {
		return models.PeriodRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.PeriodRecord{}, false, nil
	}
	return record, true, nil
}

// ApplyChanges writes upserts and deletes in a single transaction.
func (repo *PeriodRepository) ApplyChanges(upserts []models.PeriodRecord, deletes []models.Date) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for _, date := range deletes {
			if err := tx.Where("event_date = ?", date).Delete(&models.PeriodRecord{}).Error; err != nil {
				return err
			}
		}
		for index := range upserts {
			record := upserts[index]
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_date"}},
				DoUpdates: clause.AssignmentColumns([]string{"event_type", "intensity", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func updatePeriodIntensity(tx *gorm.DB, date models.Date, intensity int) (bool, error) {
	result := tx.Model(&models.PeriodRecord{}).
		Where("event_date = ?", date).
		Update("intensity", intensity)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
