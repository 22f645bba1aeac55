package db

import (
	"errors"

	"github.com/terraincognita07/periodical/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNoPeriodRecord = errors.New("no period record")

type DetailRepository struct {
	database *gorm.DB
}

func NewDetailRepository(database *gorm.DB) *DetailRepository {
	return &DetailRepository{database: database}
}

// ListDetailRows returns notes joined with their symptoms, one row per symptom, ordered by date.
func (repo *DetailRepository) ListDetailRows() ([]models.DetailRow, error) {
	rows := make([]models.DetailRow, 0)
	if err := repo.database.Raw(`
SELECT day_notes.event_date AS event_date,
       day_notes.content AS content,
       COALESCE(day_symptoms.symptom, 0) AS symptom
FROM day_notes
LEFT OUTER JOIN day_symptoms ON day_notes.event_date = day_symptoms.event_date
ORDER BY day_notes.event_date ASC, day_symptoms.id ASC`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *DetailRepository) FindDetails(date models.Date) (string, []int, error) {
	notes := make([]models.DayNote, 0, 1)
	if err := repo.database.Where("event_date = ?", date).Limit(1).Find(&notes).Error; err != nil {
		return "", nil, err
	}

	symptoms := make([]models.DaySymptom, 0)
	if err := repo.database.Where("event_date = ?", date).Order("id ASC").Find(&symptoms).Error; err != nil {
		return "", nil, err
	}

	content := ""
	if len(notes) > 0 {
		content = notes[0].Content
	}
	codes := make([]int, 0, len(symptoms))
	for _, symptom := range symptoms {
		codes = append(codes, symptom.Symptom)
	}
	return content, codes, nil
}

// SaveDayDetails swaps the notes row and all symptom rows of date and applies a
// positive intensity, all in one transaction.
// It reports false and writes nothing when intensity targets a date without a period record.
func (repo *DetailRepository) SaveDayDetails(date models.Date, content string, symptoms []int, intensity int) (bool, error) {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if intensity > 0 {
			updated, err := updatePeriodIntensity(tx, date, intensity)
			if err != nil {
				return err
			}
			if !updated {
				return errNoPeriodRecord
			}
		}
		return replaceDetails(tx, date, content, symptoms)
	})
	if errors.Is(err, errNoPeriodRecord) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func replaceDetails(tx *gorm.DB, date models.Date, content string, symptoms []int) error {
	if err := tx.Where("event_date = ?", date).Delete(&models.DaySymptom{}).Error; err != nil {
		return err
	}

	note := models.DayNote{Date: date, Content: content}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"content"}),
	}).Create(&note).Error; err != nil {
		return err
	}

	if len(symptoms) == 0 {
		return nil
	}
	rows := make([]models.DaySymptom, 0, len(symptoms))
	for _, symptom := range symptoms {
		rows = append(rows, models.DaySymptom{Date: date, Symptom: symptom})
	}
	return tx.Create(&rows).Error
}
