package services

import (
	"sort"
	"strings"

	"github.com/terraincognita07/periodical/internal/models"
)

type MergeOptions struct {
	// PruneEmpty drops Empty entries that end up with no notes and no symptoms.
	PruneEmpty bool
}

// MergeDetails overlays notes and symptom rows onto entries. Dates without an entry get
// an Empty entry with day of cycle 0 at their sorted position. Symptom codes are kept
// once per date in first-seen order.
func MergeDetails(entries []DayEntry, rows []models.DetailRow, options MergeOptions) []DayEntry {
	sortedRows := make([]models.DetailRow, len(rows))
	copy(sortedRows, rows)
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return sortedRows[i].Date.Before(sortedRows[j].Date)
	})

	merged := make([]DayEntry, 0, len(entries)+len(sortedRows))
	next := 0
	for _, row := range sortedRows {
		for next < len(entries) && entries[next].Date.Before(row.Date) {
			merged = append(merged, entries[next])
			next++
		}

		switch {
		case len(merged) > 0 && merged[len(merged)-1].Date == row.Date:
			// another symptom row for the date just merged
		case next < len(entries) && entries[next].Date == row.Date:
			merged = append(merged, cloneDayEntry(entries[next]))
			next++
		default:
			merged = append(merged, DayEntry{Date: row.Date, Kind: models.EntryEmpty})
		}

		target := &merged[len(merged)-1]
		target.Notes = row.Notes
		target.Symptoms = appendSymptom(target.Symptoms, row.Symptom)
	}
	merged = append(merged, entries[next:]...)

	if options.PruneEmpty {
		merged = pruneEmptyEntries(merged)
	}
	return merged
}

func IsEmptyEntry(entry DayEntry) bool {
	return entry.Kind == models.EntryEmpty && strings.TrimSpace(entry.Notes) == "" && len(entry.Symptoms) == 0
}

func pruneEmptyEntries(entries []DayEntry) []DayEntry {
	kept := make([]DayEntry, 0, len(entries))
	for _, entry := range entries {
		if !IsEmptyEntry(entry) {
			kept = append(kept, entry)
		}
	}
	return kept
}

func appendSymptom(symptoms []int, symptom int) []int {
	if symptom <= 0 {
		return symptoms
	}
	for _, existing := range symptoms {
		if existing == symptom {
			return symptoms
		}
	}
	return append(symptoms, symptom)
}

// UniqueSymptoms drops non-positive and repeated codes, keeping first-seen order.
func UniqueSymptoms(symptoms []int) []int {
	unique := make([]int, 0, len(symptoms))
	for _, symptom := range symptoms {
		unique = appendSymptom(unique, symptom)
	}
	return unique
}

func cloneDayEntry(entry DayEntry) DayEntry {
	if entry.Symptoms != nil {
		entry.Symptoms = append([]int(nil), entry.Symptoms...)
	}
	return entry
}
