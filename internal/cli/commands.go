package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/terraincognita07/periodical/internal/db"
	"github.com/terraincognita07/periodical/internal/models"
	"github.com/terraincognita07/periodical/internal/security"
	"github.com/terraincognita07/periodical/internal/services"
)

type workspace struct {
	close       func() error
	periods     *services.PeriodService
	calculation *services.CalculationService
}

func openWorkspace(dbPath string, defaults services.Preferences) (*workspace, error) {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	repositories := db.NewRepositories(database)
	settings := services.NewSettingsService(repositories.Options, defaults, nil)
	calculation := services.NewCalculationService(repositories.Periods, repositories.Details, settings, services.MergeOptions{}, 0, nil)
	return &workspace{
		close:       func() error { return db.Close(database) },
		periods:     services.NewPeriodService(repositories.Periods, settings, calculation),
		calculation: calculation,
	}, nil
}

// RunPredictCommand prints the calculated entries within [from, to] and the cycle
// statistics. Zero dates leave that side of the range open.
func RunPredictCommand(dbPath string, defaults services.Preferences, from models.Date, to models.Date, out io.Writer) error {
	ws, err := openWorkspace(dbPath, defaults)
	if err != nil {
		return err
	}
	defer ws.close()

	calculation, err := ws.calculation.Calculation()
	if err != nil {
		return err
	}

	entries := calculation.Entries
	if !from.IsZero() || !to.IsZero() {
		if from.IsZero() && len(entries) > 0 {
			from = entries[0].Date
		}
		if to.IsZero() && len(entries) > 0 {
			to = entries[len(entries)-1].Date
		}
		if to.Before(from) {
			return errors.New("range end is before its start")
		}
		entries = calculation.Between(from, to)
	}

	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "DATE\tKIND\tDAY\tINTENSITY")
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%d\t%d\n", entry.Date, entry.Kind, entry.DayOfCycle, entry.Intensity)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	stats := calculation.Stats
	fmt.Fprintf(out, "\naverage cycle: %d days (shortest %d, longest %d)\n", stats.Average, stats.Shortest, stats.Longest)
	return nil
}

// RunPeriodCommand adds or removes the period at date and prints what changed.
func RunPeriodCommand(dbPath string, defaults services.Preferences, action string, date models.Date, out io.Writer) error {
	ws, err := openWorkspace(dbPath, defaults)
	if err != nil {
		return err
	}
	defer ws.close()

	var change services.PeriodChange
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "add":
		change, err = ws.periods.AddPeriod(date)
	case "remove":
		change, err = ws.periods.RemovePeriod(date)
	default:
		return fmt.Errorf("unknown period action %q", action)
	}
	if err != nil {
		return err
	}

	if change.Empty() {
		fmt.Fprintf(out, "No period days on %s, nothing changed\n", date)
		return nil
	}
	for _, upsert := range change.Upserts {
		fmt.Fprintf(out, "✅ %s %s (intensity %d)\n", upsert.Date, upsert.Kind, upsert.Intensity)
	}
	for _, deleted := range change.Deletes {
		fmt.Fprintf(out, "🗑  %s removed\n", deleted)
	}
	return nil
}

func RunIssueTokenCommand(secret string, subject string, ttl time.Duration, out io.Writer) error {
	if strings.TrimSpace(subject) == "" {
		return errors.New("subject is required")
	}
	token, err := security.IssueToken([]byte(secret), subject, ttl, time.Now())
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

func RunGenerateSecretCommand(out io.Writer) error {
	secret, err := security.GenerateSecret()
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	fmt.Fprintln(out, secret)
	return nil
}
