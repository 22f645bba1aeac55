package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/terraincognita07/periodical/internal/models"
)

const (
	icalProductID = "-//Periodical//Cycle Calendar//EN"
	icalCalName   = "Periodical"

	emptyVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + icalProductID + "\r\nEND:VCALENDAR\r\n"
)

var icalNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://periodical.invalid/calendar"))

// CalendarEvent is one all-day event; End is inclusive.
type CalendarEvent struct {
	Kind    models.EntryKind
	Start   models.Date
	End     models.Date
	Summary string
}

// CalendarEvents groups the projected entries into predicted periods, fertile
// windows and ovulation days.
func CalendarEvents(entries []DayEntry) []CalendarEvent {
	events := make([]CalendarEvent, 0)
	var period, fertile *CalendarEvent

	flush := func(open **CalendarEvent) {
		if *open != nil {
			events = append(events, **open)
			*open = nil
		}
	}
	extend := func(open **CalendarEvent, kind models.EntryKind, date models.Date, summary string) {
		if *open != nil && (*open).End.AddDays(1) == date {
			(*open).End = date
			return
		}
		flush(open)
		*open = &CalendarEvent{Kind: kind, Start: date, End: date, Summary: summary}
	}

	for _, entry := range entries {
		switch entry.Kind {
		case models.EntryPeriodPredicted:
			flush(&fertile)
			extend(&period, models.EntryPeriodPredicted, entry.Date, "Predicted period")
		case models.EntryFertilityFuture, models.EntryOvulationFuture:
			flush(&period)
			extend(&fertile, models.EntryFertilityFuture, entry.Date, "Fertile window")
			if entry.Kind == models.EntryOvulationFuture {
				events = append(events, CalendarEvent{
					Kind:    models.EntryOvulationFuture,
					Start:   entry.Date,
					End:     entry.Date,
					Summary: "Predicted ovulation",
				})
			}
		default:
			flush(&period)
			flush(&fertile)
		}
	}
	flush(&period)
	flush(&fertile)
	return events
}

// ExportCalendar encodes the projected events as an iCalendar feed stamped with now.
func ExportCalendar(entries []DayEntry, now time.Time) ([]byte, error) {
	events := CalendarEvents(entries)
	if len(events) == 0 {
		return []byte(emptyVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText("X-WR-CALNAME", icalCalName)

	stamp := now.UTC()
	for _, event := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, EventUID(event))
		vevent.Props.SetText(ical.PropSummary, event.Summary)
		vevent.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		vevent.Props.SetDate(ical.PropDateTimeStart, event.Start.In(time.UTC))
		vevent.Props.SetDate(ical.PropDateTimeEnd, event.End.AddDays(1).In(time.UTC))
		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// EventUID is stable for the same kind and start date across exports.
func EventUID(event CalendarEvent) string {
	name := fmt.Sprintf("%s/%s", event.Kind, event.Start)
	return uuid.NewSHA1(icalNamespace, []byte(name)).String() + "@periodical"
}
