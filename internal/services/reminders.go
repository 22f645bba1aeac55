package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/periodical/internal/models"
)

const (
	reminderInterval    = 6 * time.Hour
	maxRememberedSends  = 500
	telegramAPIEndpoint = "https://api.telegram.org"
)

type MessageSender interface {
	Send(ctx context.Context, message string) error
}

type ReminderOptions struct {
	PeriodDaysAhead int
	Fertility       bool
}

type ReminderService struct {
	calculation CalculationReader
	sender      MessageSender
	options     ReminderOptions
	location    *time.Location
	now         func() time.Time
	mu          sync.Mutex
	sent        map[string]models.Date
}

func NewReminderService(calculation CalculationReader, sender MessageSender, options ReminderOptions, location *time.Location) *ReminderService {
	if location == nil {
		location = time.Local
	}
	return &ReminderService{
		calculation: calculation,
		sender:      sender,
		options:     options,
		location:    location,
		now:         time.Now,
		sent:        make(map[string]models.Date),
	}
}

// Start checks immediately and then on every tick until ctx is done. A nil sender
// disables reminders.
func (service *ReminderService) Start(ctx context.Context) {
	if service.sender == nil {
		return
	}

	ticker := time.NewTicker(reminderInterval)
	go func() {
		defer ticker.Stop()

		service.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				service.Check(ctx)
			}
		}
	}()
}

// Check sends the reminders that are due today and returns how many were sent.
func (service *ReminderService) Check(ctx context.Context) int {
	calculation, err := service.calculation.Calculation()
	if err != nil {
		log.Printf("reminders: load calculation failed: %v", err)
		return 0
	}

	today := models.DateOf(service.now().In(service.location))
	sent := 0

	if start, ok := nextPredictedPeriod(calculation.Entries, today); ok {
		if models.DayDifference(today, start) == service.options.PeriodDaysAhead {
			message := fmt.Sprintf("Periodical reminder: your predicted period starts in %d day(s) on %s.",
				service.options.PeriodDaysAhead,
				start.In(time.UTC).Format("Jan 2"),
			)
			if service.deliver(ctx, "period", today, message) {
				sent++
			}
		}
	}

	if service.options.Fertility && fertileWindowStartsOn(calculation, today) {
		message := fmt.Sprintf("Periodical reminder: your fertile window starts today (%s).",
			today.In(time.UTC).Format("Jan 2"),
		)
		if service.deliver(ctx, "fertility", today, message) {
			sent++
		}
	}
	return sent
}

func (service *ReminderService) deliver(ctx context.Context, kind string, today models.Date, message string) bool {
	key := kind + ":" + today.String()
	if !service.shouldSend(key, today) {
		return false
	}
	if err := service.sender.Send(ctx, message); err != nil {
		log.Printf("reminders: send %s reminder failed: %v", kind, err)
		service.forget(key)
		return false
	}
	return true
}

func (service *ReminderService) shouldSend(key string, today models.Date) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if sentOn, ok := service.sent[key]; ok && sentOn == today {
		return false
	}
	service.sent[key] = today
	if len(service.sent) > maxRememberedSends {
		service.sent = map[string]models.Date{key: today}
	}
	return true
}

func (service *ReminderService) forget(key string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	delete(service.sent, key)
}

// nextPredictedPeriod finds the first predicted period day on or after today that
// opens a run.
func nextPredictedPeriod(entries []DayEntry, today models.Date) (models.Date, bool) {
	for index, entry := range entries {
		if entry.Kind != models.EntryPeriodPredicted || entry.Date.Before(today) {
			continue
		}
		if index > 0 && entries[index-1].Kind == models.EntryPeriodPredicted && entries[index-1].Date == entry.Date.AddDays(-1) {
			continue
		}
		return entry.Date, true
	}
	return models.Date{}, false
}

func fertileWindowStartsOn(calculation Calculation, today models.Date) bool {
	if !isFutureFertile(calculation.KindOn(today)) {
		return false
	}
	return !isFutureFertile(calculation.KindOn(today.AddDays(-1)))
}

func isFutureFertile(kind models.EntryKind) bool {
	return kind == models.EntryFertilityFuture || kind == models.EntryOvulationFuture
}

type TelegramSender struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client
}

// NewTelegramSender returns nil when either credential is empty.
func NewTelegramSender(botToken string, chatID string) *TelegramSender {
	botToken = strings.TrimSpace(botToken)
	chatID = strings.TrimSpace(chatID)
	if botToken == "" || chatID == "" {
		return nil
	}
	return &TelegramSender{
		botToken: botToken,
		chatID:   chatID,
		endpoint: telegramAPIEndpoint,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

func (sender *TelegramSender) Send(ctx context.Context, message string) error {
	values := url.Values{}
	values.Set("chat_id", sender.chatID)
	values.Set("text", message)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", sender.endpoint, sender.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := sender.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
