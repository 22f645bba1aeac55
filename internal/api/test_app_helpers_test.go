package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/periodical/internal/db"
	"github.com/terraincognita07/periodical/internal/metrics"
	"github.com/terraincognita07/periodical/internal/models"
	"github.com/terraincognita07/periodical/internal/security"
	"github.com/terraincognita07/periodical/internal/services"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type testApp struct {
	app          *fiber.App
	repositories *db.Repositories
	handler      *Handler
	token        string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "periodical-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	recorder, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("init metrics: %v", err)
	}

	repositories := db.NewRepositories(database)
	settings := services.NewSettingsService(repositories.Options, services.DefaultPreferences(), nil)
	calculation := services.NewCalculationService(repositories.Periods, repositories.Details, settings, services.MergeOptions{}, time.Minute, recorder)
	periods := services.NewPeriodService(repositories.Periods, settings, calculation)
	details := services.NewDetailService(repositories.Details, calculation, calculation)
	settings.SetInvalidator(calculation)

	handler, err := NewHandler(Dependencies{
		Calculation: calculation,
		Periods:     periods,
		Details:     details,
		Settings:    settings,
		Metrics:     recorder,
		SecretKey:   testSecretKey,
		Location:    time.UTC,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	handler.now = func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	}

	token, err := security.IssueToken([]byte(testSecretKey), "test", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return &testApp{app: app, repositories: repositories, handler: handler, token: token}
}

func (ta *testApp) do(t *testing.T, method string, target string, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if body != "" {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	request.Header.Set(fiber.HeaderAuthorization, "Bearer "+ta.token)

	response, err := ta.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (ta *testApp) seedPeriod(t *testing.T, starts ...string) {
	t.Helper()
	for _, raw := range starts {
		date, err := models.ParseDate(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		record := models.PeriodRecord{Date: date, Kind: models.EntryPeriodStart, Intensity: 2}
		if err := ta.repositories.Periods.ApplyChanges([]models.PeriodRecord{record}, nil); err != nil {
			t.Fatalf("seed period %s: %v", raw, err)
		}
	}
	ta.handler.calculation.(*services.CalculationService).Invalidate()
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]string{}
	decodeJSON(t, body, &payload)
	return payload["error"]
}

func expectStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		payload, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, string(payload))
	}
}
