package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fleetworks/asset-sentinel/internal/alerting"
	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/patterns"
	"github.com/fleetworks/asset-sentinel/internal/repo"
	"github.com/fleetworks/asset-sentinel/internal/services"
	"github.com/fleetworks/asset-sentinel/internal/settings"
)

type fakeAssetStore struct {
	assets []models.Asset
	events map[string][]models.Event
}

func (s *fakeAssetStore) GetAllAssets(ctx context.Context) ([]models.Asset, error) {
	return s.assets, nil
}

func (s *fakeAssetStore) GetAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	for _, a := range s.assets {
		if a.ID == id {
			asset := a
			return &asset, nil
		}
	}
	return nil, nil
}

func (s *fakeAssetStore) GetArchivedEvents(ctx context.Context, q repo.EventQuery) ([]models.Event, error) {
	return s.events[q.AssetID], nil
}

func newTestHandlers(t *testing.T) (*Handlers, *alerting.Manager) {
	t.Helper()
	store := settings.NewMemoryStore()
	manager := alerting.NewManager(nil, alerting.DefaultManagerConfig(), nil, nil, nil, store)
	assets := &fakeAssetStore{
		assets: []models.Asset{{ID: "a1", Name: "Press 1", RuntimeSeconds: 3600}},
	}
	insights := services.NewInsightService(nil, assets, 30, nil)
	miner := patterns.NewMiner(nil, nil)
	return NewHandlers(nil, manager, insights, store, miner, nil), manager
}

func doRequest(t *testing.T, h *Handlers, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestActiveAlertsEndpoint(t *testing.T) {
	h, manager := newTestHandlers(t)
	manager.TriggerAlert(context.Background(), models.Alert{
		Key:      models.AlertKey(alerting.MetricAvailability, "a1"),
		Type:     alerting.MetricAvailability,
		Severity: models.AlertWarning,
		AssetID:  "a1",
	})

	rec := doRequest(t, h, http.MethodGet, "/api/v1/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Alerts []models.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Alerts) != 1 || body.Alerts[0].AssetID != "a1" {
		t.Fatalf("unexpected alerts: %+v", body.Alerts)
	}
}

func TestTestAlertEndpoint(t *testing.T) {
	h, manager := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/alerts/test",
		`{"type":"availability","severity":"critical","asset_id":"a1","asset_name":"Press 1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(manager.ActiveAlerts()); got != 1 {
		t.Fatalf("expected one active alert, got %d", got)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/alerts/test", `{"severity":"critical"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", rec.Code)
	}
}

func TestAcknowledgeEndpoint(t *testing.T) {
	h, manager := newTestHandlers(t)
	manager.TestAlert(context.Background(), "downtime", models.AlertWarning, "a1", "Press 1")
	id := manager.ActiveAlerts()[0].ID

	rec := doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+id+"/acknowledge",
		`{"acknowledged_by":"operator","notes":"on it"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !manager.ActiveAlerts()[0].Acknowledged {
		t.Fatalf("alert not acknowledged")
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/alerts/ghost/acknowledge", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestClearAlertEndpoint(t *testing.T) {
	h, manager := newTestHandlers(t)
	manager.TestAlert(context.Background(), "downtime", models.AlertWarning, "a1", "Press 1")
	key := models.AlertKey("downtime", "a1")

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/alerts/"+key, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := len(manager.ActiveAlerts()); got != 0 {
		t.Fatalf("expected alert cleared, %d remain", got)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/alerts/"+key, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a second clear, got %d", rec.Code)
	}
}

func TestThresholdEndpoints(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/thresholds", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cfg alerting.ThresholdConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode thresholds: %v", err)
	}
	if cfg[alerting.MetricAvailability].Warning != 85 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	rec = doRequest(t, h, http.MethodPut, "/api/v1/thresholds",
		`{"availability":{"critical":90,"warning":80,"good":70}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for inverted ordering, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPut, "/api/v1/thresholds",
		`{"availability":{"critical":70,"warning":80,"good":90}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid update, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssetInsightEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/assets/a1/insight", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var insight models.HealthInsight
	if err := json.Unmarshal(rec.Body.Bytes(), &insight); err != nil {
		t.Fatalf("decode insight: %v", err)
	}
	if insight.AssetID != "a1" || insight.HealthScore != 100 {
		t.Fatalf("unexpected insight: %+v", insight)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/assets/ghost/insight", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown asset, got %d", rec.Code)
	}
}

func TestPredictiveReportEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/reports/predictive?window_days=14", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var report models.PredictiveReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.WindowDays != 14 || len(report.Insights) != 1 {
		t.Fatalf("unexpected report: window=%d insights=%d", report.WindowDays, len(report.Insights))
	}
}

func TestAlertPatternsEndpoint(t *testing.T) {
	h, manager := newTestHandlers(t)
	ctx := context.Background()
	manager.TestAlert(ctx, "availability", models.AlertWarning, "a1", "Press 1")
	manager.TestAlert(ctx, "downtime", models.AlertWarning, "a1", "Press 1")

	rec := doRequest(t, h, http.MethodGet, "/api/v1/reports/patterns", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Patterns []models.AlertPattern `json:"patterns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode patterns: %v", err)
	}
	if len(body.Patterns) != 1 || body.Patterns[0].Occurrences != 2 {
		t.Fatalf("unexpected patterns: %+v", body.Patterns)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/settings/notifications", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var loaded settings.NotificationSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if len(loaded.Channels) == 0 {
		t.Fatalf("expected default channels")
	}

	rec = doRequest(t, h, http.MethodPut, "/api/v1/settings/notifications",
		`{"channels":[{"name":"ops","type":"email","enabled":true}],"alert_thresholds":{"availability":{"critical":90,"warning":80,"good":70}}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid embedded thresholds, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPut, "/api/v1/settings/notifications",
		`{"channels":[{"name":"ops","type":"email","enabled":true}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAlertHistoryEndpointFilters(t *testing.T) {
	h, manager := newTestHandlers(t)
	ctx := context.Background()
	manager.TestAlert(ctx, "availability", models.AlertCritical, "a1", "Press 1")
	manager.TestAlert(ctx, "downtime", models.AlertWarning, "a2", "Press 2")

	rec := doRequest(t, h, http.MethodGet, "/api/v1/alerts/history?severity=critical", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Alerts []models.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(body.Alerts) != 1 || body.Alerts[0].AssetID != "a1" {
		t.Fatalf("unexpected history: %+v", body.Alerts)
	}
}
