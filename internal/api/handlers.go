package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fleetworks/asset-sentinel/internal/alerting"
	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/patterns"
	"github.com/fleetworks/asset-sentinel/internal/services"
	"github.com/fleetworks/asset-sentinel/internal/settings"
)

// WSHandler serves websocket subscriptions; nil disables the endpoint.
type WSHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Handlers binds the alert manager and insight service to HTTP routes.
type Handlers struct {
	logger   *slog.Logger
	manager  *alerting.Manager
	insights *services.InsightService
	store    alerting.SettingsStore
	miner    *patterns.Miner
	ws       WSHandler
}

// NewHandlers constructs the route set. A nil miner disables the patterns
// endpoint.
func NewHandlers(logger *slog.Logger, manager *alerting.Manager, insights *services.InsightService, store alerting.SettingsStore, miner *patterns.Miner, ws WSHandler) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{logger: logger, manager: manager, insights: insights, store: store, miner: miner, ws: ws}
}

// Router assembles the full route table.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if h.ws != nil {
		r.HandleFunc("/ws", h.ws.ServeWS)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/alerts", h.activeAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/history", h.alertHistory).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/test", h.testAlert).Methods(http.MethodPost)
	v1.HandleFunc("/alerts/{id}/acknowledge", h.acknowledgeAlert).Methods(http.MethodPost)
	v1.HandleFunc("/alerts/{key}", h.clearAlert).Methods(http.MethodDelete)
	v1.HandleFunc("/thresholds", h.getThresholds).Methods(http.MethodGet)
	v1.HandleFunc("/thresholds", h.updateThresholds).Methods(http.MethodPut)
	v1.HandleFunc("/settings/notifications", h.getSettings).Methods(http.MethodGet)
	v1.HandleFunc("/settings/notifications", h.updateSettings).Methods(http.MethodPut)
	v1.HandleFunc("/assets/{id}/insight", h.assetInsight).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}/trends", h.assetTrends).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}/anomalies", h.assetAnomalies).Methods(http.MethodGet)
	v1.HandleFunc("/reports/predictive", h.predictiveReport).Methods(http.MethodGet)
	v1.HandleFunc("/reports/forecasts", h.forecasts).Methods(http.MethodGet)
	v1.HandleFunc("/reports/recommendations", h.recommendations).Methods(http.MethodGet)
	if h.miner != nil {
		v1.HandleFunc("/reports/patterns", h.alertPatterns).Methods(http.MethodGet)
	}
	return r
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) activeAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"alerts": h.manager.ActiveAlerts()})
}

func (h *Handlers) alertHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	filter := alerting.HistoryFilter{
		AssetID:  r.URL.Query().Get("asset_id"),
		Severity: models.AlertSeverity(r.URL.Query().Get("severity")),
		Type:     r.URL.Query().Get("type"),
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": h.manager.AlertHistory(limit, filter)})
}

func (h *Handlers) testAlert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type      string `json:"type"`
		Severity  string `json:"severity"`
		AssetID   string `json:"asset_id"`
		AssetName string `json:"asset_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Type == "" || body.AssetID == "" {
		writeError(w, http.StatusBadRequest, "type and asset_id are required")
		return
	}
	triggered := h.manager.TestAlert(r.Context(), body.Type, models.AlertSeverity(body.Severity), body.AssetID, body.AssetName)
	writeJSON(w, http.StatusOK, map[string]any{"triggered": triggered})
}

func (h *Handlers) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		AcknowledgedBy string `json:"acknowledged_by"`
		Notes          string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.manager.AcknowledgeAlert(id, body.AcknowledgedBy, body.Notes); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (h *Handlers) clearAlert(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !h.manager.ClearAlert(key) {
		writeError(w, http.StatusNotFound, "no active alert for key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handlers) getThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Thresholds())
}

func (h *Handlers) updateThresholds(w http.ResponseWriter, r *http.Request) {
	var raw map[string]map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result := h.manager.UpdateThresholds(r.Context(), raw)
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetNotificationSettings(r.Context())
	if err != nil {
		h.logger.Warn("settings read failed, serving defaults", slog.Any("error", err))
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var s settings.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(s.AlertThresholds) > 0 {
		if _, result := alerting.ValidateUpdate(s.AlertThresholds); !result.Valid {
			writeJSON(w, http.StatusUnprocessableEntity, result)
			return
		}
	}
	if err := h.store.UpdateNotificationSettings(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "could not persist settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) assetInsight(w http.ResponseWriter, r *http.Request) {
	insight, err := h.insights.AssetInsight(r.Context(), mux.Vars(r)["id"], queryInt(r, "window_days", 0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (h *Handlers) assetTrends(w http.ResponseWriter, r *http.Request) {
	report, err := h.insights.TrendAnalysis(r.Context(), mux.Vars(r)["id"], queryInt(r, "window_days", 0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) assetAnomalies(w http.ResponseWriter, r *http.Request) {
	anomalies, degradation, err := h.insights.AnomalyReport(r.Context(), mux.Vars(r)["id"], queryInt(r, "window_days", 0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"anomalies":   anomalies,
		"degradation": degradation,
	})
}

func (h *Handlers) predictiveReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.insights.PredictiveReport(r.Context(), queryInt(r, "window_days", 0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) forecasts(w http.ResponseWriter, r *http.Request) {
	forecasts, err := h.insights.Forecasts(r.Context(), queryInt(r, "window_days", 0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forecasts": forecasts})
}

func (h *Handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	recommendations, err := h.insights.Recommendations(r.Context(), queryInt(r, "window_days", 0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recommendations})
}

func (h *Handlers) alertPatterns(w http.ResponseWriter, r *http.Request) {
	history := h.manager.AlertHistory(0, alerting.HistoryFilter{})
	mined, err := h.miner.Mine(r.Context(), history)
	if err != nil {
		h.logger.Error("pattern mining failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "pattern mining failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": mined})
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	h.logger.Error("report computation failed", slog.Any("error", err))
	writeError(w, http.StatusBadGateway, "upstream store unavailable")
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
