package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/cache"
	"github.com/fleetworks/asset-sentinel/internal/models"
)

// EventQuery narrows an archived-event fetch. Either TimeframeDays or an
// explicit Start/End range bounds the window; Limit caps the result size.
type EventQuery struct {
	AssetID       string
	TimeframeDays int
	Start         time.Time
	End           time.Time
	Limit         int
}

// StoreClient reads assets and archived events from the external event/asset
// store over HTTP. The store owns all writes; this client is read-only.
type StoreClient struct {
	baseURL    string
	assetsPath string
	eventsPath string
	httpClient *http.Client
	cache      cache.Provider
	eventsTTL  time.Duration
}

// NewStoreClient constructs a client for the configured store instance.
func NewStoreClient(baseURL, assetsPath, eventsPath string, timeout time.Duration, cacheProvider cache.Provider, eventsTTL time.Duration) *StoreClient {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &StoreClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		assetsPath: assetsPath,
		eventsPath: eventsPath,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cacheProvider,
		eventsTTL:  eventsTTL,
	}
}

type wireAsset struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	State           string  `json:"state"`
	RuntimeSeconds  float64 `json:"runtime_seconds"`
	DowntimeSeconds float64 `json:"downtime_seconds"`
	TotalStops      int     `json:"total_stops"`
}

// The store reports event durations in milliseconds; they are converted to
// time.Duration here and nowhere else.
type wireEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	AssetID       string    `json:"asset_id"`
	Type          string    `json:"type"`
	PreviousState string    `json:"previous_state"`
	NewState      string    `json:"new_state"`
	DurationMs    float64   `json:"duration_ms"`
	StopReason    string    `json:"stop_reason"`
}

func (w wireAsset) toModel() models.Asset {
	return models.Asset{
		ID:              w.ID,
		Name:            w.Name,
		State:           models.AssetState(w.State),
		RuntimeSeconds:  w.RuntimeSeconds,
		DowntimeSeconds: w.DowntimeSeconds,
		TotalStops:      w.TotalStops,
	}
}

func (w wireEvent) toModel() models.Event {
	return models.Event{
		Timestamp:     w.Timestamp,
		AssetID:       w.AssetID,
		Type:          models.EventType(w.Type),
		PreviousState: models.AssetState(w.PreviousState),
		NewState:      models.AssetState(w.NewState),
		Duration:      time.Duration(w.DurationMs * float64(time.Millisecond)),
		StopReason:    w.StopReason,
	}
}

// GetAllAssets fetches the full asset list.
func (c *StoreClient) GetAllAssets(ctx context.Context) ([]models.Asset, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("asset store base URL not configured")
	}

	var response struct {
		Assets []wireAsset `json:"assets"`
	}
	if err := c.getJSON(ctx, c.resolvePath(c.assetsPath), nil, &response); err != nil {
		return nil, fmt.Errorf("asset store assets request failed: %w", err)
	}

	assets := make([]models.Asset, 0, len(response.Assets))
	for _, a := range response.Assets {
		assets = append(assets, a.toModel())
	}
	return assets, nil
}

// GetAssetByID fetches one asset, returning nil without error when the store
// does not know the id.
func (c *StoreClient) GetAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("asset store base URL not configured")
	}
	if id == "" {
		return nil, fmt.Errorf("asset id is required")
	}

	var response struct {
		Asset *wireAsset `json:"asset"`
	}
	endpoint := c.resolvePath(path.Join(c.assetsPath, id))
	if err := c.getJSON(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("asset store asset request failed: %w", err)
	}
	if response.Asset == nil {
		return nil, nil
	}
	asset := response.Asset.toModel()
	return &asset, nil
}

// GetArchivedEvents fetches events matching the query, consulting the cache
// first. Cache failures degrade to a direct fetch.
func (c *StoreClient) GetArchivedEvents(ctx context.Context, q EventQuery) ([]models.Event, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("asset store base URL not configured")
	}

	cacheKey := c.eventsCacheKey(q)
	if c.eventsTTL > 0 {
		if payload, err := c.cache.Get(ctx, cacheKey); err == nil {
			var cached []models.Event
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		}
	}

	params := url.Values{}
	if q.AssetID != "" {
		params.Set("asset_id", q.AssetID)
	}
	if q.TimeframeDays > 0 {
		params.Set("timeframe_days", strconv.Itoa(q.TimeframeDays))
	}
	if !q.Start.IsZero() {
		params.Set("start", q.Start.Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.Format(time.RFC3339))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var response struct {
		Events []wireEvent `json:"events"`
	}
	if err := c.getJSON(ctx, c.resolvePath(c.eventsPath), params, &response); err != nil {
		return nil, fmt.Errorf("asset store events request failed: %w", err)
	}

	events := make([]models.Event, 0, len(response.Events))
	for _, e := range response.Events {
		events = append(events, e.toModel())
	}

	if c.eventsTTL > 0 && len(events) > 0 {
		if payload, err := json.Marshal(events); err == nil {
			_ = c.cache.Set(ctx, cacheKey, payload, c.eventsTTL)
		}
	}
	return events, nil
}

func (c *StoreClient) eventsCacheKey(q EventQuery) string {
	return fmt.Sprintf("events:%s:%d:%d:%d:%d",
		q.AssetID, q.TimeframeDays, q.Start.Unix(), q.End.Unix(), q.Limit)
}

func (c *StoreClient) resolvePath(p string) string {
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

func (c *StoreClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if endpoint == "" {
		return fmt.Errorf("empty endpoint")
	}
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asset store returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
