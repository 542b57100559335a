package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/binpack/internal/packer"
	"github.com/eugenenazirov/binpack/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupTestRouter(t *testing.T, packerOpts ...packer.Option) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStorage()
	p := packer.New(packerOpts...)
	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))

	handler := NewHandler(p, store, WithClock(clock.Now))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type packBody struct {
	PackingID  string `json:"packingId"`
	RequestID  string `json:"requestId"`
	Strategy   string `json:"strategy"`
	Capacity   int    `json:"capacity"`
	TotalBins  int    `json:"totalBins"`
	TotalItems int    `json:"totalItems"`
	LowerBound int    `json:"lowerBound"`
	Bins       []struct {
		Items     []packer.Item `json:"items"`
		Used      int           `json:"used"`
		Remaining int           `json:"remaining"`
	} `json:"bins"`
}

func decodePack(t *testing.T, rec *httptest.ResponseRecorder) packBody {
	t.Helper()

	var body packBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	router, clock := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Capacity   int       `json:"capacity"`
		Strategy   string    `json:"strategy"`
		Strategies []string  `json:"strategies"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := storage.DefaultSettings()
	if body.Capacity != want.Capacity || body.Strategy != string(want.Strategy) {
		t.Fatalf("expected defaults %+v, got capacity=%d strategy=%s", want, body.Capacity, body.Strategy)
	}
	if len(body.Strategies) != 2 {
		t.Fatalf("expected 2 strategies listed, got %v", body.Strategies)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutSettingsUpdatesStorage(t *testing.T) {
	router, clock := setupTestRouter(t)

	clock.Advance(time.Hour)

	rec := doJSON(t, router, http.MethodPut, "/api/settings", map[string]any{
		"capacity": 20,
		"strategy": "ff",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Capacity  int       `json:"capacity"`
		Strategy  string    `json:"strategy"`
		UpdatedAt time.Time `json:"updatedAt"`
		Message   string    `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Message == "" {
		t.Fatalf("expected success message, got empty string")
	}
	if body.Capacity != 20 || body.Strategy != "first-fit" {
		t.Fatalf("unexpected settings: capacity=%d strategy=%s", body.Capacity, body.Strategy)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutSettingsPartialUpdate(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/settings", map[string]any{"capacity": 7})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Capacity int    `json:"capacity"`
		Strategy string `json:"strategy"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Capacity != 7 || body.Strategy != string(storage.DefaultSettings().Strategy) {
		t.Fatalf("expected strategy to be kept, got capacity=%d strategy=%s", body.Capacity, body.Strategy)
	}
}

func TestPutSettingsValidatesInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, payload := range []map[string]any{
		{"capacity": 0},
		{"capacity": -1},
		{"strategy": "best-fit"},
	} {
		rec := doJSON(t, router, http.MethodPut, "/api/settings", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for %v, got %d", payload, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestPackEndpointFirstFitDecreasing(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/pack", map[string]any{
		"capacity": 20,
		"strategy": "ffd",
		"items": []packer.Item{
			{ID: "a", Size: 1},
			{ID: "b", Size: 2},
			{ID: "c", Size: 19},
			{ID: "d", Size: 17},
			{ID: "e", Size: 1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodePack(t, rec)
	if body.Strategy != "first-fit-decreasing" || body.Capacity != 20 {
		t.Fatalf("unexpected strategy/capacity: %s/%d", body.Strategy, body.Capacity)
	}
	if body.TotalBins != 2 || body.TotalItems != 5 || body.LowerBound != 2 {
		t.Fatalf("unexpected totals: bins=%d items=%d lowerBound=%d", body.TotalBins, body.TotalItems, body.LowerBound)
	}

	want := [][]string{{"c", "a"}, {"d", "b", "e"}}
	for i, bin := range body.Bins {
		if len(bin.Items) != len(want[i]) {
			t.Fatalf("bin %d: expected %v, got %v", i, want[i], bin.Items)
		}
		for j, item := range bin.Items {
			if item.ID != want[i][j] {
				t.Fatalf("bin %d: expected %v, got %v", i, want[i], bin.Items)
			}
		}
		if bin.Used != 20 || bin.Remaining != 0 {
			t.Fatalf("bin %d: expected full bin, got used=%d remaining=%d", i, bin.Used, bin.Remaining)
		}
	}
	if _, err := ulid.Parse(body.PackingID); err != nil {
		t.Fatalf("expected ULID packing id, got %q: %v", body.PackingID, err)
	}
	if body.RequestID == "" {
		t.Fatalf("expected request id in response")
	}
}

func TestPackEndpointUsesStoredSettings(t *testing.T) {
	router, _ := setupTestRouter(t)

	if rec := doJSON(t, router, http.MethodPut, "/api/settings", map[string]any{"capacity": 10, "strategy": "first-fit"}); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for settings update, got %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/pack", map[string]any{
		"items": []packer.Item{{ID: "x", Size: 5}, {ID: "y", Size: 5}, {ID: "z", Size: 5}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodePack(t, rec)
	if body.Strategy != "first-fit" || body.Capacity != 10 {
		t.Fatalf("expected stored settings, got %s/%d", body.Strategy, body.Capacity)
	}
	if body.TotalBins != 2 || len(body.Bins[0].Items) != 2 || body.Bins[1].Remaining != 5 {
		t.Fatalf("unexpected packing: %+v", body.Bins)
	}
}

func TestPackEndpointEmptyItems(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/pack", map[string]any{"items": []packer.Item{}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodePack(t, rec)
	if body.TotalBins != 0 || len(body.Bins) != 0 {
		t.Fatalf("expected no bins, got %d", body.TotalBins)
	}
}

func TestPackEndpointOversizedItem(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/pack", map[string]any{
		"capacity": 10,
		"items":    []packer.Item{{ID: "crate", Size: 11}},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var body struct {
		Details    string `json:"details"`
		Suggestion string `json:"suggestion"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Suggestion == "" || body.Details == "" {
		t.Fatalf("expected details and suggestion to be populated")
	}
	if !bytes.Contains([]byte(body.Suggestion), []byte("crate")) {
		t.Fatalf("expected suggestion to name the item, got %q", body.Suggestion)
	}
}

func TestPackEndpointRejectsInvalidInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"ZeroCapacity", map[string]any{"capacity": 0, "items": []packer.Item{{ID: "a", Size: 1}}}},
		{"NegativeSize", map[string]any{"items": []packer.Item{{ID: "a", Size: -1}}}},
		{"UnknownStrategy", map[string]any{"strategy": "best-fit", "items": []packer.Item{{ID: "a", Size: 1}}}},
		{"DuplicateIDs", map[string]any{"items": []packer.Item{{ID: "a", Size: 1}, {ID: "a", Size: 2}}}},
	}

	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/pack", tc.payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestPackEndpointTooManyItems(t *testing.T) {
	router, _ := setupTestRouter(t, packer.WithMaxItems(2))

	rec := doJSON(t, router, http.MethodPost, "/api/pack", map[string]any{
		"items": []packer.Item{{ID: "a", Size: 1}, {ID: "b", Size: 1}, {ID: "c", Size: 1}},
	})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rec.Code)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/pack", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if _, err := ulid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Fatalf("expected generated ULID request id, got %q: %v", rec.Header().Get("X-Request-ID"), err)
	}
}
