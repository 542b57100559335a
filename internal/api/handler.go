package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eugenenazirov/binpack/internal/packer"
	"github.com/eugenenazirov/binpack/internal/storage"
	"github.com/eugenenazirov/binpack/pkg/binpack"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires packer and storage dependencies into HTTP handlers.
type Handler struct {
	packer  packer.Packer
	storage storage.Storage

	clock func() time.Time

	mu                sync.RWMutex
	settingsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(p packer.Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:  p,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.settingsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings, ""))
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	current, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if req.Capacity != nil {
		current.Capacity = *req.Capacity
	}
	if req.Strategy != nil {
		current.Strategy = binpack.Strategy(*req.Strategy)
	}

	if err := h.storage.SetSettings(current); err != nil {
		if errors.Is(err, storage.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markSettingsUpdated()

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings, "Settings updated successfully"))
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	capacity := settings.Capacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	strategy := settings.Strategy
	if req.Strategy != "" {
		parsed, err := binpack.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error(),
				fmt.Sprintf("Use one of %v", binpack.Strategies()))
			return
		}
		strategy = parsed
	}

	start := time.Now()
	result, packErr := h.packer.Pack(packer.Request{
		Capacity: capacity,
		Strategy: strategy,
		Items:    req.Items,
	})
	elapsed := time.Since(start)

	if packErr != nil {
		writePackError(w, packErr, capacity)
		return
	}

	bins := make([]binResponse, len(result.Bins))
	for i, bin := range result.Bins {
		bins[i] = binResponse{
			Items:     bin.Items,
			Used:      bin.Used,
			Remaining: bin.Remaining,
		}
	}

	resp := packResponse{
		PackingID:         ulid.Make().String(),
		RequestID:         requestIDFromContext(r.Context()),
		Strategy:          string(result.Strategy),
		Capacity:          result.Capacity,
		Bins:              bins,
		TotalBins:         result.Stats.Bins,
		TotalItems:        result.Stats.Items,
		LowerBound:        result.LowerBound,
		Used:              result.Stats.Used,
		Wasted:            result.Stats.Wasted,
		Fill:              result.Stats.Fill,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePackError(w http.ResponseWriter, err error, capacity int) {
	var itemErr *packer.ItemError
	switch {
	case errors.Is(err, binpack.ErrOversizedItem):
		suggestion := fmt.Sprintf("Split the item or raise the bin capacity above %d", capacity)
		if errors.As(err, &itemErr) {
			suggestion = fmt.Sprintf("Item %q cannot fit any bin; split it or raise the bin capacity above %d", itemErr.ID, capacity)
		}
		writeError(w, http.StatusUnprocessableEntity, "Item does not fit", err.Error(), suggestion)
	case errors.Is(err, binpack.ErrInvalidCapacity),
		errors.Is(err, binpack.ErrNegativeSize),
		errors.Is(err, binpack.ErrUnknownStrategy),
		errors.Is(err, packer.ErrDuplicateItemID):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, packer.ErrTooManyItems):
		writeError(w, http.StatusRequestEntityTooLarge, "Too many items", err.Error(), "Split the request into smaller batches")
	default:
		writeInternalError(w, err)
	}
}

func (h *Handler) settingsResponse(settings storage.Settings, message string) settingsResponse {
	return settingsResponse{
		Capacity:   settings.Capacity,
		Strategy:   string(settings.Strategy),
		Strategies: binpack.Strategies(),
		UpdatedAt:  h.currentSettingsUpdatedAt(),
		Message:    message,
	}
}

func (h *Handler) currentSettingsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settingsUpdatedAt
}

func (h *Handler) markSettingsUpdated() {
	h.mu.Lock()
	h.settingsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type settingsRequest struct {
	Capacity *int    `json:"capacity"`
	Strategy *string `json:"strategy"`
}

type packRequest struct {
	Items    []packer.Item `json:"items"`
	Capacity *int          `json:"capacity,omitempty"`
	Strategy string        `json:"strategy,omitempty"`
}

type binResponse struct {
	Items     []packer.Item `json:"items"`
	Used      int           `json:"used"`
	Remaining int           `json:"remaining"`
}

type packResponse struct {
	PackingID         string        `json:"packingId"`
	RequestID         string        `json:"requestId,omitempty"`
	Strategy          string        `json:"strategy"`
	Capacity          int           `json:"capacity"`
	Bins              []binResponse `json:"bins"`
	TotalBins         int           `json:"totalBins"`
	TotalItems        int           `json:"totalItems"`
	LowerBound        int           `json:"lowerBound"`
	Used              int           `json:"used"`
	Wasted            int           `json:"wasted"`
	Fill              float64       `json:"fill"`
	CalculationTimeMs int64         `json:"calculationTimeMs"`
}

type settingsResponse struct {
	Capacity   int                `json:"capacity"`
	Strategy   string             `json:"strategy"`
	Strategies []binpack.Strategy `json:"strategies"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Message    string             `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
