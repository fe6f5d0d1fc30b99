// Package api exposes the HTTP surface: request creation and response
// listing for authenticated hospital actors, token resolution and response
// submission for donors.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lifeflow/bloodlink/core/aggregate"
	"github.com/lifeflow/bloodlink/core/blood"
	"github.com/lifeflow/bloodlink/core/collect"
	"github.com/lifeflow/bloodlink/core/dispatch"
	"github.com/lifeflow/bloodlink/core/events"
	"github.com/lifeflow/bloodlink/core/logger"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
	"github.com/lifeflow/bloodlink/internal/eventbus"
)

// invalidLinkMessage is shown for both a missing and an already-used token
// so the response does not leak which case occurred.
const invalidLinkMessage = "invalid or expired link"

// Handler wires the core components to HTTP routes.
type Handler struct {
	requests   store.RequestStore
	dispatcher *dispatch.Dispatcher
	collector  *collect.Collector
	aggregator *aggregate.Aggregator
	bus        eventbus.EventBus
	logger     logger.Logger
	authToken  string
	now        func() time.Time
}

// New creates a Handler. An empty authToken disables authentication.
func New(requests store.RequestStore, d *dispatch.Dispatcher, c *collect.Collector, a *aggregate.Aggregator, bus eventbus.EventBus, log logger.Logger, authToken string) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{
		requests:   requests,
		dispatcher: d,
		collector:  c,
		aggregator: a,
		bus:        bus,
		logger:     log,
		authToken:  authToken,
		now:        time.Now,
	}
}

// Routes returns the API mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/requests", h.authed(h.createRequest))
	mux.HandleFunc("GET /api/requests", h.authed(h.listRequests))
	mux.HandleFunc("GET /api/requests/{id}/responses", h.authed(h.listResponses))
	mux.HandleFunc("GET /api/locations", h.authed(h.listLocations))
	mux.HandleFunc("GET /api/respond/{token}", h.resolveToken)
	mux.HandleFunc("POST /api/respond/{token}", h.submitResponse)
	return mux
}

func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" && r.Header.Get("Authorization") != "Bearer "+h.authToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

type createRequestBody struct {
	HospitalID string    `json:"hospital_id"`
	BloodGroup string    `json:"blood_group"`
	Quantity   int       `json:"quantity"`
	Urgency    string    `json:"urgency"`
	RequiredBy time.Time `json:"required_by"`
}

type createRequestResponse struct {
	RequestID string           `json:"request_id"`
	SMSStatus dispatch.Summary `json:"sms_status"`
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	group := model.NormalizeGroup(body.BloodGroup)
	if !blood.Known(group) || body.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "a known blood_group and a positive quantity are required")
		return
	}
	req := model.BloodRequest{
		ID:         uuid.NewString(),
		HospitalID: body.HospitalID,
		BloodGroup: group,
		Quantity:   body.Quantity,
		Urgency:    body.Urgency,
		Status:     model.StatusPending,
		RequiredBy: body.RequiredBy,
		CreatedAt:  h.now(),
	}
	if err := h.requests.Create(r.Context(), req); err != nil {
		h.writeStoreError(w, err)
		return
	}
	if h.bus != nil {
		h.bus.Publish(events.RequestCreatedEvent{Request: req})
	}
	// The request is durably stored; dispatch problems degrade the summary
	// but never fail the creation.
	result, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		h.logger.Errorf("dispatch for request %s failed: %v", req.ID, err)
	}
	writeJSON(w, http.StatusCreated, createRequestResponse{RequestID: req.ID, SMSStatus: result.Summary})
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if reqs == nil {
		reqs = []model.BloodRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (h *Handler) listResponses(w http.ResponseWriter, r *http.Request) {
	f := aggregate.Filter{Mode: aggregate.FilterAfterRequest}
	switch r.URL.Query().Get("time_filter") {
	case "", "after-request":
	case "all":
		f.Mode = aggregate.FilterAll
	case "recent":
		f.Mode = aggregate.FilterRecent
		f.MaxAgeHours = 24
		if s := r.URL.Query().Get("max_age_hours"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "max_age_hours must be a positive integer")
				return
			}
			f.MaxAgeHours = n
		}
	default:
		writeError(w, http.StatusBadRequest, "time_filter must be one of all, after-request, recent")
		return
	}
	view, err := h.aggregator.Responses(r.Context(), r.PathValue("id"), f)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if view.Responses == nil {
		view.Responses = []aggregate.Entry{}
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	entries, err := h.aggregator.Locations(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if entries == nil {
		entries = []aggregate.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": entries})
}

func (h *Handler) resolveToken(w http.ResponseWriter, r *http.Request) {
	res, err := h.collector.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		h.writeTokenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) submitResponse(w http.ResponseWriter, r *http.Request) {
	var sub collect.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	resp, err := h.collector.Submit(r.Context(), r.PathValue("token"), sub)
	if err != nil {
		h.writeTokenError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, invalidLinkMessage)
	default:
		h.writeStoreError(w, err)
	}
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, store.ErrDonorNotFound):
		writeError(w, http.StatusNotFound, "donor not found")
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		h.logger.Errorf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
