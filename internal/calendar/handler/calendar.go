package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"roomgrid/internal/calendar/service"
	"roomgrid/pkg/config"
	apperrors "roomgrid/pkg/errors"
	httputil "roomgrid/pkg/http"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

type CalendarHandler struct {
	service  service.CalendarService
	hub      *Hub
	settings uiSettings
	log      *logger.Logger
}

func NewCalendarHandler(service service.CalendarService, hub *Hub, cfg *config.Config, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service:  service,
		hub:      hub,
		settings: uiSettingsFrom(cfg),
		log:      log,
	}
}

// uiSettings carries the interaction tuning a host UI fetches once at
// startup: the commit delay and the debounce/throttle intervals for
// resize, scroll and search input.
type uiSettings struct {
	ActionDelayMS    int64 `json:"action_delay_ms"`
	ResizeDebounceMS int64 `json:"resize_debounce_ms"`
	ScrollThrottleMS int64 `json:"scroll_throttle_ms"`
	SearchThrottleMS int64 `json:"search_throttle_ms"`
	VisibleDays      int   `json:"visible_days"`
}

func uiSettingsFrom(cfg *config.Config) uiSettings {
	return uiSettings{
		ActionDelayMS:    cfg.ActionDelay.Milliseconds(),
		ResizeDebounceMS: cfg.ResizeDebounce.Milliseconds(),
		ScrollThrottleMS: cfg.ScrollThrottle.Milliseconds(),
		SearchThrottleMS: cfg.SearchThrottle.Milliseconds(),
		VisibleDays:      cfg.VisibleDays,
	}
}

type moveRequest struct {
	Tab       string `json:"tab"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	RoomID    string `json:"room_id"`
}

type swapRequest struct {
	FromIDs []string `json:"from_ids"`
	ToIDs   []string `json:"to_ids"`
}

type splitRequest struct {
	Nights int `json:"nights"`
}

type unifyRequest struct {
	IDs []string `json:"ids"`
}

type switchTabRequest struct {
	Tab string `json:"tab"`
}

func (h *CalendarHandler) Snapshot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, snapshot)
}

func (h *CalendarHandler) Reload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Load(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, snapshot)
}

func (h *CalendarHandler) SwitchTab(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req switchTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.service.SwitchTab(r.Context(), req.Tab); err != nil {
		httputil.WriteError(w, err)
		return
	}
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, snapshot)
}

func (h *CalendarHandler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	start, err := model.ParseDayKey(req.StartDate)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("invalid start_date: "+req.StartDate))
		return
	}
	end, err := model.ParseDayKey(req.EndDate)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("invalid end_date: "+req.EndDate))
		return
	}

	if err := h.service.MoveReservation(r.Context(), req.Tab, id, start, end, req.RoomID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Revert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	tab := r.URL.Query().Get("tab")
	if err := h.service.RevertReservation(r.Context(), tab, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Ack(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	tab := r.URL.Query().Get("tab")
	if err := h.service.AckReservation(r.Context(), tab, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Swap(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.FromIDs) == 0 || len(req.ToIDs) == 0 {
		httputil.WriteError(w, apperrors.InvalidInput("both swap sides need at least one reservation"))
		return
	}
	if err := h.service.SwapReservations(r.Context(), req.FromIDs, req.ToIDs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Split(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.service.SplitReservation(r.Context(), id, req.Nights); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Unify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req unifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.service.UnifyReservations(r.Context(), req.IDs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Occupancy(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tab := r.URL.Query().Get("tab")
	days, err := h.service.Occupancy(r.Context(), tab)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, days)
}

func (h *CalendarHandler) Settings(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteSuccess(w, h.settings)
}

func (h *CalendarHandler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": h.hub.ClientCount(),
	})
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/calendar", h.Snapshot)
	router.POST("/api/v1/calendar/reload", h.Reload)
	router.POST("/api/v1/calendar/tab", h.SwitchTab)
	router.GET("/api/v1/calendar/occupancy", h.Occupancy)
	router.GET("/api/v1/calendar/settings", h.Settings)
	router.POST("/api/v1/calendar/reservations/id/:id/move", h.Move)
	router.POST("/api/v1/calendar/reservations/id/:id/split", h.Split)
	router.POST("/api/v1/calendar/reservations/id/:id/revert", h.Revert)
	router.POST("/api/v1/calendar/reservations/id/:id/ack", h.Ack)
	router.POST("/api/v1/calendar/reservations/swap", h.Swap)
	router.POST("/api/v1/calendar/reservations/unify", h.Unify)
	router.GET("/ws/calendar", h.hub.ServeWS)
	router.GET("/health", h.Health)
}
