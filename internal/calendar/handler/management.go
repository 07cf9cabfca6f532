package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"roomgrid/internal/calendar/mgmt"
	"roomgrid/internal/calendar/service"
	apperrors "roomgrid/pkg/errors"
	httputil "roomgrid/pkg/http"
	"roomgrid/pkg/logger"
)

type ManagementHandler struct {
	service service.ManagementService
	log     *logger.Logger
}

func NewManagementHandler(service service.ManagementService, log *logger.Logger) *ManagementHandler {
	return &ManagementHandler{
		service: service,
		log:     log,
	}
}

type gridCell struct {
	RoomType string          `json:"room_type"`
	Date     string          `json:"date"`
	Values   mgmt.CellValues `json:"values"`
	Changed  bool            `json:"changed"`
}

type gridResponse struct {
	RoomTypes []string   `json:"room_types"`
	Days      []string   `json:"days"`
	Cells     []gridCell `json:"cells"`
	Dirty     bool       `json:"dirty"`
}

type cloneRequest struct {
	RoomType string `json:"room_type"`
	SrcDate  string `json:"src_date"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

func (h *ManagementHandler) Grid(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	grid := h.service.Grid()

	resp := gridResponse{
		RoomTypes: grid.RoomTypes(),
		Days:      grid.Days(),
		Dirty:     grid.Dirty(),
	}
	for _, rt := range resp.RoomTypes {
		for _, day := range resp.Days {
			cell, ok := grid.Cell(rt, day)
			if !ok {
				continue
			}
			resp.Cells = append(resp.Cells, gridCell{
				RoomType: rt,
				Date:     day,
				Values:   cell.Values(),
				Changed:  cell.Changed(),
			})
		}
	}
	httputil.WriteSuccess(w, resp)
}

func (h *ManagementHandler) Reload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Load(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ManagementHandler) Edit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var edit service.CellEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.service.Edit(r.Context(), &edit); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ManagementHandler) Clone(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req cloneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.RoomType == "" || req.SrcDate == "" || req.FromDate == "" || req.ToDate == "" {
		httputil.WriteError(w, apperrors.InvalidInput("room_type, src_date, from_date and to_date are required"))
		return
	}
	if err := h.service.Grid().CloneToRange(req.RoomType, req.SrcDate, req.FromDate, req.ToDate); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ManagementHandler) Save(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := h.service.Save(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

func (h *ManagementHandler) Reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Reset(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ManagementHandler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *ManagementHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/management/grid", h.Grid)
	router.POST("/api/v1/management/grid/reload", h.Reload)
	router.POST("/api/v1/management/grid/edit", h.Edit)
	router.POST("/api/v1/management/grid/clone", h.Clone)
	router.POST("/api/v1/management/grid/save", h.Save)
	router.POST("/api/v1/management/grid/reset", h.Reset)
	router.GET("/health", h.Health)
}
