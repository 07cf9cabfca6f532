package service

import (
	"context"
	"sync"
	"time"

	"roomgrid/internal/calendar/mgmt"
	"roomgrid/internal/calendar/validator"
	"roomgrid/pkg/config"
	"roomgrid/pkg/dataservice"
	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/model"
)

type ManagementService interface {
	Load(ctx context.Context) error
	Grid() *mgmt.Grid
	Edit(ctx context.Context, edit *CellEdit) error
	Save(ctx context.Context) (*SaveResult, error)
	Reset(ctx context.Context) error
	ApplyNotification(ctx context.Context, n *model.Notification) error
}

// CellEdit is one field change on a management cell. Exactly one field
// group is applied per request.
type CellEdit struct {
	RoomType string `json:"room_type" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`

	Price    *float64 `json:"price,omitempty"`
	Quota    *int     `json:"quota,omitempty"`
	MaxAvail *int     `json:"max_avail,omitempty"`
	Closure  *string  `json:"closure,omitempty"`
	NoOTA    *bool    `json:"no_ota,omitempty"`

	MinStay        *int `json:"min_stay,omitempty"`
	MaxStay        *int `json:"max_stay,omitempty"`
	MinStayArrival *int `json:"min_stay_arrival,omitempty"`
	MaxStayArrival *int `json:"max_stay_arrival,omitempty"`
}

type SaveResult struct {
	Prices       int `json:"prices"`
	Restrictions int `json:"restrictions"`
	Availability int `json:"availability"`
}

type managementService struct {
	mu sync.Mutex

	client    dataservice.Client
	grid      *mgmt.Grid
	validator *validator.CalendarValidator
	cfg       *config.Config
}

func NewManagementService(
	client dataservice.Client,
	grid *mgmt.Grid,
	validator *validator.CalendarValidator,
	cfg *config.Config,
) ManagementService {
	return &managementService{
		client:    client,
		grid:      grid,
		validator: validator,
		cfg:       cfg,
	}
}

// Load pulls pricing, restriction and availability records for the grid
// range and seeds the baseline.
func (s *managementService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rangeStart := model.Midnight(time.Now())
	rangeEnd := rangeStart.AddDate(0, 0, s.cfg.VisibleDays)

	data, err := s.client.FetchCalendarData(ctx, rangeStart, rangeEnd)
	if err != nil {
		return apperrors.Unavailable("data service")
	}

	var prices []model.PriceRecord
	for key, days := range data.Pricelist {
		for date, price := range days {
			rec := model.PriceRecord{RoomType: key, Date: date, Price: price}
			if err := s.validator.ValidatePriceRecord(&rec); err != nil {
				s.cfg.Log.Warn("skipping invalid price record", "error", err)
				continue
			}
			prices = append(prices, rec)
		}
	}
	var restrictions []model.RestrictionRecord
	for _, rec := range data.Restrictions {
		if err := s.validator.ValidateRestrictionRecord(&rec); err != nil {
			s.cfg.Log.Warn("skipping invalid restriction record", "error", err)
			continue
		}
		restrictions = append(restrictions, rec)
	}

	s.grid.Load(prices, restrictions, nil)
	s.cfg.Log.Info("management grid loaded",
		"prices", len(prices),
		"restrictions", len(restrictions),
	)
	return nil
}

func (s *managementService) Grid() *mgmt.Grid {
	return s.grid
}

func (s *managementService) Edit(ctx context.Context, edit *CellEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if edit.RoomType == "" || edit.Date == "" {
		return apperrors.InvalidInput("room type and date are required")
	}

	switch {
	case edit.Price != nil:
		return s.grid.SetPrice(edit.RoomType, edit.Date, *edit.Price)
	case edit.Quota != nil:
		return s.grid.SetQuota(edit.RoomType, edit.Date, *edit.Quota)
	case edit.MaxAvail != nil:
		return s.grid.SetMaxAvail(edit.RoomType, edit.Date, *edit.MaxAvail)
	case edit.Closure != nil:
		return s.grid.SetClosure(edit.RoomType, edit.Date, *edit.Closure)
	case edit.NoOTA != nil:
		return s.grid.SetNoOTA(edit.RoomType, edit.Date, *edit.NoOTA)
	case edit.MinStay != nil || edit.MaxStay != nil ||
		edit.MinStayArrival != nil || edit.MaxStayArrival != nil:
		cell, ok := s.grid.Cell(edit.RoomType, edit.Date)
		if !ok {
			return apperrors.NotFound("Management cell")
		}
		cur := cell.Values()
		minStay, maxStay := cur.MinStay, cur.MaxStay
		minArr, maxArr := cur.MinStayArrival, cur.MaxStayArrival
		if edit.MinStay != nil {
			minStay = *edit.MinStay
		}
		if edit.MaxStay != nil {
			maxStay = *edit.MaxStay
		}
		if edit.MinStayArrival != nil {
			minArr = *edit.MinStayArrival
		}
		if edit.MaxStayArrival != nil {
			maxArr = *edit.MaxStayArrival
		}
		return s.grid.SetStay(edit.RoomType, edit.Date, minStay, maxStay, minArr, maxArr)
	}
	return apperrors.InvalidInput("edit carries no field")
}

// Save sends only the changed cells and promotes the baseline on
// success. A failed save keeps every local edit for retry.
func (s *managementService) Save(ctx context.Context) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices, restrictions, avails := s.grid.Diffs()
	if len(prices)+len(restrictions)+len(avails) == 0 {
		return &SaveResult{}, nil
	}

	if err := s.client.SaveManagementChanges(ctx, prices, restrictions, avails); err != nil {
		s.cfg.Log.Error("management save failed, keeping local edits", "error", err)
		return nil, apperrors.PersistFailed("save management changes", err)
	}
	s.grid.MarkSaved()

	result := &SaveResult{
		Prices:       len(prices),
		Restrictions: len(restrictions),
		Availability: len(avails),
	}
	s.cfg.Log.Info("management changes saved",
		"prices", result.Prices,
		"restrictions", result.Restrictions,
		"availability", result.Availability,
	)
	return result, nil
}

func (s *managementService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Reset()
	return nil
}

func (s *managementService) ApplyNotification(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch n.Entity {
	case model.EntityPrice:
		rec, err := n.DecodePrice()
		if err != nil {
			return apperrors.Validation("malformed price payload", map[string]any{"error": err.Error()})
		}
		s.grid.MergePrice(*rec)
	case model.EntityRestriction:
		rec, err := n.DecodeRestriction()
		if err != nil {
			return apperrors.Validation("malformed restriction payload", map[string]any{"error": err.Error()})
		}
		s.grid.MergeRestriction(*rec)
	case model.EntityAvailability:
		rec, err := n.DecodeAvailability()
		if err != nil {
			return apperrors.Validation("malformed availability payload", map[string]any{"error": err.Error()})
		}
		s.grid.MergeAvailability(*rec)
	case model.EntityReservation:
		// Reservation traffic belongs to the calendar service.
	default:
		return apperrors.InvalidInput("unknown notification entity: " + string(n.Entity))
	}
	return nil
}
