package service

import (
	"context"
	"time"

	"roomgrid/internal/calendar/coordinator"
	"roomgrid/internal/calendar/engine"
	"roomgrid/internal/calendar/validator"
	"roomgrid/pkg/config"
	"roomgrid/pkg/dataservice"
	apperrors "roomgrid/pkg/errors"
	"roomgrid/pkg/model"
)

type CalendarService interface {
	Load(ctx context.Context) error
	Snapshot(ctx context.Context) (*coordinator.Snapshot, error)
	SwitchTab(ctx context.Context, name string) error
	MoveReservation(ctx context.Context, tab, id string, start, end time.Time, roomID string) error
	RevertReservation(ctx context.Context, tab, id string) error
	AckReservation(ctx context.Context, tab, id string) error
	SwapReservations(ctx context.Context, fromIDs, toIDs []string) error
	SplitReservation(ctx context.Context, id string, nights int) error
	UnifyReservations(ctx context.Context, ids []string) error
	ApplyNotification(ctx context.Context, n *model.Notification) (coordinator.MergeResult, error)
	Occupancy(ctx context.Context, tab string) ([]engine.DayOccupancy, error)
}

type calendarService struct {
	client    dataservice.Client
	coord     *coordinator.Coordinator
	validator *validator.CalendarValidator
	cfg       *config.Config
}

func NewCalendarService(
	client dataservice.Client,
	coord *coordinator.Coordinator,
	validator *validator.CalendarValidator,
	cfg *config.Config,
) CalendarService {
	return &calendarService{
		client:    client,
		coord:     coord,
		validator: validator,
		cfg:       cfg,
	}
}

// Load fetches the full dataset for the visible window and reseeds the
// coordinator. Records failing validation are skipped with a warning,
// a bad record never aborts the load.
func (s *calendarService) Load(ctx context.Context) error {
	rangeStart := model.Midnight(time.Now())
	rangeEnd := rangeStart.AddDate(0, 0, s.cfg.VisibleDays)

	data, err := s.client.FetchCalendarData(ctx, rangeStart, rangeEnd)
	if err != nil {
		return apperrors.Unavailable("data service")
	}

	clean := &model.CalendarData{
		Pricelist:    data.Pricelist,
		Restrictions: data.Restrictions,
		Tooltips:     data.Tooltips,
		Events:       data.Events,
	}
	for _, room := range data.Rooms {
		if err := s.validator.ValidateRoom(room); err != nil {
			s.cfg.Log.Warn("skipping invalid room", "error", err)
			continue
		}
		clean.Rooms = append(clean.Rooms, room)
	}
	for _, res := range data.Reservations {
		if err := s.validator.ValidateReservation(res); err != nil {
			s.cfg.Log.Warn("skipping invalid reservation", "error", err)
			continue
		}
		clean.Reservations = append(clean.Reservations, res)
	}

	s.coord.SetData(clean)
	s.cfg.Log.Info("calendar dataset loaded",
		"rooms", len(clean.Rooms),
		"reservations", len(clean.Reservations),
	)
	return nil
}

func (s *calendarService) Snapshot(ctx context.Context) (*coordinator.Snapshot, error) {
	return s.coord.Snapshot()
}

func (s *calendarService) SwitchTab(ctx context.Context, name string) error {
	return s.coord.SwitchTab(name)
}

// MoveReservation applies a date/room change optimistically, persists it
// through the data service and rolls back on failure.
func (s *calendarService) MoveReservation(ctx context.Context, tab, id string, start, end time.Time, roomID string) error {
	if id == "" {
		return apperrors.InvalidInput("reservation ID cannot be empty")
	}
	if !end.After(start) {
		return apperrors.InvalidInput("end date must be after start date")
	}

	var snapshot *model.Reservation
	err := s.coord.With(tab, func(e *engine.Engine) error {
		res, ok := e.Reservation(id)
		if !ok {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if res.ReadOnly {
			return apperrors.InvalidOperation("reservation is read only", map[string]any{"reservation_id": id})
		}
		if res.FixDays && (!start.Equal(res.StartDate) || !end.Equal(res.EndDate)) {
			return apperrors.InvalidOperation("reservation dates are locked", map[string]any{"reservation_id": id})
		}
		if res.FixRooms && roomID != "" && roomID != res.RoomID {
			return apperrors.InvalidOperation("reservation room is locked", map[string]any{"reservation_id": id})
		}

		snapshot = res.Clone()
		draft := res.Clone()
		draft.StartDate = start
		draft.EndDate = end
		if roomID != "" {
			draft.RoomID = roomID
			draft.Room = nil
		}

		e.AddReservation(draft)
		if _, ok := e.Reservation(id); !ok {
			// The draft could not be placed; restore the original.
			e.AddReservation(snapshot)
			return apperrors.PlacementFailed(id, "requested dates collide or fall outside the window")
		}
		return nil
	})
	if err != nil {
		return err
	}

	changes := map[string]any{
		"start_date": model.DayKey(start),
		"end_date":   model.DayKey(end),
	}
	if roomID != "" {
		changes["room_id"] = roomID
	}
	if err := s.client.PersistReservationChange(ctx, []string{id}, changes); err != nil {
		s.cfg.Log.Error("persist failed, reverting reservation", "id", id, "error", err)
		_ = s.coord.With(tab, func(e *engine.Engine) error {
			e.AddReservation(snapshot)
			return nil
		})
		return apperrors.PersistFailed("move reservation", err)
	}

	s.cfg.Log.Info("reservation moved",
		"id", id,
		"start", model.DayKey(start),
		"end", model.DayKey(end),
		"room_id", roomID,
	)
	return nil
}

// RevertReservation rolls back a pending optimistic apply left by an
// interactive commit the host declined.
func (s *calendarService) RevertReservation(ctx context.Context, tab, id string) error {
	return s.coord.With(tab, func(e *engine.Engine) error {
		return e.Revert(id)
	})
}

// AckReservation confirms a pending optimistic apply, discarding its
// rollback snapshot.
func (s *calendarService) AckReservation(ctx context.Context, tab, id string) error {
	return s.coord.With(tab, func(e *engine.Engine) error {
		e.Ack(id)
		return nil
	})
}

// SwapReservations validates and applies the exchange locally, then
// persists it. A local validity failure never reaches the data service.
func (s *calendarService) SwapReservations(ctx context.Context, fromIDs, toIDs []string) error {
	err := s.coord.With("", func(e *engine.Engine) error {
		return e.SwapReservations(fromIDs, toIDs)
	})
	if err != nil {
		return err
	}

	if err := s.client.SwapReservations(ctx, fromIDs, toIDs); err != nil {
		s.cfg.Log.Error("swap persist failed, swapping back", "error", err)
		_ = s.coord.With("", func(e *engine.Engine) error {
			return e.SwapReservations(fromIDs, toIDs)
		})
		return apperrors.PersistFailed("swap reservations", err)
	}
	return nil
}

// SplitReservation delegates to the data service, which owns segment
// creation, then reloads so the tabs pick up the new segments.
func (s *calendarService) SplitReservation(ctx context.Context, id string, nights int) error {
	if nights < 1 {
		return apperrors.InvalidInput("split must keep at least one night per segment")
	}
	if err := s.client.SplitReservation(ctx, id, nights); err != nil {
		return apperrors.PersistFailed("split reservation", err)
	}
	return s.Load(ctx)
}

func (s *calendarService) UnifyReservations(ctx context.Context, ids []string) error {
	if len(ids) < 2 {
		return apperrors.InvalidInput("unify needs at least two reservations")
	}
	if err := s.client.UnifyReservations(ctx, ids); err != nil {
		return apperrors.PersistFailed("unify reservations", err)
	}
	return s.Load(ctx)
}

func (s *calendarService) ApplyNotification(ctx context.Context, n *model.Notification) (coordinator.MergeResult, error) {
	return s.coord.Merge(n)
}

func (s *calendarService) Occupancy(ctx context.Context, tab string) ([]engine.DayOccupancy, error) {
	var days []engine.DayOccupancy
	err := s.coord.With(tab, func(e *engine.Engine) error {
		days = e.CalcDayOccupancy()
		return nil
	})
	return days, err
}
