package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"roomgrid/internal/calendar/mgmt"
	"roomgrid/internal/calendar/validator"
	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

func setupManagement(t *testing.T, client *mockClient) (ManagementService, *mgmt.Grid) {
	t.Helper()

	log := logger.Discard()
	grid := mgmt.New(log, model.Midnight(time.Now()), 7, []string{"double", "single"})
	svc := NewManagementService(client, grid, validator.NewCalendarValidator(log), testConfig())
	return svc, grid
}

func mgmtDate(n int) string {
	return model.DayKey(model.Midnight(time.Now()).AddDate(0, 0, n))
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
func str(v string) *string   { return &v }

func TestManagementLoadSeedsGrid(t *testing.T) {
	client := &mockClient{
		fetchFunc: func(ctx context.Context, rangeStart, rangeEnd time.Time) (*model.CalendarData, error) {
			return &model.CalendarData{
				Pricelist: model.Pricelist{
					"double": {mgmtDate(1): 120, "not-a-date": 99},
				},
				Restrictions: []model.RestrictionRecord{
					{RoomType: "double", Date: mgmtDate(2), MinStay: 3, Closure: model.ClosureOpen},
				},
			}, nil
		},
	}
	svc, grid := setupManagement(t, client)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cell, ok := grid.Cell("double", mgmtDate(1))
	if !ok {
		t.Fatal("priced cell missing")
	}
	if cell.Values().Price != 120 {
		t.Errorf("expected price 120, got %v", cell.Values().Price)
	}
	cell, _ = grid.Cell("double", mgmtDate(2))
	if cell.Values().MinStay != 3 {
		t.Errorf("expected min stay 3, got %d", cell.Values().MinStay)
	}
	if grid.Dirty() {
		t.Error("freshly loaded grid must not be dirty")
	}
}

func TestManagementEditRoutesFields(t *testing.T) {
	svc, grid := setupManagement(t, &mockClient{})
	ctx := context.Background()

	cases := []struct {
		name string
		edit CellEdit
		want func(v mgmt.CellValues) bool
	}{
		{"price", CellEdit{RoomType: "double", Date: mgmtDate(1), Price: f64(150)},
			func(v mgmt.CellValues) bool { return v.Price == 150 }},
		{"quota", CellEdit{RoomType: "double", Date: mgmtDate(1), Quota: i(4)},
			func(v mgmt.CellValues) bool { return v.Quota == 4 }},
		{"closure", CellEdit{RoomType: "double", Date: mgmtDate(1), Closure: str(model.ClosureClosed)},
			func(v mgmt.CellValues) bool { return v.Closure == model.ClosureClosed }},
		{"no_ota", CellEdit{RoomType: "double", Date: mgmtDate(1), NoOTA: boolPtr(true)},
			func(v mgmt.CellValues) bool { return v.NoOTA }},
		{"min_stay", CellEdit{RoomType: "double", Date: mgmtDate(2), MinStay: i(2)},
			func(v mgmt.CellValues) bool { return v.MinStay == 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Edit(ctx, &tc.edit); err != nil {
				t.Fatalf("Edit failed: %v", err)
			}
			cell, ok := grid.Cell(tc.edit.RoomType, tc.edit.Date)
			if !ok {
				t.Fatal("edited cell missing")
			}
			if !tc.want(cell.Values()) {
				t.Errorf("edit not applied: %+v", cell.Values())
			}
		})
	}

	if err := svc.Edit(ctx, &CellEdit{RoomType: "double", Date: mgmtDate(1)}); err == nil {
		t.Error("edit without a field should be rejected")
	}
	if err := svc.Edit(ctx, &CellEdit{RoomType: "suite", Date: mgmtDate(1), Price: f64(10)}); err == nil {
		t.Error("unknown room type should be rejected")
	}
}

func boolPtr(v bool) *bool { return &v }

func TestManagementStayEditKeepsOtherStayFields(t *testing.T) {
	svc, grid := setupManagement(t, &mockClient{})
	ctx := context.Background()

	if err := svc.Edit(ctx, &CellEdit{RoomType: "single", Date: mgmtDate(3), MinStay: i(2)}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if err := svc.Edit(ctx, &CellEdit{RoomType: "single", Date: mgmtDate(3), MaxStay: i(7)}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	cell, _ := grid.Cell("single", mgmtDate(3))
	v := cell.Values()
	if v.MinStay != 2 || v.MaxStay != 7 {
		t.Errorf("partial stay edit clobbered sibling fields: %+v", v)
	}
}

func TestManagementSaveSendsOnlyDiffs(t *testing.T) {
	var savedPrices []model.PriceRecord
	var savedRestrictions []model.RestrictionRecord
	client := &mockClient{
		saveFunc: func(ctx context.Context, prices []model.PriceRecord, restrictions []model.RestrictionRecord, avails []model.AvailabilityRecord) error {
			savedPrices = prices
			savedRestrictions = restrictions
			return nil
		},
	}
	svc, grid := setupManagement(t, client)
	ctx := context.Background()

	if err := svc.Edit(ctx, &CellEdit{RoomType: "double", Date: mgmtDate(1), Price: f64(200)}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if err := svc.Edit(ctx, &CellEdit{RoomType: "single", Date: mgmtDate(2), MinStay: i(3)}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	result, err := svc.Save(ctx)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if result.Prices != 1 || result.Restrictions != 1 {
		t.Errorf("unexpected save result: %+v", result)
	}
	if len(savedPrices) != 1 || savedPrices[0].Price != 200 {
		t.Errorf("unexpected prices sent: %+v", savedPrices)
	}
	if len(savedRestrictions) != 1 || savedRestrictions[0].MinStay != 3 {
		t.Errorf("unexpected restrictions sent: %+v", savedRestrictions)
	}
	if grid.Dirty() {
		t.Error("grid must be clean after a successful save")
	}

	// A second save with no edits sends nothing.
	savedPrices = nil
	result, err = svc.Save(ctx)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if result.Prices != 0 || savedPrices != nil {
		t.Error("clean grid should not issue a save call")
	}
}

func TestManagementSaveFailureKeepsEdits(t *testing.T) {
	client := &mockClient{
		saveFunc: func(ctx context.Context, prices []model.PriceRecord, restrictions []model.RestrictionRecord, avails []model.AvailabilityRecord) error {
			return errors.New("backend down")
		},
	}
	svc, grid := setupManagement(t, client)
	ctx := context.Background()

	if err := svc.Edit(ctx, &CellEdit{RoomType: "double", Date: mgmtDate(1), Price: f64(200)}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if _, err := svc.Save(ctx); err == nil {
		t.Fatal("expected save failure to surface")
	}
	if !grid.Dirty() {
		t.Error("failed save must keep local edits for retry")
	}
	cell, _ := grid.Cell("double", mgmtDate(1))
	if cell.Values().Price != 200 {
		t.Error("failed save must not discard the edit")
	}
}

func TestManagementNotificationMergesRecords(t *testing.T) {
	svc, grid := setupManagement(t, &mockClient{})
	ctx := context.Background()

	payload, _ := json.Marshal(model.PriceRecord{RoomType: "double", Date: mgmtDate(1), Price: 99})
	n := &model.Notification{Entity: model.EntityPrice, Action: model.ActionUpdate, Payload: payload}
	if err := svc.ApplyNotification(ctx, n); err != nil {
		t.Fatalf("ApplyNotification failed: %v", err)
	}

	cell, _ := grid.Cell("double", mgmtDate(1))
	if cell.Values().Price != 99 {
		t.Errorf("merged price not visible, got %v", cell.Values().Price)
	}
	if grid.Dirty() {
		t.Error("a merge into a clean cell must move the baseline too")
	}

	// Reservation notifications are not this grid's concern.
	other := &model.Notification{Entity: model.EntityReservation, Action: model.ActionUpdate, Payload: []byte(`{}`)}
	if err := svc.ApplyNotification(ctx, other); err != nil {
		t.Errorf("reservation notification should be a no-op, got %v", err)
	}
}
