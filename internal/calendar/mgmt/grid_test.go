package mgmt

import (
	"testing"
	"time"

	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

var gridStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func dayKey(n int) string {
	return model.DayKey(gridStart.AddDate(0, 0, n))
}

func newTestGrid() *Grid {
	g := New(logger.Discard(), gridStart, 7, []string{"double", "single"})
	g.Load(
		[]model.PriceRecord{
			{RoomType: "double", Date: dayKey(0), Price: 100},
			{RoomType: "double", Date: dayKey(1), Price: 110},
			{RoomType: "single", Date: dayKey(0), Price: 60},
		},
		[]model.RestrictionRecord{
			{RoomType: "double", Date: dayKey(0), MinStay: 2, Closure: model.ClosureOpen},
		},
		[]model.AvailabilityRecord{
			{RoomType: "double", Date: dayKey(0), Quota: 5, MaxAvail: 8, ChannelAvail: 3},
		},
	)
	return g
}

func TestDirtyTrackingPerField(t *testing.T) {
	g := newTestGrid()

	if g.Dirty() {
		t.Fatal("expected a freshly loaded grid to be clean")
	}

	if err := g.SetPrice("double", dayKey(0), 120); err != nil {
		t.Fatalf("set price: %v", err)
	}
	cell, _ := g.Cell("double", dayKey(0))
	if !cell.Changed() || !g.Dirty() {
		t.Errorf("expected the cell and grid dirty after an edit")
	}

	// Setting the field back to its baseline clears the flag.
	if err := g.SetPrice("double", dayKey(0), 100); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if cell.Changed() || g.Dirty() {
		t.Errorf("expected the cell clean after restoring the baseline value")
	}
}

func TestDiffsEmitOnlyChangedCells(t *testing.T) {
	g := newTestGrid()

	_ = g.SetPrice("double", dayKey(1), 130)
	_ = g.SetStay("single", dayKey(2), 3, 0, 0, 0)
	_ = g.SetQuota("double", dayKey(0), 4)

	prices, restrictions, avails := g.Diffs()

	if len(prices) != 1 || prices[0].RoomType != "double" || prices[0].Date != dayKey(1) || prices[0].Price != 130 {
		t.Errorf("unexpected price diff %+v", prices)
	}
	if len(restrictions) != 1 || restrictions[0].RoomType != "single" || restrictions[0].MinStay != 3 {
		t.Errorf("unexpected restriction diff %+v", restrictions)
	}
	if len(avails) != 1 || avails[0].Quota != 4 || avails[0].ChannelAvail != 3 {
		t.Errorf("unexpected availability diff %+v", avails)
	}

	g.MarkSaved()
	prices, restrictions, avails = g.Diffs()
	if len(prices)+len(restrictions)+len(avails) != 0 {
		t.Errorf("expected no diffs after save, got %d/%d/%d", len(prices), len(restrictions), len(avails))
	}
}

func TestResetRestoresBaseline(t *testing.T) {
	g := newTestGrid()

	_ = g.SetPrice("double", dayKey(0), 200)
	_ = g.SetClosure("double", dayKey(0), model.ClosureClosed)
	g.Reset()

	cell, _ := g.Cell("double", dayKey(0))
	if cell.Values().Price != 100 || cell.Values().Closure != model.ClosureOpen {
		t.Errorf("expected baseline restored, got %+v", cell.Values())
	}
	if g.Dirty() {
		t.Errorf("expected grid clean after reset")
	}
}

func TestCopyPasteKeepsChannelAvail(t *testing.T) {
	g := newTestGrid()
	g.Load(nil, nil, []model.AvailabilityRecord{
		{RoomType: "double", Date: dayKey(1), Quota: 2, MaxAvail: 2, ChannelAvail: 9},
	})

	if err := g.Copy("double", dayKey(0)); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if err := g.Paste("double", dayKey(1)); err != nil {
		t.Fatalf("paste: %v", err)
	}

	cell, _ := g.Cell("double", dayKey(1))
	got := cell.Values()
	if got.Price != 100 || got.Quota != 5 || got.MinStay != 2 {
		t.Errorf("expected copied values, got %+v", got)
	}
	if got.ChannelAvail != 9 {
		t.Errorf("expected channel availability untouched by paste, got %d", got.ChannelAvail)
	}
}

func TestPasteWithoutCopyFails(t *testing.T) {
	g := newTestGrid()
	if err := g.Paste("double", dayKey(1)); err == nil {
		t.Errorf("expected paste without copy to fail")
	}
}

func TestCloneToRange(t *testing.T) {
	g := newTestGrid()

	if err := g.CloneToRange("double", dayKey(0), dayKey(2), dayKey(4)); err != nil {
		t.Fatalf("clone: %v", err)
	}

	for d := 2; d <= 4; d++ {
		cell, _ := g.Cell("double", dayKey(d))
		if cell.Values().Price != 100 || cell.Values().MinStay != 2 {
			t.Errorf("day %d: expected cloned values, got %+v", d, cell.Values())
		}
	}
	// Days outside the range are untouched.
	cell, _ := g.Cell("double", dayKey(5))
	if cell.Values().Price != 0 {
		t.Errorf("expected day 5 untouched, got %+v", cell.Values())
	}
}

func TestClosureEnumEnforced(t *testing.T) {
	g := newTestGrid()

	for _, closure := range []string{
		model.ClosureOpen, model.ClosureClosed, model.ClosureClosedArrival, model.ClosureClosedDeparture,
	} {
		if err := g.SetClosure("double", dayKey(0), closure); err != nil {
			t.Errorf("expected %q accepted: %v", closure, err)
		}
	}
	if err := g.SetClosure("double", dayKey(0), "half-open"); err == nil {
		t.Errorf("expected unknown closure rejected")
	}
}

func TestMergeKeepsLocalEdits(t *testing.T) {
	g := newTestGrid()

	// A clean cell follows the feed.
	g.MergePrice(model.PriceRecord{RoomType: "double", Date: dayKey(1), Price: 115})
	cell, _ := g.Cell("double", dayKey(1))
	if cell.Values().Price != 115 {
		t.Errorf("expected clean cell updated by merge, got %v", cell.Values().Price)
	}

	// A dirty cell keeps the local edit but the new baseline sticks.
	_ = g.SetPrice("double", dayKey(0), 150)
	g.MergePrice(model.PriceRecord{RoomType: "double", Date: dayKey(0), Price: 105})
	cell, _ = g.Cell("double", dayKey(0))
	if cell.Values().Price != 150 {
		t.Errorf("expected local edit preserved, got %v", cell.Values().Price)
	}
	g.Reset()
	if cell.Values().Price != 105 {
		t.Errorf("expected reset to land on the merged baseline, got %v", cell.Values().Price)
	}
}

func TestMergeAvailabilityChannelAlwaysFollows(t *testing.T) {
	g := newTestGrid()

	_ = g.SetQuota("double", dayKey(0), 2)
	g.MergeAvailability(model.AvailabilityRecord{RoomType: "double", Date: dayKey(0), Quota: 6, MaxAvail: 8, ChannelAvail: 7})

	cell, _ := g.Cell("double", dayKey(0))
	got := cell.Values()
	if got.Quota != 2 {
		t.Errorf("expected local quota edit preserved, got %d", got.Quota)
	}
	if got.ChannelAvail != 7 {
		t.Errorf("expected channel availability to follow the feed, got %d", got.ChannelAvail)
	}
}

func TestUnknownRoomTypeRejected(t *testing.T) {
	g := newTestGrid()
	if err := g.SetPrice("penthouse", dayKey(0), 500); err == nil {
		t.Errorf("expected unknown room type rejected")
	}
}
