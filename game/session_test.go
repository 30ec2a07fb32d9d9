package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"transport-net/interaction"
	"transport-net/logging"
	"transport-net/models"
	"transport-net/network"
	"transport-net/simulation"
	"transport-net/store"
)

func testOptions() Options {
	return Options{
		Seed:       1,
		Simulation: simulation.DefaultConfig(),
		Logger:     logging.Discard(),
	}
}

func newGuestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), "s1", "u1", store.NewGuestStore(), "", testOptions())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// buildStarter places two stations 100px apart and connects them.
func buildStarter(t *testing.T, s *Session) (models.Station, models.Station, models.Line) {
	t.Helper()
	a, err := s.PlaceStation(models.Pt(0, 0))
	if err != nil {
		t.Fatalf("PlaceStation(a) error = %v", err)
	}
	b, err := s.PlaceStation(models.Pt(100, 0))
	if err != nil {
		t.Fatalf("PlaceStation(b) error = %v", err)
	}
	l, err := s.ConnectStations(a.ID, b.ID)
	if err != nil {
		t.Fatalf("ConnectStations() error = %v", err)
	}
	return a, b, l
}

func TestSession_GuestStartsWithFreshNetwork(t *testing.T) {
	s := newGuestSession(t)
	snap := s.Snapshot()

	if !snap.Guest {
		t.Error("Guest = false, want true")
	}
	if snap.Money != models.StartingMoney {
		t.Errorf("Money = %v, want %v", snap.Money, models.StartingMoney)
	}
	if snap.NextStationCost != 1000 || snap.NextLineCost != 500 {
		t.Errorf("costs = %v/%v, want 1000/500", snap.NextStationCost, snap.NextLineCost)
	}
	if snap.Tool != string(interaction.ToolNone) {
		t.Errorf("Tool = %q, want none", snap.Tool)
	}
}

func TestSession_StarterNetworkEconomy(t *testing.T) {
	s := newGuestSession(t)
	buildStarter(t, s)

	snap := s.Snapshot()
	if snap.Money != 7400 {
		t.Errorf("Money = %v, want 7400", snap.Money)
	}
	if snap.StationCount != 2 || snap.LineCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", snap.StationCount, snap.LineCount)
	}
	if len(snap.Trains) != 1 {
		t.Errorf("trains = %d, want 1", len(snap.Trains))
	}
	if snap.RevenuePerSecond != 200 {
		t.Errorf("RevenuePerSecond = %v, want 200", snap.RevenuePerSecond)
	}
	if snap.NextStationCost != 1210 || snap.NextLineCost != 550 {
		t.Errorf("next costs = %v/%v, want 1210/550", snap.NextStationCost, snap.NextLineCost)
	}
}

func TestSession_FrameCreditsArrivalAndPassiveRevenue(t *testing.T) {
	s := newGuestSession(t)
	buildStarter(t, s)

	res := s.Frame(time.Second)
	if len(res.Arrivals) != 1 {
		t.Fatalf("arrivals = %d, want 1", len(res.Arrivals))
	}
	if res.ArrivalRevenue != 70 {
		t.Errorf("ArrivalRevenue = %v, want 70", res.ArrivalRevenue)
	}
	if res.PassiveRevenue != 200 {
		t.Errorf("PassiveRevenue = %v, want 200", res.PassiveRevenue)
	}
	if got := s.Snapshot().Money; got != 7670 {
		t.Errorf("Money = %v, want 7670", got)
	}
}

func TestSession_MoneyNeverNegative(t *testing.T) {
	s := newGuestSession(t)

	var err error
	for i := 0; i < 50 && err == nil; i++ {
		_, err = s.PlaceStation(models.Pt(float64(i*50), 0))
		if m := s.Snapshot().Money; m < 0 {
			t.Fatalf("Money = %v after station %d", m, i+1)
		}
	}
	if !errors.Is(err, network.ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}
}

func TestSession_ClickFlow(t *testing.T) {
	s := newGuestSession(t)

	out := s.SelectTool(interaction.ToolLine)
	if out.Level != models.NoticeWarning {
		t.Errorf("line tool with no stations: level = %q, want warning", out.Level)
	}
	if snap := s.Snapshot(); snap.Tool != string(interaction.ToolNone) || len(snap.Notifications) != 1 {
		t.Errorf("tool = %q, notifications = %d; want none, 1", snap.Tool, len(snap.Notifications))
	}

	s.SelectTool(interaction.ToolStation)
	if out := s.Click(models.Pt(0, 0)); out.Action != interaction.ActionStationPlaced {
		t.Fatalf("first click action = %q", out.Action)
	}
	if out := s.Click(models.Pt(300, 0)); out.Action != interaction.ActionStationPlaced {
		t.Fatalf("second click action = %q", out.Action)
	}

	s.SelectTool(interaction.ToolLine)
	if out := s.Click(models.Pt(5, 5)); out.Action != interaction.ActionStationSelected {
		t.Fatalf("select action = %q", out.Action)
	}
	if snap := s.Snapshot(); snap.SelectedStation == "" {
		t.Error("SelectedStation empty after first pick")
	}
	if out := s.Click(models.Pt(298, -3)); out.Action != interaction.ActionLineCreated {
		t.Fatalf("connect action = %q (%s)", out.Action, out.Notice)
	}

	snap := s.Snapshot()
	if snap.LineCount != 1 || len(snap.Trains) != 1 {
		t.Errorf("lines = %d, trains = %d; want 1, 1", snap.LineCount, len(snap.Trains))
	}
	if snap.Tool != string(interaction.ToolLine) {
		t.Errorf("Tool = %q, want line", snap.Tool)
	}
	if len(s.Snapshot().Notifications) != 0 {
		t.Error("notifications not drained by Snapshot")
	}
}

func TestSession_DeleteToolPrefersStations(t *testing.T) {
	s := newGuestSession(t)
	buildStarter(t, s)

	s.SelectTool(interaction.ToolDelete)
	out := s.Click(models.Pt(0, 0))
	if !errors.Is(out.Err, network.ErrStationInUse) {
		t.Fatalf("deleting connected station: err = %v", out.Err)
	}

	out = s.Click(models.Pt(50, 4))
	if out.Action != interaction.ActionLineDeleted || out.Amount != 50 {
		t.Fatalf("line delete = %q/%v, want line-deleted/50", out.Action, out.Amount)
	}
	if snap := s.Snapshot(); len(snap.Trains) != 0 || snap.RevenuePerSecond != 0 {
		t.Errorf("trains = %d, revenue = %v after line removal", len(snap.Trains), snap.RevenuePerSecond)
	}

	out = s.Click(models.Pt(100, 0))
	if out.Action != interaction.ActionStationDeleted || out.Amount != 110 {
		t.Fatalf("station delete = %q/%v, want station-deleted/110", out.Action, out.Amount)
	}
}

func TestSession_PersistsEditsInOrder(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	st := mem.ForUser("u1")

	s, err := NewSession(ctx, "s1", "u1", st, "", testOptions())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer s.Close()

	_, b, l := buildStarter(t, s)
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	nets, err := st.GetNetworks(ctx)
	if err != nil || len(nets) != 1 {
		t.Fatalf("GetNetworks() = %d networks, %v", len(nets), err)
	}
	saved := nets[0]
	if saved.Money != 7400 {
		t.Errorf("saved money = %v, want 7400", saved.Money)
	}
	if len(saved.Stations) != 2 || len(saved.Lines) != 1 {
		t.Fatalf("saved counts = %d/%d, want 2/1", len(saved.Stations), len(saved.Lines))
	}
	if got := saved.Lines[0].StationIDs(); len(got) != 2 || got[1] != b.ID {
		t.Errorf("saved stops = %v", got)
	}

	if _, err := s.DeleteLine(l.ID); err != nil {
		t.Fatalf("DeleteLine() error = %v", err)
	}
	if _, err := s.DeleteStation(b.ID); err != nil {
		t.Fatalf("DeleteStation() error = %v", err)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	got, err := st.GetNetwork(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetNetwork() error = %v", err)
	}
	if got.Money != 7560 || len(got.Stations) != 1 || len(got.Lines) != 0 {
		t.Errorf("after deletes: money %v, %d stations, %d lines", got.Money, len(got.Stations), len(got.Lines))
	}
	if len(s.Snapshot().Notifications) != 0 {
		t.Error("unexpected failure notifications")
	}
}

func TestSession_ReloadsSavedNetwork(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()

	first, err := NewSession(ctx, "s1", "u1", mem.ForUser("u1"), "", testOptions())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	buildStarter(t, first)
	first.Close()

	second, err := NewSession(ctx, "s2", "u1", mem.ForUser("u1"), "", testOptions())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer second.Close()

	snap := second.Snapshot()
	if snap.Money != 7400 || snap.StationCount != 2 || snap.LineCount != 1 {
		t.Errorf("reloaded money %v, %d stations, %d lines", snap.Money, snap.StationCount, snap.LineCount)
	}
	if len(snap.Trains) != 1 {
		t.Errorf("reloaded trains = %d, want 1", len(snap.Trains))
	}
}

type failingStore struct {
	*store.GuestStore
}

func (failingStore) CreateStation(ctx context.Context, req models.CreateStationRequest) (*models.Station, error) {
	return nil, errors.New("connection refused")
}

func TestSession_PersistenceFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", "u1", failingStore{store.NewGuestStore()}, "", testOptions())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer s.Close()

	if _, err := s.PlaceStation(models.Pt(10, 10)); err != nil {
		t.Fatalf("PlaceStation() error = %v", err)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.StationCount != 1 || snap.Money != 9000 {
		t.Errorf("local state = %d stations, money %v", snap.StationCount, snap.Money)
	}
	if len(snap.Notifications) != 1 || snap.Notifications[0].Level != models.NoticeError {
		t.Fatalf("notifications = %+v, want one error", snap.Notifications)
	}
}
