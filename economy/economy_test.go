package economy

import (
	"testing"

	"transport-net/models"
)

func TestCosts(t *testing.T) {
	tests := []struct {
		n       int
		station float64
		line    float64
	}{
		{0, 1000, 500},
		{1, 1100, 550},
		{2, 1210, 605},
		{3, 1331, 666},
	}
	for _, tt := range tests {
		if got := StationCost(tt.n); got != tt.station {
			t.Errorf("StationCost(%d) = %v, want %v", tt.n, got, tt.station)
		}
		if got := LineCost(tt.n); got != tt.line {
			t.Errorf("LineCost(%d) = %v, want %v", tt.n, got, tt.line)
		}
	}

	for n := 1; n < 50; n++ {
		if StationCost(n) <= StationCost(n-1) || LineCost(n) <= LineCost(n-1) {
			t.Fatalf("costs not strictly increasing at %d", n)
		}
	}
}

func TestArrivalRevenue(t *testing.T) {
	tests := []struct {
		name        string
		stops       int
		connections int
		want        float64
	}{
		{"two stops, single line", 2, 1, 70},
		{"three stops", 3, 1, 80},
		{"interchange of two", 3, 2, 100},
		{"interchange of three", 2, 3, 105},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArrivalRevenue(tt.stops, tt.connections); got != tt.want {
				t.Errorf("ArrivalRevenue(%d, %d) = %v, want %v", tt.stops, tt.connections, got, tt.want)
			}
		})
	}
}

type stubGraph struct {
	stations []models.Station
	conns    map[string]int
	lines    int
}

func (g stubGraph) StationCount() int             { return len(g.stations) }
func (g stubGraph) LineCount() int                { return g.lines }
func (g stubGraph) Stations() []models.Station    { return g.stations }
func (g stubGraph) IsConnected(id string) bool    { return g.conns[id] > 0 }
func (g stubGraph) ConnectionCount(id string) int { return g.conns[id] }

func TestConnectivityRevenue(t *testing.T) {
	g := stubGraph{
		stations: []models.Station{{ID: "a", Revenue: 100}, {ID: "b", Revenue: 100}, {ID: "c"}},
		conns:    map[string]int{"a": 1, "b": 1},
		lines:    1,
	}
	if got := ConnectivityRevenue(g); got != 200 {
		t.Errorf("ConnectivityRevenue() = %v, want 200", got)
	}

	g.conns = nil
	if got := ConnectivityRevenue(g); got != 0 {
		t.Errorf("isolated stations earn %v, want 0", got)
	}
}

func TestEngine_Quote(t *testing.T) {
	g := stubGraph{
		stations: []models.Station{{ID: "a", Revenue: 100}, {ID: "b", Revenue: 100}},
		conns:    map[string]int{"a": 1, "b": 1},
		lines:    1,
	}
	q := NewEngine(1).Quote(g)
	if q.NextStationCost != 1210 || q.NextLineCost != 550 || q.RevenuePerSecond != 200 {
		t.Errorf("Quote() = %+v", q)
	}
}

func TestEngine_LineColorIsSeeded(t *testing.T) {
	a, b := NewEngine(99), NewEngine(99)
	for i := 0; i < 20; i++ {
		ca, cb := a.LineColor(), b.LineColor()
		if ca != cb {
			t.Fatalf("color %d differs between equal seeds: %s vs %s", i, ca, cb)
		}
		found := false
		for _, p := range Palette {
			if p == ca {
				found = true
			}
		}
		if !found {
			t.Fatalf("color %s not in palette", ca)
		}
	}
}
