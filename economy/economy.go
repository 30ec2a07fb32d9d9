// Package economy prices construction and computes network revenue.
package economy

import (
	"math"
	"math/rand/v2"
	"sync"

	"transport-net/models"
)

const (
	BaseStationCost = 1000.0
	BaseLineCost    = 500.0
	CostGrowth      = 1.10

	ArrivalBase       = 50.0
	ArrivalPerStation = 10.0
	InterchangeBonus  = 0.25
)

// Palette is the set of colors new lines are drawn from.
var Palette = []string{
	"#FF0000", "#00FF00", "#0000FF", "#FFFF00",
	"#FF00FF", "#00FFFF", "#FFA500", "#800080",
}

// StationCost returns the price of the next station when n stations exist.
func StationCost(n int) float64 {
	return math.Round(BaseStationCost * math.Pow(CostGrowth, float64(n)))
}

// LineCost returns the price of the next line when n lines exist.
func LineCost(n int) float64 {
	return math.Round(BaseLineCost * math.Pow(CostGrowth, float64(n)))
}

// ArrivalRevenue is the amount credited when a train reaches a station.
// stops is the number of stations on the train's line and connections the
// number of lines serving the arrival station.
func ArrivalRevenue(stops, connections int) float64 {
	revenue := ArrivalBase + ArrivalPerStation*float64(stops)
	if connections >= 2 {
		revenue *= 1 + InterchangeBonus*float64(connections-1)
	}
	return math.Round(revenue)
}

// Graph is the read-only view of the network the engine prices.
type Graph interface {
	StationCount() int
	LineCount() int
	Stations() []models.Station
	IsConnected(stationID string) bool
	ConnectionCount(stationID string) int
}

// ConnectivityRevenue sums the base revenue of every station served by at
// least one line. Isolated stations earn nothing.
func ConnectivityRevenue(g Graph) float64 {
	total := 0.0
	for _, s := range g.Stations() {
		if g.IsConnected(s.ID) {
			total += s.BaseRevenue()
		}
	}
	return total
}

// Quote is the set of economic figures displayed alongside the map.
type Quote struct {
	NextStationCost  float64 `json:"nextStationCost"`
	NextLineCost     float64 `json:"nextLineCost"`
	RevenuePerSecond float64 `json:"revenuePerSecond"`
}

// Engine applies the pricing rules and owns the line color source.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine whose color choices are drawn from seed.
func NewEngine(seed uint64) *Engine {
	return &Engine{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// LineCost implements network.Pricer.
func (e *Engine) LineCost(lineCount int) float64 {
	return LineCost(lineCount)
}

// LineColor implements network.Pricer. Colors are not unique across lines.
func (e *Engine) LineColor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Palette[e.rng.IntN(len(Palette))]
}

// Quote recomputes the displayed figures from the current graph.
func (e *Engine) Quote(g Graph) Quote {
	return Quote{
		NextStationCost:  StationCost(g.StationCount()),
		NextLineCost:     LineCost(g.LineCount()),
		RevenuePerSecond: ConnectivityRevenue(g),
	}
}

// Arrival prices a train arrival at stationID on a line with stops stations.
func (e *Engine) Arrival(g Graph, stops int, stationID string) float64 {
	return ArrivalRevenue(stops, g.ConnectionCount(stationID))
}
