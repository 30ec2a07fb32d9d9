// Package network holds the in-memory graph of a player's stations and lines.
//
// The graph is the single source of truth for a session. It validates every
// mutation up front and applies it in one step, so a rejected action leaves
// the network exactly as it was.
package network

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"transport-net/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStationInUse      = errors.New("station is used by a line")
	ErrInvalidEndpoints  = errors.New("a line needs two distinct stations")
	ErrNotFound          = errors.New("not found")
)

// RefundRate is the share of construction cost returned on deletion.
const RefundRate = 0.10

// Pricer supplies the line pricing and color policy applied by the graph.
type Pricer interface {
	LineCost(lineCount int) float64
	LineColor() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDs overrides how station and line identifiers are generated.
func WithIDs(fn func() string) Option {
	return func(g *Graph) { g.newID = fn }
}

// WithClock overrides the creation timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(g *Graph) { g.now = fn }
}

// Graph owns the stations and lines of one network.
type Graph struct {
	id       string
	userID   string
	name     string
	money    float64
	created  time.Time
	stations []models.Station
	lines    []models.Line

	pricer Pricer
	newID  func() string
	now    func() time.Time
}

// New builds a graph from a loaded network. Line stops are sorted by order and
// must reference stations of the same network.
func New(net models.Network, pricer Pricer, opts ...Option) (*Graph, error) {
	g := &Graph{
		id:      net.ID,
		userID:  net.UserID,
		name:    net.Name,
		money:   net.Money,
		created: net.CreatedAt,
		pricer:  pricer,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.stations = make([]models.Station, 0, len(net.Stations))
	for _, s := range net.Stations {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: station without id", ErrInvalidEndpoints)
		}
		s.NetworkID = net.ID
		g.stations = append(g.stations, s)
	}

	g.lines = make([]models.Line, 0, len(net.Lines))
	for _, l := range net.Lines {
		stops := make([]models.LineStop, len(l.Stations))
		copy(stops, l.Stations)
		sort.SliceStable(stops, func(i, j int) bool { return stops[i].Order < stops[j].Order })
		for i := range stops {
			if g.indexOfStation(stops[i].StationID) < 0 {
				return nil, fmt.Errorf("line %s references station %s: %w", l.ID, stops[i].StationID, ErrNotFound)
			}
			stops[i].Order = i
			stops[i].Station = nil
		}
		l.Stations = stops
		l.NetworkID = net.ID
		g.lines = append(g.lines, l)
	}

	return g, nil
}

// ID returns the network identifier.
func (g *Graph) ID() string { return g.id }

// UserID returns the owning user, or models.GuestUserID.
func (g *Graph) UserID() string { return g.userID }

// Money returns the current balance.
func (g *Graph) Money() float64 { return g.money }

// Credit adds amount to the balance. Revenue is the only caller.
func (g *Graph) Credit(amount float64) {
	g.money += amount
}

// StationCount returns the number of stations.
func (g *Graph) StationCount() int { return len(g.stations) }

// LineCount returns the number of lines.
func (g *Graph) LineCount() int { return len(g.lines) }

// AddStation debits cost and places a new station at pos.
func (g *Graph) AddStation(pos models.Point, cost float64) (models.Station, error) {
	if cost > g.money {
		return models.Station{}, fmt.Errorf("%w: station costs %.0f, balance is %.0f", ErrInsufficientFunds, cost, g.money)
	}

	station := models.Station{
		ID:        g.newID(),
		NetworkID: g.id,
		Name:      fmt.Sprintf("Station %d", len(g.stations)+1),
		X:         pos.X,
		Y:         pos.Y,
		Type:      models.DefaultLineType,
		Cost:      cost,
		Revenue:   models.DefaultStationRevenue,
		CreatedAt: g.now(),
	}

	g.money -= cost
	g.stations = append(g.stations, station)
	return station, nil
}

// DeleteStation removes an unreferenced station and credits its refund.
func (g *Graph) DeleteStation(id string) (float64, error) {
	idx := g.indexOfStation(id)
	if idx < 0 {
		return 0, fmt.Errorf("station %s: %w", id, ErrNotFound)
	}
	if g.IsConnected(id) {
		return 0, fmt.Errorf("station %s: %w", g.stations[idx].Name, ErrStationInUse)
	}

	refund := math.Round(g.stations[idx].Cost * RefundRate)
	g.money += refund
	g.stations = append(g.stations[:idx], g.stations[idx+1:]...)
	return refund, nil
}

// AddLine debits cost and connects a to b with a new two-stop line.
func (g *Graph) AddLine(a, b string, cost float64) (models.Line, error) {
	if g.indexOfStation(a) < 0 {
		return models.Line{}, fmt.Errorf("station %s: %w", a, ErrNotFound)
	}
	if g.indexOfStation(b) < 0 {
		return models.Line{}, fmt.Errorf("station %s: %w", b, ErrNotFound)
	}
	if a == b {
		return models.Line{}, ErrInvalidEndpoints
	}
	if cost > g.money {
		return models.Line{}, fmt.Errorf("%w: line costs %.0f, balance is %.0f", ErrInsufficientFunds, cost, g.money)
	}

	line := models.Line{
		ID:        g.newID(),
		NetworkID: g.id,
		Name:      fmt.Sprintf("Line %d", len(g.lines)+1),
		Color:     g.pricer.LineColor(),
		Type:      models.DefaultLineType,
		Stations: []models.LineStop{
			{StationID: a, Order: 0},
			{StationID: b, Order: 1},
		},
		CreatedAt: g.now(),
	}

	g.money -= cost
	g.lines = append(g.lines, line)
	return g.resolve(line), nil
}

// DeleteLine removes a line and credits a refund estimated from the cost of
// building a line at its current position. Stations are left in place.
func (g *Graph) DeleteLine(id string) (float64, error) {
	idx := g.indexOfLine(id)
	if idx < 0 {
		return 0, fmt.Errorf("line %s: %w", id, ErrNotFound)
	}

	refund := math.Round(g.pricer.LineCost(idx) * RefundRate)
	g.money += refund
	g.lines = append(g.lines[:idx], g.lines[idx+1:]...)
	return refund, nil
}

// Station looks up a station by id.
func (g *Graph) Station(id string) (models.Station, bool) {
	idx := g.indexOfStation(id)
	if idx < 0 {
		return models.Station{}, false
	}
	return g.stations[idx], true
}

// Line looks up a line by id, with its stops resolved.
func (g *Graph) Line(id string) (models.Line, bool) {
	idx := g.indexOfLine(id)
	if idx < 0 {
		return models.Line{}, false
	}
	return g.resolve(g.lines[idx]), true
}

// Stations returns the stations in creation order.
func (g *Graph) Stations() []models.Station {
	out := make([]models.Station, len(g.stations))
	copy(out, g.stations)
	return out
}

// Lines returns the lines in creation order, each stop joined to its station.
func (g *Graph) Lines() []models.Line {
	out := make([]models.Line, len(g.lines))
	for i, l := range g.lines {
		out[i] = g.resolve(l)
	}
	return out
}

// Network returns a detached copy of the whole network.
func (g *Graph) Network() models.Network {
	return models.Network{
		ID:        g.id,
		UserID:    g.userID,
		Name:      g.name,
		Money:     g.money,
		Stations:  g.Stations(),
		Lines:     g.Lines(),
		CreatedAt: g.created,
	}
}

// IsConnected reports whether at least one line references the station.
func (g *Graph) IsConnected(stationID string) bool {
	for _, l := range g.lines {
		if l.References(stationID) {
			return true
		}
	}
	return false
}

// ConnectionCount returns how many distinct lines pass through the station.
func (g *Graph) ConnectionCount(stationID string) int {
	n := 0
	for _, l := range g.lines {
		if l.References(stationID) {
			n++
		}
	}
	return n
}

func (g *Graph) resolve(l models.Line) models.Line {
	stops := make([]models.LineStop, len(l.Stations))
	for i, stop := range l.Stations {
		stops[i] = models.LineStop{StationID: stop.StationID, Order: stop.Order}
		if idx := g.indexOfStation(stop.StationID); idx >= 0 {
			s := g.stations[idx]
			stops[i].Station = &s
		}
	}
	l.Stations = stops
	return l
}

func (g *Graph) indexOfStation(id string) int {
	for i := range g.stations {
		if g.stations[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Graph) indexOfLine(id string) int {
	for i := range g.lines {
		if g.lines[i].ID == id {
			return i
		}
	}
	return -1
}
