// Package interaction turns pointer clicks into network edits.
package interaction

import (
	"errors"
	"fmt"

	"transport-net/models"
	"transport-net/network"
)

const (
	DefaultStationRadius = 20.0
	DefaultLineRadius    = 10.0
)

// Tool is a toolbar selection.
type Tool string

const (
	ToolNone    Tool = "none"
	ToolStation Tool = "station"
	ToolLine    Tool = "line"
	ToolDelete  Tool = "delete"
)

// ParseTool validates a tool name.
func ParseTool(s string) (Tool, error) {
	switch Tool(s) {
	case ToolNone, ToolStation, ToolLine, ToolDelete:
		return Tool(s), nil
	}
	return ToolNone, fmt.Errorf("unknown tool %q", s)
}

// Mode is the resolver's state.
type Mode int

const (
	ModeNone Mode = iota
	ModePlacingStation
	ModeConnectingFirst
	ModeConnectingSecond
	ModeDeleting
)

func (m Mode) String() string {
	switch m {
	case ModePlacingStation:
		return "placing-station"
	case ModeConnectingFirst:
		return "connecting-first"
	case ModeConnectingSecond:
		return "connecting-second"
	case ModeDeleting:
		return "deleting"
	default:
		return "none"
	}
}

// Action names what a click did.
type Action string

const (
	ActionNone            Action = ""
	ActionStationPlaced   Action = "station-placed"
	ActionStationSelected Action = "station-selected"
	ActionLineCreated     Action = "line-created"
	ActionStationDeleted  Action = "station-deleted"
	ActionLineDeleted     Action = "line-deleted"
)

// Outcome is the result of one event.
type Outcome struct {
	Action    Action
	StationID string
	LineID    string
	Amount    float64
	Level     string
	Notice    string
	Err       error
}

// Graph is the hit-testing view of the network.
type Graph interface {
	StationAt(p models.Point, radius float64) (models.Station, bool)
	LineAt(p models.Point, radius float64) (models.Line, bool)
	Station(id string) (models.Station, bool)
	StationCount() int
}

// Commands performs the edits a click resolves to.
type Commands interface {
	PlaceStation(p models.Point) (models.Station, error)
	ConnectStations(a, b string) (models.Line, error)
	DeleteStation(id string) (float64, error)
	DeleteLine(id string) (float64, error)
}

// Resolver owns the tool state machine.
type Resolver struct {
	graph Graph
	cmds  Commands
	mode  Mode
	first string

	StationRadius float64
	LineRadius    float64
}

// NewResolver creates a resolver in ModeNone.
func NewResolver(graph Graph, cmds Commands) *Resolver {
	return &Resolver{
		graph:         graph,
		cmds:          cmds,
		StationRadius: DefaultStationRadius,
		LineRadius:    DefaultLineRadius,
	}
}

// Mode returns the current state.
func (r *Resolver) Mode() Mode { return r.mode }

// Selected returns the station picked as the first end of a new line, if any.
func (r *Resolver) Selected() string { return r.first }

// Tool returns the toolbar selection matching the current state.
func (r *Resolver) Tool() Tool {
	switch r.mode {
	case ModePlacingStation:
		return ToolStation
	case ModeConnectingFirst, ModeConnectingSecond:
		return ToolLine
	case ModeDeleting:
		return ToolDelete
	default:
		return ToolNone
	}
}

// SelectTool switches tools. Any pending line selection is dropped.
func (r *Resolver) SelectTool(tool Tool) Outcome {
	r.first = ""
	switch tool {
	case ToolStation:
		r.mode = ModePlacingStation
	case ToolLine:
		if r.graph.StationCount() < 2 {
			r.mode = ModeNone
			return Outcome{Level: models.NoticeWarning, Notice: "You need at least 2 stations to build a line"}
		}
		r.mode = ModeConnectingFirst
		return Outcome{Level: models.NoticeInfo, Notice: "Click the first station"}
	case ToolDelete:
		r.mode = ModeDeleting
	default:
		r.mode = ModeNone
	}
	return Outcome{}
}

// Cancel returns to ModeNone.
func (r *Resolver) Cancel() {
	r.mode = ModeNone
	r.first = ""
}

// Click resolves a pointer click at p according to the current mode.
func (r *Resolver) Click(p models.Point) Outcome {
	switch r.mode {
	case ModePlacingStation:
		return r.place(p)
	case ModeConnectingFirst, ModeConnectingSecond:
		return r.connect(p)
	case ModeDeleting:
		return r.remove(p)
	default:
		return Outcome{}
	}
}

func (r *Resolver) place(p models.Point) Outcome {
	st, err := r.cmds.PlaceStation(p)
	if err != nil {
		return failed(err, "Not enough money to build a station")
	}
	return Outcome{
		Action:    ActionStationPlaced,
		StationID: st.ID,
		Amount:    st.Cost,
		Level:     models.NoticeSuccess,
		Notice:    fmt.Sprintf("%s built (%.0f)", st.Name, st.Cost),
	}
}

func (r *Resolver) connect(p models.Point) Outcome {
	st, ok := r.graph.StationAt(p, r.StationRadius)
	if !ok {
		return Outcome{Level: models.NoticeInfo, Notice: "Click on a station"}
	}

	if r.mode == ModeConnectingFirst {
		r.first = st.ID
		r.mode = ModeConnectingSecond
		return Outcome{
			Action:    ActionStationSelected,
			StationID: st.ID,
			Level:     models.NoticeInfo,
			Notice:    fmt.Sprintf("%s selected, click another station", st.Name),
		}
	}

	if st.ID == r.first {
		return Outcome{Level: models.NoticeWarning, Notice: "Select a different station"}
	}

	first := r.first
	r.first = ""
	r.mode = ModeConnectingFirst

	line, err := r.cmds.ConnectStations(first, st.ID)
	if err != nil {
		return failed(err, "Not enough money to build a line")
	}
	return Outcome{
		Action: ActionLineCreated,
		LineID: line.ID,
		Level:  models.NoticeSuccess,
		Notice: fmt.Sprintf("%s built", line.Name),
	}
}

func (r *Resolver) remove(p models.Point) Outcome {
	if st, ok := r.graph.StationAt(p, r.StationRadius); ok {
		refund, err := r.cmds.DeleteStation(st.ID)
		if err != nil {
			return failed(err, "")
		}
		return Outcome{
			Action:    ActionStationDeleted,
			StationID: st.ID,
			Amount:    refund,
			Level:     models.NoticeSuccess,
			Notice:    fmt.Sprintf("%s demolished (+%.0f)", st.Name, refund),
		}
	}

	if line, ok := r.graph.LineAt(p, r.LineRadius); ok {
		refund, err := r.cmds.DeleteLine(line.ID)
		if err != nil {
			return failed(err, "")
		}
		return Outcome{
			Action: ActionLineDeleted,
			LineID: line.ID,
			Amount: refund,
			Level:  models.NoticeSuccess,
			Notice: fmt.Sprintf("%s removed (+%.0f)", line.Name, refund),
		}
	}

	return Outcome{Level: models.NoticeInfo, Notice: "Nothing to delete here"}
}

func failed(err error, fundsNotice string) Outcome {
	o := Outcome{Err: err, Level: models.NoticeError, Notice: err.Error()}
	switch {
	case errors.Is(err, network.ErrInsufficientFunds) && fundsNotice != "":
		o.Notice = fundsNotice
	case errors.Is(err, network.ErrStationInUse):
		o.Level = models.NoticeWarning
		o.Notice = "Remove the lines serving this station first"
	}
	return o
}
