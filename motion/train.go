// Package motion moves trains along their lines.
//
// A train cycles its line's station sequence forever: after the last station
// it heads back to the first. Between two stations it follows a quadratic
// Bézier curve whose bulge alternates side from one segment to the next.
package motion

import (
	"fmt"
	"time"

	"transport-net/models"
)

// CurveOffset is the control point's distance from the segment midpoint, as a
// fraction of the segment length.
const CurveOffset = 0.15

// Arrival is emitted when a train reaches the next station of its line.
type Arrival struct {
	TrainID string
	Line    models.Line
	Station models.Station
}

// Train is one vehicle and the line snapshot it runs on.
type Train struct {
	ID                  string
	Line                models.Line
	CurrentStationIndex int
	Progress            float64
	Position            models.Point
	Speed               float64
	Color               string
}

// NewTrain places a train on the first station of line.
func NewTrain(id string, line models.Line, speed float64) *Train {
	t := &Train{
		ID:    id,
		Line:  line,
		Speed: speed,
		Color: line.Color,
	}
	if len(line.Stations) > 0 && line.Stations[0].Station != nil {
		t.Position = line.Stations[0].Station.Position()
	}
	return t
}

// Inert reports whether the train can never move.
func (t *Train) Inert() bool {
	return len(t.Line.Stations) < 2
}

// Update advances the train by dt. It returns the arrival, if the train
// reached a station during this step.
func (t *Train) Update(dt time.Duration) (Arrival, bool) {
	if t.Inert() {
		return Arrival{}, false
	}

	stops := t.Line.Stations
	next := (t.CurrentStationIndex + 1) % len(stops)
	from := stops[t.CurrentStationIndex].Station
	to := stops[next].Station
	if from == nil || to == nil {
		return Arrival{}, false
	}

	a, b := from.Position(), to.Position()
	d := a.Distance(b)
	if d == 0 {
		t.Progress = 1
	} else {
		ms := float64(dt) / float64(time.Millisecond)
		t.Progress += (t.Speed * ms / 1000) / d
	}

	if t.Progress >= 1 {
		t.Progress = 0
		t.CurrentStationIndex = next
		t.Position = b
		return Arrival{TrainID: t.ID, Line: t.Line, Station: *to}, true
	}

	t.Position = Bezier(a, ControlPoint(a, b, t.CurrentStationIndex), b, t.Progress)
	return Arrival{}, false
}

// Snapshot returns the train's render state.
func (t *Train) Snapshot() models.Train {
	return models.Train{
		ID:                  t.ID,
		LineID:              t.Line.ID,
		CurrentStationIndex: t.CurrentStationIndex,
		Progress:            t.Progress,
		Position:            t.Position,
		Speed:               t.Speed,
		Color:               t.Color,
	}
}

// ControlPoint returns the Bézier control point of the segment a→b. Even
// segments bend to the left of travel, odd segments to the right.
func ControlPoint(a, b models.Point, segment int) models.Point {
	mid := a.Lerp(b, 0.5)
	d := a.Distance(b)
	if d == 0 {
		return mid
	}
	dir := b.Sub(a).Scale(1 / d)
	perp := models.Pt(-dir.Y, dir.X)
	sign := 1.0
	if segment%2 != 0 {
		sign = -1
	}
	return mid.Add(perp.Scale(sign * CurveOffset * d))
}

// Bezier evaluates the quadratic Bézier curve p0, c, p1 at t.
func Bezier(p0, c, p1 models.Point, t float64) models.Point {
	u := 1 - t
	return p0.Scale(u * u).Add(c.Scale(2 * u * t)).Add(p1.Scale(t * t))
}

func trainID(n int) string {
	return fmt.Sprintf("train-%d", n)
}
