package motion

import (
	"time"

	"transport-net/models"
)

// Model owns the trains of one session.
type Model struct {
	trains []*Train
	nextID int
	speed  float64
}

// NewModel creates an empty model whose trains run at speed px/s.
func NewModel(speed float64) *Model {
	if speed <= 0 {
		speed = models.DefaultTrainSpeed
	}
	return &Model{nextID: 1, speed: speed}
}

// Rebuild discards every train and starts one on each line that has at least
// two stations. Lines must have their stops resolved to stations.
func (m *Model) Rebuild(lines []models.Line) {
	m.trains = m.trains[:0]
	for _, line := range lines {
		if len(line.Stations) < 2 {
			continue
		}
		m.trains = append(m.trains, NewTrain(trainID(m.nextID), line, m.speed))
		m.nextID++
	}
}

// Advance moves every train by dt and returns the arrivals in train order.
func (m *Model) Advance(dt time.Duration) []Arrival {
	var arrivals []Arrival
	for _, t := range m.trains {
		if a, ok := t.Update(dt); ok {
			arrivals = append(arrivals, a)
		}
	}
	return arrivals
}

// Len returns the number of trains.
func (m *Model) Len() int { return len(m.trains) }

// Trains returns the render state of every train.
func (m *Model) Trains() []models.Train {
	out := make([]models.Train, len(m.trains))
	for i, t := range m.trains {
		out[i] = t.Snapshot()
	}
	return out
}
