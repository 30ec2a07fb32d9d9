package models

// DefaultTrainSpeed is the motion speed of every train, in pixels per second.
const DefaultTrainSpeed = 100

// Train is a simulated vehicle cycling a line's station sequence
type Train struct {
	ID                  string  `json:"id"`
	LineID              string  `json:"lineId"`
	CurrentStationIndex int     `json:"currentStationIndex"`
	Progress            float64 `json:"progress"`
	Position            Point   `json:"position"`
	Speed               float64 `json:"speed"`
	Color               string  `json:"color"`
}
