package models

import "time"

// DefaultLineType is the cosmetic type tag given to new lines and stations.
const DefaultLineType = "metro"

// Line represents an ordered path through stations
type Line struct {
	ID        string     `json:"id"`
	NetworkID string     `json:"networkId"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Type      string     `json:"type"`
	Stations  []LineStop `json:"stations"`
	CreatedAt time.Time  `json:"createdAt"`
}

// LineStop is one entry of a line's station sequence.
type LineStop struct {
	StationID string `json:"stationId"`
	Order     int    `json:"order"`

	// Joined fields
	Station *Station `json:"station,omitempty"`
}

// StationIDs returns the line's station references in sequence order.
func (l Line) StationIDs() []string {
	ids := make([]string, len(l.Stations))
	for i, stop := range l.Stations {
		ids[i] = stop.StationID
	}
	return ids
}

// References reports whether the line visits the given station.
func (l Line) References(stationID string) bool {
	for _, stop := range l.Stations {
		if stop.StationID == stationID {
			return true
		}
	}
	return false
}

// CreateLineRequest represents a line creation request
type CreateLineRequest struct {
	ID        string `json:"id"`
	NetworkID string `json:"networkId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color"`
	Type      string `json:"type"`
}

// AddStationToLineRequest appends a station to a line
type AddStationToLineRequest struct {
	StationID string `json:"stationId" binding:"required"`
}
