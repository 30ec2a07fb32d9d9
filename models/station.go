package models

import "time"

// DefaultStationRevenue is the per-second revenue base of a connected station.
const DefaultStationRevenue = 100

// Station represents a station placed by the player
type Station struct {
	ID        string    `json:"id"`
	NetworkID string    `json:"networkId"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Type      string    `json:"type"`
	Cost      float64   `json:"cost"`
	Revenue   float64   `json:"revenue"`
	CreatedAt time.Time `json:"createdAt"`
}

// Position returns the station's map position.
func (s Station) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

// BaseRevenue returns the station revenue, falling back to the default when unset.
func (s Station) BaseRevenue() float64 {
	if s.Revenue <= 0 {
		return DefaultStationRevenue
	}
	return s.Revenue
}

// CreateStationRequest represents a station creation request
type CreateStationRequest struct {
	ID        string  `json:"id"`
	NetworkID string  `json:"networkId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Type      string  `json:"type"`
	Cost      float64 `json:"cost" binding:"gte=0"`
}
