package network

import "transport-net/models"

// StationAt returns the earliest-created station within radius of p.
func (g *Graph) StationAt(p models.Point, radius float64) (models.Station, bool) {
	for _, s := range g.stations {
		if p.Distance(s.Position()) <= radius {
			return s, true
		}
	}
	return models.Station{}, false
}

// LineAt returns the first line with a segment within radius of p.
func (g *Graph) LineAt(p models.Point, radius float64) (models.Line, bool) {
	for _, l := range g.lines {
		for i := 1; i < len(l.Stations); i++ {
			a, okA := g.Station(l.Stations[i-1].StationID)
			b, okB := g.Station(l.Stations[i].StationID)
			if !okA || !okB {
				continue
			}
			if p.SegmentDistance(a.Position(), b.Position()) <= radius {
				return g.resolve(l), true
			}
		}
	}
	return models.Line{}, false
}
