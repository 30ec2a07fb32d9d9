package models

import (
	"math"
	"testing"
)

func TestSegmentDistance(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"above the middle", Pt(5, 3), 3},
		{"on the segment", Pt(7, 0), 0},
		{"before the start", Pt(-3, 4), 5},
		{"past the end", Pt(13, 4), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.SegmentDistance(a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SegmentDistance = %v, want %v", got, tt.want)
			}
		})
	}

	if got := Pt(3, 4).SegmentDistance(a, a); got != 5 {
		t.Errorf("degenerate segment distance = %v, want 5", got)
	}
}

func TestPointArithmetic(t *testing.T) {
	p, q := Pt(1, 2), Pt(4, 6)
	if got := p.Distance(q); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
	if got := p.Lerp(q, 0.5); got != Pt(2.5, 4) {
		t.Errorf("Lerp = %v", got)
	}
	if got := q.Sub(p).Scale(2).Add(p); got != Pt(7, 10) {
		t.Errorf("Sub/Scale/Add = %v", got)
	}
	if got := p.Dot(q); got != 16 {
		t.Errorf("Dot = %v, want 16", got)
	}
}
