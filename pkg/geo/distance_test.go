package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		wantKm     float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 13.5847, lng1: 124.2322,
			lat2: 13.5847, lng2: 124.2322,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name: "one degree of latitude",
			lat1: 13.0, lng1: 124.0,
			lat2: 14.0, lng2: 124.0,
			wantKm:    111.19,
			tolerance: 0.5,
		},
		{
			name: "virac to puraran",
			lat1: 13.5847, lng1: 124.2322,
			lat2: 13.8446, lng2: 124.3857,
			wantKm:    33.3,
			tolerance: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("Haversine() = %v, want %v +/- %v", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(13.5847, 124.2322, 13.8446, 124.3857)
	b := Haversine(13.8446, 124.3857, 13.5847, 124.2322)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Haversine not symmetric: %v vs %v", a, b)
	}
}
