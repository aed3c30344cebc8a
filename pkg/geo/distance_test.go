package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	if d := DistanceMeters(31.2304, 121.4737, 31.2304, 121.4737); d != 0 {
		t.Fatalf("expected 0 for identical points, got %f", d)
	}
}

func TestDistanceMetersKnownPairs(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMeters             float64
		tolerance              float64
	}{
		// Shanghai People's Square to Lujiazui, roughly 2.7 km.
		{"shanghai-crosstown", 31.2304, 121.4737, 31.2397, 121.4998, 2700, 400},
		// Beijing to Shanghai, roughly 1067 km.
		{"beijing-shanghai", 39.9042, 116.4074, 31.2304, 121.4737, 1067000, 5000},
		// One degree of latitude at the equator, roughly 111.19 km.
		{"one-degree-lat", 0, 0, 1, 0, 111195, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMeters(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.wantMeters) > tc.tolerance {
				t.Fatalf("expected ~%.0fm (±%.0f), got %.0fm", tc.wantMeters, tc.tolerance, got)
			}
		})
	}
}

func TestDistanceMetersSymmetry(t *testing.T) {
	a := DistanceMeters(39.9042, 116.4074, 31.2304, 121.4737)
	b := DistanceMeters(31.2304, 121.4737, 39.9042, 116.4074)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("distance should be symmetric: %f vs %f", a, b)
	}
}

func TestDistanceMetersNaNPropagates(t *testing.T) {
	if d := DistanceMeters(math.NaN(), 0, 0, 0); !math.IsNaN(d) {
		t.Fatalf("expected NaN to propagate, got %f", d)
	}
}
