package proj

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUTMK_ProjectionOrigin(t *testing.T) {
	x, y := ToUTMK(127.5, 38.0)
	assert.InDelta(t, 1000000.0, x, 0.01)
	assert.InDelta(t, 2000000.0, y, 0.01)
}

func TestToUTMK_KnownPoints(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		x, y     float64
	}{
		{"seoul city hall", 126.9779692, 37.5662952, 953898.3, 1952009.4},
		{"busan", 129.0756416, 35.1795543, 1143471.2, 1688277.0},
		{"jeju", 126.5311884, 33.4996213, 910009.5, 1501282.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ToUTMK(tt.lon, tt.lat)
			assert.InDelta(t, tt.x, x, 1.0)
			assert.InDelta(t, tt.y, y, 1.0)
		})
	}
}

func TestFromUTMK_RoundTrip(t *testing.T) {
	points := []struct{ lon, lat float64 }{
		{126.9779692, 37.5662952},
		{129.0756416, 35.1795543},
		{126.5311884, 33.4996213},
		{128.6, 36.0},
		{127.5, 38.0},
	}
	for _, p := range points {
		x, y := ToUTMK(p.lon, p.lat)
		lon, lat := FromUTMK(x, y)
		assert.InDelta(t, p.lon, lon, 1e-7)
		assert.InDelta(t, p.lat, lat, 1e-7)
	}
}

func TestToUTMK_DistancesAreMeters(t *testing.T) {
	// One degree of longitude at 37N is roughly 89km on the ground.
	x1, y1 := ToUTMK(127.0, 37.0)
	x2, y2 := ToUTMK(128.0, 37.0)
	dist := math.Hypot(x2-x1, y2-y1)
	assert.InDelta(t, 88976, dist, 100)
}
