package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-optimizer-service/internal/domain"
)

var (
	minneapolis = domain.Coordinates{Lat: 44.9778, Lon: -93.2650}
	stPaul      = domain.Coordinates{Lat: 44.9537, Lon: -93.0900}
	chicago     = domain.Coordinates{Lat: 41.8781, Lon: -87.6298}
)

func TestMilesZeroForIdenticalPoints(t *testing.T) {
	assert.Zero(t, Miles(minneapolis, minneapolis))
	assert.Zero(t, RoadMiles(chicago, chicago))
}

func TestMilesSymmetry(t *testing.T) {
	ab := Miles(minneapolis, chicago)
	ba := Miles(chicago, minneapolis)
	assert.InDelta(t, ab, ba, 1e-9)

	rab := RoadMiles(minneapolis, stPaul)
	rba := RoadMiles(stPaul, minneapolis)
	assert.InDelta(t, rab, rba, 1e-9)
}

func TestMilesKnownDistances(t *testing.T) {
	// Downtown Minneapolis to downtown St. Paul is roughly 8.6 miles
	// straight-line; Minneapolis to Chicago roughly 355 miles.
	assert.InDelta(t, 8.6, Miles(minneapolis, stPaul), 0.5)
	assert.InDelta(t, 355.0, Miles(minneapolis, chicago), 3.0)
}

func TestRoadMilesAppliesFixedFactor(t *testing.T) {
	g := Miles(minneapolis, chicago)
	require.Greater(t, g, 0.0)
	assert.InDelta(t, g*RoadFactor, RoadMiles(minneapolis, chicago), 1e-9)
}

func TestMilesHandlesNearAntipodalPoints(t *testing.T) {
	a := domain.Coordinates{Lat: 0, Lon: 0}
	b := domain.Coordinates{Lat: 0.5, Lon: 179.7}

	d := Miles(a, b)
	// Half the Earth's circumference is about 12450 miles.
	assert.Greater(t, d, 12000.0)
	assert.Less(t, d, 12600.0)
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, domain.Coordinates{}, Centroid(nil))

	c := Centroid([]domain.Coordinates{
		{Lat: 44.0, Lon: -93.0},
		{Lat: 46.0, Lon: -95.0},
	})
	assert.InDelta(t, 45.0, c.Lat, 1e-9)
	assert.InDelta(t, -94.0, c.Lon, 1e-9)
}
