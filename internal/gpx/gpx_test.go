package gpx

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-optimizer-service/internal/domain"
)

func stop(addr string, lat, lon float64, seq int) domain.Stop {
	return domain.Stop{
		GeocodeResult: domain.GeocodeResult{
			Address: addr,
			Status:  domain.StatusMatched,
			Coords:  domain.Coordinates{Lat: lat, Lon: lon},
		},
		Sequence: seq,
	}
}

func sampleSet() domain.RouteSet {
	depot := domain.GeocodeResult{
		Address: "1901 Depot St, Minneapolis, MN",
		Status:  domain.StatusMatched,
		Coords:  domain.Coordinates{Lat: 44.9778, Lon: -93.2650},
	}

	route := domain.Route{
		Index: 0,
		Stops: []domain.Stop{
			{GeocodeResult: depot, Sequence: 0},
			stop("10 First Ave, Minneapolis, MN", 44.99, -93.27, 1),
			stop("20 Second Ave, Minneapolis, MN", 45.00, -93.28, 2),
			{GeocodeResult: depot, Sequence: 3},
		},
		TotalDistanceMiles:       7.4,
		EstimatedDurationMinutes: 25,
	}
	route.Stops[1].Phone = "6125550100"

	return domain.RouteSet{Depot: &depot, Routes: []domain.Route{route}}
}

func TestExportIsDeterministic(t *testing.T) {
	set := sampleSet()

	first, manifestA, err := Export(set)
	require.NoError(t, err)
	second, manifestB, err := Export(set)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.True(t, bytes.Equal(first[0].Data, second[0].Data), "export must be byte-identical")
	assert.Equal(t, manifestA, manifestB)
	assert.Equal(t, manifestA.Text(), manifestB.Text())
}

func TestExportFileNaming(t *testing.T) {
	set := sampleSet()
	set.Routes = append(set.Routes, set.Routes[0])

	files, _, err := Export(set)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "route_01.gpx", files[0].Name)
	assert.Equal(t, "route_02.gpx", files[1].Name)
}

func TestExportedDocumentStructure(t *testing.T) {
	files, _, err := Export(sampleSet())
	require.NoError(t, err)

	var doc struct {
		Version   string `xml:"version,attr"`
		Waypoints []struct {
			Lat  float64 `xml:"lat,attr"`
			Lon  float64 `xml:"lon,attr"`
			Name string  `xml:"name"`
			Desc string  `xml:"desc"`
		} `xml:"wpt"`
		Tracks []struct {
			Segments []struct {
				Points []struct {
					Lat float64 `xml:"lat,attr"`
					Lon float64 `xml:"lon,attr"`
				} `xml:"trkpt"`
			} `xml:"trkseg"`
		} `xml:"trk"`
	}
	require.NoError(t, xml.Unmarshal(files[0].Data, &doc))

	assert.Equal(t, "1.1", doc.Version)

	// START, two numbered stops, END.
	require.Len(t, doc.Waypoints, 4)
	assert.True(t, strings.HasPrefix(doc.Waypoints[0].Name, "START: "))
	assert.True(t, strings.HasPrefix(doc.Waypoints[1].Name, "1. "))
	assert.True(t, strings.HasPrefix(doc.Waypoints[2].Name, "2. "))
	assert.True(t, strings.HasPrefix(doc.Waypoints[3].Name, "END: "))
	assert.Contains(t, doc.Waypoints[1].Desc, "Phone: 6125550100")

	// One track point per stop in visiting order, depot legs included.
	require.Len(t, doc.Tracks, 1)
	require.Len(t, doc.Tracks[0].Segments, 1)
	assert.Len(t, doc.Tracks[0].Segments[0].Points, 4)
}

func TestExportRoundTripsCoordinatesExactly(t *testing.T) {
	set := sampleSet()
	files, _, err := Export(set)
	require.NoError(t, err)

	var doc struct {
		Tracks []struct {
			Segments []struct {
				Points []struct {
					Lat float64 `xml:"lat,attr"`
					Lon float64 `xml:"lon,attr"`
				} `xml:"trkpt"`
			} `xml:"trkseg"`
		} `xml:"trk"`
	}
	require.NoError(t, xml.Unmarshal(files[0].Data, &doc))

	points := doc.Tracks[0].Segments[0].Points
	require.Len(t, points, len(set.Routes[0].Stops))
	for i, s := range set.Routes[0].Stops {
		assert.Equal(t, s.Coords.Lat, points[i].Lat, "lat drift at stop %d", i)
		assert.Equal(t, s.Coords.Lon, points[i].Lon, "lon drift at stop %d", i)
	}
}

func TestExportEscapesReservedCharacters(t *testing.T) {
	set := domain.RouteSet{Routes: []domain.Route{{
		Stops: []domain.Stop{
			stop(`Bob & Sue's <Plant> "Shop", 5 Elm St`, 44.9, -93.2, 0),
		},
	}}}

	files, _, err := Export(set)
	require.NoError(t, err)

	data := string(files[0].Data)
	assert.NotContains(t, data, `Bob & Sue`)
	assert.Contains(t, data, `&amp;`)
	assert.Contains(t, data, `&lt;Plant&gt;`)

	// The document must still parse, recovering the original text.
	var doc struct {
		Waypoints []struct {
			Name string `xml:"name"`
		} `xml:"wpt"`
	}
	require.NoError(t, xml.Unmarshal(files[0].Data, &doc))
	require.Len(t, doc.Waypoints, 1)
	assert.Contains(t, doc.Waypoints[0].Name, `Bob & Sue's <Plant> "Shop"`)
}

func TestManifestAggregates(t *testing.T) {
	set := sampleSet()
	m := BuildManifest(set)

	assert.Equal(t, 1, m.TotalRoutes)
	assert.Equal(t, 2, m.TotalStops)
	assert.InDelta(t, 7.4, m.TotalDistanceMiles, 1e-9)
	assert.Equal(t, "1901 Depot St, Minneapolis, MN", m.DepotAddress)

	require.Len(t, m.Routes, 1)
	r := m.Routes[0]
	assert.Equal(t, 1, r.RouteNumber)
	assert.Equal(t, 2, r.StopCount)
	require.Len(t, r.Stops, 2)
	assert.Equal(t, 1, r.Stops[0].Sequence)
	assert.Equal(t, "10 First Ave, Minneapolis, MN", r.Stops[0].Address)

	// The structured form serializes cleanly.
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_routes":1`)
}

func TestManifestTextHasNoTimestamps(t *testing.T) {
	m := BuildManifest(sampleSet())
	text := m.Text()

	assert.Contains(t, text, "DELIVERY ROUTE MANIFEST")
	assert.Contains(t, text, "ROUTE 1")
	assert.Contains(t, text, "Total Stops: 2")
	assert.NotContains(t, text, "Generated")
}
