// Package gpx serializes ordered routes into GPX 1.1 documents and a
// route manifest. Output is byte-deterministic: no timestamps or other
// run-dependent state is embedded, so identical input yields identical
// documents.
package gpx

import (
	"encoding/xml"
	"fmt"

	"route-optimizer-service/internal/domain"
)

const (
	creator   = "route-optimizer-service"
	namespace = "http://www.topografix.com/GPX/1/1"

	depotSymbol = "Flag, Blue"
	stopSymbol  = "Flag, Green"
)

// File is one serialized GPX document.
type File struct {
	Name string
	Data []byte
}

type gpxDocument struct {
	XMLName   xml.Name    `xml:"gpx"`
	Version   string      `xml:"version,attr"`
	Creator   string      `xml:"creator,attr"`
	Namespace string      `xml:"xmlns,attr"`
	Metadata  gpxMetadata `xml:"metadata"`
	Waypoints []waypoint  `xml:"wpt"`
	Tracks    []track     `xml:"trk"`
}

type gpxMetadata struct {
	Name        string `xml:"name"`
	Description string `xml:"desc"`
}

type waypoint struct {
	Lat         float64 `xml:"lat,attr"`
	Lon         float64 `xml:"lon,attr"`
	Name        string  `xml:"name"`
	Description string  `xml:"desc,omitempty"`
	Symbol      string  `xml:"sym,omitempty"`
}

type track struct {
	Name     string         `xml:"name"`
	Segments []trackSegment `xml:"trkseg"`
}

type trackSegment struct {
	Points []trackPoint `xml:"trkpt"`
}

type trackPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// Export serializes every route in the set to its own GPX document and
// builds the aggregate manifest. Files are named route_NN.gpx with
// one-based numbering matching the manifest's route numbers.
func Export(set domain.RouteSet) ([]File, Manifest, error) {
	files := make([]File, 0, len(set.Routes))
	for i, route := range set.Routes {
		data, err := ExportRoute(route, set.Depot, i+1)
		if err != nil {
			return nil, Manifest{}, fmt.Errorf("export route %d: %w", i+1, err)
		}
		files = append(files, File{
			Name: fmt.Sprintf("route_%02d.gpx", i+1),
			Data: data,
		})
	}

	return files, BuildManifest(set), nil
}

// ExportRoute serializes one route. The depot, when present, appears
// as START and END waypoints; delivery stops are numbered in visiting
// order. Markup-reserved characters in free text are escaped by the
// XML encoder.
func ExportRoute(route domain.Route, depot *domain.GeocodeResult, number int) ([]byte, error) {
	doc := gpxDocument{
		Version:   "1.1",
		Creator:   creator,
		Namespace: namespace,
		Metadata: gpxMetadata{
			Name: fmt.Sprintf("Delivery Route %d", number),
			Description: fmt.Sprintf(
				"Route with %d stops, %.1f miles",
				route.StopCount(), route.TotalDistanceMiles,
			),
		},
	}

	if depot != nil {
		doc.Waypoints = append(doc.Waypoints, waypoint{
			Lat:         depot.Coords.Lat,
			Lon:         depot.Coords.Lon,
			Name:        "START: " + depot.Label(),
			Description: "Departure point",
			Symbol:      depotSymbol,
		})
	}

	for i, stop := range route.DeliveryStops() {
		desc := stop.Label()
		if stop.Phone != "" {
			desc += "\nPhone: " + stop.Phone
		}
		doc.Waypoints = append(doc.Waypoints, waypoint{
			Lat:         stop.Coords.Lat,
			Lon:         stop.Coords.Lon,
			Name:        fmt.Sprintf("%d. %s", i+1, stop.Label()),
			Description: desc,
			Symbol:      stopSymbol,
		})
	}

	if depot != nil {
		doc.Waypoints = append(doc.Waypoints, waypoint{
			Lat:         depot.Coords.Lat,
			Lon:         depot.Coords.Lon,
			Name:        "END: " + depot.Label(),
			Description: "Return point",
			Symbol:      depotSymbol,
		})
	}

	points := make([]trackPoint, 0, len(route.Stops))
	for _, stop := range route.Stops {
		points = append(points, trackPoint{Lat: stop.Coords.Lat, Lon: stop.Coords.Lon})
	}

	doc.Tracks = []track{{
		Name:     fmt.Sprintf("Route %d Track", number),
		Segments: []trackSegment{{Points: points}},
	}}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal gpx document: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')

	return out, nil
}
