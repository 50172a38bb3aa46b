package domain

// Outcome of geocoding a single address.
type GeocodeStatus string

const (
	StatusMatched     GeocodeStatus = "matched"
	StatusNoMatch     GeocodeStatus = "no_match"
	StatusOutOfRadius GeocodeStatus = "out_of_radius"
	StatusError       GeocodeStatus = "error"
)

// GeocodeResult is the resolved location for one input address.
// One result is produced per input address, in input order, and is
// never mutated after the geocoding stage completes.
type GeocodeResult struct {
	// Address is the query string as supplied by the caller.
	Address string
	// OriginalAddress is a pass-through display label; it is never
	// used for geocoding or routing decisions.
	OriginalAddress string
	// Phone is optional caller-supplied contact detail carried into
	// exported waypoint descriptions.
	Phone string

	DisplayName string
	Coords      Coordinates

	// DistanceFromStartMiles is the unadjusted geodesic distance from
	// the depot, when a depot is known. Zero for the depot itself.
	DistanceFromStartMiles float64

	Status GeocodeStatus
	// ErrorDetail describes why the address did not match. For
	// StatusOutOfRadius it names the best candidate and its distance.
	ErrorDetail string
}

// Matched reports whether the result carries usable coordinates.
func (r GeocodeResult) Matched() bool { return r.Status == StatusMatched }

// Label returns the preferred display string for the stop.
func (r GeocodeResult) Label() string {
	if r.OriginalAddress != "" {
		return r.OriginalAddress
	}
	return r.Address
}
