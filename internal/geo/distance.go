// Package geo provides pure geodesic distance computations on the
// WGS-84 ellipsoid, plus the fixed road-distance adjustment used for
// clustering and locally estimated route totals.
package geo

import (
	"math"

	"route-optimizer-service/internal/domain"
)

// WGS-84 ellipsoid parameters.
const (
	semiMajorMeters = 6378137.0
	flattening      = 1.0 / 298.257223563

	metersPerMile = 1609.344

	// RoadFactor approximates real road travel distance from the
	// straight-line geodesic. Clustering, nearest-neighbor selection
	// and locally estimated totals use adjusted distances; radius
	// filtering uses the unadjusted geodesic.
	RoadFactor = 1.35

	convergence   = 1e-12
	maxIterations = 200
)

// Miles returns the geodesic distance between two coordinates in miles,
// computed with Vincenty's inverse formula on the WGS-84 ellipsoid.
// Near-antipodal pairs where the iteration fails to converge fall back
// to a spherical great-circle estimate.
func Miles(a, b domain.Coordinates) float64 {
	if a == b {
		return 0
	}
	meters, ok := vincentyMeters(a, b)
	if !ok {
		meters = haversineMeters(a, b)
	}
	return meters / metersPerMile
}

// RoadMiles returns the road-adjusted distance between two coordinates.
func RoadMiles(a, b domain.Coordinates) float64 {
	return Miles(a, b) * RoadFactor
}

// Centroid returns the arithmetic mean position of the given points.
// The flat average is adequate at delivery-area scale.
func Centroid(points []domain.Coordinates) domain.Coordinates {
	if len(points) == 0 {
		return domain.Coordinates{}
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return domain.Coordinates{Lat: lat / n, Lon: lon / n}
}

func vincentyMeters(p1, p2 domain.Coordinates) (float64, bool) {
	semiMinor := semiMajorMeters * (1 - flattening)

	phi1 := p1.Lat * math.Pi / 180
	phi2 := p2.Lat * math.Pi / 180
	deltaLon := (p2.Lon - p1.Lon) * math.Pi / 180

	// Reduced latitudes.
	u1 := math.Atan((1 - flattening) * math.Tan(phi1))
	u2 := math.Atan((1 - flattening) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := deltaLon
	var sinSigma, cosSigma, sigma, sinAlpha, cosSqAlpha, cos2SigmaM float64

	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Sqrt(
			math.Pow(cosU2*sinLambda, 2) +
				math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2),
		)
		if sinSigma == 0 {
			// Coincident points.
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			// Equatorial line.
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = deltaLon + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < convergence {
			uSq := cosSqAlpha * (semiMajorMeters*semiMajorMeters - semiMinor*semiMinor) / (semiMinor * semiMinor)
			bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

			return semiMinor * bigA * (sigma - deltaSigma), true
		}
	}

	return 0, false
}

func haversineMeters(p1, p2 domain.Coordinates) float64 {
	const earthRadiusMeters = 6371000.0

	phi1 := p1.Lat * math.Pi / 180
	phi2 := p2.Lat * math.Pi / 180
	dPhi := (p2.Lat - p1.Lat) * math.Pi / 180
	dLambda := (p2.Lon - p1.Lon) * math.Pi / 180

	a := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
