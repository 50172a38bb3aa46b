// routectl runs the route pipeline from the command line: geocode an
// address list, or plan full routes and write GPX files with a
// manifest.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"route-optimizer-service/internal/adapters/nominatim"
	"route-optimizer-service/internal/adapters/osrm"
	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/gpx"
	"route-optimizer-service/internal/ports"
	"route-optimizer-service/internal/services"
)

var (
	flagNominatimURL string
	flagUserAgent    string
	flagOSRMURL      string
	flagNoOSRM       bool
	flagDepot        string
	flagRadius       float64
	flagMaxStops     int
	flagOut          string
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded settings from .env")
	}

	root := &cobra.Command{
		Use:           "routectl",
		Short:         "Geocode address lists and plan delivery routes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagNominatimURL, "nominatim-url", os.Getenv("NOMINATIM_URL"), "geocoding service base URL")
	root.PersistentFlags().StringVar(&flagUserAgent, "user-agent", os.Getenv("NOMINATIM_USER_AGENT"), "User-Agent for geocoding requests (required)")
	root.PersistentFlags().StringVar(&flagDepot, "depot", "", "depot address (route start and end)")
	root.PersistentFlags().Float64Var(&flagRadius, "radius", 0, "exclude stops farther than this many miles from the depot (0 = no limit)")

	geocodeCmd := &cobra.Command{
		Use:   "geocode <address-file>",
		Short: "Resolve each address in the file and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runGeocode,
	}

	planCmd := &cobra.Command{
		Use:   "plan <address-file>",
		Short: "Geocode, cluster, and route the addresses, writing GPX files and a manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}
	planCmd.Flags().StringVar(&flagOSRMURL, "osrm-url", os.Getenv("OSRM_URL"), "trip solver base URL")
	planCmd.Flags().BoolVar(&flagNoOSRM, "no-osrm", false, "skip the external solver and route with the local heuristic")
	planCmd.Flags().IntVar(&flagMaxStops, "max-stops", 25, "maximum stops per route")
	planCmd.Flags().StringVar(&flagOut, "out", "routes", "output directory for GPX files and manifests")

	root.AddCommand(geocodeCmd, planCmd)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newGeocoder() (*services.Geocoder, error) {
	if strings.TrimSpace(flagUserAgent) == "" {
		return nil, fmt.Errorf("--user-agent (or NOMINATIM_USER_AGENT) is required")
	}
	provider, err := nominatim.NewClient(flagNominatimURL, flagUserAgent)
	if err != nil {
		return nil, err
	}
	return &services.Geocoder{Provider: provider}, nil
}

// readAddresses loads one address per line, skipping blanks and #
// comments.
func readAddresses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address file: %w", err)
	}
	defer f.Close()

	var addresses []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addresses = append(addresses, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read address file: %w", err)
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("address file %s is empty", path)
	}
	return addresses, nil
}

func buildGeocodeRequest(addresses []string) (services.GeocodeRequest, *int) {
	req := services.GeocodeRequest{RadiusMiles: flagRadius}

	var depotIdx *int
	if strings.TrimSpace(flagDepot) != "" {
		zero := 0
		depotIdx = &zero
		req.Addresses = append(req.Addresses, flagDepot)
	}
	req.Addresses = append(req.Addresses, addresses...)
	req.DepotIndex = depotIdx

	return req, depotIdx
}

func runGeocode(cmd *cobra.Command, args []string) error {
	addresses, err := readAddresses(args[0])
	if err != nil {
		return err
	}

	geocoder, err := newGeocoder()
	if err != nil {
		return err
	}

	req, depotIdx := buildGeocodeRequest(addresses)
	results, err := geocoder.Geocode(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	out := dto.GeocodeResponse{Stops: make([]dto.GeocodeResultResponse, 0, len(results))}
	for i, r := range results {
		mapped := toResultResponse(r)
		if depotIdx != nil && i == *depotIdx {
			out.Depot = &mapped
			continue
		}
		out.Stops = append(out.Stops, mapped)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runPlan(cmd *cobra.Command, args []string) error {
	addresses, err := readAddresses(args[0])
	if err != nil {
		return err
	}

	geocoder, err := newGeocoder()
	if err != nil {
		return err
	}

	req, depotIdx := buildGeocodeRequest(addresses)
	results, err := geocoder.Geocode(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	var depot *domain.GeocodeResult
	var stops []domain.GeocodeResult
	for i := range results {
		if depotIdx != nil && i == *depotIdx {
			if !results[i].Matched() {
				return fmt.Errorf("depot %q could not be placed: %s", results[i].Address, results[i].ErrorDetail)
			}
			depot = &results[i]
			continue
		}
		if !results[i].Matched() {
			log.Printf("skipping %q: %s (%s)", results[i].Address, results[i].Status, results[i].ErrorDetail)
		}
		stops = append(stops, results[i])
	}

	var primary ports.RouteSolver
	if !flagNoOSRM {
		primary = osrm.NewTripSolver(flagOSRMURL)
	}

	optimizer := &services.Optimizer{
		Clusterer: services.NewProximityClusterer(),
		Primary:   primary,
		Fallback:  services.NewNearestNeighborSolver(),
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Hour)
	defer cancel()

	res, err := optimizer.Optimize(ctx, services.OptimizeRequest{
		Stops:            stops,
		Depot:            depot,
		MaxStopsPerRoute: flagMaxStops,
	})
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	for _, f := range res.Failures {
		log.Printf("cluster %d (%d stops) failed: %v", f.ClusterID, f.StopCount, f.Err)
	}

	return writeOutputs(res)
}

func writeOutputs(res services.OptimizeResult) error {
	files, manifest, err := gpx.Export(res.RouteSet)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := os.MkdirAll(flagOut, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, f := range files {
		path := filepath.Join(flagOut, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if err := os.WriteFile(filepath.Join(flagOut, "manifest.txt"), []byte(manifest.Text()), 0o644); err != nil {
		return fmt.Errorf("write manifest.txt: %w", err)
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(flagOut, "manifest.json"), append(manifestJSON, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest.json: %w", err)
	}

	log.Printf("wrote %d route files and manifests to %s", len(files), flagOut)
	return nil
}

func toResultResponse(r domain.GeocodeResult) dto.GeocodeResultResponse {
	return dto.GeocodeResultResponse{
		Address:                r.Address,
		OriginalAddress:        r.OriginalAddress,
		Phone:                  r.Phone,
		DisplayName:            r.DisplayName,
		Lat:                    r.Coords.Lat,
		Lon:                    r.Coords.Lon,
		DistanceFromStartMiles: r.DistanceFromStartMiles,
		Status:                 string(r.Status),
		ErrorDetail:            r.ErrorDetail,
	}
}
