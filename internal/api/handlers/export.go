package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/gpx"
	"route-optimizer-service/internal/services"
)

type ExportHandler struct {
	Geocoder  *services.Geocoder
	Optimizer *services.Optimizer
}

// Export runs the pipeline and streams the result as a zip archive of
// one GPX file per route plus text and JSON manifests. The archive is
// built deterministically: identical input yields identical bytes.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateOptimizeRequest(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	res, _, err := runPipeline(r.Context(), h.Geocoder, h.Optimizer, req)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	archive, err := buildArchive(res)
	if err != nil {
		log.Printf("export archive failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="routes.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive); err != nil {
		log.Printf("export write failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func buildArchive(res services.OptimizeResult) ([]byte, error) {
	files, manifest, err := gpx.Export(res.RouteSet)
	if err != nil {
		return nil, fmt.Errorf("export routes: %w", err)
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// Entries carry the zero modification time so archive bytes do not
	// change between runs on the same input.
	add := func(name string, data []byte) error {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
		return nil
	}

	for _, f := range files {
		if err := add(f.Name, f.Data); err != nil {
			return nil, err
		}
	}
	if err := add("manifest.txt", []byte(manifest.Text())); err != nil {
		return nil, err
	}
	if err := add("manifest.json", append(manifestJSON, '\n')); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
