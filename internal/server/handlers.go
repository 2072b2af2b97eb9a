package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/pipeline"
	"github.com/MeKo-Tech/symscan/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Engines: s.pipeline.Engines(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// scanHandler processes image scan requests.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, err := s.parseImageUpload(w, r)
	if err != nil {
		scanRequestsTotal.WithLabelValues("http", "error").Inc()
		return // error already written
	}

	pl, err := s.pipelineForRequest(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		scanRequestsTotal.WithLabelValues("http", "error").Inc()
		return
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := pl.Scan(ctx, img)
	duration := time.Since(start)
	scanDuration.WithLabelValues("http").Observe(duration.Seconds())

	if err != nil {
		status, label := scanErrorStatus(err)
		scanRequestsTotal.WithLabelValues("http", label).Inc()
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	scanRequestsTotal.WithLabelValues("http", "hit").Inc()
	scanHitsByFamily.WithLabelValues(string(res.Family), res.Engine).Inc()

	s.writeScanResponse(w, r, img, res)
}

// parseImageUpload reads and decodes the multipart image upload,
// writing an HTTP error on failure.
func (s *Server) parseImageUpload(w http.ResponseWriter, r *http.Request) (image.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, err
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, errors.New("file too large")
	}
	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, err
	}
	return img, nil
}

// pipelineForRequest returns the base pipeline, or a per-request one
// when family or policy overrides were supplied.
func (s *Server) pipelineForRequest(r *http.Request) (*pipeline.Pipeline, error) {
	family := formOrQuery(r, "family")
	policy := formOrQuery(r, "policy")
	if family == "" && policy == "" {
		return s.pipeline, nil
	}

	cfg := s.pipeline.Config()
	b := pipeline.NewBuilder().
		WithTimeout(cfg.Timeout).
		WithWorkers(cfg.MaxWorkers).
		WithZBar(cfg.ZBarEnabled, cfg.ZBar.Binary)
	if family != "" {
		b = b.WithFamily(engine.Family(family))
	} else {
		b = b.WithFamily(cfg.Family).WithPlan(cfg.Plan)
	}
	if policy != "" {
		b = b.WithPolicy(pipeline.Policy(policy))
	} else {
		b = b.WithPolicy(cfg.Policy)
	}
	return b.Build()
}

func formOrQuery(r *http.Request, key string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return r.URL.Query().Get(key)
}

// writeScanResponse renders the result in the requested format.
func (s *Server) writeScanResponse(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.DecodeResult) {
	format := formOrQuery(r, "format")

	switch format {
	case pipeline.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		out, err := pipeline.FormatResult(res, pipeline.FormatCSV)
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(out))
	case pipeline.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		out, _ := pipeline.FormatResult(res, pipeline.FormatText)
		_, _ = w.Write([]byte(out))
	case "overlay":
		s.writeOverlayResponse(w, r, img, res)
	default:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ScanResponse{Success: true, Result: res}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding scan response: %v\n", err)
		}
	}
}

// writeOverlayResponse returns the input image with the detected polygon
// drawn on it.
func (s *Server) writeOverlayResponse(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.DecodeResult) {
	polyCol := parseHexColor(formOrQuery(r, "poly"))
	if polyCol == nil {
		polyCol = color.RGBA{0, 255, 0, 255}
	}

	ov := pipeline.RenderOverlay(img, res, polyCol)
	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, ov)
}

// scanErrorStatus maps pipeline errors to HTTP status codes.
func scanErrorStatus(err error) (status int, metricLabel string) {
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound, "miss"
	case errors.Is(err, pipeline.ErrInvalidInput):
		return http.StatusBadRequest, "error"
	case errors.Is(err, pipeline.ErrTimeout):
		return http.StatusGatewayTimeout, "error"
	default:
		return http.StatusInternalServerError, "error"
	}
}

// parseHexColor parses colors like "#RRGGBB" or "RRGGBB".
func parseHexColor(s string) color.Color {
	if s == "" {
		return nil
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return nil
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return nil
	}
	return color.RGBA{uint8(rv), uint8(gv), uint8(bv), 255} //nolint:gosec // G115: RGB values fit in uint8
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ScanResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing error response: %v\n", err)
	}
}
