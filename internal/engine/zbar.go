package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// ZBarConfig controls the external zbarimg engine.
type ZBarConfig struct {
	// Binary is the zbarimg executable. Resolved on PATH when not absolute.
	Binary string

	// TempDir is where variant images are staged for the tool. Empty uses
	// the system temp directory.
	TempDir string
}

// DefaultZBarConfig returns the default external engine configuration.
func DefaultZBarConfig() ZBarConfig {
	return ZBarConfig{Binary: "zbarimg"}
}

// zbarEngine shells out to the zbar CLI scanner. It is the only MaxiCode
// path and a generic fallback for linear symbols and QR. The binary is
// provisioned lazily, once per process; a resolution failure surfaces as
// an engine error on every Attempt while other engines remain usable.
type zbarEngine struct {
	cfg ZBarConfig

	provision sync.Once
	binPath   string
	provErr   error
}

// NewZBar returns the zbarimg-backed external engine.
func NewZBar(cfg ZBarConfig) Engine {
	if cfg.Binary == "" {
		cfg.Binary = "zbarimg"
	}
	return &zbarEngine{cfg: cfg}
}

func (e *zbarEngine) Name() string { return "zbar" }

func (e *zbarEngine) Families() []Family {
	return []Family{FamilyMaxiCode, FamilyQR, FamilyLinear, FamilyPDF417, FamilyDataMatrix}
}

func (e *zbarEngine) Attempt(ctx context.Context, img image.Image) ([]RawHit, error) {
	bin, err := e.resolveBinary()
	if err != nil {
		return nil, &Error{Engine: e.Name(), Err: err}
	}

	path, cleanup, err := e.stageImage(img)
	if err != nil {
		return nil, &Error{Engine: e.Name(), Err: err}
	}
	defer cleanup()

	// -q suppresses the summary line; output is one SYMBOLOGY:payload
	// line per detected symbol.
	cmd := exec.CommandContext(ctx, bin, "-q", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Exit status 4 means "no symbol found", the normal miss outcome.
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 4 {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, &Error{Engine: e.Name(), Err: ctx.Err()}
		}
		return nil, &Error{Engine: e.Name(), Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String()))}
	}

	return parseZBarOutput(stdout.String(), img.Bounds()), nil
}

// resolveBinary locates the external tool once per process lifetime.
func (e *zbarEngine) resolveBinary() (string, error) {
	e.provision.Do(func() {
		bin := e.cfg.Binary
		if filepath.IsAbs(bin) {
			if _, err := os.Stat(bin); err != nil {
				e.provErr = fmt.Errorf("external decoder unavailable: %w", err)
				return
			}
			e.binPath = bin
			return
		}
		path, err := exec.LookPath(bin)
		if err != nil {
			e.provErr = fmt.Errorf("external decoder unavailable: %w", err)
			return
		}
		e.binPath = path
		slog.Debug("external decoder provisioned", "engine", e.Name(), "path", path)
	})
	return e.binPath, e.provErr
}

// stageImage writes the image to a temp PNG the external tool can read.
func (e *zbarEngine) stageImage(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp(e.cfg.TempDir, "symscan-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("stage image: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove staged image", "path", f.Name(), "error", err)
		}
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("stage image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("stage image: %w", err)
	}
	return f.Name(), cleanup, nil
}

// parseZBarOutput converts SYMBOLOGY:payload lines to raw hits. The tool
// reports no geometry in this mode, so hits carry the full image frame as
// their bounding polygon.
func parseZBarOutput(out string, bounds image.Rectangle) []RawHit {
	var hits []RawHit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		sym, payload, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		hits = append(hits, RawHit{
			Payload: []byte(payload),
			Family:  familyFromZBarSymbology(sym),
			Polygon: utils.RectPolygon(bounds),
		})
	}
	return hits
}

func familyFromZBarSymbology(sym string) Family {
	switch strings.ToUpper(sym) {
	case "QR-CODE", "QRCODE":
		return FamilyQR
	case "MAXICODE":
		return FamilyMaxiCode
	case "PDF417":
		return FamilyPDF417
	case "DATAMATRIX", "DATA-MATRIX":
		return FamilyDataMatrix
	case "AZTEC":
		return FamilyAztec
	default:
		return FamilyLinear
	}
}
