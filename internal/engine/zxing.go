package engine

import (
	"context"
	"fmt"
	"image"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// ZXingConfig controls the in-process ZXing engine.
type ZXingConfig struct {
	// Families constrains the symbologies to search. Empty means all
	// families the engine supports.
	Families []Family

	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// Multi enables multi-symbol detection in a single image.
	Multi bool
}

// zxingEngine decodes 1D and 2D symbols in-process via gozxing.
type zxingEngine struct {
	cfg ZXingConfig
}

// NewZXing returns the gozxing-backed engine. It covers every family
// except MaxiCode.
func NewZXing(cfg ZXingConfig) Engine {
	return &zxingEngine{cfg: cfg}
}

func (e *zxingEngine) Name() string { return "zxing" }

func (e *zxingEngine) Families() []Family {
	if len(e.cfg.Families) > 0 {
		return e.cfg.Families
	}
	return []Family{FamilyQR, FamilyAztec, FamilyDataMatrix, FamilyPDF417, FamilyLinear}
}

func (e *zxingEngine) Attempt(ctx context.Context, img image.Image) ([]RawHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Engine: e.Name(), Err: err}
	}

	source := gozxing.NewLuminanceSourceFromImage(img)
	bitmap, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		return nil, &Error{Engine: e.Name(), Err: fmt.Errorf("binarize: %w", err)}
	}

	hints := e.buildHints()

	var results []*gozxing.Result
	if e.cfg.Multi {
		reader := multi.NewGenericMultipleBarcodeReader(gozxing.NewMultiFormatReader())
		results, err = reader.DecodeMultiple(bitmap, hints)
	} else {
		var r *gozxing.Result
		r, err = gozxing.NewMultiFormatReader().Decode(bitmap, hints)
		if err == nil && r != nil {
			results = []*gozxing.Result{r}
		}
	}
	if err != nil {
		// ReaderException covers not-found, checksum and format errors:
		// all mean "no structurally intact symbol in this image".
		if _, ok := err.(gozxing.ReaderException); ok {
			return nil, nil
		}
		return nil, &Error{Engine: e.Name(), Err: err}
	}

	hits := make([]RawHit, 0, len(results))
	for _, r := range results {
		family := familyFromZXing(r.GetBarcodeFormat())
		hits = append(hits, RawHit{
			Payload: []byte(r.GetText()),
			Family:  family,
			Polygon: polygonFromResultPoints(r.GetResultPoints(), family, img.Bounds()),
		})
	}
	return hits, nil
}

func (e *zxingEngine) buildHints() map[gozxing.DecodeHintType]interface{} {
	hints := make(map[gozxing.DecodeHintType]interface{})
	var formats []gozxing.BarcodeFormat
	for _, f := range e.Families() {
		formats = append(formats, zxingFormatsForFamily(f)...)
	}
	if len(formats) > 0 {
		hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = formats
	}
	if e.cfg.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return hints
}

func zxingFormatsForFamily(f Family) []gozxing.BarcodeFormat {
	switch f {
	case FamilyQR:
		return []gozxing.BarcodeFormat{gozxing.BarcodeFormat_QR_CODE}
	case FamilyAztec:
		return []gozxing.BarcodeFormat{gozxing.BarcodeFormat_AZTEC}
	case FamilyDataMatrix:
		return []gozxing.BarcodeFormat{gozxing.BarcodeFormat_DATA_MATRIX}
	case FamilyPDF417:
		return []gozxing.BarcodeFormat{gozxing.BarcodeFormat_PDF_417}
	case FamilyLinear:
		return []gozxing.BarcodeFormat{
			gozxing.BarcodeFormat_CODE_128,
			gozxing.BarcodeFormat_CODE_39,
			gozxing.BarcodeFormat_EAN_8,
			gozxing.BarcodeFormat_EAN_13,
			gozxing.BarcodeFormat_UPC_A,
			gozxing.BarcodeFormat_UPC_E,
			gozxing.BarcodeFormat_ITF,
			gozxing.BarcodeFormat_CODABAR,
		}
	default:
		return nil
	}
}

func familyFromZXing(bf gozxing.BarcodeFormat) Family {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FamilyQR
	case gozxing.BarcodeFormat_AZTEC:
		return FamilyAztec
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FamilyDataMatrix
	case gozxing.BarcodeFormat_PDF_417:
		return FamilyPDF417
	case gozxing.BarcodeFormat_MAXICODE:
		return FamilyMaxiCode
	default:
		return FamilyLinear
	}
}

// polygonFromResultPoints derives the symbol's bounding polygon from the
// decoder's result points. For QR the points are finder-pattern centers,
// which sit 3.5 modules inside the symbol edge; the span between centers
// covers dimension-7 modules, so padding each side by a quarter of the
// span recovers the full extent of a version-1 symbol and bounds larger
// versions conservatively.
func polygonFromResultPoints(pts []gozxing.ResultPoint, family Family, bounds image.Rectangle) []utils.Point {
	if len(pts) == 0 {
		return utils.RectPolygon(bounds)
	}
	poly := make([]utils.Point, 0, len(pts))
	for _, p := range pts {
		poly = append(poly, utils.Point{X: p.GetX(), Y: p.GetY()})
	}
	box := utils.PolygonBounds(poly)
	if family == FamilyQR {
		padX := box.Width() / 4
		padY := box.Height() / 4
		box = utils.NewBox(box.MinX-padX, box.MinY-padY, box.MaxX+padX, box.MaxY+padY)
	}
	return utils.RectPolygon(box.ToRect(bounds))
}
