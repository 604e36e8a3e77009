// Package extraction pulls raw text out of statement PDFs. Two
// extractors are provided: a structured one that reads the PDF text
// layer directly, and an OCR one that rasterizes pages and runs
// tesseract over the images. Scanned statements have no usable text
// layer, so downstream code runs both and picks the better result.
package extraction

import "context"

// Method names reported on extraction results and carried through to
// the final transactions.
const (
	MethodStructured = "structured"
	MethodOCR        = "ocr"
)

// Result is the raw text pulled from one PDF by one method.
type Result struct {
	Text   string
	Method string
	Pages  int
}

// Extractor turns a PDF on disk into raw text.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (Result, error)
	Method() string
}

// scannedThreshold is the chars-per-page floor below which a PDF is
// treated as a scanned image with no real text layer.
const scannedThreshold = 50

// LikelyScanned reports whether extracted text is too sparse to have
// come from a real text layer.
func LikelyScanned(text string, pages int) bool {
	if pages < 1 {
		pages = 1
	}
	return len(text)/pages < scannedThreshold
}
