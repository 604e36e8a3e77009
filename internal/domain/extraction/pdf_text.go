package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Structured reads the embedded text layer of a PDF page by page.
type Structured struct {
	logger *slog.Logger
}

func NewStructured(logger *slog.Logger) *Structured {
	if logger == nil {
		logger = slog.Default()
	}
	return &Structured{logger: logger}
}

func (s *Structured) Method() string { return MethodStructured }

// Extract returns the concatenated text of every page. The pdf library
// panics on some malformed files, so the whole walk is wrapped in
// recover and reported as an ordinary error.
func (s *Structured) Extract(ctx context.Context, pdfPath string) (result Result, err error) {
	result.Method = MethodStructured

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("recovered from pdf reader panic", "path", pdfPath, "panic", r)
			err = fmt.Errorf("read pdf %s: %v", pdfPath, r)
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return result, fmt.Errorf("open pdf %s: %w", pdfPath, err)
	}
	defer f.Close()

	result.Pages = reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, perr := page.GetPlainText(nil)
		if perr != nil {
			s.logger.Debug("skipping unreadable page", "path", pdfPath, "page", i, "error", perr)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	result.Text = sb.String()
	if LikelyScanned(result.Text, result.Pages) {
		s.logger.Info("text layer looks empty, statement is likely scanned",
			"path", pdfPath, "pages", result.Pages, "chars", len(result.Text))
	}

	return result, nil
}
