package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bankai-project/bankai/pkg/config"
)

// OCR rasterizes every page with pdftoppm and runs tesseract on the
// images. Both tools must be on PATH.
type OCR struct {
	dpi      int
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewOCR(cfg config.OCRConfig, logger *slog.Logger) *OCR {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCR{
		dpi:      cfg.DPI,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

func (o *OCR) Method() string { return MethodOCR }

// Available reports whether the poppler and tesseract binaries are
// installed. Callers skip OCR entirely when they are not.
func (o *OCR) Available() bool {
	for _, tool := range []string{"pdftoppm", "tesseract"} {
		if _, err := exec.LookPath(tool); err != nil {
			o.logger.Debug("ocr tool missing", "tool", tool)
			return false
		}
	}
	return true
}

func (o *OCR) Extract(ctx context.Context, pdfPath string) (Result, error) {
	result := Result{Method: MethodOCR}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "bankai-ocr-*")
	if err != nil {
		return result, fmt.Errorf("create ocr work dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", rasterArgs(o.dpi, pdfPath, prefix)...)
	if out, rerr := cmd.CombinedOutput(); rerr != nil {
		return result, fmt.Errorf("pdftoppm %s: %w: %s", pdfPath, rerr, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return result, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(images) == 0 {
		return result, fmt.Errorf("pdftoppm produced no pages for %s", pdfPath)
	}
	sort.Strings(images)
	result.Pages = len(images)

	var sb strings.Builder
	for _, img := range images {
		text, terr := o.recognize(ctx, img)
		if terr != nil {
			o.logger.Warn("tesseract failed on page", "image", filepath.Base(img), "error", terr)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	result.Text = sb.String()
	if strings.TrimSpace(result.Text) == "" {
		return result, fmt.Errorf("ocr produced no text for %s", pdfPath)
	}

	o.logger.Debug("ocr extraction complete",
		"path", pdfPath, "pages", result.Pages, "chars", len(result.Text))
	return result, nil
}

func (o *OCR) recognize(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, "tesseract", recognizeArgs(imagePath, o.language)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

func rasterArgs(dpi int, pdfPath, outPrefix string) []string {
	return []string{"-r", strconv.Itoa(dpi), "-png", pdfPath, outPrefix}
}

// recognizeArgs builds the tesseract invocation. PSM 6 ("assume a
// uniform block of text") keeps statement columns on one line far
// better than the default page segmentation.
func recognizeArgs(imagePath, language string) []string {
	return []string{imagePath, "stdout", "-l", language, "--oem", "3", "--psm", "6"}
}
