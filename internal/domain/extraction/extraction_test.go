package extraction

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankai-project/bankai/pkg/config"
)

func TestLikelyScanned(t *testing.T) {
	t.Run("sparse text is scanned", func(t *testing.T) {
		assert.True(t, LikelyScanned("a few chars", 3))
	})

	t.Run("dense text is not", func(t *testing.T) {
		assert.False(t, LikelyScanned(strings.Repeat("transaction line\n", 100), 2))
	})

	t.Run("zero pages does not divide by zero", func(t *testing.T) {
		assert.True(t, LikelyScanned("", 0))
	})
}

func TestStructured_Extract_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	s := NewStructured(nil)
	_, err := s.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus.pdf")
}

func TestStructured_Extract_MissingFile(t *testing.T) {
	s := NewStructured(nil)
	_, err := s.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}

func TestStructured_Method(t *testing.T) {
	assert.Equal(t, MethodStructured, NewStructured(nil).Method())
}

func TestOCR_Args(t *testing.T) {
	t.Run("raster arguments", func(t *testing.T) {
		got := rasterArgs(400, "/tmp/stmt.pdf", "/tmp/work/page")
		assert.Equal(t, []string{"-r", "400", "-png", "/tmp/stmt.pdf", "/tmp/work/page"}, got)
	})

	t.Run("recognize arguments", func(t *testing.T) {
		got := recognizeArgs("/tmp/work/page-1.png", "eng")
		assert.Equal(t, []string{"/tmp/work/page-1.png", "stdout", "-l", "eng", "--oem", "3", "--psm", "6"}, got)
	})
}

func TestOCR_Method(t *testing.T) {
	cfg := config.OCRConfig{DPI: 400, Language: "eng", Timeout: time.Minute}
	assert.Equal(t, MethodOCR, NewOCR(cfg, nil).Method())
}
