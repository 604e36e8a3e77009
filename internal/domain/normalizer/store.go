package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/bankai-project/bankai/pkg/export"
)

// Store maps raw uppercase merchant text to display names and keeps a
// frequency table of how often each display name has been confirmed.
// It assumes a single writer per run: load at start, flush at end.
type Store struct {
	path       string
	cache      map[string]string
	frequency  map[string]int
	userEdited map[string]bool
	dirty      bool
	logger     *slog.Logger
}

// NewStore loads the JSON cache at path if it exists. A missing or
// unreadable file starts an empty cache rather than failing the run.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:       path,
		cache:      make(map[string]string),
		frequency:  make(map[string]int),
		userEdited: make(map[string]bool),
		logger:     logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// first run
	case err != nil:
		logger.Warn("could not read merchant cache", "path", path, "error", err)
	default:
		if jerr := json.Unmarshal(data, &s.cache); jerr != nil {
			logger.Warn("merchant cache is corrupt, starting fresh", "path", path, "error", jerr)
			s.cache = make(map[string]string)
		} else {
			logger.Info("loaded merchant cache", "path", path, "entries", len(s.cache))
		}
	}

	return s
}

func cacheKey(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Lookup returns the cached display name for a raw description.
func (s *Store) Lookup(raw string) (string, bool) {
	v, ok := s.cache[cacheKey(raw)]
	return v, ok
}

// Remember stores a cleaned name unless the key was loaded from a
// user-corrected CSV, which always wins within a run.
func (s *Store) Remember(raw, display string) {
	key := cacheKey(raw)
	if s.userEdited[key] {
		return
	}
	if s.cache[key] != display {
		s.cache[key] = display
		s.dirty = true
	}
}

// Len reports the number of cached mappings.
func (s *Store) Len() int { return len(s.cache) }

// RescanCSVs walks month folders (20YY-MM) under statementsDir and
// harvests merchant names from expenses.csv and income.csv. Rows there
// reflect user corrections, so they overwrite whatever the cache holds
// and are marked authoritative for the rest of the run. Frequencies
// feed the similar-merchant hints.
func (s *Store) RescanCSVs(statementsDir string) {
	monthDirs, err := filepath.Glob(filepath.Join(statementsDir, "20*-*"))
	if err != nil || len(monthDirs) == 0 {
		return
	}
	sort.Strings(monthDirs)

	counts := make(map[string]int)
	filesScanned := 0

	for _, dir := range monthDirs {
		info, serr := os.Stat(dir)
		if serr != nil || !info.IsDir() {
			continue
		}
		for _, csvName := range []string{"expenses.csv", "income.csv"} {
			records, rerr := export.ReadCSV(filepath.Join(dir, csvName))
			if rerr != nil {
				continue
			}
			filesScanned++
			for _, rec := range records {
				if len(rec.Place) >= 3 {
					counts[rec.Place]++
				}
			}
		}
	}

	loaded := 0
	for place, count := range counts {
		key := cacheKey(place)
		if s.cache[key] != place {
			s.cache[key] = place
			s.dirty = true
			loaded++
		}
		s.userEdited[key] = true
		s.frequency[place] = count
	}

	if loaded > 0 && filesScanned > 0 {
		high, medium, low := 0, 0, 0
		for _, c := range counts {
			switch {
			case c >= 5:
				high++
			case c >= 2:
				medium++
			default:
				low++
			}
		}
		s.logger.Info("loaded merchant corrections from CSVs",
			"merchants", loaded, "files", filesScanned,
			"high_confidence", high, "medium_confidence", medium, "low_confidence", low)
	}
}

// SimilarMerchants returns up to limit known merchants whose squeezed
// form contains or is contained by the squeezed input, most frequent
// first. Used as prompt context for ambiguous names.
func (s *Store) SimilarMerchants(name string, limit int) []string {
	if len(s.frequency) == 0 {
		return nil
	}

	nameNorm := squeeze(name)
	if len(nameNorm) < 3 {
		return nil
	}

	type candidate struct {
		merchant string
		freq     int
		distance int
	}

	var similar []candidate
	for merchant, freq := range s.frequency {
		merchantNorm := squeeze(merchant)
		if strings.Contains(merchantNorm, nameNorm) || strings.Contains(nameNorm, merchantNorm) {
			similar = append(similar, candidate{
				merchant: merchant,
				freq:     freq,
				distance: fuzzy.LevenshteinDistance(nameNorm, merchantNorm),
			})
		}
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].freq != similar[j].freq {
			return similar[i].freq > similar[j].freq
		}
		return similar[i].distance < similar[j].distance
	})

	if len(similar) > limit {
		similar = similar[:limit]
	}
	out := make([]string, len(similar))
	for i, c := range similar {
		out[i] = c.merchant
	}
	return out
}

func squeeze(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "&", "")
	return r.Replace(strings.ToUpper(s))
}

// Flush writes the cache back to disk when anything changed.
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode merchant cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write merchant cache %s: %w", s.path, err)
	}

	s.dirty = false
	s.logger.Info("saved merchant cache", "path", s.path, "entries", len(s.cache))
	return nil
}
