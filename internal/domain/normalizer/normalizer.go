// Package normalizer turns raw statement descriptions into stable
// merchant display names. Cleaning runs in phases: cached answers,
// rule-based noise removal, a three-prompt model ensemble with
// confidence voting, and a title-case fallback when no model is
// reachable. Results are cached so the same raw text always maps to
// the same name across runs.
package normalizer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankai-project/bankai/pkg/config"
)

// similarMerchantLimit caps the history hints passed as prompt context.
const similarMerchantLimit = 3

type Normalizer struct {
	store  *Store
	ens    *ensemble
	logger *slog.Logger
}

// New builds a Normalizer. gen may be nil to force the rule-based
// path; an unreachable generator degrades the same way per call.
func New(store *Store, gen Generator, cfg config.LLMConfig, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}

	n := &Normalizer{store: store, logger: logger}
	if gen != nil {
		n.ens = &ensemble{
			gen:        gen,
			primary:    cfg.PrimaryModel,
			secondary:  cfg.SecondaryModel,
			multiModel: cfg.MultiModel,
			logger:     logger,
		}
	}
	return n
}

// Clean implements parser.Cleaner. amount and date are optional
// context that sharpens the model prompts; nil/"" is fine.
func (n *Normalizer) Clean(ctx context.Context, raw string, amount *decimal.Decimal, date string) string {
	if len(strings.TrimSpace(raw)) < 3 {
		return raw
	}

	if cached, ok := n.store.Lookup(raw); ok {
		return cached
	}

	name, final := cleanPatterns(raw)
	if final {
		n.store.Remember(raw, name)
		return name
	}

	if n.ens != nil && n.ens.gen.Available() && len(name) > 3 {
		cleaned := n.ens.clean(ctx, name, amount, date, n.store.SimilarMerchants(name, similarMerchantLimit))
		if cleaned != "" && !strings.EqualFold(cleaned, name) {
			cleaned = normalizeModelOutput(cleaned)
			if len(cleaned) >= 3 {
				n.store.Remember(raw, cleaned)
				return cleaned
			}
		}
	}

	name = titleCaseFallback(name)
	if len(name) < 3 {
		return raw
	}
	if name != raw {
		n.store.Remember(raw, name)
	}
	return name
}

// Flush persists the merchant cache.
func (n *Normalizer) Flush() error {
	return n.store.Flush()
}
