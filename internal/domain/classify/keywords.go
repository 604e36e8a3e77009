package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Built-in keyword sets, used when the config files are absent. The
// JSON files override, never extend, these lists.
var (
	defaultIncomeKeywords = []string{
		"PAYROLL", "DIRECT DEP", "DIRECT DEPOSIT", "SALARY",
		"TAX REF", "IRS TREAS", "SSA TREAS", "INTEREST PAID", "REFUND",
	}
	defaultTransferKeywords = []string{
		"TRANSFER TO", "TRANSFER FROM", "ONLINE TRANSFER",
		"INTERNET TRANSFER", "XFER", "ACCT TRANSFER",
	}
	defaultPaymentApps = []string{
		"CASH APP", "VENMO", "PAYPAL", "ZELLE", "APPLE CASH",
	}
)

// Keywords holds the three uppercase substring sets driving
// classification, compiled into Aho-Corasick matchers. Immutable after
// load.
type Keywords struct {
	income      *ahocorasick.Matcher
	transfer    *ahocorasick.Matcher
	paymentApps *ahocorasick.Matcher
}

// LoadKeywords reads income_keywords.json, transfer_keywords.json and
// payment_apps.json from configDir. Each file holds one JSON object
// with a single list key. Missing or broken files fall back to the
// built-in defaults.
func LoadKeywords(configDir string, logger *slog.Logger) *Keywords {
	if logger == nil {
		logger = slog.Default()
	}

	income := loadList(configDir, "income_keywords.json", "income_keywords", defaultIncomeKeywords, logger)
	transfer := loadList(configDir, "transfer_keywords.json", "keywords", defaultTransferKeywords, logger)
	apps := loadList(configDir, "payment_apps.json", "payment_apps", defaultPaymentApps, logger)

	return &Keywords{
		income:      compile(income),
		transfer:    compile(transfer),
		paymentApps: compile(apps),
	}
}

func loadList(configDir, filename, key string, fallback []string, logger *slog.Logger) []string {
	path := filepath.Join(configDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("keyword config unreadable, using defaults", "file", filename, "error", err)
		return fallback
	}

	var list []string
	if raw, ok := doc[key]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			logger.Warn("keyword config has wrong shape, using defaults",
				"file", filename, "key", key, "error", fmt.Errorf("decode list: %w", err))
			return fallback
		}
	}
	if len(list) == 0 {
		return fallback
	}

	logger.Info("loaded keyword config", "file", filename, "keywords", len(list))
	return list
}

func compile(keywords []string) *ahocorasick.Matcher {
	upper := make([]string, len(keywords))
	for i, k := range keywords {
		upper[i] = strings.ToUpper(k)
	}
	return ahocorasick.NewStringMatcher(upper)
}

func matches(m *ahocorasick.Matcher, text string) bool {
	return len(m.Match([]byte(strings.ToUpper(text)))) > 0
}

// IsIncome reports whether text carries an income keyword.
func (k *Keywords) IsIncome(text string) bool { return matches(k.income, text) }

// IsTransfer reports whether text carries a transfer keyword.
func (k *Keywords) IsTransfer(text string) bool { return matches(k.transfer, text) }

// IsPaymentApp reports whether text names a peer-to-peer payment app.
func (k *Keywords) IsPaymentApp(text string) bool { return matches(k.paymentApps, text) }
