package normalizer

import (
	"regexp"
	"strings"
)

// atmWithdrawalRe matches raw descriptions that are just an amount and
// a time, which is how ATM withdrawals come through on some layouts.
var atmWithdrawalRe = regexp.MustCompile(`^\$[\d,]+\.?\d*\s+AT\s+\d{1,2}:\d{2}`)

// noiseRule is one substitution in the pattern phase. Rules run in
// order; order matters because later rules assume earlier noise is
// already gone.
type noiseRule struct {
	re      *regexp.Regexp
	replace string
}

var preProcessorRules = []noiseRule{
	// card number masks
	{regexp.MustCompile(`\bXX+\d{4}\b`), ""},
	// payment rail prefixes
	{regexp.MustCompile(`(?i)^(Payment\.ACH|Payment\.|ACH\s+)`), ""},
	// leading special characters from table borders
	{regexp.MustCompile(`^[=\-><]\s+`), ""},
	// transaction type prefixes
	{regexp.MustCompile(`(?i)^(RECUR\.?\s*PURCHASE\.?\s*|POS\s+(?:PURCHASE\s+)?AT\s+|PURCHASE\s+AT\s+)`), ""},
	{regexp.MustCompile(`(?i)\s+RECUR\s+PURCHASE\.?\s*`), " "},
	// leading stray digits ("7 Walmart")
	{regexp.MustCompile(`^\d{1,2}\s+`), ""},
	// store numbers glued to names (Autozone6252)
	{regexp.MustCompile(`(\w)\d{3,}(\s|$)`), "$1$2"},
	// trailing one/two character codes
	{regexp.MustCompile(`\s+[A-Z0-9]{1,2}$`), ""},
	// phone numbers in several formats
	{regexp.MustCompile(`\s*\d{3}-\d{3}-\d{4}`), ""},
	{regexp.MustCompile(`\s+\d{10}\b`), ""},
	{regexp.MustCompile(`\s+\d{3}-\d{7}`), ""},
	// long reference codes
	{regexp.MustCompile(`\s+[A-Z0-9]{10,}\b`), ""},
	{regexp.MustCompile(`\s+[a-f0-9]{8,}\b`), ""},
	{regexp.MustCompile(`\s+\d{8,}\b`), ""},
}

var postProcessorRules = []noiseRule{
	{regexp.MustCompile(`(?i)\s+WEB[ _](?:PMTS?|PAY)\s+\S+`), ""},
	// store # codes
	{regexp.MustCompile(`\s*#\s*\d+`), ""},
	// trailing all-caps gibberish (APPLEV)
	{regexp.MustCompile(`[-\s]+[A-Z]{5,}$`), ""},
	{regexp.MustCompile(`\s+\d{3}-\d{7}$`), ""},
	// percent-delimited codes (%01/31/2025%)
	{regexp.MustCompile(`%[^%]+%`), ""},
	// trailing zip codes
	{regexp.MustCompile(`\s+\d{4,5}$`), ""},
	// trailing "City ST"
	{regexp.MustCompile(`\s+[A-Z][a-z]+\s+[A-Z]{2}$`), ""},
	// trailing state codes
	{regexp.MustCompile(`\s+[A-Z]{2}\s*\d*$`), ""},
	// point-of-sale vendor dashes
	{regexp.MustCompile(`(?i)^(?:TST|SQ|PAW)\s*-\s*`), ""},
	// trailing location codes like "8 MN 7" or "425-9"
	{regexp.MustCompile(`\s+\d+\s+[A-Z]{2}\s+\d+$`), ""},
	{regexp.MustCompile(`\s+\d{3}-\d+$`), ""},
	// gas station OIL suffix
	{regexp.MustCompile(`(?i)\s+OIL$`), ""},
}

var tailRules = []noiseRule{
	// support domains
	{regexp.MustCompile(`(?i)\s+Help\.\w+\.Com`), ""},
	// highway numbers
	{regexp.MustCompile(`(?i)\s+Hwy\s+\d+`), ""},
	// stray hyphens
	{regexp.MustCompile(`\s+-\s*$`), ""},
	{regexp.MustCompile(`^\s*-\s+`), ""},
	// short trailing codes (A109B, EH)
	{regexp.MustCompile(`\s+[A-Z]\d+[A-Z]$`), ""},
	{regexp.MustCompile(`\s+[A-Z]{1,2}$`), ""},
}

var (
	spaceRunRe       = regexp.MustCompile(`\s+`)
	trailingNumberRe = regexp.MustCompile(`\s+\d+$`)
	capsAndRe        = regexp.MustCompile(`([A-Z])AND([A-Z])`)
	lowerUpperRe     = regexp.MustCompile(`([a-z])([A-Z])`)
)

type ruleAction int

const (
	// actionReturn ends cleaning with a fixed display name.
	actionReturn ruleAction = iota
	// actionExtract keeps only the capture of arg.
	actionExtract
	// actionStrip removes the prefix matched by arg.
	actionStrip
)

// processorRule handles payment-processor prefixes where the merchant
// name may or may not follow the prefix.
type processorRule struct {
	match   *regexp.Regexp
	action  ruleAction
	display string
	arg     *regexp.Regexp
}

var processorRules = []processorRule{
	// Squarespace invoices carry no merchant name after the prefix.
	{match: regexp.MustCompile(`(?i)^SQSP\s*\*`), action: actionReturn, display: "Squarespace"},
	// Cash App is followed by a personal name, not a merchant.
	{match: regexp.MustCompile(`(?i)^CASH\s+APP\s*\*`), action: actionReturn, display: "Cash App"},
	// BP pumps append location codes.
	{match: regexp.MustCompile(`(?i)^BP[#\d]`), action: actionReturn, display: "BP"},
	// Square carries the real merchant after the prefix.
	{match: regexp.MustCompile(`(?i)^SQ\s*\*`), action: actionExtract, arg: regexp.MustCompile(`(?i)SQ\s*\*\s*([A-Z][A-Z0-9&\s]+)`)},
	// WorldLine likewise.
	{match: regexp.MustCompile(`(?i)^WL\s*\*`), action: actionStrip, arg: regexp.MustCompile(`(?i)^WL\s*\*\s*`)},
}

// cleanPatterns is the rule-based noise removal phase. The returned
// flag is true when a rule fully resolved the merchant and no further
// cleaning should run.
func cleanPatterns(name string) (string, bool) {
	if len(name) < 3 {
		return name, false
	}

	if atmWithdrawalRe.MatchString(name) {
		return "ATM Withdrawal", true
	}

	for _, r := range preProcessorRules {
		name = r.re.ReplaceAllString(name, r.replace)
	}

	for _, pr := range processorRules {
		if !pr.match.MatchString(name) {
			continue
		}
		switch pr.action {
		case actionReturn:
			return pr.display, true
		case actionExtract:
			if m := pr.arg.FindStringSubmatch(name); m != nil {
				name = strings.TrimSpace(m[1])
			} else {
				name = strings.TrimSpace(pr.match.ReplaceAllString(name, ""))
			}
		case actionStrip:
			name = strings.TrimSpace(pr.arg.ReplaceAllString(name, ""))
		}
		break
	}

	for _, r := range postProcessorRules {
		name = r.re.ReplaceAllString(name, r.replace)
	}

	// Asterisk processor codes: WINRED* TRUMP NATI -> WINRED TRUMP NATI
	if idx := strings.Index(name, "*"); idx >= 0 {
		name = strings.TrimSpace(name[:idx]) + " " + strings.TrimSpace(name[idx+1:])
	}

	for _, r := range tailRules {
		name = r.re.ReplaceAllString(name, r.replace)
	}

	name = strings.TrimSpace(spaceRunRe.ReplaceAllString(name, " "))
	name = trailingNumberRe.ReplaceAllString(name, "")

	// De-compress concatenated all-caps names, including glued AND.
	if len(name) > 15 && name == strings.ToUpper(name) && !strings.Contains(name[:10], " ") {
		name = capsAndRe.ReplaceAllString(name, "$1 AND $2")
		name = lowerUpperRe.ReplaceAllString(name, "$1 $2")
	}

	return strings.TrimSpace(name), false
}
