package normalizer

import (
	"regexp"
	"strings"
)

// modelArtifactRes match explanatory fragments the models wrap around
// an answer despite the stop sequences.
var modelArtifactRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(No location information.*?\)`),
	regexp.MustCompile(`(?i)\(No location.*?\)`),
	regexp.MustCompile(`(?i)No location information provided.*`),
	regexp.MustCompile(`(?i)Yes, the transaction name is:?`),
	regexp.MustCompile(`(?i)The transaction name is:?`),
	regexp.MustCompile(`(?i)A fun one!`),
	regexp.MustCompile(`(?i)A fun transaction!`),
	regexp.MustCompile(`(?i)the transaction details:`),
}

var edgePunctRe = regexp.MustCompile(`^[,\s]+|[,\s]+$`)

// genericSuffixes are trailing words that add nothing to a merchant
// name ("Walmart Supercenter" -> "Walmart").
var genericSuffixes = []string{
	"Purchase", "Supercenter", "Store", "Location", "Branch",
	"Retailer", "LLC", "Inc", "Corporation", "Company",
}

// acronyms kept uppercase by the title-case fallback.
var acronyms = map[string]bool{
	"ATM": true, "POS": true, "ACH": true, "USA": true,
	"LLC": true, "INC": true, "BP": true, "ND": true, "MN": true,
}

// normalizeModelOutput fixes the recurring quirks of model answers:
// explanatory wrappers, shouting case, glued words, generic suffixes.
func normalizeModelOutput(name string) string {
	if name == "" {
		return name
	}

	for _, re := range modelArtifactRes {
		name = re.ReplaceAllString(name, "")
	}
	name = strings.TrimSpace(name)
	name = edgePunctRe.ReplaceAllString(name, "")

	if len(name) > 3 && name == strings.ToUpper(name) && hasLetter(name) {
		// Short all-caps alphabetic names are brand codes (BP, TST),
		// leave those alone.
		if !(len(name) <= 4 && isAlpha(name)) {
			name = titleWords(name)
		}
	}

	if strings.HasPrefix(strings.ToUpper(name), "THE ") {
		name = name[4:]
	}

	// COWBOYJACKS came back as CowboyJacks: split glued capitals.
	if !strings.Contains(name, " ") && hasUpperTail(name) {
		name = lowerUpperRe.ReplaceAllString(name, "$1 $2")
	}

	for _, suffix := range genericSuffixes {
		if strings.HasSuffix(name, " "+suffix) {
			name = strings.TrimSpace(name[:len(name)-len(suffix)-1])
			break
		}
	}

	return strings.TrimSpace(name)
}

// titleCaseFallback is the no-model path: split glued words and title
// case the shouting parts, keeping the acronym allowlist uppercase.
func titleCaseFallback(name string) string {
	name = lowerUpperRe.ReplaceAllString(name, "$1 $2")

	words := strings.Fields(name)
	for i, word := range words {
		switch {
		case acronyms[strings.ToUpper(word)]:
			words[i] = strings.ToUpper(word)
		case len(word) > 2 && word == strings.ToUpper(word) && hasLetter(word):
			words[i] = titleWord(word)
		}
	}
	return strings.Join(words, " ")
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	lower := strings.ToLower(w)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return s != ""
}

func hasUpperTail(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s[1:] {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
