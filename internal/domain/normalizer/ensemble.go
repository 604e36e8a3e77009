package normalizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankai-project/bankai/pkg/ollama"
)

// Generator is the slice of the model client the ensemble needs.
// *ollama.Client satisfies it; tests inject stubs.
type Generator interface {
	Available() bool
	Models() []string
	Generate(ctx context.Context, model, prompt string, opts ollama.Options) (string, error)
}

// ensemble runs three differently-phrased prompts, sanitizes and
// scores each answer, and picks a winner by weighted voting. One noisy
// model answer should not be able to rename a merchant on its own.
type ensemble struct {
	gen        Generator
	primary    string
	secondary  string
	multiModel bool
	logger     *slog.Logger
}

// stopSequences cut generation off before the model starts explaining
// itself or echoing the prompt scaffold.
var stopSequences = []string{
	"\n", "Transaction", "Rules", "Example", "Input:", "Remove:",
	"REMOVE", "FIX:", "Examples:", "\n\n", "Valid:", "Good:", "Bad:",
}

const extractionPrompt = `Extract clean business name from transaction.%s

REMOVE ALL:
- City/state names and abbreviations (any city, ST, CA, etc.)
- Store/location numbers (#1234, 00001000, 50020)
- Reference codes (10+ digit strings, alphanumeric codes)
- Payment codes (WEB PMTS, ACH, POS, etc.)
- Asterisks and special prefixes (*, SQ*, TST*, YSI*)
- Direction words (West, East, North, South)

FIX:
- Add spaces to compressed words (NAMEHERE -> Name Here)
- Expand abbreviations (Elec -> Electric, Co -> Company, Inc)
- Keep recognized brand codes (BP, 7-Eleven, etc.)
- Proper capitalization

Examples:
"THE HOME DEPOT #3701 CITYNAME ST" -> "Home Depot"
"RESTAURANTINC CITYNAME" -> "Restaurant Inc"
"Electric Co WEB PMTS CODE123" -> "Electric Company"
"YSI* FACILITY NAME WEST CITY ST 00001000" -> "YSI Facility Name"
"COMPRESSEDNAME CITY ST" -> "Compressed Name"
"BP#9267972HWY 13BP CITYNAME ST" -> "BP"
"COWBOYJACKS-APPLEV PHONE# ST" -> "Cowboy Jacks"
"DECOR&MOREFROM RUE CITY ST" -> "Decor & More"
"PIKEAND PINTGRILLINC CITY ST" -> "Pike and Pint Grill Inc"

Transaction: %s
Name:`

const locationPrompt = `Clean merchant name - remove only location info:

Remove:
- City names
- State codes (ND, MN, CA, etc.)
- Direction words (West, East)
- Store numbers

Keep business name intact.

Input: %s
Output:`

const validationPrompt = `Is this a valid business name? If not, provide corrected version.%s

Good: "Home Depot", "Cash App", "BP", "Squarespace"
Bad: "Purchase", "Recur Purchase", "POS", "WL Steam"

Transaction: %s
Valid:`

// clean runs the three-prompt ensemble. Returns "" when no usable
// answer came back.
func (e *ensemble) clean(ctx context.Context, merchant string, amount *decimal.Decimal, date string, similar []string) string {
	promptContext := ""
	if amount != nil {
		promptContext += fmt.Sprintf(" Amount: $%s.", amount.StringFixed(2))
	}
	if date != "" {
		promptContext += fmt.Sprintf(" Date: %s.", date)
	}
	if len(similar) > 0 {
		promptContext += fmt.Sprintf("\nSimilar merchants in your history: %s", strings.Join(similar, ", "))
	}

	prompts := []string{
		fmt.Sprintf(extractionPrompt, promptContext, merchant),
		fmt.Sprintf(locationPrompt, merchant),
		fmt.Sprintf(validationPrompt, promptContext, merchant),
	}
	models := e.modelSequence()

	var results []string
	var confidences []float64

	for idx, prompt := range prompts {
		temperature := 0.0
		if idx == 2 {
			temperature = 0.1
		}

		answer, err := e.gen.Generate(ctx, models[idx], prompt, ollama.Options{
			Temperature: temperature,
			NumPredict:  35,
			TopP:        0.9,
			Stop:        stopSequences,
		})
		if err != nil {
			e.logger.Debug("ensemble prompt failed", "prompt", idx, "model", models[idx], "error", err)
			continue
		}

		cleaned, ok := sanitizeResponse(answer, merchant)
		if !ok {
			continue
		}
		results = append(results, cleaned)
		confidences = append(confidences, responseConfidence(cleaned, merchant, idx))
	}

	switch len(results) {
	case 0:
		return ""
	case 1:
		return results[0]
	default:
		return voteWeighted(results, confidences)
	}
}

// modelSequence assigns a model to each prompt. With two models the
// location prompt goes to the secondary for diversity; the extraction
// and validation prompts stay on the primary for consistency.
func (e *ensemble) modelSequence() [3]string {
	available := e.gen.Models()

	primary, secondary := "", ""
	for _, m := range available {
		if strings.Contains(m, e.primary) && primary == "" {
			primary = m
		}
		if strings.Contains(m, e.secondary) && secondary == "" {
			secondary = m
		}
	}
	if primary == "" && len(available) > 0 {
		primary = available[0]
	}

	if !e.multiModel || len(available) < 2 {
		return [3]string{primary, primary, primary}
	}

	if secondary == "" {
		for _, m := range available {
			if m != primary {
				secondary = m
				break
			}
		}
	}
	return [3]string{primary, secondary, primary}
}

// responseMarkers signal the model glued a second answer or prompt
// fragment onto the name; everything from the marker on is dropped.
var responseMarkers = []string{
	" Merchant:", " Business:", " Name:", " Clean name:",
	" Input:", " Transaction:", " Examples:", " REMOVE",
}

var responseArtifactPrefixes = []string{
	"SQ*", "SQ *", "TST*", "TST *", "WL*", "WL *", "YSI*", "YSI *", "XX", "POS ",
}

var labelPrefixes = []string{
	"Output:", "Answer:", "Result:", "Clean name:", "Business:", "Business name:",
	"Name:", "The business name is:", "Merchant:", "Extract:", "Transaction:",
	"Critical rules:", "Critical Rules Applied:", "Rules for extraction:",
	"Examples:", "You are", "Based on", "Simplify:", "Input:", "REMOVE ALL:",
	"KEEP:", "MUST REMOVE:", "STANDARDIZE:",
}

// echoKeywords mark an answer as a regurgitated prompt, not a name.
var echoKeywords = []string{
	"transaction text", "extract the", "business name", "one line",
	"merchant name", "simplify this", "remove:", "fix:", "remove all",
	"must remove", "keep:", "standardize:",
}

// knownChains spot a second business name concatenated onto the first.
var knownChains = map[string]bool{
	"Home": true, "Depot": true, "Cash": true, "App": true,
	"Grand": true, "Junction": true, "Coborns": true, "Coborn": true,
	"Wine": true, "More": true,
}

// sanitizeResponse strips model framing from an answer and rejects
// answers that are echoes, out of the 3-60 char band, or unchanged.
func sanitizeResponse(answer, original string) (string, bool) {
	result := strings.NewReplacer(`"`, "", "'", "").Replace(answer)
	result = strings.TrimSpace(result)
	if result == "" {
		return "", false
	}

	if idx := strings.IndexByte(result, '\n'); idx >= 0 {
		result = strings.TrimSpace(result[:idx])
	}

	for _, marker := range responseMarkers {
		if idx := strings.Index(result, marker); idx >= 0 {
			result = strings.TrimSpace(result[:idx])
			break
		}
	}

	upper := strings.ToUpper(result)
	for _, prefix := range responseArtifactPrefixes {
		if strings.HasPrefix(upper, strings.ToUpper(prefix)) {
			result = strings.TrimSpace(result[len(prefix):])
			upper = strings.ToUpper(result)
		}
	}

	result = strings.ReplaceAll(result, "* ", " ")
	result = strings.ReplaceAll(result, " *", " ")
	result = strings.TrimSpace(strings.Trim(result, "*"))

	// Two chain names glued together: keep the first.
	if words := strings.Fields(result); len(words) > 4 {
		for i := 3; i < len(words); i++ {
			if knownChains[words[i]] {
				result = strings.Join(words[:i], " ")
				break
			}
		}
	}

	for _, prefix := range labelPrefixes {
		if len(result) >= len(prefix) && strings.EqualFold(result[:len(prefix)], prefix) {
			result = strings.TrimSpace(result[len(prefix):])
			result = strings.TrimSpace(strings.TrimLeft(result, ":"))
		}
	}

	lower := strings.ToLower(result)
	for _, keyword := range echoKeywords {
		if strings.Contains(lower, keyword) {
			return "", false
		}
	}

	if len(result) < 3 || len(result) > 60 || !hasLetter(result) {
		return "", false
	}
	if strings.EqualFold(result, original) {
		return "", false
	}
	return result, true
}

// responseConfidence scores one sanitized answer 0-100.
func responseConfidence(result, original string, promptIdx int) float64 {
	confidence := 50.0

	switch {
	case len(result) >= 3 && len(result) <= 30:
		confidence += 20
	case len(result) > 30:
		confidence -= 10
	}

	if result != "" && result[0] >= 'A' && result[0] <= 'Z' {
		confidence += 10
	}
	if !strings.EqualFold(result, original) {
		confidence += 15
	}
	if strings.Contains(result, " ") {
		confidence += 10
	}

	upper := strings.ToUpper(result)
	hasArtifact := false
	for _, word := range []string{"PURCHASE", "RECUR", "POS", "ACH", "WEB", "PMTS"} {
		if strings.Contains(upper, word) {
			hasArtifact = true
			break
		}
	}
	if hasArtifact {
		confidence -= 20
	} else {
		confidence += 15
	}

	if promptIdx == 2 {
		confidence += 10
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// voteLocationWords drag an answer down hard: a name that still has a
// city or state in it was not cleaned.
var voteLocationWords = []string{
	"fargo", "west", "east", "north", "south", "saint", "st ",
	"albany", "moorhead", "alexandria", "savage", "oakland",
	" nd", " mn", " ca", " wa", " va", " me", " sd", " ny",
}

// voteWeighted picks the winning answer. Unanimous answers win
// outright; otherwise confidence plus quality adjustments decide, with
// the earliest prompt winning ties.
func voteWeighted(results []string, confidences []float64) string {
	unanimous := true
	for _, r := range results[1:] {
		if !strings.EqualFold(r, results[0]) {
			unanimous = false
			break
		}
	}
	if unanimous {
		return results[0]
	}

	bestIdx := 0
	bestScore := -1e9
	for idx, result := range results {
		score := confidences[idx]

		lower := strings.ToLower(result)
		for _, loc := range voteLocationWords {
			if strings.Contains(lower, loc) {
				score -= 50
				break
			}
		}

		upper := strings.ToUpper(result)
		for _, word := range []string{"PURCHASE", "RECUR", "POS", "WL*"} {
			if strings.Contains(upper, word) {
				score -= 30
				break
			}
		}

		switch {
		case len(result) >= 5 && len(result) <= 25:
			score += 15
		case len(result) > 35:
			score -= 10
		}

		switch words := len(strings.Fields(result)); {
		case words >= 2 && words <= 3:
			score += 10
		case words > 5:
			score -= 10
		}

		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
	}

	return results[bestIdx]
}
