package score

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/ppiankov/regmap/internal/model"
)

const (
	fullThreshold    = 0.45
	partialThreshold = 0.2
	confidenceBase   = 0.25
	confidenceCap    = 0.95
	maxMissingTerms  = 5
)

var termPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)

// stopTerms are dropped from the obligation side only
var stopTerms = map[string]bool{
	"shall": true, "must": true, "with": true, "from": true,
	"that": true, "this": true, "than": true,
}

// Coverage scores how well a policy covers an obligation by keyword overlap.
// It is deterministic and safe for concurrent use.
func Coverage(obligationText string, policy model.PolicyRecord) model.Judgment {
	obligationTerms := terms(obligationText, stopTerms)
	policyTerms := terms(policy.Title+" "+policy.Description, nil)

	matches := 0
	var missing []string
	for term := range obligationTerms {
		if policyTerms[term] {
			matches++
		} else {
			missing = append(missing, term)
		}
	}

	ratio := float64(matches) / float64(max(len(obligationTerms), 1))
	status := statusFor(ratio)

	gaps := []string{}
	if status != model.CoverageFull && len(missing) > 0 {
		slices.Sort(missing)
		if len(missing) > maxMissingTerms {
			missing = missing[:maxMissingTerms]
		}
		gaps = append(gaps, "Missing obligation concepts: "+strings.Join(missing, ", "))
	}

	return model.Judgment{
		Status:     status,
		Confidence: confidenceFor(ratio),
		Rationale:  fmt.Sprintf("Heuristic keyword overlap ratio=%.2f (%d matches).", ratio, matches),
		Gaps:       gaps,
	}
}

func statusFor(ratio float64) model.CoverageStatus {
	switch {
	case ratio >= fullThreshold:
		return model.CoverageFull
	case ratio >= partialThreshold:
		return model.CoveragePartial
	default:
		return model.CoverageNone
	}
}

// confidenceFor maps an overlap ratio into [0.25, 0.95], rounded to 3 decimals
func confidenceFor(ratio float64) float64 {
	c := min(confidenceCap, confidenceBase+ratio)
	return math.Round(c*1000) / 1000
}

// terms returns the set of lower-cased alphabetic tokens of length >= 4
func terms(text string, exclude map[string]bool) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range termPattern.FindAllString(text, -1) {
		tok = strings.ToLower(tok)
		if !exclude[tok] {
			set[tok] = true
		}
	}
	return set
}
