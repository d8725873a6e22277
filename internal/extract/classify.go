package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/regmap/internal/model"
)

// obligationKeywords mark a sentence as an obligation when found as a substring
var obligationKeywords = []string{
	"must", "shall", "required", "mandatory", "obligation", "duty",
	"prohibited", "forbidden", "comply", "ensure", "report", "disclose",
	"maintain", "establish", "implement", "provide", "submit",
}

// temporalObligation matches deadline phrasing that implies a duty
var temporalObligation = regexp.MustCompile(`\b(no later than|within \d+|not later than|at least|by)\b`)

type typeRule struct {
	typ   model.ObligationType
	words []string
}

// typeRules are checked in order; the first rule with a matching word wins
var typeRules = []typeRule{
	{model.TypeReporting, []string{"report", "submit", "file", "disclose"}},
	{model.TypeControl, []string{"control", "procedure", "system", "process"}},
	{model.TypeRecordkeeping, []string{"maintain", "retain", "preserve", "record"}},
	{model.TypeProhibition, []string{"prohibit", "forbidden", "ban", "restrict"}},
	{model.TypeTraining, []string{"train", "educate", "inform"}},
}

// Classify reports whether sentence asserts a compliance duty and which kind
func Classify(sentence string) (bool, model.ObligationType) {
	lower := strings.ToLower(sentence)
	return isObligation(lower), obligationType(lower)
}

func isObligation(lower string) bool {
	if containsAny(lower, obligationKeywords) {
		return true
	}
	return temporalObligation.MatchString(lower)
}

func obligationType(lower string) model.ObligationType {
	for _, rule := range typeRules {
		if containsAny(lower, rule.words) {
			return rule.typ
		}
	}
	return model.TypeGeneral
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
