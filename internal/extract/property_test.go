//go:build property
// +build property

package extract_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ppiankov/regmap/internal/extract"
	"github.com/ppiankov/regmap/internal/model"
)

// neutralWords contain no obligation keyword and no temporal phrase
var neutralWords = []any{
	"the", "bank", "may", "consider", "customers", "annual", "accounts",
	"policy", "guidance", "notes", "market", "risk", "capital", "board",
	"members", "often", "discuss", "trends", "during", "meetings",
}

func sentenceGen() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(neutralWords...)).Map(func(words []any) string {
		parts := make([]string, len(words))
		for i, w := range words {
			parts[i] = w.(string)
		}
		return strings.Join(parts, " ")
	})
}

// Property: a sentence without obligation keywords or deadline phrasing is never an obligation
func TestClassifyNeutralSentences(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("neutral sentences are not obligations", prop.ForAll(
		func(sentence string) bool {
			ok, _ := extract.Classify(sentence)
			return !ok
		},
		sentenceGen(),
	))

	properties.TestingRun(t)
}

// Property: reporting outranks recordkeeping wherever the words appear
func TestClassifyTypePriority(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("report + maintain classifies as reporting", prop.ForAll(
		func(prefix, middle, suffix string, swap bool) bool {
			first, second := "report", "maintain"
			if swap {
				first, second = second, first
			}
			sentence := strings.Join([]string{prefix, first, middle, second, suffix}, " ")

			ok1, typ1 := extract.Classify(sentence)
			ok2, typ2 := extract.Classify(sentence)
			return ok1 && ok2 && typ1 == model.TypeReporting && typ1 == typ2
		},
		sentenceGen(),
		sentenceGen(),
		sentenceGen(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
