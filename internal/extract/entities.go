package extract

import (
	"regexp"

	"github.com/ppiankov/regmap/internal/model"
)

// EntityTagger finds date, amount, organization and person mentions
type EntityTagger interface {
	Tag(sentence string) (model.Entities, error)
}

const monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(monthNames + `\s+\d{1,2},?\s+\d{4}`),
		regexp.MustCompile(`\b\d{1,2}\s+` + monthNames + `\s+\d{4}`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`(?i)\b\d+\s+(?:business\s+|calendar\s+)?(?:days?|weeks?|months?|years?)\b`),
		regexp.MustCompile(`(?i)\b(?:end of (?:each|the) (?:quarter|month|year|financial year)|quarter end|year end)\b`),
	}

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand|[mbk]n?)\b)?`),
		regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|SGD|CHF)\b`),
		regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:%|percent\b)`),
	}
)

// LexicalTagger recognizes dates and amounts with regular expressions.
// It does not tag organizations or persons.
type LexicalTagger struct{}

// Tag never returns an error
func (LexicalTagger) Tag(sentence string) (model.Entities, error) {
	ents := model.EmptyEntities()
	ents.Dates = findAll(sentence, datePatterns)
	ents.Amounts = findAll(sentence, amountPatterns)
	return ents, nil
}

// findAll returns unique matches of all patterns in pattern order
func findAll(s string, patterns []*regexp.Regexp) []string {
	seen := make(map[string]bool)
	found := []string{}

	for _, re := range patterns {
		for _, m := range re.FindAllString(s, -1) {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}
	return found
}

func normalizeEntities(e model.Entities) model.Entities {
	if e.Dates == nil {
		e.Dates = []string{}
	}
	if e.Amounts == nil {
		e.Amounts = []string{}
	}
	if e.Organizations == nil {
		e.Organizations = []string{}
	}
	if e.Persons == nil {
		e.Persons = []string{}
	}
	return e
}
