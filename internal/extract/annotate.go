package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/regmap/internal/model"
)

var (
	subClause = regexp.MustCompile(`\d+\.\d+|\([a-z]\)|\(i{1,3}\)`)
	within    = regexp.MustCompile(`within\s+(\d+)\s+(day|week|month|year)s?`)
)

var (
	strongModals   = []string{"must", "shall", "required"}
	weakModals     = []string{"should", "may", "recommend"}
	deadlineCues   = []string{"by ", "before ", "no later than"}
	criticalTopics = []string{"fraud", "laundering", "criminal", "penalty", "fine"}
)

// Annotation is the metadata derived for one obligation sentence
type Annotation struct {
	Confidence   float64
	DeadlineType model.DeadlineType
	Deadline     string
	Recurring    bool
	Risk         model.RiskTier
	Entities     model.Entities
}

// Annotator derives confidence, deadline, risk and entity metadata
type Annotator struct {
	tagger EntityTagger
}

// NewAnnotator creates an annotator. tagger may be nil, in which case all
// entity groups are empty.
func NewAnnotator(tagger EntityTagger) *Annotator {
	return &Annotator{tagger: tagger}
}

// Annotate computes all metadata for a sentence already classified as typ
func (a *Annotator) Annotate(sentence string, typ model.ObligationType) Annotation {
	deadlineType, detail, recurring := Deadline(sentence)
	return Annotation{
		Confidence:   Confidence(sentence),
		DeadlineType: deadlineType,
		Deadline:     detail,
		Recurring:    recurring,
		Risk:         Risk(sentence, typ),
		Entities:     a.entities(sentence),
	}
}

func (a *Annotator) entities(sentence string) model.Entities {
	if a.tagger == nil {
		return model.EmptyEntities()
	}
	ents, err := a.tagger.Tag(sentence)
	if err != nil {
		return model.EmptyEntities()
	}
	return normalizeEntities(ents)
}

// Confidence scores how clearly a sentence states a duty, in [0.5, 1.0]
func Confidence(sentence string) float64 {
	lower := strings.ToLower(sentence)
	score := 0.5

	if containsAny(lower, strongModals) {
		score += 0.3
	}
	if containsAny(lower, weakModals) {
		score += 0.1
	}
	if subClause.MatchString(sentence) {
		score += 0.1
	}
	if wc := len(strings.Fields(sentence)); wc >= 8 && wc <= 60 {
		score += 0.05
	}

	return min(score, 1.0)
}

// Deadline derives the deadline type, free-text detail and recurrence.
// An explicit "within N units" period overrides a recurrence keyword.
func Deadline(sentence string) (model.DeadlineType, string, bool) {
	lower := strings.ToLower(sentence)

	var (
		typ       model.DeadlineType
		detail    string
		recurring bool
	)

	switch {
	case strings.Contains(lower, "annual"):
		typ, recurring = model.DeadlineAnnual, true
	case strings.Contains(lower, "quarterly"):
		typ, recurring = model.DeadlineQuarterly, true
	case strings.Contains(lower, "monthly"):
		typ, recurring = model.DeadlineMonthly, true
	}

	if m := within.FindStringSubmatch(lower); m != nil {
		typ = model.DeadlineSpecific
		detail = fmt.Sprintf("%s %s(s)", m[1], m[2])
	}

	if typ == model.DeadlineNone && containsAny(lower, deadlineCues) {
		typ = model.DeadlineSpecific
	}

	return typ, detail, recurring
}

// Risk assigns a tier. Financial-crime vocabulary is critical regardless of type.
func Risk(sentence string, typ model.ObligationType) model.RiskTier {
	if containsAny(strings.ToLower(sentence), criticalTopics) {
		return model.RiskCritical
	}

	switch typ {
	case model.TypeReporting, model.TypeProhibition:
		return model.RiskHigh
	case model.TypeControl, model.TypeRecordkeeping:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
