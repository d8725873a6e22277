package extract

import (
	"github.com/ppiankov/regmap/internal/logging"
	"github.com/ppiankov/regmap/internal/model"
	"go.uber.org/zap"
)

// Extractor turns regulatory text into obligation records
type Extractor struct {
	segmenter Segmenter
	annotator *Annotator
	logger    *zap.Logger
}

// NewExtractor creates an extractor. A nil segmenter selects RegexSegmenter;
// a nil tagger leaves entity groups empty.
func NewExtractor(segmenter Segmenter, tagger EntityTagger, logger *zap.Logger) *Extractor {
	if segmenter == nil {
		segmenter = RegexSegmenter{}
	}
	return &Extractor{
		segmenter: segmenter,
		annotator: NewAnnotator(tagger),
		logger:    logging.OrNop(logger),
	}
}

// Extract returns one record per obligation sentence, in document order.
// Position counts every sentence, including those that are not obligations.
func (e *Extractor) Extract(text, regulationID string) []model.ObligationRecord {
	records := []model.ObligationRecord{}

	idx := 0
	for sentence := range e.segmenter.Sentences(text) {
		position := idx
		idx++

		ok, typ := Classify(sentence)
		if !ok {
			continue
		}

		a := e.annotator.Annotate(sentence, typ)
		records = append(records, model.ObligationRecord{
			RegulationID: regulationID,
			Text:         sentence,
			Type:         typ,
			Confidence:   a.Confidence,
			Entities:     a.Entities,
			DeadlineType: a.DeadlineType,
			Deadline:     a.Deadline,
			Recurring:    a.Recurring,
			Risk:         a.Risk,
			Position:     position,
		})
	}

	e.logger.Info("extracted obligations",
		zap.String("regulation_id", regulationID),
		zap.Int("sentences", idx),
		zap.Int("obligations", len(records)))

	return records
}
