package extract

import (
	"iter"
	"regexp"
	"strings"
)

// Segmenter splits document text into sentences.
// The returned sequence is lazy and may be ranged over more than once.
type Segmenter interface {
	Sentences(text string) iter.Seq[string]
}

// SentenceModel is an optional linguistic sentence boundary detector
type SentenceModel interface {
	Split(text string) ([]string, error)
}

// boundary matches sentence-ending punctuation followed by whitespace.
// The cut is made right after the punctuation mark.
var boundary = regexp.MustCompile(`[.!?][\s\v\p{Z}]+`)

// RegexSegmenter splits on '.', '!' or '?' followed by whitespace
type RegexSegmenter struct{}

// Sentences yields trimmed, non-empty sentences in document order
func (RegexSegmenter) Sentences(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for start < len(text) {
			loc := boundary.FindStringIndex(text[start:])
			if loc == nil {
				break
			}

			// Keep the punctuation, drop the whitespace run
			sentence := strings.TrimSpace(text[start : start+loc[0]+1])
			start += loc[1]

			if sentence == "" {
				continue
			}
			if !yield(sentence) {
				return
			}
		}

		if tail := strings.TrimSpace(text[start:]); tail != "" {
			yield(tail)
		}
	}
}

// ModelSegmenter uses a SentenceModel when one is configured and it produces
// sentences; otherwise it falls back to RegexSegmenter.
type ModelSegmenter struct {
	Model    SentenceModel
	fallback RegexSegmenter
}

// NewModelSegmenter wraps model with the regex fallback. model may be nil.
func NewModelSegmenter(model SentenceModel) *ModelSegmenter {
	return &ModelSegmenter{Model: model}
}

// Sentences yields the model's sentences, or the regex split when the model
// is absent, fails, or finds nothing
func (s *ModelSegmenter) Sentences(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}

		if s.Model != nil {
			if sents, err := s.Model.Split(text); err == nil {
				trimmed := make([]string, 0, len(sents))
				for _, sent := range sents {
					if t := strings.TrimSpace(sent); t != "" {
						trimmed = append(trimmed, t)
					}
				}
				if len(trimmed) > 0 {
					for _, sent := range trimmed {
						if !yield(sent) {
							return
						}
					}
					return
				}
			}
		}

		for sent := range s.fallback.Sentences(text) {
			if !yield(sent) {
				return
			}
		}
	}
}
