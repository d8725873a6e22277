package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/regmap/internal/model"
)

// ErrMalformedJudgment is returned when a judgment field has the wrong type
var ErrMalformedJudgment = errors.New("malformed judgment")

// DefaultRationale is used when a reply carries no rationale
const DefaultRationale = "No rationale returned"

// objectSpan is greedy: from the first '{' to the last '}'
var objectSpan = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON recovers a JSON object from free-form model output. It tries
// the whole trimmed reply first, then the widest {...} span. When neither
// parses it returns an empty map.
func ExtractJSON(content string) map[string]any {
	content = strings.TrimSpace(content)
	if obj, ok := parseObject(content); ok {
		return obj
	}

	if span := objectSpan.FindString(content); span != "" {
		if obj, ok := parseObject(span); ok {
			return obj
		}
	}

	return map[string]any{}
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// JudgmentFromFields converts a recovered object into a Judgment.
// Missing or null fields take defaults: status none, confidence 0,
// DefaultRationale and no gaps. A field present with the wrong type yields
// ErrMalformedJudgment.
func JudgmentFromFields(fields map[string]any) (model.Judgment, error) {
	j := model.Judgment{
		Status:     model.CoverageNone,
		Confidence: 0,
		Rationale:  DefaultRationale,
		Gaps:       []string{},
	}

	if v, ok := present(fields, "coverage_status"); ok {
		s, isString := v.(string)
		if !isString {
			return model.Judgment{}, fmt.Errorf("%w: coverage_status is %T", ErrMalformedJudgment, v)
		}
		j.Status = model.ParseCoverageStatus(strings.ToLower(strings.TrimSpace(s)))
	}

	if v, ok := present(fields, "confidence"); ok {
		c, err := toFloat(v)
		if err != nil {
			return model.Judgment{}, fmt.Errorf("%w: confidence: %v", ErrMalformedJudgment, err)
		}
		j.Confidence = min(max(c, 0), 1)
	}

	if v, ok := present(fields, "rationale"); ok {
		s, isString := v.(string)
		if !isString {
			return model.Judgment{}, fmt.Errorf("%w: rationale is %T", ErrMalformedJudgment, v)
		}
		if strings.TrimSpace(s) != "" {
			j.Rationale = s
		}
	}

	if v, ok := present(fields, "gaps"); ok {
		items, isList := v.([]any)
		if !isList {
			return model.Judgment{}, fmt.Errorf("%w: gaps is %T", ErrMalformedJudgment, v)
		}
		for _, item := range items {
			if s, isString := item.(string); isString {
				j.Gaps = append(j.Gaps, s)
			}
		}
	}

	return j, nil
}

func present(fields map[string]any, key string) (any, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// toFloat accepts JSON numbers and numeric strings
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("got %T", v)
	}
}
