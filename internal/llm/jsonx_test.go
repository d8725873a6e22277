package llm

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ppiankov/regmap/internal/model"
)

func TestExtractJSON_Strict(t *testing.T) {
	got := ExtractJSON(`  {"coverage_status":"full","confidence":0.9}  `)
	if got["coverage_status"] != "full" || got["confidence"] != 0.9 {
		t.Errorf("Unexpected object: %v", got)
	}
}

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	content := "Sure! Here is my assessment:\n" +
		`{"coverage_status":"partial","confidence":0.6,"rationale":"ok","gaps":[]}` +
		"\nLet me know if you need more."

	fields := ExtractJSON(content)
	j, err := JudgmentFromFields(fields)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if j.Status != model.CoveragePartial {
		t.Errorf("Expected partial, got %q", j.Status)
	}
	if j.Confidence != 0.6 {
		t.Errorf("Expected 0.6, got %v", j.Confidence)
	}
	if j.Rationale != "ok" {
		t.Errorf("Expected rationale ok, got %q", j.Rationale)
	}
	if j.Gaps == nil || len(j.Gaps) != 0 {
		t.Errorf("Expected empty gaps, got %v", j.Gaps)
	}
}

func TestExtractJSON_FencedMultiline(t *testing.T) {
	content := "```json\n{\n  \"coverage_status\": \"none\",\n  \"gaps\": [\"no retention period\"]\n}\n```"

	got := ExtractJSON(content)
	if got["coverage_status"] != "none" {
		t.Errorf("Expected object recovered from fenced block, got %v", got)
	}
}

func TestExtractJSON_Unrecoverable(t *testing.T) {
	tests := []string{
		"",
		"I cannot answer that.",
		"{not json}",
		`["full", "partial"]`,
		"null",
		`{"a": 1} and then {"b": 2}`, // greedy span covers both objects
	}

	for _, content := range tests {
		got := ExtractJSON(content)
		if got == nil {
			t.Errorf("Expected non-nil map for %q", content)
		}
		if len(got) != 0 {
			t.Errorf("Expected empty map for %q, got %v", content, got)
		}
	}
}

func TestJudgmentFromFields_Defaults(t *testing.T) {
	j, err := JudgmentFromFields(map[string]any{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if j.Status != model.CoverageNone {
		t.Errorf("Expected none, got %q", j.Status)
	}
	if j.Confidence != 0 {
		t.Errorf("Expected 0, got %v", j.Confidence)
	}
	if j.Rationale != "No rationale returned" {
		t.Errorf("Expected default rationale, got %q", j.Rationale)
	}
	if j.Gaps == nil || len(j.Gaps) != 0 {
		t.Errorf("Expected empty gaps, got %v", j.Gaps)
	}
}

func TestJudgmentFromFields_Coercion(t *testing.T) {
	j, err := JudgmentFromFields(map[string]any{
		"coverage_status": " FULL ",
		"confidence":      "0.75",
		"rationale":       "   ",
		"gaps":            []any{"first", 3.0, "second", nil},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if j.Status != model.CoverageFull {
		t.Errorf("Expected full, got %q", j.Status)
	}
	if j.Confidence != 0.75 {
		t.Errorf("Expected numeric string to parse, got %v", j.Confidence)
	}
	if j.Rationale != DefaultRationale {
		t.Errorf("Expected blank rationale to take default, got %q", j.Rationale)
	}
	if !slices.Equal(j.Gaps, []string{"first", "second"}) {
		t.Errorf("Expected non-string gaps dropped, got %v", j.Gaps)
	}
}

func TestJudgmentFromFields_ClampsConfidence(t *testing.T) {
	j, _ := JudgmentFromFields(map[string]any{"confidence": 1.7})
	if j.Confidence != 1 {
		t.Errorf("Expected clamp to 1, got %v", j.Confidence)
	}

	j, _ = JudgmentFromFields(map[string]any{"confidence": -0.2})
	if j.Confidence != 0 {
		t.Errorf("Expected clamp to 0, got %v", j.Confidence)
	}
}

func TestJudgmentFromFields_UnknownStatus(t *testing.T) {
	j, err := JudgmentFromFields(map[string]any{"coverage_status": "mostly"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if j.Status != model.CoverageNone {
		t.Errorf("Expected unknown label to map to none, got %q", j.Status)
	}
}

func TestJudgmentFromFields_Malformed(t *testing.T) {
	tests := []map[string]any{
		{"confidence": "high"},
		{"confidence": true},
		{"coverage_status": 3.0},
		{"rationale": []any{"a"}},
		{"gaps": "none"},
	}

	for _, fields := range tests {
		_, err := JudgmentFromFields(fields)
		if !errors.Is(err, ErrMalformedJudgment) {
			t.Errorf("Expected ErrMalformedJudgment for %v, got %v", fields, err)
		}
	}
}

func TestRenderMappingPrompt(t *testing.T) {
	prompt := RenderMappingPrompt(
		model.ObligationInput{ID: "1", Text: "Firms must verify customer identity."},
		model.PolicyRecord{ID: "p", PolicyRef: "POL-1", Title: "KYC Procedures"},
	)

	for _, want := range []string{
		"Compliance Obligation:\nFirms must verify customer identity.",
		"Obligation Type: general",
		"Risk Level: medium",
		"Title: KYC Procedures",
		"Description: N/A",
		"Control Type: N/A",
		`"coverage_status": "full|partial|none"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}
