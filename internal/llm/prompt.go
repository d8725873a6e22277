package llm

import (
	"fmt"

	"github.com/ppiankov/regmap/internal/model"
)

const notAvailable = "N/A"

const mappingPrompt = `You are a regulatory compliance expert.

Evaluate whether the internal policy covers the compliance obligation.

Compliance Obligation:
%s

Obligation Type: %s
Risk Level: %s

Internal Policy:
Title: %s
Description: %s
Control Type: %s

Respond with strict JSON:
{
  "coverage_status": "full|partial|none",
  "confidence": 0.0,
  "rationale": "short explanation",
  "gaps": ["..."]
}
`

// RenderMappingPrompt builds the coverage question for one obligation/policy pair
func RenderMappingPrompt(o model.ObligationInput, p model.PolicyRecord) string {
	o = o.Normalize()
	return fmt.Sprintf(mappingPrompt,
		o.Text,
		o.Type,
		o.Risk,
		p.Title,
		orNA(p.Description),
		orNA(p.ControlType),
	)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
