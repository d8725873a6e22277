package model

// PolicyRecord is an internal policy as held by the external policy store.
// It is read-only input to scoring.
type PolicyRecord struct {
	ID          string `json:"id" yaml:"id"`
	PolicyRef   string `json:"policy_id" yaml:"policy_id"` // Human-facing reference, e.g. "POL-AML-001"
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ControlType string `json:"control_type,omitempty" yaml:"control_type,omitempty"`
}

// ObligationInput is the obligation shape consumed by the mapping stage.
// Type and Risk are optional; Normalize fills the defaults.
type ObligationInput struct {
	ID   string         `json:"id" yaml:"id"`
	Text string         `json:"obligation_text" yaml:"obligation_text"`
	Type ObligationType `json:"obligation_type,omitempty" yaml:"obligation_type,omitempty"`
	Risk RiskTier       `json:"risk_level,omitempty" yaml:"risk_level,omitempty"`
}

// Normalize returns a copy with unknown or absent labels replaced by their defaults
func (o ObligationInput) Normalize() ObligationInput {
	o.Type = ParseObligationType(string(o.Type))
	o.Risk = ParseRiskTier(string(o.Risk))
	return o
}

// InputFromRecord converts an extracted record into mapping input under the given id
func InputFromRecord(id string, r ObligationRecord) ObligationInput {
	return ObligationInput{
		ID:   id,
		Text: r.Text,
		Type: r.Type,
		Risk: r.Risk,
	}
}
