package model

import "strings"

// ObligationRecord is a single compliance duty extracted from a regulatory document
type ObligationRecord struct {
	RegulationID string         `json:"regulation_id" yaml:"regulation_id"`
	Text         string         `json:"obligation_text" yaml:"obligation_text"`   // Verbatim sentence
	Type         ObligationType `json:"obligation_type" yaml:"obligation_type"`   // Defaults to general
	Confidence   float64        `json:"confidence_score" yaml:"confidence_score"` // 0.0-1.0
	Entities     Entities       `json:"extracted_entities" yaml:"extracted_entities"`
	DeadlineType DeadlineType   `json:"deadline_type,omitempty" yaml:"deadline_type,omitempty"`
	Deadline     string         `json:"deadline_date,omitempty" yaml:"deadline_date,omitempty"` // e.g. "30 day(s)"
	Recurring    bool           `json:"is_recurring" yaml:"is_recurring"`
	Risk         RiskTier       `json:"risk_level" yaml:"risk_level"`
	Position     int            `json:"sentence_index" yaml:"sentence_index"` // Sentence index in source document (0-based)
}

// Entities groups mentions found in an obligation sentence. Each group may be empty.
type Entities struct {
	Dates         []string `json:"dates" yaml:"dates"`
	Amounts       []string `json:"amounts" yaml:"amounts"`
	Organizations []string `json:"organizations" yaml:"organizations"`
	Persons       []string `json:"persons" yaml:"persons"`
}

// EmptyEntities returns entity groups with non-nil empty slices so they
// serialize as [] rather than null.
func EmptyEntities() Entities {
	return Entities{
		Dates:         []string{},
		Amounts:       []string{},
		Organizations: []string{},
		Persons:       []string{},
	}
}

// ObligationType classifies the nature of the duty
type ObligationType string

const (
	TypeGeneral       ObligationType = "general"
	TypeReporting     ObligationType = "reporting"
	TypeControl       ObligationType = "control"
	TypeRecordkeeping ObligationType = "recordkeeping"
	TypeProhibition   ObligationType = "prohibition"
	TypeTraining      ObligationType = "training"
)

// ParseObligationType maps a stored label to an ObligationType.
// Unknown or empty labels become TypeGeneral.
func ParseObligationType(s string) ObligationType {
	switch t := ObligationType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeReporting, TypeControl, TypeRecordkeeping, TypeProhibition, TypeTraining:
		return t
	default:
		return TypeGeneral
	}
}

// DeadlineType describes when an obligation falls due
type DeadlineType string

const (
	DeadlineNone      DeadlineType = ""
	DeadlineAnnual    DeadlineType = "annual"
	DeadlineQuarterly DeadlineType = "quarterly"
	DeadlineMonthly   DeadlineType = "monthly"
	DeadlineSpecific  DeadlineType = "specific"
)

// RiskTier is the coarse severity used for triage
type RiskTier string

const (
	RiskCritical RiskTier = "critical"
	RiskHigh     RiskTier = "high"
	RiskMedium   RiskTier = "medium"
	RiskLow      RiskTier = "low"
)

// ParseRiskTier maps a stored label to a RiskTier.
// Unknown or empty labels become RiskMedium.
func ParseRiskTier(s string) RiskTier {
	switch r := RiskTier(strings.ToLower(strings.TrimSpace(s))); r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow:
		return r
	default:
		return RiskMedium
	}
}

// Rank orders tiers from most to least severe (critical = 0)
func (r RiskTier) Rank() int {
	switch r {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	default:
		return 3
	}
}
