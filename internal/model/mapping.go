package model

// CoverageStatus reports how completely a policy addresses an obligation
type CoverageStatus string

const (
	CoverageFull    CoverageStatus = "full"
	CoveragePartial CoverageStatus = "partial"
	CoverageNone    CoverageStatus = "none"
)

// ParseCoverageStatus maps a model-supplied label to a CoverageStatus.
// Anything unrecognized is treated as none.
func ParseCoverageStatus(s string) CoverageStatus {
	switch c := CoverageStatus(s); c {
	case CoverageFull, CoveragePartial:
		return c
	default:
		return CoverageNone
	}
}

// Judgment is a backend's verdict for one obligation/policy pair
type Judgment struct {
	Status     CoverageStatus `json:"coverage_status"`
	Confidence float64        `json:"confidence"`
	Rationale  string         `json:"rationale"`
	Gaps       []string       `json:"gaps"`
}

// MappingResult is the outcome of scoring one obligation against one policy
type MappingResult struct {
	ObligationID string         `json:"obligation_id" yaml:"obligation_id"`
	PolicyID     string         `json:"policy_db_id" yaml:"policy_db_id"`
	PolicyRef    string         `json:"policy_ref" yaml:"policy_ref"`
	Status       CoverageStatus `json:"coverage_status" yaml:"coverage_status"`
	Confidence   float64        `json:"mapping_confidence" yaml:"mapping_confidence"`
	Rationale    string         `json:"mapping_rationale" yaml:"mapping_rationale"`
	Gaps         []string       `json:"identified_gaps" yaml:"identified_gaps"`
	Backend      string         `json:"backend" yaml:"backend"` // "heuristic" or the remote provider name
}

// NewMappingResult combines a judgment with the identifiers of the pair it was made for
func NewMappingResult(o ObligationInput, p PolicyRecord, j Judgment, backend string) MappingResult {
	gaps := j.Gaps
	if gaps == nil {
		gaps = []string{}
	}
	return MappingResult{
		ObligationID: o.ID,
		PolicyID:     p.ID,
		PolicyRef:    p.PolicyRef,
		Status:       j.Status,
		Confidence:   j.Confidence,
		Rationale:    j.Rationale,
		Gaps:         gaps,
		Backend:      backend,
	}
}

// Retain reports whether a result should be surfaced to callers: any full or
// partial coverage, or a "none" judgment made with confidence of at least 0.5.
func (r MappingResult) Retain() bool {
	return r.Status == CoverageFull || r.Status == CoveragePartial || r.Confidence >= 0.5
}

// CoverageReport summarizes a mapping run per obligation
type CoverageReport struct {
	RunID       string                 `json:"run_id" yaml:"run_id"`
	Obligations []ObligationStatus     `json:"obligations" yaml:"obligations"`
	Uncovered   []ObligationStatus     `json:"uncovered" yaml:"uncovered"` // Ordered by risk tier, most severe first
	Counts      map[CoverageStatus]int `json:"counts" yaml:"counts"`
}

// ObligationStatus is the best coverage any policy achieved for one obligation
type ObligationStatus struct {
	ObligationID string         `json:"obligation_id" yaml:"obligation_id"`
	Text         string         `json:"obligation_text" yaml:"obligation_text"`
	Risk         RiskTier       `json:"risk_level" yaml:"risk_level"`
	Best         CoverageStatus `json:"best_coverage" yaml:"best_coverage"`
	Confidence   float64        `json:"confidence" yaml:"confidence"`
	PolicyRefs   []string       `json:"policy_refs" yaml:"policy_refs"`
	Gaps         []string       `json:"gaps,omitempty" yaml:"gaps,omitempty"`
}
