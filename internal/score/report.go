package score

import (
	"cmp"
	"slices"

	"github.com/ppiankov/regmap/internal/model"
)

// statusRank orders coverage from best to worst
func statusRank(s model.CoverageStatus) int {
	switch s {
	case model.CoverageFull:
		return 0
	case model.CoveragePartial:
		return 1
	default:
		return 2
	}
}

// Summarize builds a per-obligation coverage report from mapping results.
// Obligations that no policy fully covers are listed as uncovered, most
// severe risk tier first.
func Summarize(runID string, obligations []model.ObligationInput, results []model.MappingResult) model.CoverageReport {
	byObligation := make(map[string][]model.MappingResult)
	for _, r := range results {
		byObligation[r.ObligationID] = append(byObligation[r.ObligationID], r)
	}

	report := model.CoverageReport{
		RunID:       runID,
		Obligations: make([]model.ObligationStatus, 0, len(obligations)),
		Uncovered:   []model.ObligationStatus{},
		Counts: map[model.CoverageStatus]int{
			model.CoverageFull:    0,
			model.CoveragePartial: 0,
			model.CoverageNone:    0,
		},
	}

	for _, o := range obligations {
		o = o.Normalize()
		status := summarizeOne(o, byObligation[o.ID])

		report.Obligations = append(report.Obligations, status)
		report.Counts[status.Best]++
		if status.Best != model.CoverageFull {
			report.Uncovered = append(report.Uncovered, status)
		}
	}

	slices.SortStableFunc(report.Uncovered, func(a, b model.ObligationStatus) int {
		if c := cmp.Compare(a.Risk.Rank(), b.Risk.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(statusRank(b.Best), statusRank(a.Best))
	})

	return report
}

func summarizeOne(o model.ObligationInput, results []model.MappingResult) model.ObligationStatus {
	status := model.ObligationStatus{
		ObligationID: o.ID,
		Text:         o.Text,
		Risk:         o.Risk,
		Best:         model.CoverageNone,
		PolicyRefs:   []string{},
	}

	var best *model.MappingResult
	for i := range results {
		r := &results[i]
		if r.Status == model.CoverageFull || r.Status == model.CoveragePartial {
			if !slices.Contains(status.PolicyRefs, r.PolicyRef) {
				status.PolicyRefs = append(status.PolicyRefs, r.PolicyRef)
			}
		}
		if best == nil ||
			statusRank(r.Status) < statusRank(best.Status) ||
			(r.Status == best.Status && r.Confidence > best.Confidence) {
			best = r
		}
	}
	slices.Sort(status.PolicyRefs)

	if best != nil {
		status.Best = best.Status
		status.Confidence = best.Confidence
		if best.Status != model.CoverageFull {
			status.Gaps = best.Gaps
		}
	}

	return status
}
