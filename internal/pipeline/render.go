package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/regmap/internal/model"
)

// Output formats
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Write encodes v as JSON or YAML
func Write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (json, yaml)", format)
	}
}

// WriteFile creates path (and its directory) and hands it to write.
// A path of "-" writes to stdout.
func WriteFile(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteMarkdown renders the gap report and retained mappings as Markdown
func WriteMarkdown(w io.Writer, report model.CoverageReport, results []model.MappingResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Regulatory Coverage Report\n\n")
	fmt.Fprintf(&b, "Run: `%s`\n\n", report.RunID)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Coverage | Obligations |\n|---|---|\n")
	for _, s := range []model.CoverageStatus{model.CoverageFull, model.CoveragePartial, model.CoverageNone} {
		fmt.Fprintf(&b, "| %s | %d |\n", s, report.Counts[s])
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Gaps\n\n")
	if len(report.Uncovered) == 0 {
		b.WriteString("Every obligation is fully covered.\n\n")
	} else {
		b.WriteString("| Risk | Obligation | Best coverage | Policies | Gaps |\n|---|---|---|---|---|\n")
		for _, o := range report.Uncovered {
			fmt.Fprintf(&b, "| %s | %s: %s | %s | %s | %s |\n",
				o.Risk,
				o.ObligationID, cell(o.Text),
				o.Best,
				cell(strings.Join(o.PolicyRefs, ", ")),
				cell(strings.Join(o.Gaps, "; ")))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Mappings\n\n")
	if len(results) == 0 {
		b.WriteString("No mappings retained.\n")
	} else {
		b.WriteString("| Obligation | Policy | Coverage | Confidence | Backend | Rationale |\n|---|---|---|---|---|---|\n")
		for _, r := range results {
			fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %s | %s |\n",
				r.ObligationID, r.PolicyRef, r.Status, r.Confidence, r.Backend, cell(r.Rationale))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary prints a short human summary of a mapping batch
func WriteSummary(w io.Writer, report model.CoverageReport, attempted, fallbacks int) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Mapping Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Run:          %s\n", report.RunID)
	fmt.Fprintf(w, "  Pairs:        %d (fallbacks: %d)\n", attempted, fallbacks)
	fmt.Fprintf(w, "  Full:         %d\n", report.Counts[model.CoverageFull])
	fmt.Fprintf(w, "  Partial:      %d\n", report.Counts[model.CoveragePartial])
	fmt.Fprintf(w, "  None:         %d\n", report.Counts[model.CoverageNone])
	fmt.Fprintf(w, "  Gaps:         %d\n", len(report.Uncovered))
	fmt.Fprintf(w, "\n")
}

// cell escapes text for a Markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
