package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ezrecover/domain/ezdiffusion"
	"ezrecover/internal/errors"
)

// Markdown renders the report: a short header, then one section per sample
// size in request order
func Markdown(r *ezdiffusion.AggregateReport) string {
	var b strings.Builder

	b.WriteString("# EZ-Diffusion Parameter Recovery\n\n")
	fmt.Fprintf(&b, "- **Run ID:** %s\n", r.RunID)
	if r.Fingerprint != "" {
		fmt.Fprintf(&b, "- **Fingerprint:** %s\n", r.Fingerprint)
	}
	fmt.Fprintf(&b, "- **Seed:** %d\n", r.Seed)
	fmt.Fprintf(&b, "- **Iterations:** %d\n", r.Iterations)
	fmt.Fprintf(&b, "- **Component Order:** %s\n\n", componentOrder())

	for _, s := range r.Ordered() {
		writeSection(&b, s)
	}
	return b.String()
}

func writeSection(b *strings.Builder, s ezdiffusion.SampleSizeSummary) {
	fmt.Fprintf(b, "### Sample Size %d:\n", s.SampleSize)
	fmt.Fprintf(b, "- **Mean Bias:** %s\n", s.MeanBias)
	fmt.Fprintf(b, "- **Mean Squared Error:** %s\n", s.MeanSquaredError)
	if s.HasRecoveries() {
		fmt.Fprintf(b, "- **Bias Std Dev:** %s\n", s.BiasStdDev)
	}
	fmt.Fprintf(b, "- **Retained Trials:** %d/%d\n", s.Retained, s.Attempted)
	if skipped := skippedLine(s.Skipped); skipped != "" {
		fmt.Fprintf(b, "- **Skipped:** %s\n", skipped)
	}
	if !s.HasRecoveries() {
		b.WriteString("- **Note:** no usable recoveries at this sample size\n")
	}
	b.WriteString("\n")
}

func componentOrder() string {
	names := make([]string, len(ezdiffusion.Components))
	for i, c := range ezdiffusion.Components {
		names[i] = c.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

// skippedLine lists reasons alphabetically so output is stable
func skippedLine(skipped map[ezdiffusion.UnrecoverableReason]int) string {
	reasons := make([]string, 0, len(skipped))
	for reason, n := range skipped {
		if n > 0 {
			reasons = append(reasons, string(reason))
		}
	}
	sort.Strings(reasons)
	parts := make([]string, len(reasons))
	for i, reason := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", reason, skipped[ezdiffusion.UnrecoverableReason(reason)])
	}
	return strings.Join(parts, ", ")
}

// WriteMarkdown writes the markdown report to w
func WriteMarkdown(w io.Writer, r *ezdiffusion.AggregateReport) error {
	if _, err := io.WriteString(w, Markdown(r)); err != nil {
		return errors.ReportError("failed to write report", err)
	}
	return nil
}

// SaveMarkdown writes the markdown report to path, creating parent directories
func SaveMarkdown(path string, r *ezdiffusion.AggregateReport) error {
	return save(path, []byte(Markdown(r)))
}

func save(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.ReportError("failed to create report directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.ReportError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
