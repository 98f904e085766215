package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ezrecover/domain/ezdiffusion"
	"ezrecover/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *ezdiffusion.AggregateReport {
	nan := math.NaN()
	return &ezdiffusion.AggregateReport{
		RunID:       "0190c6b2-0000-7000-8000-000000000000",
		Fingerprint: "abc123def456",
		Seed:        42,
		Iterations:  3,
		SampleSizes: []int{40, 10},
		Results: map[int]ezdiffusion.SampleSizeSummary{
			10: {
				SampleSize:       10,
				Attempted:        3,
				Retained:         0,
				Skipped:          map[ezdiffusion.UnrecoverableReason]int{ezdiffusion.ReasonNonPositiveVariance: 2, ezdiffusion.ReasonZeroDrift: 1},
				MeanBias:         ezdiffusion.Vector3{nan, nan, nan},
				MeanSquaredError: ezdiffusion.Vector3{nan, nan, nan},
				BiasStdDev:       ezdiffusion.Vector3{nan, nan, nan},
			},
			40: {
				SampleSize:       40,
				Attempted:        3,
				Retained:         3,
				MeanBias:         ezdiffusion.Vector3{0.01, -0.02, 0.003},
				MeanSquaredError: ezdiffusion.Vector3{0.1, 0.2, 0.005},
				BiasStdDev:       ezdiffusion.Vector3{0.3, 0.4, 0.05},
			},
		},
	}
}

func TestMarkdown_Layout(t *testing.T) {
	out := Markdown(sampleReport())

	assert.Contains(t, out, "- **Run ID:** 0190c6b2-0000-7000-8000-000000000000\n")
	assert.Contains(t, out, "- **Seed:** 42\n")
	assert.Contains(t, out, "- **Component Order:** [drift_rate boundary_separation nondecision_time]\n")

	assert.Contains(t, out, "### Sample Size 40:\n"+
		"- **Mean Bias:** [0.01 -0.02 0.003]\n"+
		"- **Mean Squared Error:** [0.1 0.2 0.005]\n"+
		"- **Bias Std Dev:** [0.3 0.4 0.05]\n"+
		"- **Retained Trials:** 3/3\n\n")

	// sections follow request order, not numeric order
	assert.Less(t, strings.Index(out, "Sample Size 40"), strings.Index(out, "Sample Size 10"))
}

func TestMarkdown_NoRecoveries(t *testing.T) {
	out := Markdown(sampleReport())

	assert.Contains(t, out, "### Sample Size 10:\n"+
		"- **Mean Bias:** [NaN NaN NaN]\n"+
		"- **Mean Squared Error:** [NaN NaN NaN]\n"+
		"- **Retained Trials:** 0/3\n"+
		"- **Skipped:** non_positive_variance=2, zero_drift_estimate=1\n")
	assert.Contains(t, out, "no usable recoveries")
}

func TestHTML_CompletePage(t *testing.T) {
	page := string(HTML(sampleReport()))

	assert.Contains(t, page, "<title>")
	assert.Contains(t, page, "<h3")
	assert.Contains(t, page, "Sample Size 40:")
	assert.Contains(t, page, "<strong>Mean Bias:</strong>")
	assert.Contains(t, page, "</html>")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleReport()))
	assert.Equal(t, Markdown(sampleReport()), buf.String())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "nested", "version.md")
	htmlPath := filepath.Join(dir, "version.html")

	require.NoError(t, SaveMarkdown(mdPath, sampleReport()))
	require.NoError(t, SaveHTML(htmlPath, sampleReport()))

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, Markdown(sampleReport()), string(md))

	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(bytes.TrimSpace(page), []byte("<!DOCTYPE html>")))
}

func TestSave_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	// a regular file where a directory is expected
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := SaveMarkdown(filepath.Join(blocker, "version.md"), sampleReport())
	require.Error(t, err)
	assert.Equal(t, errors.CodeReportError, errors.GetCode(err))
}
