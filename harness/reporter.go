package harness

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// Reporter outputs test progress and results.
type Reporter struct {
	Out   io.Writer
	Color bool
}

// NewReporter creates a reporter that writes to the given output.
func NewReporter(out io.Writer, color bool) *Reporter {
	return &Reporter{Out: out, Color: color}
}

// ReportStart announces how many cases will run.
func (r *Reporter) ReportStart(total int) {
	fmt.Fprintf(r.Out, "Running %d test cases...\n", total)
}

// ReportResult outputs the result of a single case.
func (r *Reporter) ReportResult(result CaseResult) {
	tc := result.Case
	switch result.Outcome {
	case OutcomeMissing:
		fmt.Fprintln(r.Out, "Failed to run test-case: Image path or preset path do not exist.")
		fmt.Fprintf(r.Out, "* image-path:  %s, Exists: %t\n", result.ImagePath, result.ImageExists)
		fmt.Fprintf(r.Out, "* preset-path: %s, Exists: %t\n", result.PresetPath, result.PresetExists)
		return
	}

	fmt.Fprintln(r.Out, strings.Join(result.Command, " "))
	switch result.Outcome {
	case OutcomeSuccess:
		fmt.Fprintf(r.Out, "%s Filtered image '%s' using preset '%s'. Filtered image was written to '%s'. (%s)\n",
			r.label("Success:", ansiGreen), tc.Image, tc.Preset, result.OutputPath, formatDuration(result.Duration))
		if result.Output != nil {
			fmt.Fprintf(r.Out, "  %s %dx%d, %d bytes\n", result.Output.Format, result.Output.Width, result.Output.Height, result.Output.Size)
		}
	case OutcomeTimeout:
		fmt.Fprintf(r.Out, "%s Timed out filtering image '%s' using preset '%s' after %s.\n",
			r.label("Error:", ansiRed), tc.Image, tc.Preset, formatDuration(result.Duration))
	default:
		fmt.Fprintf(r.Out, "%s Failed to filter image '%s' using preset '%s' (exit code %d).\n",
			r.label("Error:", ansiRed), tc.Image, tc.Preset, result.ExitCode)
		if result.Error != "" {
			fmt.Fprintf(r.Out, "  %s\n", result.Error)
		}
	}
}

// ReportSummary outputs the final totals.
func (r *Reporter) ReportSummary(summary Summary) {
	fmt.Fprintf(r.Out, "Finished testing: %d out of %d test cases were successful.\n", summary.Succeeded, summary.Total)
	if summary.TimedOut > 0 {
		fmt.Fprintf(r.Out, "%d test cases timed out.\n", summary.TimedOut)
	}
}

// ReportMissing tells the operator where missing resources come from.
func (r *Reporter) ReportMissing(missing int, source string, layout Layout) {
	fmt.Fprintf(r.Out, "Resources have not been found for %d test cases. Please copy missing resources from %s to %s and %s.\n",
		missing, source, layout.ImagePath(""), layout.PresetPath(""))
}

func (r *Reporter) label(text, color string) string {
	if !r.Color {
		return text
	}
	return color + text + ansiReset
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000.0)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
