package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"
)

// Exit codes returned by Run and List.
const (
	ExitOK               = 0
	ExitMissingResources = 1
	ExitFatal            = 2
)

// DefaultResourceSource is where the test images and presets are kept.
const DefaultResourceSource = "GDrive/FD-Imaging/Testing/integration-test-suite/"

// ErrUnknownPlatform is returned when the host operating system is not one
// the engine is built for.
var ErrUnknownPlatform = errors.New("failed to query current platform")

// ErrDuplicateOutput is returned when two selected cases would render to the
// same result file.
var ErrDuplicateOutput = errors.New("duplicate output file")

// Config holds the configuration for running the harness.
type Config struct {
	Platform       string // OS name overriding the detected platform
	ExecutablePath string // used as is instead of the per-platform location
	Layout         Layout
	Catalog        []TestCase
	NamePattern    string // Go regex pattern matched against TestCase.Name
	Jobs           int    // cases run at once; <= 1 runs sequentially
	Timeout        time.Duration
	Probe          bool
	ReportPath     string // relative paths are resolved against Layout.Base
	ResourceSource string
	Runner         ProcessRunner // nil spawns real processes
	Output         io.Writer
	ErrOutput      io.Writer
	Color          bool
}

func (cfg Config) platform() Platform {
	if cfg.Platform != "" {
		return PlatformFromName(cfg.Platform)
	}
	return ResolvePlatform()
}

// resolveExecutable determines the platform and the engine path. An explicit
// ExecutablePath skips the platform table.
func resolveExecutable(cfg Config) (Platform, string, error) {
	p := cfg.platform()
	if cfg.ExecutablePath != "" {
		return p, cfg.Layout.CommandPath(cfg.ExecutablePath), nil
	}
	if p == Unknown {
		return p, "", ErrUnknownPlatform
	}
	exePath, err := cfg.Layout.ExecutablePath(p)
	if err != nil {
		return p, "", err
	}
	return p, exePath, nil
}

// selectCases applies the name filter to the catalog, keeping its order.
// The selection is rejected when two cases share an output file.
func selectCases(cfg Config) ([]TestCase, error) {
	selected := cfg.Catalog
	if cfg.NamePattern != "" {
		re, err := regexp.Compile(cfg.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		selected = nil
		for _, tc := range cfg.Catalog {
			if re.MatchString(tc.Name()) {
				selected = append(selected, tc)
			}
		}
	}
	if err := checkOutputNames(selected); err != nil {
		return nil, err
	}
	return selected, nil
}

func checkOutputNames(cases []TestCase) error {
	seen := make(map[string]TestCase, len(cases))
	for _, tc := range cases {
		name := OutputFileName(tc.Image, tc.Preset)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w %s: written by %q and %q", ErrDuplicateOutput, name, prev.Name(), tc.Name())
		}
		seen[name] = tc
	}
	return nil
}

// List prints the resolved engine path and every selected case with its
// resolved paths. Nothing is executed and the results directory is left
// alone.
func List(cfg Config) int {
	cases, err := selectCases(cfg)
	if err != nil {
		fmt.Fprintf(cfg.ErrOutput, "Error: %v\n", err)
		return ExitFatal
	}

	_, exePath, err := resolveExecutable(cfg)
	if err != nil {
		exePath = "<unresolved>"
	}
	fmt.Fprintf(cfg.Output, "executable: %s\n", exePath)

	for _, tc := range cases {
		imagePath := cfg.Layout.ImagePath(tc.Image)
		presetPath := cfg.Layout.PresetPath(tc.Preset)
		fmt.Fprintln(cfg.Output, tc.Name())
		fmt.Fprintf(cfg.Output, "  image:  %s (exists: %t)\n", imagePath, exists(imagePath))
		fmt.Fprintf(cfg.Output, "  preset: %s (exists: %t)\n", presetPath, exists(presetPath))
		fmt.Fprintf(cfg.Output, "  output: %s\n", cfg.Layout.OutputPath(tc.Image, tc.Preset))
	}
	return ExitOK
}

// Run renders every selected case and reports the outcome. It returns
// ExitFatal when the engine cannot be located or the results directory
// cannot be reset, ExitMissingResources when any case lacked its image or
// preset, and ExitOK otherwise, however many renderings failed.
func Run(ctx context.Context, cfg Config) int {
	log := Logger()

	platform, exePath, err := resolveExecutable(cfg)
	if err != nil {
		fmt.Fprintf(cfg.ErrOutput, "Error: %v. Aborting...\n", err)
		return ExitFatal
	}
	log.Debug("resolved executable", "platform", platform, "path", exePath)

	cases, err := selectCases(cfg)
	if err != nil {
		fmt.Fprintf(cfg.ErrOutput, "Error: %v\n", err)
		return ExitFatal
	}

	if err := ResetResultsDirectory(cfg.Layout.ResultsPath()); err != nil {
		fmt.Fprintf(cfg.ErrOutput, "Error: %v. Aborting...\n", err)
		return ExitFatal
	}

	executor := NewExecutor(exePath, cfg.Layout, cfg.ErrOutput)
	if cfg.Runner != nil {
		executor.Runner = cfg.Runner
	}
	executor.Timeout = cfg.Timeout
	executor.Probe = cfg.Probe

	reporter := NewReporter(cfg.Output, cfg.Color)
	fmt.Fprintln(cfg.Output, exePath)
	reporter.ReportStart(len(cases))

	started := time.Now()
	results := runCases(ctx, executor, reporter, cases, cfg.Jobs)
	summary := Summarize(results)
	reporter.ReportSummary(summary)

	exitCode := ExitOK
	if summary.Missing > 0 {
		source := cfg.ResourceSource
		if source == "" {
			source = DefaultResourceSource
		}
		reporter.ReportMissing(summary.Missing, source, cfg.Layout)
		exitCode = ExitMissingResources
	}

	if cfg.ReportPath != "" {
		report := NewReport(platform, exePath, started)
		report.Duration = time.Since(started)
		report.Summary = summary
		report.ExitCode = exitCode
		report.Cases = results
		reportPath := cfg.Layout.resolve(filepath.FromSlash(cfg.ReportPath))
		if err := report.WriteFile(reportPath); err != nil {
			fmt.Fprintf(cfg.ErrOutput, "Error: %v\n", err)
			return ExitFatal
		}
		log.Debug("report written", "path", reportPath, "run_id", report.RunID)
	}

	return exitCode
}

// runCases executes cases and reports them in catalog order. With jobs > 1
// the cases run concurrently and are reported once all have finished.
func runCases(ctx context.Context, executor *Executor, reporter *Reporter, cases []TestCase, jobs int) []CaseResult {
	results := make([]CaseResult, len(cases))
	if jobs <= 1 {
		for i, tc := range cases {
			results[i] = executor.RunCase(ctx, tc)
			reporter.ReportResult(results[i])
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, tc := range cases {
		g.Go(func() error {
			results[i] = executor.RunCase(ctx, tc)
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range results {
		reporter.ReportResult(result)
	}
	return results
}
