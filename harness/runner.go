package harness

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// Outcome classifies a single test case.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeTimeout Outcome = "timeout"
	OutcomeMissing Outcome = "missing"
)

// waitDelay bounds how long Wait blocks on the engine's stderr after the
// process was killed.
const waitDelay = 5 * time.Second

// ProcessRunner starts a process and waits for it to finish. A process that
// ran and exited nonzero is reported through exitCode with a nil error; err
// is for processes that could not be started or were stopped by ctx.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args []string) (exitCode int, err error)
}

// ExecRunner runs the engine with os/exec. Standard output is discarded so
// the harness's own progress stays readable; standard error goes to Stderr,
// or is discarded when Stderr is nil.
type ExecRunner struct {
	Stderr io.Writer
}

// Run implements ProcessRunner.
func (r ExecRunner) Run(ctx context.Context, name string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = r.Stderr
	cmd.WaitDelay = waitDelay

	return exitStatus(ctx, cmd.Run())
}

// exitStatus maps the error of a finished command to ProcessRunner results.
// A process that exited on its own keeps its exit code even when ctx expired
// meanwhile; one that was killed reports the context error.
func exitStatus(ctx context.Context, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		return exitErr.ExitCode(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	if exitErr != nil {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// CaseResult holds everything observed while running one test case.
type CaseResult struct {
	Case         TestCase      `json:"case"`
	Outcome      Outcome       `json:"outcome"`
	Command      []string      `json:"command,omitempty"`
	ImagePath    string        `json:"image_path"`
	PresetPath   string        `json:"preset_path"`
	OutputPath   string        `json:"output_path"`
	ImageExists  bool          `json:"image_exists"`
	PresetExists bool          `json:"preset_exists"`
	ExitCode     int           `json:"exit_code"`
	Duration     time.Duration `json:"duration_ns"`
	Error        string        `json:"error,omitempty"`
	Output       *OutputInfo   `json:"output,omitempty"`
	ProbeError   string        `json:"probe_error,omitempty"`
}

// Executor runs single test cases against the rendering engine.
type Executor struct {
	Runner         ProcessRunner
	Layout         Layout
	ExecutablePath string
	Timeout        time.Duration // per case; zero waits indefinitely
	Probe          bool          // inspect the rendered file after a success
}

// NewExecutor creates an executor that spawns exePath with os/exec, passing
// the engine's standard error through to stderr.
func NewExecutor(exePath string, layout Layout, stderr io.Writer) *Executor {
	return &Executor{
		Runner:         ExecRunner{Stderr: stderr},
		Layout:         layout,
		ExecutablePath: exePath,
	}
}

// Command returns the argument list used to render tc, starting with the
// executable path.
func (e *Executor) Command(tc TestCase) []string {
	return []string{
		e.ExecutablePath,
		e.Layout.ImagePath(tc.Image),
		"--preset", e.Layout.PresetPath(tc.Preset),
		"--output", e.Layout.OutputPath(tc.Image, tc.Preset),
	}
}

// RunCase renders one test case. Cases whose image or preset is missing are
// not run. RunCase never retries.
func (e *Executor) RunCase(ctx context.Context, tc TestCase) CaseResult {
	result := CaseResult{
		Case:       tc,
		ImagePath:  e.Layout.ImagePath(tc.Image),
		PresetPath: e.Layout.PresetPath(tc.Preset),
		OutputPath: e.Layout.OutputPath(tc.Image, tc.Preset),
	}
	result.ImageExists = exists(result.ImagePath)
	result.PresetExists = exists(result.PresetPath)
	if !result.ImageExists || !result.PresetExists {
		result.Outcome = OutcomeMissing
		return result
	}

	result.Command = e.Command(tc)

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	log := Logger().With("case", tc.Name())
	log.Debug("running engine", "command", result.Command)

	start := time.Now()
	exitCode, err := e.Runner.Run(runCtx, result.Command[0], result.Command[1:])
	result.Duration = time.Since(start)
	result.ExitCode = exitCode

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result.Outcome = OutcomeTimeout
		result.Error = err.Error()
	case err != nil:
		result.Outcome = OutcomeFailure
		result.Error = err.Error()
	case exitCode != 0:
		result.Outcome = OutcomeFailure
	default:
		result.Outcome = OutcomeSuccess
	}
	log.Debug("engine finished", "outcome", result.Outcome, "exit_code", exitCode, "duration", result.Duration)

	if e.Probe && result.Outcome == OutcomeSuccess {
		info, err := ProbeOutput(result.OutputPath)
		if err != nil {
			log.Warn("probing output failed", "path", result.OutputPath, "err", err)
			result.ProbeError = err.Error()
		} else {
			result.Output = &info
		}
	}

	return result
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Summary holds aggregate statistics about a run.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	TimedOut  int `json:"timed_out"`
	Missing   int `json:"missing"`
}

// Summarize counts outcomes. Succeeded+Failed+TimedOut+Missing always equals
// Total.
func Summarize(results []CaseResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSuccess:
			s.Succeeded++
		case OutcomeTimeout:
			s.TimedOut++
		case OutcomeMissing:
			s.Missing++
		default:
			s.Failed++
		}
	}
	return s
}
