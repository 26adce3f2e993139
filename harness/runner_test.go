package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner records invocations and answers with scripted exit codes.
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	script func(ctx context.Context, args []string) (int, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.script == nil {
		return 0, nil
	}
	return f.script(ctx, args)
}

func (f *fakeRunner) invoked() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// presetArg returns the preset path of an engine argument list.
func presetArg(args []string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "--preset" {
			return args[i+1]
		}
	}
	return ""
}

// newSuite lays out a suite directory containing the resources of cases,
// except for the image or preset names listed in skip.
func newSuite(t *testing.T, cases []TestCase, skip ...string) Layout {
	t.Helper()
	layout := DefaultLayout()
	layout.Base = t.TempDir()

	skipped := make(map[string]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	for _, tc := range cases {
		if !skipped[tc.Image] {
			writeFile(t, layout.ImagePath(tc.Image), "image")
		}
		if !skipped[tc.Preset] {
			writeFile(t, layout.PresetPath(tc.Preset), "preset")
		}
	}
	return layout
}

func TestCommand(t *testing.T) {
	e := &Executor{Layout: DefaultLayout(), ExecutablePath: "engine"}
	got := e.Command(TestCase{Image: "DSC03024.tif", Preset: "testing/preset_bwmixer_average.bs"})
	want := []string{
		"engine",
		filepath.Join("resources", "images", "DSC03024.tif"),
		"--preset", filepath.Join("resources", "presets", "testing", "preset_bwmixer_average.bs"),
		"--output", filepath.Join("results", "filtered_preset_bwmixer_average.bs_DSC03024.tif"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRunCaseOutcomes(t *testing.T) {
	tc := TestCase{Image: "ajanta.tif", Preset: "testing/preset_sharpen_fine.bs"}

	tests := []struct {
		name     string
		exitCode int
		err      error
		want     Outcome
	}{
		{"success", 0, nil, OutcomeSuccess},
		{"nonzero exit", 1, nil, OutcomeFailure},
		{"crash", 139, nil, OutcomeFailure},
		{"launch error", -1, errors.New("exec: no such file"), OutcomeFailure},
		{"deadline", -1, context.DeadlineExceeded, OutcomeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{script: func(context.Context, []string) (int, error) {
				return tt.exitCode, tt.err
			}}
			e := &Executor{Runner: runner, Layout: newSuite(t, []TestCase{tc}), ExecutablePath: "engine"}

			result := e.RunCase(context.Background(), tc)
			if result.Outcome != tt.want {
				t.Errorf("expected outcome %s, got %s", tt.want, result.Outcome)
			}
			if result.ExitCode != tt.exitCode {
				t.Errorf("expected exit code %d, got %d", tt.exitCode, result.ExitCode)
			}
			if tt.err != nil && result.Error == "" {
				t.Error("expected error text to be recorded")
			}
			if len(runner.invoked()) != 1 {
				t.Errorf("expected exactly one invocation, got %d", len(runner.invoked()))
			}
		})
	}
}

func TestRunCaseMissingResources(t *testing.T) {
	tc := TestCase{Image: "ajanta.tif", Preset: "testing/missing.bs"}
	runner := &fakeRunner{}
	e := &Executor{Runner: runner, Layout: newSuite(t, []TestCase{tc}, "testing/missing.bs"), ExecutablePath: "engine"}

	result := e.RunCase(context.Background(), tc)
	if result.Outcome != OutcomeMissing {
		t.Fatalf("expected missing, got %s", result.Outcome)
	}
	if !result.ImageExists || result.PresetExists {
		t.Errorf("expected image to exist and preset not, got %t/%t", result.ImageExists, result.PresetExists)
	}
	if n := len(runner.invoked()); n != 0 {
		t.Errorf("runner must not be invoked, got %d calls", n)
	}
}

func TestRunCaseTimeout(t *testing.T) {
	tc := TestCase{Image: "ajanta.tif", Preset: "p.bs"}
	runner := &fakeRunner{script: func(ctx context.Context, _ []string) (int, error) {
		<-ctx.Done()
		return -1, ctx.Err()
	}}
	e := &Executor{
		Runner:         runner,
		Layout:         newSuite(t, []TestCase{tc}),
		ExecutablePath: "engine",
		Timeout:        20 * time.Millisecond,
	}

	result := e.RunCase(context.Background(), tc)
	if result.Outcome != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s", result.Outcome)
	}
}

func TestSummarize(t *testing.T) {
	results := []CaseResult{
		{Outcome: OutcomeSuccess},
		{Outcome: OutcomeSuccess},
		{Outcome: OutcomeFailure},
		{Outcome: OutcomeTimeout},
		{Outcome: OutcomeMissing},
	}
	s := Summarize(results)
	want := Summary{Total: 5, Succeeded: 2, Failed: 1, TimedOut: 1, Missing: 1}
	if s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}
	if s.Succeeded+s.Failed+s.TimedOut+s.Missing != s.Total {
		t.Error("outcome counts must add up to the total")
	}
}

// The test binary doubles as a fake engine when fakeEngineEnv is set, so
// ExecRunner can be exercised with a real process.
const fakeEngineEnv = "HARNESS_FAKE_ENGINE"

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeEngineEnv); mode != "" {
		os.Exit(fakeEngine(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

func fakeEngine(mode string, args []string) int {
	fmt.Println("engine stdout noise")
	switch mode {
	case "ok":
		var output string
		for i := 0; i+1 < len(args); i++ {
			if args[i] == "--output" {
				output = args[i+1]
			}
		}
		if err := os.WriteFile(output, []byte("rendered"), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "sleep":
		time.Sleep(time.Minute)
		return 0
	default:
		fmt.Fprintln(os.Stderr, "engine: cannot apply preset")
		return 3
	}
}

func newExecEngine(t *testing.T, mode string, tc TestCase) (*Executor, *bytes.Buffer) {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}
	t.Setenv(fakeEngineEnv, mode)

	layout := newSuite(t, []TestCase{tc})
	if err := ResetResultsDirectory(layout.ResultsPath()); err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer
	return NewExecutor(exe, layout, &stderr), &stderr
}

func TestExecRunnerSuccess(t *testing.T) {
	tc := TestCase{Image: "DSC03024.tif", Preset: "testing/preset_vignette_black.bs"}
	e, _ := newExecEngine(t, "ok", tc)

	result := e.RunCase(context.Background(), tc)
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Outcome, result.Error)
	}
	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if string(data) != "rendered" {
		t.Errorf("unexpected output %q", data)
	}
}

func TestExecRunnerFailurePassesStderr(t *testing.T) {
	tc := TestCase{Image: "DSC03024.tif", Preset: "testing/preset_vignette_white.bs"}
	e, stderr := newExecEngine(t, "fail", tc)

	result := e.RunCase(context.Background(), tc)
	if result.Outcome != OutcomeFailure {
		t.Fatalf("expected failure, got %s", result.Outcome)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(stderr.String(), "cannot apply preset") {
		t.Errorf("engine stderr not passed through: %q", stderr.String())
	}
	if strings.Contains(stderr.String(), "stdout noise") {
		t.Error("engine stdout must be discarded")
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	tc := TestCase{Image: "DSC03024.tif", Preset: "testing/preset_grain_max_blur.bs"}
	e, _ := newExecEngine(t, "sleep", tc)
	e.Timeout = 200 * time.Millisecond

	result := e.RunCase(context.Background(), tc)
	if result.Outcome != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s (%s)", result.Outcome, result.Error)
	}
}

func TestExecRunnerMissingExecutable(t *testing.T) {
	r := ExecRunner{}
	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "no-such-engine"), nil)
	if err == nil {
		t.Fatal("expected launch error")
	}
}

func TestExecRunnerEngineInWorkingDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("engine copy needs an .exe name on windows")
	}
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}
	data, err := os.ReadFile(exe)
	if err != nil {
		t.Fatal(err)
	}

	tc := TestCase{Image: "DSC03024.tif", Preset: "testing/preset_splittone_sepia.bs"}
	layout := newSuite(t, []TestCase{tc})
	if err := os.WriteFile(filepath.Join(layout.Base, "BlackSilk"), data, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(layout.Base)
	t.Setenv("PATH", "")
	t.Setenv(fakeEngineEnv, "ok")

	layout.Base = ""
	layout.ExecutableDir = "."
	exePath, err := layout.ExecutablePath(Linux)
	if err != nil {
		t.Fatal(err)
	}
	if err := ResetResultsDirectory(layout.ResultsPath()); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	result := NewExecutor(exePath, layout, &stderr).RunCase(context.Background(), tc)
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("expected success running %q, got %s (%s)", exePath, result.Outcome, result.Error)
	}
}

func TestExitStatus(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}
	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), fakeEngineEnv+"=fail")
	runErr := cmd.Run()
	if runErr == nil {
		t.Fatal("expected the engine to fail")
	}

	expired, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := exitStatus(expired, runErr)
	if code != 3 || err != nil {
		t.Errorf("exited engine: expected 3 <nil>, got %d %v", code, err)
	}

	code, err = exitStatus(context.Background(), nil)
	if code != 0 || err != nil {
		t.Errorf("success: expected 0 <nil>, got %d %v", code, err)
	}

	code, err = exitStatus(expired, errors.New("signal: killed"))
	if code != -1 || !errors.Is(err, context.Canceled) {
		t.Errorf("killed engine: expected -1 %v, got %d %v", context.Canceled, code, err)
	}

	launchErr := errors.New("exec: no such file")
	code, err = exitStatus(context.Background(), launchErr)
	if code != -1 || err != launchErr {
		t.Errorf("launch error: expected -1 %v, got %d %v", launchErr, code, err)
	}
}
