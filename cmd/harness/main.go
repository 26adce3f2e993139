// harness runs the image engine integration test suite.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/blacksilk/itest/harness"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type options struct {
	dir            string
	exePath        string
	exeDir         string
	platform       string
	catalogs       []string
	pattern        string
	jobs           int
	timeout        time.Duration
	reportPath     string
	resourceSource string
	probe          bool
	verbose        bool
	noColor        bool
}

func (o *options) config() (harness.Config, error) {
	layout := harness.DefaultLayout()
	layout.Base = o.dir
	layout.ExecutableDir = o.exeDir

	catalog := harness.DefaultCatalog()
	if len(o.catalogs) > 0 {
		var err error
		catalog, err = harness.LoadCatalog(o.catalogs)
		if err != nil {
			return harness.Config{}, err
		}
	}

	if o.timeout < 0 {
		return harness.Config{}, fmt.Errorf("timeout must not be negative: %s", o.timeout)
	}

	return harness.Config{
		Platform:       o.platform,
		ExecutablePath: o.exePath,
		Layout:         layout,
		Catalog:        catalog,
		NamePattern:    o.pattern,
		Jobs:           o.jobs,
		Timeout:        o.timeout,
		Probe:          o.probe,
		ReportPath:     o.reportPath,
		ResourceSource: o.resourceSource,
		Output:         os.Stdout,
		ErrOutput:      os.Stderr,
		Color:          !o.noColor && term.IsTerminal(int(os.Stdout.Fd())),
	}, nil
}

func (o *options) setupLogging() {
	if !o.verbose {
		return
	}
	harness.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           "harness [flags]",
		Short:         "Render every catalog case with the image engine and report the results",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			opts.setupLogging()
			cfg, err := opts.config()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(harness.ExitFatal)
			}
			os.Exit(harness.Run(context.Background(), cfg))
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the selected cases and their resolved paths without running them",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts.setupLogging()
			cfg, err := opts.config()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(harness.ExitFatal)
			}
			os.Exit(harness.List(cfg))
		},
	}
	cmd.AddCommand(listCmd)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", "", "suite directory relative paths are resolved against (default: working directory)")
	flags.StringVar(&opts.exePath, "exe", "", "path to the engine executable, bypassing platform detection")
	flags.StringVar(&opts.exeDir, "exe-dir", "", "directory holding the engine build (default "+harness.DefaultExecutableDir+")")
	flags.StringVar(&opts.platform, "platform", "", "operating system name to resolve the executable for (default: host)")
	flags.StringSliceVar(&opts.catalogs, "catalog", nil, "catalog files or directories (.yaml, .yml, .html) replacing the built-in cases")
	flags.StringVar(&opts.pattern, "run", "", "only run cases whose \"image > preset\" name matches this regular expression")
	flags.IntVar(&opts.jobs, "jobs", 1, "number of cases rendered at once")
	flags.DurationVar(&opts.timeout, "timeout", harness.DefaultTimeout, "per-case timeout, e.g. 90s (0 waits indefinitely)")
	flags.StringVar(&opts.reportPath, "report", "", "write a JSON report to this path (relative to --dir)")
	flags.StringVar(&opts.resourceSource, "resource-source", harness.DefaultResourceSource, "where missing resources can be copied from")
	flags.BoolVar(&opts.probe, "probe", false, "record format and dimensions of each rendered file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(harness.ExitFatal)
	}
}
