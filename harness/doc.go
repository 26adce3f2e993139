// Package harness runs the integration test suite of the image rendering
// engine.
//
// # Overview
//
// The engine is an external executable. For each catalog entry (an input
// image and a preset file) the harness invokes
//
//	<exe> <image> --preset <preset> --output results/filtered_<preset base>_<image>
//
// and classifies the case by the process exit status. Cases whose image or
// preset is missing are not run. The engine's output files are never
// inspected beyond an optional header probe.
//
// # Layout
//
// Paths are relative to the suite directory unless absolute:
//
//	resources/images/    input images
//	resources/presets/   preset files, possibly in subdirectories
//	results/             removed and recreated on every run
//	../../bin/release/   engine build (BlackSilk, BlackSilk.exe or the
//	                     BlackSilk.app bundle executable)
//
// # Exit codes
//
// Run returns ExitOK when every referenced resource was present, even if
// some renderings failed; ExitMissingResources when one or more cases lacked
// their image or preset; ExitFatal when the engine could not be located or
// the results directory could not be reset.
//
// # Usage
//
//	cfg := harness.Config{
//	    Layout:    harness.DefaultLayout(),
//	    Catalog:   harness.DefaultCatalog(),
//	    Output:    os.Stdout,
//	    ErrOutput: os.Stderr,
//	}
//	os.Exit(harness.Run(context.Background(), cfg))
package harness
