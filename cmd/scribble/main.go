// Package main implements the scribble CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var rootCmd = &cobra.Command{
	Use:   "scribble [flags] <file...>",
	Short: "Runtime-verification instrumentation for smart contracts",
	Long: `Scribble translates doc-comment annotations (#if_succeeds, #invariant,
#define) into inline runtime checks and emits an instrumented program.`,
	Args: cobra.MinimumNArgs(1),
	RunE: scribbleExecution,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	flags := rootCmd.Flags()
	flags.String("input-mode", "source", "interpret input as target-language source or a compiler standard-JSON document (source|json)")
	flags.String("compiler-version", "auto", "host compiler version, or auto for per-file detection")
	flags.String("path-remapping", "", "import path remappings \"a=b;c=d\", passed to the host compiler verbatim")
	flags.String("filter-type", "", "only consider annotations whose kind matches this regex")
	flags.String("filter-message", "", "only consider annotations whose message matches this regex")
	flags.String("output-mode", "files", "emit one concatenated file, per-file .instrumented files, or a JSON bundle (flat|files|json)")
	flags.StringP("output", "o", "--", "destination for flat/json output (-- for stdout)")
	flags.String("utils-output-path", ".", "directory the synthesised utilities unit is written to")
	flags.String("user-assert-mode", "log", "assertion lowering strategy (log|mstore)")
	flags.Bool("no-assert", false, "skip generation of user assertions")
	flags.Bool("debug-events", false, "emit per-annotation debug events")
	flags.String("instrumentation-metadata-file", "", "write the instrumentation metadata record to this path")
	flags.Bool("arm", false, "after writing, swap originals to .original and instrumented copies into their place")
	flags.Bool("disarm", false, "reverse a previous --arm")
	flags.Bool("keep-instrumented", false, "with --disarm, retain the .instrumented files")
	flags.Bool("quiet", false, "suppress progress messages")

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func configureLogging(quiet bool) {
	if quiet {
		commonlog.Configure(0, nil)
	} else {
		commonlog.Configure(1, nil)
	}
}
