package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"scribble/internal/analysis"
	"scribble/internal/compiler"
	"scribble/internal/errors"
	"scribble/internal/extractor"
	"scribble/internal/flatten"
	"scribble/internal/instrument"
	"scribble/internal/merge"
	"scribble/internal/metadata"
	"scribble/internal/printer"
	"scribble/internal/solast"
	"scribble/internal/typecheck"
	"scribble/internal/version"
)

var log = commonlog.GetLogger("scribble.cli")

// diagnosticsError carries positioned user diagnostics up to main.
type diagnosticsError struct {
	diags   []errors.CompilerError
	sources map[string]string
}

func (e *diagnosticsError) Error() string {
	var b strings.Builder
	for i, d := range e.diags {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.OneLine())
	}
	return b.String()
}

func printError(err error) {
	if de, ok := err.(*diagnosticsError); ok {
		for _, d := range de.diags {
			if source, ok := de.sources[d.Position.Filename]; ok {
				reporter := errors.NewErrorReporter(d.Position.Filename, source)
				fmt.Fprint(os.Stderr, reporter.FormatError(d))
			}
			fmt.Fprintln(os.Stderr, d.OneLine())
		}
		return
	}
	color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
}

type runConfig struct {
	inputs       []string
	inputMode    string
	compilerFlag string
	remappings   []string
	filter       extractor.AnnotationFilter
	outputMode   string
	output       string
	utilsPath    string
	assertMode   string
	noAssert     bool
	debugEvents  bool
	metadataFile string
	arm          bool
	disarm       bool
	keepInstr    bool
	quiet        bool
}

func readConfig(cmd *cobra.Command, args []string) (*runConfig, error) {
	flags := cmd.Flags()
	cfg := &runConfig{inputs: args}
	var err error
	if cfg.inputMode, err = flags.GetString("input-mode"); err != nil {
		return nil, err
	}
	if cfg.compilerFlag, err = flags.GetString("compiler-version"); err != nil {
		return nil, err
	}
	remapping, err := flags.GetString("path-remapping")
	if err != nil {
		return nil, err
	}
	if remapping != "" {
		cfg.remappings = strings.Split(remapping, ";")
	}
	filterType, err := flags.GetString("filter-type")
	if err != nil {
		return nil, err
	}
	if filterType != "" {
		if cfg.filter.Type, err = regexp.Compile(filterType); err != nil {
			return nil, fmt.Errorf("malformed --filter-type: %v", err)
		}
	}
	filterMessage, err := flags.GetString("filter-message")
	if err != nil {
		return nil, err
	}
	if filterMessage != "" {
		if cfg.filter.Message, err = regexp.Compile(filterMessage); err != nil {
			return nil, fmt.Errorf("malformed --filter-message: %v", err)
		}
	}
	if cfg.outputMode, err = flags.GetString("output-mode"); err != nil {
		return nil, err
	}
	if cfg.output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.utilsPath, err = flags.GetString("utils-output-path"); err != nil {
		return nil, err
	}
	if cfg.assertMode, err = flags.GetString("user-assert-mode"); err != nil {
		return nil, err
	}
	if cfg.noAssert, err = flags.GetBool("no-assert"); err != nil {
		return nil, err
	}
	if cfg.debugEvents, err = flags.GetBool("debug-events"); err != nil {
		return nil, err
	}
	if cfg.metadataFile, err = flags.GetString("instrumentation-metadata-file"); err != nil {
		return nil, err
	}
	if cfg.arm, err = flags.GetBool("arm"); err != nil {
		return nil, err
	}
	if cfg.disarm, err = flags.GetBool("disarm"); err != nil {
		return nil, err
	}
	if cfg.keepInstr, err = flags.GetBool("keep-instrumented"); err != nil {
		return nil, err
	}
	if cfg.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func scribbleExecution(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig(cmd, args)
	if err != nil {
		return err
	}
	configureLogging(cfg.quiet)

	if cfg.disarm {
		return runDisarm(cfg.inputs, cfg.keepInstr)
	}
	return runPipeline(cfg)
}

func runPipeline(cfg *runConfig) error {
	sources, err := readInputs(cfg.inputs)
	if err != nil {
		return err
	}

	groups, selected, err := compile(cfg, sources)
	if err != nil {
		return err
	}

	merged, err := merge.Merge(groups)
	if err != nil {
		return err
	}
	log.Infof("merged %d unit(s)", len(merged.Units))

	// Extraction runs per unit, files in input order, annotations in
	// source order. Imported files are read off disk on demand.
	fileSources := make(map[string]string)
	var files []string
	for _, unit := range merged.Units {
		text, ok := sources[unit.AbsolutePath]
		if !ok {
			data, err := os.ReadFile(unit.AbsolutePath)
			if err != nil {
				return fmt.Errorf("cannot read %s: %v", unit.AbsolutePath, err)
			}
			text = string(data)
		}
		fileSources[unit.AbsolutePath] = text
		files = append(files, unit.AbsolutePath)
	}

	nextID := 0
	var annotations []*extractor.AnnotationMetadata
	var diags []errors.CompilerError
	for fileIdx, unit := range merged.Units {
		ex := extractor.New(merged.Ctx, unit.AbsolutePath, fileSources[unit.AbsolutePath], fileIdx, cfg.filter, &nextID)
		annotations = append(annotations, ex.ExtractUnit(unit)...)
		diags = append(diags, ex.Errors()...)
	}
	if len(diags) > 0 {
		return &diagnosticsError{diags: diags, sources: fileSources}
	}
	log.Infof("extracted %d annotation(s)", len(annotations))

	env := typecheck.NewTypeEnv()
	sem := make(typecheck.SemanticMap)
	checker := typecheck.NewChecker(merged.Ctx, merged.Units, env, sem)
	for _, annot := range annotations {
		checker.CheckAnnotation(annot)
	}
	if diags := checker.Errors(); len(diags) > 0 {
		return &diagnosticsError{diags: diags, sources: fileSources}
	}

	cha := analysis.BuildCHA(merged.Ctx, merged.Units)
	graph := analysis.BuildCallGraph(merged.Ctx, merged.Units, cha)
	ic := instrument.NewCtx(merged.Ctx, merged.Units, cha, graph, env, sem, instrument.Options{
		UserAssertMode:  instrument.AssertMode(cfg.assertMode),
		NoAssert:        cfg.noAssert,
		DebugEvents:     cfg.debugEvents,
		UtilsOutputPath: cfg.utilsPath,
	})
	if err := instrument.Run(ic, annotations); err != nil {
		return err
	}

	return emit(cfg, ic, merged, annotations, files, selected)
}

// readInputs loads every input path; "--" reads stdin.
func readInputs(paths []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, path := range paths {
		if path == "--" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, err
			}
			out["<stdin>"] = string(data)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		out[path] = string(data)
	}
	return out, nil
}

// compile resolves the compiler version and runs the host compiler (or
// decodes a standard-JSON document) per input.
func compile(cfg *runConfig, sources map[string]string) ([]merge.UnitGroup, string, error) {
	if cfg.inputMode == "json" {
		if cfg.compilerFlag == "" || cfg.compilerFlag == "auto" {
			return nil, "", fmt.Errorf("--compiler-version is mandatory with --input-mode json")
		}
		var groups []merge.UnitGroup
		for _, path := range cfg.inputs {
			group, _, err := compiler.DecodeStandardJSON([]byte(sources[inputKey(path)]))
			if err != nil {
				return nil, "", err
			}
			groups = append(groups, *group)
		}
		return groups, cfg.compilerFlag, nil
	}

	perFile := make(map[string][]string)
	for path, source := range sources {
		perFile[path] = version.DetectPragmas(source)
	}
	selected, err := version.Select(cfg.compilerFlag, perFile)
	if err != nil {
		return nil, "", err
	}
	log.Infof("using compiler version %s", selected)

	frontend := &compiler.SolcFrontend{}
	var groups []merge.UnitGroup
	for _, path := range cfg.inputs {
		key := inputKey(path)
		group, _, err := frontend.Compile(key, sources[key], selected.String(), cfg.remappings)
		if err != nil {
			return nil, "", err
		}
		groups = append(groups, *group)
	}
	return groups, selected.String(), nil
}

func inputKey(path string) string {
	if path == "--" {
		return "<stdin>"
	}
	return path
}

// emit writes the instrumented output in the selected mode, the
// utilities unit, and the metadata record.
func emit(cfg *runConfig, ic *instrument.Ctx, merged *merge.Result,
	annotations []*extractor.AnnotationMetadata, files []string, compilerVersion string) error {

	switch cfg.outputMode {
	case "flat", "json":
		all := append([]*solast.SourceUnit{ic.UtilsUnit}, merged.Units...)
		result, err := flatten.Flatten(merged.Ctx, all, compilerVersion)
		if err != nil {
			return err
		}
		meta := metadata.Build(ic, annotations, result.Ranges, files, cfg.arm)

		var payload []byte
		if cfg.outputMode == "flat" {
			payload = []byte(result.Text)
		} else {
			bundle := map[string]interface{}{
				"sources": map[string]interface{}{
					"flattened.sol": map[string]string{"source": result.Text},
				},
				"instrumentationMetadata": meta,
			}
			if payload, err = json.MarshalIndent(bundle, "", "    "); err != nil {
				return err
			}
		}
		if err := writeOutput(cfg.output, payload); err != nil {
			return err
		}
		return writeMetadata(cfg.metadataFile, meta)

	case "files":
		ranges := make(printer.SourceMap)
		var instrumentedPaths []string
		for fileIdx, unit := range merged.Units {
			text, unitRanges := printer.Print(merged.Ctx, unit, fileIdx)
			for id, src := range unitRanges {
				ranges[id] = src
			}
			path := unit.AbsolutePath + ".instrumented"
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return err
			}
			instrumentedPaths = append(instrumentedPaths, unit.AbsolutePath)
		}

		utilsText, utilsRanges := printer.Print(merged.Ctx, ic.UtilsUnit, len(merged.Units))
		for id, src := range utilsRanges {
			ranges[id] = src
		}
		if err := os.MkdirAll(filepath.Dir(ic.UtilsUnit.AbsolutePath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(ic.UtilsUnit.AbsolutePath, []byte(utilsText), 0o644); err != nil {
			return err
		}

		meta := metadata.Build(ic, annotations, ranges, files, cfg.arm)
		if err := writeMetadata(cfg.metadataFile, meta); err != nil {
			return err
		}

		if cfg.arm {
			return runArm(instrumentedPaths)
		}
		return nil
	}
	return fmt.Errorf("unknown output mode %q", cfg.outputMode)
}

func writeOutput(dest string, payload []byte) error {
	if dest == "--" || dest == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(dest, payload, 0o644)
}

func writeMetadata(path string, meta *metadata.InstrumentationMetadata) error {
	if path == "" {
		return nil
	}
	data, err := meta.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
