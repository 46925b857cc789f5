package instrument

import (
	"fmt"

	"scribble/internal/analysis"
	"scribble/internal/extractor"
	"scribble/internal/sast"
	"scribble/internal/solast"
	"scribble/internal/typecheck"
)

// AssertMode selects how a failed user assertion is surfaced.
type AssertMode string

const (
	// AssertLog emits an event and lets execution continue; fuzzers
	// watch for the event.
	AssertLog AssertMode = "log"
	// AssertMstore writes a magic value to memory slot 0 and reverts.
	AssertMstore AssertMode = "mstore"
)

// Options are the instrumentation switches surfaced on the CLI.
type Options struct {
	UserAssertMode  AssertMode
	NoAssert        bool
	DebugEvents     bool
	UtilsOutputPath string
}

// wrapPhase is the per-function interposition state. Transitions are
// idempotent per function id.
type wrapPhase int

const (
	unwrapped wrapPhase = iota
	wrappingStarted
	prologueReady
	instrumented
)

// Ctx holds everything the instrumenter accumulates across one run.
type Ctx struct {
	Arena *solast.Context
	Units []*solast.SourceUnit
	CHA   *analysis.CHA
	Graph *analysis.CallGraph
	Env   *typecheck.TypeEnv
	Sem   typecheck.SemanticMap
	Opts  Options

	// Annotations processed, in input order.
	Annotations []*extractor.AnnotationMetadata

	// EvaluationStatements maps an annotation to the generated prelude
	// and evaluation nodes; InstrumentedCheck to its final condition.
	EvaluationStatements map[*extractor.AnnotationMetadata][]solast.ID
	InstrumentedCheck    map[*extractor.AnnotationMetadata]solast.ID

	// DebugEventFor maps an annotation to its generated event
	// definition.
	DebugEventFor map[*extractor.AnnotationMetadata]solast.ID

	// GeneralInstrumentation collects generated nodes not attributable
	// to a single annotation (wrappers, sentinels, imports).
	GeneralInstrumentation []solast.ID

	UtilsUnit     *solast.SourceUnit
	UtilsContract *solast.ContractDefinition

	wrapState map[solast.ID]wrapPhase
	userFns   map[*sast.UserFunctionDefinition]solast.ID
	checkers  map[solast.ID]solast.ID
	counter   int
}

func NewCtx(arena *solast.Context, units []*solast.SourceUnit, cha *analysis.CHA, graph *analysis.CallGraph,
	env *typecheck.TypeEnv, sem typecheck.SemanticMap, opts Options) *Ctx {
	if opts.UserAssertMode == "" {
		opts.UserAssertMode = AssertLog
	}
	return &Ctx{
		Arena:                arena,
		Units:                units,
		CHA:                  cha,
		Graph:                graph,
		Env:                  env,
		Sem:                  sem,
		Opts:                 opts,
		EvaluationStatements: make(map[*extractor.AnnotationMetadata][]solast.ID),
		InstrumentedCheck:    make(map[*extractor.AnnotationMetadata]solast.ID),
		DebugEventFor:        make(map[*extractor.AnnotationMetadata]solast.ID),
		wrapState:            make(map[solast.ID]wrapPhase),
		userFns:              make(map[*sast.UserFunctionDefinition]solast.ID),
		checkers:             make(map[solast.ID]solast.ID),
	}
}

// fresh returns a name that cannot collide with user identifiers.
func (ic *Ctx) fresh(prefix string) string {
	ic.counter++
	return fmt.Sprintf("__scribble_%s_%d", prefix, ic.counter)
}

// general records a node as instrumentation not tied to one annotation.
func (ic *Ctx) general(ids ...solast.ID) {
	ic.GeneralInstrumentation = append(ic.GeneralInstrumentation, ids...)
}

// record attributes generated evaluation nodes to an annotation;
// nodes generated outside any annotation count as general
// instrumentation.
func (ic *Ctx) record(annot *extractor.AnnotationMetadata, ids ...solast.ID) {
	if annot == nil {
		ic.general(ids...)
		return
	}
	ic.EvaluationStatements[annot] = append(ic.EvaluationStatements[annot], ids...)
}
