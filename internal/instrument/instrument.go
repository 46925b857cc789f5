package instrument

import (
	"fmt"

	"github.com/tliron/commonlog"

	"scribble/internal/extractor"
	"scribble/internal/sast"
	"scribble/internal/solast"
	"scribble/internal/specparse"
)

var log = commonlog.GetLogger("scribble.instrument")

// Run rewrites the merged AST: synthesises the utilities unit, builds
// per-contract invariant checkers, and wraps every target function of
// every contract in the instrumentation set.
func Run(ic *Ctx, annotations []*extractor.AnnotationMetadata) error {
	ic.Annotations = annotations
	ic.synthesizeUtils()

	byContract := make(map[solast.ID][]*extractor.AnnotationMetadata)
	byFunction := make(map[solast.ID][]*extractor.AnnotationMetadata)
	var annotated []solast.ID

	for _, annot := range annotations {
		switch annot.Kind {
		case sast.Invariant:
			byContract[annot.Target] = append(byContract[annot.Target], annot)
			annotated = appendUnique(annotated, annot.Target)
		case sast.IfSucceeds:
			byFunction[annot.Target] = append(byFunction[annot.Target], annot)
			fn := ic.Arena.MustNode(annot.Target)
			annotated = appendUnique(annotated, fn.Parent())
		}
	}

	needed := ic.CHA.NeedsInstrumentation(annotated)
	log.Infof("instrumenting %d contract(s)", len(needed))

	for _, contractID := range ic.CHA.Contracts() {
		contract, ok := ic.Arena.Node(contractID).(*solast.ContractDefinition)
		if !ok {
			continue
		}

		hasFnAnnots := false
		for _, fn := range ic.Arena.FunctionsIn(contract) {
			if len(byFunction[fn.ID()]) > 0 {
				hasFnAnnots = true
			}
		}
		needsInvariants := needed[contractID] && contract.ContractKind == solast.KindContract
		if !needsInvariants && !hasFnAnnots {
			continue
		}
		// Interfaces and libraries never receive contract invariants;
		// function annotations on them are ignored too since their
		// functions have no bodies to wrap.
		if contract.ContractKind != solast.KindContract {
			continue
		}

		ic.addUtilsBase(contract)

		var checker solast.ID = solast.InvalidID
		if needsInvariants {
			checker = ic.buildInvariantChecker(contract, byContract)
		}

		for _, fn := range ic.Arena.FunctionsIn(contract) {
			annots := byFunction[fn.ID()]
			if fn.FunctionKind == solast.FnKindConstructor {
				if needsInvariants {
					ic.instrumentConstructor(contract, fn, checker)
				}
				continue
			}
			if !fn.IsExternallyVisible() || !fn.Mutates() ||
				fn.FunctionKind == solast.FnKindFallback || fn.FunctionKind == solast.FnKindReceive {
				continue
			}
			if fn.Body == solast.InvalidID {
				continue
			}
			if err := ic.wrapFunction(contract, fn, annots, checker, needsInvariants); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildInvariantChecker emits the per-contract internal function that
// evaluates every invariant visible through the linearization.
func (ic *Ctx) buildInvariantChecker(contract *solast.ContractDefinition, byContract map[solast.ID][]*extractor.AnnotationMetadata) solast.ID {
	if id, ok := ic.checkers[contract.ID()]; ok {
		return id
	}
	arena := ic.Arena

	fn := arena.NewFunctionDefinition(
		"__scribble_check_state_invariants_"+contract.Name,
		solast.FnKindFunction, solast.VisInternal, solast.MutNonpayable)
	fn.Parameters = arena.NewParameterList().ID()
	fn.ReturnParameters = arena.NewParameterList().ID()
	arena.Adopt(fn.ID(), fn.Parameters, fn.ReturnParameters)

	var stmts []solast.ID
	for _, baseID := range contract.LinearizedBaseContracts {
		for _, annot := range byContract[baseID] {
			l := newLowering(ic, contract, nil, annot)
			cond := l.lower(annot.Parsed.Expr, &stmts)
			stmts = append(stmts, ic.emitCheck(annot, cond)...)
		}
	}

	fn.Body = arena.NewBlock(stmts...).ID()
	arena.Adopt(fn.ID(), fn.Body)
	arena.AddToContract(contract, fn.ID())
	ic.general(fn.ID())
	ic.checkers[contract.ID()] = fn.ID()
	return fn.ID()
}

// instrumentConstructor appends the invariant check to the end of a
// constructor; constructors get no entry guard.
func (ic *Ctx) instrumentConstructor(contract *solast.ContractDefinition, fn *solast.FunctionDefinition, checker solast.ID) {
	if fn.Body == solast.InvalidID || checker == solast.InvalidID {
		return
	}
	arena := ic.Arena
	call := arena.NewFunctionCall(solast.CallFunction,
		arena.NewIdentifier(checkerName(arena, checker), checker).ID())
	stmt := arena.NewExpressionStatement(call.ID())
	if err := arena.InsertBefore(fn.Body, solast.InvalidID, stmt.ID()); err != nil {
		return
	}
	ic.general(call.ID(), stmt.ID())
}

// wrapFunction applies the interposition state machine: rename the
// original body away, then emit the wrapper running preludes, the
// original, post-conditions and the invariant epilogue.
func (ic *Ctx) wrapFunction(contract *solast.ContractDefinition, fn *solast.FunctionDefinition,
	annots []*extractor.AnnotationMetadata, checker solast.ID, needsInvariants bool) error {
	if ic.wrapState[fn.ID()] == instrumented {
		return nil
	}
	ic.wrapState[fn.ID()] = wrappingStarted
	arena := ic.Arena

	// Lower every post-condition first so old-captures are known
	// before the wrapper body is assembled.
	type loweredAnnot struct {
		annot    *extractor.AnnotationMetadata
		preludes []solast.ID
		evals    []solast.ID
		cond     solast.ID
	}
	var lowered []loweredAnnot
	for _, annot := range annots {
		l := newLowering(ic, contract, fn, annot)
		var evalStmts []solast.ID
		cond := l.lower(annot.Parsed.Expr, &evalStmts)
		lowered = append(lowered, loweredAnnot{
			annot:    annot,
			preludes: l.oldCaptures,
			evals:    evalStmts,
			cond:     cond,
		})
	}
	ic.wrapState[fn.ID()] = prologueReady

	// Move the original signature and body into the renamed internal
	// function.
	original := arena.NewFunctionDefinition(
		fmt.Sprintf("_original_%s_%s", contract.Name, fn.Name),
		solast.FnKindFunction, solast.VisInternal, fn.StateMutability)
	original.Parameters = fn.Parameters
	original.ReturnParameters = fn.ReturnParameters
	original.Body = fn.Body
	arena.Adopt(original.ID(), original.Parameters, original.ReturnParameters, original.Body)
	arena.AddToContract(contract, original.ID())

	// The wrapper gets fresh parameters mirroring the originals.
	fn.Parameters = ic.mirrorParameters(original.Parameters, "")
	fn.ReturnParameters = ic.mirrorParameters(original.ReturnParameters, "RET_")
	fn.Body = solast.InvalidID
	arena.Adopt(fn.ID(), fn.Parameters, fn.ReturnParameters)

	var stmts []solast.ID

	var entryGuard solast.ID = solast.InvalidID
	if needsInvariants {
		// bool __scribble_check_invs_at_end = __scribble_out_of_contract;
		guard := arena.NewVariableDeclaration("__scribble_check_invs_at_end",
			arena.NewElementaryTypeName("bool").ID(), "bool")
		guardStmt := arena.NewVariableDeclarationStatement(guard.ID(),
			arena.NewIdentifier(outOfContractFlag, ic.utilsFlag()).ID())
		stmts = append(stmts, guardStmt.ID())
		// __scribble_out_of_contract = false;
		enter := arena.NewExpressionStatement(arena.NewAssignment("=",
			arena.NewIdentifier(outOfContractFlag, ic.utilsFlag()).ID(),
			arena.NewLiteral(solast.LitBool, "false").ID()).ID())
		stmts = append(stmts, enter.ID())
		entryGuard = guard.ID()
		ic.general(guard.ID(), guardStmt.ID(), enter.ID())
	}

	for _, la := range lowered {
		stmts = append(stmts, la.preludes...)
	}

	callStmt := ic.callOriginal(fn, original)
	stmts = append(stmts, callStmt)

	for _, la := range lowered {
		stmts = append(stmts, la.evals...)
		checkStmts := ic.emitCheck(la.annot, la.cond)
		stmts = append(stmts, checkStmts...)
	}

	if needsInvariants {
		// if (__scribble_check_invs_at_end) { checker(); __scribble_out_of_contract = true; }
		checkCall := arena.NewExpressionStatement(arena.NewFunctionCall(solast.CallFunction,
			arena.NewIdentifier(checkerName(arena, checker), checker).ID()).ID())
		leave := arena.NewExpressionStatement(arena.NewAssignment("=",
			arena.NewIdentifier(outOfContractFlag, ic.utilsFlag()).ID(),
			arena.NewLiteral(solast.LitBool, "true").ID()).ID())
		epilogue := arena.NewIfStatement(
			arena.NewIdentifier("__scribble_check_invs_at_end", entryGuard).ID(),
			arena.NewBlock(checkCall.ID(), leave.ID()).ID(),
			solast.InvalidID)
		stmts = append(stmts, epilogue.ID())
		ic.general(checkCall.ID(), leave.ID(), epilogue.ID())
	}

	fn.Body = arena.NewBlock(stmts...).ID()
	arena.Adopt(fn.ID(), fn.Body)
	ic.general(original.ID(), fn.Body)

	ic.wrapState[fn.ID()] = instrumented
	return nil
}

// mirrorParameters builds a fresh parameter list with the same names
// and types as the source list. Unnamed entries get prefix-numbered
// names so wrapper returns are assignable.
func (ic *Ctx) mirrorParameters(listID solast.ID, prefix string) solast.ID {
	arena := ic.Arena
	src, ok := arena.Node(listID).(*solast.ParameterList)
	if !ok {
		return arena.NewParameterList().ID()
	}
	var params []solast.ID
	for i, id := range src.Parameters {
		v, ok := arena.Node(id).(*solast.VariableDeclaration)
		if !ok {
			continue
		}
		name := v.Name
		if name == "" && prefix != "" {
			name = fmt.Sprintf("%s%d", prefix, i)
		}
		decl := arena.NewVariableDeclaration(name, ic.typeNameFromString(v.TypeString), v.TypeString)
		params = append(params, decl.ID())
		ic.general(decl.ID())
	}
	list := arena.NewParameterList(params...)
	ic.general(list.ID())
	return list.ID()
}

// typeNameFromString rebuilds a type-name subtree from a host type
// string, falling back to a verbatim elementary name.
func (ic *Ctx) typeNameFromString(s string) solast.ID {
	t, err := specparse.ParseTypeString(s, nil)
	if err != nil {
		return ic.Arena.NewElementaryTypeName(s).ID()
	}
	l := newLowering(ic, nil, nil, nil)
	return l.typeNameFor(t)
}

// callOriginal emits "(RET_0, ...) = _original_C_fn(args);" or a bare
// call when the function returns nothing.
func (ic *Ctx) callOriginal(wrapper, original *solast.FunctionDefinition) solast.ID {
	arena := ic.Arena

	var args []solast.ID
	if params, ok := arena.Node(wrapper.Parameters).(*solast.ParameterList); ok {
		for _, id := range params.Parameters {
			if v, ok := arena.Node(id).(*solast.VariableDeclaration); ok {
				args = append(args, arena.NewIdentifier(v.Name, v.ID()).ID())
			}
		}
	}
	call := arena.NewFunctionCall(solast.CallFunction,
		arena.NewIdentifier(original.Name, original.ID()).ID(), args...)

	var rets []solast.ID
	if list, ok := arena.Node(wrapper.ReturnParameters).(*solast.ParameterList); ok {
		for _, id := range list.Parameters {
			if v, ok := arena.Node(id).(*solast.VariableDeclaration); ok {
				rets = append(rets, arena.NewIdentifier(v.Name, v.ID()).ID())
			}
		}
	}

	var stmt solast.ID
	switch len(rets) {
	case 0:
		stmt = arena.NewExpressionStatement(call.ID()).ID()
	case 1:
		stmt = arena.NewExpressionStatement(arena.NewAssignment("=", rets[0], call.ID()).ID()).ID()
	default:
		tuple := arena.NewTupleExpression(rets...)
		stmt = arena.NewExpressionStatement(arena.NewAssignment("=", tuple.ID(), call.ID()).ID()).ID()
	}
	ic.general(call.ID(), stmt)
	return stmt
}

// emitCheck materialises the runtime verdict for one annotation's
// condition node.
func (ic *Ctx) emitCheck(annot *extractor.AnnotationMetadata, cond solast.ID) []solast.ID {
	arena := ic.Arena
	ic.InstrumentedCheck[annot] = cond

	if ic.Opts.NoAssert {
		return nil
	}

	var onFailure []solast.ID

	message := fmt.Sprintf("%d: %s", annot.ID, annot.Label)
	failEmit := arena.NewEmitStatement(arena.NewFunctionCall(solast.CallFunction,
		arena.NewIdentifier(assertionFailedEvent, ic.utilsEvent(assertionFailedEvent)).ID(),
		arena.NewLiteral(solast.LitString, message).ID()).ID())
	onFailure = append(onFailure, failEmit.ID())

	if ic.Opts.DebugEvents {
		event := ic.debugEvent(annot)
		debugEmit := arena.NewEmitStatement(arena.NewFunctionCall(solast.CallFunction,
			arena.NewIdentifier(fmt.Sprintf("P%d", annot.ID), event).ID(),
			arena.NewLiteral(solast.LitString, annot.Label).ID()).ID())
		onFailure = append(onFailure, debugEmit.ID())
	}

	if ic.Opts.UserAssertMode == AssertMstore {
		asm := arena.NewInlineAssembly(fmt.Sprintf("{\n    mstore(0x0, %s)\n    revert(0x0, 0x24)\n}", mstoreMagic))
		onFailure = append(onFailure, asm.ID())
	}

	guard := arena.NewIfStatement(
		arena.NewUnaryOperation("!", true, cond).ID(),
		arena.NewBlock(onFailure...).ID(),
		solast.InvalidID)

	ic.record(annot, guard.ID())
	ic.record(annot, onFailure...)
	return []solast.ID{guard.ID()}
}

func checkerName(arena *solast.Context, checker solast.ID) string {
	if fn, ok := arena.Node(checker).(*solast.FunctionDefinition); ok {
		return fn.Name
	}
	return ""
}

func appendUnique(list []solast.ID, id solast.ID) []solast.ID {
	for _, x := range list {
		if x == id {
			return list
		}
	}
	return append(list, id)
}
