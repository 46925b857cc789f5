package instrument

import (
	"fmt"
	"path"

	"github.com/ethereum/go-ethereum/crypto"

	"scribble/internal/extractor"
	"scribble/internal/solast"
)

// UtilsContractName is the synthesised helper contract every
// instrumented contract inherits.
const UtilsContractName = "__scribble_ReentrancyUtils"

// UtilsFileName is the utilities unit's file name under the configured
// utils output path.
const UtilsFileName = "__scribble_ReentrancyUtils.sol"

// outOfContractFlag is the reentrancy sentinel. It is true exactly
// while no instrumented external call is on the stack. Under
// delegatecall the flag lives in the calling contract's storage, so a
// proxied check observes the proxy's own sentinel.
const outOfContractFlag = "__scribble_out_of_contract"

// assertionFailedEvent is watched by downstream fuzzers in log mode.
const assertionFailedEvent = "AssertionFailed"

// mstoreMagic is the marker written to memory slot 0 before reverting
// in mstore mode.
const mstoreMagic = "0x0c0259c1"

// synthesizeUtils builds the utilities unit once per run:
//
//	contract __scribble_ReentrancyUtils {
//	    event AssertionFailed(string message);
//	    bool __scribble_out_of_contract = true;
//	}
func (ic *Ctx) synthesizeUtils() {
	if ic.UtilsUnit != nil {
		return
	}
	arena := ic.Arena

	utils := arena.NewContractDefinition(UtilsContractName, solast.KindContract)

	message := arena.NewVariableDeclaration("message", arena.NewElementaryTypeName("string").ID(), "string")
	failed := arena.NewEventDefinition(assertionFailedEvent, arena.NewParameterList(message.ID()).ID())
	arena.AddToContract(utils, failed.ID())

	flag := arena.NewVariableDeclaration(outOfContractFlag, arena.NewElementaryTypeName("bool").ID(), "bool")
	flag.StateVariable = true
	flag.Visibility = solast.VisInternal
	flag.Value = arena.NewLiteral(solast.LitBool, "true").ID()
	arena.Adopt(flag.ID(), flag.Value)
	arena.AddToContract(utils, flag.ID())

	unit := arena.NewSourceUnit(path.Join(ic.Opts.UtilsOutputPath, UtilsFileName), utils.ID())

	ic.UtilsUnit = unit
	ic.UtilsContract = utils
	ic.general(unit.ID(), utils.ID(), failed.ID(), flag.ID())
}

// utilsEvent finds a member of the utils contract by name.
func (ic *Ctx) utilsEvent(name string) solast.ID {
	for _, id := range ic.UtilsContract.Nodes {
		if ev, ok := ic.Arena.Node(id).(*solast.EventDefinition); ok && ev.Name == name {
			return ev.ID()
		}
	}
	return solast.InvalidID
}

// utilsFlag returns the reentrancy sentinel declaration.
func (ic *Ctx) utilsFlag() solast.ID {
	for _, v := range ic.Arena.StateVariablesIn(ic.UtilsContract) {
		if v.Name == outOfContractFlag {
			return v.ID()
		}
	}
	return solast.InvalidID
}

// debugEvent lazily synthesises the per-annotation debug event and its
// selector signature:
//
//	event P<id>(string message);
func (ic *Ctx) debugEvent(annot *extractor.AnnotationMetadata) solast.ID {
	if id, ok := ic.DebugEventFor[annot]; ok {
		return id
	}
	arena := ic.Arena

	name := fmt.Sprintf("P%d", annot.ID)
	message := arena.NewVariableDeclaration("message", arena.NewElementaryTypeName("string").ID(), "string")
	event := arena.NewEventDefinition(name, arena.NewParameterList(message.ID()).ID())
	arena.AddToContract(ic.UtilsContract, event.ID())

	signature := name + "(string)"
	annot.DebugSignature = fmt.Sprintf("%s %s", signature, crypto.Keccak256Hash([]byte(signature)).Hex())

	ic.DebugEventFor[annot] = event.ID()
	ic.general(event.ID())
	return event.ID()
}

// addUtilsBase makes a contract inherit the utilities contract and
// extends its linearization accordingly.
func (ic *Ctx) addUtilsBase(contract *solast.ContractDefinition) {
	for _, base := range contract.LinearizedBaseContracts {
		if base == ic.UtilsContract.ID() {
			return
		}
	}
	arena := ic.Arena

	pathNode := arena.NewIdentifierPath(UtilsContractName, ic.UtilsContract.ID())
	spec := arena.NewInheritanceSpecifier(pathNode.ID())
	contract.BaseContracts = append(contract.BaseContracts, spec.ID())
	arena.Adopt(contract.ID(), spec.ID())
	contract.LinearizedBaseContracts = append(contract.LinearizedBaseContracts, ic.UtilsContract.ID())
	ic.general(spec.ID(), pathNode.ID())

	// The defining unit now depends on the utilities unit.
	if unit := ic.unitOf(contract.ID()); unit != nil {
		for _, id := range unit.Nodes {
			if imp, ok := arena.Node(id).(*solast.ImportDirective); ok && imp.SourceUnit == ic.UtilsUnit.ID() {
				return
			}
		}
		importNode := arena.NewImportDirective(ic.UtilsUnit.AbsolutePath, ic.UtilsUnit.AbsolutePath, ic.UtilsUnit.ID())
		unit.Nodes = append([]solast.ID{importNode.ID()}, unit.Nodes...)
		arena.Adopt(unit.ID(), importNode.ID())
		ic.general(importNode.ID())
	}
}

func (ic *Ctx) unitOf(id solast.ID) *solast.SourceUnit {
	for cur := id; cur != solast.InvalidID; cur = ic.Arena.MustNode(cur).Parent() {
		if unit, ok := ic.Arena.Node(cur).(*solast.SourceUnit); ok {
			return unit
		}
	}
	return nil
}
