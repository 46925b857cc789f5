package metadata

import (
	"encoding/json"
	"fmt"

	"scribble/internal/extractor"
	"scribble/internal/instrument"
	"scribble/internal/printer"
	"scribble/internal/solast"
)

// srcTriple renders a range in the host compiler's "offset:length:file"
// convention.
func srcTriple(src solast.Src) string {
	return fmt.Sprintf("%d:%d:%d", src.Offset, src.Length, src.File)
}

// PropertyRecord is one propertyMap entry per if_succeeds/invariant
// annotation.
type PropertyRecord struct {
	ID                    int      `json:"id"`
	Contract              string   `json:"contract"`
	Target                string   `json:"target"`
	TargetName            string   `json:"targetName"`
	Type                  string   `json:"type"`
	Message               string   `json:"message"`
	PropertySource        string   `json:"propertySource"`
	AnnotationSource      string   `json:"annotationSource"`
	InstrumentationRanges []string `json:"instrumentationRanges"`
	CheckRanges           []string `json:"checkRanges"`
	DebugEventSignature   string   `json:"debugEventSignature"`
}

// SrcPair links an instrumented span to the original span it derives
// from.
type SrcPair [2]string

// InstrumentationMetadata is the persisted metadata record (§4.9).
type InstrumentationMetadata struct {
	InstrToOriginalMap   []SrcPair        `json:"instrToOriginalMap"`
	OtherInstrumentation []string         `json:"otherInstrumentation"`
	PropertyMap          []PropertyRecord `json:"propertyMap"`
	OriginalSourceList   []string         `json:"originalSourceList"`
	InstrSourceList      []string         `json:"instrSourceList"`
}

// Build assembles the metadata for one run. ranges maps every printed
// node to its span in the instrumented output; files lists the original
// source paths in file-index order; armed appends the .original suffix
// convention.
func Build(ic *instrument.Ctx, annotations []*extractor.AnnotationMetadata,
	ranges printer.SourceMap, files []string, armed bool) *InstrumentationMetadata {

	meta := &InstrumentationMetadata{}

	for _, file := range files {
		original := file
		if armed {
			original = file + ".original"
		}
		meta.OriginalSourceList = append(meta.OriginalSourceList, original)
		meta.InstrSourceList = append(meta.InstrSourceList, file+".instrumented")
	}

	// Spans copied from the original AST keep their provenance; spans
	// of generated checks map back to their annotation.
	checkOwner := make(map[solast.ID]*extractor.AnnotationMetadata)
	for _, annot := range annotations {
		if check, ok := ic.InstrumentedCheck[annot]; ok {
			checkOwner[check] = annot
		}
	}
	for _, id := range ic.Arena.IDs() {
		out, printed := ranges[id]
		if !printed {
			continue
		}
		if annot, isCheck := checkOwner[id]; isCheck {
			meta.InstrToOriginalMap = append(meta.InstrToOriginalMap,
				SrcPair{srcTriple(out), srcTriple(annot.AnnotationRange)})
			continue
		}
		if orig := ic.Arena.MustNode(id).Src(); orig.Length > 0 {
			meta.InstrToOriginalMap = append(meta.InstrToOriginalMap,
				SrcPair{srcTriple(out), srcTriple(orig)})
		}
	}

	for _, id := range ic.GeneralInstrumentation {
		if out, printed := ranges[id]; printed {
			meta.OtherInstrumentation = append(meta.OtherInstrumentation, srcTriple(out))
		}
	}

	for _, annot := range annotations {
		if !annot.Kind.IsProperty() {
			continue
		}
		record := PropertyRecord{
			ID:                  annot.ID,
			Target:              string(annot.TargetKind),
			Type:                string(annot.Kind),
			Message:             annot.Label,
			PropertySource:      srcTriple(annot.PredicateRange),
			AnnotationSource:    srcTriple(annot.AnnotationRange),
			DebugEventSignature: annot.DebugSignature,
		}

		switch target := ic.Arena.Node(annot.Target).(type) {
		case *solast.ContractDefinition:
			record.Contract = target.Name
			record.TargetName = target.Name
		case *solast.FunctionDefinition:
			record.TargetName = target.Name
			if contract, ok := ic.Arena.Node(target.Parent()).(*solast.ContractDefinition); ok {
				record.Contract = contract.Name
			}
		case *solast.VariableDeclaration:
			record.TargetName = target.Name
			if contract, ok := ic.Arena.Node(target.Parent()).(*solast.ContractDefinition); ok {
				record.Contract = contract.Name
			}
		}

		for _, id := range ic.EvaluationStatements[annot] {
			if out, printed := ranges[id]; printed {
				record.InstrumentationRanges = append(record.InstrumentationRanges, srcTriple(out))
			}
		}
		if check, ok := ic.InstrumentedCheck[annot]; ok {
			if out, printed := ranges[check]; printed {
				record.CheckRanges = append(record.CheckRanges, srcTriple(out))
			}
		}

		meta.PropertyMap = append(meta.PropertyMap, record)
	}

	return meta
}

// Encode renders the metadata as indented JSON.
func (m *InstrumentationMetadata) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "    ")
}
