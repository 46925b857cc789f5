package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"scribble/internal/errors"
	"scribble/internal/sast"
	"scribble/internal/solast"
	"scribble/internal/specparse"
)

// AnnotationFilter restricts which annotations are kept. Nil patterns
// match everything.
type AnnotationFilter struct {
	Type    *regexp.Regexp
	Message *regexp.Regexp
}

func (f AnnotationFilter) matches(kind sast.AnnotationKind, label string) bool {
	if f.Type != nil && !f.Type.MatchString(string(kind)) {
		return false
	}
	if f.Message != nil && !f.Message.MatchString(label) {
		return false
	}
	return true
}

// TargetKind classifies what an annotation is attached to.
type TargetKind string

const (
	TargetContract TargetKind = "contract"
	TargetFunction TargetKind = "function"
	TargetVariable TargetKind = "variable"
)

// AnnotationMetadata is the per-annotation record threaded through the
// rest of the pipeline.
type AnnotationMetadata struct {
	ID           int
	Kind         sast.AnnotationKind
	Label        string
	Target       solast.ID
	TargetKind   TargetKind
	OriginalText string
	Parsed       *sast.Annotation

	// AnnotationRange covers the whole annotation in its file;
	// PredicateRange covers the predicate expression only.
	AnnotationRange solast.Src
	PredicateRange  solast.Src

	// DebugSignature is filled in by the instrumenter when debug
	// events are enabled.
	DebugSignature string
}

// Extractor pulls annotations out of doc-comments attached to
// contracts, functions and state variables of one unit.
type Extractor struct {
	ctx      *solast.Context
	filename string
	source   string
	fileIdx  int
	filter   AnnotationFilter
	reporter *errors.ErrorReporter

	nextID *int
	errs   []errors.CompilerError
}

func New(ctx *solast.Context, filename, source string, fileIdx int, filter AnnotationFilter, nextID *int) *Extractor {
	return &Extractor{
		ctx:      ctx,
		filename: filename,
		source:   source,
		fileIdx:  fileIdx,
		filter:   filter,
		reporter: errors.NewErrorReporter(filename, source),
		nextID:   nextID,
	}
}

// Errors returns the diagnostics accumulated so far.
func (e *Extractor) Errors() []errors.CompilerError {
	return e.errs
}

// ExtractUnit walks a source unit and returns all annotations in
// source order. Free-standing annotated functions are rejected.
func (e *Extractor) ExtractUnit(unit *solast.SourceUnit) []*AnnotationMetadata {
	var out []*AnnotationMetadata
	for _, id := range unit.Nodes {
		switch node := e.ctx.Node(id).(type) {
		case *solast.ContractDefinition:
			out = append(out, e.extractContract(node)...)
		case *solast.FunctionDefinition:
			if found := e.extractTarget(node.ID(), node.Documentation, TargetFunction); len(found) > 0 {
				e.addError(errors.NewSpecError(errors.ErrorFreeFunctionAnnotation,
					"annotations on free-standing functions are not supported",
					e.positionOf(found[0].AnnotationRange)).
					WithAnnotation(found[0].OriginalText).Build())
			}
		}
	}
	return out
}

func (e *Extractor) extractContract(contract *solast.ContractDefinition) []*AnnotationMetadata {
	out := e.extractTarget(contract.ID(), contract.Documentation, TargetContract)
	for _, id := range contract.Nodes {
		switch member := e.ctx.Node(id).(type) {
		case *solast.FunctionDefinition:
			out = append(out, e.extractTarget(member.ID(), member.Documentation, TargetFunction)...)
		case *solast.VariableDeclaration:
			out = append(out, e.extractTarget(member.ID(), member.Documentation, TargetVariable)...)
		}
	}
	return out
}

// extractTarget gathers the annotations of one declaration: the
// structured documentation node when present, otherwise a raw-source
// scan of the comment immediately preceding the declaration.
func (e *Extractor) extractTarget(target solast.ID, doc solast.ID, kind TargetKind) []*AnnotationMetadata {
	var commentBase int
	var comment string

	if docNode, ok := e.ctx.Node(doc).(*solast.StructuredDocumentation); ok {
		src := docNode.Src()
		commentBase = src.Offset
		comment = e.source[src.Offset:src.End()]
	} else {
		commentBase, comment = precedingComment(e.source, e.ctx.MustNode(target).Src().Offset)
		if comment == "" {
			return nil
		}
	}

	scrubbed := scrubComment(comment)
	var out []*AnnotationMetadata
	for _, body := range annotationBodies(scrubbed) {
		meta := e.parseBody(scrubbed, body, commentBase, target, kind)
		if meta == nil {
			continue
		}
		if !e.filter.matches(meta.Kind, meta.Label) {
			continue
		}
		if err := checkTarget(meta.Kind, kind); err != "" {
			e.addError(errors.TargetMismatch(string(meta.Kind), err, e.positionOf(meta.AnnotationRange)))
			continue
		}
		out = append(out, meta)
	}
	return out
}

// bodyRange is an annotation body inside the scrubbed comment text.
type bodyRange struct {
	start int
	end   int
}

var introducerRe = regexp.MustCompile(`#(if_succeeds|invariant|define)\b`)

// annotationBodies finds every introducer and extends its body until
// the next introducer, a blank comment line or the end of the comment.
func annotationBodies(scrubbed string) []bodyRange {
	locs := introducerRe.FindAllStringIndex(scrubbed, -1)
	var out []bodyRange
	for i, loc := range locs {
		end := len(scrubbed)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if blank := blankLineAfter(scrubbed, loc[0], end); blank >= 0 {
			end = blank
		}
		out = append(out, bodyRange{start: loc[0], end: end})
	}
	return out
}

// blankLineAfter returns the offset of the first blank line strictly
// between from and to, or -1.
func blankLineAfter(text string, from, to int) int {
	lineStart := from
	for i := from; i < to; i++ {
		if text[i] != '\n' {
			continue
		}
		if lineStart > from && strings.TrimSpace(text[lineStart:i]) == "" {
			return lineStart
		}
		lineStart = i + 1
	}
	return -1
}

func (e *Extractor) parseBody(scrubbed string, body bodyRange, commentBase int, target solast.ID, kind TargetKind) *AnnotationMetadata {
	text := scrubbed[body.start:body.end]
	// The annotation proper ends at its terminating semicolon; trailing
	// prose in the same comment block is ignored.
	if idx := terminatingSemicolon(text); idx >= 0 {
		text = text[:idx+1]
	}

	annot, parseErrs := specparse.ParseAnnotation(text)
	base := commentBase + body.start
	if len(parseErrs) > 0 {
		first := parseErrs[0]
		err := errors.NewSpecError(errors.ErrorAnnotationSyntax, first.Message,
			e.reporter.PositionAt(base+first.Position.Offset)).
			WithLength(first.Length).
			WithAnnotation(strings.TrimSpace(text)).
			Build()
		e.addError(err)
		return nil
	}

	liftAnnotation(annot, e.filename, base, e.reporter)

	meta := &AnnotationMetadata{
		ID:           *e.nextID,
		Kind:         annot.Kind,
		Label:        annot.Label,
		Target:       target,
		TargetKind:   kind,
		OriginalText: strings.TrimSpace(text),
		Parsed:       annot,
		AnnotationRange: solast.Src{
			Offset: base,
			Length: len(text),
			File:   e.fileIdx,
		},
	}
	*e.nextID++

	if annot.Expr != nil {
		pos := annot.Expr.NodePos()
		meta.PredicateRange = solast.Src{
			Offset: pos.Offset,
			Length: annot.Expr.NodeEndPos().Offset - pos.Offset,
			File:   e.fileIdx,
		}
	} else if annot.Def != nil {
		pos := annot.Def.Body.NodePos()
		meta.PredicateRange = solast.Src{
			Offset: pos.Offset,
			Length: annot.Def.Body.NodeEndPos().Offset - pos.Offset,
			File:   e.fileIdx,
		}
		annot.Def.Contract = int(target)
	}
	return meta
}

// terminatingSemicolon finds the first ';' outside string literals.
func terminatingSemicolon(text string) int {
	inString := false
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return i
			}
		}
	}
	return -1
}

func checkTarget(kind sast.AnnotationKind, target TargetKind) string {
	switch kind {
	case sast.Invariant, sast.Define:
		if target != TargetContract {
			return string(target)
		}
	case sast.IfSucceeds:
		if target != TargetFunction {
			return string(target)
		}
	}
	return ""
}

// precedingComment scans backwards from a declaration for the comment
// block immediately before it. Returns the comment's file offset and
// raw text, or an empty string when there is none.
func precedingComment(source string, declStart int) (int, string) {
	end := declStart
	for end > 0 && (source[end-1] == ' ' || source[end-1] == '\t' || source[end-1] == '\n' || source[end-1] == '\r') {
		end--
	}
	if end == 0 {
		return 0, ""
	}

	// Block comment directly above the declaration.
	if strings.HasSuffix(source[:end], "*/") {
		if start := strings.LastIndex(source[:end], "/*"); start >= 0 {
			return start, source[start:end]
		}
		return 0, ""
	}

	// A run of contiguous line comments.
	lineEnd := end
	start := -1
	for {
		lineStart := strings.LastIndexByte(source[:lineEnd], '\n') + 1
		trimmed := strings.TrimLeft(source[lineStart:lineEnd], " \t")
		if !strings.HasPrefix(trimmed, "//") {
			break
		}
		start = lineStart + (lineEnd - lineStart - len(trimmed))
		if lineStart == 0 {
			break
		}
		lineEnd = lineStart - 1
	}
	if start < 0 {
		return 0, ""
	}
	return start, source[start:end]
}

// scrubComment blanks out comment decorations so annotation offsets in
// the scrubbed text equal offsets in the raw text.
func scrubComment(comment string) string {
	b := []byte(comment)
	blank := func(from, to int) {
		for i := from; i < to && i < len(b); i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}

	if strings.HasPrefix(comment, "/*") {
		blank(0, 3) // "/**" or "/*x"
		if strings.HasSuffix(comment, "*/") {
			blank(len(b)-2, len(b))
		}
	}

	lineStart := 0
	for i := 0; i <= len(b); i++ {
		if i == len(b) || b[i] == '\n' {
			scrubLinePrefix(b, lineStart, i)
			lineStart = i + 1
		}
	}
	return string(b)
}

// scrubLinePrefix blanks "///", "//" or a leading "*" at the start of
// one comment line.
func scrubLinePrefix(b []byte, from, to int) {
	i := from
	for i < to && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	rest := string(b[i:min(to, len(b))])
	switch {
	case strings.HasPrefix(rest, "///"):
		b[i], b[i+1], b[i+2] = ' ', ' ', ' '
	case strings.HasPrefix(rest, "//"):
		b[i], b[i+1] = ' ', ' '
	case strings.HasPrefix(rest, "*") && !strings.HasPrefix(rest, "*/"):
		b[i] = ' '
	}
}

// liftAnnotation translates every parser-relative position on an
// annotation's SAST into file coordinates.
func liftAnnotation(annot *sast.Annotation, filename string, base int, reporter *errors.ErrorReporter) {
	lift := func(pos *sast.Position) {
		abs := reporter.PositionAt(base + pos.Offset)
		*pos = sast.Position{Filename: filename, Offset: abs.Offset, Line: abs.Line, Column: abs.Column}
	}

	lift(&annot.Pos)
	lift(&annot.EndPos)
	if annot.Expr != nil {
		liftExpr(annot.Expr, lift)
	}
	if annot.Def != nil {
		lift(&annot.Def.Pos)
		lift(&annot.Def.EndPos)
		lift(&annot.Def.Name.Pos)
		lift(&annot.Def.Name.EndPos)
		for i := range annot.Def.Parameters {
			lift(&annot.Def.Parameters[i].Name.Pos)
			lift(&annot.Def.Parameters[i].Name.EndPos)
		}
		liftExpr(annot.Def.Body, lift)
	}
}

func liftExpr(expr sast.Expr, lift func(*sast.Position)) {
	switch v := expr.(type) {
	case *sast.NumberLiteral:
		lift(&v.Pos)
		lift(&v.EndPos)
	case *sast.BoolLiteral:
		lift(&v.Pos)
		lift(&v.EndPos)
	case *sast.StringLiteral:
		lift(&v.Pos)
		lift(&v.EndPos)
	case *sast.HexLiteral:
		lift(&v.Pos)
		lift(&v.EndPos)
	case *sast.Identifier:
		lift(&v.Pos)
		lift(&v.EndPos)
	case *sast.IndexExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Base, lift)
		liftExpr(v.Index, lift)
	case *sast.MemberExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Base, lift)
	case *sast.CallExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Callee, lift)
		for _, a := range v.Args {
			liftExpr(a, lift)
		}
	case *sast.UnaryExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Sub, lift)
	case *sast.BinaryExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Left, lift)
		liftExpr(v.Right, lift)
	case *sast.Conditional:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Condition, lift)
		liftExpr(v.True, lift)
		liftExpr(v.False, lift)
	case *sast.OldExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Sub, lift)
	case *sast.LetExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		lift(&v.Name.Pos)
		lift(&v.Name.EndPos)
		liftExpr(v.Value, lift)
		liftExpr(v.Body, lift)
	case *sast.Quantifier:
		lift(&v.Pos)
		lift(&v.EndPos)
		lift(&v.Binder.Pos)
		lift(&v.Binder.EndPos)
		liftExpr(v.Range, lift)
		liftExpr(v.Body, lift)
	case *sast.TupleExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		for _, el := range v.Elements {
			liftExpr(el, lift)
		}
	case *sast.CastExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Sub, lift)
	case *sast.RangeExpr:
		lift(&v.Pos)
		lift(&v.EndPos)
		liftExpr(v.Low, lift)
		liftExpr(v.High, lift)
	default:
		panic(fmt.Sprintf("extractor: liftExpr: unhandled expression %T", expr))
	}
}

func (e *Extractor) positionOf(src solast.Src) sast.Position {
	return e.reporter.PositionAt(src.Offset)
}

func (e *Extractor) addError(err errors.CompilerError) {
	e.errs = append(e.errs, err)
}
