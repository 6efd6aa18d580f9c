package templify

import (
	"github.com/TriasDev/templify/internal/ooxml"
)

// TransformDocument runs a single depth-first mutation pass over doc's
// body: foreach expansion, conditional branch selection,
// inline splicing, and placeholder substitution. doc.Body.Blocks is
// replaced in place with the materialized result; doc.Body.SectPrXML is
// untouched. Structural errors (unmatched markers, invalid iteration
// variable names, a missing value under MissingFail) abort immediately
// with no partial mutation visible to the caller, since doc is only
// updated once the whole pass succeeds.
func TransformDocument(doc *ooxml.Document, data *Value, opts *Options) (*WarningCollector, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	warn := NewWarningCollector()
	ids := ooxml.NewIDRemapper(doc)
	scope := NewRootScope(data)

	blocks, err := transformBlocks(doc.Body.Blocks, scope, ids, opts, warn)
	if err != nil {
		return warn, err
	}
	doc.Body.Blocks = blocks
	return warn, nil
}

// transformBlocks matches one container's blocks (the body, or a table
// cell's content) into spans, then renders that span tree under scope.
// Rebuilding spans per container, rather than once globally, is what lets
// a nested table's cells each get their own independent block-matcher
// pass as the recursion descends.
func transformBlocks(blocks []ooxml.Block, scope *Scope, ids *ooxml.IDRemapper, opts *Options, warn *WarningCollector) ([]ooxml.Block, error) {
	spans, err := BuildSpans(blocks)
	if err != nil {
		return nil, err
	}
	return renderSpans(spans, scope, ids, opts, warn)
}

func renderSpans(spans []Span, scope *Scope, ids *ooxml.IDRemapper, opts *Options, warn *WarningCollector) ([]ooxml.Block, error) {
	var out []ooxml.Block
	for _, s := range spans {
		switch v := s.(type) {
		case *ParagraphSpan:
			p, err := transformParagraph(v.Para, scope, ids, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		case *TableSpan:
			rows, err := renderRowSpans(v.Rows, scope, ids, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, &ooxml.Table{Properties: v.Table.Properties, Grid: v.Table.Grid, Rows: rows})
		case *IfSpan:
			body, err := selectIfBody(v.Branches, v.Else, v.HasElse, scope)
			if err != nil {
				return nil, err
			}
			rendered, err := renderSpans(body, scope, ids, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		case *ForeachSpan:
			items := resolveForeachCollection(v.CollectionPath, scope, warn)
			for idx, item := range items {
				childScope := scope.PushLoop(v.IterVar, item, idx, len(items))
				rendered, err := renderSpans(v.Body, childScope, ids, opts, warn)
				if err != nil {
					return nil, err
				}
				out = append(out, rendered...)
			}
		}
	}
	return out, nil
}

// renderRowSpans is renderSpans's table-row-scoped analogue (row-level
// foreach/if).
func renderRowSpans(spans []RowSpan, scope *Scope, ids *ooxml.IDRemapper, opts *Options, warn *WarningCollector) ([]*ooxml.Row, error) {
	var out []*ooxml.Row
	for _, s := range spans {
		switch v := s.(type) {
		case *PassthroughRowSpan:
			row, err := transformRow(v.Row, scope, ids, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, row)
		case *IfRowSpan:
			body, err := selectIfRowBody(v.Branches, v.Else, v.HasElse, scope)
			if err != nil {
				return nil, err
			}
			rendered, err := renderRowSpans(body, scope, ids, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		case *ForeachRowSpan:
			items := resolveForeachCollection(v.CollectionPath, scope, warn)
			for idx, item := range items {
				childScope := scope.PushLoop(v.IterVar, item, idx, len(items))
				rendered, err := renderRowSpans(v.Body, childScope, ids, opts, warn)
				if err != nil {
					return nil, err
				}
				out = append(out, rendered...)
			}
		}
	}
	return out, nil
}

// transformRow clones row for fresh structural IDs, then recurses into
// each cell's own block-matcher pass.
func transformRow(row *ooxml.Row, scope *Scope, ids *ooxml.IDRemapper, opts *Options, warn *WarningCollector) (*ooxml.Row, error) {
	cp := ooxml.CloneRow(row, ids)
	for _, cell := range cp.Cells {
		blocks, err := transformBlocks(cell.Blocks, scope, ids, opts, warn)
		if err != nil {
			return nil, err
		}
		cell.Blocks = blocks
	}
	return cp, nil
}

func selectIfBody(branches []IfBranch, elseBody []Span, hasElse bool, scope *Scope) ([]Span, error) {
	for _, br := range branches {
		if br.Cond.Eval(scope).IsTrue() {
			return br.Body, nil
		}
	}
	if hasElse {
		return elseBody, nil
	}
	return nil, nil
}

func selectIfRowBody(branches []IfRowBranch, elseBody []RowSpan, hasElse bool, scope *Scope) ([]RowSpan, error) {
	for _, br := range branches {
		if br.Cond.Eval(scope).IsTrue() {
			return br.Body, nil
		}
	}
	if hasElse {
		return elseBody, nil
	}
	return nil, nil
}

// resolveForeachCollection evaluates a foreach header's collection path
// and returns its elements, warning and yielding zero iterations for a
// missing or explicitly null collection. A present non-Sequence value
// also yields zero iterations, via Value.Sequence()'s nil-safety, without
// a second warning — only missing/null collections are warning-worthy.
func resolveForeachCollection(path *Path, scope *Scope, warn *WarningCollector) []*Value {
	v := ResolvePath(scope, path)
	if v.IsMissing() {
		warn.Add(WarnMissingLoopCollection, path.String())
		return nil
	}
	if v.IsNull() {
		warn.Add(WarnNullLoopCollection, path.String())
		return nil
	}
	return v.Sequence()
}

// transformParagraph clones p for fresh structural IDs (cheap and
// uniform even outside a loop, since surplus IDs are harmless) and
// then resolves any inline block markers and placeholders within it.
func transformParagraph(p *ooxml.Paragraph, scope *Scope, ids *ooxml.IDRemapper, opts *Options, warn *WarningCollector) (*ooxml.Paragraph, error) {
	cp := ooxml.CloneParagraph(p, ids)
	content, err := transformParagraphContent(cp, scope, opts, warn)
	if err != nil {
		return nil, err
	}
	cp.Content = content
	return cp, nil
}

// transformParagraphContent resolves inline block markers and
// placeholders appearing alongside other content in one paragraph —
// markers inline within a paragraph, as opposed to a whole marker-only
// paragraph already consumed by BuildSpans.
//
// Simplification, recorded in DESIGN.md: a paragraph is only rewritten
// here when it actually contains a template token. When it is rewritten,
// its content — including any hyperlink run groups and bookmark
// start/end markers — is flattened to plain runs; a paragraph mixing a
// hyperlink or bookmark with inline dynamic content loses that
// hyperlink/bookmark wrapping in the output. Paragraphs with no tokens at
// all (the overwhelming majority) pass through Content completely
// unchanged, hyperlinks and bookmarks intact.
func transformParagraphContent(p *ooxml.Paragraph, scope *Scope, opts *Options, warn *WarningCollector) ([]ooxml.ParaElement, error) {
	runs := p.Runs()
	toks, err := Tokenize(runs)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return p.Content, nil
	}

	items, err := buildInlineItems(toks, runs)
	if err != nil {
		return nil, err
	}
	rendered, err := renderInlineItems(items, scope, opts, warn)
	if err != nil {
		return nil, err
	}
	rendered = mergeAdjacentRuns(rendered)
	out := make([]ooxml.ParaElement, len(rendered))
	for i, r := range rendered {
		out[i] = r
	}
	return out, nil
}

// InlineItem is one node of the inline-splicing tree: a run of literal
// text, a placeholder, or an inline if/foreach block spanning a range of
// the paragraph's own run sequence, built by the same stack-of-pending-
// openings algorithm BuildSpans uses, reapplied at token granularity
// instead of whole paragraphs.
type InlineItem interface{ isInlineItem() }

type inlineLiteral struct{ Runs []*ooxml.Run }

func (*inlineLiteral) isInlineItem() {}

type inlinePlaceholder struct{ Tok Token }

func (*inlinePlaceholder) isInlineItem() {}

type inlineIfBranch struct {
	Cond ExprNode
	Body []InlineItem
}

type inlineIf struct {
	Branches []inlineIfBranch
	Else     []InlineItem
	HasElse  bool
}

func (*inlineIf) isInlineItem() {}

type inlineForeach struct {
	CollectionPath *Path
	IterVar        string
	Body           []InlineItem
}

func (*inlineForeach) isInlineItem() {}

type inlineIfFrame struct {
	branches []inlineIfBranch
	curCond  ExprNode
	curBody  []InlineItem
	elseBody []InlineItem
	inElse   bool
}

type inlineForeachFrame struct {
	iterVar string
	collRaw string
	body    []InlineItem
}

// buildInlineItems runs the same pending-openings stack algorithm as
// BuildSpans/BuildRowSpans, over a flat token list instead of whole
// paragraphs, and threads literal text (via sliceRuns) between tokens
// into the tree alongside them.
func buildInlineItems(toks []Token, runs []*ooxml.Run) ([]InlineItem, error) {
	var ifStack []*inlineIfFrame
	var forStack []*inlineForeachFrame
	var kindStack []byte
	var root []InlineItem

	appendItem := func(it InlineItem) {
		if len(kindStack) == 0 {
			root = append(root, it)
			return
		}
		switch kindStack[len(kindStack)-1] {
		case 'f':
			top := forStack[len(forStack)-1]
			top.body = append(top.body, it)
		case 'i':
			top := ifStack[len(ifStack)-1]
			if top.inElse {
				top.elseBody = append(top.elseBody, it)
			} else {
				top.curBody = append(top.curBody, it)
			}
		}
	}

	cursorRun, cursorOff := 0, 0
	flushLiteral := func(endRun, endOff int) {
		seg := sliceRuns(runs, cursorRun, cursorOff, endRun, endOff)
		if len(seg) > 0 {
			appendItem(&inlineLiteral{Runs: seg})
		}
		cursorRun, cursorOff = endRun, endOff
	}

	for _, tok := range toks {
		flushLiteral(tok.StartRun, tok.StartOff)
		switch tok.Kind {
		case TokenPlaceholder:
			appendItem(&inlinePlaceholder{Tok: tok})
		case TokenIfOpen:
			cond, err := ParseExpr(tok.Inner)
			if err != nil {
				return nil, err
			}
			ifStack = append(ifStack, &inlineIfFrame{curCond: cond})
			kindStack = append(kindStack, 'i')
		case TokenElseIf:
			top, err := peekInlineIf(ifStack, kindStack, "elseif (inline)")
			if err != nil {
				return nil, err
			}
			if top.inElse {
				return nil, newStructuralError(ErrElseIfAfterElse, "transformer", "{{#elseif}} (inline)", "elseif after else in same if-block")
			}
			top.branches = append(top.branches, inlineIfBranch{Cond: top.curCond, Body: top.curBody})
			cond, err := ParseExpr(tok.Inner)
			if err != nil {
				return nil, err
			}
			top.curCond, top.curBody = cond, nil
		case TokenElse:
			top, err := peekInlineIf(ifStack, kindStack, "else (inline)")
			if err != nil {
				return nil, err
			}
			if top.inElse {
				return nil, newStructuralError(ErrElseAfterElse, "transformer", "{{#else}}/{{else}} (inline)", "else after else in same if-block")
			}
			top.branches = append(top.branches, inlineIfBranch{Cond: top.curCond, Body: top.curBody})
			top.curCond, top.curBody = nil, nil
			top.inElse = true
		case TokenIfClose:
			if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
				return nil, newStructuralError(ErrUnmatchedConditionalEnd, "transformer", "{{/if}} (inline)", "unmatched {{/if}}")
			}
			top := ifStack[len(ifStack)-1]
			ifStack = ifStack[:len(ifStack)-1]
			kindStack = kindStack[:len(kindStack)-1]
			var elseBody []InlineItem
			hasElse := top.inElse
			if top.inElse {
				elseBody = top.elseBody
			} else {
				top.branches = append(top.branches, inlineIfBranch{Cond: top.curCond, Body: top.curBody})
			}
			appendItem(&inlineIf{Branches: top.branches, Else: elseBody, HasElse: hasElse})
		case TokenForeachOpen:
			iterVar, pathRaw, err := parseForeachHeader(tok.Inner)
			if err != nil {
				return nil, err
			}
			forStack = append(forStack, &inlineForeachFrame{iterVar: iterVar, collRaw: pathRaw})
			kindStack = append(kindStack, 'f')
		case TokenForeachClose:
			if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'f' {
				return nil, newStructuralError(ErrUnmatchedLoopEnd, "transformer", "{{/foreach}} (inline)", "unmatched {{/foreach}}")
			}
			top := forStack[len(forStack)-1]
			forStack = forStack[:len(forStack)-1]
			kindStack = kindStack[:len(kindStack)-1]
			path, err := ParsePath(top.collRaw)
			if err != nil {
				return nil, err
			}
			appendItem(&inlineForeach{CollectionPath: path, IterVar: top.iterVar, Body: top.body})
		}
		cursorRun, cursorOff = tok.EndRun, tok.EndOff
	}
	flushLiteral(len(runs), 0)

	if len(kindStack) > 0 {
		switch kindStack[len(kindStack)-1] {
		case 'i':
			return nil, newStructuralError(ErrUnmatchedConditionalStart, "transformer", "{{#if}} (inline)", "unmatched inline {{#if}}")
		default:
			return nil, newStructuralError(ErrUnmatchedLoopStart, "transformer", "{{#foreach}} (inline)", "unmatched inline {{#foreach}}")
		}
	}
	return root, nil
}

func peekInlineIf(ifStack []*inlineIfFrame, kindStack []byte, where string) (*inlineIfFrame, error) {
	if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
		return nil, newStructuralError(ErrUnmatchedConditionalStart, "transformer", where, "{{"+where+"}} outside an open inline if-block")
	}
	return ifStack[len(ifStack)-1], nil
}

// sliceRuns extracts the runs spanning [startRun:startOff, endRun:endOff)
// of runs, rune-slicing the boundary runs and cloning every run it
// returns so callers (in particular foreach, which renders the same
// InlineItem subtree once per iteration) never alias a shared *ooxml.Run.
func sliceRuns(runs []*ooxml.Run, startRun, startOff, endRun, endOff int) []*ooxml.Run {
	var out []*ooxml.Run
	for ri := startRun; ri <= endRun && ri < len(runs); ri++ {
		text := []rune(runs[ri].Text)
		from, to := 0, len(text)
		if ri == startRun {
			from = startOff
		}
		if ri == endRun && endOff < to {
			to = endOff
		}
		if from >= to || from < 0 || to > len(text) {
			continue
		}
		out = append(out, &ooxml.Run{Properties: runs[ri].Properties.Clone(), Text: string(text[from:to])})
	}
	return out
}

// renderInlineItems walks an inline-splicing tree under scope, expanding
// foreach bodies, selecting if branches, substituting placeholders, and
// passing literal runs through (freshly cloned per occurrence so a
// foreach body rendered N times never shares run pointers across
// iterations).
func renderInlineItems(items []InlineItem, scope *Scope, opts *Options, warn *WarningCollector) ([]*ooxml.Run, error) {
	var out []*ooxml.Run
	for _, it := range items {
		switch v := it.(type) {
		case *inlineLiteral:
			for _, r := range v.Runs {
				out = append(out, &ooxml.Run{Properties: r.Properties.Clone(), Text: r.Text})
			}
		case *inlinePlaceholder:
			runs, err := renderPlaceholder(v.Tok, scope, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, runs...)
		case *inlineIf:
			body, err := selectInlineIfBody(v, scope)
			if err != nil {
				return nil, err
			}
			rendered, err := renderInlineItems(body, scope, opts, warn)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		case *inlineForeach:
			elems := resolveForeachCollection(v.CollectionPath, scope, warn)
			for idx, item := range elems {
				childScope := scope.PushLoop(v.IterVar, item, idx, len(elems))
				rendered, err := renderInlineItems(v.Body, childScope, opts, warn)
				if err != nil {
					return nil, err
				}
				out = append(out, rendered...)
			}
		}
	}
	return out, nil
}

func selectInlineIfBody(v *inlineIf, scope *Scope) ([]InlineItem, error) {
	for _, br := range v.Branches {
		if br.Cond.Eval(scope).IsTrue() {
			return br.Body, nil
		}
	}
	if v.HasElse {
		return v.Else, nil
	}
	return nil, nil
}

// renderPlaceholder evaluates and formats one placeholder token,
// producing the run(s) that replace its "{{ … }}" span. A value present
// under scope goes through the inline-value
// renderer's full phase set; a missing/null value under
// MissingLeaveUnchanged or MissingEmitBlank is emitted as one plain run
// (the original markup or blank) without markdown/newline reprocessing,
// since that text was never meant to be interpreted as rendered content.
func renderPlaceholder(tok Token, scope *Scope, opts *Options, warn *WarningCollector) ([]*ooxml.Run, error) {
	expr, formatID, err := ParsePlaceholderExpr(tok.Inner)
	if err != nil {
		return nil, err
	}
	val := expr.Eval(scope)
	missingName := placeholderMissingName(expr, tok.Inner)

	if val.IsMissing() || val.IsNull() {
		if opts.MissingVariableBehavior == MissingFail {
			return nil, errorf("transformer", "missing value for %q", missingName)
		}
		originalText := "{{" + tok.Inner + "}}"
		text := FormatValue(val, formatID, originalText, opts, warn, missingName)
		return []*ooxml.Run{{Properties: tok.Properties, Text: text}}, nil
	}

	text := FormatValue(val, formatID, "", opts, warn, missingName)
	return RenderInlineValue(text, tok.Properties, opts), nil
}

func placeholderMissingName(expr ExprNode, raw string) string {
	if pn, ok := expr.(*PathNode); ok {
		return pn.Path.String()
	}
	return raw
}
