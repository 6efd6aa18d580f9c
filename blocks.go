package templify

import (
	"strings"

	"github.com/TriasDev/templify/internal/ooxml"
)

// Span is one node of the block tree: an ordered forest where each node
// is either a passthrough document node, an IfSpan, or a ForeachSpan —
// IfSpan/ForeachSpan are variants of a tagged sum type, not runtime
// class checks.
type Span interface{ isSpan() }

// ParagraphSpan passes one ordinary (non-marker) paragraph through
// unchanged at this pass's granularity; it may still carry inline block
// markers or placeholders, handled later by transform.go step 4/5.
type ParagraphSpan struct {
	Para *ooxml.Paragraph
}

func (*ParagraphSpan) isSpan() {}

// TableSpan passes a table through, recursing into row-scoped block
// detection for its rows.
type TableSpan struct {
	Table *ooxml.Table
	Rows  []RowSpan
}

func (*TableSpan) isSpan() {}

// IfBranch is one (condition, body) arm of an if/elseif chain.
type IfBranch struct {
	Cond ExprNode
	Body []Span
}

// IfSpan is a paragraph-scoped conditional block: an ordered list of
// branches plus an optional else body (HasElse reports whether an else
// marker was present).
type IfSpan struct {
	Branches []IfBranch
	Else     []Span
	HasElse  bool
}

func (*IfSpan) isSpan() {}

// ForeachSpan is a paragraph-scoped loop block.
type ForeachSpan struct {
	CollectionPath *Path
	IterVar        string // "" when the {{#foreach <path>}} form was used
	Body           []Span
}

func (*ForeachSpan) isSpan() {}

// RowSpan is the table-row-scoped analogue of Span.
type RowSpan interface{ isRowSpan() }

type PassthroughRowSpan struct {
	Row *ooxml.Row
}

func (*PassthroughRowSpan) isRowSpan() {}

type IfRowBranch struct {
	Cond ExprNode
	Body []RowSpan
}

type IfRowSpan struct {
	Branches []IfRowBranch
	Else     []RowSpan
	HasElse  bool
}

func (*IfRowSpan) isRowSpan() {}

type ForeachRowSpan struct {
	CollectionPath *Path
	IterVar        string
	Body           []RowSpan
}

func (*ForeachRowSpan) isRowSpan() {}

// ifFrame is the paragraph-scoped matcher's pending-opening stack entry
// for an if chain (foreachFrame is its loop counterpart); the row-scoped
// walker keeps its own frame types.
type ifFrame struct {
	branches []IfBranch
	curCond  ExprNode
	curBody  []Span
	elseBody []Span
	inElse   bool
}

type foreachFrame struct {
	iterVar string
	collRaw string
	body    []Span
}

// BuildSpans runs the paragraph-scoped and table-row-scoped block matcher
// over one container's ordered blocks (a document body or
// a table cell's content).
func BuildSpans(blocks []ooxml.Block) ([]Span, error) {
	var ifStack []*ifFrame
	var forStack []*foreachFrame
	var kindStack []byte // 'i' or 'f', innermost last — tracks interleaving order

	var root []Span

	appendSpan := func(s Span) {
		if len(kindStack) == 0 {
			root = append(root, s)
			return
		}
		switch kindStack[len(kindStack)-1] {
		case 'f':
			top := forStack[len(forStack)-1]
			top.body = append(top.body, s)
		case 'i':
			top := ifStack[len(ifStack)-1]
			if top.inElse {
				top.elseBody = append(top.elseBody, s)
			} else {
				top.curBody = append(top.curBody, s)
			}
		}
	}

	for _, blk := range blocks {
		switch b := blk.(type) {
		case *ooxml.Table:
			rows, err := BuildRowSpans(b.Rows)
			if err != nil {
				return nil, err
			}
			appendSpan(&TableSpan{Table: b, Rows: rows})
		case *ooxml.Paragraph:
			tok, isMarker, err := classifyMarkerParagraph(b)
			if err != nil {
				return nil, err
			}
			if !isMarker {
				appendSpan(&ParagraphSpan{Para: b})
				continue
			}
			switch tok.Kind {
			case TokenIfOpen:
				cond, err := ParseExpr(tok.Inner)
				if err != nil {
					return nil, err
				}
				ifStack = append(ifStack, &ifFrame{curCond: cond})
				kindStack = append(kindStack, 'i')
			case TokenElseIf:
				top, err := peekIf(ifStack, kindStack, "elseif")
				if err != nil {
					return nil, err
				}
				if top.inElse {
					return nil, newStructuralError(ErrElseIfAfterElse, "block-matcher", "{{#elseif}}", "elseif after else in same if-block")
				}
				top.branches = append(top.branches, IfBranch{Cond: top.curCond, Body: top.curBody})
				cond, err := ParseExpr(tok.Inner)
				if err != nil {
					return nil, err
				}
				top.curCond, top.curBody = cond, nil
			case TokenElse:
				top, err := peekIf(ifStack, kindStack, "else")
				if err != nil {
					return nil, err
				}
				if top.inElse {
					return nil, newStructuralError(ErrElseAfterElse, "block-matcher", "{{#else}}/{{else}}", "else after else in same if-block")
				}
				top.branches = append(top.branches, IfBranch{Cond: top.curCond, Body: top.curBody})
				top.curCond, top.curBody = nil, nil
				top.inElse = true
			case TokenIfClose:
				if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
					return nil, newStructuralError(ErrUnmatchedConditionalEnd, "block-matcher", "{{/if}}", "unmatched {{/if}}")
				}
				top := ifStack[len(ifStack)-1]
				ifStack = ifStack[:len(ifStack)-1]
				kindStack = kindStack[:len(kindStack)-1]
				var elseBody []Span
				hasElse := top.inElse
				if top.inElse {
					elseBody = top.elseBody
				} else {
					top.branches = append(top.branches, IfBranch{Cond: top.curCond, Body: top.curBody})
				}
				appendSpan(&IfSpan{Branches: top.branches, Else: elseBody, HasElse: hasElse})
			case TokenForeachOpen:
				iterVar, pathRaw, err := parseForeachHeader(tok.Inner)
				if err != nil {
					return nil, err
				}
				forStack = append(forStack, &foreachFrame{iterVar: iterVar, collRaw: pathRaw})
				kindStack = append(kindStack, 'f')
			case TokenForeachClose:
				if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'f' {
					return nil, newStructuralError(ErrUnmatchedLoopEnd, "block-matcher", "{{/foreach}}", "unmatched {{/foreach}}")
				}
				top := forStack[len(forStack)-1]
				forStack = forStack[:len(forStack)-1]
				kindStack = kindStack[:len(kindStack)-1]
				path, err := ParsePath(top.collRaw)
				if err != nil {
					return nil, err
				}
				appendSpan(&ForeachSpan{CollectionPath: path, IterVar: top.iterVar, Body: top.body})
			}
		}
	}

	if len(kindStack) > 0 {
		switch kindStack[len(kindStack)-1] {
		case 'i':
			return nil, newStructuralError(ErrUnmatchedConditionalStart, "block-matcher", "{{#if}}", "unmatched {{#if}}")
		default:
			return nil, newStructuralError(ErrUnmatchedLoopStart, "block-matcher", "{{#foreach}}", "unmatched {{#foreach}}")
		}
	}
	return root, nil
}

func peekIf(ifStack []*ifFrame, kindStack []byte, where string) (*ifFrame, error) {
	if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
		return nil, newStructuralError(ErrUnmatchedConditionalStart, "block-matcher", where, "{{"+where+"}} outside an open if-block")
	}
	return ifStack[len(ifStack)-1], nil
}

// BuildRowSpans runs the table-row-scoped matcher over
// one table's rows. A row is marker-only, by the pragmatic reading this
// matcher uses, when it has exactly one cell holding exactly one
// marker-only paragraph and no other content — the shape every template
// authoring tool in practice produces for a row-repeating block, since a
// <w:tr> has no text of its own outside its cells.
func BuildRowSpans(rows []*ooxml.Row) ([]RowSpan, error) {
	type ifRowFrame struct {
		branches []IfRowBranch
		curCond  ExprNode
		curBody  []RowSpan
		elseBody []RowSpan
		inElse   bool
	}
	type foreachRowFrame struct {
		iterVar string
		collRaw string
		body    []RowSpan
	}

	var ifStack []*ifRowFrame
	var forStack []*foreachRowFrame
	var kindStack []byte
	var root []RowSpan

	appendSpan := func(s RowSpan) {
		if len(kindStack) == 0 {
			root = append(root, s)
			return
		}
		switch kindStack[len(kindStack)-1] {
		case 'f':
			top := forStack[len(forStack)-1]
			top.body = append(top.body, s)
		case 'i':
			top := ifStack[len(ifStack)-1]
			if top.inElse {
				top.elseBody = append(top.elseBody, s)
			} else {
				top.curBody = append(top.curBody, s)
			}
		}
	}

	for _, row := range rows {
		tok, isMarker, err := classifyMarkerRow(row)
		if err != nil {
			return nil, err
		}
		if !isMarker {
			appendSpan(&PassthroughRowSpan{Row: row})
			continue
		}
		switch tok.Kind {
		case TokenIfOpen:
			cond, err := ParseExpr(tok.Inner)
			if err != nil {
				return nil, err
			}
			ifStack = append(ifStack, &ifRowFrame{curCond: cond})
			kindStack = append(kindStack, 'i')
		case TokenElseIf:
			if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
				return nil, newStructuralError(ErrUnmatchedConditionalStart, "block-matcher", "{{#elseif}} (row)", "elseif outside an open if-block")
			}
			top := ifStack[len(ifStack)-1]
			if top.inElse {
				return nil, newStructuralError(ErrElseIfAfterElse, "block-matcher", "{{#elseif}} (row)", "elseif after else in same if-block")
			}
			top.branches = append(top.branches, IfRowBranch{Cond: top.curCond, Body: top.curBody})
			cond, err := ParseExpr(tok.Inner)
			if err != nil {
				return nil, err
			}
			top.curCond, top.curBody = cond, nil
		case TokenElse:
			if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
				return nil, newStructuralError(ErrUnmatchedConditionalStart, "block-matcher", "{{#else}} (row)", "else outside an open if-block")
			}
			top := ifStack[len(ifStack)-1]
			if top.inElse {
				return nil, newStructuralError(ErrElseAfterElse, "block-matcher", "{{#else}} (row)", "else after else in same if-block")
			}
			top.branches = append(top.branches, IfRowBranch{Cond: top.curCond, Body: top.curBody})
			top.curCond, top.curBody = nil, nil
			top.inElse = true
		case TokenIfClose:
			if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'i' {
				return nil, newStructuralError(ErrUnmatchedConditionalEnd, "block-matcher", "{{/if}} (row)", "unmatched {{/if}}")
			}
			top := ifStack[len(ifStack)-1]
			ifStack = ifStack[:len(ifStack)-1]
			kindStack = kindStack[:len(kindStack)-1]
			var elseBody []RowSpan
			hasElse := top.inElse
			if top.inElse {
				elseBody = top.elseBody
			} else {
				top.branches = append(top.branches, IfRowBranch{Cond: top.curCond, Body: top.curBody})
			}
			appendSpan(&IfRowSpan{Branches: top.branches, Else: elseBody, HasElse: hasElse})
		case TokenForeachOpen:
			iterVar, pathRaw, err := parseForeachHeader(tok.Inner)
			if err != nil {
				return nil, err
			}
			forStack = append(forStack, &foreachRowFrame{iterVar: iterVar, collRaw: pathRaw})
			kindStack = append(kindStack, 'f')
		case TokenForeachClose:
			if len(kindStack) == 0 || kindStack[len(kindStack)-1] != 'f' {
				return nil, newStructuralError(ErrUnmatchedLoopEnd, "block-matcher", "{{/foreach}} (row)", "unmatched {{/foreach}}")
			}
			top := forStack[len(forStack)-1]
			forStack = forStack[:len(forStack)-1]
			kindStack = kindStack[:len(kindStack)-1]
			path, err := ParsePath(top.collRaw)
			if err != nil {
				return nil, err
			}
			appendSpan(&ForeachRowSpan{CollectionPath: path, IterVar: top.iterVar, Body: top.body})
		}
	}

	if len(kindStack) > 0 {
		switch kindStack[len(kindStack)-1] {
		case 'i':
			return nil, newStructuralError(ErrUnmatchedConditionalStart, "block-matcher", "{{#if}} (row)", "unmatched {{#if}} in table")
		default:
			return nil, newStructuralError(ErrUnmatchedLoopStart, "block-matcher", "{{#foreach}} (row)", "unmatched {{#foreach}} in table")
		}
	}
	return root, nil
}

// classifyMarkerParagraph reports whether a paragraph's trimmed text
// consists entirely of one block marker, returning that marker token
// when so.
func classifyMarkerParagraph(p *ooxml.Paragraph) (Token, bool, error) {
	runs := p.Runs()
	toks, err := Tokenize(runs)
	if err != nil {
		return Token{}, false, err
	}
	if len(toks) != 1 || toks[0].Kind == TokenPlaceholder {
		return Token{}, false, nil
	}
	tok := toks[0]
	before, after := surroundingText(runs, tok)
	if strings.TrimSpace(before) != "" || strings.TrimSpace(after) != "" {
		return Token{}, false, nil
	}
	return tok, true, nil
}

// classifyMarkerRow applies the same "sole content is one block marker"
// test as classifyMarkerParagraph, but restricted to rows shaped as one
// cell holding one paragraph (see BuildRowSpans's doc comment).
func classifyMarkerRow(row *ooxml.Row) (Token, bool, error) {
	if len(row.Cells) != 1 || len(row.Cells[0].Blocks) != 1 {
		return Token{}, false, nil
	}
	p, ok := row.Cells[0].Blocks[0].(*ooxml.Paragraph)
	if !ok {
		return Token{}, false, nil
	}
	return classifyMarkerParagraph(p)
}

// surroundingText reconstructs the paragraph's plain text before and
// after the token's covered span, using rune-count prefix sums over the
// run sequence to translate (run, offset) back to a flat position.
func surroundingText(runs []*ooxml.Run, tok Token) (before, after string) {
	var all []rune
	startIdx, endIdx := -1, -1
	for ri, r := range runs {
		text := []rune(r.Text)
		if ri == tok.StartRun {
			startIdx = len(all) + tok.StartOff
		}
		if ri == tok.EndRun {
			endIdx = len(all) + tok.EndOff
		}
		all = append(all, text...)
	}
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx < 0 || endIdx > len(all) {
		endIdx = len(all)
	}
	return string(all[:startIdx]), string(all[endIdx:])
}

// parseForeachHeader parses the `{{#foreach <path>}}` / `{{#foreach
// <ident> in <path>}}` header forms and enforces the
// reserved-word rules ("in" cannot be an iteration-variable name;
// iteration-variable names must not start with "@").
func parseForeachHeader(raw string) (iterVar, pathRaw string, err error) {
	raw = strings.TrimSpace(raw)
	fields := strings.Fields(raw)
	if len(fields) >= 3 && strings.EqualFold(fields[1], "in") {
		iterVar = fields[0]
		if strings.EqualFold(iterVar, "in") {
			return "", "", newStructuralError(ErrInvalidIterationVariableName, "block-matcher", raw, `"in" cannot be an iteration-variable name`)
		}
		if IsReservedIdentifier(iterVar) {
			return "", "", newStructuralError(ErrInvalidIterationVariableName, "block-matcher", raw, "iteration-variable names must not start with '@'")
		}
		pathRaw = strings.TrimSpace(strings.Join(fields[2:], " "))
		return iterVar, pathRaw, nil
	}
	return "", raw, nil
}
