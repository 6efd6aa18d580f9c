package templify

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/TriasDev/templify/internal/ooxml"
)

// ValidationResult is validate()'s result surface.
type ValidationResult struct {
	IsValid          bool
	Errors           []error
	Warnings         []Warning
	AllPlaceholders  []string
	MissingVariables []string
}

// ValidateDocument parses doc's body without mutating it: every block
// marker is checked for pairing and correct nesting exactly as the tree
// transformer would check it, every placeholder is recorded, and — when
// data is non-nil — every placeholder is resolved in its lexical
// context, with a foreach body validated once against the *aggregate* of
// properties observed across the collection's items rather than once per
// item, so heterogeneous items are tolerated.
func ValidateDocument(doc *ooxml.Document, data *Value) *ValidationResult {
	v := &validator{hasData: data != nil, warn: NewWarningCollector()}
	root := data
	if root == nil {
		root = Null
	}
	v.walkBlocks(doc.Body.Blocks, NewRootScope(root))

	return &ValidationResult{
		IsValid:          len(v.errors) == 0,
		Errors:           v.errors,
		Warnings:         v.warn.Warnings,
		AllPlaceholders:  v.allPlaceholders,
		MissingVariables: v.missingVariables,
	}
}

// validator accumulates validate()'s findings while walking the same span
// tree transform.go builds, but only ever reading it: it never clones,
// never excises a branch, and visits every if-branch and every foreach
// body exactly once regardless of what data would select at runtime.
type validator struct {
	hasData bool
	warn    *WarningCollector

	errors []error

	allPlaceholders  []string
	seenPlaceholders map[string]bool
	missingVariables []string
	seenMissing      map[string]bool
}

func (v *validator) addError(err error) {
	if err != nil {
		v.errors = append(v.errors, err)
	}
}

func (v *validator) addPlaceholder(name string) {
	if v.seenPlaceholders == nil {
		v.seenPlaceholders = make(map[string]bool)
	}
	if v.seenPlaceholders[name] {
		return
	}
	v.seenPlaceholders[name] = true
	v.allPlaceholders = append(v.allPlaceholders, name)
}

func (v *validator) addMissing(name string) {
	if v.seenMissing == nil {
		v.seenMissing = make(map[string]bool)
	}
	if v.seenMissing[name] {
		return
	}
	v.seenMissing[name] = true
	v.missingVariables = append(v.missingVariables, name)
}

// walkBlocks re-runs the block-structure matcher over one container (the
// body, or a table cell's content) purely to validate pairing/nesting and
// to descend into its spans; a matcher error here is one subtree's
// structural failure and doesn't stop validation of sibling subtrees
// already queued by an outer walk.
func (v *validator) walkBlocks(blocks []ooxml.Block, scope *Scope) {
	spans, err := BuildSpans(blocks)
	if err != nil {
		v.addError(err)
		return
	}
	v.walkSpans(spans, scope)
}

func (v *validator) walkSpans(spans []Span, scope *Scope) {
	for _, s := range spans {
		switch t := s.(type) {
		case *ParagraphSpan:
			v.walkParagraph(t.Para, scope)
		case *TableSpan:
			v.walkRowSpans(t.Rows, scope)
		case *IfSpan:
			for _, br := range t.Branches {
				v.walkSpans(br.Body, scope)
			}
			if t.HasElse {
				v.walkSpans(t.Else, scope)
			}
		case *ForeachSpan:
			item, count := v.aggregateLoopItem(t.CollectionPath, scope)
			v.walkSpans(t.Body, scope.PushLoop(t.IterVar, item, 0, count))
		}
	}
}

func (v *validator) walkRowSpans(spans []RowSpan, scope *Scope) {
	for _, s := range spans {
		switch t := s.(type) {
		case *PassthroughRowSpan:
			for _, cell := range t.Row.Cells {
				v.walkBlocks(cell.Blocks, scope)
			}
		case *IfRowSpan:
			for _, br := range t.Branches {
				v.walkRowSpans(br.Body, scope)
			}
			if t.HasElse {
				v.walkRowSpans(t.Else, scope)
			}
		case *ForeachRowSpan:
			item, count := v.aggregateLoopItem(t.CollectionPath, scope)
			v.walkRowSpans(t.Body, scope.PushLoop(t.IterVar, item, 0, count))
		}
	}
}

// walkParagraph re-runs the inline pending-openings check
// (buildInlineItems) over a non-marker paragraph, since BuildSpans never
// looks inside a paragraph that isn't marker-only: an unbalanced inline
// "{{#if}}" sharing a paragraph with other text is a structural error
// only this inline pass catches.
func (v *validator) walkParagraph(p *ooxml.Paragraph, scope *Scope) {
	runs := p.Runs()
	toks, err := Tokenize(runs)
	if err != nil {
		v.addError(err)
		return
	}
	if len(toks) == 0 {
		return
	}
	items, err := buildInlineItems(toks, runs)
	if err != nil {
		v.addError(err)
		return
	}
	v.walkInlineItems(items, scope)
}

func (v *validator) walkInlineItems(items []InlineItem, scope *Scope) {
	for _, it := range items {
		switch t := it.(type) {
		case *inlinePlaceholder:
			v.recordPlaceholder(t.Tok, scope)
		case *inlineIf:
			for _, br := range t.Branches {
				v.walkInlineItems(br.Body, scope)
			}
			if t.HasElse {
				v.walkInlineItems(t.Else, scope)
			}
		case *inlineForeach:
			item, count := v.aggregateLoopItem(t.CollectionPath, scope)
			v.walkInlineItems(t.Body, scope.PushLoop(t.IterVar, item, 0, count))
		}
	}
}

// recordPlaceholder adds one placeholder token to AllPlaceholders and,
// when data is available, resolves it against scope. Loop-metadata
// identifiers ("@index", "@count", …) are recorded but never reported
// missing.
func (v *validator) recordPlaceholder(tok Token, scope *Scope) {
	expr, _, err := ParsePlaceholderExpr(tok.Inner)
	if err != nil {
		v.addError(err)
		return
	}
	name := placeholderMissingName(expr, tok.Inner)
	v.addPlaceholder(name)

	if !v.hasData || isMetadataPlaceholder(expr) {
		return
	}
	if expr.Eval(scope).IsMissing() {
		v.addMissing(name)
	}
}

func isMetadataPlaceholder(expr ExprNode) bool {
	pn, ok := expr.(*PathNode)
	if !ok || pn.Path == nil || len(pn.Path.Segments) != 1 {
		return false
	}
	seg := pn.Path.Segments[0]
	return seg.Kind == SegName && IsReservedIdentifier(seg.Name)
}

// aggregateLoopItem resolves a foreach header's collection for validation
// purposes: a missing or null collection warns and the
// body is still validated once, against a Missing pseudo-item, so its
// placeholders are still recorded (as missing, for any path depending on
// the item). A present but empty collection is handled the same way,
// without a warning. A non-empty collection validates its body
// against the union of keys observed across every Mapping item — "a
// placeholder resolvable by any path is considered present" falls out of
// this union naturally, since a key present on any one item survives into
// the aggregate.
func (v *validator) aggregateLoopItem(path *Path, scope *Scope) (*Value, int) {
	coll := ResolvePath(scope, path)
	if coll.IsMissing() {
		v.warn.Add(WarnMissingLoopCollection, path.String())
		return Missing(), 0
	}
	if coll.IsNull() {
		v.warn.Add(WarnNullLoopCollection, path.String())
		return Missing(), 0
	}
	items := coll.Sequence()
	if len(items) == 0 {
		// Present but empty: informational, not a validation error.
		// There is no dedicated warning kind for it, so the body still
		// validates against a Missing pseudo-item and any placeholder
		// genuinely depending on it surfaces as a MissingVariable instead.
		return Missing(), 0
	}
	return aggregateMapping(items), len(items)
}

func aggregateMapping(items []*Value) *Value {
	agg := orderedmap.New[string, *Value]()
	for _, it := range items {
		if !it.IsMapping() || it.Mapping() == nil {
			continue
		}
		for pair := it.Mapping().Oldest(); pair != nil; pair = pair.Next() {
			if _, exists := agg.Get(pair.Key); !exists {
				agg.Set(pair.Key, pair.Value)
			}
		}
	}
	if agg.Len() == 0 {
		// No Mapping items found (a sequence of scalars/Objects): fall
		// back to the first item so a body that only ever dereferences
		// "." (the bare current item) still validates meaningfully.
		return items[0]
	}
	return NewMapping(agg)
}
