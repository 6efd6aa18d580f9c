package templify

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/TriasDev/templify/internal/ooxml"
)

// run builds one plain run with no special properties.
func run(text string) *ooxml.Run {
	return &ooxml.Run{Properties: &ooxml.RunProperties{}, Text: text}
}

// para builds one paragraph whose content is a single run per string.
func para(texts ...string) *ooxml.Paragraph {
	content := make([]ooxml.ParaElement, len(texts))
	for i, t := range texts {
		content[i] = run(t)
	}
	return &ooxml.Paragraph{Content: content}
}

// paraRuns builds one paragraph from already-constructed runs.
func paraRuns(runs ...*ooxml.Run) *ooxml.Paragraph {
	content := make([]ooxml.ParaElement, len(runs))
	for i, r := range runs {
		content[i] = r
	}
	return &ooxml.Paragraph{Content: content}
}

func mapOf(pairs ...any) *Value {
	om := orderedmap.New[string, *Value]()
	for i := 0; i+1 < len(pairs); i += 2 {
		om.Set(pairs[i].(string), pairs[i+1].(*Value))
	}
	return NewMapping(om)
}

func seqOf(items ...*Value) *Value { return NewSequence(items) }
