package templify

import (
	"bytes"
	"fmt"

	"github.com/TriasDev/templify/internal/ooxml"
)

// RenderWarningReport renders warnings as a standalone .docx document: a
// heading, a running "Total Warnings: N" line, then one
// paragraph per unique (kind, name) pair — built through the same typed
// OOXML tree and Package.Save the transformer itself produces, rather
// than hand-assembling XML text, so the report is exercised by the exact
// marshaling path process() output goes through.
func RenderWarningReport(warnings []Warning) ([]byte, error) {
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: buildReportBlocks(warnings)}}
	pkg := ooxml.NewMinimalPackage(doc)

	var buf bytes.Buffer
	if err := pkg.Save(&buf, false, false); err != nil {
		return nil, fmt.Errorf("templify: render warning report: %w", err)
	}
	return buf.Bytes(), nil
}

func buildReportBlocks(warnings []Warning) []ooxml.Block {
	blocks := []ooxml.Block{
		textParagraph("Templify Warning Report", true),
		textParagraph(fmt.Sprintf("Total Warnings: %d", len(warnings)), false),
	}
	for _, kind := range []WarningKind{WarnMissingVariable, WarnMissingLoopCollection, WarnNullLoopCollection} {
		names := namesForKind(warnings, kind)
		if len(names) == 0 {
			continue
		}
		blocks = append(blocks, textParagraph(fmt.Sprintf("%s (%d)", kind.String(), len(names)), true))
		for _, name := range names {
			blocks = append(blocks, textParagraph("  - "+name, false))
		}
	}
	return blocks
}

func namesForKind(warnings []Warning, kind WarningKind) []string {
	var names []string
	for _, w := range warnings {
		if w.Kind == kind {
			names = append(names, w.Name)
		}
	}
	return names
}

func textParagraph(text string, bold bool) *ooxml.Paragraph {
	return &ooxml.Paragraph{
		Content: []ooxml.ParaElement{
			&ooxml.Run{Properties: &ooxml.RunProperties{Bold: bold}, Text: text},
		},
	}
}
