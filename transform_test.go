package templify

import (
	"strings"
	"testing"

	"github.com/TriasDev/templify/internal/ooxml"
)

func plainText(doc *ooxml.Document) string {
	var sb strings.Builder
	for _, b := range doc.Body.Blocks {
		if p, ok := b.(*ooxml.Paragraph); ok {
			sb.WriteString(p.PlainText())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func TestTransformDocumentSubstitutesPlaceholder(t *testing.T) {
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: []ooxml.Block{para("Hello {{name}}!")}}}
	data := mapOf("name", NewString("Ann"))
	warn, err := TransformDocument(doc, data, nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	if got := plainText(doc); got != "Hello Ann!\n" {
		t.Errorf("got %q", got)
	}
	if warn.Count() != 0 {
		t.Errorf("expected no warnings, got %+v", warn.Warnings)
	}
}

func TestTransformDocumentMissingVariableLeavesUnchanged(t *testing.T) {
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: []ooxml.Block{para("Hi {{missing}}.")}}}
	warn, err := TransformDocument(doc, Null, nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	if got := plainText(doc); got != "Hi {{missing}}.\n" {
		t.Errorf("got %q", got)
	}
	if warn.Count() != 1 {
		t.Errorf("expected 1 warning, got %d", warn.Count())
	}
}

func TestTransformDocumentMissingVariableFailPolicy(t *testing.T) {
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: []ooxml.Block{para("Hi {{missing}}.")}}}
	opts := DefaultOptions()
	opts.MissingVariableBehavior = MissingFail
	_, err := TransformDocument(doc, Null, opts)
	if err == nil {
		t.Errorf("expected an error under MissingFail for a missing variable")
	}
}

func TestTransformDocumentIfBlockSelectsBranch(t *testing.T) {
	blocks := []ooxml.Block{
		marker("{{#if show}}"),
		para("visible"),
		marker("{{#else}}"),
		para("hidden"),
		marker("{{/if}}"),
	}
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: blocks}}
	warn, err := TransformDocument(doc, mapOf("show", NewBool(true)), nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	if got := plainText(doc); got != "visible\n" {
		t.Errorf("got %q", got)
	}
	_ = warn
}

func TestTransformDocumentForeachExpandsBody(t *testing.T) {
	blocks := []ooxml.Block{
		marker("{{#foreach item in items}}"),
		para("{{item}}"),
		marker("{{/foreach}}"),
	}
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: blocks}}
	items := seqOf(NewString("a"), NewString("b"), NewString("c"))
	_, err := TransformDocument(doc, mapOf("items", items), nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	if got := plainText(doc); got != "a\nb\nc\n" {
		t.Errorf("got %q", got)
	}
}

func TestTransformDocumentForeachMissingCollectionWarns(t *testing.T) {
	blocks := []ooxml.Block{
		marker("{{#foreach items}}"),
		para("{{name}}"),
		marker("{{/foreach}}"),
	}
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: blocks}}
	warn, err := TransformDocument(doc, Null, nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	if got := plainText(doc); got != "" {
		t.Errorf("expected zero iterations, got %q", got)
	}
	if warn.Count() != 1 || warn.Warnings[0].Kind != WarnMissingLoopCollection {
		t.Errorf("expected a WarnMissingLoopCollection warning, got %+v", warn.Warnings)
	}
}

func TestTransformDocumentInlineIfWithinParagraph(t *testing.T) {
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: []ooxml.Block{
		para("Status: {{#if ok}}OK{{#else}}FAIL{{/if}}."),
	}}}
	_, err := TransformDocument(doc, mapOf("ok", NewBool(false)), nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	if got := plainText(doc); got != "Status: FAIL.\n" {
		t.Errorf("got %q", got)
	}
}

func TestTransformDocumentPlaceholderPreservesHostRunProperties(t *testing.T) {
	r := run("{{name}}")
	r.Properties.Bold = true
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: []ooxml.Block{paraRuns(r)}}}
	_, err := TransformDocument(doc, mapOf("name", NewString("Ann")), nil)
	if err != nil {
		t.Fatalf("TransformDocument: %v", err)
	}
	p := doc.Body.Blocks[0].(*ooxml.Paragraph)
	runs := p.Runs()
	if len(runs) != 1 || !runs[0].Properties.Bold {
		t.Errorf("expected the substituted run to keep Bold formatting, got %+v", runs)
	}
}
