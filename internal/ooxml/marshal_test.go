package ooxml

import (
	"strings"
	"testing"
)

func TestMarshalDocumentXMLEscapesRunText(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: []Block{
		&Paragraph{Content: []ParaElement{&Run{Text: "Smith & <Co>"}}},
	}}}
	data, err := marshalDocumentXML(doc)
	if err != nil {
		t.Fatalf("marshalDocumentXML: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "Smith & <Co>") {
		t.Errorf("raw unescaped text leaked into output: %s", s)
	}
	if !strings.Contains(s, "Smith &amp; &lt;Co&gt;") {
		t.Errorf("expected escaped text, got: %s", s)
	}
}

func TestMarshalDocumentXMLEmitsBreakAndTab(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: []Block{
		&Paragraph{Content: []ParaElement{&Run{Text: "a" + string(LineBreak) + "b\tc"}}},
	}}}
	data, err := marshalDocumentXML(doc)
	if err != nil {
		t.Fatalf("marshalDocumentXML: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "<w:br/>") {
		t.Errorf("expected a <w:br/> element, got: %s", s)
	}
	if !strings.Contains(s, "<w:tab/>") {
		t.Errorf("expected a <w:tab/> element, got: %s", s)
	}
}

func TestUnmarshalDocumentXMLRoundTripsTable(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: []Block{
		&Table{Rows: []*Row{{Cells: []*Cell{{Blocks: []Block{
			&Paragraph{Content: []ParaElement{&Run{Text: "cell text"}}},
		}}}}}},
	}}}
	data, err := marshalDocumentXML(doc)
	if err != nil {
		t.Fatalf("marshalDocumentXML: %v", err)
	}
	reopened, err := unmarshalDocumentXML(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("unmarshalDocumentXML: %v", err)
	}
	tbl, ok := reopened.Body.Blocks[0].(*Table)
	if !ok {
		t.Fatalf("expected a *Table, got %T", reopened.Body.Blocks[0])
	}
	p := tbl.Rows[0].Cells[0].Blocks[0].(*Paragraph)
	if p.PlainText() != "cell text" {
		t.Errorf("got %q, want %q", p.PlainText(), "cell text")
	}
}

func TestUnmarshalDocumentXMLRoundTripsBookmarks(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: []Block{
		&Paragraph{Content: []ParaElement{
			&BookmarkStart{ID: "1", Name: "anchor"},
			&Run{Text: "x"},
			&BookmarkEnd{ID: "1"},
		}},
	}}}
	data, err := marshalDocumentXML(doc)
	if err != nil {
		t.Fatalf("marshalDocumentXML: %v", err)
	}
	reopened, err := unmarshalDocumentXML(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("unmarshalDocumentXML: %v", err)
	}
	p := reopened.Body.Blocks[0].(*Paragraph)
	if len(p.Content) != 3 {
		t.Fatalf("got %d content elements, want 3", len(p.Content))
	}
	bs, ok := p.Content[0].(*BookmarkStart)
	if !ok || bs.Name != "anchor" {
		t.Errorf("expected a BookmarkStart named %q, got %+v", "anchor", p.Content[0])
	}
}
