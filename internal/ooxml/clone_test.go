package ooxml

import "testing"

func TestNewIDRemapperSeedsAboveExistingBookmarks(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: []Block{
		&Paragraph{Content: []ParaElement{&BookmarkStart{ID: "5", Name: "a"}}},
	}}}
	ids := NewIDRemapper(doc)
	if got := ids.Next(); got != "6" {
		t.Errorf("first minted ID = %q, want %q", got, "6")
	}
}

func TestCloneParagraphRemapsBookmarkIDs(t *testing.T) {
	ids := &IDRemapper{next: 100}
	orig := &Paragraph{Content: []ParaElement{
		&BookmarkStart{ID: "1", Name: "a"},
		&Run{Text: "x"},
	}}
	cp := CloneParagraph(orig, ids)
	bs := cp.Content[0].(*BookmarkStart)
	if bs.ID != "100" {
		t.Errorf("cloned bookmark ID = %q, want %q", bs.ID, "100")
	}
	if orig.Content[0].(*BookmarkStart).ID != "1" {
		t.Errorf("cloning should not mutate the source paragraph's bookmark ID")
	}
}

func TestCloneParagraphDeepCopiesRunsNotAliased(t *testing.T) {
	orig := &Paragraph{Content: []ParaElement{&Run{Text: "original"}}}
	ids := &IDRemapper{next: 1}
	cp := CloneParagraph(orig, ids)
	cp.Content[0].(*Run).Text = "mutated"
	if orig.Content[0].(*Run).Text != "original" {
		t.Errorf("mutating the clone's run text should not affect the source")
	}
}

func TestCloneRowRecursesIntoNestedTable(t *testing.T) {
	ids := &IDRemapper{next: 1}
	row := &Row{Cells: []*Cell{{Blocks: []Block{
		&Table{Rows: []*Row{{Cells: []*Cell{{Blocks: []Block{
			&Paragraph{Content: []ParaElement{&Run{Text: "nested"}}},
		}}}}}},
	}}}}
	cp := CloneRow(row, ids)
	nestedTbl := cp.Cells[0].Blocks[0].(*Table)
	p := nestedTbl.Rows[0].Cells[0].Blocks[0].(*Paragraph)
	if p.PlainText() != "nested" {
		t.Errorf("got %q, want %q", p.PlainText(), "nested")
	}
}
