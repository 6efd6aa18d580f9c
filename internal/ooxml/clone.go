package ooxml

import "fmt"

// IDRemapper hands out document-unique bookmark IDs for cloned
// content, seeded above every ID already present in the source document
// so foreach-expanded copies never collide with the original or with each
// other.
type IDRemapper struct {
	next int
}

// NewIDRemapper seeds the remapper above the highest bookmark ID found in
// doc, so freshly minted IDs can never collide with originals.
func NewIDRemapper(doc *Document) *IDRemapper {
	max := 0
	if doc.Body != nil {
		walkBlocks(doc.Body.Blocks, func(p *Paragraph) {
			for _, el := range p.Content {
				if bs, ok := el.(*BookmarkStart); ok {
					if n := parseIDLoose(bs.ID); n > max {
						max = n
					}
				}
			}
		})
	}
	return &IDRemapper{next: max + 1}
}

func (r *IDRemapper) Next() string {
	id := r.next
	r.next++
	return fmt.Sprintf("%d", id)
}

func parseIDLoose(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func walkBlocks(blocks []Block, visit func(*Paragraph)) {
	for _, blk := range blocks {
		switch v := blk.(type) {
		case *Paragraph:
			visit(v)
		case *Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					walkBlocks(cell.Blocks, visit)
				}
			}
		}
	}
}

// bookmarkRemap tracks old-ID -> new-ID assignments for one clone
// operation, so a BookmarkEnd reuses the ID minted for its matching
// BookmarkStart instead of drawing an independent one and breaking the
// pair.
type bookmarkRemap map[string]string

// CloneParagraph deep-copies a paragraph, remapping every bookmark ID it
// carries through ids so the clone is document-unique. Run/hyperlink
// content and paragraph properties (including any numbering reference
// embedded in the opaque RawXML) are copied as-is — numbering references
// are shared structural IDs that must survive unchanged, not remapped.
func CloneParagraph(p *Paragraph, ids *IDRemapper) *Paragraph {
	return cloneParagraph(p, ids, make(bookmarkRemap))
}

func cloneParagraph(p *Paragraph, ids *IDRemapper, bm bookmarkRemap) *Paragraph {
	cp := &Paragraph{Properties: p.Properties.Clone()}
	cp.Content = make([]ParaElement, len(p.Content))
	for i, el := range p.Content {
		cp.Content[i] = cloneParaElement(el, ids, bm)
	}
	return cp
}

func cloneParaElement(el ParaElement, ids *IDRemapper, bm bookmarkRemap) ParaElement {
	switch v := el.(type) {
	case *Run:
		return cloneRun(v)
	case *Hyperlink:
		runs := make([]*Run, len(v.Runs))
		for i, r := range v.Runs {
			runs[i] = cloneRun(r)
		}
		return &Hyperlink{RelID: v.RelID, Runs: runs}
	case *BookmarkStart:
		newID := ids.Next()
		bm[v.ID] = newID
		return &BookmarkStart{ID: newID, Name: v.Name}
	case *BookmarkEnd:
		newID, ok := bm[v.ID]
		if !ok {
			newID = ids.Next()
		}
		return &BookmarkEnd{ID: newID}
	default:
		return el
	}
}

func cloneRun(r *Run) *Run {
	return &Run{Properties: r.Properties.Clone(), Text: r.Text}
}

// CloneRow deep-copies a table row, remapping bookmark IDs across every
// nested paragraph the same way CloneParagraph does. The remap is shared
// across the whole row — including nested tables — so a bookmark pair
// split across cells or paragraphs within one row clone still matches.
func CloneRow(row *Row, ids *IDRemapper) *Row {
	return cloneRow(row, ids, make(bookmarkRemap))
}

func cloneRow(row *Row, ids *IDRemapper, bm bookmarkRemap) *Row {
	cp := &Row{Properties: row.Properties}
	cp.Cells = make([]*Cell, len(row.Cells))
	for i, cell := range row.Cells {
		cp.Cells[i] = cloneCell(cell, ids, bm)
	}
	return cp
}

func cloneCell(cell *Cell, ids *IDRemapper, bm bookmarkRemap) *Cell {
	cp := &Cell{Properties: cell.Properties}
	cp.Blocks = make([]Block, len(cell.Blocks))
	for i, blk := range cell.Blocks {
		switch v := blk.(type) {
		case *Paragraph:
			cp.Blocks[i] = cloneParagraph(v, ids, bm)
		case *Table:
			cp.Blocks[i] = cloneTable(v, ids, bm)
		}
	}
	return cp
}

func cloneTable(t *Table, ids *IDRemapper, bm bookmarkRemap) *Table {
	cp := &Table{Properties: t.Properties, Grid: t.Grid}
	cp.Rows = make([]*Row, len(t.Rows))
	for i, row := range t.Rows {
		cp.Rows[i] = cloneRow(row, ids, bm)
	}
	return cp
}
