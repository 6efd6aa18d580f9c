package ooxml

import (
	"encoding/xml"
	"io"
)

// LineBreak is the sentinel rune spliced into Run.Text to represent a
// <w:br/> without modelling paragraph content as an interleaved sequence
// of typed inline elements. Chosen because it can never appear in decoded
// XML character data (U+2028 LINE SEPARATOR is not a valid direct
// character reference collision risk in Word-authored documents).
const LineBreak = ' '

// Document is the parsed word/document.xml tree: a Body of Blocks
// (paragraphs and tables), each paragraph a sequence of ParaElements.
//
// Grounded on go-stencil's Document/Body/Paragraph/Run shape, extended
// with Hyperlink/BookmarkStart/BookmarkEnd as supplemented features and
// Table/Row/Cell for block matching over table rows.
type Document struct {
	Body *Body
}

// Body holds the document's block-level content plus the trailing
// sectPr block, preserved as opaque raw XML.
type Body struct {
	Blocks    []Block
	SectPrXML string
}

// Block is a paragraph or a table; blocks.go's matcher walks a Body's
// Blocks to find paragraph- and row-scoped block markers.
type Block interface {
	isBlock()
}

// Paragraph is one <w:p>. Properties is preserved verbatim; Content is
// the ordered run/hyperlink/bookmark sequence.
type Paragraph struct {
	Properties *ParagraphProperties
	Content    []ParaElement
}

func (*Paragraph) isBlock() {}

// ParaElement is one paragraph-content child: a Run, a Hyperlink, or a
// bookmark boundary marker.
type ParaElement interface {
	isParaElement()
}

// Run is one <w:r>: properties plus text. Line breaks within the run are
// represented inline as LineBreak runes rather than as separate elements.
type Run struct {
	Properties *RunProperties
	Text       string
}

func (*Run) isParaElement() {}

// Hyperlink wraps a nested run sequence under a relationship ID.
// Templates commonly carry hyperlinked placeholders that must survive
// foreach expansion intact.
type Hyperlink struct {
	RelID string
	Runs  []*Run
}

func (*Hyperlink) isParaElement() {}

// BookmarkStart/BookmarkEnd carry the <w:bookmarkStart>/<w:bookmarkEnd>
// w:id, which must be remapped (not merely copied) when a paragraph is
// cloned under foreach expansion, since OOXML requires bookmark IDs to
// be document-unique.
type BookmarkStart struct {
	ID   string
	Name string
}

func (*BookmarkStart) isParaElement() {}

type BookmarkEnd struct {
	ID string
}

func (*BookmarkEnd) isParaElement() {}

// Table is one <w:tbl>.
type Table struct {
	Properties string // opaque <w:tblPr>, preserved verbatim
	Grid       string // opaque <w:tblGrid>, preserved verbatim
	Rows       []*Row
}

func (*Table) isBlock() {}

// Row is one <w:tr>; block matching treats a Row as the unit a
// row-scoped {{#foreach}}/{{#if}} marker can span.
type Row struct {
	Properties string // opaque <w:trPr>, preserved verbatim
	Cells      []*Cell
}

// Cell is one <w:tc>; its content is itself a Block sequence since a
// cell may contain nested tables.
type Cell struct {
	Properties string // opaque <w:tcPr>, preserved verbatim
	Blocks     []Block
}

// PlainText concatenates every run's text across the paragraph's content
// (including inside hyperlinks) as stored, breaks included as the
// LineBreak rune, for use by the token recognizer's virtual character
// stream.
func (p *Paragraph) PlainText() string {
	var out []rune
	for _, el := range p.Content {
		switch e := el.(type) {
		case *Run:
			out = append(out, []rune(e.Text)...)
		case *Hyperlink:
			for _, r := range e.Runs {
				out = append(out, []rune(r.Text)...)
			}
		}
	}
	return string(out)
}

// Runs returns every *Run reachable from the paragraph's content in
// document order, flattening hyperlink nesting. Used by the token
// recognizer to build its (run, offset) index map.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, el := range p.Content {
		switch e := el.(type) {
		case *Run:
			out = append(out, e)
		case *Hyperlink:
			out = append(out, e.Runs...)
		}
	}
	return out
}

// unmarshalDocumentXML decodes a word/document.xml byte stream into a
// Document, preserving every non-content-bearing child it doesn't model
// (sectPr, table/row/cell properties) as opaque raw XML via
// xmlEncodeChildren.
func unmarshalDocumentXML(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)
	doc := &Document{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "body" {
			continue
		}
		body, err := decodeBody(d, se)
		if err != nil {
			return nil, err
		}
		doc.Body = body
	}
	if doc.Body == nil {
		doc.Body = &Body{}
	}
	return doc, nil
}

func decodeBody(d *xml.Decoder, _ xml.StartElement) (*Body, error) {
	body := &Body{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return body, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "body" {
				return body, nil
			}
		case xml.StartElement:
			switch tt.Name.Local {
			case "p":
				p, err := decodeParagraph(d, tt)
				if err != nil {
					return nil, err
				}
				body.Blocks = append(body.Blocks, p)
			case "tbl":
				t, err := decodeTable(d, tt)
				if err != nil {
					return nil, err
				}
				body.Blocks = append(body.Blocks, t)
			case "sectPr":
				raw, err := captureInnerXML(d, tt)
				if err != nil {
					return nil, err
				}
				body.SectPrXML = raw
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func decodeParagraph(d *xml.Decoder, _ xml.StartElement) (*Paragraph, error) {
	p := &Paragraph{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return p, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "p" {
				return p, nil
			}
		case xml.StartElement:
			switch tt.Name.Local {
			case "pPr":
				raw, err := captureInnerXML(d, tt)
				if err != nil {
					return nil, err
				}
				p.Properties = &ParagraphProperties{RawXML: raw}
			case "r":
				run, err := decodeRun(d, tt)
				if err != nil {
					return nil, err
				}
				p.Content = append(p.Content, run)
			case "hyperlink":
				rel := attrVal(tt.Attr, "id")
				runs, err := decodeHyperlinkRuns(d, tt)
				if err != nil {
					return nil, err
				}
				p.Content = append(p.Content, &Hyperlink{RelID: rel, Runs: runs})
			case "bookmarkStart":
				p.Content = append(p.Content, &BookmarkStart{ID: attrVal(tt.Attr, "id"), Name: attrVal(tt.Attr, "name")})
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "bookmarkEnd":
				p.Content = append(p.Content, &BookmarkEnd{ID: attrVal(tt.Attr, "id")})
				if err := d.Skip(); err != nil {
					return nil, err
				}
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func decodeHyperlinkRuns(d *xml.Decoder, _ xml.StartElement) ([]*Run, error) {
	var runs []*Run
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return runs, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "hyperlink" {
				return runs, nil
			}
		case xml.StartElement:
			if tt.Name.Local == "r" {
				run, err := decodeRun(d, tt)
				if err != nil {
					return nil, err
				}
				runs = append(runs, run)
			} else if err := d.Skip(); err != nil {
				return nil, err
			}
		}
	}
}

func decodeRun(d *xml.Decoder, _ xml.StartElement) (*Run, error) {
	run := &Run{}
	var text []rune
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return run, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "r" {
				run.Text = string(text)
				return run, nil
			}
		case xml.StartElement:
			switch tt.Name.Local {
			case "rPr":
				rp := &RunProperties{}
				if err := rp.UnmarshalXML(d, tt); err != nil {
					return nil, err
				}
				run.Properties = rp
			case "t":
				s, err := decodeCharData(d)
				if err != nil {
					return nil, err
				}
				text = append(text, []rune(s)...)
			case "br":
				text = append(text, LineBreak)
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "tab":
				text = append(text, '\t')
				if err := d.Skip(); err != nil {
					return nil, err
				}
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func decodeCharData(d *xml.Decoder) (string, error) {
	var b []byte
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch tt := tok.(type) {
		case xml.CharData:
			b = append(b, tt...)
		case xml.EndElement:
			return string(b), nil
		}
	}
}

func decodeTable(d *xml.Decoder, _ xml.StartElement) (*Table, error) {
	t := &Table{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "tbl" {
				return t, nil
			}
		case xml.StartElement:
			switch tt.Name.Local {
			case "tblPr":
				raw, err := captureInnerXML(d, tt)
				if err != nil {
					return nil, err
				}
				t.Properties = raw
			case "tblGrid":
				raw, err := captureInnerXML(d, tt)
				if err != nil {
					return nil, err
				}
				t.Grid = raw
			case "tr":
				row, err := decodeRow(d, tt)
				if err != nil {
					return nil, err
				}
				t.Rows = append(t.Rows, row)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func decodeRow(d *xml.Decoder, _ xml.StartElement) (*Row, error) {
	row := &Row{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return row, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "tr" {
				return row, nil
			}
		case xml.StartElement:
			switch tt.Name.Local {
			case "trPr":
				raw, err := captureInnerXML(d, tt)
				if err != nil {
					return nil, err
				}
				row.Properties = raw
			case "tc":
				cell, err := decodeCell(d, tt)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, cell)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func decodeCell(d *xml.Decoder, _ xml.StartElement) (*Cell, error) {
	cell := &Cell{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return cell, nil
		}
		if err != nil {
			return nil, err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if tt.Name.Local == "tc" {
				return cell, nil
			}
		case xml.StartElement:
			switch tt.Name.Local {
			case "tcPr":
				raw, err := captureInnerXML(d, tt)
				if err != nil {
					return nil, err
				}
				cell.Properties = raw
			case "p":
				p, err := decodeParagraph(d, tt)
				if err != nil {
					return nil, err
				}
				cell.Blocks = append(cell.Blocks, p)
			case "tbl":
				nested, err := decodeTable(d, tt)
				if err != nil {
					return nil, err
				}
				cell.Blocks = append(cell.Blocks, nested)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}
