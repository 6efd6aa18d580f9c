package ooxml

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// documentHeader/Footer bracket the <w:document> element with a fixed
// pair of namespace declarations (w and r); document.xml is always
// re-saved under this pair, whatever declarations the opened part carried.
const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`

const documentFooter = `</w:body></w:document>`

// marshalDocumentXML re-encodes a Document back into word/document.xml
// bytes. Properties captured as opaque raw XML during decode (pPr, tblPr,
// tblGrid, trPr, tcPr, sectPr) are re-emitted verbatim.
func marshalDocumentXML(doc *Document) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(documentHeader)
	if doc.Body != nil {
		for _, blk := range doc.Body.Blocks {
			if err := encodeBlock(&b, blk); err != nil {
				return nil, err
			}
		}
		if doc.Body.SectPrXML != "" {
			b.WriteString("<w:sectPr>")
			b.WriteString(doc.Body.SectPrXML)
			b.WriteString("</w:sectPr>")
		}
	}
	b.WriteString(documentFooter)
	return b.Bytes(), nil
}

func encodeBlock(b *bytes.Buffer, blk Block) error {
	switch v := blk.(type) {
	case *Paragraph:
		return encodeParagraph(b, v)
	case *Table:
		return encodeTable(b, v)
	}
	return nil
}

func encodeParagraph(b *bytes.Buffer, p *Paragraph) error {
	b.WriteString("<w:p>")
	if p.Properties != nil && p.Properties.RawXML != "" {
		b.WriteString("<w:pPr>")
		b.WriteString(p.Properties.RawXML)
		b.WriteString("</w:pPr>")
	}
	for _, el := range p.Content {
		if err := encodeParaElement(b, el); err != nil {
			return err
		}
	}
	b.WriteString("</w:p>")
	return nil
}

func encodeParaElement(b *bytes.Buffer, el ParaElement) error {
	switch v := el.(type) {
	case *Run:
		return encodeRun(b, v)
	case *Hyperlink:
		b.WriteString(`<w:hyperlink r:id="`)
		b.WriteString(xmlEscapeAttr(v.RelID))
		b.WriteString(`">`)
		for _, r := range v.Runs {
			if err := encodeRun(b, r); err != nil {
				return err
			}
		}
		b.WriteString("</w:hyperlink>")
	case *BookmarkStart:
		b.WriteString(`<w:bookmarkStart w:id="`)
		b.WriteString(xmlEscapeAttr(v.ID))
		b.WriteString(`" w:name="`)
		b.WriteString(xmlEscapeAttr(v.Name))
		b.WriteString(`"/>`)
	case *BookmarkEnd:
		b.WriteString(`<w:bookmarkEnd w:id="`)
		b.WriteString(xmlEscapeAttr(v.ID))
		b.WriteString(`"/>`)
	}
	return nil
}

func encodeRun(b *bytes.Buffer, r *Run) error {
	b.WriteString("<w:r>")
	if r.Properties != nil {
		enc := xml.NewEncoder(b)
		if err := r.Properties.MarshalXML(enc, xml.StartElement{}); err != nil {
			return err
		}
		if err := enc.Flush(); err != nil {
			return err
		}
	}
	writeRunText(b, r.Text)
	b.WriteString("</w:r>")
	return nil
}

// writeRunText splits a run's text at LineBreak/tab sentinels, emitting
// <w:t>/<w:br/>/<w:tab/> in sequence so Word renders the same layout that
// was decoded.
func writeRunText(b *bytes.Buffer, text string) {
	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(xmlEscapeText(seg.String()))
		b.WriteString("</w:t>")
		seg.Reset()
	}
	for _, r := range text {
		switch r {
		case LineBreak:
			flush()
			b.WriteString("<w:br/>")
		case '\t':
			flush()
			b.WriteString("<w:tab/>")
		default:
			seg.WriteRune(r)
		}
	}
	flush()
}

func encodeTable(b *bytes.Buffer, t *Table) error {
	b.WriteString("<w:tbl>")
	if t.Properties != "" {
		b.WriteString("<w:tblPr>")
		b.WriteString(t.Properties)
		b.WriteString("</w:tblPr>")
	}
	if t.Grid != "" {
		b.WriteString("<w:tblGrid>")
		b.WriteString(t.Grid)
		b.WriteString("</w:tblGrid>")
	}
	for _, row := range t.Rows {
		if err := encodeRow(b, row); err != nil {
			return err
		}
	}
	b.WriteString("</w:tbl>")
	return nil
}

func encodeRow(b *bytes.Buffer, row *Row) error {
	b.WriteString("<w:tr>")
	if row.Properties != "" {
		b.WriteString("<w:trPr>")
		b.WriteString(row.Properties)
		b.WriteString("</w:trPr>")
	}
	for _, cell := range row.Cells {
		if err := encodeCell(b, cell); err != nil {
			return err
		}
	}
	b.WriteString("</w:tr>")
	return nil
}

func encodeCell(b *bytes.Buffer, cell *Cell) error {
	b.WriteString("<w:tc>")
	if cell.Properties != "" {
		b.WriteString("<w:tcPr>")
		b.WriteString(cell.Properties)
		b.WriteString("</w:tcPr>")
	}
	for _, blk := range cell.Blocks {
		if err := encodeBlock(b, blk); err != nil {
			return err
		}
	}
	b.WriteString("</w:tc>")
	return nil
}

func xmlEscapeText(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}

func xmlEscapeAttr(s string) string { return xmlEscapeText(s) }
