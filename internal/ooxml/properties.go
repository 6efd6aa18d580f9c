// Package ooxml implements the typed OOXML word-processing document model
// the templify engine transforms: a ZIP package, a body tree of paragraphs
// and tables, and run-level formatting that survives clone/excise/splice
// unchanged unless explicitly overlaid.
package ooxml

import (
	"encoding/xml"
	"io"
	"strings"
)

// RunProperties is the visual property set of a run: bold, italic,
// color, highlight, shading, font, underline, strike,
// superscript/subscript. Preserved verbatim across rewrites unless
// overlaid by markdown-derived toggles.
//
// Grounded on go-docxgen's RunProperties field set and UnmarshalXML
// dispatch shape.
type RunProperties struct {
	XMLName   xml.Name `xml:"w:rPr"`
	Fonts     *RunFonts
	Bold      bool
	Italic    bool
	Underline string // "" means none; otherwise the w:val (single, double, …)
	Strike    bool
	VertAlign string // "", "superscript", "subscript"
	Color     string // w:val hex, e.g. "FF0000"
	Highlight string // w:val named highlight color
	Shade     string // w:fill hex of w:shd
	Size      string // w:val half-points
	Style     string // w:rStyle w:val
}

// RunFonts captures the <w:rFonts> font family selection.
type RunFonts struct {
	ASCII    string
	EastAsia string
	HAnsi    string
}

// Clone returns a deep copy. RunProperties are treated as immutable by
// the transformer; Clone exists for the one path that must mutate a
// copy — markdown overlay in the inline-value renderer.
func (p *RunProperties) Clone() *RunProperties {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Fonts != nil {
		f := *p.Fonts
		cp.Fonts = &f
	}
	return &cp
}

// Equal reports field-for-field equality, used when merging adjacent runs
// whose formatting is identical.
func (p *RunProperties) Equal(o *RunProperties) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Bold != o.Bold || p.Italic != o.Italic || p.Strike != o.Strike ||
		p.Underline != o.Underline || p.VertAlign != o.VertAlign ||
		p.Color != o.Color || p.Highlight != o.Highlight ||
		p.Shade != o.Shade || p.Size != o.Size || p.Style != o.Style {
		return false
	}
	switch {
	case p.Fonts == nil && o.Fonts == nil:
		return true
	case p.Fonts == nil || o.Fonts == nil:
		return false
	default:
		return *p.Fonts == *o.Fonts
	}
}

// WithMarkdownOverlay returns a clone with bold/italic/strike flipped per
// the inline-value renderer's markdown toggles, leaving
// every other field — color, highlight, shading, font — untouched so
// formatting-preservation holds for all non-markdown-controlled fields.
func (p *RunProperties) WithMarkdownOverlay(bold, italic, strike bool) *RunProperties {
	cp := p.Clone()
	if cp == nil {
		cp = &RunProperties{}
	}
	if bold {
		cp.Bold = !cp.Bold
	}
	if italic {
		cp.Italic = !cp.Italic
	}
	if strike {
		cp.Strike = !cp.Strike
	}
	return cp
}

func (p *RunProperties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	for {
		t, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		tt, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		switch tt.Name.Local {
		case "rFonts":
			f := &RunFonts{
				ASCII:    attrVal(tt.Attr, "ascii"),
				EastAsia: attrVal(tt.Attr, "eastAsia"),
				HAnsi:    attrVal(tt.Attr, "hAnsi"),
			}
			p.Fonts = f
			if err := d.Skip(); err != nil {
				return err
			}
		case "b":
			p.Bold = attrVal(tt.Attr, "val") != "false" && attrVal(tt.Attr, "val") != "0"
			if err := d.Skip(); err != nil {
				return err
			}
		case "i":
			p.Italic = attrVal(tt.Attr, "val") != "false" && attrVal(tt.Attr, "val") != "0"
			if err := d.Skip(); err != nil {
				return err
			}
		case "strike":
			p.Strike = attrVal(tt.Attr, "val") != "false" && attrVal(tt.Attr, "val") != "0"
			if err := d.Skip(); err != nil {
				return err
			}
		case "u":
			p.Underline = attrVal(tt.Attr, "val")
			if err := d.Skip(); err != nil {
				return err
			}
		case "vertAlign":
			p.VertAlign = attrVal(tt.Attr, "val")
			if err := d.Skip(); err != nil {
				return err
			}
		case "color":
			p.Color = attrVal(tt.Attr, "val")
			if err := d.Skip(); err != nil {
				return err
			}
		case "highlight":
			p.Highlight = attrVal(tt.Attr, "val")
			if err := d.Skip(); err != nil {
				return err
			}
		case "shd":
			p.Shade = attrVal(tt.Attr, "fill")
			if err := d.Skip(); err != nil {
				return err
			}
		case "sz":
			p.Size = attrVal(tt.Attr, "val")
			if err := d.Skip(); err != nil {
				return err
			}
		case "rStyle":
			p.Style = attrVal(tt.Attr, "val")
			if err := d.Skip(); err != nil {
				return err
			}
		default:
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *RunProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:rPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if p.Fonts != nil {
		if err := encodeValAttr(e, "w:rFonts", []xml.Attr{
			{Name: xml.Name{Local: "w:ascii"}, Value: p.Fonts.ASCII},
			{Name: xml.Name{Local: "w:eastAsia"}, Value: p.Fonts.EastAsia},
			{Name: xml.Name{Local: "w:hAnsi"}, Value: p.Fonts.HAnsi},
		}); err != nil {
			return err
		}
	}
	if p.Bold {
		if err := encodeEmpty(e, "w:b"); err != nil {
			return err
		}
	}
	if p.Italic {
		if err := encodeEmpty(e, "w:i"); err != nil {
			return err
		}
	}
	if p.Strike {
		if err := encodeEmpty(e, "w:strike"); err != nil {
			return err
		}
	}
	if p.Underline != "" {
		if err := encodeValAttr(e, "w:u", []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: p.Underline}}); err != nil {
			return err
		}
	}
	if p.VertAlign != "" {
		if err := encodeValAttr(e, "w:vertAlign", []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: p.VertAlign}}); err != nil {
			return err
		}
	}
	if p.Color != "" {
		if err := encodeValAttr(e, "w:color", []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: p.Color}}); err != nil {
			return err
		}
	}
	if p.Highlight != "" {
		if err := encodeValAttr(e, "w:highlight", []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: p.Highlight}}); err != nil {
			return err
		}
	}
	if p.Shade != "" {
		if err := encodeValAttr(e, "w:shd", []xml.Attr{{Name: xml.Name{Local: "w:fill"}, Value: p.Shade}}); err != nil {
			return err
		}
	}
	if p.Size != "" {
		if err := encodeValAttr(e, "w:sz", []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: p.Size}}); err != nil {
			return err
		}
	}
	if p.Style != "" {
		if err := encodeValAttr(e, "w:rStyle", []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: p.Style}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func attrVal(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func encodeEmpty(e *xml.Encoder, name string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeValAttr(e *xml.Encoder, name string, attrs []xml.Attr) error {
	var kept []xml.Attr
	for _, a := range attrs {
		if a.Value != "" {
			kept = append(kept, a)
		}
	}
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: kept}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// ParagraphProperties preserves the entire <w:pPr> block (style, alignment,
// spacing, numbering reference) as opaque, immutable, shared raw XML. This
// is what keeps numbered-list structural IDs intact across clone —
// numbering references are exactly the *shared* IDs that must NOT be
// remapped.
type ParagraphProperties struct {
	RawXML string
}

func (pp *ParagraphProperties) Clone() *ParagraphProperties {
	if pp == nil {
		return nil
	}
	cp := *pp
	return &cp
}

func captureInnerXML(d *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	if err := xmlEncodeChildren(d, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// xmlEncodeChildren copies tokens until the matching end element is
// consumed, writing their raw re-encoded form to b. Used to preserve
// paragraph/table/row/cell property blocks verbatim without modelling
// every possible OOXML property.
func xmlEncodeChildren(d *xml.Decoder, b *strings.Builder) error {
	enc := xml.NewEncoder(b)
	depth := 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch tt := tok.(type) {
		case xml.EndElement:
			if depth == 0 {
				return enc.Flush()
			}
			depth--
			if err := enc.EncodeToken(tt); err != nil {
				return err
			}
		case xml.StartElement:
			depth++
			if err := enc.EncodeToken(tt); err != nil {
				return err
			}
		default:
			if err := enc.EncodeToken(tok); err != nil {
				return err
			}
		}
	}
}
