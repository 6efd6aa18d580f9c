package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Package is an opened .docx ZIP container: the decoded Document plus
// every other part carried byte-for-byte so unmodified parts (styles,
// numbering, media, headers/footers, relationships) round-trip untouched.
//
// Grounded on go-stencil's package-level Document/Body shape for the
// decoded half; the raw-parts passthrough ensures every part of the
// package not touched by templating is preserved byte-for-byte.
type Package struct {
	Document *Document
	parts    map[string][]byte
	docPath  string
}

const (
	documentPart = "word/document.xml"
	settingsPart = "word/settings.xml"
)

// NewMinimalPackage builds a from-scratch .docx Package around doc,
// carrying the smallest set of boilerplate parts Word requires to open a
// container it did not author itself: ".rels"/content-types plumbing
// and minimal core/app document properties. Used by the warning-report
// renderer, which has no source template to preserve parts from.
func NewMinimalPackage(doc *Document) *Package {
	return &Package{
		Document: doc,
		docPath:  documentPart,
		parts: map[string][]byte{
			"[Content_Types].xml": []byte(minimalContentTypes),
			"_rels/.rels":         []byte(minimalRootRels),
			"word/_rels/document.xml.rels": []byte(minimalDocumentRels),
			"docProps/core.xml":   []byte(minimalCoreProps),
			"docProps/app.xml":    []byte(minimalAppProps),
			settingsPart:          []byte(minimalSettings),
		},
	}
}

const minimalContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/settings.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const minimalRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const minimalDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings" Target="settings.xml"/>` +
	`</Relationships>`

const minimalCoreProps = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/">` +
	`<dc:title>templify warning report</dc:title>` +
	`<dc:creator>templify</dc:creator>` +
	`</cp:coreProperties>`

const minimalAppProps = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
	`<Application>templify</Application>` +
	`</Properties>`

const minimalSettings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`

// Open reads a .docx container from r, decoding word/document.xml into a
// typed Document while retaining every other part's raw bytes.
func Open(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("ooxml: open package: %w", err)
	}
	pkg := &Package{parts: make(map[string][]byte), docPath: documentPart}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("ooxml: open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("ooxml: read part %s: %w", f.Name, err)
		}
		pkg.parts[f.Name] = data
	}
	docBytes, ok := pkg.parts[pkg.docPath]
	if !ok {
		return nil, fmt.Errorf("ooxml: package missing %s", pkg.docPath)
	}
	doc, err := unmarshalDocumentXML(bytes.NewReader(docBytes))
	if err != nil {
		return nil, fmt.Errorf("ooxml: parse %s: %w", pkg.docPath, err)
	}
	pkg.Document = doc
	return pkg, nil
}

// Save re-encodes the (possibly transformed) Document back into
// word/document.xml and writes every part — modified or not — to w as a
// fresh ZIP container. forceUpdateFields always rewrites word/settings.xml
// with <w:updateFields w:val="true"/> (the `update_fields_on_open=always`
// behavior); otherwise the flag is set only when word/document.xml as
// opened carries field codes (<w:fldChar>/<w:instrText>), the `=auto`
// behavior. Passing
// forceUpdateFields=false with a document that has no field codes and
// autoUpdateFields=false is how `=never` is expressed by the caller.
func (pkg *Package) Save(w io.Writer, autoUpdateFields, forceUpdateFields bool) error {
	docBytes, err := marshalDocumentXML(pkg.Document)
	if err != nil {
		return fmt.Errorf("ooxml: encode %s: %w", pkg.docPath, err)
	}
	fieldCodes := documentHasFieldCodes(pkg.parts[pkg.docPath])
	pkg.parts[pkg.docPath] = docBytes

	if forceUpdateFields || (autoUpdateFields && fieldCodes) {
		if settings, ok := pkg.parts[settingsPart]; ok {
			pkg.parts[settingsPart] = ensureUpdateFieldsFlag(settings)
		}
	}

	zw := zip.NewWriter(w)
	for name, data := range pkg.parts {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("ooxml: create part %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("ooxml: write part %s: %w", name, err)
		}
	}
	return zw.Close()
}

// CorePropertyValue returns a docProps/core.xml element's text content by
// local name (e.g. "title", "creator").
func (pkg *Package) CorePropertyValue(localName string) (string, bool) {
	data, ok := pkg.parts["docProps/core.xml"]
	if !ok {
		return "", false
	}
	pattern := regexp.MustCompile(`<[^:>]*:?` + regexp.QuoteMeta(localName) + `[^>]*>([^<]*)</[^:>]*:?` + regexp.QuoteMeta(localName) + `>`)
	m := pattern.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// SetCoreProperties overwrites docProps/core.xml element text content by
// local name (e.g. "title", "creator"), treating the part as opaque text
// with the same regexp-substitution approach ensureUpdateFieldsFlag
// already uses for settings.xml rather than adding a second XML decode
// path just for a handful of metadata fields.
func (pkg *Package) SetCoreProperties(overrides map[string]string) {
	if len(overrides) == 0 {
		return
	}
	data, ok := pkg.parts["docProps/core.xml"]
	if !ok {
		return
	}
	s := string(data)
	for name, value := range overrides {
		pattern := regexp.MustCompile(`(<[^:>]*:?` + regexp.QuoteMeta(name) + `[^>]*>)([^<]*)(</[^:>]*:?` + regexp.QuoteMeta(name) + `>)`)
		escaped := xmlEscapeAttr(value)
		s = pattern.ReplaceAllStringFunc(s, func(match string) string {
			sub := pattern.FindStringSubmatch(match)
			return sub[1] + escaped + sub[3]
		})
	}
	pkg.parts["docProps/core.xml"] = []byte(s)
}

var fieldCodePattern = regexp.MustCompile(`<w:fldChar\b|<w:instrText\b`)

func documentHasFieldCodes(docBytes []byte) bool {
	return fieldCodePattern.Match(docBytes)
}

var updateFieldsPattern = regexp.MustCompile(`<w:updateFields\b[^/]*/>`)

var settingsTagPattern = regexp.MustCompile(`<w:settings\b[^>]*>`)

// ensureUpdateFieldsFlag rewrites or inserts <w:updateFields w:val="true"/>
// inside <w:settings>, treating settings.xml as opaque text since templify
// never otherwise parses it. The flag is inserted immediately after the
// <w:settings> start tag (or, for the self-closing <w:settings .../> form,
// the tag is opened up into a start/end pair around it) — never at the
// <?xml ... ?> declaration boundary, which would splice a second top-level
// element in front of <w:settings> and produce a malformed document.
func ensureUpdateFieldsFlag(settings []byte) []byte {
	s := string(settings)
	if updateFieldsPattern.MatchString(s) {
		return []byte(updateFieldsPattern.ReplaceAllString(s, `<w:updateFields w:val="true"/>`))
	}
	loc := settingsTagPattern.FindStringIndex(s)
	if loc == nil {
		return settings
	}
	tag := s[loc[0]:loc[1]]
	if strings.HasSuffix(tag, "/>") {
		opened := tag[:len(tag)-2] + ">"
		return []byte(s[:loc[0]] + opened + `<w:updateFields w:val="true"/>` + "</w:settings>" + s[loc[1]:])
	}
	return []byte(s[:loc[1]] + `<w:updateFields w:val="true"/>` + s[loc[1]:])
}
