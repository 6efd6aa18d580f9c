package ooxml

import (
	"bytes"
	"testing"
)

func buildAndOpen(t *testing.T, doc *Document) *Package {
	t.Helper()
	pkg := NewMinimalPackage(doc)
	var buf bytes.Buffer
	if err := pkg.Save(&buf, false, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return reopened
}

func TestPackageRoundTripPreservesText(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: []Block{
		&Paragraph{Content: []ParaElement{&Run{Text: "hello world"}}},
	}}}
	reopened := buildAndOpen(t, doc)
	p := reopened.Document.Body.Blocks[0].(*Paragraph)
	if p.PlainText() != "hello world" {
		t.Errorf("got %q, want %q", p.PlainText(), "hello world")
	}
}

func TestPackageRoundTripPreservesOtherParts(t *testing.T) {
	doc := &Document{Body: &Body{Blocks: nil}}
	pkg := NewMinimalPackage(doc)
	var buf bytes.Buffer
	if err := pkg.Save(&buf, false, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := reopened.parts["docProps/app.xml"]; !ok {
		t.Errorf("expected docProps/app.xml to survive the round trip untouched")
	}
}

func TestPackageSetCorePropertiesOverridesTitle(t *testing.T) {
	doc := &Document{Body: &Body{}}
	pkg := NewMinimalPackage(doc)
	pkg.SetCoreProperties(map[string]string{"title": "My Report"})
	v, ok := pkg.CorePropertyValue("title")
	if !ok || v != "My Report" {
		t.Errorf("title = %q, ok=%v, want %q", v, ok, "My Report")
	}
}

func TestPackageSetCorePropertiesEscapesAmpersand(t *testing.T) {
	doc := &Document{Body: &Body{}}
	pkg := NewMinimalPackage(doc)
	pkg.SetCoreProperties(map[string]string{"creator": "Smith & Co"})
	v, ok := pkg.CorePropertyValue("creator")
	if !ok || v != "Smith &amp; Co" {
		t.Errorf("creator = %q, ok=%v, want the XML-escaped form", v, ok)
	}
}

func TestPackageSaveAutoUpdateFieldsOnlyWhenFieldCodesPresent(t *testing.T) {
	doc := &Document{Body: &Body{}}
	pkg := NewMinimalPackage(doc)
	var buf bytes.Buffer
	if err := pkg.Save(&buf, true, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if updateFieldsPattern.Match(pkg.parts[settingsPart]) {
		t.Errorf("expected no updateFields flag when autoUpdateFields=true but no field codes present")
	}
}

func TestPackageSaveForceUpdateFieldsAlwaysSetsFlag(t *testing.T) {
	doc := &Document{Body: &Body{}}
	pkg := NewMinimalPackage(doc)
	var buf bytes.Buffer
	if err := pkg.Save(&buf, false, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !updateFieldsPattern.Match(pkg.parts[settingsPart]) {
		t.Errorf("expected the updateFields flag to be forced on regardless of field-code detection")
	}
}
