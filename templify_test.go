package templify

import (
	"bytes"
	"testing"

	"github.com/TriasDev/templify/internal/ooxml"
)

func buildFixtureDocx(t *testing.T, blocks []ooxml.Block) []byte {
	t.Helper()
	doc := &ooxml.Document{Body: &ooxml.Body{Blocks: blocks}}
	pkg := ooxml.NewMinimalPackage(doc)
	var buf bytes.Buffer
	if err := pkg.Save(&buf, false, false); err != nil {
		t.Fatalf("Save fixture: %v", err)
	}
	return buf.Bytes()
}

func TestProcessSubstitutesPlaceholderAndCountsReplacements(t *testing.T) {
	docx := buildFixtureDocx(t, []ooxml.Block{para("Dear {{name}}, welcome.")})
	data := mapOf("name", NewString("Ann"))

	res, err := Process(bytes.NewReader(docx), int64(len(docx)), data, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.IsSuccess {
		t.Fatalf("expected success, got error: %s", res.ErrorMsg)
	}
	if res.ReplacementCount != 1 {
		t.Errorf("ReplacementCount = %d, want 1", res.ReplacementCount)
	}
	if len(res.Document) == 0 {
		t.Errorf("expected non-empty output document")
	}
}

func TestProcessMissingVariableIsReported(t *testing.T) {
	docx := buildFixtureDocx(t, []ooxml.Block{para("Dear {{name}}.")})

	res, err := Process(bytes.NewReader(docx), int64(len(docx)), Null, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.IsSuccess {
		t.Fatalf("expected success, got error: %s", res.ErrorMsg)
	}
	if len(res.MissingVariables) != 1 || res.MissingVariables[0] != "name" {
		t.Errorf("MissingVariables = %v, want [name]", res.MissingVariables)
	}
	if res.ReplacementCount != 0 {
		t.Errorf("ReplacementCount = %d, want 0 (placeholder text left unchanged)", res.ReplacementCount)
	}
}

func TestProcessStructuralErrorSurfacesAsFailureNotGoError(t *testing.T) {
	docx := buildFixtureDocx(t, []ooxml.Block{marker("{{/if}}")})

	res, err := Process(bytes.NewReader(docx), int64(len(docx)), Null, nil)
	if err != nil {
		t.Fatalf("Process should not return a Go error for a structural template error, got: %v", err)
	}
	if res.IsSuccess {
		t.Errorf("expected IsSuccess=false for an unmatched {{/if}}")
	}
	if res.ErrorMsg == "" {
		t.Errorf("expected a non-empty ErrorMsg")
	}
}

func TestProcessGetWarningReportBytes(t *testing.T) {
	docx := buildFixtureDocx(t, []ooxml.Block{para("Dear {{name}}.")})

	res, err := Process(bytes.NewReader(docx), int64(len(docx)), Null, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	report, err := res.GetWarningReportBytes()
	if err != nil {
		t.Fatalf("GetWarningReportBytes: %v", err)
	}
	if len(report) == 0 {
		t.Errorf("expected a non-empty warning report when warnings are present")
	}
}

func TestProcessGetWarningReportBytesNilWhenNoWarnings(t *testing.T) {
	docx := buildFixtureDocx(t, []ooxml.Block{para("Dear {{name}}.")})

	res, err := Process(bytes.NewReader(docx), int64(len(docx)), mapOf("name", NewString("Ann")), nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	report, err := res.GetWarningReportBytes()
	if err != nil {
		t.Fatalf("GetWarningReportBytes: %v", err)
	}
	if report != nil {
		t.Errorf("expected a nil report when there are no warnings")
	}
}

func TestValidateReportsMissingVariables(t *testing.T) {
	docx := buildFixtureDocx(t, []ooxml.Block{para("Dear {{name}}.")})

	res, err := Validate(bytes.NewReader(docx), int64(len(docx)), mapOf("other", NewString("x")))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.IsValid {
		t.Fatalf("expected a structurally valid document, errors: %v", res.Errors)
	}
	if len(res.MissingVariables) != 1 || res.MissingVariables[0] != "name" {
		t.Errorf("MissingVariables = %v, want [name]", res.MissingVariables)
	}
}
