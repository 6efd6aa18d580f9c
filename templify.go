// A Word-document template-filling engine: fill a .docx template's
// placeholders, conditionals and loops from a data context and get back a
// rendered .docx.
//
// A tiny example:
//
//	in, _ := os.Open("template.docx")
//	defer in.Close()
//	info, _ := in.Stat()
//	data, _ := templify.DecodeJSONContext([]byte(`{"name": "Florian"}`))
//	result, err := templify.Process(in, info.Size(), data, nil)
//	if err != nil {
//	    panic(err)
//	}
//	os.WriteFile("out.docx", result.Document, 0o644)
package templify

import (
	"bytes"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/TriasDev/templify/internal/ooxml"
)

// ProcessingResult is process()'s result surface: the
// rendered package bytes plus the bookkeeping a caller needs without
// re-walking the document itself.
type ProcessingResult struct {
	IsSuccess        bool
	ErrorMsg         string
	Document         []byte
	ReplacementCount int

	MissingVariables []string
	Warnings         []Warning
}

// GetWarningReportBytes renders r's warnings as a standalone .docx report,
// or nil if there is nothing to report.
func (r *ProcessingResult) GetWarningReportBytes() ([]byte, error) {
	if len(r.Warnings) == 0 {
		return nil, nil
	}
	return RenderWarningReport(r.Warnings)
}

// Process fills templateBytes (a .docx template, read through r/size)
// against data and returns the rendered package plus its warning/missing-
// variable bookkeeping. A structural error (unmatched marker, invalid
// iteration variable, or a missing value under MissingFail) is reported
// through IsSuccess/ErrorMsg rather than as a Go error — the failure is
// part of the result, not a panic or an I/O-level error.
func Process(r io.ReaderAt, size int64, data *Value, opts *Options) (*ProcessingResult, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	debugf("templify.Process", "opening package", zap.Int64("size", size))

	pkg, err := ooxml.Open(r, size)
	if err != nil {
		return nil, err
	}

	before := countPlaceholderRuns(pkg.Document)
	warn, terr := TransformDocument(pkg.Document, data, opts)
	if terr != nil {
		debugf("templify.Process", "transform failed", zap.Error(terr))
		return &ProcessingResult{IsSuccess: false, ErrorMsg: terr.Error(), Warnings: warn.Warnings}, nil
	}
	after := countPlaceholderRuns(pkg.Document)

	if len(opts.DocumentProperties) > 0 {
		pkg.SetCoreProperties(opts.DocumentProperties)
	}

	var buf bytes.Buffer
	autoUpdate := opts.UpdateFieldsOnOpen == UpdateFieldsAuto
	forceUpdate := opts.UpdateFieldsOnOpen == UpdateFieldsAlways
	if err := pkg.Save(&buf, autoUpdate, forceUpdate); err != nil {
		return nil, err
	}

	return &ProcessingResult{
		IsSuccess:        true,
		Document:         buf.Bytes(),
		ReplacementCount: before - after,
		MissingVariables: dedupMissingNames(warn.Warnings),
		Warnings:         warn.Warnings,
	}, nil
}

// Validate parses templateBytes and reports its structural health and
// (when data is non-nil) its data-binding coverage, without producing a
// rendered document.
func Validate(r io.ReaderAt, size int64, data *Value) (*ValidationResult, error) {
	pkg, err := ooxml.Open(r, size)
	if err != nil {
		return nil, err
	}
	return ValidateDocument(pkg.Document, data), nil
}

// countPlaceholderRuns is a coarse proxy for ProcessingResult's
// replacement_count: every run still carrying a "{{" after transform is a
// placeholder that survived (missing-variable-leave-unchanged, or a
// literal brace), so the run count delta before/after transform
// approximates how many placeholder runs were resolved and replaced.
func countPlaceholderRuns(doc *ooxml.Document) int {
	n := 0
	var walkBlocks func([]ooxml.Block)
	var walkPara func(*ooxml.Paragraph)
	walkPara = func(p *ooxml.Paragraph) {
		for _, r := range p.Runs() {
			if strings.Contains(r.Text, "{{") {
				n++
			}
		}
	}
	walkBlocks = func(blocks []ooxml.Block) {
		for _, b := range blocks {
			switch t := b.(type) {
			case *ooxml.Paragraph:
				walkPara(t)
			case *ooxml.Table:
				for _, row := range t.Rows {
					for _, cell := range row.Cells {
						walkBlocks(cell.Blocks)
					}
				}
			}
		}
	}
	walkBlocks(doc.Body.Blocks)
	return n
}

func dedupMissingNames(warnings []Warning) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range warnings {
		if w.Kind != WarnMissingVariable || seen[w.Name] {
			continue
		}
		seen[w.Name] = true
		out = append(out, w.Name)
	}
	return out
}
