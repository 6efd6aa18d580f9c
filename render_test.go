package templify

import (
	"strings"
	"testing"

	"github.com/TriasDev/templify/internal/ooxml"
)

func joinRunText(runs []*ooxml.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func TestRenderInlineValuePlainText(t *testing.T) {
	runs := RenderInlineValue("hello world", &ooxml.RunProperties{}, DefaultOptions())
	if got := joinRunText(runs); got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
}

func TestRenderInlineValueBoldMarkdown(t *testing.T) {
	runs := RenderInlineValue("a **bold** word", &ooxml.RunProperties{}, DefaultOptions())
	if got := joinRunText(runs); got != "a bold word" {
		t.Errorf("got %q, want %q", got, "a bold word")
	}
	var foundBold bool
	for _, r := range runs {
		if r.Text == "bold" && r.Properties != nil && r.Properties.Bold {
			foundBold = true
		}
	}
	if !foundBold {
		t.Errorf("expected a run for \"bold\" with Bold set")
	}
}

func TestRenderInlineValueUnclosedMarkerIsLiteral(t *testing.T) {
	runs := RenderInlineValue("price: **10", &ooxml.RunProperties{}, DefaultOptions())
	if got := joinRunText(runs); got != "price: **10" {
		t.Errorf("got %q, want literal markers preserved, got %q", got, got)
	}
}

func TestRenderInlineValueNewlineNormalization(t *testing.T) {
	runs := RenderInlineValue("line1\nline2", &ooxml.RunProperties{}, DefaultOptions())
	got := joinRunText(runs)
	if !strings.Contains(got, string(ooxml.LineBreak)) {
		t.Errorf("expected the newline to be normalized to the line-break sentinel, got %q", got)
	}
}

func TestRenderInlineValueNewlineSupportDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableNewlineSupport = false
	runs := RenderInlineValue("line1\nline2", &ooxml.RunProperties{}, opts)
	if got := joinRunText(runs); got != "line1\nline2" {
		t.Errorf("got %q, want the raw newline preserved", got)
	}
}

func TestRenderInlineValueTextReplacements(t *testing.T) {
	opts := DefaultOptions()
	opts.TextReplacements = map[string]string{"&amp;": "&"}
	runs := RenderInlineValue("tom &amp; jerry", &ooxml.RunProperties{}, opts)
	if got := joinRunText(runs); got != "tom & jerry" {
		t.Errorf("got %q, want %q", got, "tom & jerry")
	}
}

func TestRenderInlineValueItalicAndStrikeCombine(t *testing.T) {
	runs := RenderInlineValue("*i* and ~~s~~", &ooxml.RunProperties{}, DefaultOptions())
	var sawItalic, sawStrike bool
	for _, r := range runs {
		if r.Text == "i" && r.Properties != nil && r.Properties.Italic {
			sawItalic = true
		}
		if r.Text == "s" && r.Properties != nil && r.Properties.Strike {
			sawStrike = true
		}
	}
	if !sawItalic {
		t.Errorf("expected an italic run for \"i\"")
	}
	if !sawStrike {
		t.Errorf("expected a strike run for \"s\"")
	}
}
