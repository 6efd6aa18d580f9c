package templify

import (
	"testing"

	"github.com/TriasDev/templify/internal/ooxml"
)

func TestTokenizeRecognizesKinds(t *testing.T) {
	cases := []struct {
		name string
		text string
		want TokenKind
	}{
		{"placeholder", "{{name}}", TokenPlaceholder},
		{"if", "{{#if age > 18}}", TokenIfOpen},
		{"elseif", "{{#elseif age > 10}}", TokenElseIf},
		{"else", "{{#else}}", TokenElse},
		{"else bare", "{{else}}", TokenElse},
		{"if close", "{{/if}}", TokenIfClose},
		{"foreach", "{{#foreach items}}", TokenForeachOpen},
		{"foreach close", "{{/foreach}}", TokenForeachClose},
	}
	for _, c := range cases {
		toks, err := Tokenize([]*ooxml.Run{run(c.text)})
		if err != nil {
			t.Errorf("%s: Tokenize: %v", c.name, err)
			continue
		}
		if len(toks) != 1 {
			t.Errorf("%s: got %d tokens, want 1", c.name, len(toks))
			continue
		}
		if toks[0].Kind != c.want {
			t.Errorf("%s: kind = %v, want %v", c.name, toks[0].Kind, c.want)
		}
	}
}

func TestTokenizeSplitAcrossRuns(t *testing.T) {
	runs := []*ooxml.Run{run("prefix {{na"), run("me}} suffix")}
	toks, err := Tokenize(runs)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 {
		t.Fatalf("got %d tokens, want 1", len(toks))
	}
	tok := toks[0]
	if tok.Inner != "name" {
		t.Errorf("Inner = %q, want %q", tok.Inner, "name")
	}
	if tok.StartRun != 0 || tok.StartOff != 7 {
		t.Errorf("start = (%d,%d), want (0,7)", tok.StartRun, tok.StartOff)
	}
	if tok.EndRun != 1 || tok.EndOff != 4 {
		t.Errorf("end = (%d,%d), want (1,4)", tok.EndRun, tok.EndOff)
	}
}

func TestTokenizeUnmatchedOpenIsError(t *testing.T) {
	_, err := Tokenize([]*ooxml.Run{run("{{name")})
	if err == nil {
		t.Errorf("expected an error for an unterminated {{ token")
	}
}

func TestTokenizeStrayCloseIsLiteral(t *testing.T) {
	toks, err := Tokenize([]*ooxml.Run{run("a}}b")})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 0 {
		t.Errorf("got %d tokens, want 0 for a stray }}", len(toks))
	}
}

func TestTokenizeMultipleTokensInOneParagraph(t *testing.T) {
	toks, err := Tokenize([]*ooxml.Run{run("Hello {{name}}, you are {{age}} years old.")})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Inner != "name" || toks[1].Inner != "age" {
		t.Errorf("inner texts = %q, %q", toks[0].Inner, toks[1].Inner)
	}
}
