package templify

import (
	"strings"
	"unicode"

	"github.com/TriasDev/templify/internal/ooxml"
)

// TokenKind classifies a matched {{ … }} span by its keyword.
type TokenKind int

const (
	TokenPlaceholder TokenKind = iota
	TokenIfOpen
	TokenElseIf
	TokenElse
	TokenIfClose
	TokenForeachOpen
	TokenForeachClose
)

// Token is one recognized {{ … }} span within a single paragraph's run
// sequence. Offsets are rune offsets within the named run's text, not
// byte offsets. EndRun/EndOff point one past the closing "}}".
type Token struct {
	Kind       TokenKind
	StartRun   int
	StartOff   int
	EndRun     int
	EndOff     int
	Inner      string
	Properties *ooxml.RunProperties
}

// runPos names one position in the virtual character stream: which run it
// came from and the rune offset within that run's text.
type runPos struct {
	run, off int
}

// virtualStream is the concatenation of a paragraph's run texts plus an
// index map back to (run, offset): a flat rune slice built once per
// paragraph, with a parallel slice of the same length giving each rune's
// origin. chars[i] originates at positions[i]; positions has no entry past
// the last rune, so posAfter synthesizes the position one past the end of
// the last run, which is what lets EndOff point cleanly past a final "}}".
type virtualStream struct {
	chars     []rune
	positions []runPos
}

func newVirtualStream(runs []*ooxml.Run) *virtualStream {
	vs := &virtualStream{}
	for ri, r := range runs {
		for off, ch := range []rune(r.Text) {
			vs.chars = append(vs.chars, ch)
			vs.positions = append(vs.positions, runPos{run: ri, off: off})
		}
	}
	return vs
}

// posAfter returns the (run, offset) just past the rune at stream index
// i-1 — i.e. where a zero-width cursor sits after consuming i runes.
func (vs *virtualStream) posAfter(i int, runs []*ooxml.Run) runPos {
	if i < len(vs.positions) {
		return vs.positions[i]
	}
	if len(runs) == 0 {
		return runPos{}
	}
	last := len(runs) - 1
	return runPos{run: last, off: len([]rune(runs[last].Text))}
}

func runPropertiesAt(runs []*ooxml.Run, idx int) *ooxml.RunProperties {
	if idx < 0 || idx >= len(runs) {
		return nil
	}
	return runs[idx].Properties
}

// Tokenize scans a paragraph's run sequence for {{ … }} spans. A `{{`
// with no matching `}}` before the paragraph ends is a
// structural error; a stray `}}` with no preceding `{{` is left as
// literal text, never reported.
func Tokenize(runs []*ooxml.Run) ([]Token, error) {
	vs := newVirtualStream(runs)
	n := len(vs.chars)

	var toks []Token
	i := 0
	for i < n {
		if vs.chars[i] == '{' && i+1 < n && vs.chars[i+1] == '{' {
			startPos := vs.positions[i]
			startProps := runPropertiesAt(runs, startPos.run)

			j := i + 2
			closeAt := -1
			for j+1 < n {
				if vs.chars[j] == '}' && vs.chars[j+1] == '}' {
					closeAt = j
					break
				}
				j++
			}
			if closeAt < 0 {
				return nil, newStructuralError(ErrUnmatchedConditionalStart, "token-recognizer",
					"{{ with no matching }}", "unterminated {{ token in paragraph")
			}

			inner := string(vs.chars[i+2 : closeAt])
			endPos := vs.posAfter(closeAt+2, runs)

			tok := classifyToken(inner)
			tok.StartRun, tok.StartOff = startPos.run, startPos.off
			tok.EndRun, tok.EndOff = endPos.run, endPos.off
			tok.Properties = startProps
			toks = append(toks, tok)

			i = closeAt + 2
			continue
		}
		i++
	}
	return toks, nil
}

// classifyToken determines the token kind from raw inner text against the
// block-keyword grammar. Keyword matching is case-insensitive; everything
// else is a placeholder expression.
func classifyToken(raw string) Token {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch {
	case hasKeywordPrefix(lower, "#if"):
		return Token{Kind: TokenIfOpen, Inner: strings.TrimSpace(trimmed[len("#if"):])}
	case hasKeywordPrefix(lower, "#elseif"):
		return Token{Kind: TokenElseIf, Inner: strings.TrimSpace(trimmed[len("#elseif"):])}
	case lower == "#else":
		return Token{Kind: TokenElse, Inner: ""}
	case lower == "else":
		return Token{Kind: TokenElse, Inner: ""}
	case lower == "/if":
		return Token{Kind: TokenIfClose, Inner: ""}
	case hasKeywordPrefix(lower, "#foreach"):
		return Token{Kind: TokenForeachOpen, Inner: strings.TrimSpace(trimmed[len("#foreach"):])}
	case lower == "/foreach":
		return Token{Kind: TokenForeachClose, Inner: ""}
	default:
		return Token{Kind: TokenPlaceholder, Inner: raw}
	}
}

// hasKeywordPrefix reports whether lower starts with kw followed by
// either end-of-string or whitespace, so a lookalike identifier never
// misclassifies as a block keyword.
func hasKeywordPrefix(lower, kw string) bool {
	if !strings.HasPrefix(lower, kw) {
		return false
	}
	if len(lower) == len(kw) {
		return true
	}
	return unicode.IsSpace(rune(lower[len(kw)]))
}
