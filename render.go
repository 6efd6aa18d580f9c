package templify

import (
	"sort"
	"strings"

	"github.com/TriasDev/templify/internal/ooxml"
)

// RenderInlineValue runs the inline-value renderer's phases over a
// resolved placeholder's display text, producing the run sequence that
// replaces the placeholder span. hostProps is the preserved
// run-properties of the placeholder's first run (the "first run wins"
// rule); markdown toggles overlay on top of it.
//
// Grounded on go-stencil's RenderTextWithContext token-replace loop,
// generalized to emit []ooxml.Run instead of appending to one string
// builder.
func RenderInlineValue(raw string, hostProps *ooxml.RunProperties, opts *Options) []*ooxml.Run {
	text := applyTextReplacements(raw, opts)
	text = normalizeNewlines(text, opts)
	return applyMarkdown(text, hostProps)
}

// applyTextReplacements is renderer phase 1: configured literal
// substitutions (HTML entity decoding, "<br>" -> newline sentinel, ...),
// applied in a deterministic (sorted-key) order since Options carries
// them as an unordered map.
func applyTextReplacements(s string, opts *Options) string {
	if opts == nil || len(opts.TextReplacements) == 0 {
		return s
	}
	keys := make([]string, 0, len(opts.TextReplacements))
	for k := range opts.TextReplacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s = strings.ReplaceAll(s, k, opts.TextReplacements[k])
	}
	return s
}

// normalizeNewlines is renderer phase 2: collapse CRLF/CR/LF into the
// shared break sentinel used for both rendered values and source-document
// breaks (ooxml.LineBreak), unless disabled.
func normalizeNewlines(s string, opts *Options) string {
	if opts != nil && !opts.EnableNewlineSupport {
		return s
	}
	sentinel := string(ooxml.LineBreak)
	s = strings.ReplaceAll(s, "\r\n", sentinel)
	s = strings.ReplaceAll(s, "\r", sentinel)
	s = strings.ReplaceAll(s, "\n", sentinel)
	return s
}

// mdOccurrence is one recognized markdown emphasis marker in the scanned
// text (renderer phase 3).
type mdOccurrence struct {
	kind   byte // 'B' bold, 'I' italic, 'S' strike, 'X' bold+italic
	start  int  // rune index
	length int  // rune length of the marker token
}

var markdownMarkers = []struct {
	tok  []rune
	kind byte
}{
	{[]rune("***"), 'X'},
	{[]rune("**"), 'B'},
	{[]rune("__"), 'B'},
	{[]rune("~~"), 'S'},
	{[]rune("*"), 'I'},
	{[]rune("_"), 'I'},
}

// scanMarkdownOccurrences finds every marker token left to right,
// non-overlapping, preferring the longest marker at each position
// (so "***" is recognized before "**").
func scanMarkdownOccurrences(runes []rune) []mdOccurrence {
	var occs []mdOccurrence
	i := 0
	for i < len(runes) {
		matched := false
		for _, m := range markdownMarkers {
			end := i + len(m.tok)
			if end <= len(runes) && runesEqual(runes[i:end], m.tok) {
				occs = append(occs, mdOccurrence{kind: m.kind, start: i, length: len(m.tok)})
				i = end
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return occs
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolveMarkdownPairs pairs up occurrences of each marker kind in the
// order found (1st+2nd close, 3rd+4th close, ...); an odd-count leftover
// occurrence is unresolved, meaning its marker characters render
// literally as unclosed markers.
func resolveMarkdownPairs(occs []mdOccurrence) []bool {
	resolved := make([]bool, len(occs))
	byKind := make(map[byte][]int)
	for idx, o := range occs {
		byKind[o.kind] = append(byKind[o.kind], idx)
	}
	for _, idxs := range byKind {
		paired := len(idxs) - len(idxs)%2
		for k := 0; k < paired; k++ {
			resolved[idxs[k]] = true
		}
	}
	return resolved
}

// applyMarkdown is renderer phases 3-4: recognize emphasis toggles, then
// emit one run per contiguous segment sharing a computed property set
// (toggles overlay onto hostProps; unresolved markers are kept as plain
// text rather than consumed).
func applyMarkdown(text string, hostProps *ooxml.RunProperties) []*ooxml.Run {
	runes := []rune(text)
	occs := scanMarkdownOccurrences(runes)
	resolved := resolveMarkdownPairs(occs)

	var out []*ooxml.Run
	var buf strings.Builder
	bold, italic, strike := false, false, false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		out = append(out, &ooxml.Run{Properties: hostProps.WithMarkdownOverlay(bold, italic, strike), Text: buf.String()})
		buf.Reset()
	}

	pos, oi := 0, 0
	for pos < len(runes) {
		if oi < len(occs) && occs[oi].start == pos {
			occ := occs[oi]
			if resolved[oi] {
				flush()
				switch occ.kind {
				case 'B':
					bold = !bold
				case 'I':
					italic = !italic
				case 'S':
					strike = !strike
				case 'X':
					bold = !bold
					italic = !italic
				}
			} else {
				buf.WriteString(string(runes[occ.start : occ.start+occ.length]))
			}
			pos += occ.length
			oi++
			continue
		}
		buf.WriteRune(runes[pos])
		pos++
	}
	flush()
	return mergeAdjacentRuns(out)
}

// mergeAdjacentRuns combines consecutive runs that ended up with equal
// property sets (e.g. a marker pair immediately followed by another with
// no content between them), so segment emission doesn't fragment output
// runs beyond what the property changes actually require.
func mergeAdjacentRuns(runs []*ooxml.Run) []*ooxml.Run {
	if len(runs) == 0 {
		return runs
	}
	out := []*ooxml.Run{runs[0]}
	for _, r := range runs[1:] {
		last := out[len(out)-1]
		if last.Properties.Equal(r.Properties) {
			last.Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}
