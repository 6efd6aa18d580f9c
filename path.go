package templify

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind distinguishes a named member access from an indexed one in a
// PropertyPath.
type SegmentKind int

const (
	SegName SegmentKind = iota
	SegIndex
)

// Segment is one step of a PropertyPath: either Name(s) or Index(k) where k
// is a literal integer or an identifier resolved at evaluation time (e.g.
// "@index").
type Segment struct {
	Kind SegmentKind

	Name string // valid when Kind == SegName

	IndexLiteral int    // valid when Kind == SegIndex && !IndexIsIdent
	IndexIdent   string // valid when Kind == SegIndex && IndexIsIdent
	IndexIsIdent bool
}

// Path is a parsed PropertyPath: a sequence of Segments, optionally rooted
// at "current item" (a leading '.').
type Path struct {
	Relative bool // true if the source began with '.'
	Segments []Segment
}

// ParsePath parses a dotted/bracketed path string such as "a.b[0].c" or
// "a[@index]". Dotted and bracketed forms are equivalent.
func ParsePath(s string) (*Path, error) {
	p := &Path{}
	i := 0
	n := len(s)
	if n == 0 {
		return nil, fmt.Errorf("empty path")
	}
	if s[0] == '.' {
		p.Relative = true
		i++
	}
	if i >= n {
		return p, nil
	}
	for i < n {
		switch s[i] {
		case '.':
			i++
			start := i
			for i < n && s[i] != '.' && s[i] != '[' {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("path %q has an empty segment", s)
			}
			p.Segments = append(p.Segments, Segment{Kind: SegName, Name: s[start:i]})
		case '[':
			i++
			start := i
			for i < n && s[i] != ']' {
				i++
			}
			if i >= n {
				return nil, fmt.Errorf("path %q has an unterminated index", s)
			}
			inner := strings.TrimSpace(s[start:i])
			i++ // consume ']'
			if inner == "" {
				return nil, fmt.Errorf("path %q has an empty index", s)
			}
			if lit, err := strconv.Atoi(inner); err == nil {
				p.Segments = append(p.Segments, Segment{Kind: SegIndex, IndexLiteral: lit})
			} else {
				p.Segments = append(p.Segments, Segment{Kind: SegIndex, IndexIdent: inner, IndexIsIdent: true})
			}
		default:
			start := i
			for i < n && s[i] != '.' && s[i] != '[' {
				i++
			}
			p.Segments = append(p.Segments, Segment{Kind: SegName, Name: s[start:i]})
		}
	}
	return p, nil
}

func (p *Path) String() string {
	var b strings.Builder
	if p.Relative {
		b.WriteByte('.')
	}
	for i, seg := range p.Segments {
		switch seg.Kind {
		case SegName:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Name)
		case SegIndex:
			b.WriteByte('[')
			if seg.IndexIsIdent {
				b.WriteString(seg.IndexIdent)
			} else {
				b.WriteString(strconv.Itoa(seg.IndexLiteral))
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

// IsReservedIdentifier reports whether name is reserved for loop metadata
// (begins with '@') and therefore unavailable as a user variable or
// iteration-variable name.
func IsReservedIdentifier(name string) bool {
	return strings.HasPrefix(name, "@")
}

// ResolvePath evaluates p against scope, applying the flat-key-shadows-
// dotted-path rule — a literal Mapping key equal to the dotted spelling
// of a longer path wins over descending into it — at every Mapping
// boundary, root included.
func ResolvePath(scope *Scope, p *Path) *Value {
	if p == nil || (len(p.Segments) == 0 && !p.Relative) {
		return Missing()
	}

	var cur *Value
	start := 0

	if p.Relative {
		cur = scope.CurrentItem()
		if len(p.Segments) == 0 {
			return cur
		}
	} else {
		if joined, count, ok := leadingNameJoin(p.Segments); ok && count > 1 {
			if v, found := scope.ResolveFlat(joined); found {
				cur = v
				start = count
			}
		}
		if cur == nil {
			first := p.Segments[0]
			if first.Kind != SegName {
				return Missing()
			}
			cur = scope.Resolve(first.Name)
			start = 1
		}
	}

	for i := start; i < len(p.Segments); i++ {
		if cur.IsMissing() {
			return Missing()
		}
		seg := p.Segments[i]
		switch seg.Kind {
		case SegName:
			if cur.IsMapping() {
				if joined, count, ok := leadingNameJoin(p.Segments[i:]); ok && count > 1 {
					if v, found := getMappingKey(cur, joined); found {
						cur = v
						i += count - 1
						continue
					}
				}
			}
			cur = getProperty(cur, seg.Name)
		case SegIndex:
			key := resolveIndexKey(scope, seg)
			cur = getIndexed(cur, key)
		}
	}
	return cur
}

// leadingNameJoin returns the dotted spelling of the longest leading run of
// Name segments, and how many segments it consumed.
func leadingNameJoin(segs []Segment) (string, int, bool) {
	if len(segs) == 0 || segs[0].Kind != SegName {
		return "", 0, false
	}
	n := 1
	for n < len(segs) && segs[n].Kind == SegName {
		n++
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = segs[i].Name
	}
	return strings.Join(names, "."), n, true
}

func getMappingKey(v *Value, key string) (*Value, bool) {
	if v == nil || !v.IsMapping() || v.Mapping() == nil {
		return nil, false
	}
	return v.Mapping().Get(key)
}

// getProperty performs member access on a Mapping or Object; missing keys,
// and non-Mapping/Object receivers, resolve to Missing.
func getProperty(v *Value, name string) *Value {
	if v == nil {
		return Missing()
	}
	switch v.Kind() {
	case KindMapping:
		if val, ok := getMappingKey(v, name); ok {
			return val
		}
	case KindObject:
		if obj := v.Object(); obj != nil {
			if val, ok := obj.GetProperty(name); ok {
				return val
			}
		}
	}
	return Missing()
}

// getIndexed performs indexed access: integer keys against Sequence,
// string-convertible keys against Mapping/Object.
func getIndexed(v *Value, key *Value) *Value {
	if v == nil || key == nil {
		return Missing()
	}
	switch v.Kind() {
	case KindSequence:
		if key.IsInteger() {
			i := int(key.Int64())
			seq := v.Sequence()
			if i < 0 || i >= len(seq) {
				return Missing()
			}
			return seq[i]
		}
		return Missing()
	case KindMapping, KindObject:
		return getProperty(v, key.AsString())
	default:
		return Missing()
	}
}

func resolveIndexKey(scope *Scope, seg Segment) *Value {
	if seg.IndexIsIdent {
		if IsReservedIdentifier(seg.IndexIdent) {
			return scope.loopMetadata(seg.IndexIdent)
		}
		return scope.Resolve(seg.IndexIdent)
	}
	return NewInteger(int64(seg.IndexLiteral))
}
