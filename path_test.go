package templify

import "testing"

func TestParsePathDottedAndBracketed(t *testing.T) {
	p, err := ParsePath("a.b[0].c")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	want := []Segment{
		{Kind: SegName, Name: "a"},
		{Kind: SegName, Name: "b"},
		{Kind: SegIndex, IndexLiteral: 0},
		{Kind: SegName, Name: "c"},
	}
	if len(p.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(p.Segments), len(want))
	}
	for i, seg := range p.Segments {
		if seg.Kind != want[i].Kind || seg.Name != want[i].Name || seg.IndexLiteral != want[i].IndexLiteral {
			t.Errorf("segment %d = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestParsePathRelative(t *testing.T) {
	p, err := ParsePath(".name")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if !p.Relative {
		t.Errorf("expected Relative=true for a leading '.'")
	}
	if p.String() != ".name" {
		t.Errorf("String() = %q, want %q", p.String(), ".name")
	}
}

func TestResolvePathFlatKeyShadowsDottedPath(t *testing.T) {
	inner := mapOf("b", NewString("nested"))
	root := mapOf("a.b", NewString("flat"), "a", inner)
	scope := NewRootScope(root)

	p, _ := ParsePath("a.b")
	got := ResolvePath(scope, p)
	if got.AsString() != "flat" {
		t.Errorf("flat key should shadow dotted descent, got %q", got.AsString())
	}
}

func TestResolvePathMissingMemberDoesNotFallBackToGlobal(t *testing.T) {
	item := mapOf("info", mapOf("x", NewInteger(1)))
	root := mapOf("info", mapOf("name", NewString("global-name")))
	scope := NewRootScope(root).PushLoop("", item, 0, 1)

	p, _ := ParsePath("info.name")
	got := ResolvePath(scope, p)
	if !got.IsMissing() {
		t.Errorf("item's own missing member should not fall back to a same-named global, got %v", got)
	}
}

func TestResolvePathIndexedAccess(t *testing.T) {
	root := mapOf("items", seqOf(NewString("a"), NewString("b"), NewString("c")))
	scope := NewRootScope(root)
	p, _ := ParsePath("items[1]")
	if got := ResolvePath(scope, p).AsString(); got != "b" {
		t.Errorf("items[1] = %q, want %q", got, "b")
	}
}

func TestResolvePathOutOfRangeIndexIsMissing(t *testing.T) {
	root := mapOf("items", seqOf(NewString("a")))
	scope := NewRootScope(root)
	p, _ := ParsePath("items[5]")
	if !ResolvePath(scope, p).IsMissing() {
		t.Errorf("out-of-range index should resolve Missing")
	}
}
