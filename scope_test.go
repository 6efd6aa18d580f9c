package templify

import "testing"

func TestScopeLoopMetadata(t *testing.T) {
	root := Null
	scope := NewRootScope(root).PushLoop("item", NewString("x"), 1, 3)

	if got := scope.Resolve("@index").Int64(); got != 1 {
		t.Errorf("@index = %d, want 1", got)
	}
	if got := scope.Resolve("@count").Int64(); got != 3 {
		t.Errorf("@count = %d, want 3", got)
	}
	if scope.Resolve("@first").IsTrue() {
		t.Errorf("@first should be false at index 1")
	}
	if scope.Resolve("@last").IsTrue() {
		t.Errorf("@last should be false at index 1 of 3")
	}
}

func TestScopeLoopMetadataOutsideLoopIsMissing(t *testing.T) {
	scope := NewRootScope(Null)
	if !scope.Resolve("@index").IsMissing() {
		t.Errorf("@index outside any loop should be Missing")
	}
}

func TestScopeNamedLoopStillResolvesItemProperties(t *testing.T) {
	item := mapOf("name", NewString("item-name"))
	scope := NewRootScope(Null).PushLoop("row", item, 0, 1)
	if got := scope.Resolve("name").AsString(); got != "item-name" {
		t.Errorf("name = %q, want %q", got, "item-name")
	}
}

func TestScopeNestedLoopsResolveInnermostFirst(t *testing.T) {
	outer := mapOf("label", NewString("outer"))
	inner := mapOf("label", NewString("inner"))
	s := NewRootScope(Null).PushLoop("", outer, 0, 1).PushLoop("", inner, 0, 1)
	if got := s.Resolve("label").AsString(); got != "inner" {
		t.Errorf("label = %q, want innermost %q", got, "inner")
	}
}
