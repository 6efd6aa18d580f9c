package templify

import "testing"

func TestDecodeJSONContextPreservesKeyOrder(t *testing.T) {
	v, err := DecodeJSONContext([]byte(`{"z": 1, "a": 2, "m": 3}`))
	if err != nil {
		t.Fatalf("DecodeJSONContext: %v", err)
	}
	if !v.IsMapping() {
		t.Fatalf("expected a Mapping, got %v", v.Kind())
	}
	var keys []string
	for pair := v.Mapping().Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestDecodeJSONContextIntegerVsDecimalSpelling(t *testing.T) {
	v, err := DecodeJSONContext([]byte(`{"count": 3, "amount": 1250.50, "whole_as_decimal": 3.0}`))
	if err != nil {
		t.Fatalf("DecodeJSONContext: %v", err)
	}
	count, _ := v.Mapping().Get("count")
	if count.Kind() != KindInteger {
		t.Errorf("count should decode as Integer, got %v", count.Kind())
	}
	amount, _ := v.Mapping().Get("amount")
	if amount.Kind() != KindDecimal {
		t.Errorf("amount should decode as Decimal, got %v", amount.Kind())
	}
	if amount.Decimal().String() != "1250.50" {
		t.Errorf("amount should preserve spelled scale, got %q", amount.Decimal().String())
	}
	whole, _ := v.Mapping().Get("whole_as_decimal")
	if whole.Kind() != KindDecimal {
		t.Errorf("3.0 should decode as Decimal despite its integer value, got %v", whole.Kind())
	}
}

func TestDecodeJSONContextArraysAndNested(t *testing.T) {
	v, err := DecodeJSONContext([]byte(`{"items": [{"name": "a"}, {"name": "b"}], "flag": true, "missing": null}`))
	if err != nil {
		t.Fatalf("DecodeJSONContext: %v", err)
	}
	items, _ := v.Mapping().Get("items")
	if !items.IsSequence() || len(items.Sequence()) != 2 {
		t.Fatalf("expected a 2-element Sequence, got %v", items)
	}
	first := items.Sequence()[0]
	name, _ := first.Mapping().Get("name")
	if name.AsString() != "a" {
		t.Errorf("nested name = %q, want %q", name.AsString(), "a")
	}
	flag, _ := v.Mapping().Get("flag")
	if !flag.IsTrue() {
		t.Errorf("flag should be true")
	}
	missing, _ := v.Mapping().Get("missing")
	if !missing.IsNull() {
		t.Errorf("explicit JSON null should decode as Null")
	}
}

func TestDecodeJSONContextRejectsTrailingData(t *testing.T) {
	_, err := DecodeJSONContext([]byte(`{"a": 1} garbage`))
	if err == nil {
		t.Errorf("expected an error for trailing data after the top-level value")
	}
}

func TestDecodeJSONContextRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeJSONContext([]byte(`{"a": }`))
	if err == nil {
		t.Errorf("expected an error for malformed JSON")
	}
}
