package templify

import "testing"

func TestValueIsTrue(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"null", Null, false},
		{"missing", Missing(), false},
		{"false", NewBool(false), false},
		{"true", NewBool(true), true},
		{"zero int", NewInteger(0), false},
		{"nonzero int", NewInteger(1), true},
		{"empty string", NewString(""), false},
		{"nonempty string", NewString("x"), true},
		{"empty sequence", NewSequence(nil), false},
		{"nonempty sequence", NewSequence([]*Value{NewInteger(1)}), true},
	}
	for _, c := range cases {
		if got := c.v.IsTrue(); got != c.want {
			t.Errorf("%s: IsTrue() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestValueEqualValueTo(t *testing.T) {
	if !NewInteger(3).EqualValueTo(NewDecimal(DecimalFromInt64(3))) {
		t.Errorf("Integer(3) should equal Decimal(3)")
	}
	if NewString("a").EqualValueTo(NewString("A")) {
		t.Errorf("string equality must be case-sensitive")
	}
	if !Missing().EqualValueTo(Missing()) {
		t.Errorf("two Missing values should compare equal")
	}
}

func TestValueAsString(t *testing.T) {
	cases := []struct {
		v    *Value
		want string
	}{
		{NewString("hi"), "hi"},
		{NewInteger(42), "42"},
		{NewBool(true), "True"},
	}
	for _, c := range cases {
		if got := c.v.AsString(); got != c.want {
			t.Errorf("AsString() = %q, want %q", got, c.want)
		}
	}
}

func TestValueMissingIsDistinctFromNull(t *testing.T) {
	if !Missing().IsMissing() {
		t.Errorf("Missing() should report IsMissing()")
	}
	if Null.IsMissing() {
		t.Errorf("Null should not report IsMissing()")
	}
	if !Null.IsNull() || !Missing().IsNull() {
		t.Errorf("both Null and Missing() should report IsNull()")
	}
}
