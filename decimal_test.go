package templify

import "testing"

func TestParseDecimalPreservesScale(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1250.50", "1250.50"},
		{"-3", "-3"},
		{"0.00", "0.00"},
		{"+42", "42"},
		{".5", "0.5"},
	}
	for _, c := range cases {
		d, ok := ParseDecimal(c.in)
		if !ok {
			t.Errorf("ParseDecimal(%q) failed", c.in)
			continue
		}
		if got := d.String(); got != c.want {
			t.Errorf("ParseDecimal(%q).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseDecimalRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "--1"} {
		if _, ok := ParseDecimal(in); ok {
			t.Errorf("ParseDecimal(%q) should have failed", in)
		}
	}
}

func TestDecimalCompare(t *testing.T) {
	a, _ := ParseDecimal("1.50")
	b, _ := ParseDecimal("1.5")
	if a.Compare(b) != 0 {
		t.Errorf("1.50 should compare equal to 1.5 at widened scale")
	}
	c, _ := ParseDecimal("1.6")
	if a.Compare(c) >= 0 {
		t.Errorf("1.50 should compare less than 1.6")
	}
}
