package pipeline

import "testing"

func TestHeuristicPhoneNormalizer(t *testing.T) {
	n := HeuristicPhoneNormalizer{}
	cases := []struct {
		input string
		want  string
		valid bool
	}{
		{input: "+1 (415) 555-2671", want: "+14155552671", valid: true},
		{input: "0044 20 7946 0958", want: "+442079460958", valid: true},
		{input: "415.555.2671", want: "4155552671", valid: true},
		{input: "555-1234 ext. 12", want: "5551234", valid: true},
		{input: "12345", want: "12345", valid: false},
		{input: " call me ", want: "call me", valid: false},
		{input: "+1234567890123456", want: "+1234567890123456", valid: false},
	}
	for _, tc := range cases {
		got, valid := n.Normalize(tc.input)
		if got != tc.want || valid != tc.valid {
			t.Fatalf("Normalize(%q)=(%q,%v) want (%q,%v)", tc.input, got, valid, tc.want, tc.valid)
		}
	}
}

func TestLibPhoneNormalizer(t *testing.T) {
	n := LibPhoneNormalizer{Region: "US"}
	cases := []struct {
		input string
		want  string
		valid bool
	}{
		{input: "(650) 253-0000", want: "+16502530000", valid: true},
		{input: "+33 1 42 68 53 00", want: "+33142685300", valid: true},
		{input: "12345", want: "12345", valid: false},
		{input: "not a phone", want: "not a phone", valid: false},
		{input: "", want: "", valid: false},
	}
	for _, tc := range cases {
		got, valid := n.Normalize(tc.input)
		if got != tc.want || valid != tc.valid {
			t.Fatalf("Normalize(%q)=(%q,%v) want (%q,%v)", tc.input, got, valid, tc.want, tc.valid)
		}
	}
}

func TestPhoneNormalizationIdempotentOnE164(t *testing.T) {
	inputs := []string{"+16502530000", "+33142685300", "+442079460958"}
	for _, impl := range []PhoneNormalizer{HeuristicPhoneNormalizer{}, LibPhoneNormalizer{Region: "US"}} {
		for _, in := range inputs {
			once, _ := impl.Normalize(in)
			twice, _ := impl.Normalize(once)
			if once != twice {
				t.Fatalf("%T: %q -> %q -> %q", impl, in, once, twice)
			}
		}
	}
}

func TestNewPhoneNormalizer(t *testing.T) {
	if _, ok := NewPhoneNormalizer("Heuristic", "US").(HeuristicPhoneNormalizer); !ok {
		t.Fatal("expected heuristic normalizer")
	}
	lib, ok := NewPhoneNormalizer("", "gb").(LibPhoneNormalizer)
	if !ok || lib.Region != "gb" {
		t.Fatalf("expected libphonenumber normalizer, got %#v", lib)
	}
}
