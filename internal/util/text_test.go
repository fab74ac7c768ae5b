package util

import "testing"

func TestRepairEncoding(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "latin1 accent", input: "JosÃ©", want: "José"},
		{name: "umlaut", input: "MÃ¼ller", want: "Müller"},
		{name: "smart quote", input: "Oâ€™Neil", want: "O’Neil"},
		{name: "clean input", input: "José", want: "José"},
		{name: "ascii", input: "Smith", want: "Smith"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RepairEncoding(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestFoldKey(t *testing.T) {
	if got := FoldKey("  José   Müller "); got != "jose muller" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces(" a \t b  c "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestUniformCase(t *testing.T) {
	cases := map[string]bool{
		"JOHN":       true,
		"john":       true,
		"John":       false,
		"McDonald":   false,
		"O'BRIEN":    true,
		"1234":       false,
		"":           false,
		"jean-luc":   true,
		"DE LA CRUZ": true,
	}
	for in, want := range cases {
		if got := UniformCase(in); got != want {
			t.Fatalf("UniformCase(%q)=%v want %v", in, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("ÉMILE zola"); got != "Émile Zola" {
		t.Fatalf("got %q", got)
	}
}
