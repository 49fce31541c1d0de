package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Portuguese", "pt"},
		{"por", "pt"},
		{"pt-br", "pt-BR"},
		{"PT_BR", "pt-BR"},
		{"fre", "fr"},
		{"en", "en"},
		{"klingon", "klingon"},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"pt-BR", "Portuguese (BR)"},
		{"japanese", "Japanese"},
		{"xx", "XX"},
		{"", "Unknown"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
