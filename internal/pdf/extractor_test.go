package pdfutil

import (
	"testing"
	"unicode/utf8"
)

func TestCapSnippet(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{name: "short text untouched", text: "hello", maxRunes: 10, want: "hello"},
		{name: "exact length untouched", text: "hello", maxRunes: 5, want: "hello"},
		{name: "long text capped", text: "hello world", maxRunes: 5, want: "hello"},
		{name: "surrounding whitespace trimmed", text: "  hello \n", maxRunes: 10, want: "hello"},
		{name: "multibyte runes cut on boundary", text: "héllö wörld", maxRunes: 4, want: "héll"},
		{name: "empty text", text: "", maxRunes: 5, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := capSnippet(tc.text, tc.maxRunes)
			if got != tc.want {
				t.Fatalf("capSnippet(%q, %d) = %q, want %q", tc.text, tc.maxRunes, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("snippet must stay valid UTF-8: %q", got)
			}
		})
	}
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	if _, err := ExtractText([]byte("not a pdf at all")); err == nil {
		t.Fatalf("expected error for non-PDF bytes")
	}
}
