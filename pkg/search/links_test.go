package search

import (
	"reflect"
	"testing"
)

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "No links",
			input:    "snippet: nothing here, title: empty",
			expected: []string{},
		},
		{
			name:     "Single link",
			input:    "[snippet: Café, title: Café, link: https://example.com/cafe]",
			expected: []string{"https://example.com/cafe"},
		},
		{
			name:     "Comma separated entries",
			input:    "[snippet: a, title: A, link: https://a.com/x], [snippet: b, title: B, link: http://b.org/y?z=1]",
			expected: []string{"https://a.com/x", "http://b.org/y?z=1"},
		},
		{
			name:     "Whitespace after label is optional",
			input:    "link:https://a.com link:   https://b.com",
			expected: []string{"https://a.com", "https://b.com"},
		},
		{
			name:     "Missing scheme is ignored",
			input:    "link: www.example.com, link: example.com/page",
			expected: []string{},
		},
		{
			name:     "Trailing punctuation is trimmed",
			input:    "see link: https://example.com/page. and link: https://example.com/other;",
			expected: []string{"https://example.com/page", "https://example.com/other"},
		},
		{
			name:     "Balanced parentheses kept",
			input:    "[snippet: Java, title: Java, link: https://en.wikipedia.org/wiki/Java_(programming_language)]",
			expected: []string{"https://en.wikipedia.org/wiki/Java_(programming_language)"},
		},
		{
			name:     "Unbalanced closing parenthesis trimmed",
			input:    "(see link: https://example.com/page) and (link: https://en.wikipedia.org/wiki/Go_(game)).",
			expected: []string{"https://example.com/page", "https://en.wikipedia.org/wiki/Go_(game)"},
		},
		{
			name:     "URL label form",
			input:    "Title: Go\nDescription: The Go language\nURL: https://go.dev/\n\n",
			expected: []string{"https://go.dev/"},
		},
		{
			name:     "Scheme without host is ignored",
			input:    "link: https://, link: https:///path",
			expected: []string{},
		},
		{
			name:     "Label must be a whole word",
			input:    "hyperlink: https://a.com, permalink:https://b.com",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLinks(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseLinks(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatResultsRoundTrip(t *testing.T) {
	results := []Result{
		{Title: "One", URL: "https://one.com/a", Snippet: "first, with comma"},
		{Title: "Two", URL: "https://two.com/b", Snippet: "second"},
	}
	got := ParseLinks(FormatResults(results))
	want := []string{"https://one.com/a", "https://two.com/b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLinks(FormatResults()) = %v, want %v", got, want)
	}
}
