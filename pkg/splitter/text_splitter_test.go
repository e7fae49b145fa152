package splitter

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"
)

// noBreaks builds text without whitespace and without long repeats.
func noBreaks(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()[:n]
}

func runeSlice(text string, start, length int) string {
	r := []rune(text)
	return string(r[start : start+length])
}

func TestSplitShortDocument(t *testing.T) {
	ts := NewRecursiveCharacterTextSplitter(DefaultChunkSize, DefaultChunkOverlap)
	text := "Café brasileiro é famoso.\n\nO Brasil é o maior produtor do mundo."

	pieces, err := ts.Split(text)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(pieces) != 1 {
		t.Fatalf("Split() returned %d pieces, want 1", len(pieces))
	}
	if pieces[0].Start != 0 {
		t.Errorf("Start = %d, want 0", pieces[0].Start)
	}
	if pieces[0].Text != text {
		t.Errorf("Text = %q, want %q", pieces[0].Text, text)
	}
}

func TestSplitWithoutBreakpoints(t *testing.T) {
	const size, overlap = 2000, 400
	ts := NewRecursiveCharacterTextSplitter(size, overlap)

	for _, length := range []int{2500, 5000, 9000} {
		t.Run(strconv.Itoa(length), func(t *testing.T) {
			text := noBreaks(length)
			pieces, err := ts.Split(text)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}

			want := (length - overlap + (size - overlap) - 1) / (size - overlap)
			if len(pieces) < want-1 || len(pieces) > want+1 {
				t.Errorf("got %d pieces, want about %d", len(pieces), want)
			}
			if pieces[0].Start != 0 {
				t.Errorf("first Start = %d, want 0", pieces[0].Start)
			}

			for i, p := range pieces {
				n := utf8.RuneCountInString(p.Text)
				if n > size {
					t.Errorf("piece %d has %d chars, more than %d", i, n, size)
				}
				if got := runeSlice(text, p.Start, n); got != p.Text {
					t.Errorf("piece %d not found at offset %d", i, p.Start)
				}
				if i == 0 {
					continue
				}
				prev := pieces[i-1]
				prevEnd := prev.Start + utf8.RuneCountInString(prev.Text)
				if p.Start <= prev.Start {
					t.Errorf("piece %d starts at %d, not after %d", i, p.Start, prev.Start)
				}
				if shared := prevEnd - p.Start; shared < overlap {
					t.Errorf("piece %d shares %d chars with the previous one, want at least %d", i, shared, overlap)
				}
			}

			last := pieces[len(pieces)-1]
			if end := last.Start + utf8.RuneCountInString(last.Text); end != length {
				t.Errorf("last piece ends at %d, want %d", end, length)
			}
		})
	}
}

func TestSplitPrefersParagraphs(t *testing.T) {
	ts := NewRecursiveCharacterTextSplitter(100, 20)
	first := strings.Repeat("alpha ", 12)
	second := strings.Repeat("beta ", 12)
	text := strings.TrimSpace(first) + "\n\n" + strings.TrimSpace(second)

	pieces, err := ts.Split(text)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2: %q", len(pieces), pieces)
	}
	if strings.Contains(pieces[0].Text, "beta") || strings.Contains(pieces[1].Text, "alpha") {
		t.Errorf("paragraph boundary not respected: %q", pieces)
	}
	if want := len(strings.TrimSpace(first)) + 2; pieces[1].Start != want {
		t.Errorf("second Start = %d, want %d", pieces[1].Start, want)
	}
}

func TestSplitRuneOffsets(t *testing.T) {
	ts := NewRecursiveCharacterTextSplitter(30, 0)
	text := "ação ação ação ação ação\n\nçççç éééé"

	pieces, err := ts.Split(text)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	for i, p := range pieces {
		if got := runeSlice(text, p.Start, utf8.RuneCountInString(p.Text)); got != p.Text {
			t.Errorf("piece %d: text at rune offset %d = %q, want %q", i, p.Start, got, p.Text)
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	ts := NewRecursiveCharacterTextSplitter(DefaultChunkSize, DefaultChunkOverlap)
	pieces, err := ts.Split("")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(pieces) != 0 {
		t.Errorf("Split(\"\") = %v, want none", pieces)
	}
}
