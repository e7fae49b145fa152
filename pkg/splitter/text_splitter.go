package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 400
)

// Piece is one split of a text. Start is a character (rune) offset.
type Piece struct {
	Text  string
	Start int
}

// TextSplitter wraps the langchaingo text splitter
type TextSplitter struct {
	splitter     textsplitter.TextSplitter
	chunkOverlap int
}

// NewRecursiveCharacterTextSplitter creates a new recursive character text splitter
func NewRecursiveCharacterTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)

	return &TextSplitter{splitter: ts, chunkOverlap: chunkOverlap}
}

// SplitText splits text into chunks
func (ts *TextSplitter) SplitText(text string) ([]string, error) {
	return ts.splitter.SplitText(text)
}

// Split splits text and locates each chunk in the source. The search for a
// chunk starts at the previous chunk's end minus the overlap, so repeated
// passages resolve to the occurrence that follows the previous chunk.
func (ts *TextSplitter) Split(text string) ([]Piece, error) {
	chunks, err := ts.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	pieces := make([]Piece, 0, len(chunks))
	prevStart, prevLen := 0, 0 // byte positions
	for i, chunk := range chunks {
		if chunk == "" {
			continue
		}
		from := 0
		if i > 0 {
			from = max(prevStart+prevLen-ts.overlapBytes(text, prevStart, prevLen), prevStart+1)
		}
		idx := indexFrom(text, chunk, from)
		if idx < 0 {
			// Fall back to the first occurrence after the previous chunk start.
			idx = indexFrom(text, chunk, prevStart)
		}
		if idx < 0 {
			idx = prevStart
		}
		pieces = append(pieces, Piece{
			Text:  chunk,
			Start: utf8.RuneCountInString(text[:idx]),
		})
		prevStart, prevLen = idx, len(chunk)
	}
	return pieces, nil
}

// overlapBytes converts the rune overlap into bytes at the tail of the
// previous chunk.
func (ts *TextSplitter) overlapBytes(text string, start, length int) int {
	end := min(start+length, len(text))
	n, runes := 0, 0
	for end-n > start && runes < ts.chunkOverlap {
		_, size := utf8.DecodeLastRuneInString(text[:end-n])
		n += size
		runes++
	}
	return n
}

func indexFrom(text, sub string, from int) int {
	if from < 0 {
		from = 0
	}
	for from < len(text) && !utf8.RuneStart(text[from]) {
		from++
	}
	if from > len(text) {
		return -1
	}
	idx := strings.Index(text[from:], sub)
	if idx < 0 {
		return -1
	}
	return from + idx
}
