package blog

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/mikeboe/blog-post-creator/pkg/models"
)

const coverAlt = "Capa do artigo"

// ErrInvalidFilename is returned for empty names or names containing a path.
var ErrInvalidFilename = errors.New("filename must be a plain file name")

// Assembler writes finished posts to the output directory.
type Assembler struct {
	Dir string
	Now func() time.Time
}

func NewAssembler(dir string) *Assembler {
	return &Assembler{Dir: dir, Now: time.Now}
}

// CheckFilename rejects names that would escape the output directory.
func CheckFilename(filename string) error {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return nil
}

// Compose prefixes the body with the cover reference when there is one.
func (a *Assembler) Compose(imagePath, body string) string {
	if imagePath == "" {
		return body
	}
	return fmt.Sprintf("![%s](%s)\n\n%s", coverAlt, filepath.ToSlash(imagePath), body)
}

// Assemble composes the post and writes it to Dir/filename, replacing any
// existing file of that name.
func (a *Assembler) Assemble(imagePath, body, filename string) (*models.BlogPost, error) {
	if err := CheckFilename(filename); err != nil {
		return nil, err
	}

	markdown := a.Compose(imagePath, body)
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(a.Dir, filename)
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return nil, fmt.Errorf("failed to write post: %w", err)
	}

	return &models.BlogPost{
		Markdown:  markdown,
		Path:      path,
		CoverPath: imagePath,
		CreatedAt: a.Now(),
	}, nil
}

// InlineCover replaces the cover reference with an <img> tag carrying the
// image as a base64 data URI, for front ends that cannot serve local files.
// Markdown without a cover, or whose cover file is gone, is returned as is.
func InlineCover(markdown string) (string, error) {
	prefix := "![" + coverAlt + "]("
	start := strings.Index(markdown, prefix)
	if start < 0 {
		return markdown, nil
	}
	end := strings.Index(markdown[start+len(prefix):], ")")
	if end < 0 {
		return markdown, nil
	}
	path := markdown[start+len(prefix) : start+len(prefix)+end]

	data, err := os.ReadFile(filepath.FromSlash(path))
	if errors.Is(err, fs.ErrNotExist) {
		return markdown, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cover: %w", err)
	}

	tag := fmt.Sprintf(`<img src="data:image/png;base64,%s" alt="%s" style="width:100%%"/>`,
		base64.StdEncoding.EncodeToString(data), coverAlt)
	return strings.Replace(markdown, prefix+path+")", tag, 1), nil
}

// DefaultFilename builds "<keyword-slug>_<YYYYMMDD_HHMMSS>.md".
func DefaultFilename(keyword string, t time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(keyword)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "post"
	}
	return slug + "_" + t.Format(coverTimeFormat) + ".md"
}
