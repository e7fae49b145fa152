package blog

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type llmCall struct {
	messages []llms.MessageContent
	options  llms.CallOptions
}

// fakeLLM answers image-description calls (those with a system message)
// and article calls separately.
type fakeLLM struct {
	description    string
	descriptionErr error
	article        string
	articleErr     error
	noChoices      bool
	calls          []llmCall
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	f.calls = append(f.calls, llmCall{messages: messages, options: opts})

	if f.noChoices {
		return &llms.ContentResponse{}, nil
	}
	content, err := f.article, f.articleErr
	if len(messages) > 0 && messages[0].Role == llms.ChatMessageTypeSystem {
		content, err = f.description, f.descriptionErr
	}
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

func (f *fakeLLM) articleCalls() []llmCall {
	var out []llmCall
	for _, c := range f.calls {
		if c.messages[0].Role == llms.ChatMessageTypeHuman {
			out = append(out, c)
		}
	}
	return out
}

func messageText(m llms.MessageContent) string {
	var b strings.Builder
	for _, p := range m.Parts {
		if t, ok := p.(llms.TextContent); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

type fakeRenderer struct {
	url     string
	err     error
	prompts []string
}

func (f *fakeRenderer) Render(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.url, f.err
}

// letterEmbedder embeds text as letter frequencies.
type letterEmbedder struct{}

func (letterEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v, nil
}

func (e letterEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.EmbedQuery(ctx, t)
	}
	return out, nil
}

type staticSearcher struct {
	text  string
	calls int
}

func (s *staticSearcher) Search(ctx context.Context, keyword string, maxResults int) (string, error) {
	s.calls++
	return s.text, nil
}
