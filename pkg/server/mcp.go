package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPVersion is reported to MCP clients.
const MCPVersion = "1.0.0"

// MCPServer exposes post jobs as MCP tools.
type MCPServer struct {
	jobs   Jobs
	server *mcp.Server
}

func NewMCPServer(jobs Jobs) *MCPServer {
	s := &MCPServer{
		jobs: jobs,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "blog-post-creator",
			Version: MCPVersion,
		}, nil),
	}
	s.registerTools()
	return s
}

// Handler serves the streamable HTTP transport.
func (s *MCPServer) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

type GeneratePostInput struct {
	Keyword    string `json:"keyword" jsonschema:"the main SEO keyword of the post"`
	References int    `json:"references,omitempty" jsonschema:"number of reference pages to research, 1 to 10 (default 3)"`
	Filename   string `json:"filename,omitempty" jsonschema:"output markdown file name (default derived from the keyword)"`
}

type GeneratePostOutput struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

type GetPostInput struct {
	ID string `json:"id" jsonschema:"the job id returned by generate_blog_post"`
}

type GetPostOutput struct {
	ID       string   `json:"id"`
	Keyword  string   `json:"keyword"`
	Status   string   `json:"status"`
	Stage    string   `json:"stage,omitempty"`
	Markdown string   `json:"markdown,omitempty"`
	Path     string   `json:"path,omitempty"`
	Error    string   `json:"error,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

func (s *MCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_blog_post",
		Description: "Start writing an SEO blog post about a keyword. Returns a job id to poll with get_blog_post.",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_blog_post",
		Description: "Get the status of a blog post job and, once completed, its markdown.",
	}, s.handleGet)
}

func (s *MCPServer) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GeneratePostInput,
) (*mcp.CallToolResult, GeneratePostOutput, error) {
	job, err := s.jobs.CreateJob(ctx, CreateJobRequest{
		Keyword:    input.Keyword,
		References: input.References,
		Filename:   input.Filename,
	})
	if err != nil {
		return nil, GeneratePostOutput{}, err
	}
	return nil, GeneratePostOutput{
		ID:       job.ID.String(),
		Status:   job.Status,
		Filename: job.Filename,
	}, nil
}

func (s *MCPServer) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetPostInput,
) (*mcp.CallToolResult, GetPostOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, GetPostOutput{}, fmt.Errorf("invalid job id %q: %w", input.ID, err)
	}
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, GetPostOutput{}, err
	}

	out := GetPostOutput{
		ID:       job.ID.String(),
		Keyword:  job.Keyword,
		Status:   job.Status,
		Stage:    deref(job.Stage),
		Markdown: deref(job.Markdown),
		Path:     deref(job.Path),
		Error:    deref(job.Error),
	}
	if sources, err := job.SourceURLs(); err == nil {
		out.Sources = sources
	}
	return nil, out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
