package blog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/loader"
	"github.com/mikeboe/blog-post-creator/pkg/models"
	"github.com/mikeboe/blog-post-creator/pkg/search"
	"github.com/mikeboe/blog-post-creator/pkg/vectorstore"
)

type Stage string

const (
	StageResolve        Stage = "resolve"
	StageLoad           Stage = "load"
	StageIndex          Stage = "index"
	StageImageContext   Stage = "image_context"
	StageImage          Stage = "image"
	StageArticleContext Stage = "article_context"
	StageGenerate       Stage = "generate"
	StageAssemble       Stage = "assemble"
)

// StageEvent reports a finished stage.
type StageEvent struct {
	Stage    Stage
	Duration time.Duration
	Err      error
}

// Request is one blog post to produce. An empty Filename gets a generated one.
type Request struct {
	Query    models.SearchQuery
	Filename string
}

// Engine runs the stages of a post in order. Each Run builds its own index
// and closes it before returning.
type Engine struct {
	Resolver        *search.Resolver
	Loader          *loader.Loader
	Indexer         vectorstore.Builder
	Generator       *Generator
	Images          *ImagePipeline
	Assembler       *Assembler
	ImageContextK   int
	ArticleContextK int
	Logger          *slog.Logger
	OnStage         func(StageEvent)
}

// NewEngine wires the stages from configuration. renderer may be nil, which
// disables cover images.
func NewEngine(cfg *config.Config, llm TextGenerator, searcher search.Searcher, indexer vectorstore.Builder, renderer ImageRenderer) *Engine {
	images := NewImagePipeline(llm, renderer, cfg.ImagesDir)
	images.Temperature = cfg.Temperature
	images.MaxTokens = cfg.DescriptionMaxTokens

	return &Engine{
		Resolver:        search.NewResolver(searcher, cfg.SearchAttempts, cfg.SearchBackoff),
		Loader:          loader.New(cfg),
		Indexer:         indexer,
		Generator:       NewGenerator(llm, cfg.Temperature),
		Images:          images,
		Assembler:       NewAssembler(cfg.OutputDir),
		ImageContextK:   cfg.ImageContextK,
		ArticleContextK: cfg.ArticleContextK,
		Logger:          slog.Default(),
	}
}

// WithLogger points every stage at logger.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.Logger = logger
	e.Resolver.Logger = logger
	e.Loader.Logger = logger
	e.Generator.Logger = logger
	e.Images.Logger = logger
	return e
}

func (e *Engine) Run(ctx context.Context, req Request) (*models.BlogPost, error) {
	keyword := req.Query.Keyword
	filename := req.Filename
	if filename == "" {
		filename = DefaultFilename(keyword, e.Assembler.Now())
	}
	e.Logger.Info("Starting blog post", "keyword", keyword, "references", req.Query.DesiredResultCount, "filename", filename)

	var links []models.SourceLink
	e.stage(StageResolve, func() error {
		links = e.Resolver.Resolve(ctx, req.Query)
		return nil
	})

	var chunks []models.Chunk
	if err := e.stage(StageLoad, func() (err error) {
		chunks, err = e.Loader.LoadAndChunk(ctx, links)
		return err
	}); err != nil {
		return nil, err
	}

	var index vectorstore.Index
	if err := e.stage(StageIndex, func() (err error) {
		index, err = e.Indexer.Build(ctx, chunks)
		return err
	}); err != nil {
		return nil, err
	}
	defer func() {
		if err := index.Close(context.WithoutCancel(ctx)); err != nil {
			e.Logger.Warn("Failed to close index", "error", err)
		}
	}()

	var cover models.GeneratedImage
	if e.Images.Enabled() {
		var imageContext models.RetrievalResult
		if err := e.stage(StageImageContext, func() (err error) {
			imageContext, err = index.Query(ctx, keyword, e.ImageContextK)
			return err
		}); err != nil {
			return nil, err
		}

		e.stage(StageImage, func() error {
			if img, ok := e.Images.Generate(ctx, keyword, imageContext); ok {
				cover = img
			}
			return nil
		})
	}

	var articleContext models.RetrievalResult
	if err := e.stage(StageArticleContext, func() (err error) {
		articleContext, err = index.Query(ctx, keyword, e.ArticleContextK)
		return err
	}); err != nil {
		return nil, err
	}

	var article models.GeneratedArticle
	if err := e.stage(StageGenerate, func() (err error) {
		article, err = e.Generator.Generate(ctx, keyword, articleContext)
		return err
	}); err != nil {
		return nil, err
	}

	var post *models.BlogPost
	if err := e.stage(StageAssemble, func() (err error) {
		post, err = e.Assembler.Assemble(cover.LocalPath, article.Markdown, filename)
		return err
	}); err != nil {
		return nil, err
	}

	post.Sources = models.URLs(links)
	e.Logger.Info("Blog post written", "path", post.Path, "title", article.Title, "cover", post.CoverPath != "")
	return post, nil
}

func (e *Engine) stage(name Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if err != nil {
		e.Logger.Error("Stage failed", "stage", name, "duration", elapsed, "error", err)
	} else {
		e.Logger.Debug("Stage finished", "stage", name, "duration", elapsed)
	}
	if e.OnStage != nil {
		e.OnStage(StageEvent{Stage: name, Duration: elapsed, Err: err})
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
