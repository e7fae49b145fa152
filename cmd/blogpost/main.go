package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mikeboe/blog-post-creator/pkg/blog"
	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/database"
	"github.com/mikeboe/blog-post-creator/pkg/models"
	"github.com/spf13/cobra"
)

var (
	keyword    string
	references int
	output     string
	configPath string
	verbose    bool
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	rootCmd := &cobra.Command{
		Use:   "blogpost",
		Short: "Write an SEO blog post from web research",
		Long:  `blogpost searches the web for a keyword, indexes the reference pages and writes a Markdown article with an optional cover image.`,
		Run: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			if !cmd.Flags().Changed("keyword") {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				fmt.Print("Palavra-chave: ")
				input, _ := reader.ReadString('\n')
				keyword = strings.TrimSpace(input)

				if !cmd.Flags().Changed("references") {
					fmt.Printf("Número de referências (padrão: %d): ", references)
					input, _ = reader.ReadString('\n')
					if input = strings.TrimSpace(input); input != "" {
						n, err := strconv.Atoi(input)
						if err != nil {
							slog.Error("Reference count must be a number", "input", input)
							os.Exit(1)
						}
						references = n
					}
				}
			}

			query, err := models.NewSearchQuery(keyword, references)
			if err != nil {
				slog.Error("Invalid input", "error", err)
				os.Exit(1)
			}
			if output != "" {
				if err := blog.CheckFilename(output); err != nil {
					slog.Error("Invalid output name", "error", err)
					os.Exit(1)
				}
			}

			cfg := config.Load(configPath)
			if err := cfg.Validate(); err != nil {
				slog.Error("Invalid configuration", "error", err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var db *database.PostgresDB
			if cfg.IndexBackend == config.IndexPGVector {
				db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
				if err != nil {
					slog.Error("Failed to connect to database", "error", err)
					os.Exit(1)
				}
				defer db.Close()

				if err := db.EnsureVectorExtension(ctx); err != nil {
					slog.Error("Failed to enable pgvector", "error", err)
					os.Exit(1)
				}
			}

			engine, err := blog.NewEngineFromConfig(ctx, cfg, db)
			if err != nil {
				slog.Error("Error initializing engine", "error", err)
				os.Exit(1)
			}

			post, err := engine.Run(ctx, blog.Request{Query: query, Filename: output})
			if err != nil {
				slog.Error("Error generating post", "error", err)
				os.Exit(1)
			}

			fmt.Println(post.Path)
		},
	}

	rootCmd.Flags().StringVarP(&keyword, "keyword", "k", "", "The main SEO keyword of the post")
	rootCmd.Flags().IntVarP(&references, "references", "n", models.DefaultReferenceCount, "Number of reference pages to research (1-10)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Output file name inside OUTPUT_DIR (default <keyword>_<timestamp>.md)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a config file (default ./config.yaml)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every stage at debug level")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
