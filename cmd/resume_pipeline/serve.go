package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-pipeline/internal/aggregate"
	"github.com/jonathan/resume-pipeline/internal/config"
	"github.com/jonathan/resume-pipeline/internal/db"
	"github.com/jonathan/resume-pipeline/internal/keywords"
	"github.com/jonathan/resume-pipeline/internal/llm"
	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/server"
	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/storage"
	"github.com/jonathan/resume-pipeline/internal/synthesis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes generation, feedback, and run inspection
endpoints. Requires DATABASE_URL and GEMINI_API_KEY; set AUTH_USERNAME,
AUTH_PASSWORD_HASH, and JWT_SECRET to gate the mutating routes.`,
	RunE: runServe,
}

var (
	serveAddr       string
	serveConfigPath string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}
	if cmd.Flags().Changed("addr") {
		cfg.ServerAddr = serveAddr
	}
	cfg = cfg.MergeWithDefaults(config.Config{})
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Database is required in serve mode; feedback cycles load their runs
	// from it.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	auth, err := config.NewAuthConfig()
	if err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	adapters := serveAdapters(ctx, cfg)
	orch := pipeline.New(
		aggregate.NewBuilder(keywords.NewExtractor(client), adapters...),
		synthesis.NewSynthesizer(client),
		pipeline.Options{
			CollectTimeout: cfg.CollectTimeout(),
			Store:          database,
		},
	)

	srv, err := server.New(server.Config{
		Addr:         cfg.ServerAddr,
		Orchestrator: orch,
		Store:        database,
		Adapters:     adapters,
		Auth:         auth,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// serveAdapters builds the four adapters for server mode. Browser rendering
// is opt-in here; the serving host needs Chrome installed for it.
func serveAdapters(ctx context.Context, cfg config.Config) []sources.Adapter {
	portfolio := sources.NewPortfolioAdapter(0)
	portfolio.UseBrowser = cfg.UseBrowser
	portfolio.Verbose = cfg.Verbose

	var objectStore sources.ObjectStore
	storageCfg := cfg.Storage
	if !storageCfg.Configured() {
		storageCfg = storageFromEnv()
	}
	if storageCfg.Configured() {
		s3Store, err := storage.New(ctx, storageCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: object store unavailable: %v\n", err)
		} else {
			objectStore = s3Store
		}
	}

	return []sources.Adapter{
		sources.NewProfileAdapter(os.Getenv("GITHUB_TOKEN"), cfg.RetryPolicy()),
		portfolio,
		sources.NewPostingAdapter(),
		sources.NewDocumentAdapter(objectStore),
	}
}

// storageFromEnv reads object-store settings from the environment, for
// deployments that configure everything through env vars.
func storageFromEnv() storage.Config {
	return storage.Config{
		Bucket:    os.Getenv("STORAGE_BUCKET"),
		Region:    os.Getenv("STORAGE_REGION"),
		Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
	}
}
