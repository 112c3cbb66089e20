package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-pipeline/internal/aggregate"
	"github.com/jonathan/resume-pipeline/internal/config"
	"github.com/jonathan/resume-pipeline/internal/db"
	"github.com/jonathan/resume-pipeline/internal/keywords"
	"github.com/jonathan/resume-pipeline/internal/llm"
	"github.com/jonathan/resume-pipeline/internal/observability"
	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/storage"
	"github.com/jonathan/resume-pipeline/internal/synthesis"
	"github.com/jonathan/resume-pipeline/internal/types"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Run a full generation pass over the requested sources",
	Long: `Collects the requested evidence sources concurrently, freezes them into a
shared context, and synthesizes a structured resume document. A source that
fails is recorded in the context and the run proceeds with what arrived.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runGenerateCmd,
}

var (
	genConfigPath   string
	genProfileURL   string
	genPortfolioURL string
	genPostingFile  string
	genPostingText  string
	genResumeFile   string
	genAdditions    string
	genOut          string
	genContextOut   string
	genTimeout      int
	genAPIKey       string
	genDatabaseURL  string
	genNoBrowser    bool
	genVerbose      bool
)

func init() {
	// Config file flag (processed first)
	generateCommand.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCommand.Flags().StringVar(&genProfileURL, "profile-url", "", "Code-hosting profile URL (e.g. https://github.com/user)")
	generateCommand.Flags().StringVar(&genPortfolioURL, "portfolio-url", "", "Portfolio site URL")
	generateCommand.Flags().StringVarP(&genPostingFile, "posting-file", "j", "", "Path to job posting text file (mutually exclusive with --posting-text)")
	generateCommand.Flags().StringVar(&genPostingText, "posting-text", "", "Inline job posting text (mutually exclusive with --posting-file)")
	generateCommand.Flags().StringVar(&genResumeFile, "resume-file", "", "Path to a prior resume (pdf, docx, txt, md)")
	generateCommand.Flags().StringVar(&genAdditions, "additions", "", "Extra candidate-supplied facts passed to synthesis verbatim")
	generateCommand.Flags().StringVarP(&genOut, "out", "o", "resume.json", "Path to write the document JSON")
	generateCommand.Flags().StringVar(&genContextOut, "context-out", "", "Path to write the frozen context JSON (optional)")
	generateCommand.Flags().IntVar(&genTimeout, "timeout", 0, "Collection budget in seconds (default 120)")
	generateCommand.Flags().BoolVar(&genNoBrowser, "no-browser", false, "Disable headless browser rendering for portfolio sites")
	generateCommand.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print boxed context and document summaries")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	generateCommand.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run persistence
	generateCommand.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(generateCommand)
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if genConfigPath != "" {
		loadedCfg, err := config.LoadConfig(genConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if genVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", genConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("profile-url") {
		cfg.ProfileURL = genProfileURL
	}
	if cmd.Flags().Changed("portfolio-url") {
		cfg.PortfolioURL = genPortfolioURL
	}
	if cmd.Flags().Changed("posting-file") {
		cfg.PostingFile = genPostingFile
	}
	if cmd.Flags().Changed("posting-text") {
		cfg.PostingText = genPostingText
	}
	if cmd.Flags().Changed("resume-file") {
		cfg.ResumeFile = genResumeFile
	}
	if cmd.Flags().Changed("additions") {
		cfg.Additions = genAdditions
	}
	if cmd.Flags().Changed("timeout") {
		cfg.CollectTimeoutSeconds = genTimeout
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}

	// Step 3: Apply defaults and validate
	cfg = cfg.MergeWithDefaults(config.Config{})
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: API key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	req, err := sourceRequest(cfg)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	// Optional run persistence
	var store pipeline.Store
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = database
	}

	orch := pipeline.New(
		contextBuilder(ctx, client, cfg, !genNoBrowser),
		synthesis.NewSynthesizer(client),
		pipeline.Options{
			CollectTimeout: cfg.CollectTimeout(),
			Store:          store,
		},
	)

	printer := observability.NewPrinter(os.Stdout)
	result, err := orch.Generate(ctx, req, func(event pipeline.ProgressEvent) {
		printer.PrintProgress(event.State, event.Message)
	})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer.PrintContext(result.Context)
		printer.PrintDocument(result.Document, result.Version)
	}

	if genContextOut != "" {
		if err := writeJSON(genContextOut, result.Context); err != nil {
			return fmt.Errorf("failed to write context: %w", err)
		}
		fmt.Printf("Context written to %s\n", genContextOut)
	}
	if err := writeJSON(genOut, result.Document); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Document written to %s\n", genOut)

	if store != nil {
		fmt.Printf("Run %s persisted; refine it with: resume_pipeline refine --run %s --notes \"...\"\n",
			result.RunID, result.RunID)
	}
	return nil
}

// contextBuilder wires the four adapters behind the keyword extractor.
func contextBuilder(ctx context.Context, client llm.Client, cfg config.Config, useBrowser bool) *aggregate.Builder {
	portfolio := sources.NewPortfolioAdapter(0)
	portfolio.UseBrowser = useBrowser
	portfolio.Verbose = cfg.Verbose

	var objectStore sources.ObjectStore
	if cfg.Storage.Configured() {
		s3Store, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: object store unavailable: %v\n", err)
		} else {
			objectStore = s3Store
		}
	}

	return aggregate.NewBuilder(
		keywords.NewExtractor(client),
		sources.NewProfileAdapter(os.Getenv("GITHUB_TOKEN"), cfg.RetryPolicy()),
		portfolio,
		sources.NewPostingAdapter(),
		sources.NewDocumentAdapter(objectStore),
	)
}

// sourceRequest maps the merged config onto a pipeline request, reading the
// posting file when one was given.
func sourceRequest(cfg config.Config) (types.SourceRequest, error) {
	req := types.SourceRequest{
		ProfileURL:   cfg.ProfileURL,
		PortfolioURL: cfg.PortfolioURL,
		PostingText:  cfg.PostingText,
		ResumeFile:   cfg.ResumeFile,
		Additions:    cfg.Additions,
	}
	if cfg.PostingFile != "" {
		data, err := os.ReadFile(cfg.PostingFile)
		if err != nil {
			return types.SourceRequest{}, fmt.Errorf("failed to read posting file: %w", err)
		}
		req.PostingText = string(data)
	}
	if req.Empty() {
		return types.SourceRequest{}, fmt.Errorf("no sources supplied; provide at least one of --profile-url, --portfolio-url, --posting-file/--posting-text, or --resume-file")
	}
	return req, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
