package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-pipeline/internal/aggregate"
	"github.com/jonathan/resume-pipeline/internal/db"
	"github.com/jonathan/resume-pipeline/internal/keywords"
	"github.com/jonathan/resume-pipeline/internal/llm"
	"github.com/jonathan/resume-pipeline/internal/observability"
	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/synthesis"
	"github.com/jonathan/resume-pipeline/internal/types"
)

var refineCommand = &cobra.Command{
	Use:   "refine",
	Short: "Revise a generated document with feedback",
	Long: `Runs one feedback cycle over an existing run. The frozen context and the
prior document are reused; no source is ever re-extracted.

Address a persisted run with --run, or work from files written by
generate --context-out/--out using --context and --document.`,
	RunE: runRefineCmd,
}

var (
	refineRunID     string
	refineContext   string
	refineDocument  string
	refineNotes     string
	refineAdditions string
	refineOut       string
	refineAPIKey    string
	refineDBURL     string
	refineVerbose   bool
)

func init() {
	refineCommand.Flags().StringVar(&refineRunID, "run", "", "Run ID of a persisted run (requires a database)")
	refineCommand.Flags().StringVar(&refineContext, "context", "", "Path to a context JSON file (alternative to --run)")
	refineCommand.Flags().StringVar(&refineDocument, "document", "", "Path to the prior document JSON file (used with --context)")
	refineCommand.Flags().StringVar(&refineNotes, "notes", "", "Revision guidance for the synthesizer")
	refineCommand.Flags().StringVar(&refineAdditions, "additions", "", "Extra candidate-supplied facts for this cycle")
	refineCommand.Flags().StringVarP(&refineOut, "out", "o", "resume.json", "Path to write the revised document JSON")
	refineCommand.Flags().StringVar(&refineAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	refineCommand.Flags().StringVar(&refineDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	refineCommand.Flags().BoolVarP(&refineVerbose, "verbose", "v", false, "Print a boxed summary of the revised document")

	rootCmd.AddCommand(refineCommand)
}

func runRefineCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if refineRunID == "" && refineContext == "" {
		return fmt.Errorf("either --run or --context/--document must be provided")
	}
	if refineRunID != "" && refineContext != "" {
		return fmt.Errorf("--run and --context are mutually exclusive; provide only one")
	}

	fb := types.FeedbackRequest{Notes: refineNotes, Additions: refineAdditions}
	if err := fb.Validate(); err != nil {
		return fmt.Errorf("at least one of --notes or --additions is required")
	}

	apiKey := refineAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	printer := observability.NewPrinter(os.Stdout)
	onProgress := func(event pipeline.ProgressEvent) {
		printer.PrintProgress(event.State, event.Message)
	}

	if refineRunID != "" {
		return refinePersistedRun(ctx, client, fb, onProgress, printer)
	}
	return refineFromFiles(ctx, client, fb, onProgress, printer)
}

// refinePersistedRun loads the run from the store and appends a new version.
func refinePersistedRun(ctx context.Context, client llm.Client, fb types.FeedbackRequest, onProgress pipeline.ProgressCallback, printer *observability.Printer) error {
	runID, err := uuid.Parse(refineRunID)
	if err != nil {
		return fmt.Errorf("invalid run ID format: %w", err)
	}

	databaseURL := refineDBURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required with --run")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	orch := pipeline.New(
		aggregate.NewBuilder(keywords.NewExtractor(client)),
		synthesis.NewSynthesizer(client),
		pipeline.Options{Store: database},
	)

	result, err := orch.RefineRun(ctx, runID, fb, onProgress)
	if err != nil {
		return err
	}

	if refineVerbose {
		printer.PrintDocument(result.Document, result.Version)
	}
	if err := writeJSON(refineOut, result.Document); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Document v%d written to %s\n", result.Version, refineOut)
	return nil
}

// refineFromFiles revises a document from context and document files, with no
// database involved.
func refineFromFiles(ctx context.Context, client llm.Client, fb types.FeedbackRequest, onProgress pipeline.ProgressCallback, printer *observability.Printer) error {
	if refineDocument == "" {
		return fmt.Errorf("--document is required with --context")
	}

	var sc types.SharedContext
	if err := readJSON(refineContext, &sc); err != nil {
		return fmt.Errorf("failed to read context file: %w", err)
	}
	var prior types.ResumeDocument
	if err := readJSON(refineDocument, &prior); err != nil {
		return fmt.Errorf("failed to read document file: %w", err)
	}

	orch := pipeline.New(
		aggregate.NewBuilder(keywords.NewExtractor(client)),
		synthesis.NewSynthesizer(client),
		pipeline.Options{},
	)

	doc, err := orch.Refine(ctx, &sc, &prior, fb, onProgress)
	if err != nil {
		return err
	}

	if refineVerbose {
		printer.PrintDocument(doc, 0)
	}
	if err := writeJSON(refineOut, doc); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Revised document written to %s\n", refineOut)
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
