package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/types"
)

var probeCommand = &cobra.Command{
	Use:   "probe <profile|portfolio|job_posting|prior_resume>",
	Short: "Run a single source adapter and print its settled result",
	Long: `Runs one adapter against the supplied reference and prints the SourceResult
as JSON. Useful for checking a source before spending a full generation pass
on it. No LLM call is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbeCmd,
}

var (
	probeProfileURL   string
	probePortfolioURL string
	probePostingFile  string
	probePostingText  string
	probeResumeFile   string
	probeTimeout      int
	probeNoBrowser    bool
	probeVerbose      bool
)

func init() {
	probeCommand.Flags().StringVar(&probeProfileURL, "profile-url", "", "Code-hosting profile URL")
	probeCommand.Flags().StringVar(&probePortfolioURL, "portfolio-url", "", "Portfolio site URL")
	probeCommand.Flags().StringVarP(&probePostingFile, "posting-file", "j", "", "Path to job posting text file")
	probeCommand.Flags().StringVar(&probePostingText, "posting-text", "", "Inline job posting text")
	probeCommand.Flags().StringVar(&probeResumeFile, "resume-file", "", "Path to a prior resume (pdf, docx, txt, md)")
	probeCommand.Flags().IntVar(&probeTimeout, "timeout", 60, "Extraction budget in seconds")
	probeCommand.Flags().BoolVar(&probeNoBrowser, "no-browser", false, "Disable headless browser rendering for portfolio sites")
	probeCommand.Flags().BoolVarP(&probeVerbose, "verbose", "v", false, "Print detailed fetch information")

	rootCmd.AddCommand(probeCommand)
}

func runProbeCmd(_ *cobra.Command, args []string) error {
	kind := types.SourceKind(args[0])

	adapter, err := probeAdapter(kind)
	if err != nil {
		return err
	}

	req := types.SourceRequest{
		ProfileURL:   probeProfileURL,
		PortfolioURL: probePortfolioURL,
		PostingText:  probePostingText,
		ResumeFile:   probeResumeFile,
	}
	if probePostingFile != "" {
		data, err := os.ReadFile(probePostingFile)
		if err != nil {
			return fmt.Errorf("failed to read posting file: %w", err)
		}
		req.PostingText = string(data)
	}
	if !req.Wants(kind) {
		return fmt.Errorf("no reference supplied for %s; see --help for the matching flag", kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(probeTimeout)*time.Second)
	defer cancel()

	result := adapter.Extract(ctx, req)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(data))

	if result.Status == types.StatusFailed {
		os.Exit(1)
	}
	return nil
}

func probeAdapter(kind types.SourceKind) (sources.Adapter, error) {
	switch kind {
	case types.KindProfile:
		return sources.NewProfileAdapter(os.Getenv("GITHUB_TOKEN"), sources.DefaultRetryPolicy()), nil
	case types.KindPortfolio:
		adapter := sources.NewPortfolioAdapter(0)
		adapter.UseBrowser = !probeNoBrowser
		adapter.Verbose = probeVerbose
		return adapter, nil
	case types.KindJobPosting:
		return sources.NewPostingAdapter(), nil
	case types.KindPriorResume:
		return sources.NewDocumentAdapter(nil), nil
	}
	return nil, fmt.Errorf("unknown source kind %q; expected profile, portfolio, job_posting, or prior_resume", kind)
}
