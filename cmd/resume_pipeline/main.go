// Package main provides the entry point for the resume pipeline CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_pipeline",
	Short: "Resume generation pipeline",
	Long:  "Resume pipeline collects evidence from a code-hosting profile, a portfolio site, a job posting, and a prior resume, freezes it into a shared context, and synthesizes a structured resume document with feedback-driven revision.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
