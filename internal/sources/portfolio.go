package sources

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/resume-pipeline/internal/fetch"
	"github.com/jonathan/resume-pipeline/internal/types"
)

// DefaultRenderTimeout is the wall-clock ceiling for rendering a portfolio
// page. A page that cannot settle inside it fails; it never holds the run.
const DefaultRenderTimeout = 20 * time.Second

// PortfolioAdapter extracts the visible text of a portfolio page. The
// primary path renders with a headless browser so client-side sites work;
// with the browser disabled it degrades to a static fetch plus selector
// extraction.
type PortfolioAdapter struct {
	RenderTimeout time.Duration
	UseBrowser    bool
	Verbose       bool
	FetchOptions  *fetch.Options
}

// NewPortfolioAdapter creates a portfolio adapter with the browser enabled.
func NewPortfolioAdapter(renderTimeout time.Duration) *PortfolioAdapter {
	if renderTimeout <= 0 {
		renderTimeout = DefaultRenderTimeout
	}
	return &PortfolioAdapter{
		RenderTimeout: renderTimeout,
		UseBrowser:    true,
	}
}

// Kind reports the source kind this adapter serves.
func (a *PortfolioAdapter) Kind() types.SourceKind { return types.KindPortfolio }

// Extract renders the portfolio URL and returns its text. An empty page is
// absent; a render error or blown ceiling is failed with the reason recorded.
func (a *PortfolioAdapter) Extract(ctx context.Context, req types.SourceRequest) types.SourceResult {
	pageURL := req.PortfolioURL

	var text string
	var err error
	if a.UseBrowser {
		text, err = fetch.RenderText(ctx, pageURL, a.RenderTimeout, a.Verbose)
	} else {
		text, err = a.extractStatic(ctx, pageURL)
	}

	if err != nil {
		message := "extracting page text"
		if errors.Is(err, context.DeadlineExceeded) {
			message = fmt.Sprintf("render timed out after %s", a.RenderTimeout)
		}
		return types.FailedSource(types.KindPortfolio, &SourceError{
			Kind: types.KindPortfolio, Message: message, Cause: err,
		})
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return types.AbsentSource(types.KindPortfolio)
	}

	return types.PresentPortfolio(&types.PortfolioPayload{
		URL:   pageURL,
		Text:  text,
		Chars: len(text),
	})
}

// extractStatic fetches the page without a browser and extracts text with
// platform-aware selectors. The render ceiling still applies.
func (a *PortfolioAdapter) extractStatic(ctx context.Context, pageURL string) (string, error) {
	timeout := a.RenderTimeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := fetch.URL(ctx, pageURL, a.FetchOptions)
	if err != nil {
		return "", err
	}

	platform := fetch.DetectPlatform(pageURL)
	text, err := fetch.ExtractMainText(result.HTML,
		fetch.PlatformContentSelectors(platform),
		fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return "", err
	}

	if fetch.ShouldUseBrowser(text) {
		log.Printf("[PORTFOLIO] static extraction got %d chars from %s; page may need browser rendering", len(strings.TrimSpace(text)), pageURL)
	}
	return text, nil
}
