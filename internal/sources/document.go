package sources

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// ObjectStore resolves an uploaded document by key. Implemented by the
// storage package; nil when the deployment has no object store.
type ObjectStore interface {
	Fetch(ctx context.Context, key string) (data []byte, filename string, err error)
}

// DocumentAdapter extracts plain text from a prior resume document. Supported
// formats are PDF, DOCX, and plain text/markdown; anything else fails rather
// than silently vanishing, so the caller learns the document was unreadable.
type DocumentAdapter struct {
	Store ObjectStore
}

// NewDocumentAdapter creates a document adapter. store may be nil.
func NewDocumentAdapter(store ObjectStore) *DocumentAdapter {
	return &DocumentAdapter{Store: store}
}

// Kind reports the source kind this adapter serves.
func (a *DocumentAdapter) Kind() types.SourceKind { return types.KindPriorResume }

// Extract resolves the document bytes (inline, local file, or object store)
// and extracts their text. A document that parses to nothing is absent; an
// unsupported or corrupt one is failed.
func (a *DocumentAdapter) Extract(ctx context.Context, req types.SourceRequest) types.SourceResult {
	data, filename, err := a.resolve(ctx, req)
	if err != nil {
		return types.FailedSource(types.KindPriorResume, &SourceError{
			Kind: types.KindPriorResume, Message: "loading document", Cause: err,
		})
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var text string
	var pages int
	switch ext {
	case ".pdf":
		text, pages, err = extractPDFText(data)
	case ".docx":
		text, err = extractDocxText(data)
	case ".txt", ".md":
		text = string(data)
	default:
		return types.FailedSource(types.KindPriorResume, &SourceError{
			Kind:    types.KindPriorResume,
			Message: fmt.Sprintf("unsupported format %q (want .pdf, .docx, .txt, or .md)", ext),
		})
	}
	if err != nil {
		return types.FailedSource(types.KindPriorResume, &SourceError{
			Kind: types.KindPriorResume, Message: fmt.Sprintf("extracting text from %s", filename), Cause: err,
		})
	}

	text = CleanText(text)
	if text == "" {
		return types.AbsentSource(types.KindPriorResume)
	}

	return types.PresentDocument(&types.DocumentPayload{
		Filename: filepath.Base(filename),
		Format:   strings.TrimPrefix(ext, "."),
		Text:     text,
		Pages:    pages,
	})
}

func (a *DocumentAdapter) resolve(ctx context.Context, req types.SourceRequest) ([]byte, string, error) {
	switch {
	case len(req.ResumeData) > 0:
		name := req.ResumeFilename
		if name == "" {
			return nil, "", fmt.Errorf("inline document has no filename")
		}
		return req.ResumeData, name, nil

	case req.ResumeFile != "":
		data, err := os.ReadFile(req.ResumeFile)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", req.ResumeFile, err)
		}
		return data, req.ResumeFile, nil

	case req.ResumeKey != "":
		if a.Store == nil {
			return nil, "", fmt.Errorf("document key %q given but no object store configured", req.ResumeKey)
		}
		data, name, err := a.Store.Fetch(ctx, req.ResumeKey)
		if err != nil {
			return nil, "", fmt.Errorf("fetching %s from object store: %w", req.ResumeKey, err)
		}
		if name == "" {
			name = req.ResumeKey
		}
		return data, name, nil
	}
	return nil, "", fmt.Errorf("no document supplied")
}

// extractPDFText pulls plain text from every page, joined by blank lines.
func extractPDFText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf: %w", err)
	}

	total := reader.NumPage()
	var pageTexts []string
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		pageTexts = append(pageTexts, text)
	}
	return strings.Join(pageTexts, "\n\n"), total, nil
}

// extractDocxText parses a DOCX archive and strips the document markup.
func extractDocxText(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = reader.Close() }()

	return stripMarkup(reader.Editable().GetContent()), nil
}
