// Package docstore adapts the durable document store: a directory tree with
// one folder per case, read by the indexing pipeline.
package docstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rsc.io/pdf"

	"github.com/dossierr/case-assistant/internal/model"
	"github.com/dossierr/case-assistant/internal/util"
)

// FSStore reads case documents from <root>/<case_id>/. Supported formats are
// plain text (.txt, .md) and PDF.
type FSStore struct {
	root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

// List fetches every readable document under the case's folder. A case with
// no folder yet simply has no documents.
func (s *FSStore) List(ctx context.Context, caseID string) ([]model.Document, error) {
	dir := filepath.Join(s.root, caseID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("docstore: list case %s: %w", caseID, err)
	}

	var docs []model.Document
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var text string
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("docstore: skipping %s: %v", path, err)
				continue
			}
			text = string(data)
		case ".pdf":
			text, err = extractPDF(path)
			if err != nil {
				// one bad upload must not block reindexing the whole case
				log.Printf("docstore: skipping %s: %v", path, err)
				continue
			}
		default:
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, model.Document{Source: e.Name(), Content: text})
	}
	return docs, nil
}

// Put saves an uploaded file into the case's folder under a timestamped name
// and returns that name. Only the upload endpoint writes here; indexing treats
// the store as read-only.
func (s *FSStore) Put(ctx context.Context, caseID, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, caseID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("docstore: prepare case %s: %w", caseID, err)
	}
	name := util.Timestamped(filepath.Base(filename))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("docstore: save %s: %w", name, err)
	}
	return name, nil
}

func extractPDF(path string) (text string, err error) {
	// rsc.io/pdf panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, t := range p.Content().Text {
			sb.WriteString(strings.ReplaceAll(t.S, "\x00", ""))
		}
		sb.WriteString("\n")
	}
	return sanitize(sb.String()), nil
}

// sanitize collapses the ragged whitespace PDF extraction produces.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.Join(strings.Fields(s), " ")
}
