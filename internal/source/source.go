package source

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/docsight/internal/storage"
	"github.com/user/docsight/internal/types"
)

// Normalized is a submission-ready source: plain text for the backend
// plus, for document submissions, the raw bytes kept for the original
// pane.
type Normalized struct {
	Text     string
	Blob     []byte
	MimeType string
	Filename string
	Inline   bool
}

// FromText wraps pasted text.
func FromText(text string) (*Normalized, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("source text is empty")
	}
	return &Normalized{Text: text, Inline: true}, nil
}

// FromFile reads a document from disk. HTML is converted to markdown
// text, plain text passes through, and any other format is carried as
// an opaque blob for the backend's document parser.
func FromFile(path string) (*Normalized, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document is empty: %s", path)
	}

	mimeType := detectMime(path, data)
	n := &Normalized{
		Blob:     data,
		MimeType: mimeType,
		Filename: filepath.Base(path),
	}

	switch {
	case strings.Contains(mimeType, "html"):
		md, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return nil, fmt.Errorf("convert html document: %w", err)
		}
		n.Text = md
	case strings.HasPrefix(mimeType, "text/"), strings.Contains(mimeType, "json"):
		n.Text = string(data)
	}
	return n, nil
}

// SourceContent returns the session-model view of the source.
func (n *Normalized) SourceContent() types.SourceContent {
	if n.Inline {
		return types.SourceContent{InlineText: n.Text}
	}
	return types.SourceContent{
		InlineText: n.Text,
		Document: &types.DocumentRef{
			BlobKey:   storage.KeySessionBlob,
			MimeType:  n.MimeType,
			Filename:  n.Filename,
			SizeBytes: int64(len(n.Blob)),
		},
	}
}

// DisplayName is what the history log shows for this submission.
func (n *Normalized) DisplayName() string {
	if n.Filename != "" {
		return n.Filename
	}
	runes := []rune(n.Text)
	if len(runes) > 40 {
		return string(runes[:40]) + "…"
	}
	return n.Text
}

func detectMime(path string, data []byte) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return mt
	}
	mt := http.DetectContentType(data)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

// BlobRecord is the session.blob value. encoding/json base64-encodes
// Data, which keeps the stored form text-safe.
type BlobRecord struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// SaveBlob writes the document bytes under the blob key. Inline
// submissions store nothing.
func SaveBlob(ctx context.Context, store types.Store, n *Normalized) error {
	if n.Inline || len(n.Blob) == 0 {
		return nil
	}
	record := BlobRecord{Filename: n.Filename, MimeType: n.MimeType, Data: n.Blob}
	if err := store.Put(ctx, storage.KeySessionBlob, record); err != nil {
		return fmt.Errorf("store document blob: %w", err)
	}
	return nil
}

// LoadBlob retrieves the stored document, reporting absent when the
// blob was evicted or corrupt.
func LoadBlob(ctx context.Context, store types.Store) (*BlobRecord, bool) {
	var record BlobRecord
	ok, err := store.Get(ctx, storage.KeySessionBlob, &record)
	if err != nil || !ok || len(record.Data) == 0 {
		return nil, false
	}
	return &record, true
}
