package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/user/docsight/internal/storage"
)

func TestFromText(t *testing.T) {
	n, err := FromText("  Photosynthesis converts light energy...  ")
	if err != nil {
		t.Fatal(err)
	}
	if !n.Inline {
		t.Error("expected inline source")
	}
	if n.Text != "Photosynthesis converts light energy..." {
		t.Errorf("unexpected text: %q", n.Text)
	}
	if sc := n.SourceContent(); sc.IsDocument() {
		t.Error("inline source must not carry a document ref")
	}

	if _, err := FromText("   "); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestFromFileHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<html><body><h1>Title</h1><p>Body text.</p></body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n.Inline {
		t.Error("file source must not be inline")
	}
	if !strings.Contains(n.Text, "Title") || !strings.Contains(n.Text, "Body text.") {
		t.Errorf("expected markdown conversion, got %q", n.Text)
	}
	sc := n.SourceContent()
	if !sc.IsDocument() {
		t.Fatal("expected document ref")
	}
	if sc.Document.BlobKey != storage.KeySessionBlob {
		t.Errorf("unexpected blob key: %s", sc.Document.BlobKey)
	}
	if sc.Document.Filename != "page.html" {
		t.Errorf("unexpected filename: %s", sc.Document.Filename)
	}
}

func TestFromFileBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n.Text != "" {
		t.Error("binary document should not produce inline text")
	}
	if len(n.Blob) == 0 {
		t.Error("binary document must keep its bytes")
	}
	if n.MimeType != "application/pdf" {
		t.Errorf("unexpected mime type: %s", n.MimeType)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	adapter, err := storage.New(storage.NewMemoryBackend(), 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	n := &Normalized{Blob: []byte{0x25, 0x50, 0x44, 0x46}, MimeType: "application/pdf", Filename: "doc.pdf"}
	if err := SaveBlob(ctx, adapter, n); err != nil {
		t.Fatal(err)
	}

	record, ok := LoadBlob(ctx, adapter)
	if !ok {
		t.Fatal("expected blob to load")
	}
	if record.Filename != "doc.pdf" || len(record.Data) != 4 {
		t.Errorf("unexpected record: %+v", record)
	}

	// Inline submissions write nothing.
	inline := &Normalized{Text: "text", Inline: true}
	if err := adapter.Remove(ctx, storage.KeySessionBlob); err != nil {
		t.Fatal(err)
	}
	if err := SaveBlob(ctx, adapter, inline); err != nil {
		t.Fatal(err)
	}
	if _, ok := LoadBlob(ctx, adapter); ok {
		t.Error("inline submission must not store a blob")
	}
}

func TestDisplayNameTruncatesOnRunes(t *testing.T) {
	n := &Normalized{Filename: "doc.pdf"}
	if n.DisplayName() != "doc.pdf" {
		t.Errorf("expected filename, got %q", n.DisplayName())
	}

	long := strings.Repeat("光合成はエネルギー変換", 10)
	n = &Normalized{Text: long, Inline: true}
	name := n.DisplayName()
	if !utf8.ValidString(name) {
		t.Errorf("truncation split a rune: %q", name)
	}
	if got := utf8.RuneCountInString(name); got != 41 {
		t.Errorf("expected 40 runes plus ellipsis, got %d", got)
	}

	short := &Normalized{Text: "short text", Inline: true}
	if short.DisplayName() != "short text" {
		t.Errorf("short text should pass through: %q", short.DisplayName())
	}
}

func TestBudget(t *testing.T) {
	budget, err := NewBudget(5)
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}

	if err := budget.Check("short"); err != nil {
		t.Errorf("short text should pass: %v", err)
	}

	long := strings.Repeat("photosynthesis energy conversion ", 20)
	err = budget.Check(long)
	if err == nil {
		t.Fatal("expected TooLargeError")
	}
	if !strings.Contains(err.Error(), "smaller document") {
		t.Errorf("error should suggest a smaller document: %v", err)
	}
}
