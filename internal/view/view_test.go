package view

import (
	"context"
	"strings"
	"testing"

	"github.com/user/docsight/internal/source"
	"github.com/user/docsight/internal/storage"
	"github.com/user/docsight/internal/types"
)

func newStore(t *testing.T) *storage.Adapter {
	t.Helper()
	adapter, err := storage.New(storage.NewMemoryBackend(), 0)
	if err != nil {
		t.Fatal(err)
	}
	return adapter
}

func completedSession() *types.Session {
	return &types.Session{
		ID:              "s1",
		Source:          types.SourceContent{InlineText: "Photosynthesis converts light energy..."},
		Interpretation:  "Plants turn light into chemical energy.",
		Recommendations: []string{"Review the Calvin cycle"},
		DiagramPrefs:    []types.DiagramType{types.DiagramMindMap, types.DiagramTable},
		Diagrams: map[types.DiagramType]types.DiagramPayload{
			types.DiagramMindMap: {Markup: "root[Photosynthesis] --> a[Light reactions]"},
		},
	}
}

func TestHydrateNilSession(t *testing.T) {
	v := Hydrate(context.Background(), nil, nil, false)
	if !v.Empty {
		t.Fatal("expected empty view")
	}
	if out := v.Render(80); !strings.Contains(out, "no session") {
		t.Errorf("empty view should say so: %q", out)
	}
}

func TestHydrateCompletedSession(t *testing.T) {
	v := Hydrate(context.Background(), completedSession(), newStore(t), false)

	if v.Source.Body != "Photosynthesis converts light energy..." {
		t.Errorf("unexpected source body: %q", v.Source.Body)
	}
	if v.Interpretation.Body != "Plants turn light into chemical energy." {
		t.Errorf("unexpected interpretation: %q", v.Interpretation.Body)
	}
	if len(v.Diagrams) != 2 {
		t.Fatalf("expected 2 diagram panes, got %d", len(v.Diagrams))
	}
	if v.Diagrams[0].Type != types.DiagramMindMap || v.Diagrams[0].Placeholder {
		t.Error("mind map should render from its stored markup")
	}
	if v.Diagrams[1].Type != types.DiagramTable || !v.Diagrams[1].Placeholder {
		t.Error("requested table without a payload should be a placeholder")
	}
}

func TestHydrateUnrequestedTypesShowNothing(t *testing.T) {
	sess := completedSession()
	v := Hydrate(context.Background(), sess, newStore(t), false)
	for _, artifact := range v.Diagrams {
		if artifact.Type == types.DiagramFlowChart || artifact.Type == types.DiagramStatChart {
			t.Errorf("type %s was never requested but got a pane", artifact.Type)
		}
	}
}

func TestHydratePendingWording(t *testing.T) {
	sess := completedSession()
	v := Hydrate(context.Background(), sess, newStore(t), true)
	if !strings.Contains(v.Diagrams[1].Body, "generating") {
		t.Errorf("in-flight placeholder should read as pending: %q", v.Diagrams[1].Body)
	}
	v = Hydrate(context.Background(), sess, newStore(t), false)
	if !strings.Contains(v.Diagrams[1].Body, "unavailable") {
		t.Errorf("settled placeholder should read as unavailable: %q", v.Diagrams[1].Body)
	}
}

func TestHydrateIsIdempotent(t *testing.T) {
	store := newStore(t)
	sess := completedSession()
	first := Hydrate(context.Background(), sess, store, false).Render(80)
	second := Hydrate(context.Background(), sess, store, false).Render(80)
	if first != second {
		t.Error("hydrating twice must yield an identical view")
	}
}

func TestHydrateDocumentWithBlob(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	n := &source.Normalized{
		Blob:     []byte("# Notes\nsome markdown"),
		MimeType: "text/markdown",
		Filename: "notes.md",
		Text:     "# Notes\nsome markdown",
	}
	if err := source.SaveBlob(ctx, store, n); err != nil {
		t.Fatal(err)
	}

	sess := completedSession()
	sess.Source = n.SourceContent()

	v := Hydrate(ctx, sess, store, false)
	if !strings.Contains(v.Source.Title, "notes.md") {
		t.Errorf("document pane should carry the filename: %q", v.Source.Title)
	}
	if !strings.Contains(v.Source.Body, "some markdown") {
		t.Errorf("document pane should show the extracted text: %q", v.Source.Body)
	}
}

func TestHydrateEvictedBlobDegrades(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	sess := completedSession()
	sess.Source = types.SourceContent{Document: &types.DocumentRef{
		BlobKey:   storage.KeySessionBlob,
		MimeType:  "application/pdf",
		Filename:  "report.pdf",
		SizeBytes: 5000,
	}}

	v := Hydrate(ctx, sess, store, false)
	if !strings.Contains(v.Source.Body, "no longer stored") {
		t.Errorf("evicted blob should degrade to a note: %q", v.Source.Body)
	}
	if v.Interpretation.Body != sess.Interpretation {
		t.Error("interpretation must survive blob eviction")
	}
	if len(v.Diagrams) != 2 {
		t.Error("diagram panes must survive blob eviction")
	}
}

func TestHydrateEvictedBlobFallsBackToExtractedText(t *testing.T) {
	store := newStore(t)

	sess := completedSession()
	sess.Source = types.SourceContent{
		InlineText: "# Notes\nextracted markdown",
		Document: &types.DocumentRef{
			BlobKey:  storage.KeySessionBlob,
			MimeType: "text/html",
			Filename: "notes.html",
		},
	}

	v := Hydrate(context.Background(), sess, store, false)
	if !strings.Contains(v.Source.Body, "extracted markdown") {
		t.Errorf("extracted text should survive blob eviction: %q", v.Source.Body)
	}
}

func TestRenderContainsAllSections(t *testing.T) {
	out := Hydrate(context.Background(), completedSession(), newStore(t), false).Render(100)
	for _, want := range []string{
		"Original",
		"Interpretation",
		"Recommendations",
		"Review the Calvin cycle",
		"Mind Map",
		"Table",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered view missing %q", want)
		}
	}
}
