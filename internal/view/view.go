package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/docsight/internal/render"
	"github.com/user/docsight/internal/source"
	"github.com/user/docsight/internal/types"
)

// Panel is one titled region of the assembled view.
type Panel struct {
	Title string
	Body  string
}

// View is the fully hydrated presentation of a session. Hydration is a
// pure function of the session record and the blob store: running it
// twice over the same inputs yields the same view, so it is safe to
// call on every reload.
type View struct {
	Empty           bool
	Source          Panel
	Interpretation  Panel
	Recommendations []string
	Diagrams        []render.Artifact
}

// Hydrate assembles the view for a session. generating selects the
// placeholder wording for requested diagram slots that have no payload
// yet: pending while the pipeline is still producing them, unavailable
// once it has settled. A nil session yields the empty view.
func Hydrate(ctx context.Context, sess *types.Session, store types.Store, generating bool) *View {
	if sess == nil {
		return &View{Empty: true}
	}

	v := &View{
		Source:          sourcePanel(ctx, sess, store),
		Recommendations: sess.Recommendations,
	}

	if sess.HasInterpretation() {
		v.Interpretation = Panel{Title: "Interpretation", Body: sess.Interpretation}
	} else {
		v.Interpretation = Panel{Title: "Interpretation", Body: "waiting for interpretation"}
	}

	note := "diagram unavailable"
	if generating {
		note = "generating…"
	}
	for _, dt := range types.AllDiagramTypes() {
		if !requested(sess.DiagramPrefs, dt) {
			continue
		}
		if payload, ok := sess.Diagrams[dt]; ok {
			v.Diagrams = append(v.Diagrams, render.Diagram(dt, payload.Markup))
		} else {
			v.Diagrams = append(v.Diagrams, render.Placeholder(dt, note))
		}
	}
	return v
}

// sourcePanel shows the original submission. Inline text is always
// recoverable from the session record; a document needs its blob, and
// an evicted blob degrades to a note while the rest of the view stays
// intact.
func sourcePanel(ctx context.Context, sess *types.Session, store types.Store) Panel {
	if !sess.Source.IsDocument() {
		return Panel{Title: "Original", Body: sess.Source.InlineText}
	}

	doc := sess.Source.Document
	title := fmt.Sprintf("Original: %s", doc.Filename)
	if store != nil {
		if blob, ok := source.LoadBlob(ctx, store); ok {
			return Panel{Title: title, Body: documentBody(doc, blob, sess.Source.InlineText)}
		}
	}
	// The blob was evicted. Extracted text on the session record is
	// still good; only opaque documents lose their pane.
	if sess.Source.InlineText != "" {
		return Panel{Title: title, Body: sess.Source.InlineText}
	}
	return Panel{
		Title: title,
		Body:  "original document is no longer stored; the interpretation below is unaffected",
	}
}

// documentBody prefers the extracted text when the submission produced
// one, falling back to a byte summary for opaque formats.
func documentBody(doc *types.DocumentRef, blob *source.BlobRecord, extracted string) string {
	if extracted != "" {
		return extracted
	}
	if strings.HasPrefix(doc.MimeType, "text/") {
		return string(blob.Data)
	}
	return fmt.Sprintf("%s document, %d bytes stored", doc.MimeType, len(blob.Data))
}

func requested(prefs []types.DiagramType, dt types.DiagramType) bool {
	for _, p := range prefs {
		if p == dt {
			return true
		}
	}
	return false
}
