package export

import (
	"fmt"
	"io"

	"github.com/user/docsight/internal/render"
	"github.com/user/docsight/internal/types"
)

// MarkdownExporter exports sessions in Markdown format.
type MarkdownExporter struct{}

// Export writes the session as a readable Markdown report: source,
// interpretation, recommendations, then one section per diagram.
func (e *MarkdownExporter) Export(session *types.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Interpretation %s\n\n", session.ID)
	_, _ = fmt.Fprintf(w, "**Created:** %s\n\n", session.CreatedAt.Format("2006-01-02 15:04:05"))

	if session.Source.IsDocument() {
		doc := session.Source.Document
		_, _ = fmt.Fprintf(w, "**Document:** %s (%s, %d bytes)\n\n", doc.Filename, doc.MimeType, doc.SizeBytes)
	}

	if session.Source.InlineText != "" {
		_, _ = fmt.Fprintf(w, "## Original\n\n%s\n\n", session.Source.InlineText)
	}

	if session.Interpretation != "" {
		_, _ = fmt.Fprintf(w, "## Interpretation\n\n%s\n\n", session.Interpretation)
	}

	if len(session.Recommendations) > 0 {
		_, _ = fmt.Fprintf(w, "## Recommendations\n\n")
		for _, rec := range session.Recommendations {
			_, _ = fmt.Fprintf(w, "- %s\n", rec)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	for _, dt := range types.AllDiagramTypes() {
		payload, ok := session.Diagrams[dt]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "## %s\n\n```\n%s\n```\n\n", render.Title(dt), payload.Markup)
	}

	return nil
}

// Extension returns the file extension for this format.
func (e *MarkdownExporter) Extension() string {
	return "md"
}
