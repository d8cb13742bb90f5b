package export

import (
	"fmt"
	"io"

	"github.com/user/docsight/internal/types"
)

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(session *types.Session, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, yaml)", format)
	}
}
