package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/user/docsight/internal/types"
)

// YAMLExporter exports sessions in YAML format.
type YAMLExporter struct{}

// Export writes the session as YAML.
func (e *YAMLExporter) Export(session *types.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(session)
}

// Extension returns the file extension for this format.
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
