package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/docsight/internal/types"
)

func sampleSession() *types.Session {
	return &types.Session{
		ID:              "s1",
		Source:          types.SourceContent{InlineText: "Photosynthesis converts light energy..."},
		Interpretation:  "Plants turn light into sugar.",
		Recommendations: []string{"Read about chlorophyll"},
		Diagrams: map[types.DiagramType]types.DiagramPayload{
			types.DiagramMindMap: {Markup: "root[Photosynthesis] --> a[Light]"},
		},
		DiagramPrefs: []types.DiagramType{types.DiagramMindMap},
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range []string{"md", "markdown", "yaml"} {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("expected exporter for %s: %v", format, err)
		}
	}
	if _, err := NewExporter("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleSession(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Interpretation s1",
		"## Original",
		"## Interpretation",
		"Plants turn light into sugar.",
		"- Read about chlorophyll",
		"## Mind Map",
		"root[Photosynthesis]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestYAMLExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleSession(), &buf); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	if decoded["interpretation"] != "Plants turn light into sugar." {
		t.Errorf("unexpected decoded interpretation: %v", decoded["interpretation"])
	}
}
