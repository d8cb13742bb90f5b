package render

import (
	"fmt"

	"github.com/user/docsight/internal/types"
)

// Artifact is a renderable diagram pane. A Placeholder artifact stands
// in for a diagram that failed to parse or render; failures never
// escape the renderer and never affect sibling diagrams.
type Artifact struct {
	Type        types.DiagramType
	Title       string
	Body        string
	Placeholder bool
}

// Titles for the diagram panes.
var titles = map[types.DiagramType]string{
	types.DiagramMindMap:   "Mind Map",
	types.DiagramFlowChart: "Flow Chart",
	types.DiagramTable:     "Table",
	types.DiagramStatChart: "Statistics",
}

// Title returns the display title for a diagram type.
func Title(t types.DiagramType) string {
	if title, ok := titles[t]; ok {
		return title
	}
	return string(t)
}

// Diagram renders markup for one diagram type. It is pure: the same
// payload always yields the same artifact, with no network access, so
// hydration from storage re-renders identically.
func Diagram(t types.DiagramType, markup string) Artifact {
	body, err := renderBody(t, markup)
	if err != nil {
		return Placeholder(t, fmt.Sprintf("diagram could not be rendered: %v", err))
	}
	return Artifact{Type: t, Title: Title(t), Body: body}
}

// Placeholder builds the stand-in pane shown for a requested diagram
// that is pending, failed, or unavailable.
func Placeholder(t types.DiagramType, note string) Artifact {
	return Artifact{
		Type:        t,
		Title:       Title(t),
		Body:        placeholderStyle.Render(note),
		Placeholder: true,
	}
}

func renderBody(t types.DiagramType, markup string) (string, error) {
	switch t {
	case types.DiagramTable:
		return renderTable(markup)
	case types.DiagramMindMap:
		graph, err := parseGraph(markup)
		if err != nil {
			return "", err
		}
		return renderMindMap(graph)
	case types.DiagramFlowChart:
		graph, err := parseGraph(markup)
		if err != nil {
			return "", err
		}
		return renderFlowChart(graph)
	case types.DiagramStatChart:
		graph, err := parseGraph(markup)
		if err != nil {
			return "", err
		}
		return renderStatChart(graph)
	}
	return "", fmt.Errorf("unknown diagram type %q", t)
}
