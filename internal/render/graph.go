package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// graph is the parsed form of the backend's graph-description markup:
//
//	graph TD
//	a[Label A]
//	a --> b
//
// The DiagramType tag selects how the graph is drawn; the payload is
// never sniffed to pick a renderer.
type graph struct {
	order     []string
	labels    map[string]string
	children  map[string][]string
	hasParent map[string]bool
}

var nodeDefRe = regexp.MustCompile(`^(\w[\w-]*)\s*\[(.+)\]$`)

func parseGraph(markup string) (*graph, error) {
	g := &graph{
		labels:    make(map[string]string),
		children:  make(map[string][]string),
		hasParent: make(map[string]bool),
	}

	for _, line := range strings.Split(markup, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isGraphHeader(line) {
			continue
		}

		if from, to, ok := splitEdge(line); ok {
			g.touch(from)
			g.touch(to)
			g.children[from] = append(g.children[from], to)
			g.hasParent[to] = true
			continue
		}

		if m := nodeDefRe.FindStringSubmatch(line); m != nil {
			g.touch(m[1])
			g.labels[m[1]] = m[2]
		}
	}

	if len(g.order) == 0 {
		return nil, fmt.Errorf("no nodes in graph markup")
	}
	return g, nil
}

func isGraphHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "graph ") ||
		lower == "graph" || lower == "mindmap" || lower == "flowchart" ||
		strings.HasPrefix(lower, "flowchart ")
}

// splitEdge parses "a --> b" (or "a -> b"), where endpoints may carry
// inline node definitions like "a[Label]".
func splitEdge(line string) (from, to string, ok bool) {
	sep := "-->"
	if !strings.Contains(line, sep) {
		sep = "->"
		if !strings.Contains(line, sep) {
			return "", "", false
		}
	}
	parts := strings.SplitN(line, sep, 2)
	from = strings.TrimSpace(parts[0])
	to = strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}

// touch registers an endpoint, extracting an inline label when present.
func (g *graph) touch(token string) {
	id := token
	if m := nodeDefRe.FindStringSubmatch(token); m != nil {
		id = m[1]
		g.labels[id] = m[2]
	}
	if _, inOrder := g.indexOf(id); !inOrder {
		g.order = append(g.order, id)
	}
}

func (g *graph) indexOf(id string) (int, bool) {
	for i, o := range g.order {
		if o == id {
			return i, true
		}
	}
	return 0, false
}

func (g *graph) label(id string) string {
	if l, ok := g.labels[id]; ok {
		return l
	}
	return id
}

// roots returns nodes with no incoming edge, falling back to the first
// node for fully cyclic graphs.
func (g *graph) roots() []string {
	var roots []string
	for _, id := range g.order {
		if !g.hasParent[id] {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		roots = g.order[:1]
	}
	return roots
}

// renderMindMap draws the graph as an indented tree from its roots.
func renderMindMap(g *graph) (string, error) {
	var b strings.Builder
	visited := make(map[string]bool)
	for i, root := range g.roots() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(mindMapRootStyle.Render(g.label(root)))
		writeBranch(&b, g, root, "", visited)
	}
	return b.String(), nil
}

func writeBranch(b *strings.Builder, g *graph, id, prefix string, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	kids := g.children[id]
	for i, kid := range kids {
		last := i == len(kids)-1
		branch, cont := "├── ", "│   "
		if last {
			branch, cont = "└── ", "    "
		}
		b.WriteString("\n" + prefix + branch + g.label(kid))
		writeBranch(b, g, kid, prefix+cont, visited)
	}
}

// renderFlowChart draws a linear chain as stacked boxes with arrows,
// falling back to an adjacency listing when the graph branches.
func renderFlowChart(g *graph) (string, error) {
	if chain, ok := g.linearChain(); ok {
		blocks := make([]string, 0, len(chain)*2)
		for i, id := range chain {
			if i > 0 {
				blocks = append(blocks, "  ↓")
			}
			blocks = append(blocks, flowBoxStyle.Render(g.label(id)))
		}
		return strings.Join(blocks, "\n"), nil
	}

	var b strings.Builder
	first := true
	for _, id := range g.order {
		kids := g.children[id]
		if len(kids) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		b.WriteString(g.label(id))
		for _, kid := range kids {
			b.WriteString("\n  → " + g.label(kid))
		}
	}
	if first {
		return "", fmt.Errorf("flow chart has no edges")
	}
	return b.String(), nil
}

// linearChain reports the single root-to-leaf path when every node has
// at most one child and there is exactly one root.
func (g *graph) linearChain() ([]string, bool) {
	roots := g.roots()
	if len(roots) != 1 {
		return nil, false
	}
	var chain []string
	visited := make(map[string]bool)
	id := roots[0]
	for {
		if visited[id] {
			return nil, false
		}
		visited[id] = true
		chain = append(chain, id)
		kids := g.children[id]
		if len(kids) == 0 {
			return chain, true
		}
		if len(kids) > 1 {
			return nil, false
		}
		id = kids[0]
	}
}

const maxBarWidth = 30

// renderStatChart reads numeric values from node labels of the form
// "Name: 42" and draws scaled horizontal bars.
func renderStatChart(g *graph) (string, error) {
	type stat struct {
		name  string
		value float64
	}
	var stats []stat
	var max float64
	for _, id := range g.order {
		label := g.label(id)
		idx := strings.LastIndex(label, ":")
		if idx < 0 {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(label[idx+1:]), 64)
		if err != nil || value < 0 {
			continue
		}
		stats = append(stats, stat{name: strings.TrimSpace(label[:idx]), value: value})
		if value > max {
			max = value
		}
	}
	if len(stats) == 0 {
		return "", fmt.Errorf("no numeric series in markup")
	}

	nameWidth := 0
	for _, s := range stats {
		if len(s.name) > nameWidth {
			nameWidth = len(s.name)
		}
	}

	var b strings.Builder
	for i, s := range stats {
		width := 0
		if max > 0 {
			width = int(s.value / max * maxBarWidth)
		}
		if width == 0 && s.value > 0 {
			width = 1
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pad(s.name, nameWidth))
		b.WriteString("  ")
		b.WriteString(barStyle.Render(strings.Repeat("█", width)))
		b.WriteString(fmt.Sprintf(" %g", s.value))
	}
	return b.String(), nil
}
