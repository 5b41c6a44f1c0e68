package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
)

type jsonNode struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Kind  models.Kind `json:"kind"`
	Group string      `json:"group,omitempty"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Color string      `json:"color"`
	Focus bool        `json:"focus,omitempty"`
}

type jsonEdge struct {
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Type      models.EdgeType `json:"type"`
	Color     string          `json:"color"`
	Highlight bool            `json:"highlight,omitempty"`
}

type jsonFrame struct {
	Focus     string         `json:"focus"`
	Secondary string         `json:"secondary,omitempty"`
	Nodes     []jsonNode     `json:"nodes"`
	Edges     []jsonEdge     `json:"edges"`
	Metadata  map[string]any `json:"metadata"`
}

func toJSONFrame(frame Frame, options *OutputOptions) jsonFrame {
	pal := options.palette()
	segs := frame.segments()

	out := jsonFrame{
		Focus:     frame.Focus,
		Secondary: frame.Secondary,
		Nodes:     make([]jsonNode, 0, len(frame.Nodes)),
		Edges:     make([]jsonEdge, 0, len(segs)),
		Metadata: map[string]any{
			"width":      options.Width,
			"height":     options.Height,
			"background": pal.Background,
			"nodeCount":  len(frame.Nodes),
			"edgeCount":  len(segs),
		},
	}
	if options.Timestamp {
		out.Metadata["timestamp"] = time.Now().Format(time.RFC3339)
	}

	for _, n := range frame.Nodes {
		out.Nodes = append(out.Nodes, jsonNode{
			ID:    n.ID,
			Label: n.DisplayLabel(),
			Kind:  n.Kind,
			Group: n.Group,
			X:     n.X,
			Y:     n.Y,
			Color: pal.GroupColor(n.Node),
			Focus: frame.IsFocus(n.ID),
		})
	}
	for _, s := range segs {
		out.Edges = append(out.Edges, jsonEdge{
			Source:    s.edge.Source,
			Target:    s.edge.Target,
			Type:      s.edge.Type,
			Color:     pal.EdgeColor(s.edge.Type),
			Highlight: frame.Highlighted(s.edge),
		})
	}
	return out
}

// JSONRenderer outputs positions as JSON for machine consumption
type JSONRenderer struct{}

func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

func (r *JSONRenderer) Description() string {
	return "Renders the layout as JSON data for machine consumption or custom visualizations"
}

func (r *JSONRenderer) Render(frame Frame, options *OutputOptions) ([]byte, error) {
	return json.MarshalIndent(toJSONFrame(frame, options), "", "  ")
}

// DOTRenderer outputs Graphviz DOT with pinned positions
type DOTRenderer struct{}

func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

func (r *DOTRenderer) Description() string {
	return "Renders the layout in Graphviz DOT format with pinned positions (neato -n)"
}

func (r *DOTRenderer) Render(frame Frame, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	pal := options.palette()

	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%q, outputorder=edgesfirst];\n", pal.Background)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fontname=\"Arial\", fontsize=%g];\n", options.FontSize)

	for _, n := range frame.Nodes {
		penwidth := 1.0
		if frame.IsFocus(n.ID) {
			penwidth = 3
		}
		// DOT's y axis points up
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%q, penwidth=%g, pos=\"%.2f,%.2f!\"];\n",
			dotID(n.ID), dotID(n.DisplayLabel()), pal.GroupColor(n.Node), penwidth, n.X, -n.Y)
	}

	adj := graph.NewAdjacency(frame.Edges)
	for _, s := range frame.segments() {
		color := pal.EdgeColor(s.edge.Type)
		if frame.Highlighted(s.edge) {
			color = pal.Highlight
		}
		style := "solid"
		switch s.edge.Type {
		case models.EdgeThematic:
			style = "dashed"
		case models.EdgeArchetypal:
			style = "dotted"
		}
		fmt.Fprintf(&buf, "  %s -- %s [color=%q, style=%s, weight=%d];\n",
			dotID(s.edge.Source), dotID(s.edge.Target), color, style, 1+adj.Degree(s.edge.Source)+adj.Degree(s.edge.Target))
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func dotID(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// HTMLRenderer outputs an interactive page for browser viewing
type HTMLRenderer struct{}

// Name returns the name of the renderer
func (r *HTMLRenderer) Name() string {
	return "HTML Renderer"
}

// Description returns a description of the renderer
func (r *HTMLRenderer) Description() string {
	return "Renders an interactive sigma.js page; with PollURL set it follows a live session"
}

// Render creates an HTML page with the frame embedded
func (r *HTMLRenderer) Render(frame Frame, options *OutputOptions) ([]byte, error) {
	data, err := json.Marshal(toJSONFrame(frame, options))
	if err != nil {
		return nil, err
	}
	poll, err := json.Marshal(options.PollURL)
	if err != nil {
		return nil, err
	}

	title := options.Title
	if title == "" {
		title = "PivotGraph"
	}
	pal := options.palette()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <script src="https://cdnjs.cloudflare.com/ajax/libs/sigma.js/2.4.0/sigma.min.js"></script>
    <script src="https://cdnjs.cloudflare.com/ajax/libs/graphology/0.25.4/graphology.umd.min.js"></script>
    <style>
        body, html { margin: 0; padding: 0; height: 100%%; overflow: hidden; }
        #graph-container { width: 100%%; height: 100%%; background: %s; }
    </style>
</head>
<body>
    <div id="graph-container"></div>
    <script>
    const frame = %s;
    const pollURL = %s;
    const graph = new graphology.Graph({ multi: true, type: "undirected" });

    function load(f) {
        graph.clear();
        f.nodes.forEach(n => graph.addNode(n.id, {
            x: n.x, y: -n.y, label: n.label, color: n.color, size: n.focus ? %g : %g
        }));
        f.edges.forEach(e => graph.addEdge(e.source, e.target, {
            color: e.color, size: e.highlight ? 2 : 1
        }));
    }

    load(frame);
    const renderer = new Sigma(graph, document.getElementById('graph-container'), {
        renderLabels: %t,
        labelSize: %g
    });

    if (pollURL) {
        setInterval(async () => {
            const res = await fetch(pollURL);
            if (res.ok) {
                load(await res.json());
                renderer.refresh();
            }
        }, 100);
    }
    </script>
</body>
</html>
`, html.EscapeString(title), pal.Background, data, poll,
		options.NodeSize*1.6, options.NodeSize, options.ShowLabels, options.FontSize)

	return buf.Bytes(), nil
}
