// Package visualization renders the live compatibility edge graph for
// operator debugging: who is queued, and how strongly each pair scores.
package visualization

import (
	"fmt"
	"strings"

	"github.com/roomie-match/matchcore/internal/domain"
)

// scoreColor buckets a compatibility score into a DOT fill color, so a
// rendered graph reads at a glance without inspecting edge labels.
func scoreColor(score float64) string {
	switch {
	case score >= 90:
		return "mediumseagreen"
	case score >= 80:
		return "goldenrod"
	case score >= 60:
		return "tomato"
	default:
		return "lightgray"
	}
}

// RenderDOT produces a Graphviz DOT representation of the queue and its
// scored edges. Candidates with no edges still appear as isolated nodes.
func RenderDOT(queue []domain.QueueEntry, edges []domain.Edge) string {
	var b strings.Builder
	b.WriteString("graph matching {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fillcolor=lightblue, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, e := range queue {
		b.WriteString(fmt.Sprintf("  %q [tooltip=\"priority=%d\"];\n", e.UserID, e.Priority))
	}
	b.WriteString("\n")

	for _, edge := range edges {
		a, c := edge.Endpoints()
		b.WriteString(fmt.Sprintf("  %q -- %q [label=%q, color=%s];\n",
			a, c, fmt.Sprintf("%.1f", edge.Score), scoreColor(edge.Score)))
	}

	b.WriteString("}\n")
	return b.String()
}

// GraphJSON is a JSON-friendly mirror of the same graph for tooling that
// doesn't speak DOT.
type GraphJSON struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type GraphNode struct {
	UserID   domain.UserID `json:"userId"`
	Priority int           `json:"priority"`
}

type GraphEdge struct {
	UserA domain.UserID `json:"userA"`
	UserB domain.UserID `json:"userB"`
	Score float64       `json:"score"`
}

// RenderJSON produces the same graph as RenderDOT in a plain JSON shape.
func RenderJSON(queue []domain.QueueEntry, edges []domain.Edge) GraphJSON {
	nodes := make([]GraphNode, 0, len(queue))
	for _, e := range queue {
		nodes = append(nodes, GraphNode{UserID: e.UserID, Priority: e.Priority})
	}
	graphEdges := make([]GraphEdge, 0, len(edges))
	for _, e := range edges {
		a, b := e.Endpoints()
		graphEdges = append(graphEdges, GraphEdge{UserA: a, UserB: b, Score: e.Score})
	}
	return GraphJSON{Nodes: nodes, Edges: graphEdges}
}
