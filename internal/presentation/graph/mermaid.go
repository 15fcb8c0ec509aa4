package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/annotate/pkg/domain"
)

// GraphOverlay contains dynamic data to visualize on the graph.
type GraphOverlay struct {
	// Annotated lists the IDs of nodes carrying an annotation.
	Annotated []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a program.
// It applies semantic styling:
// - Entry: ((Circle))
// - Branch (jnz): {Rhombus}
// - Halt: (((Double Circle)))
// - Default: [Rectangle]
// Annotated nodes from the overlay get the "annotated" class.
func GenerateMermaid(prog *domain.Program, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range prog.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node == prog.Entry:
			opener, closer = "((", "))"
		case node.Op == domain.OpJumpNonZero:
			opener, closer = "{", "}"
		case node.Op == domain.OpHalt:
			opener, closer = "(((", ")))"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", safeID, opener, node.ID, describe(node), closer))

		if node.Target != nil {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s != 0\" --> %s\n", safeID, node.Var, sanitizeMermaidID(node.Target.ID)))
		}
		if node.Next != nil {
			arrow := "-->"
			if node.NextID != "" {
				// Explicit jump rather than fall-through.
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(node.Next.ID)))
		}
	}

	if overlay != nil && len(overlay.Annotated) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef annotated fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Annotated {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || prog.Lookup(id) == nil {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s annotated;\n", safeID))
		}
	}

	return sb.String()
}

func describe(n *domain.Node) string {
	switch n.Op {
	case domain.OpSet:
		return fmt.Sprintf("%s = %d", n.Var, n.Value)
	case domain.OpAdd:
		return fmt.Sprintf("%s += %d", n.Var, n.Value)
	case domain.OpPrint:
		if n.Text != "" {
			return fmt.Sprintf("print '%s'", strings.ReplaceAll(n.Text, "\"", "'"))
		}
		return "print " + n.Var
	}
	return n.Op
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
