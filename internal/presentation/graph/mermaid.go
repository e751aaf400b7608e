package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/datadesk/pkg/navigation"
)

// GenerateMermaid draws a user's menu history as a Mermaid flowchart. Each
// frame becomes a node labelled with its prompt and its buttons; the edges
// follow the order the frames were opened, and the frame on screen is
// highlighted.
func GenerateMermaid(stack navigation.Stack) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, f := range stack.Frames {
		id := nodeID(i)
		opener, closer := "[", "]"
		if i == 0 {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label(f), closer))
		if i > 0 {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeID(i-1), id))
		}
	}

	if n := len(stack.Frames); n > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for i := 0; i < n-1; i++ {
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", nodeID(i)))
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeID(n-1)))
	}

	return sb.String()
}

func nodeID(i int) string {
	return fmt.Sprintf("frame%d", i)
}

// label joins the first prompt line with the button labels.
func label(f navigation.Frame) string {
	prompt, _, _ := strings.Cut(f.Prompt, "\n")
	parts := []string{sanitizeLabel(prompt)}
	for _, ch := range f.Choices() {
		parts = append(parts, "• "+sanitizeLabel(ch.Label))
	}
	return strings.Join(parts, " <br/> ")
}

func sanitizeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
