package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/concierge/pkg/agent"
	"github.com/aretw0/concierge/pkg/domain"
)

// Overlay marks where a thread currently is on the routing graph.
type Overlay struct {
	ActiveAgent domain.AgentID
	PendingTool string
}

// GenerateMermaid produces a Mermaid flowchart of the agents, their handoffs and their tools.
// Shapes:
//   - Supervisor: ((Circle))
//   - Specialist: [Rectangle]
//   - Safe tool: [[Subroutine]]
//   - Sensitive tool: {{Hexagon}}, reached through a dotted "approval" edge
func GenerateMermaid(roster *agent.Roster, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, ag := range roster.Agents() {
		id := sanitizeMermaidID(string(ag.ID))
		opener, closer := "[", "]"
		if ag.ID == domain.AgentSupervisor {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, ag.Name, closer)

		for _, h := range ag.Handoffs {
			sig, err := domain.DecodeHandoff(h.Name, nil)
			if err != nil {
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, h.Name, sanitizeMermaidID(string(sig.Target())))
		}

		tools := ag.Tools()
		for _, t := range tools.Safe {
			toolID := id + "_" + sanitizeMermaidID(t.Name)
			fmt.Fprintf(&sb, "    %s --> %s[[\"%s\"]]\n", id, toolID, t.Name)
		}
		for _, t := range tools.Sensitive {
			toolID := id + "_" + sanitizeMermaidID(t.Name)
			fmt.Fprintf(&sb, "    %s -. \"approval\" .-> %s{{\"%s\"}}\n", id, toolID, t.Name)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")
		if overlay.ActiveAgent != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.ActiveAgent)))
		}
		if overlay.PendingTool != "" && overlay.ActiveAgent != "" {
			fmt.Fprintf(&sb, "    class %s_%s pending;\n",
				sanitizeMermaidID(string(overlay.ActiveAgent)), sanitizeMermaidID(overlay.PendingTool))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
