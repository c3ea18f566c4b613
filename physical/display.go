package physical

import (
	"strings"
)

// DisplayPlan renders plan and its children as an indented tree, one node per line
func DisplayPlan(plan ExecutionPlan, format DisplayFormat) string {
	var sb strings.Builder
	displayNode(&sb, plan, format, 0)
	return sb.String()
}

func displayNode(sb *strings.Builder, plan ExecutionPlan, format DisplayFormat, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if d, ok := plan.(Displayer); ok {
		sb.WriteString(d.DisplayAs(format))
	} else {
		sb.WriteString(plan.String())
	}
	sb.WriteByte('\n')
	for _, child := range plan.Children() {
		displayNode(sb, child, format, depth+1)
	}
}
