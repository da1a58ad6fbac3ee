package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildSystemPrompt renders the business data window and prior conversation
// into the system instruction for the model.
func BuildSystemPrompt(data BusinessSnapshot, history []Turn) string {
	blob, _ := json.Marshal(data)

	var b strings.Builder
	b.WriteString("You are an AI assistant for a small retail store.\n")
	b.WriteString("You have access to the following business data:\n")
	fmt.Fprintf(&b, "- Last %d sales records\n", len(data.Sales))
	fmt.Fprintf(&b, "- Last %d expenses\n", len(data.Expenses))
	b.WriteString("- Current product inventory\n\n")
	b.WriteString("All monetary values are integer cents.\n")
	b.WriteString("Based on this data, provide relevant business insights and answer questions.\n")
	fmt.Fprintf(&b, "Current business data: %s\n", blob)

	if len(history) > 0 {
		b.WriteString("\nPrevious conversation:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Sender, t.Text)
		}
	}
	return b.String()
}
