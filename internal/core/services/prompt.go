package services

import (
	"fmt"
	"strings"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
)

// NoEvidence is placed in the context block when retrieval found
// nothing, so the model declines instead of inventing guidance.
const NoEvidence = "No relevant guideline content was found for this query."

// promptInput collects everything that goes into one completion prompt.
type promptInput struct {
	persona  string
	history  []domain.Turn
	vision   string
	passages []domain.RetrievedPassage
	query    string
}

// buildPrompt renders the completion prompt: persona, recent history,
// optional image description, retrieved context, then the question. The
// question goes in verbatim; augmentation only steers retrieval.
func buildPrompt(in promptInput) string {
	var b strings.Builder

	if in.persona != "" {
		b.WriteString(in.persona)
		b.WriteString("\n\n")
	}

	if len(in.history) > 0 {
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, turn := range in.history {
			role := "USER"
			if turn.Role == domain.RoleAssistant {
				role = "ASSISTANT"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
		}
		b.WriteString("\n")
	}

	if in.vision != "" {
		b.WriteString("IMAGE FINDINGS:\n")
		b.WriteString(in.vision)
		b.WriteString("\n\n")
	}

	b.WriteString("GUIDELINE CONTEXT:\n")
	if len(in.passages) == 0 {
		b.WriteString(NoEvidence)
		b.WriteString("\n")
	} else {
		for _, p := range in.passages {
			fmt.Fprintf(&b, "[Source: %s]\n%s\n\n", p.DocID, p.Text)
		}
	}

	b.WriteString("\nQUESTION: ")
	b.WriteString(in.query)
	b.WriteString("\nANSWER:")

	return b.String()
}
