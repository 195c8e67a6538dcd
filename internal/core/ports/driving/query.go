package driving

import (
	"context"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
)

// AskRequest carries one user question into the orchestrator.
type AskRequest struct {
	// SessionID identifies the conversation session.
	SessionID string

	// Query is the user's question, verbatim.
	Query string

	// VisionDescription is the optional image-derived structured
	// description. Empty when no image accompanies the query.
	VisionDescription string
}

// QueryService answers user questions over the indexed corpus.
type QueryService interface {
	// Ask retrieves context for the request, synthesises an answer via
	// the completion chain, and updates session history. It always
	// returns an Answer with non-empty text; the error return is
	// reserved for invalid requests.
	Ask(ctx context.Context, req AskRequest) (domain.Answer, error)
}
