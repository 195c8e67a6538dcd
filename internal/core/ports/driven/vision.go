package driven

import "context"

// VisionService produces a structured clinical description of an image.
// The output format is free text; the orchestrator imposes no contract
// beyond "human-readable".
type VisionService interface {
	// Describe analyses the image bytes and returns a description.
	Describe(ctx context.Context, image []byte) (string, error)

	// Close releases resources.
	Close() error
}
