package interpret

import "context"

// Provider defines the interface to the interpretation backend.
// Implementations handle transport details; both calls are idempotent
// from the client's perspective and safe to issue for a fresh session.
type Provider interface {
	// Interpret submits source content and returns the generated
	// interpretation. Long-running; callers bound it with a context
	// deadline.
	Interpret(ctx context.Context, req *Request) (*Response, error)

	// GenerateDiagrams returns markup for the requested diagram types.
	// Missing keys in the response are server-side per-type failures.
	GenerateDiagrams(ctx context.Context, req *DiagramRequest) (*DiagramResponse, error)
}

// Config holds common configuration for backend clients.
type Config struct {
	BaseURL string
	APIKey  string
}
