// Package narrate abstracts the external report-generation capability.
// The engine hands it structured state and appends whatever text comes
// back; the output is never parsed.
package narrate

import "context"

// Context is the structured input handed to the narrator.
type Context struct {
	// Kind tags the flow requesting commentary: "analysis", "forecast",
	// "emergency".
	Kind    string
	Subject string
	Payload map[string]any
}

// Narrator produces free-text commentary for a structured context.
// Implementations may call out to an external service; failures are
// logged by callers and never affect state correctness.
type Narrator interface {
	Narrate(ctx context.Context, nc Context) (string, error)
}

// Nop returns no commentary.
type Nop struct{}

func (Nop) Narrate(context.Context, Context) (string, error) { return "", nil }

// Mock returns canned text per kind, for tests.
type Mock struct {
	Texts map[string]string
	Err   error
}

func (m Mock) Narrate(_ context.Context, nc Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Texts == nil {
		return "", nil
	}
	return m.Texts[nc.Kind], nil
}
