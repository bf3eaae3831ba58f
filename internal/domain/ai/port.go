package ai

import "context"

// Client is the outbound port to the vision model. It takes the instruction
// prompt plus the chart image as a base64 data URI and returns the raw
// textual completion. One fresh network call per invocation; no caching, no
// internal retries; retry/backoff policy belongs to the caller and can be
// layered on this interface without touching call sites.
type Client interface {
	Analyze(ctx context.Context, prompt, imageDataURI string) (string, error)
}
