// Package renderer talks to the external media-rendering engine. The engine
// runs as an HTTP sidecar exposing bundle, composition selection and render
// operations; everything below that boundary (compositing, encoding) is
// opaque to this service.
package renderer

import "context"

// Composition is a resolved render target.
type Composition struct {
	ID               string `json:"id"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	FPS              int    `json:"fps"`
	DurationInFrames int    `json:"durationInFrames"`
}

// RenderRequest asks the engine to render one composition to a local file.
type RenderRequest struct {
	ServeURL       string `json:"serveUrl"`
	CompositionID  string `json:"compositionId"`
	Codec          string `json:"codec"`
	OutputLocation string `json:"outputLocation"`
	InputProps     any    `json:"inputProps"`
}

// Engine is the render engine contract.
type Engine interface {
	// Bundle builds the render project and returns a serve URL handle.
	Bundle(ctx context.Context) (string, error)
	// SelectComposition resolves a composition by id, validating the input
	// props against the composition's schema.
	SelectComposition(ctx context.Context, serveURL, compositionID string, inputProps any) (Composition, error)
	// Render produces the output file, returning only on completion.
	Render(ctx context.Context, req RenderRequest) error
}
