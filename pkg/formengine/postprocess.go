package formengine

import "github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"

// PostProcessor adjusts a document after substitution and before the
// formatting pass. Processors are registered per template.
type PostProcessor interface {
	Process(doc *doctree.Document, ctx Context) error
}

// PostProcessorFunc adapts a function to PostProcessor.
type PostProcessorFunc func(doc *doctree.Document, ctx Context) error

// Process calls f.
func (f PostProcessorFunc) Process(doc *doctree.Document, ctx Context) error {
	return f(doc, ctx)
}
