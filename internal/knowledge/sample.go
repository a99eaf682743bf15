package knowledge

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed sample.yaml
var sampleYAML []byte

// SampleDocument returns the embedded sample knowledge base.
func SampleDocument() (*Document, error) {
	doc, err := ParseDocument(sampleYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded sample: %w", err)
	}
	return doc, nil
}

// SampleProvider serves the embedded sample knowledge base.
type SampleProvider struct{}

// Load parses the embedded document.
func (SampleProvider) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := SampleDocument()
	if err != nil {
		return nil, err
	}
	return doc.Base()
}
