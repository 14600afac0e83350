// Package llmtest provides a scripted llm.Backend for tests.
package llmtest

import (
	"context"
	"iter"
	"sync"

	"github.com/bashhack/gitdoc/internal/llm"
)

// Backend replies with Chunks (or fails with Err) and records every prompt.
type Backend struct {
	VendorName string
	Catalogue  []llm.Model
	Chunks     []string
	Err        error

	mu      sync.Mutex
	prompts [][]llm.Message
}

// New returns a backend for vendor serving one model per family.
func New(vendor string, families ...string) *Backend {
	b := &Backend{VendorName: vendor}
	for _, f := range families {
		b.Catalogue = append(b.Catalogue, llm.Model{ID: f + "-test", Vendor: vendor, Family: f, Version: "test"})
	}
	return b
}

// Reply sets the streamed reply, split into chunks as given.
func (b *Backend) Reply(chunks ...string) *Backend {
	b.Chunks = chunks
	return b
}

// Vendor implements llm.Backend.
func (b *Backend) Vendor() string { return b.VendorName }

// Models implements llm.Backend.
func (b *Backend) Models() []llm.Model { return b.Catalogue }

// Stream implements llm.Backend.
func (b *Backend) Stream(_ context.Context, _ llm.Model, messages []llm.Message) iter.Seq2[string, error] {
	b.mu.Lock()
	b.prompts = append(b.prompts, messages)
	b.mu.Unlock()

	return func(yield func(string, error) bool) {
		for _, c := range b.Chunks {
			if !yield(c, nil) {
				return
			}
		}
		if b.Err != nil {
			yield("", b.Err)
		}
	}
}

// Prompts returns the message lists received so far.
func (b *Backend) Prompts() [][]llm.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]llm.Message(nil), b.prompts...)
}
