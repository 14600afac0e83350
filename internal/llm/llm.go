package llm

import (
	"context"
	"iter"
	"strings"

	"github.com/bashhack/gitdoc/internal/errors"
)

// Vendor names used in model lookups.
const (
	VendorCopilot   = "copilot"
	VendorAnthropic = "anthropic"
	VendorGoogle    = "google"
)

// DefaultVendor serves model names missing from the vendor table.
const DefaultVendor = VendorCopilot

var vendorByModel = map[string]string{
	"gpt-4o":            VendorCopilot,
	"gpt-4-turbo":       VendorCopilot,
	"gpt-3.5-turbo":     VendorCopilot,
	"o1":                VendorCopilot,
	"o1-mini":           VendorCopilot,
	"claude-3.7-sonnet": VendorAnthropic,
	"claude-3.5-sonnet": VendorAnthropic,
	"gemini-2.0-flash":  VendorGoogle,
	"gemini-1.5-pro":    VendorGoogle,
}

// VendorFor maps a configured model name to the vendor expected to serve it.
func VendorFor(model string) string {
	if v, ok := vendorByModel[model]; ok {
		return v
	}
	return DefaultVendor
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Name    string
	Content string
}

// UserMessage is a shorthand for a single user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Name: "User", Content: content}
}

// Model describes one model a backend can serve. Family is the name users
// put in ai_model; ID is what the vendor API expects.
type Model struct {
	ID      string
	Vendor  string
	Family  string
	Version string
}

// Filter narrows ListModels. Empty fields match anything.
type Filter struct {
	Vendor string
	Family string
}

func (f Filter) matches(m Model) bool {
	return (f.Vendor == "" || f.Vendor == m.Vendor) && (f.Family == "" || f.Family == m.Family)
}

// Service is the text-completion capability used to write commit messages.
type Service interface {
	ListModels(ctx context.Context, filter Filter) ([]Model, error)
	Send(ctx context.Context, modelID string, messages []Message) iter.Seq2[string, error]
}

// Backend is one vendor's API client.
type Backend interface {
	Vendor() string
	Models() []Model
	Stream(ctx context.Context, model Model, messages []Message) iter.Seq2[string, error]
}

// Registry is a Service that dispatches to the configured backends.
type Registry struct {
	backends []Backend
}

// NewRegistry returns a Registry over backends. Nil backends are skipped.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{}
	for _, b := range backends {
		if b != nil {
			r.backends = append(r.backends, b)
		}
	}
	return r
}

// ListModels returns the models of every backend that match filter, in
// backend registration order.
func (r *Registry) ListModels(ctx context.Context, filter Filter) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Model
	for _, b := range r.backends {
		for _, m := range b.Models() {
			if filter.matches(m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// Send streams the reply of the backend that owns modelID.
func (r *Registry) Send(ctx context.Context, modelID string, messages []Message) iter.Seq2[string, error] {
	for _, b := range r.backends {
		for _, m := range b.Models() {
			if m.ID == modelID {
				return b.Stream(ctx, m, messages)
			}
		}
	}
	return func(yield func(string, error) bool) {
		yield("", errors.Wrapf(errors.ErrNoModel, "model %q", modelID))
	}
}

// Collect drains a reply stream into one string.
func Collect(stream iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for part, err := range stream {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}
