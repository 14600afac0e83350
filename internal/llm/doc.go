// Package llm is the text-completion service gitdoc uses to write commit
// messages.
//
// A Registry aggregates vendor Backends (OpenAI for the "copilot" vendor,
// Anthropic, Google Gemini) and implements Service: ListModels filters the
// combined catalogue by vendor and family, Send streams a reply as an
// iter.Seq2 of text chunks. FromEnvironment enables a backend for every
// API key present in the environment; an empty registry is valid and simply
// has no models.
//
// Model names from the settings map to vendors through VendorFor, which
// defaults to the copilot vendor for names it does not know.
package llm
