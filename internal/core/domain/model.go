package domain

import "strings"

// ModelInfo describes one upstream model the gateway can route to.
type ModelInfo struct {
	// ID is the model identifier sent to the upstream API.
	ID string `json:"id"`
	// DisplayName is the human-readable model name.
	DisplayName string `json:"display_name"`
	// Family groups related models ("opus", "sonnet", "gpt").
	Family string `json:"family,omitempty"`
	// ContextLength is the model's context window in tokens.
	ContextLength int `json:"context_length,omitempty"`
	// SupportsVision is true if the model accepts image input.
	SupportsVision bool `json:"supports_vision"`
	// SupportsTools is true if the model supports tool use.
	SupportsTools bool `json:"supports_tools"`
}

// SupportedModels returns the models the gateway advertises.
func SupportedModels() []ModelInfo {
	return []ModelInfo{
		{
			ID:             "claude-opus-4-1-20250805",
			DisplayName:    "Claude Opus 4.1",
			Family:         "opus",
			ContextLength:  200000,
			SupportsVision: true,
			SupportsTools:  true,
		},
		{
			ID:             "claude-sonnet-4-5-20250929",
			DisplayName:    "Claude Sonnet 4.5",
			Family:         "sonnet",
			ContextLength:  200000,
			SupportsVision: true,
			SupportsTools:  true,
		},
		{
			ID:             "claude-sonnet-4-20250514",
			DisplayName:    "Claude Sonnet 4",
			Family:         "sonnet",
			ContextLength:  200000,
			SupportsVision: true,
			SupportsTools:  true,
		},
		{
			ID:             "gpt-5-2025-08-07",
			DisplayName:    "GPT-5",
			Family:         "gpt",
			ContextLength:  128000,
			SupportsVision: true,
			SupportsTools:  true,
		},
	}
}

// SupportsModel returns true if the gateway can route requests for the
// given model.
func SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-") || strings.HasPrefix(model, "gpt-")
}
