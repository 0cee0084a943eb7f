package llm

import (
	"context"
	"strconv"
	"strings"
)

// MockLLM is a deterministic LLM implementation for testing.
// It returns predictable responses based on prompt content.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a default response is generated from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastPrompt stores the most recent prompt passed to Generate.
	LastPrompt string

	// LastSystem stores the most recent system instruction.
	LastSystem string

	// Calls counts Generate invocations.
	Calls int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	m.LastSystem = system

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockResponse(prompt), nil
}

// generateMockResponse picks the first numbered option sharing a word with the
// player's response, or "1" when nothing overlaps.
func generateMockResponse(prompt string) string {
	var said string
	var options []string

	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "The player responded with:"); ok {
			said = strings.ToLower(strings.Trim(strings.TrimSpace(rest), `"`))
			continue
		}
		num, text, ok := strings.Cut(line, ". ")
		if !ok {
			continue
		}
		if _, err := strconv.Atoi(num); err == nil {
			options = append(options, strings.ToLower(text))
		}
	}

	words := strings.Fields(said)
	for i, opt := range options {
		for _, w := range words {
			if len(w) > 3 && strings.Contains(opt, w) {
				return strconv.Itoa(i + 1)
			}
		}
	}
	return "1"
}
