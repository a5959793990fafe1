// Package validation checks chat prompts before they reach the pipeline.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidatePrompt rejects empty prompts and prompts longer than maxLength
// characters. The returned prompt is trimmed of surrounding whitespace.
func ValidatePrompt(prompt string, maxLength int) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", fmt.Errorf("prompt must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxLength {
		return "", fmt.Errorf("prompt exceeds maximum length of %d characters", maxLength)
	}
	return trimmed, nil
}
