package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CleanJSONBlock strips markdown fences and any conversational text around the first JSON
// object or array in a model response.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closing := byte('}')
	if text[start] == '[' {
		closing = ']'
	}
	extracted := extractBalanced(text[start:], text[start], closing)
	if extracted == "" {
		return text
	}
	return extracted
}

// extractBalanced returns the prefix of s that forms a balanced open/close pair,
// ignoring delimiters inside JSON strings.
func extractBalanced(s string, open, closing byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// GenerateInto asks the model for JSON and decodes it into v.
// The raw JSON is returned so callers can validate it against a schema.
func GenerateInto(ctx context.Context, client Client, prompt string, tier ModelTier, v any) (string, error) {
	raw, err := client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", err
	}
	raw = CleanJSONBlock(raw)
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return raw, fmt.Errorf("failed to decode model JSON: %w", err)
	}
	return raw, nil
}
