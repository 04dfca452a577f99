package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// codeBlockPattern matches markdown code blocks with an optional language tag.
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// ExtractJSON pulls a JSON object or array out of a model response.
// Models regularly wrap structured output in markdown fences or prose;
// this tries fenced blocks first, then the first balanced {...} or [...]
// in the raw text.
func ExtractJSON(response string) (string, error) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if isValidJSON(content) {
			return content, nil
		}
	}

	if raw, ok := extractBalanced(response); ok {
		return raw, nil
	}

	return "", types.NewError(types.UPSTREAM_FAILED, "no valid JSON found in model response")
}

// extractBalanced finds the first balanced JSON object or array in s.
func extractBalanced(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	open := s[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if isValidJSON(candidate) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

func isValidJSON(s string) bool {
	return json.Valid([]byte(s))
}
