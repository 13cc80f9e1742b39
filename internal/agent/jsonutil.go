// internal/agent/jsonutil.go
package agent

import (
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n(.*?)\n?```")

// extractJSON pulls the JSON value starting with opener ('{' or '[') out of
// model output, dropping code fences and surrounding prose. The input is
// returned trimmed when no such value is found.
func extractJSON(raw string, opener byte) string {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) == 2 {
		raw = m[1]
	}
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}
	start := strings.IndexByte(raw, opener)
	end := strings.LastIndexByte(raw, closer)
	if start < 0 || end < start {
		return strings.TrimSpace(raw)
	}
	return raw[start : end+1]
}
