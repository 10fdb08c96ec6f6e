package ux

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tinkertasker/tinkertasker/internal/jsondecode"
)

// FormatToolArguments renders a tool call's raw argument JSON as a compact
// call signature, e.g. (path="a.txt", start_line=2). Long values are
// truncated to maxArgValueLength runes.
func FormatToolArguments(args string, maxArgValueLength int) string {
	if strings.TrimSpace(args) == "" || strings.TrimSpace(args) == "{}" {
		return "()"
	}

	var parsed map[string]interface{}
	if err := jsondecode.UnmarshalSafe([]byte(args), &parsed); err != nil {
		return fmt.Sprintf("(%s)", args)
	}
	if len(parsed) == 0 {
		return "()"
	}

	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		value := parsed[key]
		cleaned := strings.Join(strings.Fields(fmt.Sprintf("%v", value)), " ")
		if maxArgValueLength > 0 {
			runes := []rune(cleaned)
			if len(runes) > maxArgValueLength {
				cleaned = string(runes[:maxArgValueLength]) + "..."
			}
		}
		if _, isString := value.(string); isString {
			pairs = append(pairs, fmt.Sprintf("%s=\"%s\"", key, cleaned))
		} else {
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, cleaned))
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(pairs, ", "))
}

// headLines returns the first n lines of content, or all of it when n is
// negative.
func headLines(content string, n int) []string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if n >= 0 && len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
