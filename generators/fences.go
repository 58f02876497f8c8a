package generators

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// StripFences removes every markdown code fence marker from model output and trims the result.
func StripFences(content string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(content, ""))
}
