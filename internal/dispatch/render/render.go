// Package render substitutes {{variable}} placeholders in message-template
// bodies. Templates are short operator-authored strings, so a regexp pass
// beats pulling in a full template engine.
package render

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render replaces every {{name}} placeholder with vars[name]. Unresolved
// placeholders render as empty strings: a missing variable must never leak
// raw template syntax into a customer-facing message.
func Render(body string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return vars[name]
	})
}

// Placeholders lists the distinct variable names a body references, in order
// of first appearance.
func Placeholders(body string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
