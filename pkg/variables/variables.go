// Package variables implements the ${name} variable substitution the
// engine applies to glob patterns and configuration values before use.
package variables

import "strings"

// Bindings is a set of variable name to value bindings for one run
type Bindings map[string]string

// New returns an empty binding set
func New() Bindings {
	return make(Bindings)
}

// Set binds a variable name to a value
func (b Bindings) Set(name, value string) {
	b[name] = value
}

// Get returns the value bound to name, and whether it is bound
func (b Bindings) Get(name string) (string, bool) {
	v, ok := b[name]
	return v, ok
}

// Snapshot returns an independent copy of the bindings, used when the
// installation record captures the variables at write time.
func (b Bindings) Snapshot() map[string]string {
	out := make(map[string]string, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Substitute resolves ${name} references in text against the bindings.
// Unbound references and malformed ones (no closing brace) are left
// intact so the caller can see what failed to resolve.
func (b Bindings) Substitute(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	for {
		start := strings.Index(text, "${")
		if start < 0 {
			out.WriteString(text)
			return out.String()
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			out.WriteString(text)
			return out.String()
		}
		end += start

		out.WriteString(text[:start])
		name := text[start+2 : end]
		if value, ok := b[name]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(text[start : end+1])
		}
		text = text[end+1:]
	}
}
