// Package fileset compiles ant fileset glob patterns into anchored
// matchers. A single `*` matches within one path segment, `**` matches
// across separators, `\` and `.` are escaped literally. Patterns are
// resolved against the installation root and may contain ${name}
// variable references.
package fileset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/logging"
	"github.com/unpakt/unpakt/pkg/types"
)

// Compiler turns raw glob strings into compiled Patterns.
type Compiler struct {
	// Root is the installation root prepended to relative patterns
	Root string

	// Substitute resolves variable references in the raw pattern
	// before compilation. Optional.
	Substitute func(string) string

	// Handler receives a notification when a pattern compiles to an
	// invalid expression and is skipped. Optional.
	Handler types.ProgressHandler
}

// Pattern is an anchored matcher compiled from one glob string.
// Immutable once built.
type Pattern struct {
	// Raw is the pattern text after substitution and root resolution
	Raw string

	// Expr is the emitted matcher expression
	Expr string

	re *regexp.Regexp
}

// Match reports whether path matches the whole pattern
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(path)
}

// MatchAny reports whether path matches at least one of patterns
func MatchAny(patterns []*Pattern, path string) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// Compile builds an anchored matcher from one glob string. Empty and
// blank patterns yield (nil, nil) and are skipped by CompileAll. A
// pattern that produces an invalid expression is reported through the
// handler and returns a PATTERN_INVALID error; callers skip it and
// continue with the remaining patterns.
func (c *Compiler) Compile(raw string) (*Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	pattern := raw
	if c.Substitute != nil {
		pattern = c.Substitute(pattern)
	}

	// Relative patterns are resolved against the installation root.
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(c.Root, pattern)
	}

	expr := translate(pattern)

	re, err := regexp.Compile(expr)
	if err != nil {
		if c.Handler != nil {
			c.Handler.EmitNotification(fmt.Sprintf(
				"internal error: pattern %q produced invalid expression %q", raw, expr))
		}
		return nil, errors.Wrapf(err, errors.ErrPatternInvalid,
			"pattern %q produced invalid expression", raw)
	}

	return &Pattern{Raw: pattern, Expr: expr, re: re}, nil
}

// CompileAll compiles every pattern in raws, skipping blank entries and
// patterns that fail to compile. It never fails as a whole.
func (c *Compiler) CompileAll(raws []string) []*Pattern {
	logger := logging.GetLogger("fileset")

	patterns := make([]*Pattern, 0, len(raws))
	for _, raw := range raws {
		p, err := c.Compile(raw)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", raw).Msg("Skipping invalid pattern")
			continue
		}
		if p != nil {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// separator matching fragments, derived from the platform separator
var (
	sepLiteral  = regexp.QuoteMeta(string(filepath.Separator))
	segmentWild = "[^" + sepLiteral + "]*"
)

// translate scans the pattern once, left to right, emitting the matcher
// expression. Every input character is processed exactly once; the one
// character of lookahead distinguishes `*` from `**`.
func translate(pattern string) string {
	var out strings.Builder
	out.Grow(len(pattern) + 8)
	out.WriteByte('^')

	pos := 0
	lookahead := -1

	for pos < len(pattern) || lookahead != -1 {
		var c byte
		if lookahead != -1 {
			c = byte(lookahead)
			lookahead = -1
		} else {
			c = pattern[pos]
			pos++
		}

		switch c {
		case '/':
			out.WriteString(sepLiteral)
		case '\\', '.':
			// escape backslash and dot
			out.WriteByte('\\')
			out.WriteByte(c)
		case '*':
			if pos == len(pattern) {
				out.WriteString(segmentWild)
				break
			}
			lookahead = int(pattern[pos])
			pos++
			if lookahead == '*' {
				// recursive wildcard, consume the second star; a
				// following separator is subsumed so `**/x` also
				// matches x directly under the prefix
				out.WriteString(".*")
				lookahead = -1
				if pos < len(pattern) && pattern[pos] == '/' {
					pos++
				}
			} else {
				// segment wildcard, lookahead stays pending
				out.WriteString(segmentWild)
			}
		default:
			out.WriteByte(c)
		}
	}

	// anchor so the whole remaining string must match
	out.WriteByte('$')
	return out.String()
}
