package fileset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/testutil"
)

func TestCompileWildcards(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		matches   []string
		noMatches []string
	}{
		{
			name:      "segment wildcard stays in one segment",
			pattern:   "*.txt",
			matches:   []string{"/install/readme.txt", "/install/a.txt"},
			noMatches: []string{"/install/sub/readme.txt", "/install/readme.txt.bak"},
		},
		{
			name:      "recursive wildcard crosses separators",
			pattern:   "**/*.log",
			matches:   []string{"/install/a.log", "/install/sub/deep/b.log"},
			noMatches: []string{"/install/a.log.old", "/other/a.log"},
		},
		{
			name:      "recursive wildcard in the middle",
			pattern:   "data/**/cache",
			matches:   []string{"/install/data/cache", "/install/data/a/b/cache"},
			noMatches: []string{"/install/data/cachex"},
		},
		{
			name:      "dot is escaped",
			pattern:   "a.b",
			matches:   []string{"/install/a.b"},
			noMatches: []string{"/install/axb"},
		},
		{
			name:      "trailing segment wildcard",
			pattern:   "logs/*",
			matches:   []string{"/install/logs/x", "/install/logs/y.log"},
			noMatches: []string{"/install/logs/sub/x"},
		},
		{
			name:      "wildcard before trailing literal",
			pattern:   "tmp/*z",
			matches:   []string{"/install/tmp/xyz", "/install/tmp/z"},
			noMatches: []string{"/install/tmp/zx"},
		},
		{
			name:      "absolute pattern is not re-rooted",
			pattern:   "/opt/*.cfg",
			matches:   []string{"/opt/a.cfg"},
			noMatches: []string{"/install/opt/a.cfg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Compiler{Root: "/install"}
			p, err := c.Compile(tt.pattern)
			require.NoError(t, err)
			require.NotNil(t, p)

			for _, path := range tt.matches {
				assert.True(t, p.Match(path), "expected %q to match %q (expr %q)", tt.pattern, path, p.Expr)
			}
			for _, path := range tt.noMatches {
				assert.False(t, p.Match(path), "expected %q not to match %q (expr %q)", tt.pattern, path, p.Expr)
			}
		})
	}
}

func TestCompileSubstitutesVariables(t *testing.T) {
	c := &Compiler{
		Root: "/install",
		Substitute: func(s string) string {
			if s == "${APP_DIR}/*.tmp" {
				return "app/*.tmp"
			}
			return s
		},
	}

	p, err := c.Compile("${APP_DIR}/*.tmp")
	require.NoError(t, err)
	assert.True(t, p.Match("/install/app/x.tmp"))
	assert.False(t, p.Match("/install/other/x.tmp"))
}

func TestCompileBlankPatternSkipped(t *testing.T) {
	c := &Compiler{Root: "/install"}

	for _, raw := range []string{"", "   "} {
		p, err := c.Compile(raw)
		assert.NoError(t, err)
		assert.Nil(t, p)
	}
}

func TestCompileInvalidPatternReported(t *testing.T) {
	handler := &testutil.RecordingHandler{}
	c := &Compiler{Root: "/install", Handler: handler}

	p, err := c.Compile("broken[")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
	require.Len(t, handler.Notifications, 1)
	assert.Contains(t, handler.Notifications[0], "broken[")
}

func TestCompileAllSkipsBadAndBlank(t *testing.T) {
	handler := &testutil.RecordingHandler{}
	c := &Compiler{Root: "/install", Handler: handler}

	patterns := c.CompileAll([]string{"*.txt", "", "broken[", "*.log"})
	require.Len(t, patterns, 2)
	assert.True(t, patterns[0].Match("/install/a.txt"))
	assert.True(t, patterns[1].Match("/install/a.log"))
	assert.Len(t, handler.Notifications, 1)
}

func TestMatchAny(t *testing.T) {
	c := &Compiler{Root: "/install"}
	patterns := c.CompileAll([]string{"*.txt", "*.log"})

	assert.True(t, MatchAny(patterns, "/install/a.log"))
	assert.False(t, MatchAny(patterns, "/install/a.bin"))
	assert.False(t, MatchAny(nil, "/install/a.log"))
}
