package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.WriteRecord)
	assert.Equal(t, 10*time.Second, cfg.InterruptTimeout())
	assert.False(t, cfg.DetectCycles)
	assert.Empty(t, cfg.InstallRoot)
	assert.Empty(t, cfg.UpdateChecks)
}

func TestLoadMissingFileIsSkipped(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.True(t, cfg.WriteRecord)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unpakt.toml")
	content := `
install_root = "/opt/app"
write_record = false
interrupt_timeout_ms = 2000
detect_cycles = true

[variables]
APP_DIR = "app"

[[update_checks]]
includes = ["${APP_DIR}/**/*.tmp"]
excludes = ["${APP_DIR}/cache/**"]

[[update_checks]]
includes = ["*.bak"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/app", cfg.InstallRoot)
	assert.False(t, cfg.WriteRecord)
	assert.Equal(t, 2*time.Second, cfg.InterruptTimeout())
	assert.True(t, cfg.DetectCycles)
	assert.Equal(t, map[string]string{"APP_DIR": "app"}, cfg.Variables)
	require.Len(t, cfg.UpdateChecks, 2)
	assert.Equal(t, types.UpdateCheck{
		Includes: []string{"${APP_DIR}/**/*.tmp"},
		Excludes: []string{"${APP_DIR}/cache/**"},
	}, cfg.UpdateChecks[0])
	assert.Equal(t, []string{"*.bak"}, cfg.UpdateChecks[1].Includes)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("UNPAKT_INSTALL_ROOT", "/from/env")
	t.Setenv("UNPAKT_WRITE_RECORD", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.InstallRoot)
	assert.False(t, cfg.WriteRecord)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unpakt.toml")
	require.NoError(t, os.WriteFile(path, []byte("install_root = [broken"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
