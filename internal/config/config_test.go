package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripcal.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.NotEmpty(t, cfg.Types)

	// The default config file must now exist for the next run.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripcal.yaml")
	doc := `
listen: "0.0.0.0:9000"
plan_path: "/tmp/plan.yaml"
types:
  vacation:
    hard_stop: true
  preference:
    hard_stop: false
ics:
  - id: holidays
    url: https://example.com/holidays.ics
    kind: constraints
    default_type: vacation
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "/tmp/plan.yaml", cfg.PlanPath)
	require.Len(t, cfg.ICS, 1)
	assert.Equal(t, "constraints", cfg.ICS[0].Kind)
	// Normalize fills unset defaults.
	assert.Equal(t, "*/30 * * * *", cfg.RefreshCron)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNormalizeUnknownICSKind(t *testing.T) {
	cfg := &Config{ICS: []ICSSource{{ID: "x", URL: "https://example.com/x.ics", Kind: "banana"}}}
	cfg.Normalize()
	assert.Equal(t, "constraints", cfg.ICS[0].Kind)
}

func TestHardStopPredicate(t *testing.T) {
	cfg := &Config{Types: map[string]TypeConfig{
		"vacation":   {HardStop: true},
		"preference": {HardStop: false},
	}}

	isHard := cfg.HardStop()
	assert.True(t, isHard("vacation"))
	assert.False(t, isHard("preference"))
	assert.False(t, isHard("never-seen-before"), "unknown type ids must resolve to soft")
}

func TestSaveRejectsNil(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
	assert.Error(t, Save("", DefaultConfig()))
}
