package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "prefs"}
	cmd.PersistentFlags().String("config", "", "")
	cmd.PersistentFlags().String("env-file", "", "")
	cmd.PersistentFlags().String("file", "settings.json", "")
	cmd.PersistentFlags().String("log-level", "info", "")
	cmd.PersistentFlags().String("log-format", "text", "")
	cmd.PersistentFlags().String("engine", "expr", "")
	return cmd
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, "settings.json", v.GetString("file"))
	assert.Equal(t, "info", v.GetString("log_level"))
	assert.Equal(t, "text", v.GetString("log_format"))
	assert.Equal(t, "expr", v.GetString("engine"))
	assert.Empty(t, v.GetStringSlice("rules"))
}

func TestLoadDefaults(t *testing.T) {
	cmd := newTestCommand()

	cfg, err := Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "settings.json", cfg.File)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "expr", cfg.Engine)
}

func TestLoadFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "prefs.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("file: from-config.json\nlog_level: debug\nrules:\n  - Volume <= 100\n"), 0o644))

	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", configPath))
	require.NoError(t, cmd.PersistentFlags().Set("file", "from-flag.json"))

	cfg, err := Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.File)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"Volume <= 100"}, cfg.Rules)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PREFS_LOG_FORMAT", "json")

	cfg, err := Load(newTestCommand())
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PREFS_ENGINE=cel\n"), 0o644))
	t.Setenv("PREFS_ENGINE", "")
	require.NoError(t, os.Unsetenv("PREFS_ENGINE"))

	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("env-file", envPath))

	cfg, err := Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "cel", cfg.Engine)
}

func TestLoadReadsInheritedEnvFileAndConfig(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	configPath := filepath.Join(dir, "prefs.yaml")
	require.NoError(t, os.WriteFile(envPath, []byte("PREFS_LOG_LEVEL=warn\n"), 0o644))
	require.NoError(t, os.WriteFile(configPath, []byte("file: nested.json\n"), 0o644))
	t.Setenv("PREFS_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("PREFS_LOG_LEVEL"))

	root := newTestCommand()
	child := &cobra.Command{Use: "show"}
	root.AddCommand(child)
	require.NoError(t, root.PersistentFlags().Set("env-file", envPath))
	require.NoError(t, root.PersistentFlags().Set("config", configPath))

	cfg, err := Load(child)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "nested.json", cfg.File)
}

func TestLookupFlagFindsUnparsedPersistentFlags(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("env-file", "custom.env"))

	assert.Equal(t, "custom.env", flagString(cmd, "env-file"))
	assert.Equal(t, "", flagString(cmd, "unknown"))
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("env-file", filepath.Join(t.TempDir(), "missing.env")))

	_, err := Load(cmd)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "valid", cfg: Config{File: "a.json", LogLevel: "INFO", LogFormat: "json", Engine: "cel"}, ok: true},
		{name: "missing file", cfg: Config{File: " ", LogLevel: "info", LogFormat: "text", Engine: "expr"}},
		{name: "bad level", cfg: Config{File: "a.json", LogLevel: "trace", LogFormat: "text", Engine: "expr"}},
		{name: "bad format", cfg: Config{File: "a.json", LogLevel: "info", LogFormat: "xml", Engine: "expr"}},
		{name: "bad engine", cfg: Config{File: "a.json", LogLevel: "info", LogFormat: "text", Engine: "lua"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(&tc.cfg)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
