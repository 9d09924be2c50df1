package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"litemq/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestLoadEffectiveDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")
	res, err := config.LoadEffective(config.Flags{})
	require.NoError(t, err)
	require.Equal(t, 42090, res.Config.Server.Port)
	require.Equal(t, ".litemq", res.Config.Server.DataDir)
	require.Equal(t, "info", res.Config.Logging.Level)
	require.Equal(t, config.SourceDefault, res.PortSource)
}

func TestLoadEffectiveFlagBeatsFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "litemq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  data_dir: /from/file\n  port: 9000\n"), 0o644))

	f := config.ParseFlags([]string{"/from/flag", "-config", cfgPath})
	res, err := config.LoadEffective(f)
	require.NoError(t, err)
	require.Equal(t, "/from/flag", res.Config.Server.DataDir)
	require.Equal(t, config.SourceFlag, res.DataDirSrc)
	require.Equal(t, 9000, res.Config.Server.Port)
	require.Equal(t, config.SourceFile, res.PortSource)
}

func TestLoadEffectiveEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "litemq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 9000\n"), 0o644))
	t.Setenv("PORT", "7777")

	f := config.ParseFlags([]string{"-config", cfgPath})
	res, err := config.LoadEffective(f)
	require.NoError(t, err)
	require.Equal(t, 7777, res.Config.Server.Port)
	require.Equal(t, config.SourceEnv, res.PortSource)
}

func TestParseFlagsPositionalDataDir(t *testing.T) {
	f := config.ParseFlags([]string{"/tmp/data", "-mode", "memory"})
	require.Equal(t, "/tmp/data", f.DataDir)
	require.Equal(t, "memory", f.Mode)
}
