package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	for _, key := range []string{"HOSTSPIN_CONFIG", "HOSTS_PATH", "SERVER_ADDR", "HISTORY_PATH", "CACHE_SIZE", "PRESERVE_ALIASES", "STRUCTURED_REWRITE", "PROBE_ADDR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	t.Run("uses defaults", func(t *testing.T) {
		r := require.New(t)

		cfg, err := Load("", nil)
		r.NoError(err)
		r.Equal(Default(), cfg)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		r := require.New(t)

		path := filepath.Join(t.TempDir(), "hostspin.toml")
		r.NoError(os.WriteFile(path, []byte(`
hosts_path = "/tmp/hosts"
server_addr = ":9000"
cache_size = 10
preserve_aliases = true
log_level = "debug"
`), 0644))

		t.Setenv("SERVER_ADDR", ":9100")
		t.Setenv("STRUCTURED_REWRITE", "true")

		cfg, err := Load(path, nil)
		r.NoError(err)

		r.Equal("/tmp/hosts", cfg.HostsPath)
		r.Equal(":9100", cfg.ServerAddr)
		r.Equal(10, cfg.CacheSize)
		r.True(cfg.PreserveAliases)
		r.True(cfg.StructuredRewrite)
		r.Equal("debug", cfg.LogLevel)
	})

	t.Run("rejects bad values", func(t *testing.T) {
		r := require.New(t)

		t.Setenv("CACHE_SIZE", "lots")
		_, err := Load("", nil)
		r.Error(err)

		t.Setenv("CACHE_SIZE", "0")
		_, err = Load("", nil)
		r.Error(err)

		t.Setenv("CACHE_SIZE", "")
		t.Setenv("LOG_LEVEL", "chatty")
		_, err = Load("", nil)
		r.Error(err)

		t.Setenv("LOG_LEVEL", "")
		t.Setenv("PRESERVE_ALIASES", "maybe")
		_, err = Load("", nil)
		r.Error(err)
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		r := require.New(t)

		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
		r.Error(err)
	})
}
