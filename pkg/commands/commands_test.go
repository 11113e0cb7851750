package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code, err := New(args, &stdout, &stderr).Run()
	require.NoError(t, err)

	return code, stdout.String(), stderr.String()
}

func TestCommands(t *testing.T) {
	for _, key := range []string{"HOSTSPIN_CONFIG", "HOSTS_PATH", "HISTORY_PATH", "CACHE_SIZE", "LOG_LEVEL", "PRESERVE_ALIASES", "STRUCTURED_REWRITE"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	history := filepath.Join(dir, "history")

	require.NoError(t, os.WriteFile(path, []byte("# managed\n127.0.0.1 localhost\n"), 0644))

	t.Run("set pins a domain", func(t *testing.T) {
		r := require.New(t)

		code, out, _ := run(t, "set", "--hosts", path, "--history", history, "internal.example", "10.0.0.5")
		r.Equal(0, code)
		r.Contains(out, "updated to 10.0.0.5")

		code, out, _ = run(t, "set", "--hosts", path, "--history", history, "internal.example", "10.0.0.5")
		r.Equal(0, code)
		r.Contains(out, "already correctly resolved")

		data, err := os.ReadFile(path)
		r.NoError(err)
		r.Equal("# managed\n127.0.0.1 localhost\n10.0.0.5 internal.example", string(data))
	})

	t.Run("set reports a rejected address", func(t *testing.T) {
		r := require.New(t)

		code, out, _ := run(t, "set", "--hosts", path, "internal.example", "1.2.3")
		r.Equal(2, code)
		r.Contains(out, "invalid IPv4 address")
	})

	t.Run("lookup and resolve read the table", func(t *testing.T) {
		r := require.New(t)

		code, out, _ := run(t, "lookup", "--hosts", path, "internal.example")
		r.Equal(0, code)
		r.Equal("10.0.0.5", strings.TrimSpace(out))

		code, out, _ = run(t, "resolve", "--hosts", path, "https://internal.example/path")
		r.Equal(0, code)
		r.Equal("https://10.0.0.5/path", strings.TrimSpace(out))

		code, _, errOut := run(t, "resolve", "--hosts", path, "https://missing.example/path")
		r.Equal(1, code)
		r.Contains(errOut, "no hosts record for missing.example")
	})

	t.Run("history lists journaled updates", func(t *testing.T) {
		r := require.New(t)

		code, out, _ := run(t, "history", "--history", history, "--hosts", path, "-n", "1", "internal.example")
		r.Equal(0, code)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		r.Len(lines, 1)
		r.Contains(lines[0], "unchanged")
	})

	t.Run("history needs a journal", func(t *testing.T) {
		r := require.New(t)

		code, _, errOut := run(t, "history", "--hosts", path, "internal.example")
		r.Equal(1, code)
		r.Contains(errOut, "no history journal")
	})

	t.Run("probe binds a socket", func(t *testing.T) {
		r := require.New(t)

		code, out, _ := run(t, "probe", "--hosts", path, "--addr", "127.0.0.1:0")
		r.Equal(0, code)
		r.Contains(out, "bound 127.0.0.1:0")
	})

	t.Run("wrong argument count shows help", func(t *testing.T) {
		r := require.New(t)

		code, _, errOut := run(t, "set", "--hosts", path, "internal.example")
		r.Equal(1, code)
		r.Contains(errOut, "Usage: hostspin set")
	})
}
