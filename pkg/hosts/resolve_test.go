package hosts

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	ctx := context.Background()

	content := "# pinned\n10.0.0.5 internal.example\n10.0.0.6 api.internal.example"

	t.Run("replaces the host with the pinned address", func(t *testing.T) {
		r := require.New(t)

		tbl := NewTable(nil, NewMemoryFile(content), Options{})

		out, err := tbl.ResolveURL(ctx, "https://internal.example/path")
		r.NoError(err)
		r.Equal("https://10.0.0.5/path", out)

		out, err = tbl.ResolveURL(ctx, "rendezvous://api.internal.example:21116")
		r.NoError(err)
		r.Equal("rendezvous://10.0.0.6:21116", out)
	})

	t.Run("replaces every occurrence of the host text", func(t *testing.T) {
		r := require.New(t)

		tbl := NewTable(nil, NewMemoryFile(content), Options{})

		out, err := tbl.ResolveURL(ctx, "https://internal.example/mirror/internal.example?q=1")
		r.NoError(err)
		r.Equal("https://10.0.0.5/mirror/10.0.0.5?q=1", out)
	})

	t.Run("structured rewrite only touches the host", func(t *testing.T) {
		r := require.New(t)

		tbl := NewTable(nil, NewMemoryFile(content), Options{StructuredRewrite: true})

		out, err := tbl.ResolveURL(ctx, "https://internal.example:8443/mirror/internal.example?q=1")
		r.NoError(err)
		r.Equal("https://10.0.0.5:8443/mirror/internal.example?q=1", out)
	})

	t.Run("reports a missing record as not found", func(t *testing.T) {
		r := require.New(t)

		tbl := NewTable(nil, NewMemoryFile(content), Options{})

		_, err := tbl.ResolveURL(ctx, "https://unknown.example/path")
		r.ErrorIs(err, ErrNotFound)
		r.NotErrorIs(err, ErrIO)
	})

	t.Run("does not match a record inside a comment", func(t *testing.T) {
		r := require.New(t)

		tbl := NewTable(nil, NewMemoryFile("#10.0.0.9 hidden.example"), Options{})

		_, err := tbl.ResolveURL(ctx, "https://hidden.example/")
		r.ErrorIs(err, ErrNotFound)
	})

	t.Run("rejects unparsable urls", func(t *testing.T) {
		r := require.New(t)

		f := NewMemoryFile(content)
		tbl := NewTable(nil, f, Options{})

		for _, u := range []string{"http://[::1", "internal.example/path", "%zz"} {
			_, err := tbl.ResolveURL(ctx, u)
			r.ErrorIs(err, ErrParse, u)
		}

		r.Zero(f.Opens)
	})

	t.Run("rejects urls without a domain", func(t *testing.T) {
		r := require.New(t)

		f := NewMemoryFile(content)
		tbl := NewTable(nil, f, Options{})

		for _, u := range []string{"mailto:ops@internal.example", "file:///etc/hosts", "https://10.0.0.5/path", "http://[::1]:80/"} {
			_, err := tbl.ResolveURL(ctx, u)
			r.ErrorIs(err, ErrUnsupported, u)

			var ue *UnsupportedError
			r.True(errors.As(err, &ue))
			r.Equal(u, ue.Input)
		}

		r.Zero(f.Opens)
	})

	t.Run("surfaces read failures", func(t *testing.T) {
		r := require.New(t)

		f := NewMemoryFile(content)
		f.OpenErr = os.ErrNotExist
		tbl := NewTable(nil, f, Options{})

		_, err := tbl.ResolveURL(ctx, "https://internal.example/path")
		r.ErrorIs(err, ErrIO)
		r.NotErrorIs(err, ErrNotFound)
	})

	t.Run("never writes", func(t *testing.T) {
		r := require.New(t)

		f := NewMemoryFile(content)
		tbl := NewTable(nil, f, Options{})

		_, err := tbl.ResolveURL(ctx, "https://internal.example/path")
		r.NoError(err)

		r.Zero(f.WriteOpens)
		r.Zero(f.Writes)
		r.Equal(content, f.Content())
	})
}

func TestSubstitute(t *testing.T) {
	r := require.New(t)

	tbl := NewTable(nil, NewMemoryFile(""), Options{})

	out, err := tbl.Substitute("https://internal.example/x", "10.0.0.5")
	r.NoError(err)
	r.Equal("https://10.0.0.5/x", out)

	host, err := URLHost("https://internal.example:443/x")
	r.NoError(err)
	r.Equal("internal.example", host)
}
