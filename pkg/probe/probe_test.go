package probe

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	ctx := context.Background()

	t.Run("binds a free port", func(t *testing.T) {
		r := require.New(t)

		r.NoError(Bind(ctx, nil, "127.0.0.1:0"))
	})

	t.Run("fails on a port in use", func(t *testing.T) {
		r := require.New(t)

		l, err := net.Listen("tcp", "127.0.0.1:0")
		r.NoError(err)
		defer l.Close()

		err = Bind(ctx, nil, l.Addr().String())
		r.Error(err)
		r.Contains(err.Error(), l.Addr().String())
	})

	t.Run("rejects a malformed address", func(t *testing.T) {
		r := require.New(t)

		r.Error(Bind(ctx, nil, "not-an-address"))
	})
}
