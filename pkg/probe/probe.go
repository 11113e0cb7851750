// Package probe checks that the local host can open the sockets a client
// needs before it relies on a pinned address.
package probe

import (
	"context"
	"log/slog"
	"net"

	"github.com/pkg/errors"
)

// DefaultAddr is the listen address checked when none is configured.
const DefaultAddr = "0.0.0.0:17878"

// Bind opens a TCP listener on addr and closes it again. It fails if the
// address is in use or not permitted.
func Bind(ctx context.Context, log *slog.Logger, addr string) error {
	if log == nil {
		log = slog.Default()
	}

	if addr == "" {
		addr = DefaultAddr
	}

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "binding %s", addr)
	}

	log.Debug("socket probe succeeded", "addr", l.Addr().String())

	return l.Close()
}
