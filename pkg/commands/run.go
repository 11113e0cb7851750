package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"hostspin/pkg/api"
	"hostspin/pkg/hosts"
	"hostspin/pkg/probe"
)

func (c *CLI) serveCommand() *command {
	var addr string

	return &command{
		cli:      c,
		name:     "serve",
		synopsis: "serve the hosts table over HTTP",
		usage:    "serve [options]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&addr, "addr", "", "listen address (default from config)")
		},
		run: func(ctx context.Context, a *app, _ []string) error {
			if addr == "" {
				addr = a.cfg.ServerAddr
			}
			return serve(ctx, a, addr)
		},
	}
}

func serve(ctx context.Context, a *app, addr string) error {
	handlers := api.NewHandlers(a.log, a.resolver)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server starting", "addr", addr, "hosts", a.cfg.HostsPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		a.log.Info("server stopping")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (c *CLI) setCommand() *command {
	return &command{
		cli:      c,
		name:     "set",
		synopsis: "pin a domain to an IPv4 address",
		usage:    "set [options] <domain> <ip>",
		args:     2,
		run: func(ctx context.Context, a *app, args []string) error {
			out, err := a.resolver.UpdateMapping(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(c.stdout, out.Message)

			if out.Kind == hosts.Rejected {
				return errExit(2)
			}
			return nil
		},
	}
}

func (c *CLI) lookupCommand() *command {
	return &command{
		cli:      c,
		name:     "lookup",
		synopsis: "print the address pinned for a domain",
		usage:    "lookup [options] <domain>",
		args:     1,
		run: func(ctx context.Context, a *app, args []string) error {
			ip, err := a.resolver.ResolveDomain(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(c.stdout, ip)
			return nil
		},
	}
}

func (c *CLI) resolveCommand() *command {
	return &command{
		cli:      c,
		name:     "resolve",
		synopsis: "rewrite a URL with the address pinned for its domain",
		usage:    "resolve [options] <url>",
		args:     1,
		run: func(ctx context.Context, a *app, args []string) error {
			resolved, err := a.resolver.ResolveURL(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(c.stdout, resolved)
			return nil
		},
	}
}

func (c *CLI) historyCommand() *command {
	var limit int

	return &command{
		cli:      c,
		name:     "history",
		synopsis: "list journaled updates for a domain",
		usage:    "history [options] <domain>",
		args:     1,
		flags: func(fs *pflag.FlagSet) {
			fs.IntVarP(&limit, "limit", "n", 0, "show at most this many entries")
		},
		run: func(ctx context.Context, a *app, args []string) error {
			entries, err := a.resolver.History(ctx, args[0], limit)
			if err != nil {
				return err
			}

			for _, e := range entries {
				fmt.Fprintf(c.stdout, "%s\t%s\t%s\t%s\n", e.At.Format(time.RFC3339), e.Kind, e.Target, e.Message)
			}
			return nil
		},
	}
}

func (c *CLI) probeCommand() *command {
	var addr string

	return &command{
		cli:      c,
		name:     "probe",
		synopsis: "check that the local socket can be opened",
		usage:    "probe [options]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&addr, "addr", "", "address to bind (default from config)")
		},
		run: func(ctx context.Context, a *app, _ []string) error {
			if addr == "" {
				addr = a.cfg.ProbeAddr
			}

			if err := probe.Bind(ctx, a.log, addr); err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "bound %s\n", addr)
			return nil
		},
	}
}
