// Package commands wires configuration, the hosts table and the HTTP API
// into the hostspin command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"hostspin/config"
	"hostspin/pkg/hosts"
	"hostspin/pkg/resolver"
	"hostspin/pkg/storage"
)

// Version is reported by --version.
var Version = "dev"

// CLI is the hostspin command line.
type CLI struct {
	stdout io.Writer
	stderr io.Writer

	lc *cli.CLI
}

// New creates a CLI that will run args.
func New(args []string, stdout, stderr io.Writer) *CLI {
	c := &CLI{
		stdout: stdout,
		stderr: stderr,
		lc:     cli.NewCLI("hostspin", Version),
	}

	c.lc.Args = args
	c.lc.HelpWriter = stderr
	c.lc.ErrorWriter = stderr
	c.lc.Commands = c.commands()

	return c
}

// Run executes the selected command and returns its exit status.
func (c *CLI) Run() (int, error) {
	return c.lc.Run()
}

func (c *CLI) commands() map[string]cli.CommandFactory {
	cmds := []*command{
		c.serveCommand(),
		c.setCommand(),
		c.lookupCommand(),
		c.resolveCommand(),
		c.historyCommand(),
		c.probeCommand(),
	}

	factories := make(map[string]cli.CommandFactory, len(cmds))
	for _, cmd := range cmds {
		cmd := cmd
		factories[cmd.name] = func() (cli.Command, error) {
			return cmd, nil
		}
	}
	return factories
}

// errExit carries an exit status for outcomes that are not errors, such as
// a rejected address.
type errExit int

func (e errExit) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// command adapts a function to cli.Command, parsing the shared flags with
// pflag and building the app before calling run.
type command struct {
	cli      *CLI
	name     string
	synopsis string
	usage    string
	args     int
	flags    func(fs *pflag.FlagSet)
	run      func(ctx context.Context, a *app, args []string) error
}

func (cmd *command) Synopsis() string {
	return cmd.synopsis
}

func (cmd *command) Help() string {
	fs := cmd.flagSet(new(globalFlags))
	return strings.TrimSpace(fmt.Sprintf("Usage: hostspin %s\n\n  %s\n\nOptions:\n%s",
		cmd.usage, cmd.synopsis, fs.FlagUsages()))
}

func (cmd *command) Run(args []string) int {
	var gf globalFlags

	fs := cmd.flagSet(&gf)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cli.RunResultHelp
		}
		fmt.Fprintf(cmd.cli.stderr, "%s: %v\n", cmd.name, err)
		return 1
	}

	if fs.NArg() != cmd.args {
		fmt.Fprintf(cmd.cli.stderr, "%s: expected %d argument(s), got %d\n", cmd.name, cmd.args, fs.NArg())
		return cli.RunResultHelp
	}

	a, err := cmd.cli.setup(gf)
	if err != nil {
		fmt.Fprintf(cmd.cli.stderr, "%s: %v\n", cmd.name, err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.run(ctx, a, fs.Args())

	var exit errExit
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return int(exit)
	default:
		a.log.Error("command failed", "command", cmd.name, "error", err)
		fmt.Fprintf(cmd.cli.stderr, "%s: %v\n", cmd.name, err)
		return 1
	}
}

type globalFlags struct {
	config  string
	hosts   string
	history string
	debug   bool
}

func (cmd *command) flagSet(gf *globalFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(cmd.cli.stderr)

	fs.StringVarP(&gf.config, "config", "c", "", "path to a TOML config file")
	fs.StringVar(&gf.hosts, "hosts", "", "hosts file to use instead of the configured one")
	fs.StringVar(&gf.history, "history", "", "directory of the update journal")
	fs.BoolVarP(&gf.debug, "debug", "D", false, "enable debug logging")

	if cmd.flags != nil {
		cmd.flags(fs)
	}

	return fs
}

// app holds everything a command runs against.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	table    *hosts.Table
	resolver *resolver.Resolver
	journal  *storage.BadgerStore
}

func (c *CLI) setup(gf globalFlags) (*app, error) {
	boot := slog.New(slog.NewTextHandler(c.stderr, nil))

	cfg, err := config.Load(gf.config, boot)
	if err != nil {
		return nil, err
	}

	if gf.hosts != "" {
		cfg.HostsPath = gf.hosts
	}
	if gf.history != "" {
		cfg.HistoryPath = gf.history
	}
	if gf.debug {
		cfg.LogLevel = "debug"
	}

	log := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	a := &app{cfg: cfg, log: log}

	a.table = hosts.NewTable(log, hosts.NewOSFile(cfg.HostsPath), hosts.Options{
		PreserveAliases:   cfg.PreserveAliases,
		StructuredRewrite: cfg.StructuredRewrite,
	})

	var journal storage.Journal
	if cfg.HistoryPath != "" {
		a.journal, err = storage.NewBadgerStore(cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
		journal = a.journal
		log.Debug("history journal opened", "path", cfg.HistoryPath)
	}

	a.resolver, err = resolver.NewResolver(log, a.table, journal, cfg.CacheSize)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
