package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/equihire/equihire-core/config"
	"github.com/equihire/equihire-core/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	usage       string
	description string
	// needsConfig commands load env configuration before running.
	needsConfig bool
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

var errUsage = errors.New("invalid usage")

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cmdCtx := &commandContext{Ctx: context.Background(), Logger: logger, Out: os.Stdout}
	if cmd.needsConfig {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			logger.ErrorContext(cmdCtx.Ctx, "load config", "error", err)
			os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
		}
		cmdCtx.Config = cfg
	}

	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		if errors.Is(runErr, errUsage) {
			_ = writef(os.Stderr, "%v\nusage: equihire-admin %s %s\n", runErr, cmd.name, cmd.usage)
			os.Exit(2) //nolint:forbidigo // CLI must exit with usage status on bad arguments
		}
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			usage:       "[--timeout 5m] [--status]",
			description: "Apply pending database migrations (or list them with --status)",
			needsConfig: true,
			run:         runMigrate,
		},
		"orgs": {
			name:        "orgs",
			usage:       "[--limit N] [--offset N] [--json]",
			description: "List organizations with member counts",
			needsConfig: true,
			run:         runOrgs,
		},
		"integrations": {
			name:        "integrations",
			usage:       "[--json] [--strict]",
			description: "Check every external integration once and print the results",
			needsConfig: true,
			run:         runIntegrations,
		},
		"select-view": {
			name:        "select-view",
			usage:       "<path> <authenticated> <has-org>",
			description: "Print the screen shown for a path and auth state",
			run:         runSelectView,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: equihire-admin <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-14s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
