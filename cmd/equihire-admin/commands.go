package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/equihire/equihire-core/internal/bootstrap"
	"github.com/equihire/equihire-core/internal/data"
	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/domain/view"
	"github.com/equihire/equihire-core/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	opts := migrateOptions{}
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "maximum time to spend applying migrations")
	fs.BoolVar(&opts.Status, "status", false, "list pending migrations without applying them")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	if opts.Timeout <= 0 {
		return opts, fmt.Errorf("%w: --timeout must be positive", errUsage)
	}
	return opts, nil
}

func runMigrate(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	conns, err := connectInfra(cmdCtx, false)
	if err != nil {
		return err
	}
	defer conns.Close(cmdCtx)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	if opts.Status {
		pending, pendErr := migrate.Pending(ctx, conns.DB)
		if pendErr != nil {
			return fmt.Errorf("list pending migrations: %w", pendErr)
		}
		return printPending(cmdCtx.Out, pending)
	}
	return bootstrap.RunMigrations(ctx, conns.DB, cmdCtx.Logger)
}

func printPending(w io.Writer, pending []string) error {
	if len(pending) == 0 {
		return writef(w, "Schema is up to date.\n")
	}
	if err := writef(w, "Pending migrations:\n"); err != nil {
		return err
	}
	for _, v := range pending {
		if err := writef(w, "  %s\n", v); err != nil {
			return err
		}
	}
	return nil
}

type orgsOptions struct {
	Limit  int
	Offset int
	JSON   bool
}

func parseOrgsFlags(args []string) (orgsOptions, error) {
	opts := orgsOptions{}
	fs := flag.NewFlagSet("orgs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&opts.Limit, "limit", 50, "maximum organizations to list")
	fs.IntVar(&opts.Offset, "offset", 0, "organizations to skip")
	fs.BoolVar(&opts.JSON, "json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	if opts.Limit <= 0 {
		return opts, fmt.Errorf("%w: --limit must be positive", errUsage)
	}
	if opts.Offset < 0 {
		return opts, fmt.Errorf("%w: --offset cannot be negative", errUsage)
	}
	return opts, nil
}

func runOrgs(cmdCtx *commandContext, args []string) error {
	opts, err := parseOrgsFlags(args)
	if err != nil {
		return err
	}

	conns, err := connectInfra(cmdCtx, false)
	if err != nil {
		return err
	}
	defer conns.Close(cmdCtx)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	orgs, err := data.NewOrganizationRepo(conns.DB).List(ctx, model.OrganizationListOptions{
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	if opts.JSON {
		return writeJSON(cmdCtx.Out, orgs)
	}
	return printOrganizations(cmdCtx.Out, orgs)
}

func printOrganizations(w io.Writer, orgs []*model.OrganizationSummary) error {
	if len(orgs) == 0 {
		return writef(w, "(no organizations)\n")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tNAME\tSLUG\tMEMBERS\tCREATED\n"); err != nil {
		return err
	}
	for _, o := range orgs {
		if err := writef(tw, "%s\t%s\t%s\t%d\t%s\n",
			o.ID, o.Name, o.Slug, o.MemberCount, o.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type integrationsOptions struct {
	JSON   bool
	Strict bool
}

func parseIntegrationsFlags(args []string) (integrationsOptions, error) {
	opts := integrationsOptions{}
	fs := flag.NewFlagSet("integrations", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.JSON, "json", false, "print JSON instead of a table")
	fs.BoolVar(&opts.Strict, "strict", false, "fail when any integration is disconnected")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	return opts, nil
}

func runIntegrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseIntegrationsFlags(args)
	if err != nil {
		return err
	}

	conns, err := connectInfra(cmdCtx, true)
	if err != nil {
		return err
	}
	defer conns.Close(cmdCtx)

	services, err := bootstrap.NewServices(cmdCtx.Ctx, &bootstrap.ServiceDeps{
		Config:      &cmdCtx.Config,
		DB:          conns.DB,
		RedisClient: conns.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	snap := services.Integrations.Snapshot(cmdCtx.Ctx)
	if opts.JSON {
		err = writeJSON(cmdCtx.Out, snap)
	} else {
		err = printSnapshot(cmdCtx.Out, snap)
	}
	if err != nil {
		return err
	}
	if down := snap.Count(model.IntegrationDisconnected); opts.Strict && down > 0 {
		return fmt.Errorf("%d integration(s) disconnected", down)
	}
	return nil
}

func printSnapshot(w io.Writer, snap model.IntegrationSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "CATEGORY\tNAME\tSTATE\tLATENCY\tDETAIL\n"); err != nil {
		return err
	}
	for _, it := range snap.Items {
		if err := writef(tw, "%s\t%s\t%s\t%dms\t%s\n",
			it.Category, it.Name, it.State, it.LatencyMS, it.Detail); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d connected, %d degraded, %d disconnected\n",
		snap.Count(model.IntegrationConnected),
		snap.Count(model.IntegrationDegraded),
		snap.Count(model.IntegrationDisconnected))
}

func runSelectView(cmdCtx *commandContext, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: expected 3 arguments, got %d", errUsage, len(args))
	}
	authenticated, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("%w: authenticated: %w", errUsage, err)
	}
	hasOrg, err := strconv.ParseBool(args[2])
	if err != nil {
		return fmt.Errorf("%w: has-org: %w", errUsage, err)
	}
	path := args[0]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return writef(cmdCtx.Out, "%s\n", view.Select(path, authenticated, hasOrg))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
