// Package app wires the cache, resolver, listers and renderers behind the
// openports command.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openports/openports/internal/iana"
	"github.com/openports/openports/internal/lsof"
	"github.com/openports/openports/internal/native"
	"github.com/openports/openports/internal/output"
	"github.com/openports/openports/internal/services"
	"github.com/openports/openports/internal/tui"
	"github.com/openports/openports/pkg/model"
)

var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func SetVersionBuildCommitString(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	buildDate = d
}

type options struct {
	jsonOut        bool
	tuiMode        bool
	noColor        bool
	cachePath      string
	source         string
	compatTCPFback bool
	skipRefresh    bool
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "openports",
		Short: "Show open sockets, their processes, and resolved service names",
		Long: "openports lists the host's open TCP/UDP sockets with their owning\n" +
			"processes and resolves each local port to a service name using the\n" +
			"system services database and a cached copy of the IANA registry.",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print connections as JSON")
	cmd.Flags().BoolVar(&opts.tuiMode, "tui", false, "open an interactive table")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.cachePath, "cache", iana.DefaultFileName, "path of the cached registry file")
	cmd.Flags().StringVar(&opts.source, "source", "lsof", "socket source: lsof or native")
	cmd.Flags().BoolVar(&opts.compatTCPFback, "compat-tcp-fallback", false,
		"registry fallback consults tcp rows for every protocol (historical behavior)")
	cmd.Flags().BoolVar(&opts.skipRefresh, "skip-refresh", false, "never download the registry, use the cache as-is")

	return cmd
}

func versionString() string {
	s := version
	if commit != "" {
		s += " (" + commit
		if buildDate != "" {
			s += ", " + buildDate
		}
		s += ")"
	}
	return s
}

func run(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stderr := cmd.ErrOrStderr()

	cache := iana.NewCache(opts.cachePath)
	if !opts.skipRefresh {
		if err := cache.Refresh(ctx); err != nil {
			fmt.Fprintf(stderr, "warning: registry refresh failed: %v (continuing with cached data)\n", err)
		}
	}

	var registry *iana.Registry
	if reg, err := iana.LoadRegistry(cache.Path); err == nil {
		registry = reg
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(stderr, "warning: registry unusable: %v\n", err)
	}

	resolver := services.NewResolver(services.DefaultPath, registry, services.Options{
		TCPOnlyFallback: opts.compatTCPFback,
	})

	list := func() ([]model.Connection, int, error) {
		parsed, err := listConnections(ctx, opts.source)
		if err != nil {
			return nil, 0, err
		}
		conns, skipped := buildRows(parsed, resolver)
		return conns, skipped, nil
	}

	conns, skipped, err := list()
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Fprintf(stderr, "warning: skipped %d unparsable listing lines\n", skipped)
	}

	switch {
	case opts.jsonOut:
		s, err := output.ToJSON(conns)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
	case opts.tuiMode:
		return tui.Run(conns, list)
	default:
		output.RenderTable(cmd.OutOrStdout(), conns, !opts.noColor)
	}
	return nil
}

func listConnections(ctx context.Context, source string) ([]model.ParsedLine, error) {
	switch source {
	case "lsof":
		listCtx, cancel := context.WithTimeout(ctx, lsof.DefaultTimeout)
		defer cancel()
		lister := &lsof.Lister{}
		return lister.List(listCtx)
	case "native":
		return native.List(ctx)
	default:
		return nil, fmt.Errorf("unknown source %q (want lsof or native)", source)
	}
}

// buildRows resolves service names for the parsed lines and separates skips.
func buildRows(parsed []model.ParsedLine, resolver *services.Resolver) ([]model.Connection, int) {
	var conns []model.Connection
	skipped := 0
	for _, line := range parsed {
		if line.Conn == nil {
			skipped++
			continue
		}
		conn := *line.Conn
		conn.Service = resolver.Resolve(conn.LocalPort, conn.Protocol)
		conns = append(conns, conn)
	}
	output.SortConnections(conns)
	return conns, skipped
}
