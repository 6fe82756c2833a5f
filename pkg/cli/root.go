package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/getmockd/commercemock/pkg/config"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// Execute runs the root command with the process arguments.
// This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. Running the root command without
// a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	opts := &serveOptions{}

	root := &cobra.Command{
		Use:   "commercemock",
		Short: "commercemock is an in-memory mock of the commercetools HTTP API",
		Long: `commercemock serves carts, orders, zones, extensions, cart discounts and
discount codes from memory, per project key, with optimistic concurrency
and update actions.

Configuration can be provided via a configuration file, COMMERCEMOCK_*
environment variables or flags, in increasing order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true, // errors are printed by Execute
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (YAML or JSON)")
	addServerFlags(root.Flags(), opts)

	root.AddCommand(
		newServeCommand(opts),
		newValidateCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(cmd.OutOrStdout())
			return nil
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "commercemock %s (commit %s, built %s)\n", Version, Commit, BuildDate)
}

// serveOptions holds the flag values shared by the root and serve commands.
type serveOptions struct {
	configFile string

	host         string
	port         int
	logLevel     string
	logFormat    string
	logFile      string
	seedFiles    []string
	strictDrafts bool
	defaultLimit int
	maxLimit     int
}

func addServerFlags(fs *pflag.FlagSet, o *serveOptions) {
	fs.StringVar(&o.host, "host", config.DefaultHost, "Interface to listen on")
	fs.IntVarP(&o.port, "port", "p", config.DefaultPort, "HTTP server port")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "text", "Log format (text, json)")
	fs.StringVar(&o.logFile, "log-file", "", "Also write JSON logs to this file")
	fs.StringSliceVar(&o.seedFiles, "seed", nil, "Seed fixture files or globs (repeatable)")
	fs.BoolVar(&o.strictDrafts, "strict", false, "Validate drafts against the JSON schemas")
	fs.IntVar(&o.defaultLimit, "default-limit", 20, "Default query page size")
	fs.IntVar(&o.maxLimit, "max-limit", 500, "Maximum query page size")
}

// loadConfig reads the configuration file and environment, then applies the
// flags that were set explicitly.
func loadConfig(fs *pflag.FlagSet, o *serveOptions) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	if fs.Changed("host") {
		cfg.Server.Host = o.host
	}
	if fs.Changed("port") {
		cfg.Server.Port = o.port
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if fs.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if fs.Changed("seed") {
		cfg.Seed.Files = append(cfg.Seed.Files, o.seedFiles...)
	}
	if fs.Changed("strict") {
		cfg.StrictDrafts = o.strictDrafts
	}
	if fs.Changed("default-limit") {
		cfg.Query.DefaultLimit = o.defaultLimit
	}
	if fs.Changed("max-limit") {
		cfg.Query.MaxLimit = o.maxLimit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
