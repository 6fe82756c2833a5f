package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/commercemock/internal/storage"
	"github.com/getmockd/commercemock/pkg/logging"
	"github.com/getmockd/commercemock/pkg/resources"
	"github.com/getmockd/commercemock/pkg/seed"
)

func newValidateCommand(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and seed fixtures without serving",
		Long: `Validate loads the configuration exactly as serve would, parses every seed
fixture and creates the fixtures in a scratch store with schema validation
enabled. Nothing is started.`,
		Example: `  commercemock validate --config commercemock.yaml
  commercemock validate --seed 'fixtures/**/*.yaml'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}

			registry, err := resources.NewRegistry(storage.NewMemoryStore(), resources.Options{
				StrictDrafts: true,
				DefaultLimit: cfg.Query.DefaultLimit,
				MaxLimit:     cfg.Query.MaxLimit,
			})
			if err != nil {
				return err
			}

			files, err := seed.ReadFiles(cmd.Context(), cfg.Seed.Files)
			if err != nil {
				return err
			}
			loader := seed.NewLoader(registry, logging.Nop())
			if err := loader.Check(files); err != nil {
				return err
			}
			n, err := loader.Apply(cmd.Context(), files)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "configuration OK (listen %s:%d)\n", cfg.Server.Host, cfg.Server.Port)
			fmt.Fprintf(out, "%d seed files, %d fixtures OK\n", len(files), n)
			return nil
		},
	}
	addServerFlags(cmd.Flags(), opts)
	return cmd
}
