package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/sso-harvest/internal/adapters/repo/jsonfile"
	"github.com/bnema/sso-harvest/internal/application"
	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

func newImportCmd(app *app) *cobra.Command {
	var (
		file  string
		pool  string
		quota int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import previously harvested tokens into the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("pool") {
				pool = app.cfg.Registry.Pool
			}
			if !cmd.Flags().Changed("quota") {
				quota = app.cfg.Registry.Quota
			}

			var store ports.ResultStore = app.results
			if file != "" {
				custom, err := jsonfile.NewStore(file)
				if err != nil {
					return err
				}
				store = custom
			}

			tokens, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(tokens) == 0 {
				return fmt.Errorf("no tokens in %s", store.Path())
			}

			var result application.ImportResult
			err = runRegistrySpinner(cmd.Context(), cmd.ErrOrStderr(), "Importing tokens...", func(ctx context.Context) error {
				var importErr error
				result, importErr = app.importer.ImportTokens(ctx, application.ImportCommand{Tokens: tokens, Pool: pool, Quota: quota})
				return importErr
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d tokens into %s (quota %d)\n", result.Count, result.Pool, result.Quota)
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Token file to import (default: output.path)")
	cmd.Flags().StringVar(&pool, "pool", domain.PoolBasic, "Registry pool name")
	cmd.Flags().IntVar(&quota, "quota", 0, "Per-token quota (default depends on the pool)")

	return cmd
}
