package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bnema/sso-harvest/internal/application"
)

func newVerifyCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Print per-pool token counts from the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var verification application.Verification
			err := runRegistrySpinner(cmd.Context(), cmd.ErrOrStderr(), "Querying registry...", func(ctx context.Context) error {
				var verifyErr error
				verification, verifyErr = app.importer.Verify(ctx)
				return verifyErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), verificationJSON{Pools: verification.Pools, Total: verification.Total})
			}

			names := make([]string, 0, len(verification.Pools))
			for name := range verification.Pools {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				if _, err := fmt.Fprintf(out, "%s: %d tokens\n", name, verification.Pools[name]); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(out, "total: %d tokens (%s)\n", verification.Total, app.registry.Endpoint())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
