package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfilesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the browser profiles a harvest would visit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			listed, err := app.profiles.Profiles(cmd.Context())
			if err != nil {
				return err
			}
			for _, profile := range listed {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), profile); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
