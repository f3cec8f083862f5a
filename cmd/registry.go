package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/sso-harvest/internal/application"
)

func newRegistryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the registry admin credential",
	}

	cmd.AddCommand(newRegistrySetTokenCmd(app), newRegistryRemoveTokenCmd(app))

	return cmd
}

func newRegistrySetTokenCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-token",
		Short: "Store the registry admin token read from stdin",
		Long:  "set-token reads the bearer token from the first line of stdin and stores it under " + application.RegistryTokenSecretKey + " in the secret store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read token from stdin: %w", err)
			}

			if err := app.credentials.SetRegistryToken(cmd.Context(), strings.TrimSpace(line)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "registry token stored")
			return err
		},
	}
}

func newRegistryRemoveTokenCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-token",
		Short: "Delete the stored registry admin token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.RemoveRegistryToken(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "registry token removed")
			return err
		},
	}
}
