package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/sso-harvest/internal/adapters/script"
)

func newScriptCmd(app *app) *cobra.Command {
	var (
		output   string
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Generate a DevTools console snippet that copies the session cookie",
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := script.Generate(app.cfg.Target.Cookie, app.cfg.Target.NavigateURL)
			if err != nil {
				return err
			}

			if toStdout {
				_, err = fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}

			if output == "" {
				output = app.cfg.Output.ScriptPath
			}
			if err := script.Write(output, content); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "console script written to %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Script file (default: output.script_path)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the script instead of writing it")

	return cmd
}
