package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "ssoh",
		Short:         "SSO harvest: collect browser session cookies and import them into a token registry",
		Long:          "ssoh launches each browser profile with a remote debugging port, reads the session cookie through the DevTools protocol, saves the unique tokens to a JSON file and imports them into a grok2api style token registry.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd, configPath, logLevel)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.ssoh/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newHarvestCmd(app),
		newImportCmd(app),
		newVerifyCmd(app),
		newProfilesCmd(app),
		newSQLiteCmd(app),
		newScriptCmd(app),
		newConfigCmd(app),
		newRegistryCmd(app),
	)

	return rootCmd
}
