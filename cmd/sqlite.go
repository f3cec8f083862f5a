package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/sso-harvest/internal/adapters/render/summary"
	"github.com/bnema/sso-harvest/internal/application"
)

func newSQLiteCmd(app *app) *cobra.Command {
	var (
		profileNames []string
		domains      []string
		name         string
		write        bool
		showTokens   bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "sqlite",
		Short: "Read the cookie databases directly without launching a browser",
		Long:  "sqlite copies each profile's cookie database and reports matching rows. Encrypted values are listed with their size only; plaintext values count as tokens.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("domain") {
				domains = app.cfg.Target.Domains
			}
			if !cmd.Flags().Changed("name") {
				name = app.cfg.Target.Cookie
			}

			report, err := app.fallback.Scan(cmd.Context(), application.ScanCommand{
				Profiles: toProfileIDs(profileNames),
				Domains:  domains,
				Name:     name,
			})
			if err != nil {
				return err
			}

			if write && len(report.Tokens) > 0 {
				if err := app.results.Save(cmd.Context(), report.Tokens); err != nil {
					return fmt.Errorf("save results: %w", err)
				}
				app.logger.Info("plaintext tokens saved")
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), newScanJSON(report, showTokens))
			}

			rendered, err := app.renderScan(report, summary.RenderOptions{ShowTokens: showTokens})
			if err != nil {
				return fmt.Errorf("render scan: %w", err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
				return err
			}
			if write && len(report.Tokens) > 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %d tokens to %s\n", len(report.Tokens), app.results.Path())
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&profileNames, "profile", nil, "Profile directory to scan (repeatable)")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "Cookie host to match, subdomains included (default: target.domains)")
	cmd.Flags().StringVar(&name, "name", "", "Cookie name (default: target.cookie)")
	cmd.Flags().BoolVar(&write, "write", false, "Save plaintext tokens to the output file")
	cmd.Flags().BoolVar(&showTokens, "show-tokens", false, "Print full cookie values")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type scanCookieJSON struct {
	Profile      string `json:"profile"`
	Host         string `json:"host"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Value        string `json:"value,omitempty"`
	Encrypted    bool   `json:"encrypted"`
	EncryptedLen int    `json:"encrypted_len,omitempty"`
}

type scanJSON struct {
	Cookies  []scanCookieJSON  `json:"cookies"`
	Failures map[string]string `json:"failures,omitempty"`
	Tokens   int               `json:"plaintext_tokens"`
}

func newScanJSON(report application.ScanReport, showTokens bool) scanJSON {
	out := scanJSON{Cookies: make([]scanCookieJSON, 0, len(report.Cookies)), Tokens: len(report.Tokens)}
	for _, cookie := range report.Cookies {
		row := scanCookieJSON{
			Profile:      string(cookie.Profile),
			Host:         cookie.Host,
			Name:         cookie.Name,
			Path:         cookie.Path,
			Encrypted:    cookie.Encrypted(),
			EncryptedLen: cookie.EncryptedLen,
		}
		if cookie.Value != "" {
			row.Value = maskUnless(cookie.Value, showTokens)
		}
		out.Cookies = append(out.Cookies, row)
	}
	if len(report.Failures) > 0 {
		out.Failures = make(map[string]string, len(report.Failures))
		for profile, err := range report.Failures {
			out.Failures[string(profile)] = err.Error()
		}
	}
	return out
}
