package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/sso-harvest/internal/adapters/render/summary"
	"github.com/bnema/sso-harvest/internal/application"
	"github.com/bnema/sso-harvest/internal/domain"
)

func newHarvestCmd(app *app) *cobra.Command {
	var (
		profileNames []string
		noImport     bool
		noVerify     bool
		pool         string
		quota        int
		asJSON       bool
		showTokens   bool
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest session cookies from every profile and import them",
		Long:  "harvest closes leftover browser processes, visits each profile in turn, saves the unique tokens to the output file and imports them into the registry.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("pool") {
				pool = app.cfg.Registry.Pool
			}
			if !cmd.Flags().Changed("quota") {
				quota = app.cfg.Registry.Quota
			}

			report, runErr := app.runner.Run(cmd.Context(), application.RunCommand{
				Profiles:   toProfileIDs(profileNames),
				Pool:       pool,
				Quota:      quota,
				SkipImport: noImport,
				SkipVerify: noVerify,
			})
			if report.Harvest.Outcomes == nil && runErr != nil {
				return runErr
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), newRunJSON(report, showTokens)); err != nil {
					return err
				}
				return runErr
			}

			rendered, err := app.renderRun(report, summary.RenderOptions{ShowTokens: showTokens})
			if err != nil {
				return fmt.Errorf("render summary: %w", err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringArrayVar(&profileNames, "profile", nil, "Profile directory to harvest (repeatable, default: configured or discovered)")
	cmd.Flags().BoolVar(&noImport, "no-import", false, "Only save tokens locally")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the registry count check after import")
	cmd.Flags().StringVar(&pool, "pool", domain.PoolBasic, "Registry pool name")
	cmd.Flags().IntVar(&quota, "quota", 0, "Per-token quota (default depends on the pool)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&showTokens, "show-tokens", false, "Print full token values")

	return cmd
}

type profileJSON struct {
	Profile         string `json:"profile"`
	State           string `json:"state"`
	Result          string `json:"result"`
	Cookies         int    `json:"cookies"`
	Token           string `json:"token,omitempty"`
	Domain          string `json:"domain,omitempty"`
	Error           string `json:"error,omitempty"`
	NavigationError string `json:"navigation_error,omitempty"`
	TerminateError  string `json:"terminate_error,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
}

type importJSON struct {
	Pool  string `json:"pool"`
	Count int    `json:"count"`
	Quota int    `json:"quota"`
}

type verificationJSON struct {
	Pools map[string]int `json:"pools"`
	Total int            `json:"total"`
}

type runJSON struct {
	RunID        string            `json:"run_id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	ResultPath   string            `json:"result_path"`
	UniqueTokens int               `json:"unique_tokens"`
	ProfileError string            `json:"profile_error,omitempty"`
	Profiles     []profileJSON     `json:"profiles"`
	Imported     *importJSON       `json:"imported,omitempty"`
	ImportError  string            `json:"import_error,omitempty"`
	Verification *verificationJSON `json:"verification,omitempty"`
	VerifyError  string            `json:"verify_error,omitempty"`
}

func newRunJSON(report application.RunReport, showTokens bool) runJSON {
	out := runJSON{
		RunID:        report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		ResultPath:   report.ResultPath,
		UniqueTokens: len(report.Harvest.Tokens),
		ProfileError: errString(report.ProfilesErr),
		Profiles:     make([]profileJSON, 0, len(report.Harvest.Outcomes)),
		ImportError:  errString(report.ImportErr),
		VerifyError:  errString(report.VerifyErr),
	}

	for _, outcome := range report.Harvest.Outcomes {
		row := profileJSON{
			Profile:         string(outcome.Profile),
			State:           string(outcome.State),
			Result:          string(outcome.Result),
			Cookies:         outcome.CookieCount,
			Error:           errString(outcome.Err),
			NavigationError: errString(outcome.NavigationErr),
			TerminateError:  errString(outcome.TerminateErr),
			DurationMS:      outcome.Duration.Milliseconds(),
		}
		if outcome.Token != nil {
			row.Domain = outcome.Token.Domain
			row.Token = maskUnless(outcome.Token.Token, showTokens)
		}
		out.Profiles = append(out.Profiles, row)
	}

	if report.Imported != nil {
		out.Imported = &importJSON{Pool: report.Imported.Pool, Count: report.Imported.Count, Quota: report.Imported.Quota}
	}
	if report.Verification != nil {
		out.Verification = &verificationJSON{Pools: report.Verification.Pools, Total: report.Verification.Total}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

func maskUnless(token string, show bool) string {
	if show {
		return token
	}
	return domain.MaskToken(token)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func toProfileIDs(names []string) []domain.ProfileID {
	out := make([]domain.ProfileID, 0, len(names))
	for _, name := range names {
		out = append(out, domain.ProfileID(name))
	}
	return out
}
