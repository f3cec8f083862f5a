package summary

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/sso-harvest/internal/application"
	"github.com/bnema/sso-harvest/internal/domain"
)

type RenderOptions struct {
	// ShowTokens prints full token values instead of masked ones.
	ShowTokens bool
}

// Render formats a finished run for the terminal.
func Render(report application.RunReport, opts RenderOptions) (string, error) {
	return run(func(s styles) string { return renderRun(report, opts, s) })
}

// RenderScan formats the result of reading cookie databases directly.
func RenderScan(report application.ScanReport, opts RenderOptions) (string, error) {
	return run(func(s styles) string { return renderScan(report, opts, s) })
}

func renderRun(report application.RunReport, opts RenderOptions, s styles) string {
	outcomes := report.Harvest.Outcomes
	lines := []string{
		s.title.Render("SSO Harvest"),
		s.header.Render(fmt.Sprintf("profiles: %d  unique tokens: %d  elapsed: %s",
			len(outcomes), len(report.Harvest.Tokens), elapsed(report.StartedAt, report.FinishedAt))),
	}

	if report.ProfilesErr != nil {
		lines = append(lines, s.warning.Render("no profiles: "+report.ProfilesErr.Error()))
	}
	if len(outcomes) == 0 {
		lines = append(lines, s.empty.Render("No profiles were harvested."))
	} else {
		rows := make([]string, 0, len(outcomes))
		for _, outcome := range outcomes {
			rows = append(rows, outcomeLine(outcome, opts, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}

	lines = append(lines, s.section.Render(tail(report, s)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func outcomeLine(outcome application.ProfileOutcome, opts RenderOptions, s styles) string {
	name := s.profile.Render(string(outcome.Profile))

	var status string
	switch {
	case outcome.Err != nil:
		status = s.failed.Render("failed: " + outcome.Err.Error())
	case outcome.Yielded():
		status = s.ok.Render("token") + " " + s.token.Render(displayToken(outcome.Token.Token, opts)) +
			" " + s.detail.Render("("+outcome.Token.Domain+")")
	case outcome.Result == application.ExtractDuplicate:
		status = s.duplicate.Render("duplicate")
	default:
		status = s.none.Render(fmt.Sprintf("no token (%d cookies)", outcome.CookieCount))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, name, " ", status)
	if outcome.NavigationErr != nil && outcome.Err == nil {
		line += " " + s.warning.Render("[navigation incomplete]")
	}
	return line
}

func tail(report application.RunReport, s styles) string {
	lines := []string{s.detail.Render("saved: " + report.ResultPath)}

	switch {
	case report.ImportErr != nil:
		lines = append(lines,
			s.warning.Render("import failed: "+report.ImportErr.Error()),
			s.detail.Render("tokens remain in "+report.ResultPath+" for manual import"),
		)
	case report.Imported != nil:
		lines = append(lines, s.ok.Render(fmt.Sprintf("imported %d tokens into %s (quota %d)",
			report.Imported.Count, report.Imported.Pool, report.Imported.Quota)))
	case len(report.Harvest.Tokens) == 0:
		lines = append(lines, s.empty.Render("No tokens found, nothing imported."))
	default:
		lines = append(lines, s.empty.Render("import skipped"))
	}

	if report.VerifyErr != nil {
		lines = append(lines, s.warning.Render("verify failed: "+report.VerifyErr.Error()))
	}
	if report.Verification != nil {
		lines = append(lines, verificationLines(*report.Verification, s)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func verificationLines(v application.Verification, s styles) []string {
	names := make([]string, 0, len(v.Pools))
	for name := range v.Pools {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	for _, name := range names {
		lines = append(lines, s.detail.Render(fmt.Sprintf("  %s: %d tokens", name, v.Pools[name])))
	}
	return append(lines, s.detail.Render(fmt.Sprintf("registry total: %d tokens", v.Total)))
}

func renderScan(report application.ScanReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Cookie Database Scan"),
		s.header.Render(fmt.Sprintf("cookies: %d  plaintext tokens: %d  failures: %d",
			len(report.Cookies), len(report.Tokens), len(report.Failures))),
	}

	if len(report.Cookies) == 0 && len(report.Failures) == 0 {
		lines = append(lines, s.empty.Render("No matching cookies found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([]string, 0, len(report.Cookies))
	for _, cookie := range report.Cookies {
		value := s.token.Render(displayToken(cookie.Value, opts))
		if cookie.Encrypted() {
			value = s.duplicate.Render(fmt.Sprintf("encrypted (%d bytes)", cookie.EncryptedLen))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			s.profile.Render(string(cookie.Profile)), " ",
			s.detail.Render(cookie.Host+cookie.Path), " ",
			value,
		))
	}

	failed := make([]string, 0, len(report.Failures))
	for profile := range report.Failures {
		failed = append(failed, string(profile))
	}
	sort.Strings(failed)
	for _, profile := range failed {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			s.profile.Render(profile), " ",
			s.failed.Render("failed: "+report.Failures[domain.ProfileID(profile)].Error()),
		))
	}

	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func displayToken(token string, opts RenderOptions) string {
	if opts.ShowTokens {
		return token
	}
	return domain.MaskToken(token)
}

func elapsed(start, end time.Time) string {
	if start.IsZero() || end.Before(start) {
		return "n/a"
	}
	return end.Sub(start).Round(100 * time.Millisecond).String()
}
