package script

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed console.js.tmpl
var consoleTemplate string

var tmpl = template.Must(template.New("console").Parse(consoleTemplate))

// Generate renders the console snippet that copies cookie from site.
func Generate(cookie, site string) (string, error) {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return "", errors.New("cookie name is required")
	}
	if site = strings.TrimSpace(site); site == "" {
		site = "the target site"
	}

	var buf bytes.Buffer
	data := struct {
		Cookie string
		Site   string
	}{Cookie: cookie, Site: site}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render console script: %w", err)
	}

	return buf.String(), nil
}

// Write stores content at path, creating parent directories.
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create script directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write console script: %w", err)
	}
	return nil
}
