package toml

import (
	"fmt"
	"time"

	"github.com/bnema/sso-harvest/internal/config"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	Profiles []string       `toml:"profiles"`
	Chrome   chromeSchema   `toml:"chrome"`
	Target   targetSchema   `toml:"target"`
	Timeouts timeoutsSchema `toml:"timeouts"`
	Output   outputSchema   `toml:"output"`
	Registry registrySchema `toml:"registry"`
	Secrets  secretsSchema  `toml:"secrets"`
	Log      logSchema      `toml:"log"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Profiles == nil {
		s.Profiles = []string{}
	}
	if s.Chrome.ExtraArgs == nil {
		s.Chrome.ExtraArgs = []string{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type chromeSchema struct {
	Executable        string   `toml:"executable"`
	ProcessName       string   `toml:"process_name"`
	UserDataDir       string   `toml:"user_data_dir"`
	Port              int      `toml:"port"`
	ExtraArgs         []string `toml:"extra_args"`
	DisableExtensions bool     `toml:"disable_extensions"`
	KillStray         bool     `toml:"kill_stray"`
}

type targetSchema struct {
	Cookie      string   `toml:"cookie"`
	URLs        []string `toml:"urls"`
	NavigateURL string   `toml:"navigate_url"`
	Domains     []string `toml:"domains"`
}

type timeoutsSchema struct {
	Startup        string `toml:"startup"`
	Ready          string `toml:"ready"`
	Connect        string `toml:"connect"`
	Navigation     string `toml:"navigation"`
	CookieSettle   string `toml:"cookie_settle"`
	CookieRead     string `toml:"cookie_read"`
	Profile        string `toml:"profile"`
	TerminateGrace string `toml:"terminate_grace"`
	PortRelease    string `toml:"port_release"`
}

type outputSchema struct {
	Path       string `toml:"path"`
	ScriptPath string `toml:"script_path"`
}

type registrySchema struct {
	URL     string `toml:"url"`
	Pool    string `toml:"pool"`
	Quota   int    `toml:"quota"`
	Timeout string `toml:"timeout"`
}

type secretsSchema struct {
	Backend  string `toml:"backend"`
	FilePath string `toml:"file_path"`
}

type logSchema struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	LogFile    string `toml:"log_file"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
	Compress   bool   `toml:"compress"`
}

// toSchema never carries the registry token; it belongs in the secret store.
func toSchema(cfg config.Config) fileSchema {
	return fileSchema{
		Version:  currentSchemaVersion,
		Profiles: cfg.Profiles,
		Chrome: chromeSchema{
			Executable:        cfg.Chrome.Executable,
			ProcessName:       cfg.Chrome.ProcessName,
			UserDataDir:       cfg.Chrome.UserDataDir,
			Port:              cfg.Chrome.Port,
			ExtraArgs:         cfg.Chrome.ExtraArgs,
			DisableExtensions: cfg.Chrome.DisableExtensions,
			KillStray:         cfg.Chrome.KillStray,
		},
		Target: targetSchema{
			Cookie:      cfg.Target.Cookie,
			URLs:        cfg.Target.URLs,
			NavigateURL: cfg.Target.NavigateURL,
			Domains:     cfg.Target.Domains,
		},
		Timeouts: timeoutsSchema{
			Startup:        formatDuration(cfg.Timeouts.Startup),
			Ready:          formatDuration(cfg.Timeouts.Ready),
			Connect:        formatDuration(cfg.Timeouts.Connect),
			Navigation:     formatDuration(cfg.Timeouts.Navigation),
			CookieSettle:   formatDuration(cfg.Timeouts.CookieSettle),
			CookieRead:     formatDuration(cfg.Timeouts.CookieRead),
			Profile:        formatDuration(cfg.Timeouts.Profile),
			TerminateGrace: formatDuration(cfg.Timeouts.TerminateGrace),
			PortRelease:    formatDuration(cfg.Timeouts.PortRelease),
		},
		Output: outputSchema{Path: cfg.Output.Path, ScriptPath: cfg.Output.ScriptPath},
		Registry: registrySchema{
			URL:     cfg.Registry.URL,
			Pool:    cfg.Registry.Pool,
			Quota:   cfg.Registry.Quota,
			Timeout: formatDuration(cfg.Registry.Timeout),
		},
		Secrets: secretsSchema{Backend: cfg.Secrets.Backend, FilePath: cfg.Secrets.FilePath},
		Log: logSchema{
			Level:      cfg.Logger.Level,
			Format:     cfg.Logger.Format,
			LogFile:    cfg.Logger.LogFile,
			MaxSize:    cfg.Logger.MaxSize,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAge,
			Compress:   cfg.Logger.Compress,
		},
	}
}

func formatDuration(d time.Duration) string {
	return d.String()
}
