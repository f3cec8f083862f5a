package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/bnema/sso-harvest/internal/domain"
)

const (
	EnvPrefix   = "SSOH"
	configName  = "config"
	configType  = "toml"
	configDir   = ".ssoh"
	SecretsAuto = "auto"
	SecretsPass = "pass"
	SecretsFile = "file"
)

type Config struct {
	Profiles []string       `mapstructure:"profiles"`
	Chrome   ChromeConfig   `mapstructure:"chrome"`
	Target   TargetConfig   `mapstructure:"target"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	Output   OutputConfig   `mapstructure:"output"`
	Registry RegistryConfig `mapstructure:"registry"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Logger   LoggerConfig   `mapstructure:"log"`
}

type ChromeConfig struct {
	Executable        string   `mapstructure:"executable"`
	ProcessName       string   `mapstructure:"process_name"`
	UserDataDir       string   `mapstructure:"user_data_dir"`
	Port              int      `mapstructure:"port" validate:"min=1,max=65535"`
	ExtraArgs         []string `mapstructure:"extra_args"`
	DisableExtensions bool     `mapstructure:"disable_extensions"`
	KillStray         bool     `mapstructure:"kill_stray"`
}

type TargetConfig struct {
	Cookie      string   `mapstructure:"cookie"`
	URLs        []string `mapstructure:"urls" validate:"min=1,dive,url"`
	NavigateURL string   `mapstructure:"navigate_url" validate:"omitempty,url"`
	Domains     []string `mapstructure:"domains"`
}

type TimeoutsConfig struct {
	Startup        time.Duration `mapstructure:"startup" validate:"min=0"`
	Ready          time.Duration `mapstructure:"ready" validate:"gt=0"`
	Connect        time.Duration `mapstructure:"connect" validate:"gt=0"`
	Navigation     time.Duration `mapstructure:"navigation" validate:"gt=0"`
	CookieSettle   time.Duration `mapstructure:"cookie_settle" validate:"min=0"`
	CookieRead     time.Duration `mapstructure:"cookie_read" validate:"gt=0"`
	Profile        time.Duration `mapstructure:"profile" validate:"gt=0"`
	TerminateGrace time.Duration `mapstructure:"terminate_grace" validate:"min=0"`
	PortRelease    time.Duration `mapstructure:"port_release" validate:"min=0"`
}

type OutputConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	ScriptPath string `mapstructure:"script_path"`
}

type RegistryConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Token   string        `mapstructure:"token"`
	Pool    string        `mapstructure:"pool"`
	Quota   int           `mapstructure:"quota" validate:"min=0"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

type SecretsConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=auto pass file"`
	FilePath string `mapstructure:"file_path"`
}

type LoggerConfig struct {
	Level      string      `mapstructure:"level"`
	Format     string      `mapstructure:"format" validate:"omitempty,oneof=console json"`
	AddSource  bool        `mapstructure:"add_source"`
	LogFile    string      `mapstructure:"log_file"`
	MaxSize    int         `mapstructure:"max_size"`
	MaxBackups int         `mapstructure:"max_backups"`
	MaxAge     int         `mapstructure:"max_age"`
	Compress   bool        `mapstructure:"compress"`
	Colors     ColorConfig `mapstructure:"colors"`
}

type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
}

// DefaultPath is ~/.ssoh/config.toml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDir, configName+"."+configType), nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("profiles", []string{})

	v.SetDefault("chrome.executable", "")
	v.SetDefault("chrome.process_name", "")
	v.SetDefault("chrome.user_data_dir", "")
	v.SetDefault("chrome.port", 9333)
	v.SetDefault("chrome.extra_args", []string{})
	v.SetDefault("chrome.disable_extensions", true)
	v.SetDefault("chrome.kill_stray", true)

	v.SetDefault("target.cookie", "sso")
	v.SetDefault("target.urls", []string{"https://grok.com", "https://x.com"})
	v.SetDefault("target.navigate_url", "https://grok.com")
	v.SetDefault("target.domains", []string{"grok.com", "x.com"})

	v.SetDefault("timeouts.startup", "0s")
	v.SetDefault("timeouts.ready", "15s")
	v.SetDefault("timeouts.connect", "10s")
	v.SetDefault("timeouts.navigation", "15s")
	v.SetDefault("timeouts.cookie_settle", "2s")
	v.SetDefault("timeouts.cookie_read", "10s")
	v.SetDefault("timeouts.profile", "60s")
	v.SetDefault("timeouts.terminate_grace", "5s")
	v.SetDefault("timeouts.port_release", "2s")

	v.SetDefault("output.path", filepath.Join("data", "extracted_tokens.json"))
	v.SetDefault("output.script_path", filepath.Join("data", "extract_sso.js"))

	v.SetDefault("registry.url", "http://localhost:8001")
	v.SetDefault("registry.token", "")
	v.SetDefault("registry.pool", domain.PoolBasic)
	v.SetDefault("registry.quota", 0)
	v.SetDefault("registry.timeout", "30s")

	v.SetDefault("secrets.backend", SecretsAuto)
	v.SetDefault("secrets.file_path", filepath.Join("~", configDir, "secrets"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.add_source", false)
	v.SetDefault("log.log_file", filepath.Join("~", configDir, "logs", "harvest.log"))
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.colors.debug", "cyan")
	v.SetDefault("log.colors.info", "green")
	v.SetDefault("log.colors.warn", "yellow")
	v.SetDefault("log.colors.error", "red")
}

// Load reads path (or the default location) with SSOH_* environment
// overrides. A missing config file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return Config{}, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Dir(defaultPath))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &configNotFound):
		case path != "" && errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Chrome.UserDataDir, &c.Chrome.Executable, &c.Output.Path, &c.Output.ScriptPath, &c.Secrets.FilePath, &c.Logger.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their config key rather than the Go name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			key := strings.TrimPrefix(fe.Namespace(), "Config.")
			if fe.Param() != "" {
				return fmt.Errorf("%s: value %v fails %s=%s", key, fe.Value(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("%s: value %v fails %s", key, fe.Value(), fe.Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if strings.TrimSpace(c.Target.Cookie) == "" {
		return fmt.Errorf("target.cookie is required")
	}
	for _, profile := range c.ProfileIDs() {
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
	}
	return nil
}

func (c Config) ProfileIDs() []domain.ProfileID {
	out := make([]domain.ProfileID, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		out = append(out, domain.ProfileID(p))
	}
	return domain.NormalizeProfiles(out)
}
