package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bnema/sso-harvest/internal/adapters/cdp"
	"github.com/bnema/sso-harvest/internal/adapters/chrome"
	"github.com/bnema/sso-harvest/internal/adapters/cookiedb"
	"github.com/bnema/sso-harvest/internal/adapters/profiles"
	"github.com/bnema/sso-harvest/internal/adapters/registry"
	"github.com/bnema/sso-harvest/internal/adapters/render/summary"
	"github.com/bnema/sso-harvest/internal/adapters/repo/jsonfile"
	tomlrepo "github.com/bnema/sso-harvest/internal/adapters/repo/toml"
	chainstore "github.com/bnema/sso-harvest/internal/adapters/secrets/chain"
	filestore "github.com/bnema/sso-harvest/internal/adapters/secrets/file"
	passstore "github.com/bnema/sso-harvest/internal/adapters/secrets/pass"
	"github.com/bnema/sso-harvest/internal/application"
	"github.com/bnema/sso-harvest/internal/config"
	"github.com/bnema/sso-harvest/internal/observability"
	"github.com/bnema/sso-harvest/internal/ports"
)

// Cleanup after a profile: the grace period, one forced kill and the port release.
const terminateSlack = 10 * time.Second

type app struct {
	cfg        config.Config
	configPath string
	logger     *zap.Logger

	secretStore ports.SecretStore
	credentials *application.CredentialService
	profiles    ports.ProfileSource
	results     *jsonfile.Store
	registry    *registry.Client
	configFile  *tomlrepo.Repository

	importer *application.ImportService
	runner   *application.RunService
	fallback *application.FallbackService

	renderRun  func(application.RunReport, summary.RenderOptions) (string, error)
	renderScan func(application.ScanReport, summary.RenderOptions) (string, error)
}

func (a *app) wire(cmd *cobra.Command, configPath, logLevel string) error {
	cfg, err := config.Load(viper.New(), configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}

	logger, err := observability.NewLogger(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	configFile, err := tomlrepo.NewRepository(configPath)
	if err != nil {
		return fmt.Errorf("wire config file: %w", err)
	}

	secretStore, err := newSecretStore(cfg.Secrets)
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}
	credentials := application.NewCredentialService(secretStore)

	results, err := jsonfile.NewStore(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("wire result store: %w", err)
	}

	userDataDir := cfg.Chrome.UserDataDir
	if userDataDir == "" {
		userDataDir = profiles.DefaultUserDataDir()
	}
	profileSource := profiles.New(cfg.ProfileIDs(), userDataDir)

	registryClient := registry.NewClient(
		cfg.Registry.URL,
		&http.Client{Timeout: cfg.Registry.Timeout},
		func(ctx context.Context) (string, error) {
			return credentials.RegistryToken(ctx, cfg.Registry.Token)
		},
		logger,
	)
	importer := application.NewImportService(registryClient, logger)

	launcher := chrome.NewLauncher(chrome.Options{
		Executable:        cfg.Chrome.Executable,
		ProcessName:       cfg.Chrome.ProcessName,
		UserDataDir:       cfg.Chrome.UserDataDir,
		Port:              cfg.Chrome.Port,
		ExtraArgs:         cfg.Chrome.ExtraArgs,
		DisableExtensions: cfg.Chrome.DisableExtensions,
		KillStray:         cfg.Chrome.KillStray,
		StartupDelay:      cfg.Timeouts.Startup,
		TerminateGrace:    cfg.Timeouts.TerminateGrace,
		PortReleaseDelay:  cfg.Timeouts.PortRelease,
	}, nil, logger)

	harvest := application.NewHarvestService(launcher, cdp.NewClient(nil, logger), application.HarvestOptions{
		TargetCookie:      cfg.Target.Cookie,
		CookieURLs:        cfg.Target.URLs,
		NavigateURL:       cfg.Target.NavigateURL,
		ReadyTimeout:      cfg.Timeouts.Ready,
		ConnectTimeout:    cfg.Timeouts.Connect,
		NavigationTimeout: cfg.Timeouts.Navigation,
		CookieSettle:      cfg.Timeouts.CookieSettle,
		CookieReadTimeout: cfg.Timeouts.CookieRead,
		ProfileTimeout:    cfg.Timeouts.Profile,
		TerminateTimeout:  cfg.Timeouts.TerminateGrace + cfg.Timeouts.PortRelease + terminateSlack,
	}, logger, ports.SystemClock{})

	*a = app{
		cfg:         cfg,
		configPath:  configFile.Path(),
		logger:      logger,
		secretStore: secretStore,
		credentials: credentials,
		profiles:    profileSource,
		results:     results,
		registry:    registryClient,
		configFile:  configFile,
		importer:    importer,
		runner:      application.NewRunService(profileSource, launcher, harvest, results, importer, logger, ports.SystemClock{}),
		fallback:    application.NewFallbackService(profileSource, cookiedb.NewReader(userDataDir), logger),
		renderRun:   summary.Render,
		renderScan:  summary.RenderScan,
	}
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newSecretStore(cfg config.SecretsConfig) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.SecretsPass:
		return passstore.NewStore(), nil
	case config.SecretsFile:
		return filestore.NewStore(cfg.FilePath), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(cfg.FilePath)
	}
}
