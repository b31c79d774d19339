package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"geman/internal/config"
	"geman/internal/logx"
	"geman/internal/paths"
	"geman/internal/registry"
	"geman/internal/release"
	"geman/internal/tools"
)

var (
	outputJSON bool
	verbose    bool
	noProgress bool
	configPath string
)

// resolvePaths is replaced in tests.
var resolvePaths = paths.Resolve

// Execute runs the root cobra command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "geman",
		Short:         "Manage GE-Proton and Wine-GE compatibility tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr as well as the log file")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress display")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newUserSettingsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// app is everything a command needs, opened once per invocation.
type app struct {
	cfg     config.Config
	paths   paths.Paths
	log     zerolog.Logger
	closer  io.Closer
	manager *tools.Manager
}

func openApp(cmd *cobra.Command, extra ...release.Option) (*app, error) {
	pp := resolvePaths()

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = pp.ConfigFile
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)

	if err := pp.EnsureDirs(); err != nil {
		return nil, err
	}

	var console io.Writer
	if verbose {
		console = cmd.ErrOrStderr()
	}
	logger, closer, err := logx.New(pp.LogsDir, cfg.LogLevel, console)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("config", cfgFile).Str("steam_root", pp.SteamRoot).Msg("geman starting")

	reg, err := registry.Load(pp.RegistryFile)
	if err != nil {
		closer.Close()
		return nil, err
	}

	opts := append([]release.Option{
		release.WithBaseURL(cfg.GitHubAPIURL),
		release.WithToken(cfg.GitHubToken),
		release.WithLogger(logger),
	}, extra...)
	client := release.NewClient(opts...)
	manager := tools.NewManager(pp, reg, client,
		tools.WithLogger(logger),
		tools.WithLatestCache(release.NewLatestCache(pp.ReleaseCacheFile, cfg.ReleaseCacheTTL)),
	)

	return &app{cfg: cfg, paths: pp, log: logger, closer: closer, manager: manager}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

// save persists the registry after a mutating command.
func (a *app) save() error {
	if err := a.manager.Save(); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}
