package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/de-tools/industry-reports/pkg/logging"
	"github.com/de-tools/industry-reports/pkg/server"
	"github.com/de-tools/industry-reports/pkg/services/config"
	"github.com/de-tools/industry-reports/pkg/services/content"
	"github.com/de-tools/industry-reports/pkg/services/registry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgPath string

func main() {
	v := config.New()

	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the industry weekly reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, v)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfgPath, "config", "c", "", "Path to a config file (default: reports.yaml in . or ./config)")
	flags.String("host", "", "Address to listen on")
	flags.Int("port", 0, "Port to listen on")
	flags.String("reports-dir", "", "Directory holding the report files")
	flags.String("metadata", "", "Path to the metadata JSON file")
	flags.Bool("watch", true, "Reload metadata when the file changes")
	flags.Bool("debug", false, "Enable debug logging")

	for key, flag := range map[string]string{
		"server.host":      "host",
		"server.port":      "port",
		"reports.dir":      "reports-dir",
		"reports.metadata": "metadata",
		"reports.watch":    "watch",
		"debug":            "debug",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, v *viper.Viper) error {
	envErr := godotenv.Load()

	cfg, err := config.Load(v, cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Debug, os.Stdout)
	ctx := logger.WithContext(cmd.Context())

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("failed to load .env file")
	}

	if err := os.MkdirAll(cfg.Reports.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	snapshot, err := registry.LoadOrDefault(ctx, cfg.Reports.Metadata)
	if err != nil {
		return fmt.Errorf("failed to load report metadata: %w", err)
	}

	reg, err := registry.New(snapshot)
	if err != nil {
		return fmt.Errorf("failed to create report registry: %w", err)
	}

	reader := content.NewReader(cfg.Reports.Dir)

	logger.Info().Msgf("Serving %d reports for period `%s` from `%s`.",
		len(snapshot.Reports), snapshot.CurrentPeriod, cfg.Reports.Dir)
	if missing := reader.Check(ctx, snapshot.Reports); len(missing) > 0 {
		logger.Warn().Strs("files", missing).
			Msg("some report files are missing; the application will still run but some pages may not work")
	}

	if cfg.Reports.Watch {
		if err := os.MkdirAll(filepath.Dir(cfg.Reports.Metadata), 0o755); err != nil {
			return fmt.Errorf("failed to create metadata directory: %w", err)
		}
		watcher := registry.NewWatcher(cfg.Reports.Metadata, reg, logger)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch metadata file: %w", err)
		}
		defer watcher.Stop()
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Registry: reg,
			Reader:   reader,
		},
	})

	return webAPI.Start()
}
