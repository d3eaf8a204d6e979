package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/industry-reports/pkg/logging"
	"github.com/de-tools/industry-reports/pkg/runtime/terminal/commands"
	"github.com/de-tools/industry-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/industry-reports/pkg/services/config"
	"github.com/de-tools/industry-reports/pkg/services/manage"
	s3store "github.com/de-tools/industry-reports/pkg/store/s3"
	"github.com/spf13/cobra"
)

// CLI represents the report management command-line interface
type CLI struct {
	deps    *commands.Deps
	manager *manage.Manager
	logOut  io.Writer
	rootCmd *cobra.Command
	cfgPath string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// LogOutput receives structured logs; defaults to stderr.
	LogOutput io.Writer
	// Manager skips config loading when set.
	Manager *manage.Manager
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cli := &CLI{
		deps:    &commands.Deps{Reporter: export.NewReporter(opts.Output)},
		manager: opts.Manager,
		logOut:  opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "reports",
		Short:             "Manage industry weekly report files and metadata",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.cfgPath, "config", "c", "", "Path to a config file (default: reports.yaml in . or ./config)")
	flags.String("reports-dir", "", "Directory holding the report files")
	flags.String("metadata", "", "Path to the metadata JSON file")
	flags.String("backup-root", "", "Directory receiving timestamped backups")
	flags.String("s3-bucket", "", "Also upload backups to this S3 bucket")
	flags.Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(commands.NewUpdateCmd(cli.deps))
	cmd.AddCommand(commands.NewBackupCmd(cli.deps))
	cmd.AddCommand(commands.NewListCmd(cli.deps))
	cmd.AddCommand(commands.NewMetadataCmd(cli.deps))
	cmd.AddCommand(commands.NewCheckCmd(cli.deps))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	v := config.New()
	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"reports.dir":      "reports-dir",
		"reports.metadata": "metadata",
		"backup.dir":       "backup-root",
		"backup.s3_bucket": "s3-bucket",
		"debug":            "debug",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v, cli.cfgPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Debug, cli.logOut)
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	if cli.manager != nil {
		cli.deps.Manager = cli.manager
		return nil
	}

	opts := manage.Options{
		ReportsDir:   cfg.Reports.Dir,
		MetadataPath: cfg.Reports.Metadata,
		BackupRoot:   cfg.Backup.Dir,
	}
	if cfg.Backup.S3Bucket != "" {
		store, err := s3store.NewBackupStore(ctx, cfg.Backup.S3Bucket, cfg.Backup.S3Prefix)
		if err != nil {
			return err
		}
		logger.Info().Str("location", store.Location()).Msg("backups will be uploaded")
		opts.Sink = store
	}

	cli.deps.Manager = manage.NewManager(opts)
	return nil
}
