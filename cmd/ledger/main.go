package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
)

var version = "dev"

// app carries what every subcommand needs once PersistentPreRunE has run.
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	logOut  io.Writer

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "ledger",
		Short: "Local personal finance ledger",
		Long: `ledger records income and expense transactions, tracks monthly budgets
per category and derives totals, category breakdowns and monthly series.

All state lives in a local backend (file, sqlite, redis or memory).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.String("backend", "", "data backend (memory, file, sqlite, redis)")
	flags.String("data-dir", "", "directory for the file backend")
	flags.String("db", "", "database path for the sqlite backend")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	_ = a.v.BindPFlag(config.KeyDataBackend, flags.Lookup("backend"))
	_ = a.v.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	_ = a.v.BindPFlag(config.KeySQLiteDBPath, flags.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(serveCmd(a))
	root.AddCommand(txCmd(a))
	root.AddCommand(budgetCmd(a))
	root.AddCommand(categoryCmd(a))
	root.AddCommand(reportCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(watchCmd(a))
	root.AddCommand(versionCmd())

	return root
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := cli.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	out := a.logOut
	if out == nil {
		out = cmd.ErrOrStderr()
	}
	a.logger = cli.SetupLogger(cfg, out).WithComponent(log.ComponentCLI)
	return nil
}

// session opens the configured backend and a ledger service over it. The
// caller must Close the runtime, which also waits for pending writes.
func (a *app) session(ctx context.Context) (*cli.Runtime, *services.LedgerService, error) {
	rt, err := cli.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", a.cfg.DataBackend, err)
	}
	if err := rt.Session.Report().Err(); err != nil {
		a.logger.WarnContext(ctx, "Ledger loaded with defaults for unreadable records", log.FieldError, err)
	}
	svc := services.NewLedgerService(rt.Session.Store(), services.WithLogger(a.logger))
	return rt, svc, nil
}

// commit waits for the write-back of every change made so far and reports
// a failed write, so a mutating command does not exit before its change is
// stored.
func commit(ctx context.Context, rt *cli.Runtime) error {
	if err := rt.Session.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if stats := rt.Session.Syncer().Stats(); stats.Failing {
		return fmt.Errorf("persist ledger: %w", stats.LastError)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger", version)
		},
	}
}
