package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/config"
)

var version = "dev"

// env carries the loaded configuration to every subcommand.
type env struct {
	v        *viper.Viper
	settings *config.Settings
	cfgFile  string
}

func newRootCmd() *cobra.Command {
	e := &env{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "thrift",
		Short: "🪙 Personal finance assistant",
		Long: `thrift: a personal finance assistant that classifies your spending,
derives a monthly budget from your salary, points out spending patterns
and turns savings intentions into goals with a monthly plan.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (default: $HOME/.config/thrift/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = e.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = e.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(addCmd(e))
	rootCmd.AddCommand(listCmd(e))
	rootCmd.AddCommand(correctCmd(e))
	rootCmd.AddCommand(justifyCmd(e))
	rootCmd.AddCommand(reclassifyCmd(e))
	rootCmd.AddCommand(importCmd(e))
	rootCmd.AddCommand(syncCmd(e))
	rootCmd.AddCommand(analyzeCmd(e))
	rootCmd.AddCommand(exportCmd(e))
	rootCmd.AddCommand(authCmd(e))
	rootCmd.AddCommand(goalsCmd(e))
	rootCmd.AddCommand(chatCmd(e))
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func (e *env) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.Init(e.v, e.cfgFile); err != nil {
		return err
	}

	settings, err := config.Load(e.v)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return common.NewUserError("invalid configuration", err)
	}

	level, err := common.ParseLevel(settings.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if err := common.SetupLogger(level, settings.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	e.settings = settings
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "thrift version %s\n", version)
		},
	}
}
