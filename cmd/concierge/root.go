package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/concierge/internal/config"
	"github.com/aretw0/concierge/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	vp      = config.New()

	// Set by the root PersistentPreRunE for every subcommand.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Concierge is a conversational travel booking assistant",
	Long: `Concierge routes a traveller's conversation between a supervisor and specialist agents
(hotels, excursions and transfers), and asks for explicit approval before any booking is
created, changed or cancelled.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(vp, cfgFile)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger = logging.New(level, cfg.Log.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// bindFlag maps a command flag onto a config key.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := vp.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./concierge.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("store", "memory", "Session store: memory, file or redis")

	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
		"store.kind": "store",
	} {
		if err := vp.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
