package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"taskboard/internal/board"
	"taskboard/internal/client"
	"taskboard/internal/logger"
	"taskboard/internal/tui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "taskboard",
		Short:   "Manage tasks from the terminal",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if path := v.GetString("log_file"); path != "" {
				if err := logger.InitFile(path); err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				defer logger.Sync()
			}

			b := board.New(client.New(v.GetString("api_url")))
			return tui.Run(ctx, b)
		},
	}

	cmd.Flags().String("api-url", "http://localhost:3000/api", "proxy /api root, or the task service root (API_URL)")
	cmd.Flags().String("log-file", "", "write JSON logs to this file (LOG_FILE)")

	_ = godotenv.Load()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("api_url", cmd.Flags().Lookup("api-url"))
	_ = v.BindPFlag("log_file", cmd.Flags().Lookup("log-file"))

	return cmd
}
