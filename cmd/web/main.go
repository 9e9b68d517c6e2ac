package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"taskboard/internal/logger"
	"taskboard/internal/proxy"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
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
		Use:     "taskboard-web",
		Short:   "Serve the /api/tasks proxy in front of the task service",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeb(cmd.Context(), v)
		},
	}

	addFlags(cmd)
	bindConfig(v, cmd)
	return cmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend-url", "http://localhost:8080", "task service base URL (BACKEND_URL)")
	cmd.Flags().String("addr", ":3000", "listen address (WEB_ADDR)")
	cmd.Flags().StringSlice("allowed-origins", []string{"*"}, "CORS allowed origins (ALLOWED_ORIGINS)")
	cmd.Flags().Bool("log-development", false, "human readable logs (LOG_DEVELOPMENT)")
}

func bindConfig(v *viper.Viper, cmd *cobra.Command) {
	_ = godotenv.Load()

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlag("backend_url", cmd.Flags().Lookup("backend-url"))
	_ = v.BindPFlag("web_addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("allowed_origins", cmd.Flags().Lookup("allowed-origins"))
	_ = v.BindPFlag("log_development", cmd.Flags().Lookup("log-development"))
}

func runWeb(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(v.GetBool("log_development")); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	backendURL := v.GetString("backend_url")
	server := &http.Server{
		Addr:              v.GetString("web_addr"),
		Handler:           proxy.New(backendURL).Handler(v.GetStringSlice("allowed_origins")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Proxy: server started",
			zap.String("addr", server.Addr),
			zap.String("backend_url", backendURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Proxy: shutdown requested")
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
