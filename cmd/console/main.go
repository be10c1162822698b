package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/client"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/config"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/console"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/querycache"
)

const apiPrefix = "/api/v1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	apiURL     string
	account    string
	logFile    string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Terminal client of the ERP API",
		Long: `Browse and maintain the ERP lists from the terminal.

Keys on a list:
  ←/→         previous / next page
  g           go to page
  s / S       next sort column / flip direction
  /           search
  space       toggle row
  a / A       toggle page / select every matching row
  x           clear selection
  d           delete selected rows
  r           reload
  esc         back to the menu`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to configuration file")
	cmd.Flags().StringVar(&f.apiURL, "api", "", "API server URL (overrides console.api_url)")
	cmd.Flags().StringVar(&f.account, "account", "", "account to prefill on the login form")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write logs to this file")
	return cmd
}

func loadConfig(path string) (config.ConsoleConfig, string, error) {
	if path == "" {
		return config.ConsoleConfig{APIURL: "http://127.0.0.1:8080"}, "info", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.ConsoleConfig{}, "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Console, cfg.Log.Level, nil
}

// apiRoot appends the API prefix to a server URL unless it is already there.
func apiRoot(serverURL string) string {
	u := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if strings.HasSuffix(u, apiPrefix) {
		return u
	}
	return u + apiPrefix
}

func run(ctx context.Context, f flags) error {
	cfg, level, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.account != "" {
		cfg.Account = f.account
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if cfg.APIURL == "" {
		return errors.New("no API URL: set --api or console.api_url")
	}

	log, err := config.SetupFileLogger(cfg.LogFile, level)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer log.Close()

	timeout := config.Duration(cfg.RequestTimeout, 15*time.Second)
	c := client.New(apiRoot(cfg.APIURL),
		client.WithTimeout(timeout),
		client.WithLogger(log.Logger),
	)
	cache := querycache.New(querycache.Options{
		TTL:             config.Duration(cfg.CacheTTL, time.Minute),
		MaxEntries:      1024,
		CleanupInterval: time.Minute,
		Logger:          log.Logger,
	})
	defer cache.Close()

	log.Info("console started", "api", c.BaseURL())
	return console.Run(ctx, console.Options{
		Client:         c,
		Cache:          cache,
		Logger:         log.Logger,
		Account:        cfg.Account,
		PageSize:       cfg.PageSize,
		SearchDelay:    config.Duration(cfg.SearchDebounce, 0),
		RequestTimeout: timeout,
	})
}
