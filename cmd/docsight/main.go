package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/docsight/internal/config"
	"github.com/user/docsight/internal/history"
	"github.com/user/docsight/internal/state"
	"github.com/user/docsight/internal/storage"
	"github.com/user/docsight/internal/types"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "docsight",
	Short:        "Interpret documents and render diagrams from the results",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".docsight", "config.json"),
		"config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openStorage builds the quota-enforcing adapter over the configured
// backend.
func openStorage(cfg *config.Config) (*storage.Adapter, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	var (
		backend storage.Backend
		err     error
	)
	switch cfg.StorageBackend {
	case "file":
		backend, err = storage.NewFileBackend(filepath.Join(cfg.DataDir, "store"))
	default:
		backend, err = storage.NewBadgerBackend(filepath.Join(cfg.DataDir, "db"))
	}
	if err != nil {
		return nil, fmt.Errorf("open storage backend: %w", err)
	}
	return storage.New(backend, cfg.Storage.QuotaBytes)
}

// openSession loads the persisted session into a state store. Callers
// that only read can pass the result straight to the hydrator.
func openSession(cfg *config.Config) (*state.Store, *storage.Adapter, error) {
	adapter, err := openStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := state.New(adapter)
	store.Load(context.Background())
	return store, adapter, nil
}

func historyLog(cfg *config.Config, adapter *storage.Adapter) *history.Log {
	return history.New(adapter, cfg.Storage.HistoryCapacity)
}

func diagramPrefs(cfg *config.Config, override string) []types.DiagramType {
	raw := cfg.Interpret.DiagramPrefs
	if override != "" {
		raw = strings.Split(override, ",")
	}
	prefs := make([]types.DiagramType, 0, len(raw))
	for _, s := range raw {
		prefs = append(prefs, types.DiagramType(strings.TrimSpace(s)))
	}
	return prefs
}

func interpretTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Interpret.TimeoutSeconds) * time.Second
}

func diagramTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Interpret.DiagramTimeout) * time.Second
}
