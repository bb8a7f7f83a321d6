// Package app wires the loader's cobra commands.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/config"
	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/db/factory"
	logpkg "github.com/alexwilson/cardex/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. CARDEX_LOADER_PAGE_SIZE.
const EnvPrefix = "CARDEX_LOADER"

// Flag and viper keys.
const (
	keyEnv         = "env"
	keyLogLevel    = "log-level"
	keyDriver      = "driver"
	keyMongoURI    = "mongo-uri"
	keyPostgresDSN = "postgres-dsn"
	keySeedFile    = "seed-file"
)

// NewRootCmd builds the loader command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	return newRootCmd(viper.New())
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "cardex-loader",
		Short:         "Copy the YGOPRODeck card catalogue into the cardex store",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.String(keyEnv, config.GetEnv(), "Config environment (config/<env>.yaml)")
	pf.String(keyLogLevel, "", "Log level override: debug, info, warn, error")
	pf.String(keyDriver, "", "Override database.driver (mongo, postgres)")
	pf.String(keyMongoURI, "", "Override database.mongo.uri")
	pf.String(keyPostgresDSN, "", "Override database.postgres.dsn")
	if err := v.BindPFlags(pf); err != nil {
		panic("bind persistent flags: " + err.Error())
	}

	root.AddCommand(newIngestCmd(v))
	root.AddCommand(newCountCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the YAML config for --env and applies flag/env overrides.
func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg, err := config.Load(v.GetString(keyEnv))
	if err != nil {
		return config.Config{}, err
	}
	if d := v.GetString(keyDriver); d != "" {
		cfg.Database.Driver = d
	}
	if uri := v.GetString(keyMongoURI); uri != "" {
		cfg.Database.Mongo.URI = uri
	}
	if dsn := v.GetString(keyPostgresDSN); dsn != "" {
		cfg.Database.Postgres.DSN = dsn
	}
	if l := v.GetString(keyLogLevel); l != "" {
		cfg.Logging.Level = l
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logpkg.NewLogger("loader", cfg.Logging.Level)
}

// openStore opens the configured card store and waits for it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (db.CardStore, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return nil, fmt.Errorf("the memory driver does not persist; pick mongo or postgres")
	}
	store, err := factory.OpenCardStore(ctx, cfg.Database, cfg.Search.CollationLocale, logger)
	if err != nil {
		return nil, fmt.Errorf("open card store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("card store not ready: %w", err)
	}
	return store, nil
}
