package cardex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexwilson/cardex/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	db     config.DatabaseConfig
	locale string

	defaultLimit  int
	maxLimit      int
	timeout       time.Duration
	cardCacheSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMongo stores cards in the given MongoDB database.
func WithMongo(uri, database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverMongo
		c.db.Mongo.URI = uri
		if database != "" {
			c.db.Mongo.Database = database
		}
	})
}

// WithPostgres stores cards in PostgreSQL. collation orders names and
// may be empty for the default case- and accent-insensitive "cardex_ci".
func WithPostgres(dsn, collation string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverPostgres
		c.db.Postgres.DSN = dsn
		if collation != "" {
			c.db.Postgres.Collation = collation
		}
	})
}

// WithMemory keeps cards in process. seedFile, when non-empty, is a saved
// cardinfo.php response loaded at start.
func WithMemory(seedFile string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverMemory
		c.db.Memory.SeedFile = seedFile
	})
}

// WithLocale sets the collation locale for name ordering. Default "en".
func WithLocale(locale string) Option {
	return optionFunc(func(c *clientConfig) {
		c.locale = locale
	})
}

// WithLimits sets the default page size and the cap. Defaults: 50, 500.
func WithLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithTimeout bounds each search call. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithCardCacheSize sets how many cards Cards().Get keeps in memory.
func WithCardCacheSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cardCacheSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
