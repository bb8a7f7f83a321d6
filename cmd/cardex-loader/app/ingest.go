package app

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	dbRedis "github.com/alexwilson/cardex/internal/db/redis"
	"github.com/alexwilson/cardex/internal/metrics"
	cardrepo "github.com/alexwilson/cardex/internal/repository/card"
	"github.com/alexwilson/cardex/internal/repository/pagecache"
	"github.com/alexwilson/cardex/internal/transport/ygoprodeck"
	"github.com/alexwilson/cardex/internal/usecase/ingest"
)

const (
	keyStartOffset = "start-offset"
	keyPageSize    = "page-size"
	keyMaxPages    = "max-pages"
	keyUpstreamURL = "upstream-url"
	keyMaxRetries  = "max-retries"
	keyTimeout     = "timeout"
)

func newIngestCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingest",
		Aliases: []string{"run"},
		Short:   "Fetch upstream cards and insert the ones not yet stored",
		Long: `Walk the upstream card API page by page and insert every valid card whose
id is not yet stored. Existing cards are never modified, so the command can be
re-run at any time. Use --start-offset to resume an interrupted run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, v)
		},
	}

	f := cmd.Flags()
	f.Int(keyStartOffset, 0, "Upstream offset to start from")
	f.Int(keyPageSize, ingest.DefaultPageSize, "Cards requested per upstream page")
	f.Int(keyMaxPages, 0, "Stop after this many pages (0 = until the end)")
	f.String(keyUpstreamURL, ygoprodeck.DefaultBaseURL, "Upstream cardinfo endpoint")
	f.Uint(keyMaxRetries, ygoprodeck.DefaultMaxRetries, "Attempts per page before giving up")
	f.Duration(keyTimeout, ygoprodeck.DefaultTimeout, "Timeout for a single upstream request")
	if err := v.BindPFlags(f); err != nil {
		panic("bind ingest flags: " + err.Error())
	}
	return cmd
}

func runIngest(cmd *cobra.Command, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	repo := cardrepo.New(store)
	client := ygoprodeck.NewClient(ygoprodeck.Config{
		BaseURL:    v.GetString(keyUpstreamURL),
		Timeout:    v.GetDuration(keyTimeout),
		MaxRetries: v.GetUint(keyMaxRetries),
		Logger:     logger,
	})
	svc := ingest.New(client, repo, logger)

	if cfg.Cache.Enabled() {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Username:   cfg.Cache.Username,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			logger.Warn("Page cache unavailable, cached pages will expire on their own", zap.Error(err))
		} else {
			defer kv.Close()
			svc.WithInvalidator(pagecache.New(repo, kv, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.PageCacheTotal, logger))
		}
	}

	job := ingest.Job{
		StartOffset: v.GetInt(keyStartOffset),
		PageSize:    v.GetInt(keyPageSize),
		MaxPages:    v.GetInt(keyMaxPages),
	}
	logger.Info("Starting ingestion",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("start_offset", job.StartOffset),
		zap.Int("page_size", job.PageSize),
		zap.Int("max_pages", job.MaxPages),
	)

	rep, err := svc.Run(ctx, job)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(),
		"pages=%d fetched=%d inserted=%d skipped=%d invalid=%d next_offset=%d\n",
		rep.Pages, rep.Fetched, rep.Inserted, rep.Skipped, rep.Invalid, rep.NextOffset)
	if err != nil {
		return fmt.Errorf("ingestion stopped (resume with --%s=%d): %w", keyStartOffset, rep.NextOffset, err)
	}
	return nil
}
