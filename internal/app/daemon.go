package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/samvad-hq/dblclient/internal/config"
	"github.com/samvad-hq/dblclient/internal/logger"
	"github.com/samvad-hq/dblclient/internal/metrics"
	"github.com/samvad-hq/dblclient/internal/storage"
	"github.com/samvad-hq/dblclient/internal/watcher"
	"github.com/samvad-hq/dblclient/pkg/publishers"
	"github.com/samvad-hq/dblclient/pkg/targets"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 5 * time.Second

// Daemon represents the long-running runtime. It reports server counts from the
// stats file and announces new votes for watched bots, each on its own interval.
type Daemon struct {
	cfg        *config.Config
	targets    *targets.Registry
	fanout     *publishers.Fanout
	watcher    *watcher.Service
	reporter   *StatsReporter
	metrics    *metrics.Metrics
	metricsSrv *metrics.Server
	store      storage.Store
	log        logger.Logger
}

// NewDaemon builds the runtime from config files. The vote watcher is enabled
// when a publishers file exists; the stats reporter when stats_file is set.
func NewDaemon(ctx context.Context, cfg *config.Config, log logger.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m := metrics.New()
	client, err := NewClient(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		VoteTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"vote_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	d := &Daemon{
		cfg:     cfg,
		metrics: m,
		store:   store,
		log:     log,
	}

	if err := d.initWatcher(ctx, client); err != nil {
		d.close()
		return nil, err
	}
	if cfg.StatsFile != "" {
		d.reporter = NewStatsReporter(client, store, cfg.StatsFile, m, log)
	}
	if d.watcher == nil && d.reporter == nil {
		d.close()
		return nil, fmt.Errorf("nothing to run: configure stats_file and/or publishers_file")
	}
	if cfg.MetricsAddr != "" {
		d.metricsSrv = metrics.NewServer(cfg.MetricsAddr, m)
	}
	return d, nil
}

func (d *Daemon) initWatcher(ctx context.Context, api watcher.API) error {
	if _, err := os.Stat(d.cfg.PublishersFile); errors.Is(err, os.ErrNotExist) {
		d.log.WarnObj("publishers file not found; vote watcher disabled", "publishers_file", d.cfg.PublishersFile)
		return nil
	}

	publisherReg, err := publishers.LoadRegistry(d.cfg.PublishersFile)
	if err != nil {
		return fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return fmt.Errorf("no publishers enabled in %s", d.cfg.PublishersFile)
	}
	pubClients, err := publishers.DefaultSinks().BuildAll(ctx, enabled, d.log)
	if err != nil {
		return fmt.Errorf("build publishers: %w", err)
	}
	d.fanout = publishers.NewFanout(pubClients)

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{"id": pubCfg.ID, "type": pubCfg.Type})
	}
	d.log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	d.targets, err = loadTargets(d.cfg)
	if err != nil {
		return err
	}
	ids := make([]string, 0)
	for _, t := range d.targets.Enabled() {
		ids = append(ids, t.ID)
	}
	d.log.InfoObj("targets registry loaded", "targets_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})

	d.watcher = watcher.NewService(api, d.fanout, d.store,
		watcher.WithLogger(d.log),
		watcher.WithRecorder(d.metrics),
	)
	return nil
}

// loadTargets reads targets_file, falling back to the configured bot alone when the file is absent.
func loadTargets(cfg *config.Config) (*targets.Registry, error) {
	if _, err := os.Stat(cfg.TargetsFile); errors.Is(err, os.ErrNotExist) {
		return targets.Single(cfg.BotID)
	}
	reg, err := targets.Load(cfg.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("load targets registry: %w", err)
	}
	return reg, nil
}

// Run starts the enabled loops and the metrics server until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d == nil || (d.watcher == nil && d.reporter == nil) {
		return fmt.Errorf("daemon is not initialized")
	}
	defer d.close()

	g, gctx := errgroup.WithContext(ctx)

	if d.metricsSrv != nil {
		g.Go(func() error {
			d.log.InfoObj("metrics server starting", "metrics_addr", d.cfg.MetricsAddr)
			if err := d.metricsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return d.metricsSrv.Stop(shutdownCtx)
		})
	}
	if d.watcher != nil {
		g.Go(func() error {
			return d.loop(gctx, "vote watcher", d.cfg.PollInterval, d.pollVotes)
		})
	}
	if d.reporter != nil {
		g.Go(func() error {
			return d.loop(gctx, "stats reporter", d.cfg.StatsInterval, d.reportStats)
		})
	}

	return g.Wait()
}

// loop runs fn immediately and then on every tick until ctx is done.
func (d *Daemon) loop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) error {
	d.log.InfoObj("loop starting", "loop_state", map[string]any{
		"loop":     name,
		"interval": interval.String(),
	})

	if err := fn(ctx); err != nil {
		d.log.ErrorObj("initial run failed", "loop_error", map[string]any{"loop": name, "error": err.Error()})
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.InfoObj("loop exiting", "loop_state", map[string]any{"loop": name, "reason": ctx.Err().Error()})
			return nil
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				d.log.ErrorObj("scheduled run failed", "loop_error", map[string]any{"loop": name, "error": err.Error()})
			}
		}
	}
}

func (d *Daemon) pollVotes(ctx context.Context) error {
	watched := d.targets.Enabled()
	start := time.Now()
	if err := d.watcher.Run(ctx, watched); err != nil {
		return err
	}
	d.log.DebugObj("vote poll completed", "poll_meta", map[string]any{
		"targets_count": len(watched),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

func (d *Daemon) reportStats(ctx context.Context) error {
	result, err := d.reporter.ReportOnce(ctx)
	if err != nil {
		return err
	}
	d.log.DebugObj("stats cycle completed", "stats_result", result)
	return nil
}

// close releases publishers and the storage backend, logging any errors encountered.
func (d *Daemon) close() {
	if d == nil {
		return
	}
	if d.fanout != nil {
		if err := d.fanout.Close(); err != nil {
			d.log.ErrorObj("publisher close failed", "error", err.Error())
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
}
