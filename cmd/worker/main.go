package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"courtstats/internal/cache"
	"courtstats/internal/config"
	"courtstats/internal/db"
	"courtstats/internal/logging"
	"courtstats/internal/processor"
	queue "courtstats/internal/queue"
	"courtstats/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config load failed: %v", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Errorf("db connection failed: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	league := db.NewLeagueReader(pool)
	snapshots := db.NewSnapshotReader(pool)
	writer := db.NewSnapshotWriter(pool)

	var seasonCache service.SeasonCache
	if cfg.CacheTTLSeconds > 0 {
		seasonCache = cache.NewSeasonCache(redisClient, cfg.CacheTTL())
	}

	svc := service.NewStatsService(league, snapshots, writer, league, seasonCache)
	proc := processor.NewFinalizeProcessor(ctx, svc)
	q := queue.NewRedisQueue(redisClient)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warnf("metrics endpoint stopped: %v", err)
			}
		}()
	}

	handler := func(payload []byte) error {
		return proc.Handle(payload)
	}

	if cfg.WorkerCount > 1 {
		logger.Infof("starting concurrent consumption with %d workers", cfg.WorkerCount)
		if err := q.ConsumeConcurrent(ctx, cfg.RedisQueue, cfg.WorkerCount, cfg.JobBufferSize, handler); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Infof("starting single-threaded consumption")
		if err := q.Consume(ctx, cfg.RedisQueue, handler); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	}
}
