package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"thumbgen/internal/adapter/repo"
	"thumbgen/internal/domain"
	"thumbgen/internal/infra"
)

const staleReason = "Generation did not finish in time"

// staleFailer is the part of the thumbnail repository the sweeper needs.
type staleFailer interface {
	FailStale(ctx context.Context, createdBefore time.Time, reason string) (int64, error)
}

type sweeper struct {
	repo       staleFailer
	logger     infra.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var (
		once       bool
		staleAfter time.Duration
		interval   time.Duration
	)
	flag.BoolVar(&once, "once", false, "run a single pass and exit")
	flag.DurationVar(&staleAfter, "stale-after", cfg.SweepStaleAfter, "fail records still generating after this long")
	flag.DurationVar(&interval, "interval", cfg.SweepInterval, "time between passes")
	flag.Parse()

	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "sweeper").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer pool.Close()

	s := &sweeper{
		repo:       repo.NewThumbnailRepository(infra.NewSQLRunner(pool, logger)),
		logger:     logger,
		staleAfter: staleAfter,
		now:        time.Now,
	}

	if once {
		if _, err := s.pass(ctx); err != nil {
			logger.Fatal().Err(err).Msg("sweeper: pass failed")
		}
		return
	}
	if err := s.run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("sweeper: stopped with error")
	}
	logger.Info().Msg("sweeper: stopped")
}

func (s *sweeper) run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	s.logger.Info().Dur("stale_after", s.staleAfter).Dur("interval", interval).Msg("sweeper: started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.pass(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("sweeper: pass failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// pass fails every record created before now minus staleAfter that is still generating.
func (s *sweeper) pass(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)
	n, err := s.repo.FailStale(ctx, cutoff, staleReason)
	if err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			return 0, err
		}
		return 0, fmt.Errorf("fail stale thumbnails: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Time("cutoff", cutoff).Msg("sweeper: marked stale thumbnails failed")
	} else {
		s.logger.Debug().Time("cutoff", cutoff).Msg("sweeper: nothing stale")
	}
	return n, nil
}
