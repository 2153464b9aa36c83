package qdevice

import (
	"context"
	"runtime"

	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"
)

/*
ShotPool samples a recorded circuit one shot at a time, which is how noisy
configurations get more than one shot: every shot replays the tape on its
own single-shot device and contributes one collapsed pattern.
*/
type ShotPool struct {
	cfg     Config
	workers int
	metrics *Metrics
	factory EngineFactory
}

func NewShotPool(cfg Config, opts ...PoolOption) *ShotPool {
	pool := &ShotPool{
		cfg:     cfg,
		workers: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(pool)
	}

	if pool.metrics == nil {
		pool.metrics = NewMetrics()
	}

	return pool
}

func (pool *ShotPool) Metrics() *Metrics {
	return pool.metrics
}

/*
Run replays tape shots times and returns the histogram of patterns over
wires, which are IDs as recorded on the tape. The first failing shot
cancels the rest, as does ctx.
*/
func (pool *ShotPool) Run(ctx context.Context, tape *Tape, wires []QubitID, shots int) (Histogram, error) {
	if tape == nil {
		return nil, invalidArgument("no tape to replay")
	}
	if shots < 1 {
		return nil, invalidArgument("shots must be positive, got %d", shots)
	}

	errnie.Info("shot pool replaying tape %s: %d shots on %d workers", tape.ID, shots, pool.workers)

	patterns := make([]uint64, shots)
	worker := &shotWorker{pool: pool}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.workers)

	for shot := 0; shot < shots; shot++ {
		if gctx.Err() != nil {
			break
		}

		job := newShotJob(tape, wires, shot, pool.cfg.Seed)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			pattern, err := worker.processJob(job)
			if err != nil {
				return err
			}

			patterns[job.Shot] = pattern
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := make(Histogram)
	for _, pattern := range patterns {
		h[pattern]++
	}

	errnie.Info("shot pool finished tape %s: %d distinct patterns", tape.ID, len(h))
	return h, nil
}
