package qdevice

import (
	"github.com/google/uuid"
)

// ShotJob is one replay of a tape on a fresh single-shot device.
type ShotJob struct {
	ID     string
	TapeID string
	Shot   int
	Tape   *Tape
	Wires  []QubitID
	Seed   uint64
}

// PoolOption configures a ShotPool.
type PoolOption func(*ShotPool)

// WithWorkers bounds the number of shots replayed at once.
func WithWorkers(n int) PoolOption {
	return func(pool *ShotPool) {
		if n > 0 {
			pool.workers = n
		}
	}
}

// WithPoolMetrics makes every device in the pool report into metrics.
func WithPoolMetrics(metrics *Metrics) PoolOption {
	return func(pool *ShotPool) {
		pool.metrics = metrics
	}
}

// WithPoolEngineFactory builds each shot's engine with factory.
func WithPoolEngineFactory(factory EngineFactory) PoolOption {
	return func(pool *ShotPool) {
		pool.factory = factory
	}
}

func newShotJob(tape *Tape, wires []QubitID, shot int, seed uint64) ShotJob {
	// A fixed pool seed gives every shot its own reproducible stream.
	if seed != 0 {
		seed += uint64(shot) + 1
	}

	return ShotJob{
		ID:     uuid.NewString(),
		TapeID: tape.ID,
		Shot:   shot,
		Tape:   tape,
		Wires:  wires,
		Seed:   seed,
	}
}
