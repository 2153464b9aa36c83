package qdevice

/*
shotWorker runs ShotJobs for one pool. Each job gets a new Device, so no
engine state is shared between shots and noise is drawn independently.
*/
type shotWorker struct {
	pool *ShotPool
}

func (w *shotWorker) processJob(job ShotJob) (uint64, error) {
	cfg := w.pool.cfg
	cfg.Shots = 1
	cfg.Seed = job.Seed

	opts := []Option{WithMetrics(w.pool.metrics)}
	if w.pool.factory != nil {
		opts = append(opts, WithEngineFactory(w.pool.factory))
	}

	device, err := NewDevice(cfg, opts...)
	if err != nil {
		return 0, err
	}

	wireMap, err := job.Tape.Replay(device)
	if err != nil {
		return 0, err
	}

	wires, err := remap(job.Wires, wireMap)
	if err != nil {
		return 0, err
	}

	return device.sampler.SampleOne(wires)
}
