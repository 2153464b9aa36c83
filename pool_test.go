package qdevice

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func recordBell(d *Device) (*Tape, []QubitID) {
	d.StartTapeRecording()

	q, err := d.AllocateQubits(2)
	So(err, ShouldBeNil)
	So(d.NamedOperation("Hadamard", nil, q[:1], false, nil, nil), ShouldBeNil)
	So(d.NamedOperation("CNOT", nil, q, false, nil, nil), ShouldBeNil)

	return d.StopTapeRecording(), q
}

func TestShotPool(t *testing.T) {
	Convey("Given a recorded Bell circuit", t, func() {
		d := newTestDevice(nil)
		tape, q := recordBell(d)

		Convey("A noiseless pool only sees correlated patterns", func() {
			cfg := NewConfig()
			cfg.Seed = 17
			pool := NewShotPool(*cfg, WithWorkers(4))

			h, err := pool.Run(context.Background(), tape, q, 400)
			So(err, ShouldBeNil)
			So(h.Shots(), ShouldEqual, 400)
			So(h[1]+h[2], ShouldEqual, 0)
			So(float64(h[0])/400, ShouldAlmostEqual, 0.5, 0.12)

			So(pool.Metrics().ExportMetrics()["shots_sampled"], ShouldEqual, int64(400))
		})

		Convey("A fixed seed makes the run reproducible", func() {
			cfg := NewConfig()
			cfg.Seed = 23

			first, err := NewShotPool(*cfg, WithWorkers(3)).Run(context.Background(), tape, q, 64)
			So(err, ShouldBeNil)
			second, err := NewShotPool(*cfg, WithWorkers(1)).Run(context.Background(), tape, q, 64)
			So(err, ShouldBeNil)
			So(first, ShouldResemble, second)
		})

		Convey("A noisy pool samples many shots one at a time", func() {
			cfg := NewConfig()
			cfg.Noise = 0.05
			cfg.Seed = 31
			shared := NewMetrics()
			pool := NewShotPool(*cfg, WithPoolMetrics(shared), WithPoolEngineFactory(NewQuantumStateEngine))

			h, err := pool.Run(context.Background(), tape, q, 200)
			So(err, ShouldBeNil)
			So(h.Shots(), ShouldEqual, 200)
			So(shared.ExportMetrics()["gates"], ShouldResemble, map[string]int64{"Hadamard": 200, "CNOT": 200})
		})

		Convey("A postselected mid-circuit measurement is replayed on every shot", func() {
			m := newTestDevice(nil)
			m.StartTapeRecording()

			w, err := m.AllocateQubits(2)
			So(err, ShouldBeNil)
			So(m.NamedOperation("Hadamard", nil, w[:1], false, nil, nil), ShouldBeNil)

			one := true
			got, err := m.Measure(w[0], &one)
			So(err, ShouldBeNil)
			So(got, ShouldBeTrue)

			So(m.NamedOperation("CNOT", nil, w, false, nil, nil), ShouldBeNil)
			measured := m.StopTapeRecording()
			So(len(measured.Instructions), ShouldEqual, 3)

			cfg := NewConfig()
			cfg.Seed = 41
			h, err := NewShotPool(*cfg, WithWorkers(4)).Run(context.Background(), measured, w, 200)
			So(err, ShouldBeNil)
			So(h, ShouldResemble, Histogram{0b11: 200})
		})

		Convey("Every shot job gets its own ID and keeps the tape's", func() {
			first := newShotJob(tape, q, 0, 5)
			second := newShotJob(tape, q, 1, 5)

			So(first.ID, ShouldNotBeEmpty)
			So(first.ID, ShouldNotEqual, second.ID)
			So(first.ID, ShouldNotEqual, tape.ID)
			So(first.TapeID, ShouldEqual, tape.ID)
			So(second.TapeID, ShouldEqual, tape.ID)
			So(first.Seed, ShouldNotEqual, second.Seed)
		})

		Convey("Bad requests are invalid arguments", func() {
			pool := NewShotPool(*NewConfig())

			_, err := pool.Run(context.Background(), nil, q, 10)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)

			_, err = pool.Run(context.Background(), tape, q, 0)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)

			_, err = pool.Run(context.Background(), tape, []QubitID{42}, 4)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("A cancelled context stops the run", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewShotPool(*NewConfig()).Run(ctx, tape, q, 50)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
