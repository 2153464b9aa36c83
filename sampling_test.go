package qdevice

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSamplingEngine(t *testing.T) {
	Convey("Given a Bell pair", t, func() {
		tr, _ := newRecordingTranslator(2)
		sampler := NewSamplingEngine(tr.registry, 0, NewMetrics())

		So(tr.Apply(GateInstruction{Gate: GateHadamard, Wires: ids(0)}), ShouldBeNil)
		So(tr.Apply(GateInstruction{Gate: GateCNOT, Wires: ids(0, 1)}), ShouldBeNil)

		Convey("Many shots only see correlated patterns in equal measure", func() {
			h, err := sampler.SampleMany(ids(0, 1), 1000)
			So(err, ShouldBeNil)
			So(h.Shots(), ShouldEqual, 1000)
			So(h.Patterns(), ShouldResemble, []uint64{0, 3})
			So(float64(h[0])/1000, ShouldAlmostEqual, 0.5, 0.08)
			So(float64(h[3])/1000, ShouldAlmostEqual, 0.5, 0.08)
		})

		Convey("The multiplicities always sum to the shot count", func() {
			for _, shots := range []int{2, 3, 17, 256} {
				h, err := sampler.Sample(ids(1), shots)
				So(err, ShouldBeNil)
				So(h.Shots(), ShouldEqual, shots)
			}
		})

		Convey("Zero or negative shots are invalid", func() {
			_, err := sampler.Sample(ids(0), 0)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("Unknown wires are invalid", func() {
			_, err := sampler.SampleMany(ids(0, 4), 10)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
			_, err = sampler.SampleOne(ids(4))
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})
	})

	Convey("Given the collapsed state with only wire 0 set", t, func() {
		tr, engine := newRecordingTranslator(3)
		sampler := NewSamplingEngine(tr.registry, 0, nil)
		So(tr.Apply(GateInstruction{Gate: GatePauliX, Wires: ids(0)}), ShouldBeNil)

		Convey("Patterns put the first requested wire in the high bit", func() {
			h, err := sampler.SampleMany(ids(0, 1, 2), 10)
			So(err, ShouldBeNil)
			So(h, ShouldResemble, Histogram{0b100: 10})

			h, err = sampler.SampleMany(ids(2, 1, 0), 10)
			So(err, ShouldBeNil)
			So(h, ShouldResemble, Histogram{0b001: 10})
		})

		Convey("A single shot agrees with a full-register measurement", func() {
			pattern, err := sampler.SampleOne(ids(0, 1, 2))
			So(err, ShouldBeNil)
			So(pattern, ShouldEqual, uint64(0b100))
			So(engine.MAll(), ShouldEqual, uint64(0b001))

			h, err := sampler.Sample(ids(1, 0), 1)
			So(err, ShouldBeNil)
			So(h, ShouldResemble, Histogram{0b01: 1})
		})
	})

	Convey("Given a noisy sampler", t, func() {
		tr, _ := newRecordingTranslator(1)
		sampler := NewSamplingEngine(tr.registry, 0.2, nil)

		Convey("Multi-shot sampling is a domain error", func() {
			_, err := sampler.Sample(ids(0), 5)
			So(errors.Is(err, ErrDomain), ShouldBeTrue)
		})

		Convey("A single shot is still allowed", func() {
			h, err := sampler.Sample(ids(0), 1)
			So(err, ShouldBeNil)
			So(h.Shots(), ShouldEqual, 1)
		})
	})
}

func TestHistogramExpansion(t *testing.T) {
	Convey("Given a two-wire histogram", t, func() {
		h := Histogram{0b10: 2, 0b01: 1}

		Convey("ExpandSamples writes one caller-ordered row per shot", func() {
			So(ExpandSamples(h, 2), ShouldResemble, [][]int{
				{0, 1},
				{1, 0},
				{1, 0},
			})
		})

		Convey("ToCounts is dense and indexed by pattern", func() {
			So(ToCounts(h, 2), ShouldResemble, []int64{0, 1, 2, 0})
		})

		Convey("An empty histogram expands to nothing", func() {
			So(ExpandSamples(Histogram{}, 3), ShouldBeEmpty)
			So(ToCounts(Histogram{}, 1), ShouldResemble, []int64{0, 0})
		})
	})
}
