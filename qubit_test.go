package qdevice

import (
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestRegistry(capacity int) *QubitRegistry {
	cfg := NewConfig()
	cfg.Seed = 11
	return NewQubitRegistry(NewQuantumState(*cfg), capacity)
}

func TestQubitRegistry(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		reg := newTestRegistry(0)

		Convey("Allocation issues increasing IDs over dense registers", func() {
			got, err := reg.AllocateMany(3)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, ids(0, 1, 2))
			So(reg.Len(), ShouldEqual, 3)
			So(reg.engine.QubitCount(), ShouldEqual, 3)

			bits, err := reg.Resolve(ids(2, 0))
			So(err, ShouldBeNil)
			So(bits, ShouldResemble, []int{2, 0})
		})

		Convey("Releasing a qubit invalidates it and compacts the rest", func() {
			_, err := reg.AllocateMany(3)
			So(err, ShouldBeNil)

			So(reg.Release(1), ShouldBeNil)
			So(reg.engine.QubitCount(), ShouldEqual, 2)

			_, err = reg.Resolve(ids(1))
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
			So(errors.Is(reg.Release(1), ErrInvalidArgument), ShouldBeTrue)

			bits, err := reg.Resolve(ids(0, 2))
			So(err, ShouldBeNil)
			So(bits, ShouldResemble, []int{0, 1})
			So(reg.Wires(), ShouldResemble, ids(0, 2))

			Convey("and released IDs are not reissued", func() {
				id, err := reg.Allocate()
				So(err, ShouldBeNil)
				So(id, ShouldEqual, QubitID(3))
			})
		})

		Convey("Live IDs never share a register", func() {
			rng := rand.New(rand.NewPCG(3, 5))
			live := []QubitID{}

			for step := 0; step < 200; step++ {
				if len(live) == 0 || (len(live) < 8 && rng.IntN(2) == 0) {
					id, err := reg.Allocate()
					So(err, ShouldBeNil)
					live = append(live, id)
				} else {
					k := rng.IntN(len(live))
					So(reg.Release(live[k]), ShouldBeNil)
					live = append(live[:k], live[k+1:]...)
				}

				bits, err := reg.Resolve(live)
				So(err, ShouldBeNil)

				seen := map[int]bool{}
				for _, b := range bits {
					So(seen[b], ShouldBeFalse)
					So(b, ShouldBeGreaterThanOrEqualTo, 0)
					So(b, ShouldBeLessThan, len(live))
					seen[b] = true
				}
			}
		})

		Convey("Reset forgets every ID without reissuing any", func() {
			_, err := reg.AllocateMany(2)
			So(err, ShouldBeNil)

			reg.Reset(NewQuantumState(*NewConfig()))
			So(reg.Len(), ShouldEqual, 0)

			_, err = reg.Resolve(ids(0))
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)

			id, err := reg.Allocate()
			So(err, ShouldBeNil)
			So(id, ShouldEqual, QubitID(2))

			Convey("so old IDs stay invalid after new allocations", func() {
				_, err := reg.AllocateMany(2)
				So(err, ShouldBeNil)

				_, err = reg.Resolve(ids(0))
				So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(reg.Release(1), ErrInvalidArgument), ShouldBeTrue)
				So(reg.Wires(), ShouldResemble, ids(2, 3, 4))
			})
		})

		Convey("Negative requests are invalid", func() {
			_, err := reg.AllocateMany(-1)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})
	})

	Convey("Given a registry capped at two qubits", t, func() {
		reg := newTestRegistry(2)
		_, err := reg.Allocate()
		So(err, ShouldBeNil)

		Convey("Over-capacity requests fail without allocating", func() {
			_, err := reg.AllocateMany(2)
			So(errors.Is(err, ErrRuntime), ShouldBeTrue)
			So(reg.Len(), ShouldEqual, 1)
			So(reg.engine.QubitCount(), ShouldEqual, 1)
		})

		Convey("Single allocations stop at the cap", func() {
			_, err := reg.Allocate()
			So(err, ShouldBeNil)
			_, err = reg.Allocate()
			So(errors.Is(err, ErrRuntime), ShouldBeTrue)
		})
	})
}
