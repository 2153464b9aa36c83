package qdevice

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantumState(t *testing.T) {
	Convey("Given a seeded reference engine", t, func() {
		cfg := NewConfig()
		cfg.Seed = 99
		qs := NewQuantumState(*cfg)

		Convey("Allocation appends |0> registers", func() {
			start, err := qs.Allocate(2)
			So(err, ShouldBeNil)
			So(start, ShouldEqual, 0)

			start, err = qs.Allocate(1)
			So(err, ShouldBeNil)
			So(start, ShouldEqual, 2)
			So(qs.QubitCount(), ShouldEqual, 3)
			So(len(qs.Vector), ShouldEqual, 8)
			So(qs.Vector[0], ShouldEqual, complex(1, 0))
		})

		Convey("Allocation beyond the dense limit is a runtime error", func() {
			_, err := qs.Allocate(maxStateQubits + 1)
			So(errors.Is(err, ErrRuntime), ShouldBeTrue)
			So(qs.QubitCount(), ShouldEqual, 0)
		})

		Convey("Dispose removes a separable register and shifts the rest down", func() {
			_, err := qs.Allocate(3)
			So(err, ShouldBeNil)
			qs.X(0)
			qs.X(2)

			qs.Dispose(1, 1)
			So(qs.QubitCount(), ShouldEqual, 2)
			So(qs.Vector[0b11], ShouldEqual, complex(1, 0))
		})

		Convey("Forcing an impossible outcome leaves the state alone", func() {
			_, err := qs.Allocate(1)
			So(err, ShouldBeNil)

			So(qs.ForceM(0, true), ShouldBeFalse)
			So(qs.Vector[0], ShouldEqual, complex(1, 0))
		})

		Convey("Forcing a possible outcome projects and renormalizes", func() {
			_, err := qs.Allocate(1)
			So(err, ShouldBeNil)
			qs.Mtrx(hadamardMatrix, 0)

			So(qs.ForceM(0, true), ShouldBeTrue)
			So(real(qs.Vector[1]), ShouldAlmostEqual, 1, 1e-12)
			So(qs.Vector[0], ShouldEqual, complex(0, 0))
		})

		Convey("Masked multi-shot measurement does not collapse", func() {
			_, err := qs.Allocate(2)
			So(err, ShouldBeNil)
			qs.Mtrx(hadamardMatrix, 1)
			before := append([]complex128(nil), qs.Vector...)

			results := qs.MultiShotMeasureMask([]uint64{pow2(1)}, 500)
			total := 0
			for pattern, n := range results {
				So(pattern, ShouldBeLessThanOrEqualTo, uint64(1))
				total += n
			}
			So(total, ShouldEqual, 500)
			So(qs.Vector, ShouldResemble, before)
		})

		Convey("Pauli expectations and variances", func() {
			_, err := qs.Allocate(2)
			So(err, ShouldBeNil)
			qs.Mtrx(hadamardMatrix, 0)

			So(qs.ExpectationPauliAll([]int{0}, []Pauli{PauliX}), ShouldAlmostEqual, 1, 1e-12)
			So(qs.ExpectationPauliAll([]int{0}, []Pauli{PauliZ}), ShouldAlmostEqual, 0, 1e-12)
			So(qs.ExpectationPauliAll([]int{1}, []Pauli{PauliZ}), ShouldAlmostEqual, 1, 1e-12)
			So(qs.ExpectationPauliAll([]int{0, 1}, []Pauli{PauliI, PauliZ}), ShouldAlmostEqual, 1, 1e-12)
			So(qs.VariancePauliAll([]int{0}, []Pauli{PauliZ}), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Noise perturbs gates but never swaps", func() {
			noisy := NewQuantumState(Config{Noise: 1, Seed: 5, Shots: 1})
			_, err := noisy.Allocate(2)
			So(err, ShouldBeNil)

			noisy.Swap(0, 1)
			So(noisy.Vector[0], ShouldEqual, complex(1, 0))

			noisy.Mtrx(Matrix2{1, 0, 0, 1}, 0)
			p := 0.0
			for _, amp := range noisy.Vector {
				p += norm(amp)
			}
			So(p, ShouldAlmostEqual, 1, 1e-12)
		})
	})
}

func TestMatrix2(t *testing.T) {
	Convey("Given a unitary", t, func() {
		theta := 0.7
		m := rx([]float64{theta}, false).matrix

		Convey("The adjugate inverse equals the adjoint", func() {
			inv, adj := m.Inverse(), m.Adjoint()
			for i := range inv {
				So(real(inv[i]), ShouldAlmostEqual, real(adj[i]), 1e-12)
				So(imag(inv[i]), ShouldAlmostEqual, imag(adj[i]), 1e-12)
			}
		})

		Convey("Multiplying by the inverse gives the identity", func() {
			id := m.Mul(m.Inverse())
			So(real(id[0]), ShouldAlmostEqual, 1, 1e-12)
			So(math.Abs(real(id[1]))+math.Abs(imag(id[1])), ShouldAlmostEqual, 0, 1e-12)
		})

		Convey("A singular matrix inverts to zero", func() {
			So(Matrix2{1, 1, 1, 1}.Inverse(), ShouldResemble, Matrix2{})
		})
	})
}
