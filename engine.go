package qdevice

import (
	"fmt"
	"math/cmplx"
)

// Pauli is a single-qubit Pauli basis label.
type Pauli int

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

func (p Pauli) String() string {
	switch p {
	case PauliI:
		return "I"
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	default:
		return fmt.Sprintf("Pauli(%d)", int(p))
	}
}

func (p Pauli) valid() bool {
	return p >= PauliI && p <= PauliZ
}

// multiplyPaulis is the product of two Paulis on one wire when it is Hermitian.
func multiplyPaulis(a, b Pauli) (Pauli, bool) {
	switch {
	case a == PauliI:
		return b, true
	case b == PauliI:
		return a, true
	case a == b:
		return PauliI, true
	default:
		return 0, false
	}
}

/*
Matrix2 is a row-major 2x2 complex matrix: {m00, m01, m10, m11}.
*/
type Matrix2 [4]complex128

// Adjoint returns the conjugate transpose.
func (m Matrix2) Adjoint() Matrix2 {
	return Matrix2{
		cmplx.Conj(m[0]), cmplx.Conj(m[2]),
		cmplx.Conj(m[1]), cmplx.Conj(m[3]),
	}
}

/*
Inverse returns the inverse computed from the adjugate. For a unitary input
this equals the conjugate transpose up to rounding; for a singular input the
zero matrix is returned.
*/
func (m Matrix2) Inverse() Matrix2 {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Matrix2{}
	}
	inv := 1 / det
	return Matrix2{
		m[3] * inv, -m[1] * inv,
		-m[2] * inv, m[0] * inv,
	}
}

// Mul returns m*o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	return Matrix2{
		m[0]*o[0] + m[1]*o[2], m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2], m[2]*o[1] + m[3]*o[3],
	}
}

/*
Engine is the primitive provider underneath the adapter: an amplitude
simulator that owns the state and exposes atomic operations over dense
physical register indices.

Bit conventions:
  - bit i of a native basis index (and of MAll, masks and qPowers) is
    physical register i.
  - controlPerm bit k selects the required value of controls[k].
  - MultiShotMeasureMask result bit i is the outcome of qPowers[i].

Every call is synchronous. Implementations need not be safe for concurrent
use; the adapter serializes access.
*/
type Engine interface {
	QubitCount() int

	// Allocate appends length fresh |0> registers and returns the index of the first.
	Allocate(length int) (int, error)

	// Dispose removes registers [start, start+length); higher indices shift down.
	Dispose(start, length int)

	Mtrx(m Matrix2, target int)
	UCMtrx(controls []int, m Matrix2, target int, controlPerm uint64)
	Phase(topLeft, bottomRight complex128, target int)
	UCPhase(controls []int, topLeft, bottomRight complex128, target int, controlPerm uint64)

	// MCPhase applies the phase pair when every control is |1>.
	MCPhase(controls []int, topLeft, bottomRight complex128, target int)

	X(target int)
	XMask(mask uint64)
	YMask(mask uint64)
	ZMask(mask uint64)

	Swap(a, b int)

	// CSwap swaps a and b when every control is |1>. Empty controls swap unconditionally.
	CSwap(controls []int, a, b int)

	M(target int) bool
	ForceM(target int, result bool) bool
	MAll() uint64
	MultiShotMeasureMask(qPowers []uint64, shots int) map[uint64]int

	ExpectationPauliAll(bits []int, paulis []Pauli) float64
	VariancePauliAll(bits []int, paulis []Pauli) float64

	GetQuantumState(out []complex128)
	GetProbs(out []float64)
	ProbBitsAll(bits []int, out []float64)

	SetNoiseParameter(noise float64)
}

// EngineFactory builds a fresh, empty engine from the typed configuration.
type EngineFactory func(cfg Config) (Engine, error)

func pow2(i int) uint64 {
	return uint64(1) << uint(i)
}

func wiresToMask(wires []int) uint64 {
	var mask uint64
	for _, w := range wires {
		mask |= pow2(w)
	}
	return mask
}
