package qdevice

import (
	"math"
	"math/bits"
	"math/cmplx"
	"math/rand/v2"
	"sort"
)

const maxStateQubits = 30

/*
QuantumState is a dense state-vector Engine. It is the default engine
behind NewDevice and the engine every test runs against.

Vector index bit i is physical register i. Noise, when non-zero, applies a
uniformly random Pauli to the target register after every matrix or phase
gate with probability Noise. Swaps are relabelings and stay noiseless. The
remaining engine-selection flags in Config are accepted and ignored.
*/
type QuantumState struct {
	Vector []complex128
	qubits int
	noise  float64
	rng    *rand.Rand
}

func NewQuantumState(cfg Config) *QuantumState {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	qs := &QuantumState{
		Vector: []complex128{1},
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	qs.SetNoiseParameter(cfg.Noise)

	return qs
}

// NewQuantumStateEngine is the EngineFactory for QuantumState.
func NewQuantumStateEngine(cfg Config) (Engine, error) {
	return NewQuantumState(cfg), nil
}

func (qs *QuantumState) QubitCount() int {
	return qs.qubits
}

func (qs *QuantumState) Allocate(length int) (int, error) {
	start := qs.qubits
	if length <= 0 {
		return start, nil
	}
	if qs.qubits+length > maxStateQubits {
		return start, runtimeError(
			"state vector cannot hold %d qubits (max %d)", qs.qubits+length, maxStateQubits,
		)
	}

	// New registers occupy the high bits and start in |0>.
	grown := make([]complex128, 1<<(qs.qubits+length))
	copy(grown, qs.Vector)
	qs.Vector = grown
	qs.qubits += length

	return start, nil
}

/*
Dispose removes registers [start, start+length). The registers are expected
to be separable (the adapter measures before disposing); the sub-pattern
carrying the most probability mass is kept and the remainder renormalized.
*/
func (qs *QuantumState) Dispose(start, length int) {
	if length <= 0 || start < 0 || start+length > qs.qubits {
		return
	}

	lowMask := (1 << start) - 1
	subMask := (1 << length) - 1

	mass := make([]float64, 1<<length)
	for i, amp := range qs.Vector {
		mass[(i>>start)&subMask] += norm(amp)
	}

	keep := 0
	for pattern, p := range mass {
		if p > mass[keep] {
			keep = pattern
		}
	}

	scale := complex(1/math.Sqrt(mass[keep]), 0)
	shrunk := make([]complex128, 1<<(qs.qubits-length))
	for j := range shrunk {
		low := j & lowMask
		high := j >> start
		shrunk[j] = qs.Vector[low|keep<<start|high<<(start+length)] * scale
	}

	qs.Vector = shrunk
	qs.qubits -= length
}

func (qs *QuantumState) Mtrx(m Matrix2, target int) {
	qs.apply(nil, 0, m, target)
	qs.depolarize(target)
}

func (qs *QuantumState) UCMtrx(controls []int, m Matrix2, target int, controlPerm uint64) {
	qs.apply(controls, controlPerm, m, target)
	qs.depolarize(target)
}

func (qs *QuantumState) Phase(topLeft, bottomRight complex128, target int) {
	qs.Mtrx(Matrix2{topLeft, 0, 0, bottomRight}, target)
}

func (qs *QuantumState) UCPhase(controls []int, topLeft, bottomRight complex128, target int, controlPerm uint64) {
	qs.UCMtrx(controls, Matrix2{topLeft, 0, 0, bottomRight}, target, controlPerm)
}

func (qs *QuantumState) MCPhase(controls []int, topLeft, bottomRight complex128, target int) {
	qs.UCPhase(controls, topLeft, bottomRight, target, allOnes(len(controls)))
}

func (qs *QuantumState) X(target int) {
	qs.Mtrx(pauliXMatrix, target)
}

func (qs *QuantumState) XMask(mask uint64) {
	qs.eachBit(mask, pauliXMatrix)
}

func (qs *QuantumState) YMask(mask uint64) {
	qs.eachBit(mask, pauliYMatrix)
}

func (qs *QuantumState) ZMask(mask uint64) {
	qs.eachBit(mask, pauliZMatrix)
}

func (qs *QuantumState) Swap(a, b int) {
	qs.CSwap(nil, a, b)
}

func (qs *QuantumState) CSwap(controls []int, a, b int) {
	if a == b {
		return
	}

	aBit, bBit := 1<<a, 1<<b
	need := allOnes(len(controls))
	for i := range qs.Vector {
		if i&aBit == 0 || i&bBit != 0 || !controlsMatch(i, controls, need) {
			continue
		}
		j := (i &^ aBit) | bBit
		qs.Vector[i], qs.Vector[j] = qs.Vector[j], qs.Vector[i]
	}
}

func (qs *QuantumState) M(target int) bool {
	return qs.ForceM(target, qs.rng.Float64() < qs.prob(target))
}

/*
ForceM projects target onto result. When result has zero probability the
state is left untouched and the actual (opposite) value is returned.
*/
func (qs *QuantumState) ForceM(target int, result bool) bool {
	bit := 1 << target
	p := qs.prob(target)
	if !result {
		p = 1 - p
	}
	if p <= 0 {
		return !result
	}

	scale := complex(1/math.Sqrt(p), 0)
	for i := range qs.Vector {
		if (i&bit != 0) == result {
			qs.Vector[i] *= scale
		} else {
			qs.Vector[i] = 0
		}
	}

	return result
}

// MAll collapses every register and returns the native basis index.
func (qs *QuantumState) MAll() uint64 {
	r := qs.rng.Float64()

	measured := len(qs.Vector) - 1
	cumulative := 0.0
	for i, amp := range qs.Vector {
		cumulative += norm(amp)
		if r < cumulative {
			measured = i
			break
		}
	}

	collapsed := make([]complex128, len(qs.Vector))
	collapsed[measured] = 1
	qs.Vector = collapsed

	return uint64(measured)
}

/*
MultiShotMeasureMask draws shots outcomes over the registers selected by
qPowers without collapsing the state. Outcome bit i is the value of the
register at qPowers[i].
*/
func (qs *QuantumState) MultiShotMeasureMask(qPowers []uint64, shots int) map[uint64]int {
	dist := make(map[uint64]float64)
	for i, amp := range qs.Vector {
		p := norm(amp)
		if p == 0 {
			continue
		}
		dist[maskedPattern(uint64(i), qPowers)] += p
	}

	patterns := make([]uint64, 0, len(dist))
	for pattern := range dist {
		patterns = append(patterns, pattern)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i] < patterns[j] })

	cumulative := make([]float64, len(patterns))
	total := 0.0
	for i, pattern := range patterns {
		total += dist[pattern]
		cumulative[i] = total
	}

	results := make(map[uint64]int)
	if len(patterns) == 0 {
		return results
	}
	for shot := 0; shot < shots; shot++ {
		r := qs.rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, r)
		if idx >= len(patterns) {
			idx = len(patterns) - 1
		}
		results[patterns[idx]]++
	}

	return results
}

func (qs *QuantumState) ExpectationPauliAll(bits []int, paulis []Pauli) float64 {
	applied := make([]complex128, len(qs.Vector))
	copy(applied, qs.Vector)

	for k, target := range bits {
		m, ok := pauliMatrix(paulis[k])
		if !ok {
			continue
		}
		applyTo(applied, nil, 0, m, target)
	}

	var e complex128
	for i, amp := range qs.Vector {
		e += cmplx.Conj(amp) * applied[i]
	}

	return real(e)
}

/*
VariancePauliAll uses P*P = I, which holds for a Pauli string with each
register listed once. ObservableCache.Tensor merges repeated wires before
an observable reaches the engine.
*/
func (qs *QuantumState) VariancePauliAll(bits []int, paulis []Pauli) float64 {
	e := qs.ExpectationPauliAll(bits, paulis)
	return 1 - e*e
}

func (qs *QuantumState) GetQuantumState(out []complex128) {
	copy(out, qs.Vector)
}

func (qs *QuantumState) GetProbs(out []float64) {
	for i, amp := range qs.Vector {
		if i < len(out) {
			out[i] = norm(amp)
		}
	}
}

// ProbBitsAll fills out[k] with the probability that bit j of k equals register bits[j].
func (qs *QuantumState) ProbBitsAll(bitList []int, out []float64) {
	for i := range out {
		out[i] = 0
	}

	powers := make([]uint64, len(bitList))
	for j, b := range bitList {
		powers[j] = pow2(b)
	}

	for i, amp := range qs.Vector {
		key := maskedPattern(uint64(i), powers)
		if key < uint64(len(out)) {
			out[key] += norm(amp)
		}
	}
}

func (qs *QuantumState) SetNoiseParameter(noise float64) {
	qs.noise = noise
}

func (qs *QuantumState) prob(target int) float64 {
	bit := 1 << target
	p := 0.0
	for i, amp := range qs.Vector {
		if i&bit != 0 {
			p += norm(amp)
		}
	}
	return p
}

func (qs *QuantumState) apply(controls []int, controlPerm uint64, m Matrix2, target int) {
	applyTo(qs.Vector, controls, controlPerm, m, target)
}

func (qs *QuantumState) eachBit(mask uint64, m Matrix2) {
	for mask != 0 {
		target := bits.TrailingZeros64(mask)
		mask &^= pow2(target)
		qs.Mtrx(m, target)
	}
}

func (qs *QuantumState) depolarize(targets ...int) {
	if qs.noise <= 0 {
		return
	}
	for _, target := range targets {
		if qs.rng.Float64() >= qs.noise {
			continue
		}
		switch qs.rng.IntN(3) {
		case 0:
			applyTo(qs.Vector, nil, 0, pauliXMatrix, target)
		case 1:
			applyTo(qs.Vector, nil, 0, pauliYMatrix, target)
		default:
			applyTo(qs.Vector, nil, 0, pauliZMatrix, target)
		}
	}
}

func applyTo(vector []complex128, controls []int, controlPerm uint64, m Matrix2, target int) {
	bit := 1 << target
	for i := range vector {
		if i&bit != 0 || !controlsMatch(i, controls, controlPerm) {
			continue
		}
		j := i | bit
		a0, a1 := vector[i], vector[j]
		vector[i] = m[0]*a0 + m[1]*a1
		vector[j] = m[2]*a0 + m[3]*a1
	}
}

func controlsMatch(index int, controls []int, controlPerm uint64) bool {
	for k, c := range controls {
		want := controlPerm&pow2(k) != 0
		if (index&(1<<c) != 0) != want {
			return false
		}
	}
	return true
}

func maskedPattern(index uint64, qPowers []uint64) uint64 {
	var pattern uint64
	for i, power := range qPowers {
		if index&power != 0 {
			pattern |= pow2(i)
		}
	}
	return pattern
}

func allOnes(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return pow2(n) - 1
}

func norm(amp complex128) float64 {
	return real(amp)*real(amp) + imag(amp)*imag(amp)
}
