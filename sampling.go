package qdevice

import (
	"sort"
)

/*
Histogram maps a sampled bit pattern to the number of shots that produced
it. Patterns use caller order: the first requested wire is the most
significant of the numWires bits.
*/
type Histogram map[uint64]int

// Shots is the total multiplicity.
func (h Histogram) Shots() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Patterns returns the sampled patterns in ascending order.
func (h Histogram) Patterns() []uint64 {
	patterns := make([]uint64, 0, len(h))
	for pattern := range h {
		patterns = append(patterns, pattern)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i] < patterns[j] })
	return patterns
}

// SamplingEngine turns engine measurements into caller-ordered histograms.
type SamplingEngine struct {
	registry *QubitRegistry
	noise    float64
	metrics  *Metrics
}

func NewSamplingEngine(registry *QubitRegistry, noise float64, metrics *Metrics) *SamplingEngine {
	return &SamplingEngine{
		registry: registry,
		noise:    noise,
		metrics:  metrics,
	}
}

// Sample picks the single-shot collapse path for one shot and the aggregated draw otherwise.
func (s *SamplingEngine) Sample(wires []QubitID, shots int) (Histogram, error) {
	if shots < 1 {
		return nil, invalidArgument("shots must be positive, got %d", shots)
	}

	if shots == 1 {
		pattern, err := s.SampleOne(wires)
		if err != nil {
			return nil, err
		}
		return Histogram{pattern: 1}, nil
	}

	return s.SampleMany(wires, shots)
}

/*
SampleOne collapses the whole register once and reads the requested wires
out of the native result, reversing into caller order.
*/
func (s *SamplingEngine) SampleOne(wires []QubitID) (uint64, error) {
	bits, err := s.registry.Resolve(wires)
	if err != nil {
		return 0, err
	}

	native := s.registry.engine.MAll()
	n := len(bits)

	var pattern uint64
	for i, b := range bits {
		if native&pow2(b) != 0 {
			pattern |= pow2(n - (i + 1))
		}
	}

	s.metrics.shotsSampled(1)
	return pattern, nil
}

/*
SampleMany performs one multi-shot masked measurement. The mask powers are
listed last wire first, so result bit i belongs to wire n-1-i and the
engine's pattern is already in caller order.
*/
func (s *SamplingEngine) SampleMany(wires []QubitID, shots int) (Histogram, error) {
	if err := s.checkNoise(shots); err != nil {
		return nil, err
	}

	bits, err := s.registry.Resolve(wires)
	if err != nil {
		return nil, err
	}

	n := len(bits)
	qPowers := make([]uint64, n)
	for i := range qPowers {
		qPowers[i] = pow2(bits[n-(i+1)])
	}

	s.metrics.shotsSampled(shots)
	return Histogram(s.registry.engine.MultiShotMeasureMask(qPowers, shots)), nil
}

func (s *SamplingEngine) checkNoise(shots int) error {
	if shots > 1 && s.noise > 0 {
		return domainError(
			"shots > 1 can't be simulated with noise (%g); sample one shot at a time instead", s.noise,
		)
	}
	return nil
}

/*
ExpandSamples writes one row per shot, each row holding the 0/1 value of
every wire in caller order. Rows follow ascending pattern order.
*/
func ExpandSamples(h Histogram, numWires int) [][]int {
	rows := make([][]int, 0, h.Shots())

	for _, pattern := range h.Patterns() {
		for shot := 0; shot < h[pattern]; shot++ {
			row := make([]int, numWires)
			for wire := range row {
				row[wire] = int((pattern >> uint(numWires-(wire+1))) & 1)
			}
			rows = append(rows, row)
		}
	}

	return rows
}

// ToCounts returns a dense 2^numWires count vector indexed by basis state.
func ToCounts(h Histogram, numWires int) []int64 {
	counts := make([]int64, 1<<uint(numWires))
	for pattern, n := range h {
		if pattern < uint64(len(counts)) {
			counts[pattern] += int64(n)
		}
	}
	return counts
}
