package qdevice

/*
StateAccessor reads amplitudes and probabilities in caller order, where wire
0 is the most significant bit. The engine's native order is the reverse, so
full reads bracket the engine call with a swap network and partial reads
reverse the wire list instead.
*/
type StateAccessor struct {
	registry *QubitRegistry
}

func NewStateAccessor(registry *QubitRegistry) *StateAccessor {
	return &StateAccessor{registry: registry}
}

func (sa *StateAccessor) GetState(out []complex128) error {
	e := sa.registry.engine
	if len(out) != 1<<uint(e.QubitCount()) {
		return invalidArgument(
			"invalid size for the pre-allocated state vector: %d, want %d", len(out), 1<<uint(e.QubitCount()),
		)
	}

	sa.reverse()
	e.GetQuantumState(out)
	sa.reverse()

	return nil
}

func (sa *StateAccessor) GetProbs(out []float64) error {
	e := sa.registry.engine
	if len(out) != 1<<uint(e.QubitCount()) {
		return invalidArgument(
			"invalid size for the pre-allocated probabilities vector: %d, want %d", len(out), 1<<uint(e.QubitCount()),
		)
	}

	sa.reverse()
	e.GetProbs(out)
	sa.reverse()

	return nil
}

// GetPartialProbs leaves the register untouched.
func (sa *StateAccessor) GetPartialProbs(out []float64, wires []QubitID) error {
	if len(out) != 1<<uint(len(wires)) {
		return invalidArgument(
			"invalid size for the pre-allocated probabilities vector: %d, want %d", len(out), 1<<uint(len(wires)),
		)
	}

	bits, err := sa.registry.Resolve(wires)
	if err != nil {
		return err
	}

	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}

	sa.registry.engine.ProbBitsAll(bits, out)
	return nil
}

func (sa *StateAccessor) reverse() {
	e := sa.registry.engine
	end := e.QubitCount() - 1
	mid := e.QubitCount() >> 1
	for i := 0; i < mid; i++ {
		e.Swap(i, end-i)
	}
}
