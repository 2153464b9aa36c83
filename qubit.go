package qdevice

import (
	"github.com/theapemachine/errnie"
)

// QubitID is a caller-visible logical qubit handle.
type QubitID int64

/*
QubitRegistry owns the bijection between logical qubit IDs and physical
register indices of one engine.

IDs come from a monotone counter that survives Reset, so an ID is never
handed out twice. Physical indices stay dense: releasing a register shifts every
higher index down by one, mirroring the engine's Dispose.
*/
type QubitRegistry struct {
	engine   Engine
	capacity int
	nextID   QubitID
	qubits   map[QubitID]int
}

func NewQubitRegistry(engine Engine, capacity int) *QubitRegistry {
	return &QubitRegistry{
		engine:   engine,
		capacity: capacity,
		qubits:   make(map[QubitID]int),
	}
}

// Allocate requests one register from the engine and maps a fresh ID onto it.
func (reg *QubitRegistry) Allocate() (QubitID, error) {
	if reg.capacity > 0 && len(reg.qubits) >= reg.capacity {
		return 0, runtimeError("cannot allocate more than %d qubits", reg.capacity)
	}

	index, err := reg.engine.Allocate(1)
	if err != nil {
		return 0, err
	}

	id := reg.nextID
	reg.nextID++
	reg.qubits[id] = index

	errnie.Info("allocated qubit %d at register %d", id, index)
	return id, nil
}

/*
AllocateMany performs n sequential allocations. Capacity is checked up
front, so a request that cannot fit allocates nothing; an engine failure
partway leaves the earlier allocations in place.
*/
func (reg *QubitRegistry) AllocateMany(n int) ([]QubitID, error) {
	if n < 0 {
		return nil, invalidArgument("cannot allocate %d qubits", n)
	}
	if reg.capacity > 0 && len(reg.qubits)+n > reg.capacity {
		return nil, runtimeError(
			"cannot allocate %d qubits: %d of %d in use", n, len(reg.qubits), reg.capacity,
		)
	}

	ids := make([]QubitID, 0, n)
	for i := 0; i < n; i++ {
		id, err := reg.Allocate()
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Resolve translates logical wires into physical register indices.
func (reg *QubitRegistry) Resolve(wires []QubitID) ([]int, error) {
	indices := make([]int, len(wires))
	for i, w := range wires {
		index, ok := reg.qubits[w]
		if !ok {
			return nil, invalidArgument("qubit ID not in wire map: %d", w)
		}
		indices[i] = index
	}
	return indices, nil
}

/*
Release measures the register so the disposed subsystem is not left
entangled, disposes it, and compacts the remaining indices.
*/
func (reg *QubitRegistry) Release(id QubitID) error {
	index, ok := reg.qubits[id]
	if !ok {
		return invalidArgument("qubit ID not in wire map: %d", id)
	}

	reg.engine.M(index)
	reg.engine.Dispose(index, 1)
	delete(reg.qubits, id)

	for other, otherIndex := range reg.qubits {
		if otherIndex > index {
			reg.qubits[other] = otherIndex - 1
		}
	}

	errnie.Info("released qubit %d from register %d", id, index)
	return nil
}

/*
Reset swaps in a fresh engine and forgets every mapping. The ID counter keeps
running, so IDs issued before the reset stay invalid afterwards.
*/
func (reg *QubitRegistry) Reset(engine Engine) {
	reg.engine = engine
	reg.qubits = make(map[QubitID]int)
}

// Len is the number of live qubits.
func (reg *QubitRegistry) Len() int {
	return len(reg.qubits)
}

// Wires returns the live logical IDs ordered by physical index.
func (reg *QubitRegistry) Wires() []QubitID {
	wires := make([]QubitID, len(reg.qubits))
	for id, index := range reg.qubits {
		wires[index] = id
	}
	return wires
}
