package qdevice

import (
	"github.com/google/uuid"
)

type InstructionKind int

const (
	InstructionNamed InstructionKind = iota
	InstructionMatrix
	InstructionBasisState
	InstructionMeasure
	InstructionRelease
)

// Instruction is one recorded device call. Only the field matching Kind is set.
type Instruction struct {
	Kind    InstructionKind
	Gate    GateInstruction
	Matrix  MatrixInstruction
	Basis   BasisState
	Measure Measurement
	Release QubitID
}

// BasisState prepares the computational basis state Bits on Wires.
type BasisState struct {
	Bits  []bool
	Wires []QubitID
}

// Measurement is a mid-circuit measurement, forced when Postselect is set.
type Measurement struct {
	Wire       QubitID
	Postselect *bool
}

/*
Tape is a recorded circuit: the qubits that were live while recording plus
every state-changing instruction in order, measurements and releases
included. A tape can be replayed on any fresh device, which is how a
ShotPool runs one circuit once per shot.
*/
type Tape struct {
	ID           string
	Qubits       []QubitID
	Instructions []Instruction
}

func NewTape(qubits []QubitID) *Tape {
	return &Tape{
		ID:     uuid.NewString(),
		Qubits: append([]QubitID(nil), qubits...),
	}
}

func (tape *Tape) addQubits(ids ...QubitID) {
	tape.Qubits = append(tape.Qubits, ids...)
}

func (tape *Tape) record(in Instruction) {
	tape.Instructions = append(tape.Instructions, in)
}

/*
Replay allocates one qubit on d per recorded qubit and re-issues every
instruction against them. It returns the mapping from recorded IDs to the
IDs issued by d.
*/
func (tape *Tape) Replay(d *Device) (map[QubitID]QubitID, error) {
	ids, err := d.AllocateQubits(len(tape.Qubits))
	if err != nil {
		return nil, err
	}

	wireMap := make(map[QubitID]QubitID, len(ids))
	for i, recorded := range tape.Qubits {
		wireMap[recorded] = ids[i]
	}

	for _, in := range tape.Instructions {
		if err := replayOne(d, in, wireMap); err != nil {
			return nil, err
		}
	}

	return wireMap, nil
}

func replayOne(d *Device, in Instruction, wireMap map[QubitID]QubitID) error {
	switch in.Kind {
	case InstructionNamed:
		g := in.Gate
		wires, err := remap(g.Wires, wireMap)
		if err != nil {
			return err
		}
		controls, err := remap(g.ControlWires, wireMap)
		if err != nil {
			return err
		}
		g.Wires, g.ControlWires = wires, controls
		return d.Apply(g)
	case InstructionMatrix:
		m := in.Matrix
		wires, err := remap(m.Wires, wireMap)
		if err != nil {
			return err
		}
		controls, err := remap(m.ControlWires, wireMap)
		if err != nil {
			return err
		}
		m.Wires, m.ControlWires = wires, controls
		return d.ApplyMatrix(m)
	case InstructionBasisState:
		wires, err := remap(in.Basis.Wires, wireMap)
		if err != nil {
			return err
		}
		return d.SetBasisState(in.Basis.Bits, wires)
	case InstructionMeasure:
		wires, err := remap([]QubitID{in.Measure.Wire}, wireMap)
		if err != nil {
			return err
		}
		_, err = d.Measure(wires[0], in.Measure.Postselect)
		return err
	case InstructionRelease:
		wires, err := remap([]QubitID{in.Release}, wireMap)
		if err != nil {
			return err
		}
		return d.ReleaseQubit(wires[0])
	default:
		return invalidArgument("unknown instruction kind %d", int(in.Kind))
	}
}

// Remap translates recorded wires through a Replay mapping.
func Remap(wires []QubitID, wireMap map[QubitID]QubitID) ([]QubitID, error) {
	return remap(wires, wireMap)
}

func remap(wires []QubitID, wireMap map[QubitID]QubitID) ([]QubitID, error) {
	mapped := make([]QubitID, len(wires))
	for i, w := range wires {
		id, ok := wireMap[w]
		if !ok {
			return nil, invalidArgument("qubit ID not on tape: %d", w)
		}
		mapped[i] = id
	}
	return mapped, nil
}
