package qdevice

import (
	"math"
	"math/cmplx"
)

// Gate is the closed vocabulary of named operations the translator accepts.
type Gate int

const (
	GateIdentity Gate = iota
	GatePauliX
	GatePauliY
	GatePauliZ
	GateSX
	GateHadamard
	GateS
	GateT
	GatePhaseShift
	GateMultiRZ
	GateRX
	GateRY
	GateRZ
	GateRot
	GateU3
	GateSWAP
	GateISWAP
	GatePSWAP

	// Control sugar: the leading target wires are promoted to controls.
	GateCNOT
	GateToffoli
	GateMultiControlledX
	GateCY
	GateCZ
	GateControlledPhaseShift
	GateCPhase
	GateCRX
	GateCRY
	GateCRZ
	GateCRot
	GateCSWAP

	gateCount
)

type dispatchKind int

const (
	dispatchNone dispatchKind = iota
	dispatchPauli
	dispatchSingle
	dispatchMultiRZ
	dispatchSwap
	dispatchISwap
	dispatchPSwap
)

/*
gateSpec is one dispatch table entry. base is the gate the entry resolves to
after control-sugar promotion; arity is the number of trailing target wires
that stay targets (zero means no promotion happens).
*/
type gateSpec struct {
	name   string
	base   Gate
	arity  int
	params int
	kind   dispatchKind
	single func(params []float64, inverse bool) primitive
}

var gateTable = [gateCount]gateSpec{
	GateIdentity:   {name: "Identity", base: GateIdentity, kind: dispatchNone},
	GatePauliX:     {name: "PauliX", base: GatePauliX, kind: dispatchPauli, single: fixed(pauliXMatrix)},
	GatePauliY:     {name: "PauliY", base: GatePauliY, kind: dispatchPauli, single: fixed(pauliYMatrix)},
	GatePauliZ:     {name: "PauliZ", base: GatePauliZ, kind: dispatchPauli, single: fixed(pauliZMatrix)},
	GateSX:         {name: "SX", base: GateSX, kind: dispatchSingle, single: sqrtX},
	GateHadamard:   {name: "Hadamard", base: GateHadamard, kind: dispatchSingle, single: fixed(hadamardMatrix)},
	GateS:          {name: "S", base: GateS, kind: dispatchSingle, single: sPhase},
	GateT:          {name: "T", base: GateT, kind: dispatchSingle, single: tPhase},
	GatePhaseShift: {name: "PhaseShift", base: GatePhaseShift, params: 1, kind: dispatchSingle, single: phaseShift},
	GateMultiRZ:    {name: "MultiRZ", base: GateMultiRZ, params: 1, kind: dispatchMultiRZ, single: rz},
	GateRX:         {name: "RX", base: GateRX, params: 1, kind: dispatchSingle, single: rx},
	GateRY:         {name: "RY", base: GateRY, params: 1, kind: dispatchSingle, single: ry},
	GateRZ:         {name: "RZ", base: GateRZ, params: 1, kind: dispatchSingle, single: rz},
	GateRot:        {name: "Rot", base: GateRot, params: 3, kind: dispatchSingle, single: rot},
	GateU3:         {name: "U3", base: GateU3, params: 3, kind: dispatchSingle, single: u3},
	GateSWAP:       {name: "SWAP", base: GateSWAP, kind: dispatchSwap},
	GateISWAP:      {name: "ISWAP", base: GateISWAP, kind: dispatchISwap},
	GatePSWAP:      {name: "PSWAP", base: GatePSWAP, params: 1, kind: dispatchPSwap},

	GateCNOT:                 {name: "CNOT", base: GatePauliX, arity: 1},
	GateToffoli:              {name: "Toffoli", base: GatePauliX, arity: 1},
	GateMultiControlledX:     {name: "MultiControlledX", base: GatePauliX, arity: 1},
	GateCY:                   {name: "CY", base: GatePauliY, arity: 1},
	GateCZ:                   {name: "CZ", base: GatePauliZ, arity: 1},
	GateControlledPhaseShift: {name: "ControlledPhaseShift", base: GatePhaseShift, arity: 1},
	GateCPhase:               {name: "CPhase", base: GatePhaseShift, arity: 1},
	GateCRX:                  {name: "CRX", base: GateRX, arity: 1},
	GateCRY:                  {name: "CRY", base: GateRY, arity: 1},
	GateCRZ:                  {name: "CRZ", base: GateRZ, arity: 1},
	GateCRot:                 {name: "CRot", base: GateRot, arity: 1},
	GateCSWAP:                {name: "CSWAP", base: GateSWAP, arity: 2},
}

var gatesByName = func() map[string]Gate {
	byName := make(map[string]Gate, gateCount)
	for g := Gate(0); g < gateCount; g++ {
		byName[gateTable[g].name] = g
	}
	return byName
}()

// ParseGate maps a gate name onto the closed vocabulary.
func ParseGate(name string) (Gate, error) {
	g, ok := gatesByName[name]
	if !ok {
		return 0, domainError("unrecognized gate name: %s", name)
	}
	return g, nil
}

func (g Gate) String() string {
	if g < 0 || g >= gateCount {
		return "Unknown"
	}
	return gateTable[g].name
}

func (g Gate) spec() gateSpec {
	return gateTable[g]
}

type primitiveKind int

const (
	primMatrix primitiveKind = iota
	primPhase
)

// primitive describes one single-qubit engine call: a full matrix or a diagonal phase pair.
type primitive struct {
	kind        primitiveKind
	matrix      Matrix2
	topLeft     complex128
	bottomRight complex128
}

func matrixPrim(m Matrix2) primitive {
	return primitive{kind: primMatrix, matrix: m}
}

func phasePrim(topLeft, bottomRight complex128) primitive {
	return primitive{kind: primPhase, topLeft: topLeft, bottomRight: bottomRight}
}

var (
	pauliXMatrix   = Matrix2{0, 1, 1, 0}
	pauliYMatrix   = Matrix2{0, -1i, 1i, 0}
	pauliZMatrix   = Matrix2{1, 0, 0, -1}
	hadamardMatrix = Matrix2{
		complex(math.Sqrt2/2, 0), complex(math.Sqrt2/2, 0),
		complex(math.Sqrt2/2, 0), complex(-math.Sqrt2/2, 0),
	}
	sqrtXMatrix = Matrix2{
		complex(0.5, 0.5), complex(0.5, -0.5),
		complex(0.5, -0.5), complex(0.5, 0.5),
	}
)

func pauliMatrix(p Pauli) (Matrix2, bool) {
	switch p {
	case PauliX:
		return pauliXMatrix, true
	case PauliY:
		return pauliYMatrix, true
	case PauliZ:
		return pauliZMatrix, true
	default:
		return Matrix2{}, false
	}
}

// fixed serves self-adjoint gates: the inverse flag is ignored.
func fixed(m Matrix2) func([]float64, bool) primitive {
	return func([]float64, bool) primitive {
		return matrixPrim(m)
	}
}

func angle(params []float64, inverse bool) float64 {
	if inverse {
		return -params[0]
	}
	return params[0]
}

func expI(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

func sqrtX(_ []float64, inverse bool) primitive {
	if inverse {
		return matrixPrim(sqrtXMatrix.Adjoint())
	}
	return matrixPrim(sqrtXMatrix)
}

func sPhase(_ []float64, inverse bool) primitive {
	if inverse {
		return phasePrim(1, -1i)
	}
	return phasePrim(1, 1i)
}

func tPhase(_ []float64, inverse bool) primitive {
	if inverse {
		return phasePrim(1, expI(-math.Pi/4))
	}
	return phasePrim(1, expI(math.Pi/4))
}

func phaseShift(params []float64, inverse bool) primitive {
	return phasePrim(1, expI(angle(params, inverse)))
}

func rx(params []float64, inverse bool) primitive {
	theta := angle(params, inverse)
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return matrixPrim(Matrix2{
		complex(c, 0), complex(0, -s),
		complex(0, -s), complex(c, 0),
	})
}

func ry(params []float64, inverse bool) primitive {
	theta := angle(params, inverse)
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return matrixPrim(Matrix2{
		complex(c, 0), complex(-s, 0),
		complex(s, 0), complex(c, 0),
	})
}

func rz(params []float64, inverse bool) primitive {
	bottomRight := expI(angle(params, inverse) / 2)
	return phasePrim(cmplx.Conj(bottomRight), bottomRight)
}

/*
rot is RZ(omega) RY(theta) RZ(phi). Its adjoint is Rot(-omega, -theta, -phi):
the outer angles swap places and every angle is negated.
*/
func rot(params []float64, inverse bool) primitive {
	phi, theta, omega := params[0], params[1], params[2]
	if inverse {
		phi, theta, omega = -params[2], -params[1], -params[0]
	}

	c, s := math.Cos(theta/2), math.Sin(theta/2)
	expP := expI((phi + omega) / 2)
	expM := expI((phi - omega) / 2)

	return matrixPrim(Matrix2{
		complex(c, 0) / expP, complex(-s, 0) * expM,
		complex(s, 0) / expM, complex(c, 0) * expP,
	})
}

// u3 adjoint is U3(-theta, -lambda, -phi).
func u3(params []float64, inverse bool) primitive {
	theta, phi, lambda := params[0], params[1], params[2]
	if inverse {
		theta, phi, lambda = -params[0], -params[2], -params[1]
	}

	c, s := math.Cos(theta/2), math.Sin(theta/2)

	return matrixPrim(Matrix2{
		complex(c, 0), -complex(s, 0) * expI(lambda),
		complex(s, 0) * expI(phi), complex(c, 0) * expI(phi+lambda),
	})
}
