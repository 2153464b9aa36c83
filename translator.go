package qdevice

/*
GateInstruction is one named operation over logical wires. ControlWires and
ControlValues must have equal length; a false control value conditions the
gate on |0> for that wire.
*/
type GateInstruction struct {
	Gate          Gate
	Params        []float64
	Wires         []QubitID
	Inverse       bool
	ControlWires  []QubitID
	ControlValues []bool
}

// MatrixInstruction applies an explicit 2x2 unitary to exactly one target wire.
type MatrixInstruction struct {
	Matrix        Matrix2
	Wires         []QubitID
	Inverse       bool
	ControlWires  []QubitID
	ControlValues []bool
}

/*
GateTranslator turns instructions into engine primitive calls. It resolves
wires through the registry and always talks to the registry's current
engine, so a full reset needs no rewiring here.
*/
type GateTranslator struct {
	registry *QubitRegistry
	metrics  *Metrics
}

func NewGateTranslator(registry *QubitRegistry, metrics *Metrics) *GateTranslator {
	return &GateTranslator{
		registry: registry,
		metrics:  metrics,
	}
}

// resolved is an instruction after wire resolution and control-sugar promotion.
type resolved struct {
	base     gateSpec
	targets  []int
	controls []int
	values   []bool
	perm     uint64
}

func (t *GateTranslator) engine() Engine {
	return t.registry.engine
}

// Apply dispatches a named gate.
func (t *GateTranslator) Apply(in GateInstruction) error {
	if in.Gate < 0 || in.Gate >= gateCount {
		return domainError("unrecognized gate: %d", int(in.Gate))
	}

	r, err := t.resolve(in)
	if err != nil {
		return err
	}

	if err := t.dispatch(r, in.Params, in.Inverse); err != nil {
		return err
	}

	t.metrics.gateApplied(in.Gate.String())
	return nil
}

// ApplyMatrix applies an explicit unitary, or its adjugate inverse when Inverse is set.
func (t *GateTranslator) ApplyMatrix(in MatrixInstruction) error {
	if len(in.ControlWires) != len(in.ControlValues) {
		return invalidArgument(
			"controlled wires/values size mismatch: %d wires, %d values",
			len(in.ControlWires), len(in.ControlValues),
		)
	}
	if len(in.Wires) != 1 {
		return invalidArgument("matrix operation can only have one target qubit, got %d", len(in.Wires))
	}

	targets, err := t.registry.Resolve(in.Wires)
	if err != nil {
		return err
	}
	controls, err := t.registry.Resolve(in.ControlWires)
	if err != nil {
		return err
	}
	if err := distinctWires(controls, targets); err != nil {
		return err
	}

	m := in.Matrix
	if in.Inverse {
		m = m.Inverse()
	}

	if len(controls) == 0 {
		t.engine().Mtrx(m, targets[0])
	} else {
		t.engine().UCMtrx(controls, m, targets[0], controlPerm(in.ControlValues))
	}

	t.metrics.gateApplied("QubitUnitary")
	return nil
}

func (t *GateTranslator) resolve(in GateInstruction) (resolved, error) {
	if len(in.ControlWires) != len(in.ControlValues) {
		return resolved{}, invalidArgument(
			"controlled wires/values size mismatch: %d wires, %d values",
			len(in.ControlWires), len(in.ControlValues),
		)
	}

	targets, err := t.registry.Resolve(in.Wires)
	if err != nil {
		return resolved{}, err
	}
	controls, err := t.registry.Resolve(in.ControlWires)
	if err != nil {
		return resolved{}, err
	}
	values := append([]bool(nil), in.ControlValues...)

	spec := in.Gate.spec()
	if spec.arity > 0 {
		end := len(targets) - spec.arity
		if end < 1 {
			return resolved{}, invalidArgument(
				"%s needs more than %d target wires, got %d", spec.name, spec.arity, len(targets),
			)
		}
		controls = append(controls, targets[:end]...)
		for i := 0; i < end; i++ {
			values = append(values, true)
		}
		targets = targets[end:]
	}

	if err := distinctWires(controls, targets); err != nil {
		return resolved{}, err
	}

	base := spec.base.spec()
	if len(in.Params) < base.params {
		return resolved{}, invalidArgument(
			"%s needs %d parameters, got %d", spec.name, base.params, len(in.Params),
		)
	}
	if base.kind != dispatchNone && len(targets) == 0 {
		return resolved{}, invalidArgument("%s needs at least one target wire", spec.name)
	}

	return resolved{
		base:     base,
		targets:  targets,
		controls: controls,
		values:   values,
		perm:     controlPerm(values),
	}, nil
}

func (t *GateTranslator) dispatch(r resolved, params []float64, inverse bool) error {
	switch r.base.kind {
	case dispatchNone:
		return nil
	case dispatchPauli:
		t.pauli(r)
	case dispatchSingle:
		prim := r.base.single(params, inverse)
		for _, target := range r.targets {
			t.applyPrimitive(prim, r, target)
		}
	case dispatchMultiRZ:
		t.multiRZ(r, r.base.single(params, inverse))
	case dispatchSwap:
		if len(r.targets) != 2 {
			return invalidArgument("SWAP and CSWAP must have exactly two target qubits, got %d", len(r.targets))
		}
		t.withControlValues(r, func() {
			t.swap(r)
		})
	case dispatchISwap:
		if len(r.targets) != 2 {
			return invalidArgument("ISWAP must have exactly two target qubits, got %d", len(r.targets))
		}
		phase := complex128(1i)
		if inverse {
			phase = -1i
		}
		t.phasedSwap(r, phase)
	case dispatchPSwap:
		if len(r.targets) != 2 {
			return invalidArgument("PSWAP must have exactly two target qubits, got %d", len(r.targets))
		}
		t.phasedSwap(r, expI(angle(params, inverse)))
	default:
		return domainError("no dispatch for gate %s", r.base.name)
	}

	return nil
}

/*
pauli applies a self-adjoint Pauli. Several uncontrolled targets collapse
into one masked call instead of a loop.
*/
func (t *GateTranslator) pauli(r resolved) {
	if len(r.controls) == 0 && len(r.targets) > 1 {
		mask := wiresToMask(r.targets)
		switch r.base.base {
		case GatePauliX:
			t.engine().XMask(mask)
		case GatePauliY:
			t.engine().YMask(mask)
		default:
			t.engine().ZMask(mask)
		}
		return
	}

	prim := r.base.single(nil, false)
	for _, target := range r.targets {
		t.applyPrimitive(prim, r, target)
	}
}

func (t *GateTranslator) applyPrimitive(prim primitive, r resolved, target int) {
	e := t.engine()

	if len(r.controls) == 0 {
		if prim.kind == primPhase {
			e.Phase(prim.topLeft, prim.bottomRight, target)
		} else {
			e.Mtrx(prim.matrix, target)
		}
		return
	}

	if prim.kind == primPhase {
		e.UCPhase(r.controls, prim.topLeft, prim.bottomRight, target, r.perm)
	} else {
		e.UCMtrx(r.controls, prim.matrix, target, r.perm)
	}
}

/*
multiRZ computes the target parity onto the last wire with a CNOT ladder,
rotates it, and uncomputes. Only the rotation carries the controls.
*/
func (t *GateTranslator) multiRZ(r resolved, rotation primitive) {
	e := t.engine()
	last := len(r.targets) - 1

	for i := 0; i < last; i++ {
		e.UCMtrx([]int{r.targets[i]}, pauliXMatrix, r.targets[i+1], 1)
	}

	t.applyPrimitive(rotation, r, r.targets[last])

	for i := last - 1; i >= 0; i-- {
		e.UCMtrx([]int{r.targets[i]}, pauliXMatrix, r.targets[i+1], 1)
	}
}

func (t *GateTranslator) swap(r resolved) {
	if len(r.controls) == 0 {
		t.engine().Swap(r.targets[0], r.targets[1])
		return
	}
	t.engine().CSwap(r.controls, r.targets[0], r.targets[1])
}

/*
phasedSwap is controlled-phase, swap, controlled-phase with the first target
joining the controls of both phase calls. Phasing |1> on the first wire and
|0> on the second before and after the swap puts the phase on both odd
parity states.
*/
func (t *GateTranslator) phasedSwap(r resolved, phase complex128) {
	mcp := append(append([]int(nil), r.controls...), r.targets[0])

	t.withControlValues(r, func() {
		e := t.engine()
		e.MCPhase(mcp, phase, 1, r.targets[1])
		t.swap(r)
		e.MCPhase(mcp, phase, 1, r.targets[1])
	})
}

// withControlValues flips every control wanted at |0> around fn, for primitives with all-true control semantics.
func (t *GateTranslator) withControlValues(r resolved, fn func()) {
	flip := func() {
		for i, c := range r.controls {
			if !r.values[i] {
				t.engine().X(c)
			}
		}
	}

	flip()
	fn()
	flip()
}

// distinctWires rejects an operation that names one register twice.
func distinctWires(groups ...[]int) error {
	seen := make(map[int]bool)
	for _, group := range groups {
		for _, index := range group {
			if seen[index] {
				return invalidArgument("register %d is used more than once in one operation", index)
			}
			seen[index] = true
		}
	}
	return nil
}

// controlPerm sets bit i iff control value i is true.
func controlPerm(values []bool) uint64 {
	var perm uint64
	for i, v := range values {
		if v {
			perm |= pow2(i)
		}
	}
	return perm
}
