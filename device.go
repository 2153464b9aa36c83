package qdevice

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/theapemachine/errnie"
)

/*
Device is the instruction surface a host runtime drives. It owns one engine
together with the qubit registry and observable cache derived from it, and
routes every instruction through the component responsible for it.

A Device is not safe for concurrent use. The host serializes calls; parallel
shots go through a ShotPool, which gives every shot its own Device.
*/
type Device struct {
	ID string

	cfg        Config
	factory    EngineFactory
	registerer prometheus.Registerer
	shots      int

	metrics     *Metrics
	registry    *QubitRegistry
	translator  *GateTranslator
	observables *ObservableCache
	sampler     *SamplingEngine
	state       *StateAccessor
	tape        *Tape
}

// Option configures a Device at construction.
type Option func(*Device)

// WithEngineFactory replaces the default QuantumState engine.
func WithEngineFactory(factory EngineFactory) Option {
	return func(d *Device) {
		d.factory = factory
	}
}

// WithMetrics shares an existing Metrics, as a ShotPool does for its devices.
func WithMetrics(metrics *Metrics) Option {
	return func(d *Device) {
		d.metrics = metrics
	}
}

// WithRegisterer registers the device metrics with reg during NewDevice.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Device) {
		d.registerer = reg
	}
}

/*
NewDevice validates cfg once and builds the engine through the configured
factory. The configuration is otherwise opaque here: engine-selection flags
pass straight to the factory.
*/
func NewDevice(cfg Config, opts ...Option) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Device{
		ID:      uuid.NewString(),
		cfg:     cfg,
		factory: NewQuantumStateEngine,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.metrics == nil {
		d.metrics = NewMetrics()
	}
	if d.registerer != nil {
		if err := d.metrics.Register(d.registerer); err != nil {
			return nil, errors.Wrap(err, "registering device metrics")
		}
	}

	engine, err := d.newEngine()
	if err != nil {
		return nil, err
	}

	d.registry = NewQubitRegistry(engine, cfg.Wires)
	d.translator = NewGateTranslator(d.registry, d.metrics)
	d.observables = NewObservableCache(d.registry)
	d.sampler = NewSamplingEngine(d.registry, cfg.Noise, d.metrics)
	d.state = NewStateAccessor(d.registry)

	if err := d.SetDeviceShots(cfg.Shots); err != nil {
		return nil, err
	}

	errnie.Info("device %s ready: %s", d.ID, spew.Sprintf("%+v", cfg))
	return d, nil
}

func (d *Device) newEngine() (Engine, error) {
	engine, err := d.factory(d.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "building engine")
	}
	if d.cfg.Noise > 0 {
		engine.SetNoiseParameter(d.cfg.Noise)
	}
	return engine, nil
}

// Config returns the construction record.
func (d *Device) Config() Config {
	return d.cfg
}

func (d *Device) Metrics() *Metrics {
	return d.metrics
}

func (d *Device) NumQubits() int {
	return d.registry.Len()
}

func (d *Device) AllocateQubit() (QubitID, error) {
	id, err := d.registry.Allocate()
	if err != nil {
		return 0, err
	}

	d.metrics.qubitsAllocated(1)
	if d.tape != nil {
		d.tape.addQubits(id)
	}

	return id, nil
}

func (d *Device) AllocateQubits(n int) ([]QubitID, error) {
	ids, err := d.registry.AllocateMany(n)

	d.metrics.qubitsAllocated(len(ids))
	if d.tape != nil {
		d.tape.addQubits(ids...)
	}

	return ids, err
}

func (d *Device) ReleaseQubit(id QubitID) error {
	if err := d.registry.Release(id); err != nil {
		return err
	}

	d.metrics.qubitReleased()
	if d.tape != nil {
		d.tape.record(Instruction{Kind: InstructionRelease, Release: id})
	}

	return nil
}

/*
ReleaseAllQubits replaces the engine wholesale. Every qubit ID, observable
handle and recording tape issued before the call is invalid afterwards, and
stays invalid: neither IDs nor handles are reissued.
*/
func (d *Device) ReleaseAllQubits() error {
	engine, err := d.newEngine()
	if err != nil {
		return err
	}

	d.registry.Reset(engine)
	d.observables.Reset()
	d.tape = nil
	d.metrics.reset()

	errnie.Info("device %s reset", d.ID)
	return nil
}

// NamedOperation applies a gate from the fixed vocabulary by name.
func (d *Device) NamedOperation(
	name string, params []float64, wires []QubitID, inverse bool,
	controlWires []QubitID, controlValues []bool,
) error {
	gate, err := ParseGate(name)
	if err != nil {
		return err
	}

	return d.Apply(GateInstruction{
		Gate:          gate,
		Params:        params,
		Wires:         wires,
		Inverse:       inverse,
		ControlWires:  controlWires,
		ControlValues: controlValues,
	})
}

func (d *Device) Apply(in GateInstruction) error {
	if err := d.translator.Apply(in); err != nil {
		return err
	}
	if d.tape != nil {
		d.tape.record(Instruction{Kind: InstructionNamed, Gate: cloneGate(in)})
	}
	return nil
}

// MatrixOperation applies a row-major 2x2 unitary given as four entries.
func (d *Device) MatrixOperation(
	matrix []complex128, wires []QubitID, inverse bool,
	controlWires []QubitID, controlValues []bool,
) error {
	if len(matrix) != 4 {
		return invalidArgument("unitary must have 4 entries, got %d", len(matrix))
	}

	var m Matrix2
	copy(m[:], matrix)

	return d.ApplyMatrix(MatrixInstruction{
		Matrix:        m,
		Wires:         wires,
		Inverse:       inverse,
		ControlWires:  controlWires,
		ControlValues: controlValues,
	})
}

func (d *Device) ApplyMatrix(in MatrixInstruction) error {
	if err := d.translator.ApplyMatrix(in); err != nil {
		return err
	}
	if d.tape != nil {
		d.tape.record(Instruction{Kind: InstructionMatrix, Matrix: cloneMatrix(in)})
	}
	return nil
}

func (d *Device) Observable(basis Pauli, wires []QubitID) (ObsHandle, error) {
	return d.observables.Define(basis, wires)
}

func (d *Device) TensorObservable(handles []ObsHandle) (ObsHandle, error) {
	return d.observables.Tensor(handles)
}

// HamiltonianObservable always returns NoObservable; callers must check for it.
func (d *Device) HamiltonianObservable(coeffs []float64, handles []ObsHandle) ObsHandle {
	return d.observables.Hamiltonian(coeffs, handles)
}

func (d *Device) Expval(h ObsHandle) (float64, error) {
	return d.observables.Expval(h)
}

func (d *Device) Var(h ObsHandle) (float64, error) {
	return d.observables.Var(h)
}

/*
Measure collapses one qubit. With a postselect value the outcome is forced;
if that outcome has zero probability the state is untouched and the actual
value is returned.
*/
func (d *Device) Measure(id QubitID, postselect *bool) (bool, error) {
	bits, err := d.registry.Resolve([]QubitID{id})
	if err != nil {
		return false, err
	}

	var result bool
	if postselect != nil {
		result = d.registry.engine.ForceM(bits[0], *postselect)
	} else {
		result = d.registry.engine.M(bits[0])
	}

	if d.tape != nil {
		m := Measurement{Wire: id}
		if postselect != nil {
			value := *postselect
			m.Postselect = &value
		}
		d.tape.record(Instruction{Kind: InstructionMeasure, Measure: m})
	}

	return result, nil
}

// SetBasisState measures each wire and flips the ones that disagree with bits.
func (d *Device) SetBasisState(bits []bool, wires []QubitID) error {
	if len(bits) != len(wires) {
		return invalidArgument(
			"basis state has %d bits for %d wires", len(bits), len(wires),
		)
	}

	indices, err := d.registry.Resolve(wires)
	if err != nil {
		return err
	}

	e := d.registry.engine
	for i, index := range indices {
		if e.M(index) != bits[i] {
			e.X(index)
		}
	}

	if d.tape != nil {
		d.tape.record(Instruction{
			Kind: InstructionBasisState,
			Basis: BasisState{
				Bits:  append([]bool(nil), bits...),
				Wires: append([]QubitID(nil), wires...),
			},
		})
	}

	return nil
}

func (d *Device) State(out []complex128) error {
	return d.state.GetState(out)
}

func (d *Device) Probs(out []float64) error {
	return d.state.GetProbs(out)
}

func (d *Device) PartialProbs(out []float64, wires []QubitID) error {
	return d.state.GetPartialProbs(out, wires)
}

// Sample fills out row-major with shots rows over every live qubit.
func (d *Device) Sample(out []float64, shots int) error {
	return d.PartialSample(out, d.registry.Wires(), shots)
}

// PartialSample fills out row-major with shots rows of len(wires) 0/1 values.
func (d *Device) PartialSample(out []float64, wires []QubitID, shots int) error {
	if shots < 1 {
		return invalidArgument("shots must be positive, got %d", shots)
	}
	if len(out) != shots*len(wires) {
		return invalidArgument(
			"invalid size for the pre-allocated samples buffer: %d, want %d", len(out), shots*len(wires),
		)
	}

	h, err := d.sampler.Sample(wires, shots)
	if err != nil {
		return err
	}

	for shot, row := range ExpandSamples(h, len(wires)) {
		for wire, bit := range row {
			out[shot*len(wires)+wire] = float64(bit)
		}
	}

	return nil
}

// Counts fills eigvals with the basis-state integers and counts with their multiplicities.
func (d *Device) Counts(eigvals []float64, counts []int64, shots int) error {
	return d.PartialCounts(eigvals, counts, d.registry.Wires(), shots)
}

func (d *Device) PartialCounts(eigvals []float64, counts []int64, wires []QubitID, shots int) error {
	size := 1 << uint(len(wires))
	if len(eigvals) != size || len(counts) != size {
		return invalidArgument(
			"invalid size for the pre-allocated counts buffers: %d eigvals, %d counts, want %d",
			len(eigvals), len(counts), size,
		)
	}

	h, err := d.sampler.Sample(wires, shots)
	if err != nil {
		return err
	}

	for i := range eigvals {
		eigvals[i] = float64(i)
	}
	copy(counts, ToCounts(h, len(wires)))

	return nil
}

// SetDeviceShots rejects multi-shot execution on a noisy device.
func (d *Device) SetDeviceShots(n int) error {
	if n < 1 {
		return invalidArgument("device shots must be positive, got %d", n)
	}
	if n > 1 && d.cfg.Noise > 0 {
		return domainError(
			"shots > 1 can't be simulated with noise (%g); use a ShotPool instead", d.cfg.Noise,
		)
	}
	d.shots = n
	return nil
}

func (d *Device) GetDeviceShots() int {
	return d.shots
}

/*
StartTapeRecording begins recording every accepted operation over the qubits
live now and those allocated while recording. A tape already in progress is
discarded.
*/
func (d *Device) StartTapeRecording() {
	d.tape = NewTape(d.registry.Wires())
}

// StopTapeRecording ends recording and returns the tape, or nil when none was running.
func (d *Device) StopTapeRecording() *Tape {
	tape := d.tape
	d.tape = nil
	return tape
}

func (d *Device) Recording() bool {
	return d.tape != nil
}

func cloneGate(in GateInstruction) GateInstruction {
	in.Params = append([]float64(nil), in.Params...)
	in.Wires = append([]QubitID(nil), in.Wires...)
	in.ControlWires = append([]QubitID(nil), in.ControlWires...)
	in.ControlValues = append([]bool(nil), in.ControlValues...)
	return in
}

func cloneMatrix(in MatrixInstruction) MatrixInstruction {
	in.Wires = append([]QubitID(nil), in.Wires...)
	in.ControlWires = append([]QubitID(nil), in.ControlWires...)
	in.ControlValues = append([]bool(nil), in.ControlValues...)
	return in
}
