package qdevice

// ObsHandle references an observable held by an ObservableCache.
type ObsHandle int

// NoObservable is returned where an observable cannot be built. It is a value, not an error.
const NoObservable ObsHandle = -1

// Observable is an ordered Pauli tensor product over logical wires.
type Observable struct {
	Paulis []Pauli
	Wires  []QubitID
}

/*
ObservableCache is an append-only store of Pauli tensor products. A handle
is base plus an index into the store. Reset moves base past every handle
issued so far, so handles from before a reset never resolve again.
Wires are kept logical and resolved when an expectation is taken, so
releases in between never leave a cached observable pointing at a shifted
register.
*/
type ObservableCache struct {
	registry    *QubitRegistry
	base        ObsHandle
	observables []Observable
}

func NewObservableCache(registry *QubitRegistry) *ObservableCache {
	return &ObservableCache{registry: registry}
}

// Define stores basis on the single given wire.
func (cache *ObservableCache) Define(basis Pauli, wires []QubitID) (ObsHandle, error) {
	if len(wires) != 1 {
		return NoObservable, invalidArgument(
			"cannot have observables besides tensor products of Pauli observables (got %d wires)", len(wires),
		)
	}
	if !basis.valid() {
		return NoObservable, invalidArgument("unknown Pauli basis %d", int(basis))
	}
	if _, err := cache.registry.Resolve(wires); err != nil {
		return NoObservable, err
	}

	obs := Observable{
		Paulis: make([]Pauli, len(wires)),
		Wires:  append([]QubitID(nil), wires...),
	}
	for i := range obs.Paulis {
		obs.Paulis[i] = basis
	}

	return cache.push(obs), nil
}

/*
Tensor concatenates the factors in argument order. Factors landing on a wire
already present are multiplied into it, so every wire appears once; an
anticommuting pair on one wire is not an observable and is rejected. An
empty factor list yields NoObservable.
*/
func (cache *ObservableCache) Tensor(handles []ObsHandle) (ObsHandle, error) {
	if len(handles) == 0 {
		return NoObservable, nil
	}

	var obs Observable
	position := make(map[QubitID]int)

	for _, h := range handles {
		factor, err := cache.Get(h)
		if err != nil {
			return NoObservable, err
		}

		for i, w := range factor.Wires {
			p := factor.Paulis[i]

			k, seen := position[w]
			if !seen {
				position[w] = len(obs.Wires)
				obs.Wires = append(obs.Wires, w)
				obs.Paulis = append(obs.Paulis, p)
				continue
			}

			merged, ok := multiplyPaulis(obs.Paulis[k], p)
			if !ok {
				return NoObservable, invalidArgument(
					"factors %s and %s on qubit %d do not commute", obs.Paulis[k], p, w,
				)
			}
			obs.Paulis[k] = merged
		}
	}

	return cache.push(obs), nil
}

// Hamiltonian is unsupported: weighted sums always yield NoObservable.
func (cache *ObservableCache) Hamiltonian(coeffs []float64, handles []ObsHandle) ObsHandle {
	return NoObservable
}

func (cache *ObservableCache) Get(h ObsHandle) (Observable, error) {
	index := int(h - cache.base)
	if h < cache.base || index >= len(cache.observables) {
		return Observable{}, invalidArgument("observable ID not in device cache: %d", h)
	}
	return cache.observables[index], nil
}

func (cache *ObservableCache) Expval(h ObsHandle) (float64, error) {
	obs, bits, err := cache.lookup(h)
	if err != nil {
		return 0, err
	}
	return cache.registry.engine.ExpectationPauliAll(bits, obs.Paulis), nil
}

func (cache *ObservableCache) Var(h ObsHandle) (float64, error) {
	obs, bits, err := cache.lookup(h)
	if err != nil {
		return 0, err
	}
	return cache.registry.engine.VariancePauliAll(bits, obs.Paulis), nil
}

// Reset drops every observable; handles issued earlier become invalid.
func (cache *ObservableCache) Reset() {
	cache.base += ObsHandle(len(cache.observables))
	cache.observables = nil
}

func (cache *ObservableCache) Len() int {
	return len(cache.observables)
}

func (cache *ObservableCache) lookup(h ObsHandle) (Observable, []int, error) {
	obs, err := cache.Get(h)
	if err != nil {
		return Observable{}, nil, err
	}

	bits, err := cache.registry.Resolve(obs.Wires)
	if err != nil {
		return Observable{}, nil, err
	}

	return obs, bits, nil
}

func (cache *ObservableCache) push(obs Observable) ObsHandle {
	cache.observables = append(cache.observables, obs)
	return cache.base + ObsHandle(len(cache.observables)-1)
}
