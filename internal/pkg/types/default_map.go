package types

// DefaultMap is a map that lazily initializes missing entries with a
// user-provided constructor, so callers never check for key existence.
//
//	locks := NewDefaultMap[string](func() *sync.Mutex { return new(sync.Mutex) })
//	locks.Get("wallet").Lock()
//
// DefaultMap is not safe for concurrent use; guard it externally.
type DefaultMap[K comparable, V any] struct {
	data        map[K]V
	defaultFunc func() V
}

// NewDefaultMap creates an empty DefaultMap over the given constructor.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get returns the value for key, constructing and storing a default first
// when the key is absent.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.data[key] = val
	return val
}

// Set assigns a value to the key, bypassing the constructor.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// Len returns the number of initialized entries.
func (d *DefaultMap[K, V]) Len() int {
	return len(d.data)
}
