package dict

import (
	"maps"
	"slices"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// Dictionary is a mapping from unique string keys to [Value]s.
//
// The zero value is an empty, ready-to-use Dictionary. A Dictionary owns its
// backing store; the only way two Dictionaries touch the same store is an
// explicit transfer (Set, Update, Take, Swap, DictValue), after which the
// source no longer sees it.
type Dictionary struct {
	data map[string]Value
}

// New builds a Dictionary from alternating key/value arguments:
//
//	d := dict.New("x", []int{1, 2, 3}, "mode", "markers", "marker", dict.New("size", 10))
//
// Values are converted with [ValueOf]; *Dictionary values are consumed.
// When a key repeats, the later pair wins. New panics on an odd argument
// count, a non-string key or an unsupported value type; use [Build] to get
// an error instead.
func New(kv ...any) *Dictionary {
	d, err := Build(kv...)
	if err != nil {
		panic(err)
	}
	return d
}

// Build is like [New] but returns an error instead of panicking.
func Build(kv ...any) (*Dictionary, error) {
	if len(kv)%2 != 0 {
		return nil, perr.New(perr.ErrCodeInvalidInput, "dict: odd number of key/value arguments (%d)", len(kv))
	}
	d := &Dictionary{}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, perr.New(perr.ErrCodeInvalidInput, "dict: argument %d: key must be a string, got %T", i, kv[i])
		}
		v, err := ValueOf(kv[i+1])
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeUnsupportedType, err, "dict: key %q", key)
		}
		d.put(key, v)
	}
	return d, nil
}

// Len returns the number of keys.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.data)
}

// Add inserts or overwrites key. v is converted with [ValueOf]; a
// *Dictionary is consumed and left empty. Add panics if v has no wire
// representation; use [Dictionary.TryAdd] to get an error instead.
//
// Add only touches the top level. Use [Dictionary.At] for nested paths.
func (d *Dictionary) Add(key string, v any) {
	if err := d.TryAdd(key, v); err != nil {
		panic(err)
	}
}

// TryAdd is like [Dictionary.Add] but returns an error for unsupported types.
func (d *Dictionary) TryAdd(key string, v any) error {
	val, err := ValueOf(v)
	if err != nil {
		return perr.Wrap(perr.ErrCodeUnsupportedType, err, "dict: key %q", key)
	}
	d.put(key, val)
	return nil
}

// Get returns the Value stored under key.
func (d *Dictionary) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	v, ok := d.data[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (d *Dictionary) Delete(key string) {
	delete(d.data, key)
}

// Keys returns the keys in ascending order.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(d.data))
}

// Range calls fn for each entry in ascending key order until fn returns false.
func (d *Dictionary) Range(fn func(key string, v Value) bool) {
	for _, k := range d.Keys() {
		if !fn(k, d.data[k]) {
			return
		}
	}
}

// Set replaces the contents of d with those of other and leaves other empty.
// A nil other clears d.
func (d *Dictionary) Set(other *Dictionary) {
	if other == d {
		return
	}
	if other == nil {
		d.data = nil
		return
	}
	d.data, other.data = other.data, nil
}

// Update merges other into d key by key, overwriting on conflict, and leaves
// other empty. It behaves like Python's dict.update followed by clear.
func (d *Dictionary) Update(other *Dictionary) {
	if other == nil || other == d {
		return
	}
	for k, v := range other.data {
		d.put(k, v)
	}
	other.data = nil
}

// Take moves the backing store of d into a new Dictionary and returns it,
// leaving d empty. It is the move-construct of the container.
func (d *Dictionary) Take() *Dictionary {
	if d == nil {
		return &Dictionary{}
	}
	out := &Dictionary{data: d.data}
	d.data = nil
	return out
}

// Swap exchanges the contents of d and other.
func (d *Dictionary) Swap(other *Dictionary) {
	d.data, other.data = other.data, d.data
}

// Clone returns a fully independent deep copy of d. Nested dictionaries are
// cloned, never shared.
func (d *Dictionary) Clone() *Dictionary {
	out := &Dictionary{}
	if d == nil || len(d.data) == 0 {
		return out
	}
	out.data = make(map[string]Value, len(d.data))
	for k, v := range d.data {
		out.data[k] = v.clone()
	}
	return out
}

// Reset removes every key.
func (d *Dictionary) Reset() {
	d.data = nil
}

// Equal reports whether d and other hold the same keys with equal Values.
// A nil Dictionary equals an empty one.
func (d *Dictionary) Equal(other *Dictionary) bool {
	if d.Len() != other.Len() {
		return false
	}
	if d.Len() == 0 {
		return true
	}
	for k, v := range d.data {
		w, ok := other.data[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

func (d *Dictionary) put(key string, v Value) {
	if d.data == nil {
		d.data = make(map[string]Value)
	}
	d.data[key] = v
}
