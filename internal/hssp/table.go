package hssp

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"iter"
)

// Table is an ordered associative container. Iteration follows insertion
// order, which for every table in a Document is file order.
type Table[K comparable, V any] struct {
	keys  []K
	vals  []V
	index map[K]int
}

// NewTable returns an empty table with room for n entries.
func NewTable[K comparable, V any](n int) *Table[K, V] {
	return &Table[K, V]{
		keys:  make([]K, 0, n),
		vals:  make([]V, 0, n),
		index: make(map[K]int, n),
	}
}

// Put appends v under k. It returns an error if k is already present.
func (t *Table[K, V]) Put(k K, v V) error {
	if t.index == nil {
		t.index = make(map[K]int)
	}
	if _, ok := t.index[k]; ok {
		return fmt.Errorf("duplicate key %v", k)
	}
	t.index[k] = len(t.keys)
	t.keys = append(t.keys, k)
	t.vals = append(t.vals, v)
	return nil
}

// Get returns the value stored under k.
func (t *Table[K, V]) Get(k K) (V, bool) {
	if t == nil {
		var zero V
		return zero, false
	}
	i, ok := t.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return t.vals[i], true
}

// Has reports whether k is present.
func (t *Table[K, V]) Has(k K) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[k]
	return ok
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// At returns the i'th entry in insertion order.
func (t *Table[K, V]) At(i int) (K, V) {
	return t.keys[i], t.vals[i]
}

// Keys returns a copy of the keys in insertion order.
func (t *Table[K, V]) Keys() []K {
	if t == nil {
		return nil
	}
	return append([]K(nil), t.keys...)
}

// Values returns a copy of the values in insertion order.
func (t *Table[K, V]) Values() []V {
	if t == nil {
		return nil
	}
	return append([]V(nil), t.vals...)
}

// All iterates over the entries in insertion order.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if t == nil {
			return
		}
		for i, k := range t.keys {
			if !yield(k, t.vals[i]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the table as an array of values in order. Every
// record type carries its own key, so nothing is lost.
func (t *Table[K, V]) MarshalJSON() ([]byte, error) {
	if t == nil || t.vals == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.vals)
}

type tableWire[K comparable, V any] struct {
	Keys []K
	Vals []V
}

// GobEncode implements gob.GobEncoder.
func (t *Table[K, V]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(tableWire[K, V]{Keys: t.keys, Vals: t.vals})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (t *Table[K, V]) GobDecode(data []byte) error {
	var w tableWire[K, V]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	if len(w.Keys) != len(w.Vals) {
		return fmt.Errorf("table has %d keys but %d values", len(w.Keys), len(w.Vals))
	}
	*t = *NewTable[K, V](len(w.Keys))
	for i, k := range w.Keys {
		if err := t.Put(k, w.Vals[i]); err != nil {
			return err
		}
	}
	return nil
}
