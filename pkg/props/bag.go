// Package props implements the property bag protocol used to read and
// edit diagram object state. A Bag is an ordered, loosely typed mapping
// from property name to value; a Schema binds bag keys to typed fields of
// a concrete object and performs all type checking in one place.
package props

import (
	"fmt"
	"iter"

	"cogentcore.org/core/base/ordmap"
)

// Bag is an ordered name -> value mapping. The zero value is not usable;
// construct with NewBag.
type Bag struct {
	m *ordmap.Map[string, any]
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{m: ordmap.New[string, any]()}
}

// BagOf builds a bag from alternating key/value arguments.
// It panics on an odd argument count or a non-string key.
func BagOf(kv ...any) *Bag {
	if len(kv)%2 != 0 {
		panic("props: BagOf requires key/value pairs")
	}
	b := NewBag()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("props: BagOf key %d is %T, not string", i/2, kv[i]))
		}
		b.Set(key, kv[i+1])
	}
	return b
}

// Set stores v under key. An existing key keeps its position.
func (b *Bag) Set(key string, v any) {
	b.m.Add(key, v)
}

// Get returns the value stored under key.
func (b *Bag) Get(key string) (any, bool) {
	return b.m.ValueByKeyTry(key)
}

// Has reports whether every given key is present.
func (b *Bag) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := b.m.Map[k]; !ok {
			return false
		}
	}
	return true
}

// Delete removes key, reporting whether it was present.
func (b *Bag) Delete(key string) bool {
	return b.m.DeleteKey(key)
}

// Keys returns the keys in order.
func (b *Bag) Keys() []string {
	return b.m.Keys()
}

// Len returns the number of entries.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return b.m.Len()
}

// All iterates entries in order.
func (b *Bag) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if b == nil {
			return
		}
		for _, kv := range b.m.Order {
			if !yield(kv.Key, kv.Value) {
				return
			}
		}
	}
}

// Clone returns a shallow copy. Values are copied by assignment; the
// value kinds a Schema stores are all plain values.
func (b *Bag) Clone() *Bag {
	c := NewBag()
	if b != nil {
		c.m.Copy(b.m)
	}
	return c
}

// replace swaps the entry at key for newKey/v in the same position.
// If key is absent, newKey is set normally.
func (b *Bag) replace(key, newKey string, v any) {
	idx, ok := b.m.IndexByKeyTry(key)
	if !ok {
		b.Set(newKey, v)
		return
	}
	b.m.ReplaceIndex(idx, newKey, v)
}

// insertAt places key/v at idx, shifting later entries back.
func (b *Bag) insertAt(idx int, key string, v any) {
	b.m.InsertAtIndex(idx, key, v)
}

// Map returns an unordered copy, suitable for JSON transport.
func (b *Bag) Map() map[string]any {
	out := make(map[string]any, b.Len())
	for k, v := range b.All() {
		out[k] = v
	}
	return out
}

func (b *Bag) String() string {
	return b.m.String()
}
