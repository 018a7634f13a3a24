// Package extension a property bag attached to a request, for state that
// middleware and handlers hang off it.
package extension

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map"
)

// Map an open property map, safe for concurrent use.
// Values are keyed either by name or by their dynamic type.
type Map struct {
	cmap.ConcurrentMap
}

// New an empty map.
func New() *Map {
	return &Map{cmap.New()}
}

// KeyOf the key Put uses for v, its dynamic type name, e.g. `*user.Session`.
func KeyOf(v interface{}) string {
	return fmt.Sprintf("%T", v)
}

// Put stores v under its type, replacing any value of the same type.
func (sf *Map) Put(v interface{}) {
	sf.Set(KeyOf(v), v)
}

// Value looks up the value stored by Put with the same type as sample.
// sample is only used for its type, a typed nil works:
//	v, ok := m.Value((*Session)(nil))
func (sf *Map) Value(sample interface{}) (interface{}, bool) {
	return sf.Get(KeyOf(sample))
}

// Delete removes key.
func (sf *Map) Delete(key string) {
	sf.Remove(key)
}

// Len the number of values.
func (sf *Map) Len() int {
	return sf.Count()
}
