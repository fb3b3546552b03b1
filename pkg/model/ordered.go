package model

import "slices"

// orderedMap is a map that remembers insertion order. "First node" and
// "first edge" always mean first inserted.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{values: make(map[K]V)}
}

func (m *orderedMap[K, V]) get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

func (m *orderedMap[K, V]) has(k K) bool {
	_, ok := m.values[k]
	return ok
}

// set stores v under k; a new key goes to the end, an existing key keeps its
// place.
func (m *orderedMap[K, V]) set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m *orderedMap[K, V]) delete(k K) bool {
	if _, ok := m.values[k]; !ok {
		return false
	}
	delete(m.values, k)
	if i := slices.Index(m.keys, k); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

func (m *orderedMap[K, V]) len() int {
	return len(m.keys)
}

func (m *orderedMap[K, V]) orderedKeys() []K {
	return slices.Clone(m.keys)
}

func (m *orderedMap[K, V]) orderedValues() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}
