// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package probe

// Collection is the read-only side of Map and OrderedMap. Ordered and
// unordered collections holding the same entries compare equal and have the
// same hash code.
type Collection[K comparable, V any] interface {
	Len() int
	Get(key K) (V, bool)
	All(yield func(key K, value V) bool)
	HashCodeFunc(valueHash func(V) uint64) uint64
}

// KeySet is the read-only side of Set and OrderedSet.
type KeySet[K comparable] interface {
	Len() int
	Has(key K) bool
	All(yield func(key K) bool)
	HashCode() uint64
}

var (
	_ Collection[int, int] = (*Map[int, int])(nil)
	_ Collection[int, int] = (*OrderedMap[int, int])(nil)
	_ KeySet[int]          = (*Set[int])(nil)
	_ KeySet[int]          = (*OrderedSet[int])(nil)
)

func equalEntries[K comparable, V any](a, b Collection[K, V], eq func(a, b V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.All(func(k K, v V) bool {
		w, ok := b.Get(k)
		equal = ok && eq(v, w)
		return equal
	})
	return equal
}

// sumHashes adds up keyHash(k) ^ valueHash(v) over all entries. Addition is
// commutative, so the result does not depend on iteration order.
func sumHashes[K comparable, V any](
	all func(yield func(K, V) bool), hasher Hasher[K], valueHash func(V) uint64,
) uint64 {
	var sum uint64
	all(func(k K, v V) bool {
		sum += hashCodeOf(hasher, k) ^ valueHash(v)
		return true
	})
	return sum
}

// EqualFunc reports whether m and other hold the same keys, with values
// equal according to eq. Keys are looked up in other using other's Hasher.
func (m *Map[K, V]) EqualFunc(other Collection[K, V], eq func(a, b V) bool) bool {
	return equalEntries[K, V](m, other, eq)
}

// HashCodeFunc returns a hash of the entries of m which does not depend on
// their order. Keys are hashed with the map's Hasher under a process-wide
// seed and values with valueHash.
func (m *Map[K, V]) HashCodeFunc(valueHash func(V) uint64) uint64 {
	return sumHashes(m.All, m.kh.hasher, valueHash)
}

// EqualFunc reports whether om and other hold the same entries. Order is
// not considered. See Map.EqualFunc.
func (om *OrderedMap[K, V]) EqualFunc(other Collection[K, V], eq func(a, b V) bool) bool {
	return equalEntries[K, V](om, other, eq)
}

// HashCodeFunc returns a hash of the entries of om. See Map.HashCodeFunc.
func (om *OrderedMap[K, V]) HashCodeFunc(valueHash func(V) uint64) uint64 {
	return sumHashes(om.All, om.m.kh.hasher, valueHash)
}

// Equal reports whether a and b hold the same entries.
func Equal[K, V comparable](a, b Collection[K, V]) bool {
	return equalEntries(a, b, func(x, y V) bool { return x == y })
}

// HashCode returns the hash code of c, hashing values the way the runtime
// does.
func HashCode[K, V comparable](c Collection[K, V]) uint64 {
	return c.HashCodeFunc(hashComparable[V])
}

// ContainsValue reports whether some entry of c has the value v.
func ContainsValue[K, V comparable](c Collection[K, V], v V) bool {
	found := false
	c.All(func(_ K, w V) bool {
		found = w == v
		return !found
	})
	return found
}

func equalKeys[K comparable](a, b KeySet[K]) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.All(func(k K) bool {
		equal = b.Has(k)
		return equal
	})
	return equal
}

func sumKeyHashes[K comparable](all func(yield func(K) bool), hasher Hasher[K]) uint64 {
	var sum uint64
	all(func(k K) bool {
		sum += hashCodeOf(hasher, k)
		return true
	})
	return sum
}
