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

import "iter"

// Set is an unordered set of keys backed by the same table as Map, with
// empty values. Options are those of a Map[K, struct{}].
//
// A Set is NOT goroutine-safe.
type Set[K comparable] struct {
	m Map[K, struct{}]
}

// NewSet constructs a new Set able to hold initialCapacity keys before it
// needs to grow. It panics under the same conditions as New.
func NewSet[K comparable](initialCapacity int, options ...option[K, struct{}]) *Set[K] {
	s := &Set[K]{}
	s.m.init(initialCapacity, makeSettings(options))
	return s
}

// Add adds key to the set. It returns false if key was already present.
func (s *Set[K]) Add(key K) bool {
	_, inserted := s.m.put(key, struct{}{})
	return inserted
}

// AddAll adds every key of seq.
func (s *Set[K]) AddAll(seq iter.Seq[K]) {
	for k := range seq {
		s.m.put(k, struct{}{})
	}
}

// Has returns true if key is in the set.
func (s *Set[K]) Has(key K) bool {
	return s.m.Has(key)
}

// Remove removes key from the set. It returns false if key was absent.
func (s *Set[K]) Remove(key K) bool {
	_, _, ok := s.m.remove(key)
	return ok
}

// First returns some key of the set, the first in iteration order, or
// ErrEmpty.
func (s *Set[K]) First() (K, error) {
	var first K
	if s.m.Len() == 0 {
		return first, ErrEmpty
	}
	s.All(func(k K) bool {
		first = k
		return false
	})
	return first, nil
}

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int { return s.m.Len() }

// Capacity returns the length of the table's arrays.
func (s *Set[K]) Capacity() int { return s.m.Capacity() }

// Clear removes all keys, retaining the allocated storage.
func (s *Set[K]) Clear() { s.m.Clear() }

// ClearWithCapacity removes all keys. See Map.ClearWithCapacity.
func (s *Set[K]) ClearWithCapacity(maxCapacity int) error {
	return s.m.ClearWithCapacity(maxCapacity)
}

// EnsureCapacity makes room for additional more keys. See Map.EnsureCapacity.
func (s *Set[K]) EnsureCapacity(additional int) error {
	return s.m.EnsureCapacity(additional)
}

// Shrink reduces the size of the table. See Map.Shrink.
func (s *Set[K]) Shrink(maxCapacity int) error {
	return s.m.Shrink(maxCapacity)
}

// LoadFactor returns the load factor of the table.
func (s *Set[K]) LoadFactor() float64 { return s.m.LoadFactor() }

// SetLoadFactor changes the load factor. See Map.SetLoadFactor.
func (s *Set[K]) SetLoadFactor(loadFactor float64) error {
	return s.m.SetLoadFactor(loadFactor)
}

// Iterator returns an iterator over the keys. The set's two pooled cursors
// are shared by all its iterators; see Iterator.
func (s *Set[K]) Iterator() Iterator[K, struct{}] {
	return s.m.Keys().Iterator()
}

// All calls yield for each key. If yield returns false, All stops the
// iteration.
func (s *Set[K]) All(yield func(key K) bool) {
	s.m.All(func(k K, _ struct{}) bool {
		return yield(k)
	})
}

// ToSlice returns the keys in iteration order.
func (s *Set[K]) ToSlice() []K {
	return s.m.Keys().ToSlice()
}

// Equal reports whether s and other hold the same keys.
func (s *Set[K]) Equal(other KeySet[K]) bool {
	return equalKeys[K](s, other)
}

// HashCode returns the sum of the hashes of the keys.
func (s *Set[K]) HashCode() uint64 {
	return sumKeyHashes(s.All, s.m.kh.hasher)
}

// Clone returns a copy of the set.
func (s *Set[K]) Clone() *Set[K] {
	c := &Set[K]{}
	s.m.cloneInto(&c.m)
	return c
}

// Close releases the table's memory. See Map.Close.
func (s *Set[K]) Close() { s.m.Close() }

// OrderedSet is a Set that remembers the position of each key. Iteration
// visits keys in that order, which is insertion order unless changed by a
// positional operation.
//
// An OrderedSet is NOT goroutine-safe.
type OrderedSet[K comparable] struct {
	om OrderedMap[K, struct{}]
}

// NewOrderedSet constructs a new OrderedSet able to hold initialCapacity keys
// before it needs to grow. It panics under the same conditions as New.
func NewOrderedSet[K comparable](initialCapacity int, options ...option[K, struct{}]) *OrderedSet[K] {
	s := &OrderedSet[K]{}
	s.om.init(initialCapacity, makeSettings(options))
	return s
}

// Add appends key to the set. It returns false, leaving the position of key
// unchanged, if key was already present.
func (s *OrderedSet[K]) Add(key K) bool {
	_, inserted := s.om.m.put(key, struct{}{})
	if inserted {
		s.om.order.Append(key)
		s.om.checkInvariants()
	}
	return inserted
}

// AddAt places key at position index, moving it if it was already present.
// It returns true if key was newly added. For a new key index may be Len().
// AddAt panics if index is out of range.
func (s *OrderedSet[K]) AddAt(key K, index int) bool {
	had := s.om.Has(key)
	s.om.PutAt(key, struct{}{}, index)
	return !had
}

// AddAll appends every key of seq.
func (s *OrderedSet[K]) AddAll(seq iter.Seq[K]) {
	for k := range seq {
		s.Add(k)
	}
}

// Has returns true if key is in the set.
func (s *OrderedSet[K]) Has(key K) bool { return s.om.Has(key) }

// Remove removes key from the set. It returns false if key was absent.
func (s *OrderedSet[K]) Remove(key K) bool {
	_, ok := s.om.Remove(key)
	return ok
}

// RemoveAt removes and returns the key at position index. It panics if
// index is out of range.
func (s *OrderedSet[K]) RemoveAt(index int) K {
	k, _ := s.om.RemoveAt(index)
	return k
}

// RemoveRange removes the keys at positions [start, end).
func (s *OrderedSet[K]) RemoveRange(start, end int) { s.om.RemoveRange(start, end) }

// Truncate removes keys from the end until at most n remain.
func (s *OrderedSet[K]) Truncate(n int) { s.om.Truncate(n) }

// Alter replaces before with after at the same position. It returns false
// if before is absent or after is already present.
func (s *OrderedSet[K]) Alter(before, after K) bool { return s.om.Alter(before, after) }

// AlterAt replaces the key at position index with after. It returns false if
// after is already present, and panics if index is out of range.
func (s *OrderedSet[K]) AlterAt(index int, after K) bool { return s.om.AlterAt(index, after) }

// At returns the key at position index. It panics if index is out of range.
func (s *OrderedSet[K]) At(index int) K { return s.om.KeyAt(index) }

// Sort reorders the keys using cmp. The sort is stable.
func (s *OrderedSet[K]) Sort(cmp func(a, b K) int) { s.om.Sort(cmp) }

// Order returns a live read-only view of the key order.
func (s *OrderedSet[K]) Order() OrderView[K] { return s.om.Order() }

// First returns the first key, or ErrEmpty.
func (s *OrderedSet[K]) First() (K, error) { return s.om.First() }

// Pop removes and returns the last key, or returns ErrEmpty.
func (s *OrderedSet[K]) Pop() (K, error) {
	k, _, err := s.om.Pop()
	return k, err
}

// Len returns the number of keys in the set.
func (s *OrderedSet[K]) Len() int { return s.om.Len() }

// Capacity returns the length of the table's arrays.
func (s *OrderedSet[K]) Capacity() int { return s.om.Capacity() }

// Clear removes all keys, retaining the allocated storage.
func (s *OrderedSet[K]) Clear() { s.om.Clear() }

// ClearWithCapacity removes all keys. See Map.ClearWithCapacity.
func (s *OrderedSet[K]) ClearWithCapacity(maxCapacity int) error {
	return s.om.ClearWithCapacity(maxCapacity)
}

// EnsureCapacity makes room for additional more keys.
func (s *OrderedSet[K]) EnsureCapacity(additional int) error {
	return s.om.EnsureCapacity(additional)
}

// Shrink reduces the size of the table. See Map.Shrink.
func (s *OrderedSet[K]) Shrink(maxCapacity int) error { return s.om.Shrink(maxCapacity) }

// LoadFactor returns the load factor of the table.
func (s *OrderedSet[K]) LoadFactor() float64 { return s.om.LoadFactor() }

// SetLoadFactor changes the load factor. See Map.SetLoadFactor.
func (s *OrderedSet[K]) SetLoadFactor(loadFactor float64) error {
	return s.om.SetLoadFactor(loadFactor)
}

// Iterator returns an iterator over the keys in order.
func (s *OrderedSet[K]) Iterator() Iterator[K, struct{}] {
	return s.om.Keys().Iterator()
}

// All calls yield for each key in order.
func (s *OrderedSet[K]) All(yield func(key K) bool) {
	s.om.All(func(k K, _ struct{}) bool {
		return yield(k)
	})
}

// ToSlice returns the keys in order.
func (s *OrderedSet[K]) ToSlice() []K { return s.om.order.Slice() }

// Equal reports whether s and other hold the same keys. Order is not
// considered.
func (s *OrderedSet[K]) Equal(other KeySet[K]) bool {
	return equalKeys[K](s, other)
}

// HashCode returns the sum of the hashes of the keys.
func (s *OrderedSet[K]) HashCode() uint64 {
	return sumKeyHashes(s.All, s.om.m.kh.hasher)
}

// Clone returns a copy of the set.
func (s *OrderedSet[K]) Clone() *OrderedSet[K] {
	c := &OrderedSet[K]{}
	s.om.cloneInto(&c.om)
	return c
}

// Close releases the table's memory. See Map.Close.
func (s *OrderedSet[K]) Close() { s.om.Close() }
