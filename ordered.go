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

import (
	"iter"

	"github.com/pkg/errors"
)

// OrderedMap is a Map that remembers the position of each key. Iteration
// visits keys in that order, which is insertion order unless changed with
// PutAt, Sort, SortByValue or the other positional operations. Lookups cost
// the same as on a Map; removal by key additionally searches the order.
//
// An OrderedMap is NOT goroutine-safe.
type OrderedMap[K comparable, V any] struct {
	m     Map[K, V]
	order orderList[K]

	keysView    *KeysView[K, V]
	valuesView  *ValuesView[K, V]
	entriesView *EntriesView[K, V]
}

// NewOrdered constructs a new OrderedMap able to hold initialCapacity entries
// before it needs to grow. It panics under the same conditions as New.
func NewOrdered[K comparable, V any](initialCapacity int, options ...option[K, V]) *OrderedMap[K, V] {
	om := &OrderedMap[K, V]{}
	om.init(initialCapacity, makeSettings(options))
	return om
}

func (om *OrderedMap[K, V]) init(initialCapacity int, s settings[K, V]) {
	om.m.init(initialCapacity, s)
	om.order = makeOrderList[K](initialCapacity, s.deque)
	om.checkInvariants()
}

// Put inserts an entry, overwriting the value if an entry with the same key
// already exists. A new key is appended to the order; an existing key keeps
// its position. Put returns the previous value, or the default value.
func (om *OrderedMap[K, V]) Put(key K, value V) V {
	old, inserted := om.m.put(key, value)
	if inserted {
		om.order.Append(key)
	}
	om.checkInvariants()
	return old
}

// PutAt puts an entry and places its key at position index, moving the key
// if it was already present. For a new key index may be Len(). PutAt panics
// if index is out of range; the map is unchanged in that case.
func (om *OrderedMap[K, V]) PutAt(key K, value V, index int) V {
	if i := om.indexOf(key); i >= 0 {
		checkIndex(index, om.order.Len())
		old, _ := om.m.put(key, value)
		om.order.Move(i, index)
		om.checkInvariants()
		return old
	}
	checkIndex(index, om.order.Len()+1)
	old, _ := om.m.put(key, value)
	om.order.Insert(index, key)
	om.checkInvariants()
	return old
}

// PutIfAbsent inserts value for key unless key is already present. It
// returns the value now associated with key and whether it was inserted.
func (om *OrderedMap[K, V]) PutIfAbsent(key K, value V) (actual V, inserted bool) {
	if v, ok := om.m.Get(key); ok {
		return v, false
	}
	om.Put(key, value)
	return value, true
}

// PutAll puts every entry of seq, in sequence order.
func (om *OrderedMap[K, V]) PutAll(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		om.Put(k, v)
	}
}

// Get retrieves the value for key, returning ok=false and the default value
// if the key is not present.
func (om *OrderedMap[K, V]) Get(key K) (V, bool) {
	return om.m.Get(key)
}

// GetOrDefault returns the value for key, or def if key is not present.
func (om *OrderedMap[K, V]) GetOrDefault(key K, def V) V {
	return om.m.GetOrDefault(key, def)
}

// Has returns true if key is present.
func (om *OrderedMap[K, V]) Has(key K) bool {
	return om.m.Has(key)
}

// Remove deletes the entry for key and returns its value. If key is absent
// Remove returns the default value and false.
func (om *OrderedMap[K, V]) Remove(key K) (V, bool) {
	stored, v, ok := om.m.remove(key)
	if !ok {
		return om.m.defaultValue, false
	}
	om.order.RemoveAt(om.order.IndexOf(stored))
	om.checkInvariants()
	return v, true
}

// Delete deletes the entry for key. It is a noop to delete a non-existent
// key.
func (om *OrderedMap[K, V]) Delete(key K) {
	om.Remove(key)
}

// RemoveAt removes the entry at position index and returns it. RemoveAt
// panics if index is out of range.
func (om *OrderedMap[K, V]) RemoveAt(index int) (K, V) {
	checkIndex(index, om.order.Len())
	key := om.order.RemoveAt(index)
	_, v, _ := om.m.remove(key)
	om.checkInvariants()
	return key, v
}

// RemoveRange removes the entries at positions [start, end). It panics
// unless 0 <= start <= end <= Len().
func (om *OrderedMap[K, V]) RemoveRange(start, end int) {
	n := om.order.Len()
	if start < 0 || end > n || start > end {
		panic(errors.Wrapf(ErrIndexOutOfRange, "range [%d, %d), length %d", start, end, n))
	}
	for i := start; i < end; i++ {
		om.m.remove(om.order.At(i))
	}
	om.order.RemoveRange(start, end)
	om.checkInvariants()
}

// Truncate removes entries from the end until at most n remain.
func (om *OrderedMap[K, V]) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < om.order.Len() {
		om.RemoveRange(n, om.order.Len())
	}
}

// Alter renames the key before to after, keeping its value and position. It
// returns false, changing nothing, if before is absent or after is already
// present.
func (om *OrderedMap[K, V]) Alter(before, after K) bool {
	if om.m.Has(after) {
		return false
	}
	i := om.indexOf(before)
	if i < 0 {
		return false
	}
	om.rename(i, after)
	return true
}

// AlterAt renames the key at position index to after, keeping its value and
// position. It returns false if after is already present, and panics if
// index is out of range.
func (om *OrderedMap[K, V]) AlterAt(index int, after K) bool {
	checkIndex(index, om.order.Len())
	if om.m.Has(after) {
		return false
	}
	om.rename(index, after)
	return true
}

func (om *OrderedMap[K, V]) rename(index int, after K) {
	_, v, _ := om.m.remove(om.order.At(index))
	om.m.put(after, v)
	om.order.Set(index, after)
	om.checkInvariants()
}

// indexOf returns the position of key under the map's equality, or -1.
func (om *OrderedMap[K, V]) indexOf(key K) int {
	var zero K
	if key == zero {
		if !om.m.hasZeroKey {
			return -1
		}
		return om.order.IndexOf(zero)
	}
	i := om.m.locate(key)
	if i < 0 {
		return -1
	}
	return om.order.IndexOf(om.m.keys[i])
}

// KeyAt returns the key at position index. It panics if index is out of
// range.
func (om *OrderedMap[K, V]) KeyAt(index int) K {
	checkIndex(index, om.order.Len())
	return om.order.At(index)
}

// GetAt returns the value of the entry at position index. It panics if index
// is out of range.
func (om *OrderedMap[K, V]) GetAt(index int) V {
	v, _ := om.m.Get(om.KeyAt(index))
	return v
}

// SetAt replaces the value of the entry at position index and returns the
// previous value. It panics if index is out of range.
func (om *OrderedMap[K, V]) SetAt(index int, value V) V {
	old, _ := om.m.put(om.KeyAt(index), value)
	return old
}

// First returns the first key in order, or ErrEmpty.
func (om *OrderedMap[K, V]) First() (K, error) {
	if om.order.Len() == 0 {
		var zero K
		return zero, ErrEmpty
	}
	return om.order.At(0), nil
}

// Pop removes and returns the last entry in order, or returns ErrEmpty.
func (om *OrderedMap[K, V]) Pop() (K, V, error) {
	n := om.order.Len()
	if n == 0 {
		var zero K
		var zeroV V
		return zero, zeroV, ErrEmpty
	}
	k, v := om.RemoveAt(n - 1)
	return k, v, nil
}

// Sort reorders the keys using cmp. Lookups are unaffected; only the
// iteration order changes. The sort is stable.
func (om *OrderedMap[K, V]) Sort(cmp func(a, b K) int) {
	om.order.SortFunc(cmp)
}

// SortByValue reorders the keys by comparing their values with cmp. The sort
// is stable.
func (om *OrderedMap[K, V]) SortByValue(cmp func(a, b V) int) {
	om.order.SortFunc(func(a, b K) int {
		va, _ := om.m.Get(a)
		vb, _ := om.m.Get(b)
		return cmp(va, vb)
	})
}

// Order returns a live read-only view of the key order.
func (om *OrderedMap[K, V]) Order() OrderView[K] {
	return OrderView[K]{l: &om.order}
}

// All calls yield for each entry in order. If yield returns false, All stops
// the iteration. The map must not be mutated during iteration.
func (om *OrderedMap[K, V]) All(yield func(key K, value V) bool) {
	for i := 0; i < om.order.Len(); i++ {
		k := om.order.At(i)
		v, _ := om.m.Get(k)
		if !yield(k, v) {
			return
		}
	}
}

// Len returns the number of entries.
func (om *OrderedMap[K, V]) Len() int {
	return om.m.Len()
}

// Capacity returns the length of the table's arrays.
func (om *OrderedMap[K, V]) Capacity() int {
	return om.m.Capacity()
}

// Clear removes all entries, retaining the allocated storage.
func (om *OrderedMap[K, V]) Clear() {
	om.m.Clear()
	om.order.Clear()
}

// ClearWithCapacity removes all entries and shrinks the table to the size
// needed for maxCapacity entries if it is larger than that.
func (om *OrderedMap[K, V]) ClearWithCapacity(maxCapacity int) error {
	if err := om.m.ClearWithCapacity(maxCapacity); err != nil {
		return err
	}
	om.order.Clear()
	return nil
}

// EnsureCapacity makes room for additional more entries. See Map.EnsureCapacity.
func (om *OrderedMap[K, V]) EnsureCapacity(additional int) error {
	if err := om.m.EnsureCapacity(additional); err != nil {
		return err
	}
	om.order.Grow(additional)
	return nil
}

// Shrink reduces the size of the table. See Map.Shrink.
func (om *OrderedMap[K, V]) Shrink(maxCapacity int) error {
	return om.m.Shrink(maxCapacity)
}

// LoadFactor returns the load factor of the table.
func (om *OrderedMap[K, V]) LoadFactor() float64 {
	return om.m.LoadFactor()
}

// SetLoadFactor changes the load factor. See Map.SetLoadFactor.
func (om *OrderedMap[K, V]) SetLoadFactor(loadFactor float64) error {
	return om.m.SetLoadFactor(loadFactor)
}

// DefaultValue returns the value returned for absent keys.
func (om *OrderedMap[K, V]) DefaultValue() V {
	return om.m.defaultValue
}

// SetDefaultValue sets the value returned for absent keys.
func (om *OrderedMap[K, V]) SetDefaultValue(v V) {
	om.m.defaultValue = v
}

// ContainsValueFunc returns true if some entry's value is equal to value
// according to eq.
func (om *OrderedMap[K, V]) ContainsValueFunc(value V, eq func(a, b V) bool) bool {
	_, ok := om.FindKey(value, eq)
	return ok
}

// FindKey returns the first key in order whose value is equal to value
// according to eq.
func (om *OrderedMap[K, V]) FindKey(value V, eq func(a, b V) bool) (key K, ok bool) {
	om.All(func(k K, v V) bool {
		if eq(v, value) {
			key, ok = k, true
			return false
		}
		return true
	})
	return key, ok
}

// Clone returns a copy of the map with the same options, entries and order.
func (om *OrderedMap[K, V]) Clone() *OrderedMap[K, V] {
	c := &OrderedMap[K, V]{}
	om.cloneInto(c)
	return c
}

func (om *OrderedMap[K, V]) cloneInto(c *OrderedMap[K, V]) {
	*c = OrderedMap[K, V]{order: om.order.clone()}
	om.m.cloneInto(&c.m)
}

// Close releases the table's memory back to its allocator. See Map.Close.
func (om *OrderedMap[K, V]) Close() {
	om.m.Close()
	om.order.Clear()
}

func (om *OrderedMap[K, V]) checkInvariants() {
	if invariants {
		if err := om.verify(); err != nil {
			panic(err.Error())
		}
	}
}

// verify checks the table and that the order holds exactly its keys.
func (om *OrderedMap[K, V]) verify() error {
	if err := om.m.verify(); err != nil {
		return err
	}
	if om.order.Len() != om.m.Len() {
		return errors.Errorf("order length %d != len %d", om.order.Len(), om.m.Len())
	}
	seen := make(map[K]struct{}, om.order.Len())
	for i := 0; i < om.order.Len(); i++ {
		k := om.order.At(i)
		if _, dup := seen[k]; dup {
			return errors.Errorf("order(%d): %v duplicated", i, k)
		}
		seen[k] = struct{}{}
		if !om.m.Has(k) {
			return errors.Errorf("order(%d): %v not in table", i, k)
		}
	}
	return nil
}
