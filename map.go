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

// Package probe provides open-addressing hash maps and sets, and ordered
// variants of both that remember the position of every key.
//
// # Tables
//
// A table is a pair of parallel arrays, keys and values, whose length (the
// capacity) is always a power of two. Collisions are resolved with linear
// probing: the search for a key starts at place(key) and steps forward one
// slot at a time, wrapping at the end of the array, until it finds the key or
// an empty slot. place multiplies the 64-bit hash of the key by an odd
// multiplier and keeps the top log2(capacity) bits of the product. The
// multiplier changes on every resize so that a set of keys crafted to collide
// under one multiplier does not keep colliding after the table grows.
//
// The zero value of the key type marks an empty slot. A live zero key is
// kept outside of the arrays, in its own slot on the Map.
//
// The table grows by doubling as soon as the number of entries reaches
// capacity*loadFactor, so there is always at least one empty slot and every
// probe sequence terminates.
//
// # Deletion
//
// Deletion does not leave tombstones. When the entry in slot i is removed,
// the slots following i are scanned until an empty slot is reached. Each
// entry found along the way whose probe sequence passes through the gap is
// moved into the gap, which then moves to the slot the entry vacated. An
// entry whose home lies strictly between the gap and its own slot is left in
// place. When the scan stops the gap is marked empty. Afterwards every key is
// again reachable from place(key) without crossing an empty slot.
//
// See https://en.wikipedia.org/wiki/Linear_probing#Deletion.
//
// # Ordered collections
//
// OrderedMap and OrderedSet wrap a table and keep a list of the keys in
// iteration order next to it. Insertions append to the list and deletions
// remove from it. Positional operations (PutAt, AlterAt, RemoveAt, Sort, ...)
// change the list without touching the table.
//
// # Iteration
//
// Every view (Keys, Values, Entries) owns two cursors which are handed out
// in turn by Iterator, so iterating does not allocate. Two iterators of the
// same view can be live at once; acquiring a third recycles the oldest, and
// using the recycled iterator afterwards panics with ErrIteratorReused. The
// All methods are plain range-over-func iterators and have no such limit.
//
// None of the collections are goroutine-safe.
package probe

import (
	"fmt"
	"hash/maphash"
	"iter"
	"math/bits"
	"strings"

	"go.uber.org/zap"
)

// Map is an unordered map from keys to values backed by an open-addressing
// table with linear probing and backward-shift deletion. By default a
// Map[K,V] hashes keys the way Go's builtin map does; a different policy can
// be specified using the WithHasher option.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	kh        keyHasher[K]
	allocator Allocator[K, V]
	logger    *zap.Logger
	// keys and values are capacity in length. A slot is empty iff its key is
	// the zero value of K.
	keys   []K
	values []V
	// The zero key cannot be stored in keys, so it lives here.
	hasZeroKey bool
	zeroValue  V
	// The number of entries, including the zero key.
	used int
	// capacity-1. Used to compute i%capacity with a bitwise &.
	mask int
	// 64-log2(capacity). place keeps the top bits of hash*multiplier.
	shift      uint
	multiplier uint64
	loadFactor float64
	// The number of entries at which the table grows.
	threshold    int
	defaultValue V

	freshIterators bool
	keysView       *KeysView[K, V]
	valuesView     *ValuesView[K, V]
	entriesView    *EntriesView[K, V]
}

// New constructs a new Map able to hold initialCapacity entries before it
// needs to grow. New panics if initialCapacity is negative or if the load
// factor given with WithLoadFactor is not in (0, 1]. The zero value for a Map
// is not usable.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	m.init(initialCapacity, makeSettings(options))
	return m
}

func (m *Map[K, V]) init(initialCapacity int, s settings[K, V]) {
	if err := checkLoadFactor(s.loadFactor); err != nil {
		panic(err)
	}
	capacity, err := tableSize(initialCapacity, s.loadFactor)
	if err != nil {
		panic(err)
	}
	*m = Map[K, V]{
		kh:             makeKeyHasher(s.hasher, maphash.MakeSeed()),
		allocator:      s.allocator,
		logger:         s.logger,
		multiplier:     initialMultiplier,
		loadFactor:     s.loadFactor,
		defaultValue:   s.defaultValue,
		freshIterators: s.freshIterators,
	}
	m.setTable(capacity)
	m.checkInvariants()
}

// setTable installs freshly allocated arrays of the given capacity. The
// previous arrays, if any, are the caller's responsibility.
func (m *Map[K, V]) setTable(capacity int) {
	m.keys = m.allocator.AllocKeys(capacity)
	m.values = m.allocator.AllocValues(capacity)
	m.mask = capacity - 1
	m.shift = uint(64 - bits.TrailingZeros(uint(capacity)))
	m.threshold = threshold(capacity, m.loadFactor)
}

// Close closes the map, releasing any memory back to its configured
// allocator. It is unnecessary to close a map using the default allocator. It
// is invalid to use a Map after it has been closed, though Close itself is
// idempotent.
func (m *Map[K, V]) Close() {
	if m.allocator == nil {
		return
	}
	m.freeTable(m.keys, m.values)
	m.keys, m.values = nil, nil
	m.used = 0
	m.hasZeroKey = false
	m.allocator = nil
}

func (m *Map[K, V]) freeTable(keys []K, values []V) {
	if len(keys) > 0 {
		m.allocator.FreeKeys(keys)
		m.allocator.FreeValues(values)
	}
}

// place returns the home slot of key.
func (m *Map[K, V]) place(key K) int {
	return int((m.kh.hash(key) * m.multiplier) >> m.shift)
}

// locate returns the slot holding key, or the bitwise complement of the
// first empty slot on its probe sequence, which is where key would be
// inserted. key must not be the zero key.
func (m *Map[K, V]) locate(key K) int {
	var zero K
	for i := m.place(key); ; i = (i + 1) & m.mask {
		k := m.keys[i]
		if k == zero {
			return ^i
		}
		if m.kh.equal(k, key) {
			return i
		}
	}
}

// Put inserts an entry into the map, overwriting the value if an entry with
// the same key already exists. Put returns the previous value, or the
// default value if the key was absent.
func (m *Map[K, V]) Put(key K, value V) V {
	old, _ := m.put(key, value)
	return old
}

// put is Put that also reports whether key was newly inserted.
func (m *Map[K, V]) put(key K, value V) (V, bool) {
	var zero K
	if key == zero {
		if m.hasZeroKey {
			old := m.zeroValue
			m.zeroValue = value
			return old, false
		}
		m.hasZeroKey = true
		m.zeroValue = value
	} else {
		i := m.locate(key)
		if i >= 0 {
			old := m.values[i]
			m.values[i] = value
			return old, false
		}
		i = ^i
		m.keys[i] = key
		m.values[i] = value
	}
	m.used++
	if m.used >= m.threshold {
		m.grow()
	}
	m.checkInvariants()
	return m.defaultValue, true
}

// PutIfAbsent inserts value for key unless key is already present. It
// returns the value now associated with key and whether it was inserted.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (actual V, inserted bool) {
	if v, ok := m.Get(key); ok {
		return v, false
	}
	m.put(key, value)
	return value, true
}

// PutAll puts every entry of seq. A Map's All method can be passed directly.
func (m *Map[K, V]) PutAll(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		m.put(k, v)
	}
}

// uncheckedPut inserts an entry known not to be in the table. Used by resize,
// where keys are known to be distinct and the zero key is never present.
func (m *Map[K, V]) uncheckedPut(key K, value V) {
	var zero K
	i := m.place(key)
	for m.keys[i] != zero {
		i = (i + 1) & m.mask
	}
	m.keys[i] = key
	m.values[i] = value
}

// Get retrieves the value from the map for the specified key, returning
// ok=false and the default value if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	var zero K
	if key == zero {
		if m.hasZeroKey {
			return m.zeroValue, true
		}
		return m.defaultValue, false
	}
	if i := m.locate(key); i >= 0 {
		return m.values[i], true
	}
	return m.defaultValue, false
}

// GetOrDefault returns the value for key, or def if key is not present.
func (m *Map[K, V]) GetOrDefault(key K, def V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}

// Has returns true if key is present in the map.
func (m *Map[K, V]) Has(key K) bool {
	var zero K
	if key == zero {
		return m.hasZeroKey
	}
	return m.locate(key) >= 0
}

// Remove deletes the entry for key and returns its value. If key is absent
// Remove returns the default value and false.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	_, v, ok := m.remove(key)
	if !ok {
		return m.defaultValue, false
	}
	return v, true
}

// Delete deletes the entry corresponding to the specified key from the map.
// It is a noop to delete a non-existent key.
func (m *Map[K, V]) Delete(key K) {
	m.remove(key)
}

// remove deletes key, returning the key as it was stored (which differs
// from key under a custom Hasher) and its value.
func (m *Map[K, V]) remove(key K) (stored K, value V, ok bool) {
	var zero K
	if key == zero {
		if !m.hasZeroKey {
			return stored, value, false
		}
		value = m.zeroValue
		var zeroV V
		m.hasZeroKey = false
		m.zeroValue = zeroV
		m.used--
		return zero, value, true
	}
	i := m.locate(key)
	if i < 0 {
		return stored, value, false
	}
	stored, value = m.keys[i], m.values[i]
	m.removeSlot(i, nil)
	m.checkInvariants()
	return stored, value, true
}

// removeSlot deletes the entry in slot i using backward-shift deletion. If
// moved is non-nil it is called for every entry shifted from one slot to
// another, in the order the shifts happen.
func (m *Map[K, V]) removeSlot(i int, moved func(from, to int)) {
	var zero K
	var zeroV V
	mask := m.mask
	for next := (i + 1) & mask; ; next = (next + 1) & mask {
		k := m.keys[next]
		if k == zero {
			break
		}
		// The entry at next may fill the gap at i only if the gap lies on its
		// probe sequence, i.e. the gap is no further from its home than next.
		home := m.place(k)
		if (next-home)&mask > (i-home)&mask {
			m.keys[i] = k
			m.values[i] = m.values[next]
			if moved != nil {
				moved(next, i)
			}
			i = next
		}
	}
	m.keys[i] = zero
	m.values[i] = zeroV
	m.used--
}

// grow doubles the capacity of the table until it is above the threshold.
func (m *Map[K, V]) grow() {
	capacity := len(m.keys) * 2
	for threshold(capacity, m.loadFactor) <= m.used {
		capacity *= 2
	}
	m.resize(capacity)
}

// resize resizes the capacity of the table by allocating new arrays and
// uncheckedPutting each element of the table into them (we know that no
// insertion here will Put an already-present key), and discards the old
// arrays.
func (m *Map[K, V]) resize(newCapacity int) {
	oldKeys, oldValues := m.keys, m.values
	m.setTable(newCapacity)
	m.multiplier = nextMultiplier(m.multiplier, m.shift)

	if ce := m.logger.Check(zap.DebugLevel, "probe: resize"); ce != nil {
		ce.Write(
			zap.Int("from", len(oldKeys)),
			zap.Int("to", newCapacity),
			zap.Int("len", m.used),
			zap.Uint64("multiplier", m.multiplier),
		)
	}

	var zero K
	for i, k := range oldKeys {
		if k != zero {
			m.uncheckedPut(k, oldValues[i])
		}
	}
	m.freeTable(oldKeys, oldValues)
}

// fitCapacity returns the table size needed to hold n entries, and never less
// than what the current entries need.
func (m *Map[K, V]) fitCapacity(n int) (int, error) {
	if n <= m.used {
		n = m.used + 1
	}
	return tableSize(n, m.loadFactor)
}

// EnsureCapacity grows the table if needed so that additional more entries
// can be added without it growing again. It returns an error wrapping
// ErrInvalidCapacity if additional is negative.
func (m *Map[K, V]) EnsureCapacity(additional int) error {
	if additional < 0 {
		return invalidCapacity(additional)
	}
	capacity, err := m.fitCapacity(m.used + additional)
	if err != nil {
		return err
	}
	if capacity > len(m.keys) {
		m.resize(capacity)
		m.checkInvariants()
	}
	return nil
}

// Shrink reduces the size of the table if it is larger than needed to hold
// maxCapacity entries (or the current entries, whichever is more). It
// returns an error wrapping ErrInvalidCapacity if maxCapacity is negative.
func (m *Map[K, V]) Shrink(maxCapacity int) error {
	if maxCapacity < 0 {
		return invalidCapacity(maxCapacity)
	}
	capacity, err := m.fitCapacity(maxCapacity)
	if err != nil {
		return err
	}
	if len(m.keys) > capacity {
		m.logger.Debug("probe: shrink",
			zap.Int("from", len(m.keys)), zap.Int("to", capacity), zap.Int("len", m.used))
		m.resize(capacity)
		m.checkInvariants()
	}
	return nil
}

// Clear removes all entries from the map, retaining the allocated arrays.
func (m *Map[K, V]) Clear() {
	clear(m.keys)
	clear(m.values)
	var zeroV V
	m.zeroValue = zeroV
	m.hasZeroKey = false
	m.used = 0
	m.checkInvariants()
}

// ClearWithCapacity removes all entries from the map and reduces the table
// to the size needed for maxCapacity entries if it is larger than that.
func (m *Map[K, V]) ClearWithCapacity(maxCapacity int) error {
	capacity, err := tableSize(maxCapacity, m.loadFactor)
	if err != nil {
		return err
	}
	if len(m.keys) <= capacity {
		m.Clear()
		return nil
	}
	m.logger.Debug("probe: clear",
		zap.Int("from", len(m.keys)), zap.Int("to", capacity))
	m.freeTable(m.keys, m.values)
	var zeroV V
	m.zeroValue = zeroV
	m.hasZeroKey = false
	m.used = 0
	m.setTable(capacity)
	m.multiplier = nextMultiplier(m.multiplier, m.shift)
	m.checkInvariants()
	return nil
}

// LoadFactor returns the fraction of the table that may be filled before it
// grows.
func (m *Map[K, V]) LoadFactor() float64 {
	return m.loadFactor
}

// SetLoadFactor changes the load factor, resizing the table immediately if
// the new load factor calls for a different capacity. It returns an error
// wrapping ErrInvalidLoadFactor if loadFactor is not in (0, 1].
func (m *Map[K, V]) SetLoadFactor(loadFactor float64) error {
	if err := checkLoadFactor(loadFactor); err != nil {
		return err
	}
	old := m.loadFactor
	m.loadFactor = loadFactor
	capacity, err := m.fitCapacity(m.used)
	if err != nil {
		m.loadFactor = old
		return err
	}
	m.logger.Debug("probe: load factor",
		zap.Float64("from", old), zap.Float64("to", loadFactor), zap.Int("capacity", capacity))
	if capacity != len(m.keys) {
		m.resize(capacity)
	} else {
		m.threshold = threshold(capacity, loadFactor)
	}
	m.checkInvariants()
	return nil
}

// DefaultValue returns the value returned by Get, Put and Remove when a key
// is absent.
func (m *Map[K, V]) DefaultValue() V {
	return m.defaultValue
}

// SetDefaultValue sets the value returned by Get, Put and Remove when a key
// is absent.
func (m *Map[K, V]) SetDefaultValue(v V) {
	m.defaultValue = v
}

// ContainsValueFunc returns true if some entry's value is equal to value
// according to eq.
func (m *Map[K, V]) ContainsValueFunc(value V, eq func(a, b V) bool) bool {
	_, ok := m.FindKey(value, eq)
	return ok
}

// FindKey returns the first key, in iteration order, whose value is equal to
// value according to eq.
func (m *Map[K, V]) FindKey(value V, eq func(a, b V) bool) (key K, ok bool) {
	m.All(func(k K, v V) bool {
		if eq(v, value) {
			key, ok = k, true
			return false
		}
		return true
	})
	return key, ok
}

// All calls yield sequentially for each key and value present in the map. If
// yield returns false, All stops the iteration. The zero key, if present,
// comes first. All can be used with range:
//
//	for k, v := range m.All {
//	  fmt.Printf("%v: %v\n", k, v)
//	}
//
// The map must not be mutated during iteration.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	var zero K
	if m.hasZeroKey && !yield(zero, m.zeroValue) {
		return
	}
	// Snapshot the arrays so that a misbehaving yield which resizes the map
	// cannot cause an out of bounds access.
	keys, values := m.keys, m.values
	for i, k := range keys {
		if k != zero && !yield(k, values[i]) {
			return
		}
	}
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Capacity returns the length of the table's arrays.
func (m *Map[K, V]) Capacity() int {
	return len(m.keys)
}

// Clone returns a copy of the map with the same options and entries. The
// copy does not share storage or iterators with m.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{}
	m.cloneInto(c)
	return c
}

func (m *Map[K, V]) cloneInto(c *Map[K, V]) {
	*c = Map[K, V]{
		kh:             m.kh,
		allocator:      m.allocator,
		logger:         m.logger,
		hasZeroKey:     m.hasZeroKey,
		zeroValue:      m.zeroValue,
		used:           m.used,
		mask:           m.mask,
		shift:          m.shift,
		multiplier:     m.multiplier,
		loadFactor:     m.loadFactor,
		threshold:      m.threshold,
		defaultValue:   m.defaultValue,
		freshIterators: m.freshIterators,
	}
	c.keys = c.allocator.AllocKeys(len(m.keys))
	c.values = c.allocator.AllocValues(len(m.values))
	copy(c.keys, m.keys)
	copy(c.values, m.values)
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if err := m.verify(); err != nil {
			panic(fmt.Sprintf("invariant failed: %v\n%s", err, m.debugString()))
		}
	}
}

// verify checks the structural invariants of the table.
func (m *Map[K, V]) verify() error {
	capacity := len(m.keys)
	if capacity < minCapacity || capacity&(capacity-1) != 0 {
		return fmt.Errorf("capacity %d is not a power of two >= %d", capacity, minCapacity)
	}
	if len(m.values) != capacity {
		return fmt.Errorf("values length %d != capacity %d", len(m.values), capacity)
	}
	if m.mask != capacity-1 {
		return fmt.Errorf("mask %d != capacity-1 (%d)", m.mask, capacity-1)
	}
	if m.shift != uint(64-bits.TrailingZeros(uint(capacity))) {
		return fmt.Errorf("shift %d does not match capacity %d", m.shift, capacity)
	}
	if m.multiplier&1 == 0 {
		return fmt.Errorf("multiplier %#x is even", m.multiplier)
	}
	if t := threshold(capacity, m.loadFactor); t != m.threshold {
		return fmt.Errorf("threshold %d != %d", m.threshold, t)
	}
	if m.used >= m.threshold {
		return fmt.Errorf("len %d >= threshold %d", m.used, m.threshold)
	}

	var zero K
	used := 0
	if m.hasZeroKey {
		used++
	}
	for i, k := range m.keys {
		if k == zero {
			continue
		}
		used++
		// Every key must be reachable from its home slot without crossing an
		// empty slot or an equal key.
		home := m.place(k)
		for j := home; j != i; j = (j + 1) & m.mask {
			if m.keys[j] == zero {
				return fmt.Errorf("slot(%d): %v unreachable from home %d, empty slot %d", i, k, home, j)
			}
			if m.kh.equal(m.keys[j], k) {
				return fmt.Errorf("slot(%d): %v duplicated in slot %d", i, k, j)
			}
		}
	}
	if used != m.used {
		return fmt.Errorf("found %d entries, but len is %d", used, m.used)
	}
	return nil
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  threshold=%d  multiplier=%#x\n",
		len(m.keys), m.used, m.threshold, m.multiplier)
	if m.hasZeroKey {
		fmt.Fprintf(&buf, "  zero: %v\n", m.zeroValue)
	}
	var zero K
	for i, k := range m.keys {
		if k == zero {
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		} else {
			fmt.Fprintf(&buf, "  %4d: %v [home=%d]\n", i, k, m.place(k))
		}
	}
	return buf.String()
}
