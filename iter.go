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

// Entry is a key and its value.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Positions of an unordered cursor. Slot -1 stands for the out of line zero
// key; noEntry means the cursor is not positioned on an entry.
const (
	zeroSlot = -1
	noEntry  = -2
)

// cursor walks the entries of a Map, or of an OrderedMap when om is set.
type cursor[K comparable, V any] struct {
	m  *Map[K, V]
	om *OrderedMap[K, V]
	// gen is incremented each time the cursor is handed out. An Iterator
	// holding an older generation is stale.
	gen     uint32
	next    int
	current int
	hasNext bool
	// moved holds keys already visited which a Remove shifted across the end
	// of the array to a slot not yet visited. They are skipped until the next
	// reset.
	moved []K
}

func (c *cursor[K, V]) reset() {
	c.current = noEntry
	c.moved = c.moved[:0]
	if c.om != nil {
		c.next = 0
		c.hasNext = c.om.order.Len() > 0
		return
	}
	c.next = noEntry
	c.findNext()
}

// findNext advances next to the first live, not yet visited slot after it.
func (c *cursor[K, V]) findNext() {
	m := c.m
	if c.next < zeroSlot {
		c.next = zeroSlot
		if m.hasZeroKey {
			c.hasNext = true
			return
		}
	}
	var zero K
	for c.next++; c.next < len(m.keys); c.next++ {
		k := m.keys[c.next]
		if k != zero && !c.skip(k) {
			c.hasNext = true
			return
		}
	}
	c.hasNext = false
}

func (c *cursor[K, V]) skip(k K) bool {
	for _, mk := range c.moved {
		if mk == k {
			return true
		}
	}
	return false
}

func (c *cursor[K, V]) advance() bool {
	if !c.hasNext {
		c.current = noEntry
		return false
	}
	c.current = c.next
	if c.om != nil {
		c.next++
		c.hasNext = c.next < c.om.order.Len()
	} else {
		c.findNext()
	}
	return true
}

func (c *cursor[K, V]) entry() (K, V) {
	if c.current == noEntry {
		panic(ErrIteratorState)
	}
	if c.om != nil {
		k := c.om.order.At(c.current)
		v, _ := c.m.Get(k)
		return k, v
	}
	if c.current == zeroSlot {
		var zero K
		return zero, c.m.zeroValue
	}
	return c.m.keys[c.current], c.m.values[c.current]
}

func (c *cursor[K, V]) remove() {
	if c.current == noEntry {
		panic(ErrIteratorState)
	}
	if c.om != nil {
		c.om.RemoveAt(c.current)
		c.next--
		c.hasNext = c.next < c.om.order.Len()
		c.current = noEntry
		return
	}
	m := c.m
	if c.current == zeroSlot {
		var zero K
		m.remove(zero)
		c.current = noEntry
		return
	}
	current := c.current
	m.removeSlot(current, func(from, to int) {
		// A shift normally moves an entry to a lower slot. Moving to a higher
		// one means it wrapped around from a slot this walk already passed.
		if from < to && from < current {
			c.moved = append(c.moved, m.keys[to])
		}
	})
	var zero K
	if m.keys[current] != zero {
		// An entry not yet visited was shifted into the current slot.
		c.next = current - 1
		c.findNext()
	}
	c.current = noEntry
	m.checkInvariants()
}

// cursorPool hands out the two cursors of a view in turn.
type cursorPool[K comparable, V any] struct {
	m       *Map[K, V]
	om      *OrderedMap[K, V]
	cursors [2]*cursor[K, V]
	last    int
	fresh   bool
}

func makeCursorPool[K comparable, V any](m *Map[K, V], om *OrderedMap[K, V]) cursorPool[K, V] {
	return cursorPool[K, V]{m: m, om: om, fresh: m.freshIterators}
}

func (p *cursorPool[K, V]) acquire() Iterator[K, V] {
	var c *cursor[K, V]
	if p.fresh {
		c = &cursor[K, V]{m: p.m, om: p.om}
	} else {
		p.last ^= 1
		if p.cursors[p.last] == nil {
			p.cursors[p.last] = &cursor[K, V]{m: p.m, om: p.om}
		}
		c = p.cursors[p.last]
	}
	c.gen++
	c.reset()
	return Iterator[K, V]{c: c, gen: c.gen}
}

// all walks the entries in iteration order without using a cursor.
func (p *cursorPool[K, V]) all(yield func(K, V) bool) {
	if p.om != nil {
		p.om.All(yield)
		return
	}
	p.m.All(yield)
}

// Iterator is a position in a walk over a collection, in the style of
// bufio.Scanner:
//
//	it := m.Entries().Iterator()
//	for it.Next() {
//	  fmt.Println(it.Key(), it.Value())
//	}
//
// Iterators returned by the same view share two pooled cursors. Calling any
// method of an Iterator whose cursor has since been handed out again panics
// with ErrIteratorReused. The zero Iterator is invalid.
type Iterator[K comparable, V any] struct {
	c   *cursor[K, V]
	gen uint32
}

func (it Iterator[K, V]) cursor() *cursor[K, V] {
	if it.c == nil || it.c.gen != it.gen {
		panic(ErrIteratorReused)
	}
	return it.c
}

// HasNext reports whether a call to Next would return true.
func (it Iterator[K, V]) HasNext() bool {
	return it.cursor().hasNext
}

// Next advances the iterator to the next entry, which then becomes
// available through Key, Value and Entry. It returns false when there are no
// more entries.
func (it Iterator[K, V]) Next() bool {
	return it.cursor().advance()
}

// Key returns the key of the current entry.
func (it Iterator[K, V]) Key() K {
	k, _ := it.cursor().entry()
	return k
}

// Value returns the value of the current entry.
func (it Iterator[K, V]) Value() V {
	_, v := it.cursor().entry()
	return v
}

// Entry returns the current entry.
func (it Iterator[K, V]) Entry() Entry[K, V] {
	k, v := it.cursor().entry()
	return Entry[K, V]{Key: k, Value: v}
}

// Remove removes the current entry from the collection. Entries not yet
// visited are still visited exactly once. Remove panics with
// ErrIteratorState unless Next has returned true since the last Remove.
func (it Iterator[K, V]) Remove() {
	it.cursor().remove()
}

// Reset rewinds the iterator to the start of the collection.
func (it Iterator[K, V]) Reset() {
	it.cursor().reset()
}

// KeysView is a live view of the keys of a collection.
type KeysView[K comparable, V any] struct {
	pool cursorPool[K, V]
}

// Iterator returns an iterator over the keys, reusing one of the view's two
// cursors.
func (v *KeysView[K, V]) Iterator() Iterator[K, V] {
	return v.pool.acquire()
}

// Len returns the number of keys.
func (v *KeysView[K, V]) Len() int {
	return v.pool.m.Len()
}

// ToSlice returns the keys in iteration order.
func (v *KeysView[K, V]) ToSlice() []K {
	s := make([]K, 0, v.Len())
	v.All(func(k K) bool {
		s = append(s, k)
		return true
	})
	return s
}

// All calls yield for each key in iteration order.
func (v *KeysView[K, V]) All(yield func(key K) bool) {
	v.pool.all(func(k K, _ V) bool {
		return yield(k)
	})
}

// ValuesView is a live view of the values of a collection.
type ValuesView[K comparable, V any] struct {
	pool cursorPool[K, V]
}

// Iterator returns an iterator over the entries, of which Value is the one
// of interest, reusing one of the view's two cursors.
func (v *ValuesView[K, V]) Iterator() Iterator[K, V] {
	return v.pool.acquire()
}

// Len returns the number of values.
func (v *ValuesView[K, V]) Len() int {
	return v.pool.m.Len()
}

// ToSlice returns the values in iteration order.
func (v *ValuesView[K, V]) ToSlice() []V {
	s := make([]V, 0, v.Len())
	v.All(func(val V) bool {
		s = append(s, val)
		return true
	})
	return s
}

// All calls yield for each value in iteration order.
func (v *ValuesView[K, V]) All(yield func(value V) bool) {
	v.pool.all(func(_ K, val V) bool {
		return yield(val)
	})
}

// EntriesView is a live view of the entries of a collection.
type EntriesView[K comparable, V any] struct {
	pool cursorPool[K, V]
}

// Iterator returns an iterator over the entries, reusing one of the view's
// two cursors.
func (v *EntriesView[K, V]) Iterator() Iterator[K, V] {
	return v.pool.acquire()
}

// Len returns the number of entries.
func (v *EntriesView[K, V]) Len() int {
	return v.pool.m.Len()
}

// ToSlice returns the entries in iteration order.
func (v *EntriesView[K, V]) ToSlice() []Entry[K, V] {
	s := make([]Entry[K, V], 0, v.Len())
	v.All(func(k K, val V) bool {
		s = append(s, Entry[K, V]{Key: k, Value: val})
		return true
	})
	return s
}

// All calls yield for each entry in iteration order.
func (v *EntriesView[K, V]) All(yield func(key K, value V) bool) {
	v.pool.all(yield)
}

// Keys returns the view of the map's keys.
func (m *Map[K, V]) Keys() *KeysView[K, V] {
	if m.keysView == nil {
		m.keysView = &KeysView[K, V]{pool: makeCursorPool(m, nil)}
	}
	return m.keysView
}

// Values returns the view of the map's values.
func (m *Map[K, V]) Values() *ValuesView[K, V] {
	if m.valuesView == nil {
		m.valuesView = &ValuesView[K, V]{pool: makeCursorPool(m, nil)}
	}
	return m.valuesView
}

// Entries returns the view of the map's entries.
func (m *Map[K, V]) Entries() *EntriesView[K, V] {
	if m.entriesView == nil {
		m.entriesView = &EntriesView[K, V]{pool: makeCursorPool(m, nil)}
	}
	return m.entriesView
}

// Keys returns the view of the map's keys, in order.
func (om *OrderedMap[K, V]) Keys() *KeysView[K, V] {
	if om.keysView == nil {
		om.keysView = &KeysView[K, V]{pool: makeCursorPool(&om.m, om)}
	}
	return om.keysView
}

// Values returns the view of the map's values, in key order.
func (om *OrderedMap[K, V]) Values() *ValuesView[K, V] {
	if om.valuesView == nil {
		om.valuesView = &ValuesView[K, V]{pool: makeCursorPool(&om.m, om)}
	}
	return om.valuesView
}

// Entries returns the view of the map's entries, in order.
func (om *OrderedMap[K, V]) Entries() *EntriesView[K, V] {
	if om.entriesView == nil {
		om.entriesView = &EntriesView[K, V]{pool: makeCursorPool(&om.m, om)}
	}
	return om.entriesView
}
