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

import "slices"

// orderList is the sequence of keys of an ordered collection. In dense mode
// the keys are items[:n]. In deque mode items is a ring buffer whose length
// is a power of two and the keys start at items[head], which lets insertions
// and removals shift whichever side of the position is shorter.
type orderList[K comparable] struct {
	items []K
	head  int
	n     int
	deque bool
}

func makeOrderList[K comparable](capacity int, deque bool) orderList[K] {
	l := orderList[K]{deque: deque}
	if deque {
		c := 8
		for c < capacity {
			c *= 2
		}
		l.items = make([]K, c)
	} else {
		l.items = make([]K, 0, capacity)
	}
	return l
}

func (l *orderList[K]) Len() int {
	return l.n
}

// slot returns the index into items of position i.
func (l *orderList[K]) slot(i int) int {
	if !l.deque {
		return i
	}
	return (l.head + i) & (len(l.items) - 1)
}

func (l *orderList[K]) At(i int) K {
	return l.items[l.slot(i)]
}

func (l *orderList[K]) Set(i int, k K) {
	l.items[l.slot(i)] = k
}

func (l *orderList[K]) Append(k K) {
	l.Insert(l.n, k)
}

// Insert inserts k at position i, 0 <= i <= Len().
func (l *orderList[K]) Insert(i int, k K) {
	if !l.deque {
		l.items = slices.Insert(l.items, i, k)
		l.n++
		return
	}
	if l.n == len(l.items) {
		l.grow()
	}
	if i < l.n/2 {
		l.head = (l.head - 1) & (len(l.items) - 1)
		for j := 0; j < i; j++ {
			l.Set(j, l.At(j+1))
		}
	} else {
		for j := l.n; j > i; j-- {
			l.Set(j, l.At(j-1))
		}
	}
	l.Set(i, k)
	l.n++
}

// RemoveAt removes and returns the key at position i.
func (l *orderList[K]) RemoveAt(i int) K {
	k := l.At(i)
	l.RemoveRange(i, i+1)
	return k
}

// RemoveRange removes the keys at positions [start, end).
func (l *orderList[K]) RemoveRange(start, end int) {
	if start >= end {
		return
	}
	var zero K
	if !l.deque {
		l.items = slices.Delete(l.items, start, end)
		l.n = len(l.items)
		return
	}
	count := end - start
	if start < l.n-end {
		// Fewer keys before the range than after it: shift the front right.
		for j := start - 1; j >= 0; j-- {
			l.Set(j+count, l.At(j))
		}
		for j := 0; j < count; j++ {
			l.Set(j, zero)
		}
		l.head = l.slot(count)
	} else {
		for j := end; j < l.n; j++ {
			l.Set(j-count, l.At(j))
		}
		for j := l.n - count; j < l.n; j++ {
			l.Set(j, zero)
		}
	}
	l.n -= count
}

// IndexOf returns the position of k, or -1.
func (l *orderList[K]) IndexOf(k K) int {
	for i := 0; i < l.n; i++ {
		if l.At(i) == k {
			return i
		}
	}
	return -1
}

// Move moves the key at position from to position to.
func (l *orderList[K]) Move(from, to int) {
	if from == to {
		return
	}
	k := l.At(from)
	if from < to {
		for j := from; j < to; j++ {
			l.Set(j, l.At(j+1))
		}
	} else {
		for j := from; j > to; j-- {
			l.Set(j, l.At(j-1))
		}
	}
	l.Set(to, k)
}

func (l *orderList[K]) Clear() {
	if !l.deque {
		clear(l.items)
		l.items = l.items[:0]
	} else {
		clear(l.items)
		l.head = 0
	}
	l.n = 0
}

// Grow makes room for n more keys.
func (l *orderList[K]) Grow(n int) {
	if !l.deque {
		l.items = slices.Grow(l.items, n)
		return
	}
	for len(l.items)-l.n < n {
		l.grow()
	}
}

func (l *orderList[K]) grow() {
	items := make([]K, 2*len(l.items))
	l.copyTo(items)
	l.items = items
	l.head = 0
}

// copyTo copies the keys in order to dst, which must have room for them.
func (l *orderList[K]) copyTo(dst []K) {
	if !l.deque {
		copy(dst, l.items)
		return
	}
	n := copy(dst[:l.n], l.items[l.head:])
	copy(dst[n:l.n], l.items)
}

// Slice returns a copy of the keys in order.
func (l *orderList[K]) Slice() []K {
	s := make([]K, l.n)
	l.copyTo(s)
	return s
}

// SortFunc sorts the keys with cmp. The sort is stable.
func (l *orderList[K]) SortFunc(cmp func(a, b K) int) {
	if !l.deque {
		slices.SortStableFunc(l.items, cmp)
		return
	}
	// Straighten the ring so the keys are contiguous, then sort in place.
	if l.head+l.n > len(l.items) {
		items := make([]K, len(l.items))
		l.copyTo(items)
		l.items = items
		l.head = 0
	}
	slices.SortStableFunc(l.items[l.head:l.head+l.n], cmp)
}

func (l *orderList[K]) clone() orderList[K] {
	c := *l
	c.items = slices.Clone(l.items)
	return c
}

// OrderView is a read-only view of the order of an ordered collection. It
// reflects later changes to the collection.
type OrderView[K comparable] struct {
	l *orderList[K]
}

// Len returns the number of keys.
func (v OrderView[K]) Len() int {
	return v.l.Len()
}

// At returns the key at position i. At panics if i is out of range.
func (v OrderView[K]) At(i int) K {
	checkIndex(i, v.l.Len())
	return v.l.At(i)
}

// IndexOf returns the position of key, or -1 if key is absent. Keys are
// compared with ==.
func (v OrderView[K]) IndexOf(key K) int {
	return v.l.IndexOf(key)
}

// Slice returns a copy of the keys in order.
func (v OrderView[K]) Slice() []K {
	return v.l.Slice()
}

// All calls yield with each position and key in order.
func (v OrderView[K]) All(yield func(i int, key K) bool) {
	for i := 0; i < v.l.Len(); i++ {
		if !yield(i, v.l.At(i)) {
			return
		}
	}
}
