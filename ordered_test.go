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
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// requirePanicsIs runs f and requires it to panic with an error matching
// target.
func requirePanicsIs(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, target), "%v", err)
	}()
	f()
}

// orderModes runs test against an OrderedMap in each order list mode.
func orderModes(t *testing.T, test func(t *testing.T, newMap func() *OrderedMap[string, int])) {
	t.Run("dense", func(t *testing.T) {
		test(t, func() *OrderedMap[string, int] { return NewOrdered[string, int](0) })
	})
	t.Run("deque", func(t *testing.T) {
		test(t, func() *OrderedMap[string, int] {
			return NewOrdered[string, int](0, WithDeque[string, int]())
		})
	})
}

func modelKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	keys := make([]K, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

func TestOrderedPutKeepsPosition(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		om := newMap()
		om.Put("a", 1)
		om.Put("b", 2)
		require.Equal(t, 1, om.Put("a", 3))
		require.Equal(t, []string{"a", "b"}, om.Order().Slice())
		v, ok := om.Get("a")
		require.True(t, ok)
		require.Equal(t, 3, v)
		require.Equal(t, 2, om.Len())
	})
}

func TestOrderedPutAt(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		om := newMap()
		om.Put("a", 1)
		om.Put("b", 2)
		om.Put("c", 3)

		om.PutAt("z", 26, 0)
		require.Equal(t, []string{"z", "a", "b", "c"}, om.Order().Slice())
		om.PutAt("y", 25, om.Len())
		require.Equal(t, []string{"z", "a", "b", "c", "y"}, om.Order().Slice())

		// Existing keys move.
		require.Equal(t, 26, om.PutAt("z", 0, 3))
		require.Equal(t, []string{"a", "b", "c", "z", "y"}, om.Order().Slice())
		om.PutAt("y", 24, 1)
		require.Equal(t, []string{"a", "y", "b", "c", "z"}, om.Order().Slice())
		require.Equal(t, 24, om.GetAt(1))

		// Out of range indexes leave the map unchanged.
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.PutAt("q", 1, 6) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.PutAt("q", 1, -1) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.PutAt("a", 1, 5) })
		require.False(t, om.Has("q"))
		require.Equal(t, []string{"a", "y", "b", "c", "z"}, om.Order().Slice())
		require.NoError(t, om.verify())
	})
}

func TestOrderedAlter(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		om := newMap()
		om.Put("a", 1)
		om.Put("b", 2)
		om.Put("c", 3)

		require.True(t, om.Alter("b", "x"))
		require.Equal(t, []string{"a", "x", "c"}, om.Order().Slice())
		v, _ := om.Get("x")
		require.Equal(t, 2, v)
		require.False(t, om.Has("b"))

		require.False(t, om.Alter("missing", "y"))
		require.False(t, om.Alter("a", "c"))

		require.True(t, om.AlterAt(0, "w"))
		require.False(t, om.AlterAt(0, "c"))
		require.Equal(t, []string{"w", "x", "c"}, om.Order().Slice())
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.AlterAt(3, "q") })
		require.NoError(t, om.verify())
	})
}

func TestOrderedRemove(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		om := newMap()
		for i := 0; i < 10; i++ {
			om.Put(fmt.Sprint(i), i)
		}
		v, ok := om.Remove("3")
		require.True(t, ok)
		require.Equal(t, 3, v)
		_, ok = om.Remove("3")
		require.False(t, ok)

		k, v := om.RemoveAt(0)
		require.Equal(t, "0", k)
		require.Equal(t, 0, v)

		om.RemoveRange(1, 3)
		require.Equal(t, []string{"1", "5", "6", "7", "8", "9"}, om.Order().Slice())
		om.RemoveRange(2, 2)
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.RemoveRange(3, 2) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.RemoveRange(0, 7) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.RemoveAt(6) })

		om.Truncate(4)
		require.Equal(t, []string{"1", "5", "6", "7"}, om.Order().Slice())
		om.Truncate(10)
		require.Equal(t, 4, om.Len())

		k, v, err := om.Pop()
		require.NoError(t, err)
		require.Equal(t, "7", k)
		require.Equal(t, 7, v)
		first, err := om.First()
		require.NoError(t, err)
		require.Equal(t, "1", first)

		om.Truncate(0)
		_, err = om.First()
		require.True(t, errors.Is(err, ErrEmpty))
		_, _, err = om.Pop()
		require.True(t, errors.Is(err, ErrEmpty))
		require.NoError(t, om.verify())
	})
}

func TestOrderedPositional(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		om := newMap()
		om.Put("a", 1)
		om.Put("b", 2)
		require.Equal(t, "b", om.KeyAt(1))
		require.Equal(t, 1, om.GetAt(0))
		require.Equal(t, 2, om.SetAt(1, 20))
		v, _ := om.Get("b")
		require.Equal(t, 20, v)
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.KeyAt(2) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.GetAt(-1) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.SetAt(2, 0) })
		requirePanicsIs(t, ErrIndexOutOfRange, func() { om.Order().At(2) })
		require.Equal(t, 1, om.Order().IndexOf("b"))
		require.Equal(t, -1, om.Order().IndexOf("c"))
	})
}

func TestOrderedSort(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		om := newMap()
		for _, k := range []string{"d", "b", "a", "e", "c"} {
			om.Put(k, int(k[0]))
		}
		// Remove from the front so a deque is not aligned at the start.
		om.RemoveAt(0)
		om.PutAt("d", 'd', 0)

		om.Sort(strings.Compare)
		require.Equal(t, []string{"a", "b", "c", "d", "e"}, om.Order().Slice())

		om.SortByValue(func(a, b int) int { return b - a })
		require.Equal(t, []string{"e", "d", "c", "b", "a"}, om.Order().Slice())

		// Sorting does not move keys in the table.
		for _, k := range []string{"a", "b", "c", "d", "e"} {
			v, ok := om.Get(k)
			require.True(t, ok)
			require.Equal(t, int(k[0]), v)
		}
		require.NoError(t, om.verify())
	})
}

func TestOrderedRandom(t *testing.T) {
	orderModes(t, func(t *testing.T, newMap func() *OrderedMap[string, int]) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		om := newMap()
		e := orderedmap.NewOrderedMap[string, int]()
		for i := 0; i < 5000; i++ {
			k := fmt.Sprint(rng.Intn(500))
			switch r := rng.Float64(); {
			case r < 0.5:
				v := rng.Int()
				om.Put(k, v)
				e.Set(k, v)
			case r < 0.8:
				_, ok := om.Remove(k)
				require.Equal(t, e.Delete(k), ok)
			case r < 0.9:
				v, ok := om.Get(k)
				ev, eok := e.Get(k)
				require.Equal(t, eok, ok)
				require.Equal(t, ev, v)
			default:
				if om.Len() > 0 {
					k, _ := om.RemoveAt(rng.Intn(om.Len()))
					require.True(t, e.Delete(k))
				}
			}
			require.Equal(t, e.Len(), om.Len())
			if i%100 == 0 {
				if diff := cmp.Diff(modelKeys(e), om.Order().Slice()); diff != "" {
					t.Fatalf("order mismatch (-want +got):\n%s", diff)
				}
				require.NoError(t, om.verify())
			}
		}
		if diff := cmp.Diff(modelKeys(e), om.Keys().ToSlice()); diff != "" {
			t.Fatalf("order mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestOrderedCapacity(t *testing.T) {
	om := NewOrdered[int, int](0, WithDeque[int, int]())
	require.NoError(t, om.EnsureCapacity(100))
	require.Equal(t, 128, om.Capacity())
	for i := 1; i <= 100; i++ {
		om.Put(i, i)
	}
	require.Equal(t, 128, om.Capacity())
	om.Truncate(10)
	require.NoError(t, om.Shrink(0))
	require.Equal(t, 16, om.Capacity())
	require.NoError(t, om.SetLoadFactor(0.5))
	require.Equal(t, 32, om.Capacity())
	require.Equal(t, 0.5, om.LoadFactor())
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, om.Order().Slice())

	require.NoError(t, om.ClearWithCapacity(0))
	require.Equal(t, 0, om.Len())
	require.Equal(t, 0, om.Order().Len())
	require.True(t, errors.Is(om.EnsureCapacity(-1), ErrInvalidCapacity))
}

func TestOrderedMisc(t *testing.T) {
	om := NewOrdered[string, int](0, WithDefaultValue[string, int](-1))
	v, inserted := om.PutIfAbsent("a", 1)
	require.True(t, inserted)
	require.Equal(t, 1, v)
	v, inserted = om.PutIfAbsent("a", 2)
	require.False(t, inserted)
	require.Equal(t, 1, v)

	m := New[string, int](0)
	m.Put("b", 2)
	om.PutAll(m.All)
	require.Equal(t, []string{"a", "b"}, om.Order().Slice())
	require.Equal(t, -1, om.DefaultValue())
	v, _ = om.Get("c")
	require.Equal(t, -1, v)
	om.SetDefaultValue(0)
	require.Equal(t, 7, om.GetOrDefault("c", 7))

	om.Put("c", 2)
	k, ok := om.FindKey(2, func(a, b int) bool { return a == b })
	require.True(t, ok)
	require.Equal(t, "b", k)
	require.True(t, om.ContainsValueFunc(1, func(a, b int) bool { return a == b }))

	c := om.Clone()
	c.PutAt("z", 26, 0)
	require.Equal(t, []string{"a", "b", "c"}, om.Order().Slice())
	require.Equal(t, []string{"z", "a", "b", "c"}, c.Order().Slice())

	var got []string
	om.All(func(k string, _ int) bool {
		got = append(got, k)
		return k != "b"
	})
	require.Equal(t, []string{"a", "b"}, got)

	om.Clear()
	require.Equal(t, 0, om.Len())
	require.Equal(t, 0, om.Order().Len())
	om.Put("x", 1)
	require.Equal(t, []string{"x"}, om.Order().Slice())
}

func TestOrderedZeroKey(t *testing.T) {
	om := NewOrdered[string, int](0)
	om.Put("a", 1)
	om.Put("", 0)
	om.Put("b", 2)
	require.Equal(t, []string{"a", "", "b"}, om.Order().Slice())
	require.True(t, om.Alter("", "c"))
	require.Equal(t, []string{"a", "c", "b"}, om.Order().Slice())
	om.PutAt("", 5, 0)
	_, ok := om.Remove("")
	require.True(t, ok)
	require.Equal(t, []string{"a", "c", "b"}, om.Order().Slice())
	require.NoError(t, om.verify())
}

func TestOrderedCaseInsensitive(t *testing.T) {
	om := NewOrdered[string, int](0, WithHasher[string, int](CaseInsensitiveHasher{}))
	om.Put("Alpha", 1)
	om.Put("beta", 2)
	om.Put("ALPHA", 3)
	require.Equal(t, []string{"Alpha", "beta"}, om.Order().Slice())

	// Removal and alteration find the stored spelling.
	require.True(t, om.Alter("BETA", "Gamma"))
	require.Equal(t, []string{"Alpha", "Gamma"}, om.Order().Slice())
	v, ok := om.Remove("alpha")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, []string{"Gamma"}, om.Order().Slice())
	om.PutAt("gamma", 4, 0)
	require.Equal(t, []string{"Gamma"}, om.Order().Slice())
	require.NoError(t, om.verify())
}
