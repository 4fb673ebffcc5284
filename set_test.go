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
	"slices"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet[int](0)
	require.True(t, s.Add(1))
	require.False(t, s.Add(1))
	s.AddAll(slices.Values([]int{0, 2, 3}))
	require.Equal(t, 4, s.Len())
	require.True(t, s.Has(0))
	require.True(t, s.Remove(2))
	require.False(t, s.Remove(2))
	require.ElementsMatch(t, []int{0, 1, 3}, s.ToSlice())

	first, err := s.First()
	require.NoError(t, err)
	require.Equal(t, 0, first)

	var got []int
	it := s.Iterator()
	for it.Next() {
		if it.Key() == 1 {
			it.Remove()
			continue
		}
		got = append(got, it.Key())
	}
	require.ElementsMatch(t, []int{0, 3}, got)
	require.False(t, s.Has(1))

	c := s.Clone()
	c.Add(7)
	require.False(t, s.Has(7))
	require.False(t, c.Equal(s))
	c.Remove(7)
	require.True(t, c.Equal(s))
	require.Equal(t, s.HashCode(), c.HashCode())

	s.Clear()
	require.Equal(t, 0, s.Len())
	_, err = s.First()
	require.True(t, errors.Is(err, ErrEmpty))
}

func TestSetCapacity(t *testing.T) {
	s := NewSet[int](10)
	require.Equal(t, 16, s.Capacity())
	require.Equal(t, DefaultLoadFactor, s.LoadFactor())
	require.NoError(t, s.EnsureCapacity(100))
	require.Equal(t, 128, s.Capacity())
	require.NoError(t, s.Shrink(0))
	require.Equal(t, 2, s.Capacity())
	require.NoError(t, s.SetLoadFactor(0.25))
	require.Equal(t, 4, s.Capacity())
	require.NoError(t, s.ClearWithCapacity(0))
	require.True(t, errors.Is(s.SetLoadFactor(2), ErrInvalidLoadFactor))
	s.Close()
}

func TestOrderedSetAlterAt(t *testing.T) {
	s := NewOrderedSet[string](0)
	s.Add("a")
	s.Add("b")
	require.True(t, s.AlterAt(0, "z"))
	require.Equal(t, []string{"z", "b"}, s.ToSlice())
	require.Equal(t, "z", s.At(0))
	require.False(t, s.AlterAt(0, "b"))
	require.Equal(t, []string{"z", "b"}, s.ToSlice())
	require.True(t, s.Alter("b", "c"))
	require.False(t, s.Alter("b", "d"))
	require.Equal(t, []string{"z", "c"}, s.Order().Slice())
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet[string](0, WithDeque[string, struct{}]())
	s.AddAll(slices.Values(strings.Fields("d b a e c")))
	require.False(t, s.Add("a"))
	require.Equal(t, []string{"d", "b", "a", "e", "c"}, s.ToSlice())

	require.True(t, s.AddAt("f", 1))
	require.False(t, s.AddAt("c", 0))
	require.Equal(t, []string{"c", "d", "f", "b", "a", "e"}, s.ToSlice())

	s.Sort(strings.Compare)
	require.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, s.ToSlice())

	require.Equal(t, "a", s.RemoveAt(0))
	s.RemoveRange(0, 2)
	require.Equal(t, []string{"d", "e", "f"}, s.ToSlice())
	require.True(t, s.Remove("e"))
	require.False(t, s.Has("e"))

	k, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, "f", k)
	first, err := s.First()
	require.NoError(t, err)
	require.Equal(t, "d", first)

	s.AddAll(slices.Values([]string{"x", "y", "z"}))
	s.Truncate(2)
	require.Equal(t, []string{"d", "x"}, s.ToSlice())

	var got []string
	it := s.Iterator()
	for it.Next() {
		got = append(got, it.Key())
	}
	require.Equal(t, []string{"d", "x"}, got)

	c := s.Clone()
	c.AddAt("w", 0)
	require.Equal(t, []string{"d", "x"}, s.ToSlice())
	require.Equal(t, []string{"w", "d", "x"}, c.ToSlice())

	s.Clear()
	_, err = s.Pop()
	require.True(t, errors.Is(err, ErrEmpty))
	requirePanicsIs(t, ErrIndexOutOfRange, func() { s.At(0) })
}

func TestSetEqual(t *testing.T) {
	s := NewSet[string](0)
	o := NewOrderedSet[string](0)
	for _, k := range []string{"a", "b", "c"} {
		s.Add(k)
	}
	for _, k := range []string{"c", "a", "b"} {
		o.Add(k)
	}
	require.True(t, s.Equal(o))
	require.True(t, o.Equal(s))
	require.Equal(t, s.HashCode(), o.HashCode())

	o.Add("d")
	require.False(t, s.Equal(o))
	o.Remove("a")
	require.False(t, s.Equal(o))
	require.False(t, o.Equal(s))

	empty := NewSet[string](100)
	require.Equal(t, uint64(0), empty.HashCode())
	require.True(t, empty.Equal(NewOrderedSet[string](0)))
}
