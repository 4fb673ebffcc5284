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

import "fmt"

// appendEntries appends the entries produced by all to dst. A nil formatter
// formats with %v.
func appendEntries[K comparable, V any](
	dst []byte,
	all func(yield func(K, V) bool),
	entrySep, kvSep string,
	braces bool,
	appendKey func(dst []byte, key K) []byte,
	appendValue func(dst []byte, value V) []byte,
) []byte {
	if appendKey == nil {
		appendKey = appendAny[K]
	}
	if appendValue == nil {
		appendValue = appendAny[V]
	}
	if braces {
		dst = append(dst, '{')
	}
	first := true
	all(func(k K, v V) bool {
		if !first {
			dst = append(dst, entrySep...)
		}
		first = false
		dst = appendKey(dst, k)
		dst = append(dst, kvSep...)
		dst = appendValue(dst, v)
		return true
	})
	if braces {
		dst = append(dst, '}')
	}
	return dst
}

// appendKeys is appendEntries for sets.
func appendKeys[K comparable](
	dst []byte,
	all func(yield func(K) bool),
	sep string,
	braces bool,
	appendKey func(dst []byte, key K) []byte,
) []byte {
	if appendKey == nil {
		appendKey = appendAny[K]
	}
	if braces {
		dst = append(dst, '{')
	}
	first := true
	all(func(k K) bool {
		if !first {
			dst = append(dst, sep...)
		}
		first = false
		dst = appendKey(dst, k)
		return true
	})
	if braces {
		dst = append(dst, '}')
	}
	return dst
}

func appendAny[T any](dst []byte, v T) []byte {
	return fmt.Appendf(dst, "%v", v)
}

// AppendTo appends the entries of the map to dst in iteration order and
// returns the extended buffer. Entries are separated by entrySep and each key
// is separated from its value by kvSep. If braces is true the entries are
// enclosed in { and }. appendKey and appendValue format a single key or
// value; when nil the %v verb is used.
func (m *Map[K, V]) AppendTo(
	dst []byte,
	entrySep, kvSep string,
	braces bool,
	appendKey func(dst []byte, key K) []byte,
	appendValue func(dst []byte, value V) []byte,
) []byte {
	return appendEntries(dst, m.All, entrySep, kvSep, braces, appendKey, appendValue)
}

// String formats the map as {k1=v1, k2=v2}.
func (m *Map[K, V]) String() string {
	return string(m.AppendTo(nil, ", ", "=", true, nil, nil))
}

// AppendTo appends the entries of the map to dst in order. See Map.AppendTo.
func (om *OrderedMap[K, V]) AppendTo(
	dst []byte,
	entrySep, kvSep string,
	braces bool,
	appendKey func(dst []byte, key K) []byte,
	appendValue func(dst []byte, value V) []byte,
) []byte {
	return appendEntries(dst, om.All, entrySep, kvSep, braces, appendKey, appendValue)
}

// String formats the map as {k1=v1, k2=v2}.
func (om *OrderedMap[K, V]) String() string {
	return string(om.AppendTo(nil, ", ", "=", true, nil, nil))
}

// AppendTo appends the keys of the set to dst separated by sep, optionally
// enclosed in { and }. A nil appendKey formats with %v.
func (s *Set[K]) AppendTo(dst []byte, sep string, braces bool, appendKey func(dst []byte, key K) []byte) []byte {
	return appendKeys(dst, s.All, sep, braces, appendKey)
}

// String formats the set as {k1, k2}.
func (s *Set[K]) String() string {
	return string(s.AppendTo(nil, ", ", true, nil))
}

// AppendTo appends the keys of the set to dst in order. See Set.AppendTo.
func (s *OrderedSet[K]) AppendTo(dst []byte, sep string, braces bool, appendKey func(dst []byte, key K) []byte) []byte {
	return appendKeys(dst, s.All, sep, braces, appendKey)
}

// String formats the set as {k1, k2}.
func (s *OrderedSet[K]) String() string {
	return string(s.AppendTo(nil, ", ", true, nil))
}
