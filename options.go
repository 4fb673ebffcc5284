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
	"hash/maphash"

	"go.uber.org/zap"
)

// option provide an interface to do work on a collection while it is being
// created.
type option[K comparable, V any] interface {
	apply(s *settings[K, V])
}

// settings accumulates the options passed to a constructor.
type settings[K comparable, V any] struct {
	hasher         Hasher[K]
	loadFactor     float64
	defaultValue   V
	allocator      Allocator[K, V]
	logger         *zap.Logger
	deque          bool
	freshIterators bool
}

func makeSettings[K comparable, V any](options []option[K, V]) settings[K, V] {
	s := settings[K, V]{
		hasher:     ComparableHasher[K]{},
		loadFactor: DefaultLoadFactor,
		allocator:  defaultAllocator[K, V]{},
		logger:     zap.NewNop(),
	}
	for _, op := range options {
		op.apply(&s)
	}
	return s
}

type optionFunc[K comparable, V any] func(s *settings[K, V])

func (f optionFunc[K, V]) apply(s *settings[K, V]) { f(s) }

// WithHasher is an option to specify the hashing and equality policy of a
// collection, for example CaseInsensitiveHasher.
func WithHasher[K comparable, V any](hasher Hasher[K]) option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		s.hasher = hasher
	})
}

// WithHash is an option to specify the hash function and equality used for
// keys. The seed passed to hash is private to the collection.
func WithHash[K comparable, V any](
	hash func(seed maphash.Seed, key K) uint64, equal func(a, b K) bool,
) option[K, V] {
	return WithHasher[K, V](funcHasher[K]{hash: hash, equal: equal})
}

// WithLoadFactor is an option to specify the fraction of the table that may
// be filled before it grows. The load factor must be in (0, 1]; constructors
// panic otherwise.
func WithLoadFactor[K comparable, V any](loadFactor float64) option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		s.loadFactor = loadFactor
	})
}

// WithDefaultValue is an option to specify the value returned by Get, Put and
// Remove when the key is absent.
func WithDefaultValue[K comparable, V any](value V) option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		s.defaultValue = value
	})
}

// WithLogger is an option to specify the logger used for debug events such
// as resizes. The default logger discards everything.
func WithLogger[K comparable, V any](logger *zap.Logger) option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		if logger == nil {
			logger = zap.NewNop()
		}
		s.logger = logger
	})
}

// WithDeque is an option for ordered collections to keep their order in a
// ring buffer, which makes positional insertion and removal near either end
// cheap. It has no effect on unordered collections.
func WithDeque[K comparable, V any]() option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		s.deque = true
	})
}

// WithFreshIterators is an option to allocate a new cursor for every
// Iterator call rather than reusing the two pooled cursors of each view.
// Iterators from such a collection may be nested arbitrarily.
func WithFreshIterators[K comparable, V any]() option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		s.freshIterators = true
	})
}

// WithConfig is an option to apply a Config.
func WithConfig[K comparable, V any](cfg Config) option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		if cfg.LoadFactor != 0 {
			s.loadFactor = cfg.LoadFactor
		}
		s.deque = cfg.Deque
		s.freshIterators = cfg.FreshIterators
	})
}

// Allocator specifies an interface for allocating and releasing the key and
// value arrays used by a Map. The default allocator utilizes Go's builtin
// make() and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that arrays be
// freed then Close must be called in order to ensure FreeKeys and FreeValues
// are called.
type Allocator[K comparable, V any] interface {
	// AllocKeys should return a slice equivalent to make([]K, n).
	AllocKeys(n int) []K

	// AllocValues should return a slice equivalent to make([]V, n).
	AllocValues(n int) []V

	// FreeKeys can optional release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by AllocKeys.
	FreeKeys(v []K)

	// FreeValues can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocValues.
	FreeValues(v []V)
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocKeys(n int) []K {
	return make([]K, n)
}

func (defaultAllocator[K, V]) AllocValues(n int) []V {
	return make([]V, n)
}

func (defaultAllocator[K, V]) FreeKeys(v []K) {
}

func (defaultAllocator[K, V]) FreeValues(v []V) {
}

// WithAllocator is an option for specify the Allocator to use for a Map[K,V].
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return optionFunc[K, V](func(s *settings[K, V]) {
		s.allocator = allocator
	})
}
