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
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Hasher defines a hash function and an equivalence relation over keys of
// type K. Equal(a, b) must imply that Hash writes the same bytes for a and b.
//
// The zero value of K marks an empty slot and is always compared with ==, so
// a Hasher must not report the zero value as equal to any other key.
type Hasher[K any] interface {
	Hash(h *maphash.Hash, key K)
	Equal(a, b K) bool
}

// ComparableHasher is the default Hasher. Its Equal method is consistent with
// ==, and its hash is the runtime's hash for K.
type ComparableHasher[K comparable] struct{}

func (ComparableHasher[K]) Hash(h *maphash.Hash, key K) { maphash.WriteComparable(h, key) }
func (ComparableHasher[K]) Equal(a, b K) bool          { return a == b }

// CaseInsensitiveHasher treats string keys that differ only by Unicode simple
// case folding as equal.
type CaseInsensitiveHasher struct{}

func (CaseInsensitiveHasher) Hash(h *maphash.Hash, key string) {
	var buf [utf8.UTFMax]byte
	for _, r := range key {
		n := utf8.EncodeRune(buf[:], foldRune(r))
		_, _ = h.Write(buf[:n])
	}
}

func (CaseInsensitiveHasher) Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// foldRune maps r to the smallest rune in its case folding orbit, which gives
// every member of the orbit the same hash.
func foldRune(r rune) rune {
	if r < utf8.RuneSelf {
		if 'a' <= r && r <= 'z' {
			r -= 'a' - 'A'
		}
		return r
	}
	lo := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < lo {
			lo = f
		}
	}
	return lo
}

type funcHasher[K any] struct {
	hash  func(seed maphash.Seed, key K) uint64
	equal func(a, b K) bool
}

func (f funcHasher[K]) Hash(h *maphash.Hash, key K) {
	var buf [8]byte
	v := f.hash(h.Seed(), key)
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	_, _ = h.Write(buf[:])
}

func (f funcHasher[K]) Equal(a, b K) bool { return f.equal(a, b) }

// keyHasher computes hashes of keys for a single table. The default hasher
// and hash functions given with WithHash take fast paths that avoid the
// streaming maphash.Hash.
type keyHasher[K comparable] struct {
	hasher Hasher[K]
	seed   maphash.Seed
	state  maphash.Hash
	// comparable is true when hasher is a ComparableHasher.
	comparable bool
	// fn is set when hasher is a funcHasher. Its result is used as is.
	fn func(seed maphash.Seed, key K) uint64
}

func makeKeyHasher[K comparable](hasher Hasher[K], seed maphash.Seed) keyHasher[K] {
	kh := keyHasher[K]{hasher: hasher, seed: seed}
	_, kh.comparable = hasher.(ComparableHasher[K])
	if f, ok := hasher.(funcHasher[K]); ok {
		kh.fn = f.hash
	}
	kh.state.SetSeed(seed)
	return kh
}

func (kh *keyHasher[K]) hash(key K) uint64 {
	if kh.comparable {
		return maphash.Comparable(kh.seed, key)
	}
	if kh.fn != nil {
		return kh.fn(kh.seed, key)
	}
	kh.state.Reset()
	kh.hasher.Hash(&kh.state, key)
	return kh.state.Sum64()
}

func (kh *keyHasher[K]) equal(a, b K) bool {
	if kh.comparable {
		return a == b
	}
	return kh.hasher.Equal(a, b)
}

// codeSeed is shared by every collection in the process so that HashCode
// agrees between collections holding the same entries.
var codeSeed = maphash.MakeSeed()

func hashCodeOf[K any](hasher Hasher[K], key K) uint64 {
	var h maphash.Hash
	h.SetSeed(codeSeed)
	hasher.Hash(&h, key)
	return h.Sum64()
}

func hashComparable[V comparable](v V) uint64 {
	return maphash.Comparable(codeSeed, v)
}

// initialMultiplier is the first multiplier used by place. It is odd, as
// every multiplier must be.
const initialMultiplier uint64 = 0xD1B54A32D192ED03

// nextMultiplier derives the multiplier for a table with the given shift from
// the multiplier of the table it replaces. Varying the multiplier across
// resizes keeps a key set that collides under one multiplier from colliding
// systematically after growth. The mixing is the splitmix64 finalizer.
func nextMultiplier(prev uint64, shift uint) uint64 {
	z := prev + uint64(shift)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return z | 1
}
