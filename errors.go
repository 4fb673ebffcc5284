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

import "github.com/pkg/errors"

var (
	// ErrInvalidCapacity is returned when a negative capacity is requested or
	// when the requested capacity cannot be represented by a power of two
	// table.
	ErrInvalidCapacity = errors.New("probe: invalid capacity")
	// ErrInvalidLoadFactor is returned when a load factor outside of (0, 1]
	// is supplied.
	ErrInvalidLoadFactor = errors.New("probe: load factor must be > 0 and <= 1")
	// ErrIndexOutOfRange is the panic value (wrapped) used by positional
	// operations on ordered collections.
	ErrIndexOutOfRange = errors.New("probe: index out of range")
	// ErrEmpty is returned by First and Pop on an empty collection.
	ErrEmpty = errors.New("probe: collection is empty")
	// ErrIteratorReused is the panic value used when an iterator is touched
	// after its pooled cursor has been handed out again.
	ErrIteratorReused = errors.New("probe: iterator cannot be used nested more than once")
	// ErrIteratorState is the panic value used when Key, Value or Remove is
	// called on an iterator that is not positioned on an entry.
	ErrIteratorState = errors.New("probe: iterator is not positioned on an entry")
)

func indexError(index, length int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", index, length)
}

// checkIndex panics unless 0 <= index < length.
func checkIndex(index, length int) {
	if index < 0 || index >= length {
		panic(indexError(index, length))
	}
}

func invalidCapacity(n int) error {
	return errors.Wrapf(ErrInvalidCapacity, "capacity %d", n)
}
