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
	"math/bits"

	"github.com/pkg/errors"
)

const (
	// DefaultLoadFactor is the load factor used when none is specified.
	DefaultLoadFactor = 0.8

	minCapacity = 2
	maxCapacity = 1 << 62
)

// threshold returns the number of entries a table of the given capacity may
// hold before it must grow.
func threshold(capacity int, loadFactor float64) int {
	return int(float64(capacity) * loadFactor)
}

// tableSize returns the smallest power of two c >= minCapacity such that
// threshold(c, loadFactor) >= n. An empty table still gets a threshold of at
// least 1.
func tableSize(n int, loadFactor float64) (int, error) {
	if n < 0 {
		return 0, invalidCapacity(n)
	}
	if n == 0 {
		n = 1
	}
	c := minCapacity
	if est := float64(n) / loadFactor; est > float64(c) {
		if est >= maxCapacity {
			return 0, errors.Wrapf(ErrInvalidCapacity, "capacity %d is too large", n)
		}
		c = 1 << bits.Len(uint(int(est)-1))
	}
	// The estimate can be off by one in either direction due to float
	// rounding.
	for c > minCapacity && threshold(c/2, loadFactor) >= n {
		c /= 2
	}
	for threshold(c, loadFactor) < n {
		if c >= maxCapacity {
			return 0, errors.Wrapf(ErrInvalidCapacity, "capacity %d is too large", n)
		}
		c *= 2
	}
	return c, nil
}

func checkLoadFactor(loadFactor float64) error {
	// NB: written so that NaN fails.
	if !(loadFactor > 0 && loadFactor <= 1) {
		return errors.Wrapf(ErrInvalidLoadFactor, "load factor %v", loadFactor)
	}
	return nil
}
