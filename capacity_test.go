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
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestTableSize(t *testing.T) {
	testCases := []struct {
		n          int
		loadFactor float64
		expected   int
	}{
		{0, 0.8, 2},
		{1, 0.8, 2},
		{10, 0.8, 16},
		{12, 0.8, 16},
		{13, 0.8, 32},
		{1, 1, 2},
		{2, 1, 2},
		{3, 1, 4},
		{100, 0.5, 256},
		{1, 0.01, 128},
		{0, 0.01, 128},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("%d/%v", c.n, c.loadFactor), func(t *testing.T) {
			capacity, err := tableSize(c.n, c.loadFactor)
			require.NoError(t, err)
			require.Equal(t, c.expected, capacity)
		})
	}
}

func TestTableSizeMinimal(t *testing.T) {
	for _, lf := range []float64{0.1, 0.25, 0.5, 0.75, 0.8, 0.9, 0.99, 1} {
		for n := 0; n < 5000; n++ {
			c, err := tableSize(n, lf)
			require.NoError(t, err)
			require.Zero(t, c&(c-1), "%d is not a power of two", c)
			require.GreaterOrEqual(t, threshold(c, lf), max(n, 1), "n=%d lf=%v", n, lf)
			if c > minCapacity {
				require.Less(t, threshold(c/2, lf), max(n, 1), "n=%d lf=%v", n, lf)
			}
		}
	}
}

func TestTableSizeErrors(t *testing.T) {
	_, err := tableSize(-1, DefaultLoadFactor)
	require.True(t, errors.Is(err, ErrInvalidCapacity))
	_, err = tableSize(math.MaxInt, DefaultLoadFactor)
	require.True(t, errors.Is(err, ErrInvalidCapacity))
	_, err = tableSize(1<<61, 0.5)
	require.True(t, errors.Is(err, ErrInvalidCapacity))
	require.Contains(t, err.Error(), "too large")
}

func TestCheckLoadFactor(t *testing.T) {
	for _, lf := range []float64{math.SmallestNonzeroFloat64, 0.5, DefaultLoadFactor, 1} {
		require.NoError(t, checkLoadFactor(lf))
	}
	for _, lf := range []float64{0, -0.5, 1.0000001, math.NaN(), math.Inf(-1), math.Inf(1)} {
		err := checkLoadFactor(lf)
		require.True(t, errors.Is(err, ErrInvalidLoadFactor), "%v", lf)
	}
}
