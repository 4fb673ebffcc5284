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
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(`
load-factor = 0.5
deque = true
fresh-iterators = true
`)
	require.NoError(t, err)
	require.Equal(t, Config{LoadFactor: 0.5, Deque: true, FreshIterators: true}, cfg)

	cfg, err = DecodeConfig("")
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)

	_, err = DecodeConfig("load-factor = 1.5")
	require.True(t, errors.Is(err, ErrInvalidLoadFactor), "%v", err)

	_, err = DecodeConfig("load-factr = 0.5")
	require.ErrorContains(t, err, "unknown config keys: load-factr")

	_, err = DecodeConfig("load-factor = ")
	require.ErrorContains(t, err, "decoding config")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.toml")
	require.NoError(t, os.WriteFile(path, []byte("load-factor = 0.5\ndeque = true\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	om := NewOrdered[int, int](10, WithConfig[int, int](cfg))
	require.Equal(t, 0.5, om.LoadFactor())
	require.Equal(t, 32, om.Capacity())
	require.True(t, om.order.deque)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "loading config")

	// A zero load factor keeps the default.
	m := New[int, int](10, WithConfig[int, int](Config{FreshIterators: true}))
	require.Equal(t, DefaultLoadFactor, m.LoadFactor())
	require.True(t, m.freshIterators)
}
