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
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds the tunables of a collection that are commonly set from a
// configuration file. A zero field leaves the corresponding default in place.
//
//	load-factor = 0.75
//	deque = true
//	fresh-iterators = false
type Config struct {
	LoadFactor     float64 `toml:"load-factor"`
	Deque          bool    `toml:"deque"`
	FreshIterators bool    `toml:"fresh-iterators"`
}

// Validate returns an error if the configuration cannot be applied.
func (c Config) Validate() error {
	if c.LoadFactor == 0 {
		return nil
	}
	return checkLoadFactor(c.LoadFactor)
}

// DecodeConfig parses a TOML document into a Config. Unknown keys are
// rejected.
func DecodeConfig(data string) (Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "probe: decoding config")
	}
	return finishConfig(cfg, md)
}

// LoadConfig reads and parses the TOML file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "probe: loading config %s", path)
	}
	return finishConfig(cfg, md)
}

func finishConfig(cfg Config, md toml.MetaData) (Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Errorf("probe: unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
