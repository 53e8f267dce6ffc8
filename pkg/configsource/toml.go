// Package configsource adapts non-YAML configuration inputs into the
// map[string]interface{} shape pkg/config's viper instance can merge.
// TOML parsing is explicitly named out of core scope (spec.md §1 lists
// "TOML configuration parsing" as a non-goal collaborator); this file
// wires BurntSushi/toml as a thin loader for operators who keep their
// config in TOML instead of YAML, without pulling TOML into the core
// config schema itself.
package configsource

import (
	"os"

	"github.com/BurntSushi/toml"
)

// LoadTOML reads path as TOML and returns it as a generic map, suitable
// for viper.MergeConfigMap.
func LoadTOML(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
