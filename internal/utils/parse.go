package utils

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile decodes a TOML file into config. The error goes back to
// the caller so it can fall through to field-level recovery.
func LoadTOMLFile(configPath string, config interface{}) error {
	_, err := toml.DecodeFile(configPath, config)
	if err != nil {
		log.Warnf("TOML parsing error in config file %s: %v. Attempting partial recovery...", configPath, err)
	}
	return err
}

// ParseTOMLWithRecovery re-reads a file that failed strict decoding as
// an untyped table. Whatever sections survived the damage stay usable.
func ParseTOMLWithRecovery(configPath string) (map[string]any, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	table := make(map[string]any)
	if _, err := toml.Decode(string(raw), &table); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", configPath, err)
		return nil, err
	}
	return table, nil
}

// ExtractSection pulls one named table out of an untyped TOML tree.
func ExtractSection(table map[string]any, name string) (map[string]any, bool) {
	section, ok := table[name].(map[string]any)
	return section, ok
}

// ExtractInt64 reads an integer field as int. TOML integers always
// decode as int64 in an untyped table, so that is the only case.
func ExtractInt64(table map[string]any, key string) (int, bool) {
	val, ok := table[key].(int64)
	if !ok {
		return 0, false
	}
	return int(val), true
}

// ExtractBool reads a boolean field.
func ExtractBool(table map[string]any, key string) (bool, bool) {
	val, ok := table[key].(bool)
	return val, ok
}

// ExtractString reads a string field.
func ExtractString(table map[string]any, key string) (string, bool) {
	val, ok := table[key].(string)
	return val, ok
}

// ExtractStringSlice reads a string array field. TOML arrays decode as
// []any, so each element is checked too.
func ExtractStringSlice(table map[string]any, key string) ([]string, bool) {
	raw, ok := table[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
