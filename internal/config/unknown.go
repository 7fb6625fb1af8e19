package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// LoadWithWarnings decodes JSON config data. Keys that no Config field
// claims are reported as warnings rather than errors.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Path = path
	return &cfg, unknownFields(data, reflect.TypeOf(cfg), ""), nil
}

// unknownFields walks a JSON object alongside struct type t and lists keys
// t does not declare. Nested struct fields are checked as sections.
func unknownFields(data []byte, t reflect.Type, section string) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	fields := jsonFields(t)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	// Keys at this level are reported before those of nested sections.
	var warnings, nested []string
	for _, key := range keys {
		if section == "" && key == "$schema" {
			continue
		}
		ft, ok := fields[key]
		if !ok {
			where := "at root level"
			if section != "" {
				where = "in " + section
			}
			warnings = append(warnings, fmt.Sprintf("unknown field %q %s (ignored)", key, where))
			continue
		}
		if ft.Kind() == reflect.Struct {
			nested = append(nested, unknownFields(obj[key], ft, strings.TrimPrefix(section+"."+key, "."))...)
		}
	}
	return append(warnings, nested...)
}

// jsonFields maps each JSON name declared on struct t to its field type,
// with pointers dereferenced.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		fields[name] = ft
	}
	return fields
}
