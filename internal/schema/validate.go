// Package schema checks testtask project files against the embedded JSON schema.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/AndreyAkinshin/testtask/schema"
)

// ConfigSchemaName is the embedded schema file for testtask.json.
const ConfigSchemaName = "config.schema.json"

// configSchema compiles the embedded schema on first use.
var configSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	raw, err := schemafs.FS.ReadFile(ConfigSchemaName)
	if err != nil {
		return nil, fmt.Errorf("read config schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal config schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(ConfigSchemaName, doc); err != nil {
		return nil, fmt.Errorf("add config schema resource: %w", err)
	}
	s, err := c.Compile(ConfigSchemaName)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	return s, nil
})

// ValidateConfig checks JSON config data against the schema. YAML files are
// converted to JSON before they get here.
func ValidateConfig(data []byte) error {
	s, err := configSchema()
	if err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
