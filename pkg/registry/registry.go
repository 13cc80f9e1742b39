// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"policy-navigator/internal/common/validation"
)

//go:embed schemas/registry.json
var defaultRegistry []byte

// LoadRegistry reads a registry file from disk.
func LoadRegistry(path string) (*SchemaRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Default returns the registry compiled into the binary.
func Default() *SchemaRegistry {
	reg, err := parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded schema registry is invalid: %v", err))
	}
	return reg
}

func parse(data []byte) (*SchemaRegistry, error) {
	var reg SchemaRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Schema returns the raw schema registered under id.
func (r *SchemaRegistry) Schema(id string) (map[string]interface{}, bool) {
	for _, entry := range r.Schemas {
		if entry.ID == id {
			return entry.Schema, true
		}
	}
	return nil, false
}

// Validator compiles the schema registered under id.
func (r *SchemaRegistry) Validator(id string) (*validation.Validator, error) {
	schema, ok := r.Schema(id)
	if !ok {
		return nil, fmt.Errorf("schema %q not registered", id)
	}
	return validation.NewValidator(id, schema)
}
