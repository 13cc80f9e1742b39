// internal/capabilities/information-extract/models.go
package informationextract

type Input struct {
	Path string `json:"path"`
}

type Output struct {
	Slots map[string]interface{} `json:"slots"`
	// SchemaErrors lists where the mapping deviates from the schema. The
	// mapping is returned either way.
	SchemaErrors []string `json:"schemaErrors,omitempty"`
}
