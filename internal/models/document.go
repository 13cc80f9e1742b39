// internal/models/document.go
package models

import "encoding/json"

// SlotMapping is the advisory field mapping pulled from a policy document.
// It may be nil or empty; nothing downstream depends on its contents.
type SlotMapping map[string]interface{}

func (s SlotMapping) Empty() bool {
	return len(s) == 0
}

// Hint renders the mapping for inclusion in a prompt, or "" when empty.
func (s SlotMapping) Hint() string {
	if s.Empty() {
		return ""
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// PolicyDocument is one parsed policy. It is built during PARSE and only
// read afterwards.
type PolicyDocument struct {
	SourcePath string                 `json:"sourcePath"`
	Text       string                 `json:"text"`
	Raw        map[string]interface{} `json:"raw,omitempty"`
	Slots      SlotMapping            `json:"slots,omitempty"`
	Embedded   bool                   `json:"embedded"`
}
