// internal/models/profile.go
package models

import "strings"

type ProfileFieldKind string

const (
	FieldAge        ProfileFieldKind = "age"
	FieldRegion     ProfileFieldKind = "region"
	FieldOccupation ProfileFieldKind = "occupation"
	FieldIncome     ProfileFieldKind = "monthly_income"
	FieldMarital    ProfileFieldKind = "marital_status"
)

// ProfileFieldOrder is the segment order of a profile string.
var ProfileFieldOrder = []ProfileFieldKind{FieldAge, FieldRegion, FieldOccupation, FieldIncome, FieldMarital}

var profileFieldLabels = map[ProfileFieldKind]string{
	FieldAge:        "나이",
	FieldRegion:     "지역",
	FieldOccupation: "직업",
	FieldIncome:     "월소득",
	FieldMarital:    "혼인상태",
}

// Label returns the Korean display name used in prompts.
func (k ProfileFieldKind) Label() string {
	return profileFieldLabels[k]
}

type ProfileField struct {
	Kind       ProfileFieldKind `json:"kind"`
	Value      string           `json:"value"`
	Recognized bool             `json:"recognized"`
}

// Profile is the parsed self-description of the user. Fields always holds
// one entry per ProfileFieldOrder element, in that order.
type Profile struct {
	Raw      string         `json:"raw"`
	Fields   []ProfileField `json:"fields"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (p *Profile) Field(kind ProfileFieldKind) ProfileField {
	for _, f := range p.Fields {
		if f.Kind == kind {
			return f
		}
	}
	return ProfileField{Kind: kind}
}

// Structured renders the profile as "나이: 29세, 지역: 수도권, ..." skipping
// empty fields.
func (p *Profile) Structured() string {
	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		parts = append(parts, f.Kind.Label()+": "+f.Value)
	}
	return strings.Join(parts, ", ")
}
