// Package profile parses the slash-delimited profile string given on the
// command line, e.g. "29세/수도권/중소기업/월250/미혼".
//
// Parsing is lenient: segments that do not look like what their position
// expects are kept as free text, a short profile leaves the trailing fields
// empty and extra segments are folded into the marital-status field. Every
// deviation is recorded in Profile.Warnings. Only a profile with no content
// at all is rejected.
package profile

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/models"
)

const separator = "/"

var (
	agePattern    = regexp.MustCompile(`^\d{1,3}\s*(세|살)?$`)
	incomePattern = regexp.MustCompile(`^(월\s*)?\d+(\.\d+)?\s*(만원|만)?$`)
)

// Parse splits raw into the five profile fields.
func Parse(raw string) (*models.Profile, error) {
	segments := strings.Split(raw, separator)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	nonEmpty := 0
	for _, s := range segments {
		if s != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, apperrors.NewMalformedProfileError(fmt.Sprintf("profile %q has no content", raw))
	}

	want := len(models.ProfileFieldOrder)
	var warnings []string
	switch {
	case len(segments) < want:
		missing := make([]string, 0, want-len(segments))
		for _, kind := range models.ProfileFieldOrder[len(segments):] {
			missing = append(missing, string(kind))
		}
		warnings = append(warnings, fmt.Sprintf("expected %d segments, got %d; missing: %s", want, len(segments), strings.Join(missing, ", ")))
	case len(segments) > want:
		warnings = append(warnings, fmt.Sprintf("expected %d segments, got %d; extra segments folded into %s", want, len(segments), models.FieldMarital))
		folded := strings.Join(nonBlank(segments[want-1:]), separator)
		segments = append(segments[:want-1], folded)
	}

	p := &models.Profile{
		Raw:    raw,
		Fields: make([]models.ProfileField, 0, want),
	}
	for i, kind := range models.ProfileFieldOrder {
		value := ""
		if i < len(segments) {
			value = segments[i]
		}
		recognized := recognize(kind, value)
		if value != "" && !recognized {
			warnings = append(warnings, fmt.Sprintf("%s %q not recognised; kept as free text", kind, value))
		} else if value == "" && i < len(segments) {
			warnings = append(warnings, fmt.Sprintf("%s is empty", kind))
		}
		p.Fields = append(p.Fields, models.ProfileField{Kind: kind, Value: value, Recognized: recognized})
	}
	p.Warnings = warnings
	return p, nil
}

func recognize(kind models.ProfileFieldKind, value string) bool {
	if value == "" {
		return false
	}
	switch kind {
	case models.FieldAge:
		return agePattern.MatchString(value)
	case models.FieldIncome:
		return incomePattern.MatchString(value)
	default:
		return true
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
