// Package report turns the FINAL step's free text into a FinalReport and
// renders it for the terminal.
package report

import (
	"regexp"
	"strings"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/models"
)

var (
	bulletPrefix   = regexp.MustCompile(`^(?:[-*•·]\s*)+`)
	numberedPrefix = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
	headerMarker   = regexp.MustCompile(`^(?:(?:[-*•·]|\d{1,2}[.)])\s*)+`)
	decorations    = strings.NewReplacer("**", "", "__", "")
)

// Parse splits raw into the five report sections by header. Text before
// the first header is dropped. A header that appears more than once keeps
// collecting into the same section. Headers the model left out produce
// empty sections and are listed in MissingSections. Output without any
// known header is rejected.
func Parse(raw string) (*models.FinalReport, error) {
	r := models.NewFinalReport()
	r.Raw = raw

	sections := make(map[string][]string, len(models.ReportHeaders))
	current := ""
	for _, line := range strings.Split(raw, "\n") {
		text := cleanLine(line)
		if text == "" {
			continue
		}
		if header, rest, ok := matchHeader(text); ok {
			current = header
			if _, seen := sections[header]; !seen {
				sections[header] = []string{}
			}
			if rest != "" {
				sections[header] = append(sections[header], rest)
			}
			continue
		}
		if current == "" {
			continue
		}
		if item := cleanItem(text); item != "" {
			sections[current] = append(sections[current], item)
		}
	}

	if len(sections) == 0 {
		return nil, apperrors.NewResponseMalformedError("final", "none of the report section headers were found")
	}

	for _, header := range models.ReportHeaders {
		items, ok := sections[header]
		if !ok {
			r.MissingSections = append(r.MissingSections, header)
			continue
		}
		r.SetSection(header, items)
	}
	return r, nil
}

func cleanLine(line string) string {
	text := strings.TrimSpace(decorations.Replace(line))
	return strings.TrimSpace(strings.TrimLeft(text, "#"))
}

func cleanItem(text string) string {
	text = bulletPrefix.ReplaceAllString(text, "")
	text = numberedPrefix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// matchHeader accepts "[자격 판단]", "[자격 판단] trailing text" and a bare
// "자격 판단" line, optionally behind a bullet or list number.
func matchHeader(text string) (string, string, bool) {
	text = strings.TrimSpace(headerMarker.ReplaceAllString(text, ""))
	for _, header := range models.ReportHeaders {
		if strings.HasPrefix(text, header) {
			rest := strings.TrimSpace(strings.TrimPrefix(text, header))
			rest = strings.TrimSpace(strings.TrimLeft(rest, ":："))
			return header, cleanItem(rest), true
		}
		title := strings.Trim(header, "[]")
		if strings.TrimRight(text, ":：") == title {
			return header, "", true
		}
	}
	return "", "", false
}
