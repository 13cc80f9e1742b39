package report

import (
	"fmt"
	"io"

	"policy-navigator/internal/models"
)

const (
	missingSectionText = "내용이 생성되지 않았습니다. 입력/프롬프트를 확인해주세요."
	emptySectionText   = "해당 없음"
)

// Render writes the report as plain text. Next steps are numbered; every
// other section is a bullet list.
func Render(w io.Writer, r *models.FinalReport) error {
	missing := make(map[string]bool, len(r.MissingSections))
	for _, h := range r.MissingSections {
		missing[h] = true
	}

	for i, section := range r.Sections() {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, section.Header); err != nil {
			return err
		}

		items := section.Items
		switch {
		case missing[section.Header]:
			items = []string{missingSectionText}
		case len(items) == 0:
			items = []string{emptySectionText}
		}

		numbered := section.Header == models.HeaderNextSteps && len(section.Items) > 0
		for n, item := range items {
			var err error
			if numbered {
				_, err = fmt.Fprintf(w, "%d. %s\n", n+1, item)
			} else {
				_, err = fmt.Fprintf(w, "- %s\n", item)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
