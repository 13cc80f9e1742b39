// internal/models/report.go
package models

const (
	HeaderEligibility        = "[자격 판단]"
	HeaderApplicablePolicies = "[신청 가능 정책]"
	HeaderExpectedBenefits   = "[예상 혜택]"
	HeaderNextSteps          = "[다음 단계]"
	HeaderInformationNeeded  = "[확인 필요 사항]"
)

// ReportHeaders lists the section headers in report order.
var ReportHeaders = []string{
	HeaderEligibility,
	HeaderApplicablePolicies,
	HeaderExpectedBenefits,
	HeaderNextSteps,
	HeaderInformationNeeded,
}

type Section struct {
	Header string   `json:"header"`
	Items  []string `json:"items"`
}

// FinalReport is the five-section result of a run.
type FinalReport struct {
	Eligibility        []string `json:"eligibility"`
	ApplicablePolicies []string `json:"applicablePolicies"`
	ExpectedBenefits   []string `json:"expectedBenefits"`
	NextSteps          []string `json:"nextSteps"`
	InformationNeeded  []string `json:"informationNeeded"`
	MissingSections    []string `json:"missingSections,omitempty"`
	Raw                string   `json:"raw,omitempty"`
}

func NewFinalReport() *FinalReport {
	return &FinalReport{
		Eligibility:        []string{},
		ApplicablePolicies: []string{},
		ExpectedBenefits:   []string{},
		NextSteps:          []string{},
		InformationNeeded:  []string{},
	}
}

// Sections returns the five sections in fixed order.
func (r *FinalReport) Sections() []Section {
	return []Section{
		{Header: HeaderEligibility, Items: r.Eligibility},
		{Header: HeaderApplicablePolicies, Items: r.ApplicablePolicies},
		{Header: HeaderExpectedBenefits, Items: r.ExpectedBenefits},
		{Header: HeaderNextSteps, Items: r.NextSteps},
		{Header: HeaderInformationNeeded, Items: r.InformationNeeded},
	}
}

// SetSection stores items under header. Unknown headers are ignored.
func (r *FinalReport) SetSection(header string, items []string) {
	if items == nil {
		items = []string{}
	}
	switch header {
	case HeaderEligibility:
		r.Eligibility = items
	case HeaderApplicablePolicies:
		r.ApplicablePolicies = items
	case HeaderExpectedBenefits:
		r.ExpectedBenefits = items
	case HeaderNextSteps:
		r.NextSteps = items
	case HeaderInformationNeeded:
		r.InformationNeeded = items
	}
}
