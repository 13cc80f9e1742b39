// Package prompts renders the prompts sent to the reasoning model. The
// template text lives in templates/ and is compiled into the binary.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"policy-navigator/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed templates/sample_policy.txt
var samplePolicy string

const (
	planTemplate           = "plan.tmpl"
	finalTemplate          = "final.tmpl"
	questionFilterTemplate = "question_filter.tmpl"
	answerExtractTemplate  = "answer_extract.tmpl"

	// DefaultPlanTextLimit caps the policy text quoted in the plan prompt.
	DefaultPlanTextLimit = 8000
)

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// SamplePolicyText is the bundled policy used when no document is given.
func SamplePolicyText() string {
	return samplePolicy
}

type PlanInput struct {
	Profile    string
	PolicyText string
	SlotHint   string
	// TextLimit overrides DefaultPlanTextLimit when positive.
	TextLimit int
}

type FinalInput struct {
	Profile        string
	PolicyText     string
	PlanJSON       string
	AnsweredFields map[string]string
	Answers        []models.QAPair
	SlotHint       string
}

func BuildPlanPrompt(in PlanInput) (string, error) {
	limit := in.TextLimit
	if limit <= 0 {
		limit = DefaultPlanTextLimit
	}
	return render(planTemplate, map[string]interface{}{
		"Profile":    in.Profile,
		"PolicyText": Truncate(in.PolicyText, limit),
		"SlotHint":   in.SlotHint,
	})
}

func BuildQuestionFilterPrompt(profile string, questions []models.PlanQuestion) (string, error) {
	if questions == nil {
		questions = []models.PlanQuestion{}
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}
	return render(questionFilterTemplate, map[string]interface{}{
		"Profile":       profile,
		"QuestionsJSON": string(data),
	})
}

func BuildAnswerExtractPrompt(question models.Question, answer string) (string, error) {
	return render(answerExtractTemplate, map[string]interface{}{
		"Question": question.Text,
		"Field":    question.Field,
		"Answer":   answer,
	})
}

func BuildFinalPrompt(in FinalInput) (string, error) {
	answered := ""
	if len(in.AnsweredFields) > 0 {
		data, err := json.MarshalIndent(in.AnsweredFields, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode answered fields: %w", err)
		}
		answered = string(data)
	}
	return render(finalTemplate, map[string]interface{}{
		"Profile":        in.Profile,
		"AnsweredFields": answered,
		"Answers":        in.Answers,
		"PlanJSON":       in.PlanJSON,
		"PolicyText":     in.PolicyText,
		"SlotHint":       in.SlotHint,
	})
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func render(name string, data interface{}) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}
