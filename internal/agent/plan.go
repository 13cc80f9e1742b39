// internal/agent/plan.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/models"
	"policy-navigator/internal/prompts"
)

// decodePlan validates the PLAN reply against the plan schema and decodes it.
func (a *Agent) decodePlan(raw string) (*models.Analysis, error) {
	doc := extractJSON(raw, '{')
	res, err := a.planSchema.ValidateJSON([]byte(doc))
	if err != nil {
		return nil, apperrors.NewResponseMalformedError("plan", "reply is not JSON")
	}
	if !res.Valid {
		return nil, apperrors.NewResponseMalformedError("plan", strings.Join(res.GetErrorMessages(), "; "))
	}

	var plan models.Plan
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return nil, apperrors.NewResponseMalformedError("plan", err.Error())
	}
	if plan.CertainConditions == nil {
		plan.CertainConditions = []string{}
	}
	if plan.UncertainConditions == nil {
		plan.UncertainConditions = []string{}
	}
	if plan.Questions == nil {
		plan.Questions = []models.PlanQuestion{}
	}
	if plan.ActionCandidates == nil {
		plan.ActionCandidates = []string{}
	}
	return &models.Analysis{Plan: plan, Raw: doc}, nil
}

func nonEmptyQuestions(in []models.PlanQuestion) []models.PlanQuestion {
	out := make([]models.PlanQuestion, 0, len(in))
	for _, q := range in {
		q.Question = strings.TrimSpace(q.Question)
		q.Field = strings.TrimSpace(q.Field)
		if q.Question == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

// filterQuestions drops questions the profile already answers. The filter
// can only remove questions and the original order is kept. Kept items are
// matched to the asked questions by text, ignoring spacing and punctuation,
// or by field. A reply that names a question nobody asked counts as a
// failure, and on any failure the input is returned unchanged.
func (r *run) filterQuestions(ctx context.Context, questions []models.PlanQuestion) []models.PlanQuestion {
	kept, err := r.runQuestionFilter(ctx, questions)
	if err == nil {
		var keep []bool
		keep, err = matchKept(questions, kept)
		if err == nil {
			out := make([]models.PlanQuestion, 0, len(questions))
			for i, q := range questions {
				if keep[i] {
					out = append(out, q)
				}
			}
			if dropped := len(questions) - len(out); dropped > 0 {
				r.logger.Info("questions answered by profile removed", map[string]interface{}{
					"dropped": dropped,
				})
			}
			return out
		}
	}
	r.logger.WithError(err).Warn("question filter failed; keeping all questions", nil)
	return questions
}

// matchKept marks which asked questions the filter kept.
func matchKept(asked, kept []models.PlanQuestion) ([]bool, error) {
	keep := make([]bool, len(asked))
	for _, k := range kept {
		text := normalizeQuestion(k.Question)
		field := strings.TrimSpace(k.Field)
		matched := false
		for i, q := range asked {
			if (text != "" && normalizeQuestion(q.Question) == text) || (field != "" && q.Field == field) {
				keep[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("filter returned a question that was not asked: %q", k.Question)
		}
	}
	return keep, nil
}

// normalizeQuestion keeps only letters and digits.
func normalizeQuestion(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func (r *run) runQuestionFilter(ctx context.Context, questions []models.PlanQuestion) ([]models.PlanQuestion, error) {
	prompt, err := prompts.BuildQuestionFilterPrompt(r.profile, questions)
	if err != nil {
		return nil, err
	}
	raw, err := r.agent.reasoner.Infer(ctx, "question-filter", prompt)
	if err != nil {
		return nil, err
	}

	doc := extractJSON(raw, '[')
	res, err := r.agent.questionsSchema.ValidateJSON([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("filter reply is not JSON: %w", err)
	}
	if !res.Valid {
		return nil, fmt.Errorf("filter reply does not match schema: %s", strings.Join(res.GetErrorMessages(), "; "))
	}
	var kept []models.PlanQuestion
	if err := json.Unmarshal([]byte(doc), &kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// extractAnswerFields turns one answer into profile fields. Failures are
// logged and yield no fields.
func (r *run) extractAnswerFields(ctx context.Context, q models.Question, answer string) map[string]string {
	prompt, err := prompts.BuildAnswerExtractPrompt(q, answer)
	if err != nil {
		r.logger.WithError(err).Warn("answer extraction prompt failed", nil)
		return nil
	}
	raw, err := r.agent.reasoner.Infer(ctx, "answer-extract", prompt)
	if err != nil {
		r.logger.WithError(err).Warn("answer extraction failed", map[string]interface{}{
			"question": q.Index,
		})
		return nil
	}

	doc := extractJSON(raw, '{')
	res, err := r.agent.fieldsSchema.ValidateJSON([]byte(doc))
	if err != nil || !res.Valid {
		r.logger.Warn("answer extraction reply unusable", map[string]interface{}{"question": q.Index})
		return nil
	}
	var fields map[string]string
	if err := json.Unmarshal([]byte(doc), &fields); err != nil {
		return nil
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			delete(fields, k)
		}
	}
	return fields
}
