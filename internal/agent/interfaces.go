// internal/agent/interfaces.go
package agent

import (
	"context"

	"policy-navigator/internal/models"
)

// DocumentParser turns the document at path into policy text.
type DocumentParser interface {
	Parse(ctx context.Context, path string) (*models.PolicyDocument, error)
}

// SlotExtractor pulls an advisory field mapping out of a document. Its
// failures never stop a run.
type SlotExtractor interface {
	Extract(ctx context.Context, path string) (models.SlotMapping, error)
}

// Reasoner sends a prompt to the language model. stage names the step the
// call belongs to.
type Reasoner interface {
	Infer(ctx context.Context, stage, prompt string) (string, error)
}

// AnswerSource supplies the user's answer to one clarifying question.
type AnswerSource interface {
	Answer(ctx context.Context, q models.Question, total int) (string, error)
}
