// internal/models/conversation.go
package models

// PlanQuestion is a clarifying question as emitted by the model.
type PlanQuestion struct {
	Field    string `json:"field"`
	Question string `json:"question"`
}

// Plan is the structured output of the PLAN step.
type Plan struct {
	CertainConditions   []string       `json:"certain_conditions"`
	UncertainConditions []string       `json:"uncertain_conditions"`
	Questions           []PlanQuestion `json:"questions"`
	ActionCandidates    []string       `json:"action_candidates"`
}

// Analysis is the preliminary analysis: the decoded plan plus the JSON it
// was decoded from, which is fed back into the final prompt.
type Analysis struct {
	Plan Plan   `json:"plan"`
	Raw  string `json:"raw"`
}

type Question struct {
	Index int    `json:"index"`
	Field string `json:"field,omitempty"`
	Text  string `json:"text"`
}

type QAPair struct {
	Question Question `json:"question"`
	Answer   string   `json:"answer"`
}

// ConversationState accumulates one run. Answers are append-only.
type ConversationState struct {
	RunID          string            `json:"runId"`
	Analysis       *Analysis         `json:"analysis,omitempty"`
	Questions      []Question        `json:"questions"`
	Answers        []QAPair          `json:"answers"`
	AnsweredFields map[string]string `json:"answeredFields,omitempty"`
	FinalOutput    string            `json:"finalOutput,omitempty"`
}

func NewConversationState(runID string) *ConversationState {
	return &ConversationState{
		RunID:          runID,
		Questions:      []Question{},
		Answers:        []QAPair{},
		AnsweredFields: map[string]string{},
	}
}

func (c *ConversationState) AddAnswer(q Question, answer string) {
	c.Answers = append(c.Answers, QAPair{Question: q, Answer: answer})
}

// MergeFields records profile fields derived from an answer. Later values
// win for a repeated key.
func (c *ConversationState) MergeFields(fields map[string]string) {
	if c.AnsweredFields == nil {
		c.AnsweredFields = map[string]string{}
	}
	for k, v := range fields {
		c.AnsweredFields[k] = v
	}
}
