package agent

import (
	"context"
	"fmt"
	"sync"

	"policy-navigator/internal/models"
)

type fakeParser struct {
	doc   *models.PolicyDocument
	err   error
	calls int
}

func (f *fakeParser) Parse(_ context.Context, path string) (*models.PolicyDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.SourcePath = path
	return &doc, nil
}

type fakeExtractor struct {
	slots models.SlotMapping
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, string) (models.SlotMapping, error) {
	f.calls++
	return f.slots, f.err
}

type reply struct {
	text string
	err  error
}

type inferCall struct {
	stage  string
	prompt string
}

// scriptedReasoner replays replies per stage in order.
type scriptedReasoner struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []inferCall
}

func newScriptedReasoner() *scriptedReasoner {
	return &scriptedReasoner{replies: map[string][]reply{}}
}

func (s *scriptedReasoner) on(stage, text string, err error) *scriptedReasoner {
	s.replies[stage] = append(s.replies[stage], reply{text: text, err: err})
	return s
}

func (s *scriptedReasoner) Infer(_ context.Context, stage, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, inferCall{stage: stage, prompt: prompt})
	queue := s.replies[stage]
	if len(queue) == 0 {
		return "", fmt.Errorf("unexpected %s call", stage)
	}
	next := queue[0]
	s.replies[stage] = queue[1:]
	return next.text, next.err
}

func (s *scriptedReasoner) stages() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.stage
	}
	return out
}

func (s *scriptedReasoner) prompt(stage string) string {
	for _, c := range s.calls {
		if c.stage == stage {
			return c.prompt
		}
	}
	return ""
}

type scriptedAnswers struct {
	answers []string
	err     error
	asked   []models.Question
	totals  []int
}

func (s *scriptedAnswers) Answer(_ context.Context, q models.Question, total int) (string, error) {
	s.asked = append(s.asked, q)
	s.totals = append(s.totals, total)
	if s.err != nil {
		return "", s.err
	}
	if len(s.asked) > len(s.answers) {
		return "", fmt.Errorf("no answer scripted for question %d", q.Index)
	}
	return s.answers[len(s.asked)-1], nil
}
