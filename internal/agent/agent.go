// Package agent drives one policy consultation: parse the document, plan,
// ask at most one round of clarifying questions, then produce the final
// five-section report.
package agent

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/common/logger"
	"policy-navigator/internal/common/metrics"
	"policy-navigator/internal/common/observability"
	"policy-navigator/internal/common/validation"
	"policy-navigator/internal/models"
	"policy-navigator/internal/prompts"
	"policy-navigator/internal/report"
	"policy-navigator/pkg/registry"
)

// EmbeddedSourcePath is the SourcePath of the bundled sample document.
const EmbeddedSourcePath = "embedded:sample"

type Options struct {
	// FilterQuestions asks the model to drop questions the profile already
	// answers.
	FilterQuestions bool
	// ExtractAnswerFields converts each answer into profile fields for the
	// final prompt.
	ExtractAnswerFields bool
	PlanTextLimit       int
}

type Dependencies struct {
	Parser DocumentParser
	// Extractor is optional.
	Extractor     SlotExtractor
	Reasoner      Reasoner
	Answers       AnswerSource
	Observability *observability.Observability
	// Registry defaults to registry.Default().
	Registry *registry.SchemaRegistry
}

type Agent struct {
	parser    DocumentParser
	extractor SlotExtractor
	reasoner  Reasoner
	answers   AnswerSource
	obs       *observability.Observability

	planSchema      *validation.Validator
	questionsSchema *validation.Validator
	fieldsSchema    *validation.Validator

	opts   Options
	logger logger.Logger
	newID  func() string
}

func New(deps Dependencies, opts Options, log logger.Logger) (*Agent, error) {
	if deps.Reasoner == nil || deps.Answers == nil {
		return nil, apperrors.NewInternalError(errors.New("agent needs a reasoner and an answer source"))
	}
	reg := deps.Registry
	if reg == nil {
		reg = registry.Default()
	}

	a := &Agent{
		parser:    deps.Parser,
		extractor: deps.Extractor,
		reasoner:  deps.Reasoner,
		answers:   deps.Answers,
		obs:       deps.Observability,
		opts:      opts,
		logger:    log,
		newID:     uuid.NewString,
	}
	var err error
	if a.planSchema, err = reg.Validator(registry.PlanResponse); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if a.questionsSchema, err = reg.Validator(registry.PlanQuestions); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if a.fieldsSchema, err = reg.Validator(registry.AnswerFields); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return a, nil
}

// Request describes one run. Exactly one of DocumentPath and UseSample
// selects the document.
type Request struct {
	Profile      *models.Profile
	DocumentPath string
	UseSample    bool
}

// Result is what a run leaves behind. Report is nil unless State is DONE.
type Result struct {
	RunID        string
	State        State
	History      []Transition
	Document     *models.PolicyDocument
	Conversation *models.ConversationState
	Report       *models.FinalReport
}

// run holds the mutable state of one Run call.
type run struct {
	agent   *Agent
	req     Request
	result  *Result
	profile string
	logger  logger.Logger
}

// Run executes the state machine to completion. On failure the returned
// Result is in state FAILED with no report, and the error is a
// *errors.StandardError.
func (a *Agent) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Profile == nil {
		return nil, apperrors.NewMalformedProfileError("no profile given")
	}

	runID := a.newID()
	r := &run{
		agent: a,
		req:   req,
		result: &Result{
			RunID:        runID,
			State:        StateParse,
			History:      []Transition{},
			Conversation: models.NewConversationState(runID),
		},
		profile: req.Profile.Structured(),
		logger:  a.logger.With(map[string]interface{}{"runId": runID}),
	}
	if r.profile == "" {
		r.profile = req.Profile.Raw
	}

	started := time.Now()
	ctx, span := a.obs.StartSpan(ctx, "policy-navigator.run", attribute.String("run.id", runID))
	err := r.execute(ctx)
	observability.EndSpan(span, err)

	if err != nil {
		stdErr := apperrors.Normalize(err)
		r.fail(stdErr)
		a.obs.RecordRun(context.WithoutCancel(ctx), string(StateFailed), string(stdErr.Code), time.Since(started))
		return r.result, stdErr
	}
	metrics.RunsFinished.WithLabelValues(string(StateDone), "").Inc()
	a.obs.RecordRun(ctx, string(StateDone), "", time.Since(started))
	r.logger.Info("run finished", map[string]interface{}{
		"questions": len(r.result.Conversation.Questions),
	})
	return r.result, nil
}

func (r *run) execute(ctx context.Context) error {
	steps := []struct {
		state State
		fn    func(context.Context) (State, error)
	}{
		{StateParse, r.parse},
		{StatePlan, r.plan},
		{StateAwaitAnswers, r.awaitAnswers},
		{StateFinal, r.final},
	}

	for _, step := range steps {
		if r.result.State != step.state {
			continue
		}
		stepStarted := time.Now()
		stepCtx, span := r.agent.obs.StartSpan(ctx, "state."+string(step.state))
		next, err := step.fn(stepCtx)
		observability.EndSpan(span, err)
		r.agent.obs.RecordStateDuration(context.WithoutCancel(ctx), string(step.state), time.Since(stepStarted), err)
		if err != nil {
			return err
		}
		if err := r.transition(next); err != nil {
			return err
		}
	}
	if r.result.State != StateDone {
		return apperrors.NewInvalidStateTransitionError(string(r.result.State), string(StateDone))
	}
	return nil
}

func (r *run) transition(to State) error {
	from := r.result.State
	if !CanTransition(from, to) {
		return apperrors.NewInvalidStateTransitionError(string(from), string(to))
	}
	r.result.State = to
	r.result.History = append(r.result.History, Transition{From: from, To: to, At: time.Now().UTC()})
	metrics.StateTransitions.WithLabelValues(string(from), string(to)).Inc()
	r.logger.Info("state transition", map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	return nil
}

func (r *run) fail(err *apperrors.StandardError) {
	if !r.result.State.Terminal() {
		if transErr := r.transition(StateFailed); transErr != nil {
			r.logger.WithError(transErr).Error("could not record failure", nil)
		}
	}
	r.result.Report = nil
	metrics.RunsFinished.WithLabelValues(string(StateFailed), string(err.Code)).Inc()
	r.logger.Error("run failed", map[string]interface{}{
		"code":     string(err.Code),
		"category": string(err.Category()),
		"error":    err.Error(),
	})
}

func (r *run) parse(ctx context.Context) (State, error) {
	if r.req.UseSample {
		r.result.Document = &models.PolicyDocument{
			SourcePath: EmbeddedSourcePath,
			Text:       prompts.SamplePolicyText(),
			Slots:      models.SlotMapping{},
			Embedded:   true,
		}
		r.logger.Info("using embedded sample policy", nil)
		return StatePlan, nil
	}

	path := r.req.DocumentPath
	if err := checkDocument(path); err != nil {
		return "", err
	}
	if r.agent.parser == nil {
		return "", apperrors.NewInternalError(errors.New("no document parser configured"))
	}

	doc, err := r.agent.parser.Parse(ctx, path)
	if err != nil {
		return "", err
	}
	doc.Slots = r.extractSlots(ctx, path)
	r.result.Document = doc
	return StatePlan, nil
}

// checkDocument rejects a missing or unreadable path before any network call.
func checkDocument(path string) error {
	if path == "" {
		return apperrors.NewMissingFileError(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.NewMissingFileError(path)
		}
		return apperrors.NewUnreadableFileError(path, err)
	}
	if info.IsDir() {
		return apperrors.NewUnreadableFileError(path, errors.New("is a directory"))
	}
	return nil
}

func (r *run) extractSlots(ctx context.Context, path string) models.SlotMapping {
	if r.agent.extractor == nil {
		return models.SlotMapping{}
	}
	ctx, span := r.agent.obs.StartSpan(ctx, "capability.extract")
	slots, err := r.agent.extractor.Extract(ctx, path)
	observability.EndSpan(span, err)
	if err != nil {
		r.logger.WithError(err).Warn("slot extraction failed; continuing without slots", nil)
		return models.SlotMapping{}
	}
	if slots == nil {
		slots = models.SlotMapping{}
	}
	return slots
}

func (r *run) plan(ctx context.Context) (State, error) {
	doc := r.result.Document
	prompt, err := prompts.BuildPlanPrompt(prompts.PlanInput{
		Profile:    r.profile,
		PolicyText: doc.Text,
		SlotHint:   doc.Slots.Hint(),
		TextLimit:  r.agent.opts.PlanTextLimit,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	raw, err := r.agent.reasoner.Infer(ctx, "plan", prompt)
	if err != nil {
		return "", err
	}
	analysis, err := r.agent.decodePlan(raw)
	if err != nil {
		return "", err
	}
	r.result.Conversation.Analysis = analysis

	candidates := nonEmptyQuestions(analysis.Plan.Questions)
	if r.agent.opts.FilterQuestions && len(candidates) > 0 {
		candidates = r.filterQuestions(ctx, candidates)
	}

	questions := make([]models.Question, 0, len(candidates))
	for i, q := range candidates {
		questions = append(questions, models.Question{Index: i, Field: q.Field, Text: q.Question})
	}
	r.result.Conversation.Questions = questions
	metrics.ClarifyingQuestions.Set(float64(len(questions)))

	r.logger.Info("plan ready", map[string]interface{}{
		"certain":    len(analysis.Plan.CertainConditions),
		"uncertain":  len(analysis.Plan.UncertainConditions),
		"questions":  len(questions),
		"candidates": len(analysis.Plan.ActionCandidates),
	})

	if len(questions) == 0 {
		return StateFinal, nil
	}
	return StateAwaitAnswers, nil
}

func (r *run) awaitAnswers(ctx context.Context) (State, error) {
	conv := r.result.Conversation
	total := len(conv.Questions)
	for _, q := range conv.Questions {
		answer, err := r.agent.answers.Answer(ctx, q, total)
		if err != nil {
			return "", err
		}
		conv.AddAnswer(q, answer)

		if r.agent.opts.ExtractAnswerFields && answer != "" {
			if fields := r.extractAnswerFields(ctx, q, answer); len(fields) > 0 {
				conv.MergeFields(fields)
			}
		}
	}
	return StateFinal, nil
}

func (r *run) final(ctx context.Context) (State, error) {
	conv := r.result.Conversation
	doc := r.result.Document

	prompt, err := prompts.BuildFinalPrompt(prompts.FinalInput{
		Profile:        r.profile,
		PolicyText:     doc.Text,
		PlanJSON:       conv.Analysis.Raw,
		AnsweredFields: conv.AnsweredFields,
		Answers:        conv.Answers,
		SlotHint:       doc.Slots.Hint(),
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	raw, err := r.agent.reasoner.Infer(ctx, "final", prompt)
	if err != nil {
		return "", err
	}
	conv.FinalOutput = raw

	rep, err := report.Parse(raw)
	if err != nil {
		return "", err
	}
	if len(rep.MissingSections) > 0 {
		r.logger.Warn("final report is missing sections", map[string]interface{}{
			"missing": rep.MissingSections,
		})
	}
	r.result.Report = rep
	return StateDone, nil
}
