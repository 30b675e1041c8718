// Package engine orchestrates one question-answering turn: classification,
// learned-answer reuse, tiered retrieval, optional web augmentation, prompt
// assembly, generation, and conversation-state update. No error escapes
// Answer; every failure mode folds into the returned result.
package engine

import (
	"context"
	"math/rand/v2"
	"strings"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/generator"
	"advisor-ai/internal/metrics"
	"advisor-ai/internal/prompt"
	"advisor-ai/internal/retriever"
	"advisor-ai/internal/session"
	"advisor-ai/internal/websearch"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mocks.go -package=mocks advisor-ai/internal/engine Classifier,Retriever,AnswerGenerator,WebSearcher

// webSnippetCount is how many web snippets augment a grounded answer.
const webSnippetCount = 3

// historyTurns is how many recent turns are handed to the prompt builder,
// which applies its own grounding filter and window.
const historyTurns = 6

// apologyAnswer is the only user-visible trace of a generation failure.
const apologyAnswer = "Xin lỗi, hiện tại mình chưa thể trả lời câu hỏi này. Bạn vui lòng thử lại sau một lát nhé."

// generalKnowledgeLabel marks answers produced without any retrieved or
// learned content.
const generalKnowledgeLabel = "general_knowledge"

// learnedResponseLabel marks reused human-approved answers.
const learnedResponseLabel = "learned_response"

// Classifier routes questions to the grounded pipeline.
type Classifier interface {
	Classify(question string) bool
}

// Retriever fetches supporting passages.
type Retriever interface {
	Retrieve(ctx context.Context, question string) (retriever.Outcome, error)
}

// AnswerGenerator produces an answer with derived confidence.
type AnswerGenerator interface {
	Answer(ctx context.Context, promptText string, in generator.ConfidenceInput) (generator.Result, error)
}

// WebSearcher provides best-effort web augmentation.
type WebSearcher interface {
	Search(ctx context.Context, query string, k int) ([]websearch.Snippet, error)
}

// Learner supplies reusable human-approved answers.
type Learner interface {
	Lookup(question string) []string
}

// Request is one question turn.
type Request struct {
	Question         string
	SessionID        string
	WebSearchEnabled bool
	Profile          *session.Profile
}

// Result is the answer returned per question. Its grounding and source
// fields are also written into the conversation turn.
type Result struct {
	Text               string
	SourceLabels       []string
	WebSourceLabels    []string
	IsGrounded         bool
	HasRelevantContent bool
	Confidence         float64
	UsedWebSearch      bool
	Tier               string
	LearnedReuse       bool
}

// Service is the question-answering entry point consumed by the HTTP layer.
type Service interface {
	Answer(ctx context.Context, req Request) Result
}

// Engine wires the pipeline components. All collaborators are injected at
// construction; nothing here branches on demo-vs-live.
type Engine struct {
	classifier Classifier
	retriever  Retriever
	generator  AnswerGenerator
	searcher   WebSearcher // nil when web search is not configured
	learner    Learner
	sessions   *session.Store
}

// New creates an Engine. searcher may be nil.
func New(c Classifier, r Retriever, g AnswerGenerator, s WebSearcher, l Learner, sessions *session.Store) *Engine {
	return &Engine{
		classifier: c,
		retriever:  r,
		generator:  g,
		searcher:   s,
		learner:    l,
		sessions:   sessions,
	}
}

// Answer processes one question. The sequence is strictly sequential:
// classify, learned-answer lookup, retrieve, web search, assemble,
// generate, record. Retrieval failures downgrade to tier none, web search
// failures are swallowed, and generation failures yield the apology
// answer; the turn is always appended to conversation state.
func (e *Engine) Answer(ctx context.Context, req Request) Result {
	logger := contextutil.LoggerFromContext(ctx)
	question := strings.TrimSpace(req.Question)

	if req.Profile != nil {
		e.sessions.SetProfile(req.SessionID, *req.Profile)
	}
	profile := e.sessions.Profile(req.SessionID)
	turns := e.sessions.Recent(req.SessionID, historyTurns)

	grounded := e.classifier.Classify(question)
	logger.InfoContext(ctx, "question classified",
		"session_id", req.SessionID,
		"grounded", grounded,
		"web_search", req.WebSearchEnabled,
	)

	if grounded {
		if candidates := e.learner.Lookup(question); len(candidates) > 0 {
			// A human-approved answer outranks a fresh generation; skip
			// retrieval and generation entirely.
			res := Result{
				Text:               candidates[rand.IntN(len(candidates))],
				SourceLabels:       []string{learnedResponseLabel},
				IsGrounded:         true,
				HasRelevantContent: true,
				Confidence:         generator.ConfidenceLearned,
				LearnedReuse:       true,
			}
			logger.InfoContext(ctx, "reusing learned answer", "candidates", len(candidates))
			metrics.LearnedReuseTotal.Inc()
			e.remember(ctx, req.SessionID, question, res)
			return res
		}
	}

	outcome := retriever.Outcome{Tier: retriever.TierNone, UsedFallback: true}
	if grounded {
		out, err := e.retriever.Retrieve(ctx, question)
		if err != nil {
			// Retrieval trouble is not a hard failure: answer from open
			// generation as if no documents matched.
			logger.WarnContext(ctx, "retrieval failed, downgrading to tier none", "error", err)
			metrics.RetrievalFailuresTotal.Inc()
		} else {
			outcome = out
		}
	}

	var snippets []websearch.Snippet
	webAttempted := grounded && req.WebSearchEnabled && e.searcher != nil
	if webAttempted {
		s, err := e.searcher.Search(ctx, question, webSnippetCount)
		if err != nil {
			logger.WarnContext(ctx, "web search failed, continuing without it", "error", err)
			metrics.WebSearchTotal.WithLabelValues("error").Inc()
		} else {
			snippets = s
			metrics.WebSearchTotal.WithLabelValues("ok").Inc()
		}
	}

	var outcomeForPrompt *retriever.Outcome
	if grounded {
		outcomeForPrompt = &outcome
	}
	promptText := prompt.Build(prompt.Input{
		Question:    question,
		Turns:       turns,
		Outcome:     outcomeForPrompt,
		WebSnippets: snippets,
		Profile:     profile,
	})

	genRes, err := e.generator.Answer(ctx, promptText, generator.ConfidenceInput{
		Tier:        outcome.Tier,
		MeanScore:   outcome.MeanScore(),
		WebUsed:     webAttempted,
		WebSnippets: len(snippets),
	})
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		metrics.GenerationFailuresTotal.Inc()
		res := Result{
			Text:       apologyAnswer,
			Confidence: generator.ConfidenceFailure,
			Tier:       string(outcome.Tier),
		}
		e.remember(ctx, req.SessionID, question, res)
		return res
	}

	res := Result{
		Text:               genRes.Text,
		Confidence:         genRes.Confidence,
		IsGrounded:         grounded && (outcome.HasRelevantContent() || len(snippets) > 0),
		HasRelevantContent: outcome.HasRelevantContent(),
		UsedWebSearch:      len(snippets) > 0,
		Tier:               string(outcome.Tier),
	}
	res.SourceLabels = outcome.SourceLabels
	if len(res.SourceLabels) == 0 && len(snippets) == 0 {
		res.SourceLabels = []string{generalKnowledgeLabel}
	}
	for _, s := range snippets {
		res.WebSourceLabels = append(res.WebSourceLabels, s.URL)
	}

	metrics.AnswersTotal.WithLabelValues(res.Tier, boolLabel(res.IsGrounded)).Inc()
	e.remember(ctx, req.SessionID, question, res)
	return res
}

// remember appends the exchange to conversation state. Both the question
// and the answer are recorded, the answer with its grounding metadata.
func (e *Engine) remember(ctx context.Context, sessionID, question string, res Result) {
	e.sessions.Append(ctx, sessionID, session.Turn{
		Role:    session.RoleUser,
		Content: question,
	})
	grounded := res.IsGrounded
	e.sessions.Append(ctx, sessionID, session.Turn{
		Role:         session.RoleAssistant,
		Content:      res.Text,
		Grounded:     &grounded,
		SourceLabels: res.SourceLabels,
	})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
