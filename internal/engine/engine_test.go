package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"advisor-ai/internal/engine/mocks"
	"advisor-ai/internal/feedback"
	"advisor-ai/internal/generator"
	"advisor-ai/internal/retriever"
	"advisor-ai/internal/session"
	"advisor-ai/internal/websearch"
)

type fixture struct {
	classifier *mocks.MockClassifier
	retriever  *mocks.MockRetriever
	generator  *mocks.MockAnswerGenerator
	searcher   *mocks.MockWebSearcher
	learner    *feedback.Learner
	sessions   *session.Store
	engine     *Engine
}

func newFixture(t *testing.T, withSearcher bool) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		classifier: mocks.NewMockClassifier(ctrl),
		retriever:  mocks.NewMockRetriever(ctrl),
		generator:  mocks.NewMockAnswerGenerator(ctrl),
		learner:    feedback.NewLearner(0, nil),
		sessions:   session.NewStore(0, nil),
	}
	var searcher WebSearcher
	if withSearcher {
		f.searcher = mocks.NewMockWebSearcher(ctrl)
		searcher = f.searcher
	}
	f.engine = New(f.classifier, f.retriever, f.generator, searcher, f.learner, f.sessions)
	return f
}

func TestAnswerGroundedHighTier(t *testing.T) {
	f := newFixture(t, false)
	question := "Học phí FPT School bao nhiêu?"

	outcome := retriever.Outcome{
		Tier: retriever.TierHigh,
		Passages: []retriever.Passage{
			{Text: "Học phí năm 2025 là 25 triệu đồng mỗi học kỳ.", SourceLabel: "tuition.md", Score: 0.5},
		},
		SourceLabels: []string{"tuition.md"},
	}

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).Return(outcome, nil)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), generator.ConfidenceInput{
			Tier:      retriever.TierHigh,
			MeanScore: 0.5,
		}).
		Return(generator.Result{Text: "Học phí là 25 triệu đồng mỗi học kỳ.", Confidence: 0.7}, nil)

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.True(t, res.IsGrounded)
	assert.True(t, res.HasRelevantContent)
	assert.Equal(t, []string{"tuition.md"}, res.SourceLabels)
	assert.Equal(t, string(retriever.TierHigh), res.Tier)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
	assert.False(t, res.UsedWebSearch)
	assert.False(t, res.LearnedReuse)

	history := f.sessions.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, session.RoleUser, history[0].Role)
	assert.Equal(t, question, history[0].Content)
	assert.Equal(t, session.RoleAssistant, history[1].Role)
	require.NotNil(t, history[1].Grounded)
	assert.True(t, *history[1].Grounded)
	assert.Equal(t, []string{"tuition.md"}, history[1].SourceLabels)
}

func TestAnswerOffTopicSkipsRetrieval(t *testing.T) {
	f := newFixture(t, false)
	question := "Hôm nay thời tiết thế nào?"

	f.classifier.EXPECT().Classify(question).Return(false)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), generator.ConfidenceInput{Tier: retriever.TierNone}).
		Return(generator.Result{Text: "Mình không nắm thông tin thời tiết.", Confidence: 0.6}, nil)

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.False(t, res.IsGrounded)
	assert.False(t, res.HasRelevantContent)
	assert.Equal(t, []string{"general_knowledge"}, res.SourceLabels)
	assert.Equal(t, string(retriever.TierNone), res.Tier)
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
}

func TestAnswerNoneTierGetsGeneralKnowledgeLabel(t *testing.T) {
	f := newFixture(t, false)
	question := "Ngành an toàn thông tin học những gì?"

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).
		Return(retriever.Outcome{Tier: retriever.TierNone, UsedFallback: true}, nil)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(generator.Result{Text: "Ngành này gồm mật mã, mạng và pháp chứng số.", Confidence: 0.6}, nil)

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.Equal(t, []string{"general_knowledge"}, res.SourceLabels)
	assert.False(t, res.IsGrounded)
	assert.False(t, res.HasRelevantContent)
}

func TestAnswerLowTierKeepsSourceLabels(t *testing.T) {
	f := newFixture(t, false)
	question := "Chương trình học tiếng Anh thế nào?"

	outcome := retriever.Outcome{
		Tier: retriever.TierLow,
		Passages: []retriever.Passage{
			{Text: "Tiếng Anh học 10 tiết mỗi tuần.", SourceLabel: "english.md", Score: 0.08},
		},
		SourceLabels: []string{"english.md"},
		UsedFallback: true,
	}

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).Return(outcome, nil)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), generator.ConfidenceInput{
			Tier:      retriever.TierLow,
			MeanScore: 0.08,
		}).
		Return(generator.Result{Text: "Tiếng Anh được dạy 10 tiết mỗi tuần.", Confidence: 0.6}, nil)

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.Equal(t, string(retriever.TierLow), res.Tier)
	assert.True(t, res.IsGrounded)
	assert.True(t, res.HasRelevantContent)
	assert.Equal(t, []string{"english.md"}, res.SourceLabels)
}

func TestAnswerLearnedReuseShortCircuits(t *testing.T) {
	f := newFixture(t, false)
	question := "Điều kiện xét học bổng là gì?"

	f.learner.Record(context.Background(), question,
		"Học bổng xét theo điểm trung bình từ 8.0 trở lên.", feedback.RatingPositive, true)

	f.classifier.EXPECT().Classify(question).Return(true)
	// No Retrieve, no Answer expectations: the learned answer must bypass both.

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.True(t, res.LearnedReuse)
	assert.True(t, res.IsGrounded)
	assert.Equal(t, []string{"learned_response"}, res.SourceLabels)
	assert.InDelta(t, generator.ConfidenceLearned, res.Confidence, 1e-9)
	assert.Equal(t, "Học bổng xét theo điểm trung bình từ 8.0 trở lên.", res.Text)

	history := f.sessions.History("s1")
	require.Len(t, history, 2)
}

func TestAnswerRetrievalErrorDowngrades(t *testing.T) {
	f := newFixture(t, false)
	question := "Trường có ký túc xá không?"

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).
		Return(retriever.Outcome{}, errors.New("index unavailable"))
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), generator.ConfidenceInput{Tier: retriever.TierNone}).
		Return(generator.Result{Text: "Có, trường có ký túc xá cho học sinh.", Confidence: 0.6}, nil)

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.Equal(t, string(retriever.TierNone), res.Tier)
	assert.False(t, res.IsGrounded)
	assert.Equal(t, []string{"general_knowledge"}, res.SourceLabels)
}

func TestAnswerWebSearchAugments(t *testing.T) {
	f := newFixture(t, true)
	question := "Lương ngành trí tuệ nhân tạo hiện nay?"

	snippets := []websearch.Snippet{
		{Title: "Khảo sát lương", URL: "https://example.com/salary", Snippet: "Trung bình 30 triệu."},
	}

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).
		Return(retriever.Outcome{Tier: retriever.TierNone, UsedFallback: true}, nil)
	f.searcher.EXPECT().Search(gomock.Any(), question, 3).Return(snippets, nil)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), generator.ConfidenceInput{
			Tier:        retriever.TierNone,
			WebUsed:     true,
			WebSnippets: 1,
		}).
		Return(generator.Result{Text: "Mức lương phổ biến quanh 30 triệu đồng.", Confidence: 0.63}, nil)

	res := f.engine.Answer(context.Background(), Request{
		Question:         question,
		SessionID:        "s1",
		WebSearchEnabled: true,
	})

	assert.True(t, res.UsedWebSearch)
	assert.True(t, res.IsGrounded)
	assert.Equal(t, []string{"https://example.com/salary"}, res.WebSourceLabels)
	assert.Empty(t, res.SourceLabels)
}

func TestAnswerWebSearchErrorIsSwallowed(t *testing.T) {
	f := newFixture(t, true)
	question := "Xu hướng tuyển dụng lập trình viên?"

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).
		Return(retriever.Outcome{Tier: retriever.TierNone, UsedFallback: true}, nil)
	f.searcher.EXPECT().Search(gomock.Any(), question, 3).
		Return(nil, errors.New("searx down"))
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), generator.ConfidenceInput{
			Tier:    retriever.TierNone,
			WebUsed: true,
		}).
		Return(generator.Result{Text: "Nhu cầu tuyển dụng vẫn cao.", Confidence: 0.6}, nil)

	res := f.engine.Answer(context.Background(), Request{
		Question:         question,
		SessionID:        "s1",
		WebSearchEnabled: true,
	})

	assert.False(t, res.UsedWebSearch)
	assert.Empty(t, res.WebSourceLabels)
}

func TestAnswerGenerationErrorYieldsApology(t *testing.T) {
	f := newFixture(t, false)
	question := "Ngành thiết kế đồ họa cần kỹ năng gì?"

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).
		Return(retriever.Outcome{Tier: retriever.TierLow, Passages: []retriever.Passage{
			{Text: "Cần nền tảng mỹ thuật.", SourceLabel: "design.md", Score: 0.08},
		}, SourceLabels: []string{"design.md"}, UsedFallback: true}, nil)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(generator.Result{}, errors.New("llm timeout"))

	res := f.engine.Answer(context.Background(), Request{Question: question, SessionID: "s1"})

	assert.Equal(t, apologyAnswer, res.Text)
	assert.InDelta(t, generator.ConfidenceFailure, res.Confidence, 1e-9)
	assert.False(t, res.IsGrounded)

	// The failed turn still lands in conversation state.
	history := f.sessions.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, apologyAnswer, history[1].Content)
}

func TestAnswerSetsProfile(t *testing.T) {
	f := newFixture(t, false)
	question := "Em nên chọn ngành nào?"

	f.classifier.EXPECT().Classify(question).Return(true)
	f.retriever.EXPECT().Retrieve(gomock.Any(), question).
		Return(retriever.Outcome{Tier: retriever.TierNone, UsedFallback: true}, nil)
	f.generator.EXPECT().
		Answer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(generator.Result{Text: "Tùy vào sở thích của em.", Confidence: 0.6}, nil)

	f.engine.Answer(context.Background(), Request{
		Question:  question,
		SessionID: "s1",
		Profile:   &session.Profile{Name: "Minh", Role: "học sinh lớp 12"},
	})

	stored := f.sessions.Profile("s1")
	require.NotNil(t, stored)
	assert.Equal(t, "Minh", stored.Name)
}
