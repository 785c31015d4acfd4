package ask_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/yoga-rag/internal/core/answer"
	"github.com/jinford/yoga-rag/internal/core/ask"
	"github.com/jinford/yoga-rag/internal/core/corpus"
	"github.com/jinford/yoga-rag/internal/core/search"
	"github.com/jinford/yoga-rag/internal/core/triage"
)

type stubClassifier struct {
	classifyFunc func(ctx context.Context, prompt string) (string, error)
}

func (s *stubClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	if s.classifyFunc != nil {
		return s.classifyFunc(ctx, prompt)
	}
	return "", errors.New("classifier not configured")
}

type stubGenerator struct {
	generateFunc func(ctx context.Context, prompt string, model string) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, model string) (string, error) {
	if s.generateFunc != nil {
		return s.generateFunc(ctx, prompt, model)
	}
	return "generated answer", nil
}

type stubEmbedder struct{}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, float32(i) * 0.1, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) MaxBatchSize() int { return 0 }

type memoryStore struct {
	saved []corpus.EmbeddedDocument
}

func (s *memoryStore) Save(ctx context.Context, docs []corpus.EmbeddedDocument) error {
	s.saved = docs
	return nil
}

func (s *memoryStore) Load(ctx context.Context) ([]corpus.EmbeddedDocument, bool, error) {
	if s.saved == nil {
		return nil, false, nil
	}
	return s.saved, true, nil
}

// pipelineFixture は質問応答パイプライン一式をスタブ依存で組み立てる
type pipelineFixture struct {
	classifier *stubClassifier
	generator  *stubGenerator
	service    *ask.AskService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	ctx := context.Background()

	classifier := &stubClassifier{}
	generator := &stubGenerator{}

	index := search.NewIndex(&stubEmbedder{}, &memoryStore{})
	_, err := index.Build(ctx, []corpus.Document{
		{ID: "doc-1", Title: "Pranayama", Source: "protocol", Info: "Breath control practice."},
		{ID: "doc-2", Title: "Tadasana", Source: "protocol", Info: "Standing mountain pose."},
		{ID: "doc-3", Title: "Shavasana", Source: "protocol", Info: "Corpse pose relaxation."},
	})
	require.NoError(t, err)

	safety := triage.NewSafetyService(classifier)
	reviewer := triage.NewReviewService(classifier, safety)

	synthesizer, err := answer.NewService(generator, []string{"model-a", "model-b"})
	require.NoError(t, err)

	service := ask.NewAskService(reviewer, safety, index, synthesizer)

	return &pipelineFixture{
		classifier: classifier,
		generator:  generator,
		service:    service,
	}
}

// answerableReview は answerable 判定のJSON応答を返す分類スタブを設定する
func (f *pipelineFixture) answerableReview() {
	f.classifier.classifyFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"isYogaRelated": true, "isUnsafe": false, "intent": "answerable", "detectedCategories": [], "confidence": 0.95, "reason": "yoga question"}`, nil
	}
}

func TestAskService_Ask_Answerable(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.answerableReview()
	f.generator.generateFunc = func(ctx context.Context, prompt string, model string) (string, error) {
		return "## Overview\nPranayama is breath control.", nil
	}

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "what is pranayama?"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, triage.IntentAnswerable, result.Intent)
	assert.Equal(t, "## Overview\nPranayama is breath control.", result.Answer)
	assert.Equal(t, "model-a", result.Model)
	assert.False(t, result.Fallback)
	assert.Len(t, result.Sources, 3)
	assert.NotEqual(t, "", result.RequestID.String())
}

func TestAskService_Ask_Greeting(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.classifier.classifyFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"isYogaRelated": false, "isUnsafe": false, "intent": "greeting", "detectedCategories": [], "confidence": 0.99, "reason": "greeting"}`, nil
	}

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "hello there"})

	// Assert: 検索も生成も行わず定型応答を返す
	require.NoError(t, err)
	assert.Equal(t, triage.IntentGreeting, result.Intent)
	assert.Contains(t, result.Answer, "Namaste")
	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Model)
}

func TestAskService_Ask_OffTopic(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.classifier.classifyFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"isYogaRelated": false, "isUnsafe": false, "intent": "off_topic", "detectedCategories": [], "confidence": 0.9, "reason": "not yoga"}`, nil
	}

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "how do I fix my car?"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, triage.IntentOffTopic, result.Intent)
	assert.Contains(t, result.Answer, "specialized in Yoga")
	assert.Empty(t, result.Sources)
}

func TestAskService_Ask_Unsafe(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.classifier.classifyFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"isYogaRelated": true, "isUnsafe": true, "intent": "unsafe", "detectedCategories": ["pregnancy"], "confidence": 0.92, "reason": "mentions pregnancy"}`, nil
	}

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "can I do yoga while pregnant?"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, triage.IntentUnsafe, result.Intent)
	assert.Contains(t, result.Answer, "IMPORTANT SAFETY NOTICE")
	assert.Contains(t, result.Answer, "Medical Disclaimer")
	assert.Empty(t, result.Sources)
}

func TestAskService_Ask_Unsafe_CategoriesSupplementedByKeywords(t *testing.T) {
	// Setup: 分類器が unsafe とだけ返しカテゴリを空にした場合
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.classifier.classifyFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("unavailable")
	}

	// Execute: フォールバック経路でキーワード検出が補完する
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "yoga poses after recent surgery"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, triage.IntentUnsafe, result.Intent)
	assert.Contains(t, result.Review.DetectedCategories, "surgery")
	assert.Contains(t, result.Answer, "IMPORTANT SAFETY NOTICE")
}

func TestAskService_Ask_GenerationExhaustion_TemplateFallback(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.answerableReview()
	f.generator.generateFunc = func(ctx context.Context, prompt string, model string) (string, error) {
		return "", errors.New("all models down")
	}

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "what is pranayama?"})

	// Assert: 生成が全滅してもリクエストは成功し、テンプレート回答になる
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Empty(t, result.Model)
	assert.NotEmpty(t, result.Answer)
	assert.Len(t, result.Sources, 3)
}

func TestAskService_Ask_TopKLimitsSources(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.answerableReview()

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: "what is pranayama?", TopK: 1})

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Sources, 1)
}

func TestAskService_Ask_EmptyQuery(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: ""})

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "query is required")
}

func TestAskService_Ask_QueryTooLong(t *testing.T) {
	// Setup
	ctx := context.Background()
	f := newPipelineFixture(t)

	long := strings.Repeat("a", ask.DefaultMaxQueryLength+1)

	// Execute
	result, err := f.service.Ask(ctx, ask.AskParams{Query: long})

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), fmt.Sprintf("maximum length of %d", ask.DefaultMaxQueryLength))
}

func TestAskService_Ask_SearchNotInitialized(t *testing.T) {
	// Setup: インデックス未構築のパイプライン
	ctx := context.Background()
	classifier := &stubClassifier{
		classifyFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"isYogaRelated": true, "isUnsafe": false, "intent": "answerable", "detectedCategories": [], "confidence": 0.95, "reason": ""}`, nil
		},
	}
	index := search.NewIndex(&stubEmbedder{}, &memoryStore{})
	safety := triage.NewSafetyService(classifier)
	reviewer := triage.NewReviewService(classifier, safety)
	synthesizer, err := answer.NewService(&stubGenerator{}, []string{"model-a"})
	require.NoError(t, err)

	service := ask.NewAskService(reviewer, safety, index, synthesizer)

	// Execute
	result, err := service.Ask(ctx, ask.AskParams{Query: "what is pranayama?"})

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, search.ErrNotInitialized)
}
