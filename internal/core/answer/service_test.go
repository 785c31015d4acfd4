package answer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/yoga-rag/internal/core/answer"
	"github.com/jinford/yoga-rag/internal/core/corpus"
	"github.com/jinford/yoga-rag/internal/core/search"
)

type stubGenerator struct {
	generateFunc func(ctx context.Context, prompt string, model string) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, model string) (string, error) {
	if s.generateFunc != nil {
		return s.generateFunc(ctx, prompt, model)
	}
	return "generated answer", nil
}

func testResults() []search.ScoredResult {
	return []search.ScoredResult{
		{
			Document: corpus.Document{
				ID:          "doc-1",
				Title:       "Pranayama",
				Source:      "protocol",
				Info:        "Breath control practice.",
				Precautions: "Avoid breath retention with hypertension.",
			},
			Score: 0.92,
		},
		{
			Document: corpus.Document{
				ID:     "doc-2",
				Title:  "Tadasana",
				Source: "protocol",
				Info:   "Standing mountain pose.",
			},
			Score: 0.85,
		},
	}
}

func TestNewService_RequiresModels(t *testing.T) {
	service, err := answer.NewService(&stubGenerator{}, nil)

	require.Error(t, err)
	assert.Nil(t, service)
	assert.Contains(t, err.Error(), "at least one generation model")
}

func TestService_Synthesize_FirstModelSucceeds(t *testing.T) {
	// Setup
	ctx := context.Background()
	var attempted []string
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, model string) (string, error) {
			attempted = append(attempted, model)
			return "## Overview\nPranayama is breath control.", nil
		},
	}
	service, err := answer.NewService(generator, []string{"model-a", "model-b"})
	require.NoError(t, err)

	// Execute
	synthesis, err := service.Synthesize(ctx, "what is pranayama?", testResults(), false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "model-a", synthesis.Model)
	assert.False(t, synthesis.Fallback)
	assert.Equal(t, []string{"model-a"}, attempted)
}

func TestService_Synthesize_FallsThroughToNextModel(t *testing.T) {
	// Setup
	ctx := context.Background()
	var attempted []string
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, model string) (string, error) {
			attempted = append(attempted, model)
			if model == "model-a" {
				return "", errors.New("rate limited")
			}
			return "answer from second model", nil
		},
	}
	service, err := answer.NewService(generator, []string{"model-a", "model-b", "model-c"})
	require.NoError(t, err)

	// Execute
	synthesis, err := service.Synthesize(ctx, "what is pranayama?", testResults(), false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "model-b", synthesis.Model)
	assert.Equal(t, "answer from second model", synthesis.Answer)
	assert.False(t, synthesis.Fallback)
	assert.Equal(t, []string{"model-a", "model-b"}, attempted)
}

func TestService_Synthesize_AllModelsFail_TemplateFallback(t *testing.T) {
	// Setup
	ctx := context.Background()
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, model string) (string, error) {
			return "", errors.New("unavailable")
		},
	}
	service, err := answer.NewService(generator, []string{"model-a", "model-b"})
	require.NoError(t, err)

	// Execute
	synthesis, err := service.Synthesize(ctx, "what is pranayama?", testResults(), false)

	// Assert: 全滅してもエラーにはせず、最上位ドキュメントのテンプレート回答になる
	require.NoError(t, err)
	assert.True(t, synthesis.Fallback)
	assert.Empty(t, synthesis.Model)
	assert.Contains(t, synthesis.Answer, "## Pranayama")
	assert.Contains(t, synthesis.Answer, "Breath control practice.")
	assert.Contains(t, synthesis.Answer, "## Precautions")
}

func TestService_Synthesize_AllModelsFail_NoResults(t *testing.T) {
	// Setup
	ctx := context.Background()
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, model string) (string, error) {
			return "", errors.New("unavailable")
		},
	}
	service, err := answer.NewService(generator, []string{"model-a"})
	require.NoError(t, err)

	// Execute
	synthesis, err := service.Synthesize(ctx, "obscure question", nil, false)

	// Assert
	require.NoError(t, err)
	assert.True(t, synthesis.Fallback)
	assert.Contains(t, synthesis.Answer, "Limited information available")
	assert.Contains(t, synthesis.Answer, "Common Yoga Protocol by Ministry of Ayush")
}

func TestService_Synthesize_ContextCancelled(t *testing.T) {
	// Setup
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service, err := answer.NewService(&stubGenerator{}, []string{"model-a"})
	require.NoError(t, err)

	// Execute
	synthesis, err := service.Synthesize(ctx, "what is pranayama?", testResults(), false)

	// Assert
	require.Error(t, err)
	assert.Nil(t, synthesis)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Synthesize_UnsafeContextInPrompt(t *testing.T) {
	// Setup
	ctx := context.Background()
	var capturedPrompt string
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, model string) (string, error) {
			capturedPrompt = prompt
			return "answer", nil
		},
	}
	service, err := answer.NewService(generator, []string{"model-a"})
	require.NoError(t, err)

	// Execute
	_, err = service.Synthesize(ctx, "yoga with high blood pressure", testResults(), true)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, capturedPrompt, "MEDICAL ALERT MODE")
	assert.Contains(t, capturedPrompt, "Start with safety warnings")
}
