package ask

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jinford/yoga-rag/internal/core/answer"
	"github.com/jinford/yoga-rag/internal/core/search"
	"github.com/jinford/yoga-rag/internal/core/triage"
)

const (
	// DefaultTopK は検索上限のデフォルト値
	DefaultTopK = 5
	// DefaultMaxQueryLength はクエリ長の上限（文字数）
	DefaultMaxQueryLength = 500
)

// AskService は質問応答パイプライン全体のオーケストレーションを提供する。
// トリアージ → （回答可能なら）検索 → 回答生成、の順で処理し、
// 初期化エラーを除き常に何らかの回答文を返す。
type AskService struct {
	reviewer       *triage.ReviewService
	safety         *triage.SafetyService
	index          *search.Index
	synthesizer    *answer.Service
	maxQueryLength int
	logger         *slog.Logger
}

type AskServiceOption func(*AskService)

// WithAskLogger は AskService にロガーを設定する
func WithAskLogger(logger *slog.Logger) AskServiceOption {
	return func(s *AskService) {
		s.logger = logger
	}
}

// WithMaxQueryLength はクエリ長上限を上書きする
func WithMaxQueryLength(limit int) AskServiceOption {
	return func(s *AskService) {
		s.maxQueryLength = limit
	}
}

// NewAskService は新しい AskService を作成する
func NewAskService(
	reviewer *triage.ReviewService,
	safety *triage.SafetyService,
	index *search.Index,
	synthesizer *answer.Service,
	opts ...AskServiceOption,
) *AskService {
	svc := &AskService{
		reviewer:       reviewer,
		safety:         safety,
		index:          index,
		synthesizer:    synthesizer,
		maxQueryLength: DefaultMaxQueryLength,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// Ask は質問に対してトリアージとRAGパイプラインを実行する。
// greeting / off_topic / unsafe は検索・生成を行わず定型応答で短絡する。
func (s *AskService) Ask(ctx context.Context, params AskParams) (*AskResult, error) {
	// 1. バリデーション
	query := params.Query
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if len(query) > s.maxQueryLength {
		return nil, fmt.Errorf("query exceeds maximum length of %d characters", s.maxQueryLength)
	}

	requestID := uuid.New()
	logger := s.logger.With("requestID", requestID.String())

	// 2. トリアージ
	logger.Info("reviewing query", "query", query)

	review, err := s.reviewer.Review(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query review failed: %w", err)
	}

	logger.Info("query reviewed",
		"intent", review.Intent,
		"method", review.Method,
		"confidence", review.Confidence,
		"categories", review.DetectedCategories,
	)

	result := &AskResult{
		RequestID: requestID,
		Intent:    review.Intent,
		Review:    review,
	}

	// 3. 終端インテントは定型応答で短絡
	switch review.Intent {
	case triage.IntentGreeting:
		result.Answer = greetingResponse
		return result, nil
	case triage.IntentOffTopic:
		result.Answer = offTopicResponse
		return result, nil
	case triage.IntentUnsafe:
		categories := review.DetectedCategories
		if len(categories) == 0 {
			// 分類器が unsafe とだけ返した場合はキーワード検出でカテゴリを補完する
			detection := s.safety.DetectFallback(query)
			categories = detection.Categories
		}
		result.Answer = s.safety.BuildResponse(categories)
		if result.Answer == "" {
			result.Answer = genericSafetyResponse
		}
		return result, nil
	}

	// 4. ベクトル検索
	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	results, err := s.index.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	logger.Info("retrieval completed", "results", len(results))

	// 5. 回答生成
	synthesis, err := s.synthesizer.Synthesize(ctx, query, results, review.IsUnsafe)
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	result.Answer = synthesis.Answer
	result.Model = synthesis.Model
	result.Fallback = synthesis.Fallback
	result.Sources = make([]SourceReference, 0, len(results))
	for _, r := range results {
		result.Sources = append(result.Sources, SourceReference{
			ID:     r.Document.ID,
			Title:  r.Document.Title,
			Source: r.Document.Source,
			Page:   r.Document.Page,
			Score:  r.Score,
		})
	}

	logger.Info("ask completed",
		"answerLength", len(result.Answer),
		"sources", len(result.Sources),
		"model", result.Model,
		"fallback", result.Fallback,
	)

	return result, nil
}
