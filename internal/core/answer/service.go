package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/yoga-rag/internal/core/search"
)

// Generator はテキスト生成を行う外部LLMへのインターフェース。
// モデル識別子ごとに独立して失敗しうる。
type Generator interface {
	Generate(ctx context.Context, prompt string, model string) (string, error)
}

// Synthesis は回答生成の結果を表す
type Synthesis struct {
	Answer string
	Model  string
	// Fallback は全モデル失敗によりテンプレート回答になったことを示す
	Fallback bool
}

// Service は検索結果からの回答生成を提供する。
// モデル識別子の順序付きリストを順に試行し、最初の成功で打ち切る。
// 全滅した場合は決定的なテンプレート回答にフォールバックし、リクエストを失敗させない。
type Service struct {
	generator    Generator
	models       []string
	tokenCounter TokenCounter
	tokenBudget  int
	logger       *slog.Logger
}

type ServiceOption func(*Service)

// WithAnswerLogger は Service にロガーを設定する
func WithAnswerLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTokenCounter はコンテキスト切り詰め用のトークンカウンタを設定する
func WithTokenCounter(counter TokenCounter) ServiceOption {
	return func(s *Service) {
		s.tokenCounter = counter
	}
}

// WithContextTokenBudget はコンテキストブロックのトークン上限を上書きする
func WithContextTokenBudget(budget int) ServiceOption {
	return func(s *Service) {
		s.tokenBudget = budget
	}
}

// NewService は新しい Service を作成する。
// models は試行順のモデル識別子リストで、空は許可しない。
func NewService(generator Generator, models []string, opts ...ServiceOption) (*Service, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("at least one generation model is required")
	}

	svc := &Service{
		generator:   generator,
		models:      models,
		tokenBudget: DefaultContextTokenBudget,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc, nil
}

// Synthesize は検索結果をコンテキストとして回答を生成する。
// モデルを順に試し、1つでも成功すればその時点で返す。全モデルが失敗しても
// エラーにはせず、最上位ドキュメントからのテンプレート回答を返す。
func (s *Service) Synthesize(ctx context.Context, query string, results []search.ScoredResult, unsafeContext bool) (*Synthesis, error) {
	contextBlock := BuildContext(results, s.tokenCounter, s.tokenBudget)
	prompt := BuildPrompt(query, contextBlock, unsafeContext)

	for _, model := range s.models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.logger.Info("attempting answer generation", "model", model)

		text, err := s.generator.Generate(ctx, prompt, model)
		if err != nil {
			s.logger.Warn("generation failed, trying next model", "model", model, "error", err)
			continue
		}

		s.logger.Info("answer generated", "model", model, "answerLength", len(text))
		return &Synthesis{Answer: text, Model: model}, nil
	}

	s.logger.Error("all generation models failed, using template fallback", "models", len(s.models))

	return &Synthesis{
		Answer:   BuildFallbackAnswer(query, results),
		Fallback: true,
	}, nil
}
