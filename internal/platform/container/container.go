package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"

	coreanswer "github.com/jinford/yoga-rag/internal/core/answer"
	coreask "github.com/jinford/yoga-rag/internal/core/ask"
	"github.com/jinford/yoga-rag/internal/core/corpus"
	coresearch "github.com/jinford/yoga-rag/internal/core/search"
	"github.com/jinford/yoga-rag/internal/core/triage"
	"github.com/jinford/yoga-rag/internal/infra/file"
	infraopenai "github.com/jinford/yoga-rag/internal/infra/openai"
	"github.com/jinford/yoga-rag/internal/infra/postgres"
	"github.com/jinford/yoga-rag/internal/platform/config"
	"github.com/jinford/yoga-rag/internal/platform/database"
)

// ServiceContainer はパイプライン全体の依存関係を保持する
type ServiceContainer struct {
	Embedder      coresearch.Embedder
	Index         *coresearch.Index
	SafetyService *triage.SafetyService
	ReviewService *triage.ReviewService
	AnswerService *coreanswer.Service
	AskService    *coreask.AskService

	logger   *slog.Logger
	database *database.Database
}

type containerOptions struct {
	logger     *slog.Logger
	embedder   coresearch.Embedder
	classifier triage.Classifier
	generator  coreanswer.Generator
	store      corpus.Store
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder coresearch.Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerClassifier は分類器クライアントを差し替える
func WithContainerClassifier(classifier triage.Classifier) ContainerOption {
	return func(opts *containerOptions) {
		opts.classifier = classifier
	}
}

// WithContainerGenerator は生成クライアントを差し替える
func WithContainerGenerator(generator coreanswer.Generator) ContainerOption {
	return func(opts *containerOptions) {
		opts.generator = generator
	}
}

// WithContainerStore はコーパスストアを差し替える
func WithContainerStore(store corpus.Store) ContainerOption {
	return func(opts *containerOptions) {
		opts.store = store
	}
}

// NewContainer は設定からコンテナを生成する
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	c := &ServiceContainer{logger: options.logger}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		openaiEmbedder := infraopenai.NewEmbedder(
			cfg.OpenAI.APIKey,
			infraopenai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			infraopenai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
		if err := openaiEmbedder.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("Embedder 初期化に失敗しました: %w", err)
		}
		embedder = openaiEmbedder
	}
	c.Embedder = embedder

	// Store (file | postgres)
	store := options.store
	if store == nil {
		switch cfg.Storage.Backend {
		case config.StoragePostgres:
			db, err := database.New(ctx, database.ConnectionParams{
				Host:     cfg.Database.Host,
				Port:     cfg.Database.Port,
				User:     cfg.Database.User,
				Password: cfg.Database.Password,
				DBName:   cfg.Database.DBName,
				SSLMode:  cfg.Database.SSLMode,
			})
			if err != nil {
				return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
			}
			c.database = db
			store = postgres.NewStore(db.Pool)
		default:
			store = file.NewStore(cfg.Storage.Path)
		}
	}

	// VectorIndex
	c.Index = coresearch.NewIndex(embedder, store, coresearch.WithIndexLogger(options.logger))

	// LLMクライアント（分類・生成兼用）
	classifier := options.classifier
	generator := options.generator
	if classifier == nil || generator == nil {
		client, err := infraopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.ClassifierModel)
		if err != nil {
			return nil, fmt.Errorf("OpenAI LLMクライアント初期化に失敗しました: %w", err)
		}
		if classifier == nil {
			classifier = client
		}
		if generator == nil {
			generator = client
		}
	}

	// SafetyService / ReviewService
	c.SafetyService = triage.NewSafetyService(classifier, triage.WithSafetyLogger(options.logger))
	c.ReviewService = triage.NewReviewService(classifier, c.SafetyService, triage.WithReviewLogger(options.logger))

	// TokenCounter (tiktoken)
	counter, err := newTokenCounter()
	if err != nil {
		return nil, fmt.Errorf("TokenCounter 初期化に失敗しました: %w", err)
	}

	// AnswerService
	answerService, err := coreanswer.NewService(
		generator,
		cfg.OpenAI.GenerationModels,
		coreanswer.WithAnswerLogger(options.logger),
		coreanswer.WithTokenCounter(counter),
	)
	if err != nil {
		return nil, fmt.Errorf("AnswerService 初期化に失敗しました: %w", err)
	}
	c.AnswerService = answerService

	// AskService
	c.AskService = coreask.NewAskService(
		c.ReviewService,
		c.SafetyService,
		c.Index,
		c.AnswerService,
		coreask.WithAskLogger(options.logger),
		coreask.WithMaxQueryLength(cfg.Pipeline.MaxQueryLength),
	)

	return c, nil
}

// Close はコンテナが保持するリソースを解放する
func (c *ServiceContainer) Close() {
	if c.database != nil {
		c.database.Close()
	}
}

// tokenCounter は tiktoken によるトークン計測の実装
type tokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func newTokenCounter() (*tokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
	}
	return &tokenCounter{encoding: enc}, nil
}

func (t *tokenCounter) CountTokens(text string) int {
	if t.encoding == nil {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

func (t *tokenCounter) TrimToTokenLimit(text string, maxTokens int) string {
	if t.encoding == nil {
		return text
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:maxTokens])
}

// インターフェース実装の確認
var _ coreanswer.TokenCounter = (*tokenCounter)(nil)
