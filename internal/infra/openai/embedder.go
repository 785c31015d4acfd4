package openai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jinford/yoga-rag/internal/core/search"
)

const (
	// DefaultEmbeddingModel はモデル未指定時のデフォルトモデル
	DefaultEmbeddingModel = "text-embedding-3-small"
	// DefaultEmbeddingDimension はOpenAI推奨のデフォルト次元
	DefaultEmbeddingDimension = 1536
	// maxEmbeddingBatchSize はOpenAI APIの1リクエスト最大入力数
	maxEmbeddingBatchSize = 100
)

// ErrEmbedderAPIKeyNotSet はAPIキー未設定のエラー。
// Embedding無しでは検索が成立しないため、初期化失敗は致命的として呼び出し元へ伝播する。
var ErrEmbedderAPIKeyNotSet = errors.New("OpenAI API key not set for embedder")

// Embedder は OpenAI API を使用してテキストをベクトルに変換する。
// クライアントの初期化は初回利用時に一度だけ行い、プロセス存続中キャッシュする。
type Embedder struct {
	apiKey    string
	model     string
	dimension int

	initOnce sync.Once
	initErr  error
	client   openai.Client
	ready    atomic.Bool
}

type embedderOptions struct {
	model     string
	dimension int
}

// EmbedderOption は Embedder のオプション設定
type EmbedderOption func(*embedderOptions)

// WithEmbeddingModel はモデル名を上書きする
func WithEmbeddingModel(model string) EmbedderOption {
	return func(o *embedderOptions) {
		o.model = model
	}
}

// WithEmbeddingDimension はベクトル次元を上書きする
func WithEmbeddingDimension(dimension int) EmbedderOption {
	return func(o *embedderOptions) {
		o.dimension = dimension
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(apiKey string, opts ...EmbedderOption) *Embedder {
	options := embedderOptions{
		model:     DefaultEmbeddingModel,
		dimension: DefaultEmbeddingDimension,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Embedder{
		apiKey:    apiKey,
		model:     options.model,
		dimension: options.dimension,
	}
}

// Initialize はクライアントを初期化する。冪等で、複数回呼んでも安全。
// 一度失敗した場合は同じエラーを返し続ける。
func (e *Embedder) Initialize(_ context.Context) error {
	e.initOnce.Do(func() {
		if e.apiKey == "" {
			e.initErr = ErrEmbedderAPIKeyNotSet
			return
		}
		e.client = openai.NewClient(option.WithAPIKey(e.apiKey))
		e.ready.Store(true)
	})
	return e.initErr
}

// Ready は初期化済みかどうかを返す
func (e *Embedder) Ready() bool {
	return e.ready.Load()
}

// Embed は単一テキストの Embedding を生成する
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings generated")
	}

	return embeddings[0], nil
}

// BatchEmbed はバッチで Embedding を生成する（最大100件、入力順を保持）
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("embedder initialization failed: %w", err)
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	if len(texts) > maxEmbeddingBatchSize {
		return nil, fmt.Errorf("batch size exceeds maximum of %d", maxEmbeddingBatchSize)
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
	}

	if len(texts) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(texts[0]),
		}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		}
	}

	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	embeddings := make([][]float32, 0, len(resp.Data))
	for _, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		embeddings = append(embeddings, vector)
	}

	return embeddings, nil
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return e.dimension
}

// MaxBatchSize はバッチ処理の最大サイズを返す
func (e *Embedder) MaxBatchSize() int {
	return maxEmbeddingBatchSize
}

// インターフェース実装の確認
var _ search.Embedder = (*Embedder)(nil)
