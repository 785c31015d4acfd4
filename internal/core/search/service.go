package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/jinford/yoga-rag/internal/core/corpus"
)

// ErrNotInitialized は Build/Load 前に検索が呼ばれた場合のエラー
var ErrNotInitialized = errors.New("vector index not initialized: run build or load first")

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
	// BatchEmbed は複数テキストのEmbeddingを入力順を保って生成する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	// MaxBatchSize は1回のバッチで処理できる最大件数を返す
	MaxBatchSize() int
}

// ScoredResult は検索結果1件（ドキュメントとコサイン類似度スコア）を表す
type ScoredResult struct {
	Document corpus.Document `json:"document"`
	Score    float64         `json:"score"`
}

// IndexStats はインデックス構築・読込の結果情報を表す
type IndexStats struct {
	DocumentCount int `json:"documentCount"`
	Dimension     int `json:"dimension"`
}

// snapshot は構築済みコーパスの不変ビュー。
// 再構築時は参照ごと差し替えることで、進行中の検索が新旧の混在を観測しないようにする。
type snapshot struct {
	docs []corpus.EmbeddedDocument
}

// Index はコーパスに対するベクトル類似検索を提供する。
// 構築済みコレクションは snapshot として atomic.Pointer 越しに保持するため、
// Ready 以降の並行検索にロックは不要。
type Index struct {
	embedder Embedder
	store    corpus.Store
	logger   *slog.Logger

	current atomic.Pointer[snapshot]
}

type IndexOption func(*Index)

// WithIndexLogger は Index にロガーを設定する
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// NewIndex は新しい Index を作成する
func NewIndex(embedder Embedder, store corpus.Store, opts ...IndexOption) *Index {
	idx := &Index{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(idx)
	}

	if idx.logger == nil {
		idx.logger = slog.Default()
	}

	return idx
}

// Ready はインデックスが検索可能な状態かどうかを返す
func (idx *Index) Ready() bool {
	return idx.current.Load() != nil
}

// Stats は現在のインデックス統計を返す（未初期化時は nil）
func (idx *Index) Stats() *IndexStats {
	snap := idx.current.Load()
	if snap == nil {
		return nil
	}
	stats := &IndexStats{DocumentCount: len(snap.docs)}
	if len(snap.docs) > 0 {
		stats.Dimension = len(snap.docs[0].Vector)
	}
	return stats
}

// Build はドキュメント群からインデックスを構築し、永続化する。
// 入力が空、または必須フィールドを欠くドキュメントがある場合は失敗する。
func (idx *Index) Build(ctx context.Context, docs []corpus.Document) (*IndexStats, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents provided")
	}
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid document: %w", err)
		}
	}

	idx.logger.Info("building vector index", "documents", len(docs))

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.SearchText()
	}

	vectors, err := idx.batchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	dimension := len(vectors[0])
	embedded := make([]corpus.EmbeddedDocument, len(docs))
	for i, doc := range docs {
		if len(vectors[i]) != dimension {
			return nil, fmt.Errorf("inconsistent embedding dimension: document %s has %d, expected %d", doc.ID, len(vectors[i]), dimension)
		}
		embedded[i] = corpus.EmbeddedDocument{
			Document:   doc,
			SearchText: texts[i],
			Vector:     vectors[i],
		}
	}

	if err := idx.store.Save(ctx, embedded); err != nil {
		return nil, fmt.Errorf("failed to persist vector index: %w", err)
	}

	idx.current.Store(&snapshot{docs: embedded})

	idx.logger.Info("vector index built", "documents", len(embedded), "dimension", dimension)

	return &IndexStats{DocumentCount: len(embedded), Dimension: dimension}, nil
}

// batchEmbed は Embedder の最大バッチサイズ単位に分割してEmbeddingを生成する
func (idx *Index) batchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := idx.embedder.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		batch, err := idx.embedder.BatchEmbed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d failed: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// Load は永続化済みインデックスの復元を試みる。
// 永続化データが存在しない場合は (false, nil) を返し、未初期化のままとする。
func (idx *Index) Load(ctx context.Context) (bool, error) {
	embedded, found, err := idx.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load vector index: %w", err)
	}
	if !found {
		idx.logger.Info("no persisted vector index found")
		return false, nil
	}

	idx.current.Store(&snapshot{docs: embedded})

	idx.logger.Info("vector index loaded", "documents", len(embedded))
	return true, nil
}

// Search はクエリを正規化・Embedding化し、スコア降順で上位 topK 件を返す。
// 同点は取り込み順の若い方を先にする（安定ソート）。
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]ScoredResult, error) {
	snap := idx.current.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}

	normalized := Normalize(query)
	idx.logger.Debug("query normalized", "original", query, "normalized", normalized)

	queryVector, err := idx.embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]ScoredResult, len(snap.docs))
	for i, doc := range snap.docs {
		results[i] = ScoredResult{
			Document: doc.Document,
			Score:    CosineSimilarity(queryVector, doc.Vector),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}
