package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinford/yoga-rag/internal/core/corpus"
)

const (
	documentsFile  = "documents.json"
	embeddingsFile = "embeddings.json"
)

// Store はコーパスをローカルディレクトリに永続化する corpus.Store 実装。
// ドキュメントメタデータとベクトルを並行する2つのJSONファイルとして保存する。
type Store struct {
	dir string
}

// NewStore は指定ディレクトリを使う Store を作成する
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// storedDocument は documents.json 内の1レコード
type storedDocument struct {
	Document   corpus.Document `json:"document"`
	SearchText string          `json:"searchText"`
}

// Save はコレクション全体を書き込む。一時ファイルに書いてからリネームすることで、
// 書き込み途中のクラッシュで既存データが壊れないようにする。
func (s *Store) Save(_ context.Context, docs []corpus.EmbeddedDocument) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create vector store directory: %w", err)
	}

	documents := make([]storedDocument, len(docs))
	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		documents[i] = storedDocument{Document: doc.Document, SearchText: doc.SearchText}
		vectors[i] = doc.Vector
	}

	if err := writeJSONAtomic(filepath.Join(s.dir, documentsFile), documents); err != nil {
		return fmt.Errorf("failed to save documents: %w", err)
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, embeddingsFile), vectors); err != nil {
		return fmt.Errorf("failed to save embeddings: %w", err)
	}

	return nil
}

// Load は永続化済みコレクションを復元する。
// いずれかのファイルが存在しない場合は (nil, false, nil) を返す。
func (s *Store) Load(_ context.Context) ([]corpus.EmbeddedDocument, bool, error) {
	documentsPath := filepath.Join(s.dir, documentsFile)
	embeddingsPath := filepath.Join(s.dir, embeddingsFile)

	documentsData, err := os.ReadFile(documentsPath)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read documents: %w", err)
	}

	embeddingsData, err := os.ReadFile(embeddingsPath)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read embeddings: %w", err)
	}

	var documents []storedDocument
	if err := json.Unmarshal(documentsData, &documents); err != nil {
		return nil, false, fmt.Errorf("failed to parse documents: %w", err)
	}

	var vectors [][]float32
	if err := json.Unmarshal(embeddingsData, &vectors); err != nil {
		return nil, false, fmt.Errorf("failed to parse embeddings: %w", err)
	}

	if len(documents) != len(vectors) {
		return nil, false, fmt.Errorf("corrupt vector store: %d documents but %d vectors", len(documents), len(vectors))
	}

	docs := make([]corpus.EmbeddedDocument, len(documents))
	for i, doc := range documents {
		docs[i] = corpus.EmbeddedDocument{
			Document:   doc.Document,
			SearchText: doc.SearchText,
			Vector:     vectors[i],
		}
	}

	return docs, true, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// インターフェース実装の確認
var _ corpus.Store = (*Store)(nil)
