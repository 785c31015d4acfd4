package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/samber/mo"

	"github.com/jinford/yoga-rag/internal/core/corpus"
)

// Store はコーパスをPostgreSQL（pgvector）に永続化する corpus.Store 実装。
// ドキュメントメタデータ表とベクトル表の2つに分けて保存する。
type Store struct {
	pool *pgxpool.Pool
}

// NewStore は新しい Store を作成する
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schemaDDL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS yoga_documents (
	ordinal     INTEGER PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	page        INTEGER,
	info        TEXT NOT NULL,
	precautions TEXT NOT NULL DEFAULT '',
	search_text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS yoga_embeddings (
	ordinal INTEGER PRIMARY KEY REFERENCES yoga_documents(ordinal) ON DELETE CASCADE,
	vector  vector NOT NULL
);
`

// Save はコレクション全体を1トランザクションで置き換える。
// TRUNCATE + INSERT により、読み手が新旧の混在を観測することはない。
func (s *Store) Save(ctx context.Context, docs []corpus.EmbeddedDocument) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	if _, err := tx.Exec(ctx, "TRUNCATE yoga_documents CASCADE"); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	for i, doc := range docs {
		var page *int
		if p, ok := doc.Document.Page.Get(); ok {
			page = &p
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO yoga_documents (ordinal, id, title, source, page, info, precautions, search_text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			i, doc.Document.ID, doc.Document.Title, doc.Document.Source, page,
			doc.Document.Info, doc.Document.Precautions, doc.SearchText,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.Document.ID, err)
		}

		_, err = tx.Exec(ctx,
			"INSERT INTO yoga_embeddings (ordinal, vector) VALUES ($1, $2)",
			i, pgvector.NewVector(doc.Vector),
		)
		if err != nil {
			return fmt.Errorf("failed to insert embedding %s: %w", doc.Document.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Load は永続化済みコレクションを取り込み順で復元する。
// テーブル未作成、またはレコードが無い場合は (nil, false, nil) を返す。
func (s *Store) Load(ctx context.Context) ([]corpus.EmbeddedDocument, bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT to_regclass('yoga_documents') IS NOT NULL",
	).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check table existence: %w", err)
	}
	if !exists {
		return nil, false, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.title, d.source, d.page, d.info, d.precautions, d.search_text, e.vector
		 FROM yoga_documents d
		 JOIN yoga_embeddings e ON e.ordinal = d.ordinal
		 ORDER BY d.ordinal`,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []corpus.EmbeddedDocument
	for rows.Next() {
		var (
			doc    corpus.Document
			page   *int
			text   string
			vector pgvector.Vector
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Source, &page, &doc.Info, &doc.Precautions, &text, &vector); err != nil {
			return nil, false, fmt.Errorf("failed to scan document: %w", err)
		}
		if page != nil {
			doc.Page = mo.Some(*page)
		}

		docs = append(docs, corpus.EmbeddedDocument{
			Document:   doc,
			SearchText: text,
			Vector:     vector.Slice(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read documents: %w", err)
	}

	if len(docs) == 0 {
		return nil, false, nil
	}

	return docs, true, nil
}

// インターフェース実装の確認
var _ corpus.Store = (*Store)(nil)
