package ask

import (
	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/jinford/yoga-rag/internal/core/triage"
)

// AskParams は質問応答のパラメータを表す
type AskParams struct {
	Query string // ユーザーの質問文
	TopK  int    // 検索上限（デフォルト: 5）
}

// AskResult は質問応答の結果を表す
type AskResult struct {
	RequestID uuid.UUID           // ログ突合用のリクエストID
	Answer    string              // 最終回答（生成・テンプレート・定型文のいずれか）
	Intent    triage.Intent       // トリアージで判定された意図
	Review    *triage.QueryReview // トリアージ結果の詳細
	Sources   []SourceReference   // 回答の根拠となったソース情報
	Model     string              // 回答を生成したモデル（生成経路のみ）
	Fallback  bool                // テンプレートフォールバックで回答したかどうか
}

// SourceReference は回答の根拠となったドキュメント参照を表す
type SourceReference struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Source string         `json:"source"`
	Page   mo.Option[int] `json:"page"`
	Score  float64        `json:"score"`
}
