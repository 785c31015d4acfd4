package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// Document はナレッジベースの1エントリを表す。
// 取り込み後は不変として扱い、内容の更新はコーパス全体の再構築で行う。
type Document struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Source      string         `json:"source"`
	Page        mo.Option[int] `json:"page"`
	Info        string         `json:"info"`
	Precautions string         `json:"precautions,omitempty"`
}

// Validate は必須フィールドの有無を検証する。
func (d Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if d.Title == "" {
		return fmt.Errorf("document %s: title is required", d.ID)
	}
	if d.Info == "" {
		return fmt.Errorf("document %s: info is required", d.ID)
	}
	return nil
}

// SearchText は検索対象テキストを生成する。
// Embedding対象の文字列はここで一度だけ組み立て、検索時には再計算しない。
func (d Document) SearchText() string {
	var sb strings.Builder
	sb.WriteString(d.Title)
	sb.WriteString(". ")
	sb.WriteString(d.Info)
	if d.Precautions != "" {
		sb.WriteString(" Precautions: ")
		sb.WriteString(d.Precautions)
	}
	return sb.String()
}

// EmbeddedDocument は Document と Embedding ベクトルの組を表す。
// 同一コーパス内のベクトル次元はすべて等しいことを前提とする。
type EmbeddedDocument struct {
	Document   Document  `json:"document"`
	SearchText string    `json:"searchText"`
	Vector     []float32 `json:"vector"`
}

// Store はコーパスの永続化インターフェース。
// Save はコレクション全体を置き換える（部分更新はしない）。
// Load は永続化済みデータが存在しない場合に (nil, false, nil) を返す。
type Store interface {
	Save(ctx context.Context, docs []EmbeddedDocument) error
	Load(ctx context.Context) ([]EmbeddedDocument, bool, error)
}
