package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadKnowledgeBase はナレッジベースJSON（Documentの配列）を読み込み、全件を検証する。
func LoadKnowledgeBase(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("knowledge base is empty: %s", path)
	}

	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid knowledge base entry: %w", err)
		}
		if _, ok := seen[doc.ID]; ok {
			return nil, fmt.Errorf("duplicate document id: %s", doc.ID)
		}
		seen[doc.ID] = struct{}{}
	}

	return docs, nil
}
