package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/yoga-rag/internal/core/search"
)

// SearchAction はベクトル検索を実行して結果を表示するコマンドのアクション
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	query := cmd.String("query")
	topK := cmd.Int("top-k")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	loaded, err := appCtx.Container.Index.Load(ctx)
	if err != nil {
		return fmt.Errorf("インデックスの読み込みに失敗: %w", err)
	}
	if !loaded {
		return fmt.Errorf("インデックスが未構築です。先に `yoga-rag index build` を実行してください")
	}

	results, err := appCtx.Container.Index.Search(ctx, query, topK)
	if err != nil {
		return fmt.Errorf("検索に失敗: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("該当するドキュメントはありません")
		return nil
	}

	renderSearchResults(results)

	return nil
}

// renderSearchResults は検索結果をテーブル形式で表示します
func renderSearchResults(results []search.ScoredResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Score", "ID", "Title", "Source")

	for i, r := range results {
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.4f", r.Score),
			r.Document.ID,
			truncateString(r.Document.Title, 50),
			r.Document.Source,
		)
	}

	table.Render()
}

// truncateString は文字列を指定された長さに切り詰めます
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
