package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/yoga-rag/internal/core/ask"
)

// AskAction は質問応答パイプラインを実行するコマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	query := cmd.String("query")
	topK := cmd.Int("top-k")
	asJSON := cmd.Bool("json")

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

	result, err := appCtx.Container.AskService.Ask(ctx, ask.AskParams{
		Query: query,
		TopK:  topK,
	})
	if err != nil {
		return fmt.Errorf("質問応答に失敗: %w", err)
	}

	if asJSON {
		return renderAskJSON(result)
	}

	renderAskResult(result)

	return nil
}

// renderAskJSON は質問応答結果をJSON形式で標準出力に書き出します
func renderAskJSON(result *ask.AskResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("JSONシリアライズに失敗: %w", err)
	}

	fmt.Println(string(data))

	return nil
}

// renderAskResult は質問応答結果を人間向けに表示します
func renderAskResult(result *ask.AskResult) {
	fmt.Printf("\n%s\n", result.Answer)

	fmt.Printf("\n--- 処理情報 ---\n")
	fmt.Printf("Request ID: %s\n", result.RequestID)
	fmt.Printf("Intent:     %s\n", result.Intent)
	if result.Review != nil {
		fmt.Printf("Method:     %s (確信度: %.2f)\n", result.Review.Method, result.Review.Confidence)
	}
	if result.Model != "" {
		fmt.Printf("Model:      %s\n", result.Model)
	}
	if result.Fallback {
		fmt.Println("Fallback:   テンプレート回答を使用")
	}

	if len(result.Sources) == 0 {
		return
	}

	fmt.Printf("\n--- 参照ソース ---\n")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Title", "Source", "Page", "Score")

	for _, src := range result.Sources {
		page := "-"
		if p, ok := src.Page.Get(); ok {
			page = fmt.Sprintf("%d", p)
		}
		table.Append(
			src.ID,
			truncateString(src.Title, 40),
			src.Source,
			page,
			fmt.Sprintf("%.4f", src.Score),
		)
	}

	table.Render()
}
