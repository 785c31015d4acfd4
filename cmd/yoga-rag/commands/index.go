package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/yoga-rag/internal/core/corpus"
)

// IndexBuildAction はナレッジベースJSONからインデックスを構築するコマンドのアクション
func IndexBuildAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	kbPath := cmd.String("file")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if kbPath == "" {
		kbPath = appCtx.Config.Pipeline.KnowledgeBasePath
	}

	docs, err := corpus.LoadKnowledgeBase(kbPath)
	if err != nil {
		return fmt.Errorf("ナレッジベースの読み込みに失敗: %w", err)
	}

	stats, err := appCtx.Container.Index.Build(ctx, docs)
	if err != nil {
		return fmt.Errorf("インデックス構築に失敗: %w", err)
	}

	fmt.Printf("インデックスを構築しました: %d 件 (次元数: %d)\n", stats.DocumentCount, stats.Dimension)

	return nil
}

// IndexStatsAction は永続化済みインデックスの統計を表示するコマンドのアクション
func IndexStatsAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

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
		fmt.Println("インデックスはまだ構築されていません")
		return nil
	}

	stats := appCtx.Container.Index.Stats()
	fmt.Printf("ドキュメント数: %d\n", stats.DocumentCount)
	fmt.Printf("ベクトル次元数: %d\n", stats.Dimension)

	return nil
}
