package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinford/yoga-rag/cmd/yoga-rag/commands"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "yoga-rag",
		Usage: "ヨガQ&A向け RAG パイプライン（トリアージ・検索・回答生成）",
		Commands: []*cli.Command{
			{
				Name:  "index",
				Usage: "コーパス管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "build",
						Usage: "ナレッジベースJSONからベクトルインデックスを構築",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:  "file",
								Usage: "ナレッジベースJSONファイルパス（省略時は設定値）",
							},
						},
						Action: commands.IndexBuildAction,
					},
					{
						Name:  "stats",
						Usage: "インデックス統計を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: commands.IndexStatsAction,
					},
				},
			},
			{
				Name:  "search",
				Usage: "ベクトル検索コマンド",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "query",
						Usage:    "検索クエリ",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "取得する上位件数",
						Value: 5,
					},
				},
				Action: commands.SearchAction,
			},
			{
				Name:  "ask",
				Usage: "質問応答パイプラインを実行",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "query",
						Usage:    "質問文",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "回答生成に使う検索結果の件数",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "結果をJSON形式で出力",
					},
				},
				Action: commands.AskAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
