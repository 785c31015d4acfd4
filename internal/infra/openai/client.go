package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jinford/yoga-rag/internal/core/answer"
	"github.com/jinford/yoga-rag/internal/core/triage"
)

const (
	// DefaultClassifierModel は分類タスクのデフォルトモデル
	DefaultClassifierModel = "gpt-4o-mini"

	// DefaultTimeout はAPI呼び出し1回あたりのデフォルトタイムアウト。
	// 外部呼び出しのハングがリクエスト全体を塞がないよう必ず上限を設ける。
	DefaultTimeout = 60 * time.Second

	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second
)

var (
	// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set: please set OPENAI_API_KEY environment variable")

	// ErrInvalidResponseFormat は不正なレスポンス形式のエラー
	ErrInvalidResponseFormat = errors.New("invalid response format")

	// ErrMaxRetriesExceeded は最大リトライ回数を超過した場合のエラー
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Client は OpenAI API を使用した LLM クライアント実装。
// 分類（JSONモード）と回答生成（モデル指定あり）の両方を担う。
type Client struct {
	client          openai.Client
	classifierModel string
	timeout         time.Duration
}

// NewClient は新しい Client を作成する
func NewClient(apiKey string, classifierModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if classifierModel == "" {
		classifierModel = DefaultClassifierModel
	}

	return &Client{
		client:          openai.NewClient(option.WithAPIKey(apiKey)),
		classifierModel: classifierModel,
		timeout:         DefaultTimeout,
	}, nil
}

// SetTimeout はAPIコールのタイムアウトを設定する
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Classify は分類プロンプトをJSONモードで実行する。
// 応答がJSONとして不正な場合はエラーを返し、呼び出し側のフォールバックに委ねる。
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	content, err := c.complete(ctx, c.classifierModel, prompt, true)
	if err != nil {
		return "", err
	}

	if !isValidJSON(content) {
		return "", fmt.Errorf("%w: classifier returned non-JSON content", ErrInvalidResponseFormat)
	}

	return content, nil
}

// Generate は指定モデルで回答テキストを生成する
func (c *Client) Generate(ctx context.Context, prompt string, model string) (string, error) {
	return c.complete(ctx, model, prompt, false)
}

func (c *Client) complete(ctx context.Context, model string, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoffDuration > MaxBackoff {
				backoffDuration = MaxBackoff
			}

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		}

		if jsonMode {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{
					Type: "json_object",
				},
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err

			if isRateLimitError(err) {
				continue
			}

			return "", fmt.Errorf("OpenAI API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("no completion choices returned")
		}

		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

// インターフェース実装の確認
var (
	_ triage.Classifier = (*Client)(nil)
	_ answer.Generator  = (*Client)(nil)
)
