package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Classifier は構造化分類を行う外部LLMへのインターフェース。
// 戻り値はテキストのまま返し、解析と検証は呼び出し側で行う。
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// SafetyService は医学的カテゴリの検出と安全警告文の生成を提供する。
// ルールテーブルは構築時にロードし、以降変更しない。
type SafetyService struct {
	classifier Classifier
	rules      []SafetyRule
	logger     *slog.Logger
}

type SafetyOption func(*SafetyService)

// WithSafetyLogger は SafetyService にロガーを設定する
func WithSafetyLogger(logger *slog.Logger) SafetyOption {
	return func(s *SafetyService) {
		s.logger = logger
	}
}

// WithSafetyRules はルールテーブルを差し替える
func WithSafetyRules(rules []SafetyRule) SafetyOption {
	return func(s *SafetyService) {
		s.rules = rules
	}
}

// NewSafetyService は新しい SafetyService を作成する
func NewSafetyService(classifier Classifier, opts ...SafetyOption) *SafetyService {
	svc := &SafetyService{
		classifier: classifier,
		rules:      DefaultSafetyRules(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// Rules は現在のルールテーブルを返す
func (s *SafetyService) Rules() []SafetyRule {
	return s.rules
}

// safetyPayload はLLM分類器のJSON応答を受けるための構造体
type safetyPayload struct {
	IsUnsafe           *bool    `json:"isUnsafe"`
	DetectedCategories []string `json:"detectedCategories"`
	Reason             string   `json:"reason"`
}

// DetectPrimary はLLM分類器で安全性を判定する。
// 通信失敗・JSON不正・未知カテゴリの混入はいずれもフォールバックに切り替える。
// 安全でないクエリを黙って通さないため、ここで失敗を握り潰してはならない。
func (s *SafetyService) DetectPrimary(ctx context.Context, query string) Detection {
	raw, err := s.classifier.Classify(ctx, BuildSafetyPrompt(query, s.rules))
	if err != nil {
		s.logger.Warn("safety classifier failed, using fallback", "error", err)
		return s.DetectFallback(query)
	}

	payload, err := parseSafetyPayload(raw, s.rules)
	if err != nil {
		s.logger.Warn("safety classifier returned invalid payload, using fallback", "error", err)
		return s.DetectFallback(query)
	}

	return Detection{
		IsUnsafe:   *payload.IsUnsafe,
		Categories: payload.DetectedCategories,
		Rationale:  payload.Reason,
		Method:     MethodPrimary,
	}
}

func parseSafetyPayload(raw string, rules []SafetyRule) (*safetyPayload, error) {
	var payload safetyPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse safety payload: %w", err)
	}
	if payload.IsUnsafe == nil {
		return nil, fmt.Errorf("safety payload missing isUnsafe field")
	}

	known := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		known[rule.Category] = struct{}{}
	}
	for _, category := range payload.DetectedCategories {
		if _, ok := known[category]; !ok {
			return nil, fmt.Errorf("safety payload contains unknown category: %s", category)
		}
	}

	if *payload.IsUnsafe != (len(payload.DetectedCategories) > 0) {
		return nil, fmt.Errorf("safety payload is inconsistent: isUnsafe=%v with %d categories", *payload.IsUnsafe, len(payload.DetectedCategories))
	}

	return &payload, nil
}

// DetectFallback はキーワードの部分一致で安全性を判定する。
// 各ルールはカテゴリにつき最大1回だけ検出される（重複排除）。
func (s *SafetyService) DetectFallback(query string) Detection {
	queryLower := strings.ToLower(query)

	var categories []string
	for _, rule := range s.rules {
		for _, term := range rule.MatchTerms {
			if strings.Contains(queryLower, term) {
				categories = append(categories, rule.Category)
				break
			}
		}
	}

	detection := Detection{
		IsUnsafe:   len(categories) > 0,
		Categories: categories,
		Method:     MethodFallback,
	}
	if detection.IsUnsafe {
		detection.Rationale = fmt.Sprintf("Detected medical conditions: %s", strings.Join(categories, ", "))
	}

	return detection
}

// BuildResponse は検出カテゴリごとの警告文を組み立てた安全警告レスポンスを返す。
// カテゴリが空の場合は空文字列を返すため、呼び出し側は検出陽性時のみ使うこと。
func (s *SafetyService) BuildResponse(categories []string) string {
	matched := make([]SafetyRule, 0, len(categories))
	for _, category := range categories {
		for _, rule := range s.rules {
			if rule.Category == category {
				matched = append(matched, rule)
				break
			}
		}
	}

	if len(matched) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("⚠️ **IMPORTANT SAFETY NOTICE** ⚠️\n\n")
	sb.WriteString("Your question mentions conditions that require special attention and professional guidance.\n\n")

	for i, rule := range matched {
		sb.WriteString(fmt.Sprintf("**%d. %s**\n\n", i+1, rule.Warning))
		sb.WriteString(fmt.Sprintf("📋 **Recommendation:** %s\n\n", rule.Recommendation))
	}

	sb.WriteString("---\n\n")
	sb.WriteString("**⚕️ Medical Disclaimer:**\n")
	sb.WriteString("This is not medical advice. Always consult your doctor, physiotherapist, or certified yoga therapist before starting any yoga practice, especially with pre-existing conditions. ")
	sb.WriteString("A qualified professional can assess your specific situation and provide personalized modifications.\n\n")
	sb.WriteString("**✨ General Safe Practices:**\n")
	sb.WriteString("• Listen to your body and never push through pain\n")
	sb.WriteString("• Start slowly with gentle practices\n")
	sb.WriteString("• Focus on breathing and relaxation techniques\n")
	sb.WriteString("• Work one-on-one with a certified yoga therapist initially\n")
	sb.WriteString("• Keep your healthcare provider informed about your practice\n")

	return sb.String()
}

// stripCodeFence はLLM応答に紛れ込むMarkdownコードフェンスを取り除く
func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
