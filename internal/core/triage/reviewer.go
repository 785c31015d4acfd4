package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ConfidenceThreshold はLLM分類結果を採用する信頼度の下限。
// これを下回る曖昧なクエリは推測で答えず off_topic に倒す。
const ConfidenceThreshold = 0.6

// フォールバック経路の固定信頼度。計算値ではなく、
// キーワード判定がLLM判定より粗いことを反映したヒューリスティック定数。
const (
	fallbackUnsafeConfidence     = 0.85
	fallbackAnswerableConfidence = 0.75
	fallbackDefaultConfidence    = 0.8
)

// greetingPatterns は挨拶・雑談を検出する正規表現。トリム済みの生クエリに対して評価する。
var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(hi|hello|hey|howdy|greetings|good morning|good afternoon|good evening)[\s!?.]*$`),
	regexp.MustCompile(`(?i)^how are you`),
	regexp.MustCompile(`(?i)^what('s| is) your name`),
	regexp.MustCompile(`(?i)^who are you`),
	regexp.MustCompile(`(?i)^what can you do`),
	regexp.MustCompile(`(?i)^(thanks|thank you|bye|goodbye|see you)`),
}

// yogaKeywords はヨガ関連判定のキーワードリスト（部分一致）
var yogaKeywords = []string{
	"yoga", "asana", "pose", "posture", "pranayama", "breathing", "breath",
	"meditation", "stretch", "flexibility", "mindfulness", "relaxation",
	"surya", "namaskar", "sun salutation", "shavasana", "corpse pose",
	"warrior", "downward", "upward", "cobra", "child pose", "tree pose",
	"headstand", "handstand", "inversion", "backbend", "forward bend",
	"balance", "core", "spine", "chakra", "mudra", "mantra", "bandha",
	"vinyasa", "hatha", "ashtanga", "iyengar", "kundalini", "dhyana",
	"prana", "nadi", "sutra", "patanjali", "ayurveda",
}

// ReviewService はクエリの事前トリアージ（トピック・安全性・意図の分類）を提供する。
// LLM分類器を第一経路とし、失敗時はキーワードヒューリスティックに切り替える。
type ReviewService struct {
	classifier Classifier
	safety     *SafetyService
	logger     *slog.Logger
}

type ReviewOption func(*ReviewService)

// WithReviewLogger は ReviewService にロガーを設定する
func WithReviewLogger(logger *slog.Logger) ReviewOption {
	return func(s *ReviewService) {
		s.logger = logger
	}
}

// NewReviewService は新しい ReviewService を作成する
func NewReviewService(classifier Classifier, safety *SafetyService, opts ...ReviewOption) *ReviewService {
	svc := &ReviewService{
		classifier: classifier,
		safety:     safety,
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

// reviewPayload は統合レビューのJSON応答を受けるための構造体。
// 必須フィールドの欠落を検知できるようポインタで受ける。
type reviewPayload struct {
	IsYogaRelated      *bool    `json:"isYogaRelated"`
	IsUnsafe           *bool    `json:"isUnsafe"`
	Intent             *string  `json:"intent"`
	DetectedCategories []string `json:"detectedCategories"`
	Confidence         *float64 `json:"confidence"`
	Reason             string   `json:"reason"`
}

// Review はクエリを1回のLLM呼び出しで3軸分類する。
// 通信失敗・応答不正の場合はローカルヒューリスティックにフォールバックし、
// 結果の Method で経路を区別できるようにする。
func (s *ReviewService) Review(ctx context.Context, query string) (*QueryReview, error) {
	raw, err := s.classifier.Classify(ctx, BuildReviewPrompt(query, s.safety.Rules()))
	if err != nil {
		s.logger.Warn("llm review failed, using fallback", "error", err)
		return s.reviewFallback(query), nil
	}

	review, err := s.parseReview(raw)
	if err != nil {
		s.logger.Warn("llm review returned invalid payload, using fallback", "error", err)
		return s.reviewFallback(query), nil
	}

	return review, nil
}

func (s *ReviewService) parseReview(raw string) (*QueryReview, error) {
	var payload reviewPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse review payload: %w", err)
	}

	if payload.IsYogaRelated == nil || payload.IsUnsafe == nil || payload.Intent == nil || payload.Confidence == nil {
		return nil, fmt.Errorf("review payload missing required fields")
	}

	intent := Intent(*payload.Intent)
	if !intent.Valid() {
		return nil, fmt.Errorf("review payload has unknown intent: %s", *payload.Intent)
	}

	confidence := *payload.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("review payload confidence out of range: %f", confidence)
	}

	if intent == IntentUnsafe || *payload.IsUnsafe {
		known := make(map[string]struct{}, len(s.safety.Rules()))
		for _, rule := range s.safety.Rules() {
			known[rule.Category] = struct{}{}
		}
		for _, category := range payload.DetectedCategories {
			if _, ok := known[category]; !ok {
				return nil, fmt.Errorf("review payload contains unknown category: %s", category)
			}
		}
	}

	// 信頼度が閾値未満の曖昧な回答可能判定は off_topic に降格する
	if intent == IntentAnswerable && confidence < ConfidenceThreshold {
		s.logger.Info("review confidence below threshold, demoting to off_topic",
			"confidence", confidence,
			"threshold", ConfidenceThreshold,
		)
		intent = IntentOffTopic
	}

	return &QueryReview{
		IsTopicRelevant:    *payload.IsYogaRelated,
		IsUnsafe:           *payload.IsUnsafe,
		Intent:             intent,
		DetectedCategories: payload.DetectedCategories,
		Confidence:         confidence,
		Method:             MethodPrimary,
		Reason:             payload.Reason,
	}, nil
}

// reviewFallback はローカルヒューリスティックによるレビュー。
// 判定優先順位は固定: unsafe > greeting > answerable > off_topic。
func (s *ReviewService) reviewFallback(query string) *QueryReview {
	detection := s.safety.DetectFallback(query)
	isGreeting := matchesGreeting(query)
	isYogaRelated := containsYogaKeyword(query)

	review := &QueryReview{
		IsTopicRelevant:    isYogaRelated,
		IsUnsafe:           detection.IsUnsafe,
		DetectedCategories: detection.Categories,
		Method:             MethodFallback,
	}

	switch {
	case detection.IsUnsafe:
		review.Intent = IntentUnsafe
		review.Confidence = fallbackUnsafeConfidence
		review.Reason = detection.Rationale
	case isGreeting:
		review.Intent = IntentGreeting
		review.Confidence = fallbackDefaultConfidence
		review.Reason = "User greeting detected"
	case isYogaRelated:
		review.Intent = IntentAnswerable
		review.Confidence = fallbackAnswerableConfidence
		review.Reason = "Contains yoga keywords, no medical conditions"
	default:
		review.Intent = IntentOffTopic
		review.Confidence = fallbackDefaultConfidence
		review.Reason = "No yoga keywords found"
	}

	return review
}

func matchesGreeting(query string) bool {
	trimmed := strings.TrimSpace(query)
	for _, pattern := range greetingPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func containsYogaKeyword(query string) bool {
	queryLower := strings.ToLower(query)
	for _, keyword := range yogaKeywords {
		if strings.Contains(queryLower, keyword) {
			return true
		}
	}
	return false
}
