package triage

// Intent はクエリの分類結果を表す閉じた列挙型
type Intent string

const (
	// IntentAnswerable はRAGパイプラインで回答可能なヨガ質問
	IntentAnswerable Intent = "answerable"
	// IntentGreeting は挨拶・雑談
	IntentGreeting Intent = "greeting"
	// IntentOffTopic はヨガと無関係な質問
	IntentOffTopic Intent = "off_topic"
	// IntentUnsafe は医学的な注意を要する質問
	IntentUnsafe Intent = "unsafe"
)

// Valid は既知のIntent値かどうかを返す
func (i Intent) Valid() bool {
	switch i {
	case IntentAnswerable, IntentGreeting, IntentOffTopic, IntentUnsafe:
		return true
	}
	return false
}

// Method は分類に使われた経路を表す
type Method string

const (
	// MethodPrimary はLLM分類器による結果
	MethodPrimary Method = "primary"
	// MethodFallback はキーワードヒューリスティックによる結果
	MethodFallback Method = "fallback"
)

// QueryReview はクエリ分類の結果。リクエストごとに新規生成され、永続化はしない。
type QueryReview struct {
	IsTopicRelevant    bool     `json:"isTopicRelevant"`
	IsUnsafe           bool     `json:"isUnsafe"`
	Intent             Intent   `json:"intent"`
	DetectedCategories []string `json:"detectedCategories"`
	Confidence         float64  `json:"confidence"`
	Method             Method   `json:"method"`
	Reason             string   `json:"reason,omitempty"`
}

// ShouldAnswer はRAGパイプラインへ進んでよいかを返す
func (r *QueryReview) ShouldAnswer() bool {
	return r.Intent == IntentAnswerable
}

// SafetyRule は医学的カテゴリ1件の検出・警告設定を表す。
// 起動時に一度ロードされ、実行中は変更されない。
type SafetyRule struct {
	Category       string
	MatchTerms     []string
	Warning        string
	Recommendation string
}

// Detection は安全性判定の結果を表す
type Detection struct {
	IsUnsafe   bool
	Categories []string
	Rationale  string
	Method     Method
}
