package triage

import (
	"fmt"
	"strings"
)

// BuildSafetyPrompt は安全性分類用のプロンプトを構築する。
// ルールのカテゴリを列挙し、JSON形式での回答を要求する。
func BuildSafetyPrompt(query string, rules []SafetyRule) string {
	var sb strings.Builder

	sb.WriteString("You are a safety screener for a yoga Q&A application.\n")
	sb.WriteString("Decide whether the user query mentions a medical condition that requires professional guidance before practicing yoga.\n\n")

	sb.WriteString("Known condition categories:\n")
	for _, rule := range rules {
		sb.WriteString(fmt.Sprintf("- %s: e.g. %s\n", rule.Category, strings.Join(rule.MatchTerms, ", ")))
	}

	sb.WriteString("\nUSER QUERY: \"")
	sb.WriteString(query)
	sb.WriteString("\"\n\n")

	sb.WriteString("Respond ONLY with valid JSON (no markdown):\n")
	sb.WriteString(`{"isUnsafe": true/false, "detectedCategories": ["category", ...], "reason": "brief explanation"}`)
	sb.WriteString("\n\nUse only category names from the list above. Use an empty array when no condition is mentioned.\n")

	return sb.String()
}

// BuildReviewPrompt は統合レビュー用のプロンプトを構築する。
// トピック関連性・安全性・会話意図の3軸を1回の呼び出しで判定させる。
func BuildReviewPrompt(query string, rules []SafetyRule) string {
	var sb strings.Builder

	sb.WriteString("You are a pre-processing analyzer for a yoga Q&A application. Analyze this user query for THREE things:\n\n")
	sb.WriteString("1. TOPIC RELEVANCE: Is it about yoga?\n")
	sb.WriteString("2. SAFETY: Does it mention medical conditions requiring professional guidance?\n")
	sb.WriteString("3. INTENT: What is the user trying to do?\n\n")

	sb.WriteString("USER QUERY: \"")
	sb.WriteString(query)
	sb.WriteString("\"\n\n")

	sb.WriteString("YOGA-RELATED TOPICS:\n")
	sb.WriteString("- Yoga poses/asanas (names, benefits, how-to)\n")
	sb.WriteString("- Breathing exercises (pranayama)\n")
	sb.WriteString("- Meditation and mindfulness\n")
	sb.WriteString("- Yoga philosophy and traditions\n")
	sb.WriteString("- Yoga for specific conditions (back pain, stress, flexibility)\n")
	sb.WriteString("- Different yoga styles (Hatha, Vinyasa, Ashtanga)\n")
	sb.WriteString("NOT YOGA: greetings, weather, cooking, math, programming, other sports\n\n")

	sb.WriteString("MEDICAL CONDITION CATEGORIES (UNSAFE):\n")
	for _, rule := range rules {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", rule.Category, strings.Join(rule.MatchTerms, ", ")))
	}

	sb.WriteString("\nRespond ONLY with valid JSON (no markdown):\n")
	sb.WriteString(`{"isYogaRelated": true/false, "isUnsafe": true/false, "intent": "answerable" | "greeting" | "off_topic" | "unsafe", "detectedCategories": [], "confidence": 0.0-1.0, "reason": "brief explanation"}`)
	sb.WriteString("\n\nDECISION RULES:\n")
	sb.WriteString("- If the query mentions any medical condition category: intent=\"unsafe\", list the categories\n")
	sb.WriteString("- If the query is only a greeting or small talk: intent=\"greeting\"\n")
	sb.WriteString("- If the query is not about yoga: intent=\"off_topic\"\n")
	sb.WriteString("- If it is a safe yoga question: intent=\"answerable\"\n")
	sb.WriteString("- detectedCategories must use only category names from the list above\n")

	return sb.String()
}
