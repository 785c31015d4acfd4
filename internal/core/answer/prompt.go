package answer

import (
	"fmt"
	"strings"

	"github.com/jinford/yoga-rag/internal/core/search"
)

// TokenCounter はプロンプトのトークン数計測と切り詰めを行うインターフェース
type TokenCounter interface {
	CountTokens(text string) int
	TrimToTokenLimit(text string, maxTokens int) string
}

// DefaultContextTokenBudget はコンテキストブロックに割り当てるトークン上限
const DefaultContextTokenBudget = 3000

// BuildContext は検索結果からコンテキストブロックを構築する。
// 取得順（検索ランク順）をそのまま保持し、先頭のドキュメントが
// 生成モデルにとって最も顕著になるようにする。
func BuildContext(results []search.ScoredResult, counter TokenCounter, tokenBudget int) string {
	if len(results) == 0 {
		return "No specific information found in the knowledge base."
	}

	var sb strings.Builder
	sb.WriteString("--- KNOWLEDGE BASE CONTEXT ---\n\n")

	for i, result := range results {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, result.Document.Title))
		sb.WriteString(result.Document.Info)
		sb.WriteString("\n")
		if result.Document.Precautions != "" {
			sb.WriteString("Precautions: ")
			sb.WriteString(result.Document.Precautions)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	context := sb.String()

	if counter != nil && tokenBudget > 0 && counter.CountTokens(context) > tokenBudget {
		context = counter.TrimToTokenLimit(context, tokenBudget)
	}

	return context
}

// BuildSystemPrompt は回答フォーマットを固定する指示プロンプトを構築する。
// コンテキストに無い内容の生成は禁止する。
func BuildSystemPrompt(unsafeContext bool) string {
	var sb strings.Builder

	sb.WriteString("You are a yoga information system. Provide structured, factual responses using the EXACT format below.\n\n")
	sb.WriteString("MANDATORY RESPONSE FORMAT:\n\n")
	sb.WriteString("## Overview\n")
	sb.WriteString("[1-2 sentence direct answer to the question]\n\n")
	sb.WriteString("## Key Information\n")
	sb.WriteString("• [Fact 1]\n• [Fact 2]\n• [Fact 3]\n\n")
	sb.WriteString("## Benefits (if applicable)\n")
	sb.WriteString("• [Benefit 1]\n• [Benefit 2]\n• [Benefit 3]\n\n")
	sb.WriteString("## Precautions\n")
	sb.WriteString("⚠️ [Safety point 1]\n⚠️ [Safety point 2]\n\n")
	sb.WriteString("STRICT RULES:\n")
	sb.WriteString("- Use bullet points (•) for all lists\n")
	sb.WriteString("- Keep each bullet under 10 words\n")
	sb.WriteString("- NO conversational language\n")
	sb.WriteString("- NO phrases like \"it's important to\", \"remember that\", \"make sure to\"\n")
	sb.WriteString("- Just state facts from the context\n")
	sb.WriteString("- Do NOT add information that is not present in the context\n")
	sb.WriteString("- Be concise and direct")

	if unsafeContext {
		sb.WriteString("\n\n⚠️ MEDICAL ALERT MODE:\nStart with:\n\n")
		sb.WriteString("## ⚠️ Medical Condition Detected\n\n")
		sb.WriteString("This question mentions a health condition requiring professional guidance.\n\n")
		sb.WriteString("## Required Steps\n")
		sb.WriteString("• Consult doctor before practicing\n")
		sb.WriteString("• Get medical clearance\n")
		sb.WriteString("• Practice only with certified yoga therapist\n")
		sb.WriteString("• Inform instructor of your condition\n\n")
		sb.WriteString("Then provide general information if available from context.")
	}

	return sb.String()
}

// BuildPrompt はシステム指示・コンテキスト・質問を結合した最終プロンプトを構築する
func BuildPrompt(query, context string, unsafeContext bool) string {
	var sb strings.Builder

	sb.WriteString(BuildSystemPrompt(unsafeContext))
	sb.WriteString("\n\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\n")

	if unsafeContext {
		sb.WriteString("⚠️ This question mentions medical conditions. Start with safety warnings.\n\n")
	}

	sb.WriteString("Answer using the EXACT structured format specified above. Be concise.")

	return sb.String()
}

// BuildFallbackAnswer は全モデル失敗時の決定的なテンプレート回答を構築する。
// 検索結果がある場合は最上位ドキュメントから、無い場合は定型の案内文を返す。
func BuildFallbackAnswer(query string, results []search.ScoredResult) string {
	if len(results) == 0 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("## Overview\nLimited information available about %q in the knowledge base.\n\n", query))
		sb.WriteString("## Recommendation\n")
		sb.WriteString("• Consult Common Yoga Protocol by Ministry of Ayush\n")
		sb.WriteString("• Practice under certified yoga instructor")
		return sb.String()
	}

	top := results[0].Document

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", top.Title))
	sb.WriteString(top.Info)
	sb.WriteString("\n\n")
	if top.Precautions != "" {
		sb.WriteString(fmt.Sprintf("## Precautions\n⚠️ %s\n\n", top.Precautions))
	}
	sb.WriteString("## Recommendation\n")
	sb.WriteString("• Practice under supervision\n")
	sb.WriteString("• Consult certified yoga instructor")

	return sb.String()
}
