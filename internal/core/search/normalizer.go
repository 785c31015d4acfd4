package search

import "strings"

// expansion はドメイン用語の同義語展開エントリ。
// map ではなくスライスで保持し、置換順を決定的にする。
type expansion struct {
	term     string
	expanded string
}

// expansions はヨガ用語の展開辞書。各用語は最初のマッチ1回のみ置換する（再帰展開しない）。
var expansions = []expansion{
	{"surya namaskar", "surya namaskar sun salutation sequence"},
	{"pranayama", "pranayama breathing exercises breath control"},
	{"asana", "asana yoga pose posture"},
	{"meditation", "meditation dhyana mindfulness concentration"},
	{"shavasana", "shavasana corpse pose relaxation"},
	{"headstand", "headstand sirsasana inversion"},
	{"backbend", "backbend backward bending spine flexibility"},
}

// Normalize は検索リコール向上のためクエリを書き換える。
// 決定的かつ副作用なし。正規化済み文字列への再適用はサフィックスを
// 二重付与しうるため、1回のみ適用すること。
func Normalize(query string) string {
	processed := strings.ToLower(strings.TrimSpace(query))

	for _, e := range expansions {
		processed = strings.Replace(processed, e.term, e.expanded, 1)
	}

	switch {
	case strings.HasPrefix(processed, "what is"):
		processed = strings.TrimSpace(strings.TrimPrefix(processed, "what is"))
	case strings.HasPrefix(processed, "how to"):
		processed = strings.TrimSpace(strings.TrimPrefix(processed, "how to")) + " steps technique"
	case strings.Contains(processed, "benefits of"):
		processed = strings.Replace(processed, "benefits of", "", 1) + " benefits advantages"
	}

	// 短すぎるクエリには汎用コンテキストを足してリコールを広げる
	if len(strings.Fields(processed)) <= 2 {
		processed += " yoga practice information"
	}

	return processed
}
