package triage

// DefaultSafetyRules は標準の安全性ルールテーブルを返す。
// MatchTerms には利用者が打ちがちな誤記も含める。フォールバック検出は
// 見逃しより過剰検出に倒す方針のため、語彙は意図的に広めに取っている。
func DefaultSafetyRules() []SafetyRule {
	return []SafetyRule{
		{
			Category:       "pregnancy",
			MatchTerms:     []string{"pregnant", "pregnancy", "expecting", "trimester", "pregnent", "pregant"},
			Warning:        "Pregnancy requires specialized yoga guidance.",
			Recommendation: "Consider prenatal yoga classes under expert supervision. Avoid inversions, deep twists, and abdominal compressions. Focus on gentle stretching, breathing exercises (pranayama), and modified poses suitable for your trimester.",
		},
		{
			Category:       "cardiac",
			MatchTerms:     []string{"heart disease", "cardiac", "heart attack", "angina", "heart condition", "hart disease"},
			Warning:        "Heart conditions require medical supervision.",
			Recommendation: "Avoid strenuous poses, inversions, and intense breathing exercises. Practice gentle, restorative poses, relaxation techniques, and meditation only after consulting your cardiologist.",
		},
		{
			Category:       "surgery",
			MatchTerms:     []string{"surgery", "recent surgery", "post-surgery", "operation", "post-operative", "surgry", "operaton"},
			Warning:        "Post-surgical recovery requires medical clearance.",
			Recommendation: "Wait for complete healing and obtain clearance from your surgeon. Start with gentle breathing exercises and meditation only. Gradually introduce gentle movements under physiotherapist or yoga therapist guidance.",
		},
		{
			Category:       "hernia",
			MatchTerms:     []string{"hernia", "inguinal hernia", "umbilical hernia", "hurnia", "hernea"},
			Warning:        "Hernia conditions require medical clearance before practicing yoga.",
			Recommendation: "Avoid poses involving abdominal pressure, forward bends, and inversions. Instead, practice gentle breathing exercises, meditation, and consult your doctor before attempting any physical poses.",
		},
		{
			Category:       "glaucoma",
			MatchTerms:     []string{"glaucoma", "eye pressure", "ocular", "glucoma"},
			Warning:        "Glaucoma requires special precautions in yoga practice.",
			Recommendation: "Strictly avoid inversions like headstands, shoulder stands, and downward-facing dog as they increase intraocular pressure. Practice gentle seated poses, breathing exercises, and meditation with medical supervision.",
		},
		{
			Category:       "hypertension",
			MatchTerms:     []string{"high blood pressure", "hypertension", "high bp", "blood pressure"},
			Warning:        "High blood pressure requires careful pose selection.",
			Recommendation: "Avoid inversions, intense backbends, and breath retention practices. Practice gentle forward bends, restorative poses like Shavasana, and calming breathing techniques (like Anulom Vilom). Always practice under guidance.",
		},
		{
			Category:       "epilepsy",
			MatchTerms:     []string{"epilepsy", "seizure", "seizures", "epilepsi"},
			Warning:        "Epilepsy requires specialized yoga approach.",
			Recommendation: "Avoid rapid breathing exercises (Bhastrika, Kapalbhati), intense practices, and inversions. Practice gentle, calming yoga with focus on relaxation, meditation, and slow breathing under medical supervision.",
		},
		{
			Category:       "spinal",
			MatchTerms:     []string{"spinal injury", "spine injury", "back injury", "severe back", "disc prolapse", "slipped disc", "herniated disc"},
			Warning:        "Spinal injuries require expert guidance and medical clearance.",
			Recommendation: "Avoid forward bends, deep backbends, twists, and inversions. Practice only under supervision of a qualified yoga therapist or physiotherapist who can provide modified, therapeutic poses.",
		},
		{
			Category:       "cervical",
			MatchTerms:     []string{"neck injury", "cervical", "neck pain", "severe neck"},
			Warning:        "Neck injuries require careful practice.",
			Recommendation: "Avoid shoulder stands, headstands, plow pose, and deep neck rotations. Practice gentle neck stretches, supported poses, and breathing exercises under expert guidance.",
		},
		{
			Category:       "osteoporosis",
			MatchTerms:     []string{"osteoporosis", "bone density", "brittle bones"},
			Warning:        "Osteoporosis requires modified practice to prevent fractures.",
			Recommendation: "Avoid forward bends, deep twists, and high-impact movements. Focus on gentle weight-bearing poses, balance exercises, and strengthening practices under qualified supervision.",
		},
	}
}
