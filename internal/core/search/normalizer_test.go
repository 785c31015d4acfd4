package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jinford/yoga-rag/internal/core/search"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "lowercase and trim",
			query: "  Surya Namaskar  ",
			want:  "surya namaskar sun salutation sequence",
		},
		{
			name:  "what is prefix removed after expansion",
			query: "What is Pranayama?",
			want:  "pranayama breathing exercises breath control?",
		},
		{
			name:  "how to appends steps technique",
			query: "how to do headstand",
			want:  "do headstand sirsasana inversion steps technique",
		},
		{
			name:  "benefits of appends benefits advantages",
			query: "benefits of meditation",
			want:  " meditation dhyana mindfulness concentration benefits advantages",
		},
		{
			name:  "short query gets generic context",
			query: "yoga",
			want:  "yoga yoga practice information",
		},
		{
			name:  "expansion alone is long enough",
			query: "tell me about asana",
			want:  "tell me about asana yoga pose posture",
		},
		{
			name:  "no expansion applies",
			query: "is it okay to practice in the evening",
			want:  "is it okay to practice in the evening",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := search.Normalize(tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	query := "how to practice shavasana"

	first := search.Normalize(query)
	second := search.Normalize(query)

	assert.Equal(t, first, second)
}
