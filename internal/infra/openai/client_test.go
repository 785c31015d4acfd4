package openai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/yoga-rag/internal/infra/openai"
)

func TestNewClient_MissingAPIKey(t *testing.T) {
	client, err := openai.NewClient("", "gpt-4o-mini")

	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, openai.ErrAPIKeyNotSet)
}

func TestNewClient_DefaultsClassifierModel(t *testing.T) {
	client, err := openai.NewClient("test-key", "")

	require.NoError(t, err)
	assert.NotNil(t, client)
}
