package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/yoga-rag/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	// Execute
	cfg, err := config.Load("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 1536, cfg.OpenAI.EmbeddingDimension)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ClassifierModel)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}, cfg.OpenAI.GenerationModels)
	assert.Equal(t, config.StorageFile, cfg.Storage.Backend)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 500, cfg.Pipeline.MaxQueryLength)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	// Setup
	t.Setenv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("OPENAI_EMBEDDING_DIMENSION", "3072")
	t.Setenv("OPENAI_GENERATION_MODELS", "gpt-4o, gpt-4o-mini")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PIPELINE_TOP_K", "10")

	// Execute
	cfg, err := config.Load("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 3072, cfg.OpenAI.EmbeddingDimension)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, cfg.OpenAI.GenerationModels)
	assert.Equal(t, config.StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 10, cfg.Pipeline.TopK)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	// Setup
	t.Setenv("PIPELINE_TOP_K", "not-a-number")

	// Execute
	cfg, err := config.Load("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
}

func TestLoad_UnknownStorageBackend(t *testing.T) {
	// Setup
	t.Setenv("STORAGE_BACKEND", "redis")

	// Execute
	cfg, err := config.Load("")

	// Assert
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestLoad_MissingEnvFileIsTolerated(t *testing.T) {
	cfg, err := config.Load("/nonexistent/.env")

	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
