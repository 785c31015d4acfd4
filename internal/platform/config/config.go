package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// StorageBackend はコーパス永続化先の種別
type StorageBackend string

const (
	// StorageFile はローカルJSONファイルへの永続化
	StorageFile StorageBackend = "file"
	// StoragePostgres はPostgreSQL（pgvector）への永続化
	StoragePostgres StorageBackend = "postgres"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// OpenAI API設定
	OpenAI OpenAIConfig

	// コーパス永続化設定
	Storage StorageConfig

	// Database設定（Storage.Backend が postgres の場合のみ使用）
	Database DatabaseConfig

	// パイプライン設定
	Pipeline PipelineConfig

	// ログ設定
	LogLevel  string
	LogFormat string
}

// OpenAIConfig はOpenAI API設定（Embeddings + LLM）
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	ClassifierModel    string
	// GenerationModels は回答生成の試行順モデルリスト
	GenerationModels []string
}

// StorageConfig はコーパス永続化設定
type StorageConfig struct {
	Backend StorageBackend
	// Path はファイルバックエンド時の保存ディレクトリ
	Path string
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PipelineConfig は質問応答パイプラインの設定
type PipelineConfig struct {
	TopK           int
	MaxQueryLength int
	// KnowledgeBasePath はインデックス構築時のナレッジベースJSONパス
	KnowledgeBasePath string
}

// Load は .env ファイルと環境変数から設定を読み込みます。
// .env が存在しない場合は環境変数のみを使います。
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			ClassifierModel:    getEnv("OPENAI_CLASSIFIER_MODEL", "gpt-4o-mini"),
			GenerationModels:   getEnvAsList("OPENAI_GENERATION_MODELS", []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}),
		},
		Storage: StorageConfig{
			Backend: StorageBackend(getEnv("STORAGE_BACKEND", string(StorageFile))),
			Path:    getEnv("VECTOR_STORE_PATH", "./vector_store"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "yogarag"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "yogarag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Pipeline: PipelineConfig{
			TopK:              getEnvAsInt("PIPELINE_TOP_K", 5),
			MaxQueryLength:    getEnvAsInt("PIPELINE_MAX_QUERY_LENGTH", 500),
			KnowledgeBasePath: getEnv("KNOWLEDGE_BASE_PATH", "./knowledge_base.json"),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	switch cfg.Storage.Backend {
	case StorageFile, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList は環境変数をカンマ区切りリストとして取得します
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
