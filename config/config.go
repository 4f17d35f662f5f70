package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the document query service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Document  DocumentConfig  `yaml:"document"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Pinecone  PineconeConfig  `yaml:"pinecone"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable holding the bearer token
}

// DocumentConfig holds download, extraction and chunking configuration.
type DocumentConfig struct {
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	URLPatterns  []string `yaml:"url_patterns"` // doublestar patterns matched against the URL path
	ChunkSize    int      `yaml:"chunk_size"`   // max characters per chunk
	ChunkOverlap int      `yaml:"chunk_overlap"` // accepted but not applied by the word chunker
	TimeoutSecs  int      `yaml:"timeout_secs"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url"`    // OpenAI-compatible endpoint
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// PineconeConfig holds similarity backend configuration.
type PineconeConfig struct {
	APIKeyEnv   string `yaml:"api_key_env"`
	IndexHost   string `yaml:"index_host"` // data-plane host of the index
	Namespace   string `yaml:"namespace"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig holds answer generation configuration.
type LLMConfig struct {
	GroqModel       string  `yaml:"groq_model"`
	GroqAPIKeyEnv   string  `yaml:"groq_api_key_env"`
	OpenAIModel     string  `yaml:"openai_model"`
	OpenAIAPIKeyEnv string  `yaml:"openai_api_key_env"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	MaxContextChars int     `yaml:"max_context_chars"`
}

// RetrievalConfig holds search and concurrency policy configuration.
type RetrievalConfig struct {
	TopK                int          `yaml:"top_k"`
	SequentialThreshold int          `yaml:"sequential_threshold"` // batches up to this size are answered one at a time
	Scorer              ScorerConfig `yaml:"scorer"`
}

// ScorerConfig externalizes the lexical fallback scorer's term table and
// bonus weights so the ranking heuristic is tunable without code changes.
// Empty fields fall back to the built-in insurance-policy defaults.
type ScorerConfig struct {
	Categories      map[string][]string `yaml:"categories"`
	DomainWords     []string            `yaml:"domain_words"`
	KeyPhrase       string              `yaml:"key_phrase"`
	OccurrenceWeight float64            `yaml:"occurrence_weight"`
	QueryTermBonus   float64            `yaml:"query_term_bonus"`
	DomainWordBonus  float64            `yaml:"domain_word_bonus"`
	KeyPhraseBonus   float64            `yaml:"key_phrase_bonus"`
	DefinitionBonus  float64            `yaml:"definition_bonus"`
}

// CacheConfig bounds the per-document chunk cache.
type CacheConfig struct {
	MaxEntries int    `yaml:"max_entries"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	BoltPath   string `yaml:"bolt_path"` // empty disables the persistent layer
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			APIKeyEnv: "DOCQUERY_API_KEY",
		},
		Document: DocumentConfig{
			MaxSizeBytes: 10 * 1024 * 1024,
			URLPatterns:  []string{"**/*.pdf", "**/*.docx", "**/*.doc"},
			ChunkSize:    800,
			ChunkOverlap: 100,
			TimeoutSecs:  30,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Pinecone: PineconeConfig{
			APIKeyEnv:   "PINECONE_API_KEY",
			Namespace:   "",
			TimeoutSecs: 15,
		},
		LLM: LLMConfig{
			GroqModel:       "llama3-8b-8192",
			GroqAPIKeyEnv:   "GROQ_API_KEY",
			OpenAIModel:     "gpt-3.5-turbo",
			OpenAIAPIKeyEnv: "OPENAI_API_KEY",
			MaxTokens:       1000,
			Temperature:     0.1,
			MaxContextChars: 1500,
		},
		Retrieval: RetrievalConfig{
			TopK:                3,
			SequentialThreshold: 3,
		},
		Cache: CacheConfig{
			MaxEntries: 64,
			TTLMinutes: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load loads configuration from a YAML file, layered over defaults.
// A .env file in the working directory, if present, is loaded first so
// api_key_env lookups resolve.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docquery.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docquery.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docquery", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	_ = godotenv.Load()
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// APIKey resolves the bearer token from the configured environment variable.
func (c ServerConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}
