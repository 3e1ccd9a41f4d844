// ABOUTME: Service settings: built-in defaults, then global and project YAML, then environment
// ABOUTME: A .env file in the project root is loaded into the environment first via godotenv

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Settings holds the merged configuration.
type Settings struct {
	Environment string         `yaml:"environment"`
	OpenAI      OpenAISettings `yaml:"openai"`
	RAG         RAGSettings    `yaml:"rag"`
	Store       StoreSettings  `yaml:"store"`
	Kafka       KafkaSettings  `yaml:"kafka"`
	Server      ServerSettings `yaml:"server"`
	Log         LogSettings    `yaml:"log"`
	SeedData    bool           `yaml:"seed_data"`
}

// OpenAISettings configures the chat-completion and embeddings client.
// An empty APIKey leaves the client unconfigured.
type OpenAISettings struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	EmbeddingModel string        `yaml:"embedding_model"`
	Timeout        time.Duration `yaml:"timeout"`
}

// RAGSettings configures document ingestion and retrieval.
type RAGSettings struct {
	DocsDir      string        `yaml:"docs_dir"`
	IndexPath    string        `yaml:"index_path"` // empty keeps the index in memory
	MaxResults   int           `yaml:"max_results"`
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`
	EmbeddingDim int           `yaml:"embedding_dim"`
	Timeout      time.Duration `yaml:"timeout"`
	Watch        bool          `yaml:"watch"`
}

// StoreSettings selects the data-access backend.
type StoreSettings struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"` // file path for sqlite, connection string for postgres
}

// KafkaSettings configures the optional audit stream. No brokers disables it.
type KafkaSettings struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LogSettings configures internal/log.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	return &Settings{
		Environment: "development",
		OpenAI: OpenAISettings{
			Model:          "gpt-4o",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        30 * time.Second,
		},
		RAG: RAGSettings{
			DocsDir:      "docs",
			IndexPath:    filepath.Join(GlobalDir(), "index.db"),
			MaxResults:   5,
			ChunkSize:    800,
			ChunkOverlap: 150,
			EmbeddingDim: 128,
			Timeout:      10 * time.Second,
		},
		Store: StoreSettings{
			Driver: DriverSQLite,
			DSN:    filepath.Join(GlobalDir(), "medsupport.db"),
		},
		Kafka: KafkaSettings{
			Topic: "chat-audit",
		},
		Server: ServerSettings{
			Addr:           ":8001",
			RequestTimeout: 30 * time.Second,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds settings for projectRoot: defaults, the global file, the project
// file, then environment overrides. Missing files are skipped.
func Load(projectRoot string) (*Settings, error) {
	if err := loadDotEnv(filepath.Join(projectRoot, ".env")); err != nil {
		return nil, err
	}

	s := Defaults()
	for _, path := range []string{GlobalConfigFile(), ProjectConfigFile(projectRoot)} {
		if err := overlayFile(s, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return finish(s)
}

// LoadFile builds settings from defaults, the single file at path, and the
// environment. Unlike Load, a missing file is an error.
func LoadFile(path string) (*Settings, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	s := Defaults()
	if err := overlayFile(s, path); err != nil {
		return nil, err
	}
	return finish(s)
}

func finish(s *Settings) (*Settings, error) {
	applyEnv(s)
	ResolveEnvVars(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadDotEnv exports the variables in path without overriding ones already set.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// overlayFile decodes the YAML file at path onto s. Keys absent from the file
// keep their current values.
func overlayFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (s *Settings) Validate() error {
	switch s.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if s.Store.DSN == "" {
			return errors.New("config: store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", s.Store.Driver)
	}
	if s.RAG.ChunkSize <= 0 {
		return fmt.Errorf("config: rag.chunk_size must be positive, got %d", s.RAG.ChunkSize)
	}
	if s.RAG.ChunkOverlap < 0 || s.RAG.ChunkOverlap >= s.RAG.ChunkSize {
		return fmt.Errorf("config: rag.chunk_overlap must be in [0, %d), got %d", s.RAG.ChunkSize, s.RAG.ChunkOverlap)
	}
	if s.RAG.MaxResults <= 0 {
		return fmt.Errorf("config: rag.max_results must be positive, got %d", s.RAG.MaxResults)
	}
	if s.IsProduction() && s.Store.Driver == DriverMemory {
		return errors.New("config: the memory store is not allowed in production")
	}
	return nil
}

// IsProduction reports whether environment names a production deployment.
func (s *Settings) IsProduction() bool {
	switch strings.ToLower(s.Environment) {
	case "production", "prod":
		return true
	}
	return false
}

// AuditEnabled reports whether exchanges are streamed to Kafka.
func (s *Settings) AuditEnabled() bool {
	return len(s.Kafka.Brokers) > 0 && s.Kafka.Topic != ""
}
