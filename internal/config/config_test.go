// ABOUTME: Tests for settings defaults, YAML overlay, environment overrides and validation
// ABOUTME: Uses temp directories and t.Setenv; HOME is redirected so the real global file is never read

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at an empty temp dir and clears variables a developer
// machine might have set.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"ENVIRONMENT", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "EMBEDDING_MODEL",
		"OPENAI_TIMEOUT", "DOCS_DIR", "RAG_INDEX_PATH", "RAG_MAX_RESULTS", "RAG_CHUNK_SIZE",
		"RAG_CHUNK_OVERLAP", "STORE_DRIVER", "DATABASE_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"MEDSUPPORT_ADDR", "REQUEST_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "SEED_DATA",
	} {
		t.Setenv(k, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %q, want gpt-4o", s.OpenAI.Model)
	}
	if s.RAG.ChunkSize != 800 || s.RAG.ChunkOverlap != 150 || s.RAG.MaxResults != 5 {
		t.Errorf("RAG = %+v, want chunk 800/150 and 5 results", s.RAG)
	}
	if s.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want sqlite", s.Store.Driver)
	}
	if s.Server.Addr != ":8001" {
		t.Errorf("Server.Addr = %q, want :8001", s.Server.Addr)
	}
	if s.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", s.Log.Format)
	}
	if s.AuditEnabled() {
		t.Error("AuditEnabled() = true without brokers")
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := isolate(t)
	project := t.TempDir()

	writeFile(t, filepath.Join(home, ".medsupport", "config.yaml"), `
openai:
  model: global-model
  timeout: 5s
rag:
  max_results: 3
`)
	writeFile(t, filepath.Join(project, "medsupport.yaml"), `
openai:
  model: project-model
store:
  driver: memory
`)

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OpenAI.Model != "project-model" {
		t.Errorf("OpenAI.Model = %q, want project-model", s.OpenAI.Model)
	}
	if s.OpenAI.Timeout != 5*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 5s from global", s.OpenAI.Timeout)
	}
	if s.RAG.MaxResults != 3 {
		t.Errorf("RAG.MaxResults = %d, want 3 from global", s.RAG.MaxResults)
	}
	if s.RAG.ChunkSize != 800 {
		t.Errorf("RAG.ChunkSize = %d, want default 800", s.RAG.ChunkSize)
	}
	if s.Store.Driver != DriverMemory {
		t.Errorf("Store.Driver = %q, want memory", s.Store.Driver)
	}
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "medsupport.yaml"), "log:\n  level: debug\n")

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("REQUEST_TIMEOUT", "45")

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", s.Log.Level)
	}
	if len(s.Kafka.Brokers) != 2 || s.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", s.Kafka.Brokers)
	}
	if !s.AuditEnabled() {
		t.Error("AuditEnabled() = false with brokers and default topic")
	}
	if !s.SeedData {
		t.Error("SeedData = false, want true")
	}
	if s.Server.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", s.Server.RequestTimeout)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ".env"), "OPENAI_API_KEY=sk-from-dotenv\n")
	// godotenv does not override variables that are already set, and isolate
	// set it to empty; unset it so the file can supply it.
	os.Unsetenv("OPENAI_API_KEY")
	t.Cleanup(func() { os.Unsetenv("OPENAI_API_KEY") })

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OpenAI.APIKey != "sk-from-dotenv" {
		t.Errorf("OpenAI.APIKey = %q, want value from .env", s.OpenAI.APIKey)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "medsupport.yaml"), "rag: [not, a, map")

	if _, err := Load(project); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	isolate(t)

	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadFile should fail for a missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"unknown driver", func(s *Settings) { s.Store.Driver = "mysql" }, "unknown store.driver"},
		{"postgres without dsn", func(s *Settings) { s.Store.Driver = DriverPostgres; s.Store.DSN = "" }, "store.dsn"},
		{"overlap too large", func(s *Settings) { s.RAG.ChunkOverlap = 800 }, "chunk_overlap"},
		{"zero results", func(s *Settings) { s.RAG.MaxResults = 0 }, "max_results"},
		{"memory in production", func(s *Settings) { s.Environment = "prod"; s.Store.Driver = DriverMemory }, "production"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Defaults()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
