// ABOUTME: Environment overrides for settings and ${VAR} expansion inside string fields
// ABOUTME: Variable names follow the deployment's .env conventions (OPENAI_API_KEY, DATABASE_URL, ...)

package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// applyEnv copies set environment variables over s.
func applyEnv(s *Settings) {
	setString(&s.Environment, "ENVIRONMENT")

	setString(&s.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&s.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&s.OpenAI.Model, "OPENAI_MODEL")
	setString(&s.OpenAI.EmbeddingModel, "EMBEDDING_MODEL")
	setDuration(&s.OpenAI.Timeout, "OPENAI_TIMEOUT")

	setString(&s.RAG.DocsDir, "DOCS_DIR")
	setString(&s.RAG.IndexPath, "RAG_INDEX_PATH")
	setInt(&s.RAG.MaxResults, "RAG_MAX_RESULTS")
	setInt(&s.RAG.ChunkSize, "RAG_CHUNK_SIZE")
	setInt(&s.RAG.ChunkOverlap, "RAG_CHUNK_OVERLAP")

	setString(&s.Store.Driver, "STORE_DRIVER")
	setString(&s.Store.DSN, "DATABASE_URL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		s.Kafka.Brokers = splitList(v)
	}
	setString(&s.Kafka.Topic, "KAFKA_TOPIC")

	setString(&s.Server.Addr, "MEDSUPPORT_ADDR")
	setDuration(&s.Server.RequestTimeout, "REQUEST_TIMEOUT")

	setString(&s.Log.Level, "LOG_LEVEL")
	setString(&s.Log.Format, "LOG_FORMAT")

	if v, ok := os.LookupEnv("SEED_DATA"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.SeedData = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}

// setDuration accepts Go durations ("45s") or bare seconds ("45").
func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.OpenAI.APIKey = expandEnv(s.OpenAI.APIKey)
	s.OpenAI.BaseURL = expandEnv(s.OpenAI.BaseURL)
	s.RAG.DocsDir = expandEnv(s.RAG.DocsDir)
	s.RAG.IndexPath = expandEnv(s.RAG.IndexPath)
	s.Store.DSN = expandEnv(s.Store.DSN)
	for i, b := range s.Kafka.Brokers {
		s.Kafka.Brokers[i] = expandEnv(b)
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
