// Package config provides configuration loading for bomatch.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/genai"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/logging"
	"github.com/fyrsmithlabs/bomatch/internal/workflow"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   logging.Config  `koanf:"logging"`
	Gemini    GeminiConfig    `koanf:"gemini"`
	Knowledge KnowledgeConfig `koanf:"knowledge"`
	Workflow  WorkflowConfig  `koanf:"workflow"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8000".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`

	// UploadDir is where uploaded files are stored. Default: "uploads".
	UploadDir string `koanf:"upload_dir"`

	// MaxUploadBytes caps multipart upload size. Default: 32MB.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// GeminiConfig holds the LLM client settings.
type GeminiConfig struct {
	APIKey      Secret   `koanf:"api_key"`
	Model       string   `koanf:"model"`
	BaseURL     string   `koanf:"base_url"`
	Timeout     Duration `koanf:"timeout"`
	MaxRetries  int      `koanf:"max_retries"`
	BaseBackoff Duration `koanf:"base_backoff"`
}

// KnowledgeConfig holds the knowledge store settings.
type KnowledgeConfig struct {
	// Backend selects the store: "chromem" (default) or "qdrant".
	Backend string        `koanf:"backend"`
	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig holds settings for the embedded chromem backend.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Compress   bool   `koanf:"compress"`
	Collection string `koanf:"collection"`
}

// QdrantConfig holds settings for the Qdrant backend.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	UseTLS     bool   `koanf:"use_tls"`
	Collection string `koanf:"collection"`
}

// WorkflowConfig holds pipeline settings.
type WorkflowConfig struct {
	ResultsDir     string `koanf:"results_dir"`
	SourceLanguage string `koanf:"source_language"`
	TargetLanguage string `koanf:"target_language"`
	ChunkSize      int    `koanf:"chunk_size"`
	MaxParallel    int    `koanf:"max_parallel"`
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "uploads"
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}

	cfg.Logging.ApplyDefaults()

	if cfg.Knowledge.Backend == "" {
		cfg.Knowledge.Backend = "chromem"
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.Knowledge.Backend {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("knowledge: unknown backend %q", c.Knowledge.Backend)
	}
	if c.Workflow.ChunkSize < 0 {
		return fmt.Errorf("workflow: chunk_size cannot be negative")
	}
	if c.Workflow.MaxParallel < 0 {
		return fmt.Errorf("workflow: max_parallel cannot be negative")
	}
	return nil
}

// GeminiClientConfig converts to the genai client config.
func (c *Config) GeminiClientConfig() genai.Config {
	return genai.Config{
		APIKey:      c.Gemini.APIKey.Value(),
		Model:       c.Gemini.Model,
		BaseURL:     c.Gemini.BaseURL,
		Timeout:     c.Gemini.Timeout.Duration(),
		MaxRetries:  c.Gemini.MaxRetries,
		BaseBackoff: c.Gemini.BaseBackoff.Duration(),
	}
}

// KnowledgeStoreConfig converts to the knowledge store config.
func (c *Config) KnowledgeStoreConfig() knowledge.Config {
	return knowledge.Config{
		Backend: c.Knowledge.Backend,
		Chromem: knowledge.ChromemConfig{
			Path:       c.Knowledge.Chromem.Path,
			Compress:   c.Knowledge.Chromem.Compress,
			Collection: c.Knowledge.Chromem.Collection,
		},
		Qdrant: knowledge.QdrantConfig{
			Host:       c.Knowledge.Qdrant.Host,
			Port:       c.Knowledge.Qdrant.Port,
			UseTLS:     c.Knowledge.Qdrant.UseTLS,
			Collection: c.Knowledge.Qdrant.Collection,
		},
	}
}

// ExtractionConfig converts to the extraction coordinator config.
func (c *Config) ExtractionConfig() extraction.Config {
	return extraction.Config{
		ChunkSize:   c.Workflow.ChunkSize,
		MaxParallel: c.Workflow.MaxParallel,
	}
}

// WorkflowOrchestratorConfig converts to the workflow orchestrator config.
func (c *Config) WorkflowOrchestratorConfig() workflow.Config {
	return workflow.Config{
		ResultsDir:     c.Workflow.ResultsDir,
		SourceLanguage: c.Workflow.SourceLanguage,
		TargetLanguage: c.Workflow.TargetLanguage,
	}
}
