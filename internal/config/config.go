package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=0,max=65535"`
}

// OpenAIConfig configures the OpenAI-compatible embeddings and chat client.
type OpenAIConfig struct {
	BaseURL       string  `yaml:"base_url"`
	APIKeyEnv     string  `yaml:"api_key_env"`
	ChatModel     string  `yaml:"chat_model"`
	FallbackModel string  `yaml:"fallback_model"`
	EmbedModel    string  `yaml:"embed_model"`
	TimeoutSecs   int     `yaml:"timeout_secs" validate:"min=0"`
	MaxTokens     int     `yaml:"max_tokens" validate:"min=0"`
	Temperature   float64 `yaml:"temperature" validate:"min=0,max=2"`
}

// IndexConfig locates the precomputed embedding index on disk.
type IndexConfig struct {
	Dir            string `yaml:"dir"`
	EmbeddingsFile string `yaml:"embeddings_file"`
	MetaFile       string `yaml:"meta_file"`
}

// RetrievalConfig holds the ranking and prompting knobs.
type RetrievalConfig struct {
	TopK          int     `yaml:"top_k" validate:"min=1"`
	MinSimilarity float64 `yaml:"min_similarity"`
	EscalateSim   float64 `yaml:"escalate_similarity"`
	MaxChunkChars int     `yaml:"max_chunk_chars" validate:"min=1"`
	MaxSources    int     `yaml:"max_sources" validate:"min=1"`
}

// BoostConfig holds the additive score-boost heuristics. Keywords are matched
// as lowercase substrings against chunk text and document titles.
type BoostConfig struct {
	TrustedDomain      string   `yaml:"trusted_domain"`
	Keywords           []string `yaml:"keywords"`
	CuratedSourceTypes []string `yaml:"curated_source_types"`
	DomainBoost        float64  `yaml:"domain_boost"`
	KeywordBoost       float64  `yaml:"keyword_boost"`
	CuratedBoost       float64  `yaml:"curated_boost"`
}

// LiveConfig configures the live search variant.
type LiveConfig struct {
	SearchURL        string   `yaml:"search_url"`
	APIKeyEnv        string   `yaml:"api_key_env"`
	EngineIDEnv      string   `yaml:"engine_id_env"`
	ResultCount      int      `yaml:"result_count" validate:"min=1,max=10"`
	SearchTimeoutSec int      `yaml:"search_timeout_secs" validate:"min=0"`
	FetchTimeoutSec  int      `yaml:"fetch_timeout_secs" validate:"min=0"`
	MaxPageChars     int      `yaml:"max_page_chars" validate:"min=1"`
	MinContentChars  int      `yaml:"min_content_chars" validate:"min=0"`
	ContentSelectors []string `yaml:"content_selectors"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Boost     BoostConfig     `yaml:"boost"`
	Live      LiveConfig      `yaml:"live"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// defaultKeywords is the built-in topical keyword list for score boosting:
// Uzbek and Russian education/legal terms, matched case-insensitively.
var defaultKeywords = []string{
	"ta'lim", "ta’lim", "oliy ta'lim", "maktab", "kollej", "litsey", "universitet", "abituriyent",
	"davlat ta'lim standarti", "akkreditatsiya", "o'quv reja", "qabul", "grant", "stipendiya",
	"talaba", "o‘quvchi", "o’quvchi", "o‘qituvchi", "pedagog", "malaka oshirish",
	"TTJ", "yotoqxona", "DS", "DTM", "my.maktab.uz", "talablar", "litsenziya", "litsenziyalash",
	"образование", "школа", "колледж", "лицей", "университет", "абитуриент", "приём", "аккредитация",
}

// Load reads a config from the given path. If the file does not exist,
// defaults are returned.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.FallbackModel == "" {
		cfg.OpenAI.FallbackModel = "gpt-4o"
	}
	if cfg.OpenAI.EmbedModel == "" {
		cfg.OpenAI.EmbedModel = "text-embedding-3-large"
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 60
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 450
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "./index_store"
	}
	if cfg.Index.EmbeddingsFile == "" {
		cfg.Index.EmbeddingsFile = "embeddings.npy"
	}
	if cfg.Index.MetaFile == "" {
		cfg.Index.MetaFile = "meta.jsonl"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 8
	}
	if cfg.Retrieval.MinSimilarity == 0 {
		cfg.Retrieval.MinSimilarity = 0.22
	}
	if cfg.Retrieval.EscalateSim == 0 {
		cfg.Retrieval.EscalateSim = 0.30
	}
	if cfg.Retrieval.MaxChunkChars == 0 {
		cfg.Retrieval.MaxChunkChars = 700
	}
	if cfg.Retrieval.MaxSources == 0 {
		cfg.Retrieval.MaxSources = 10
	}
	if cfg.Boost.TrustedDomain == "" {
		cfg.Boost.TrustedDomain = "lex.uz"
	}
	if len(cfg.Boost.Keywords) == 0 {
		cfg.Boost.Keywords = defaultKeywords
	}
	if len(cfg.Boost.CuratedSourceTypes) == 0 {
		cfg.Boost.CuratedSourceTypes = []string{"parsed_lex", "jsonl"}
	}
	if cfg.Boost.DomainBoost == 0 {
		cfg.Boost.DomainBoost = 0.08
	}
	if cfg.Boost.KeywordBoost == 0 {
		cfg.Boost.KeywordBoost = 0.05
	}
	if cfg.Boost.CuratedBoost == 0 {
		cfg.Boost.CuratedBoost = 0.03
	}
	if cfg.Live.SearchURL == "" {
		cfg.Live.SearchURL = "https://www.googleapis.com/customsearch/v1"
	}
	if cfg.Live.APIKeyEnv == "" {
		cfg.Live.APIKeyEnv = "GOOGLE_SEARCH_API_KEY"
	}
	if cfg.Live.EngineIDEnv == "" {
		cfg.Live.EngineIDEnv = "GOOGLE_SEARCH_ENGINE_ID"
	}
	if cfg.Live.ResultCount == 0 {
		cfg.Live.ResultCount = 5
	}
	if cfg.Live.SearchTimeoutSec == 0 {
		cfg.Live.SearchTimeoutSec = 15
	}
	if cfg.Live.FetchTimeoutSec == 0 {
		cfg.Live.FetchTimeoutSec = 20
	}
	if cfg.Live.MaxPageChars == 0 {
		cfg.Live.MaxPageChars = 6000
	}
	if cfg.Live.MinContentChars == 0 {
		cfg.Live.MinContentChars = 200
	}
	if len(cfg.Live.ContentSelectors) == 0 {
		cfg.Live.ContentSelectors = []string{"main", "article", "#content", ".content"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
