package model

// Config is the complete ilmconvert configuration. Values come from
// (highest priority first) CLI flags, ILMCONVERT_* environment variables,
// the config file, and these defaults.
type Config struct {
	LLM    LLMConfig    `yaml:"llm" json:"llm"`
	Fiqh   FiqhConfig   `yaml:"fiqh" json:"fiqh"`
	Tafsir TafsirConfig `yaml:"tafsir" json:"tafsir"`
}

// LLMConfig holds generative-service settings for the fiqh extractor
type LLMConfig struct {
	// Provider name: "anthropic", "openai", "ollama"
	Provider string `yaml:"provider" json:"provider"`

	// Model name (provider-specific; empty uses the provider default)
	Model string `yaml:"model" json:"model"`

	// APIKey for the hosted providers (normally via env var)
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty"`

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Timeout for one extraction request, in seconds
	Timeout int `yaml:"timeout" json:"timeout"`

	// MaxTokens bounds the response size
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`
}

// FiqhConfig holds paths for the DOCX card converter
type FiqhConfig struct {
	InputDir   string `yaml:"input_dir" json:"input_dir"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`
	SampleFile string `yaml:"sample_file" json:"sample_file"`
}

// TafsirConfig holds paths and credentials for the database exporter
type TafsirConfig struct {
	DownloadsDir string `yaml:"downloads_dir" json:"downloads_dir"`
	OutputDir    string `yaml:"output_dir" json:"output_dir"`

	// Ingestion credentials (ingest is currently enumerate-only)
	APIToken    string `yaml:"api_token,omitempty" json:"api_token,omitempty"`
	NamespaceID string `yaml:"namespace_id,omitempty" json:"namespace_id,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "anthropic",
			Timeout:   120,
			MaxTokens: 8192,
		},
		Fiqh: FiqhConfig{
			InputDir:   "sample_input_data/fiqh_cards",
			OutputDir:  "sample_output_data/fiqh_cards",
			SampleFile: "sample_input_data/fiqh_cards/sample.docx",
		},
		Tafsir: TafsirConfig{
			DownloadsDir: "downloads",
			OutputDir:    "output",
		},
	}
}
