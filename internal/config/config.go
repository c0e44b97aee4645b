// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/store"
)

// Config is the runtime configuration. It can be loaded from a JSON file and
// from the environment; all fields are optional and fall back to Defaults.
type Config struct {
	// Storage
	Storage       string `json:"storage,omitempty"`        // Backend: file, memory, sqlite, postgres, redis
	DataDir       string `json:"data_dir,omitempty"`       // Directory for the file and sqlite backends
	StorageKey    string `json:"storage_key,omitempty"`    // Key the record is persisted under
	DatabaseURL   string `json:"database_url,omitempty"`   // PostgreSQL connection URL
	RedisAddr     string `json:"redis_addr,omitempty"`     // Redis host:port
	RedisPassword string `json:"redis_password,omitempty"` // Redis AUTH password
	RedisDB       int    `json:"redis_db,omitempty"`       // Redis logical database

	// Rendering and export
	Template   string `json:"template,omitempty"`    // Default template id
	ChromePath string `json:"chrome_path,omitempty"` // Chrome/Chromium executable for PDF export

	// AI intake
	LLMProvider string `json:"llm_provider,omitempty"` // gemini or openai
	LLMModel    string `json:"llm_model,omitempty"`    // Overrides the model for every tier
	APIKey      string `json:"api_key,omitempty"`      // Provider API key

	// Server
	Port string `json:"port,omitempty"`

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Storage:     db.BackendFile,
		DataDir:     "data",
		StorageKey:  store.DefaultKey,
		RedisAddr:   "localhost:6379",
		Template:    string(rendering.DefaultTemplate),
		LLMProvider: string(llm.ProviderGemini),
		Port:        "8080",
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. The API key is
// taken from GEMINI_API_KEY or OPENAI_API_KEY depending on LLM_PROVIDER.
func FromEnv() (Config, error) {
	cfg := Config{
		Storage:       os.Getenv("CV_STORAGE"),
		DataDir:       os.Getenv("CV_DATA_DIR"),
		StorageKey:    os.Getenv("CV_STORAGE_KEY"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Template:      os.Getenv("CV_TEMPLATE"),
		ChromePath:    os.Getenv("CHROME_PATH"),
		LLMProvider:   os.Getenv("LLM_PROVIDER"),
		LLMModel:      os.Getenv("LLM_MODEL"),
		Port:          os.Getenv("PORT"),
	}

	if s := os.Getenv("REDIS_DB"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB: %v", err)
		}
		cfg.RedisDB = n
	}
	if s := os.Getenv("CV_VERBOSE"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CV_VERBOSE: %v", err)
		}
		cfg.Verbose = v
	}

	cfg.APIKey = apiKeyFromEnv(cfg.LLMProvider)
	return cfg, nil
}

// Resolve builds the effective configuration: environment variables win over
// the config file at path (skipped when empty), which wins over Defaults.
func Resolve(path string) (Config, error) {
	env, err := FromEnv()
	if err != nil {
		return Config{}, err
	}

	var file Config
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		file = *loaded
	}

	merged := env.MergeWithDefaults(file)
	merged.Verbose = env.Verbose || file.Verbose
	if env.LLMProvider == "" && file.LLMProvider != "" {
		// The key must belong to the provider the file selected.
		merged.APIKey = file.APIKey
		if key := apiKeyFromEnv(file.LLMProvider); key != "" {
			merged.APIKey = key
		}
	}
	merged = merged.MergeWithDefaults(Defaults())

	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

func apiKeyFromEnv(provider string) string {
	if provider == string(llm.ProviderOpenAI) {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

// Validate checks that the configuration has valid values. Empty fields are
// accepted since they are filled from Defaults.
func (c *Config) Validate() error {
	if c.Storage != "" && !slices.Contains(db.Backends, c.Storage) {
		return fmt.Errorf("config error: unknown storage %q (want one of %v)", c.Storage, db.Backends)
	}
	if c.Storage == db.BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for postgres storage")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}

	if c.Template != "" {
		if _, ok := rendering.ParseTemplateID(c.Template); !ok {
			return fmt.Errorf("config error: unknown template %q", c.Template)
		}
	}
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Port != "" {
		if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("config error: invalid port %q", c.Port)
		}
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome executable not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Storage == "" {
		result.Storage = defaults.Storage
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.StorageKey == "" {
		result.StorageKey = defaults.StorageKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.LLMModel == "" {
		result.LLMModel = defaults.LLMModel
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Port == "" {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// DBOptions returns the storage backend options.
func (c *Config) DBOptions() db.Options {
	return db.Options{
		Backend:       c.Storage,
		DataDir:       c.DataDir,
		DatabaseURL:   c.DatabaseURL,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// LLMConfig returns the model configuration for the selected provider.
func (c *Config) LLMConfig() *llm.Config {
	provider, err := llm.ParseProvider(c.LLMProvider)
	if err != nil {
		provider = llm.ProviderGemini
	}
	return llm.ConfigFor(provider).WithOverride(c.LLMModel)
}
