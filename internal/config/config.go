package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LLM providers accepted by LLM_PROVIDER.
const (
	LLMProviderGemini   = "gemini"
	LLMProviderOpenAI   = "openai"
	LLMProviderDeepSeek = "deepseek"
)

// Search backends accepted by SEARCH_BACKEND.
const (
	SearchBackendSerpAPI    = "serpapi"
	SearchBackendGoogleNews = "googlenews"
)

const journalFileName = "analyses.db"

// Config holds all runtime configuration for the advisor service.
type Config struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	DataDir            string        `mapstructure:"data_dir"`
	WebDir             string        `mapstructure:"web_dir"`
	StrategySchemaPath string        `mapstructure:"strategy_schema_path"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	AnalysisJournal    bool          `mapstructure:"analysis_journal"`

	LLMProvider    string  `mapstructure:"llm_provider"`
	LLMModel       string  `mapstructure:"llm_model"`
	LLMTemperature float32 `mapstructure:"llm_temperature"`
	LLMBaseURL     string  `mapstructure:"llm_base_url"`
	GoogleAPIKey   string  `mapstructure:"google_api_key"`
	OpenAIAPIKey   string  `mapstructure:"openai_api_key"`
	DeepSeekAPIKey string  `mapstructure:"deepseek_api_key"`
	AgentMaxSteps  int     `mapstructure:"agent_max_steps"`

	TrueDataUsername   string `mapstructure:"truedata_username"`
	TrueDataPassword   string `mapstructure:"truedata_password"`
	TrueDataAuthURL    string `mapstructure:"truedata_auth_url"`
	TrueDataHistoryURL string `mapstructure:"truedata_history_url"`
	RapidAPIKey        string `mapstructure:"rapidapi_key"`
	RapidAPIHost       string `mapstructure:"rapidapi_host"`
	RapidAPIBaseURL    string `mapstructure:"rapidapi_base_url"`
	KiteAPIKey         string `mapstructure:"kite_api_key"`
	KiteAccessToken    string `mapstructure:"kite_access_token"`
	YahooSymbolSuffix  string `mapstructure:"yahoo_symbol_suffix"`

	SearchBackend     string `mapstructure:"search_backend"`
	SerpAPIKey        string `mapstructure:"serpapi_api_key"`
	SerpAPIBaseURL    string `mapstructure:"serpapi_base_url"`
	GoogleNewsBaseURL string `mapstructure:"googlenews_base_url"`

	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	TracingEnabled bool   `mapstructure:"log_tracing_enabled"`
}

var defaults = map[string]any{
	"host":                 "127.0.0.1",
	"port":                 8000,
	"data_dir":             "",
	"web_dir":              "",
	"strategy_schema_path": filepath.Join("config", "strategy_schema.json"),
	"http_timeout":         30 * time.Second,
	"analysis_journal":     false,

	"llm_provider":     LLMProviderGemini,
	"llm_model":        "gemini-2.5-flash",
	"llm_temperature":  0.3,
	"llm_base_url":     "",
	"google_api_key":   "",
	"openai_api_key":   "",
	"deepseek_api_key": "",
	"agent_max_steps":  30,

	"truedata_username":    "",
	"truedata_password":    "",
	"truedata_auth_url":    "https://auth.truedata.in/token",
	"truedata_history_url": "https://history.truedata.in",
	"rapidapi_key":         "",
	"rapidapi_host":        "indian-stock-exchange-api2.p.rapidapi.com",
	"rapidapi_base_url":    "https://indian-stock-exchange-api2.p.rapidapi.com",
	"kite_api_key":         "",
	"kite_access_token":    "",
	"yahoo_symbol_suffix":  ".NS",

	"search_backend":      SearchBackendSerpAPI,
	"serpapi_api_key":     "",
	"serpapi_base_url":    "https://serpapi.com",
	"googlenews_base_url": "https://news.google.com",

	"log_level":           "info",
	"log_format":          "text",
	"log_tracing_enabled": false,
}

// Load reads configuration from a .env file, the environment and an optional
// config.yaml. Environment variables take precedence over the config file.
// Every key is read from the upper-cased environment variable of the same name.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.stock-advisor")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.SearchBackend = strings.ToLower(strings.TrimSpace(c.SearchBackend))
	if c.AgentMaxSteps <= 0 {
		c.AgentMaxSteps = 30
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

// Validate checks that the language model is usable. A missing model
// credential is fatal; data and search credentials are optional.
func (c *Config) Validate() error {
	var missing []string
	switch c.LLMProvider {
	case LLMProviderGemini:
		if c.GoogleAPIKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
	case LLMProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case LLMProviderDeepSeek:
		if c.DeepSeekAPIKey == "" {
			missing = append(missing, "DEEPSEEK_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %q", c.LLMProvider)
	}
	if c.LLMModel == "" {
		missing = append(missing, "LLM_MODEL")
	}

	switch c.SearchBackend {
	case SearchBackendSerpAPI, SearchBackendGoogleNews:
	default:
		return fmt.Errorf("unsupported SEARCH_BACKEND: %q", c.SearchBackend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LLMAPIKey returns the credential of the selected language model provider.
func (c *Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case LLMProviderOpenAI:
		return c.OpenAIAPIKey
	case LLMProviderDeepSeek:
		return c.DeepSeekAPIKey
	default:
		return c.GoogleAPIKey
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func userHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home, nil
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "StockAdvisor"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := userHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "StockAdvisor"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "stock-advisor"), nil
	}
	return filepath.Join(configDir, "stock-advisor"), nil
}

// ResolveDataDir returns the data directory, creating it when needed.
// An explicit DATA_DIR wins over the per-user application directory.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
			return "", err
		}
		return c.DataDir, nil
	}
	defaultDir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return "", err
	}
	c.DataDir = defaultDir
	return defaultDir, nil
}

// JournalPath returns the sqlite file used by the analysis journal.
func (c *Config) JournalPath() (string, error) {
	if envPath := os.Getenv("ANALYSIS_JOURNAL_PATH"); envPath != "" {
		return envPath, nil
	}
	dataDir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, journalFileName), nil
}
