package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"

	DefaultModelID = "gemini-2.5-flash-lite"
	DefaultEnvFile = ".env"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// MissingError names a required setting that was not supplied.
type MissingError struct {
	Field string
	Env   string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: %s is not set (export %s or add it to %s)", ErrMissingCredential, e.Field, e.Env, DefaultEnvFile)
}

func (e *MissingError) Unwrap() error {
	return ErrMissingCredential
}

type Gemini struct {
	APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL"`
}

type OpenAI struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Stream  bool   `yaml:"stream" env:"OPENAI_STREAM"`
}

type Vertex struct {
	ProjectID string `yaml:"project_id" env:"GCP_PROJECT_ID"`
	Location  string `yaml:"location" env:"GCP_LOCATION" env-default:"us-central1"`
}

// Model selects the endpoint and its sampling options. Options are kept as
// text so that an unset value can be told apart from zero.
type Model struct {
	Provider        string        `yaml:"provider" env:"CHATBOT_PROVIDER" env-default:"gemini"`
	ID              string        `yaml:"id" env:"CHATBOT_MODEL" env-default:"gemini-2.5-flash-lite"`
	Temperature     string        `yaml:"temperature" env:"MODEL_TEMPERATURE"`
	TopP            string        `yaml:"top_p" env:"MODEL_TOP_P"`
	MaxOutputTokens string        `yaml:"max_output_tokens" env:"MODEL_MAX_OUTPUT_TOKENS"`
	Timeout         time.Duration `yaml:"timeout" env:"MODEL_TIMEOUT" env-default:"60s"`
	HistoryWindow   int           `yaml:"history_window" env:"HISTORY_WINDOW"`
	TokenBudget     int           `yaml:"token_budget" env:"HISTORY_TOKEN_BUDGET"`
}

type Knowledge struct {
	FAQPath       string        `yaml:"faq_path" env:"WCC_FAQ_PATH" env-default:"wcc_faqs.json"`
	EventsURL     string        `yaml:"events_url" env:"WCC_EVENTS_URL" env-default:"https://womencoding.community/events"`
	ScrapeEvents  bool          `yaml:"scrape_events" env:"WCC_SCRAPE_EVENTS"`
	ScrapeTimeout time.Duration `yaml:"scrape_timeout" env:"WCC_SCRAPE_TIMEOUT" env-default:"10s"`
}

type Storage struct {
	RedisEndpoint string `yaml:"redis_endpoint" env:"REDIS_ENDPOINT"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
	// ChatTTL expires idle conversations when positive.
	ChatTTL time.Duration `yaml:"chat_ttl" env:"CHAT_TTL"`
}

type Web struct {
	Addr            string `yaml:"addr" env:"WEB_ADDR" env-default:":8080"`
	ContextMessages int    `yaml:"context_messages" env:"WEB_CONTEXT_MESSAGES" env-default:"5"`
}

type Telegram struct {
	APIToken          string  `yaml:"api_token" env:"TELEGRAM_APITOKEN"`
	AllowedTelegramID []int64 `yaml:"allowed_telegram_id" env:"ALLOWED_TELEGRAM_ID" env-separator:","`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type UI struct {
	Language string `yaml:"language" env:"CHATBOT_LANGUAGE" env-default:"en"`
}

type Config struct {
	Model     Model     `yaml:"model"`
	Gemini    Gemini    `yaml:"gemini"`
	OpenAI    OpenAI    `yaml:"openai"`
	Vertex    Vertex    `yaml:"vertex"`
	Knowledge Knowledge `yaml:"knowledge"`
	Storage   Storage   `yaml:"storage"`
	Web       Web       `yaml:"web"`
	Telegram  Telegram  `yaml:"telegram"`
	Log       Log       `yaml:"log"`
	UI        UI        `yaml:"ui"`
}

// LoadConfig reads the env file (if present) into the process environment,
// then the optional YAML file, then the environment.
func LoadConfig(cfgPath, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks that the credentials of the selected provider are present.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Model.Provider) {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return &MissingError{Field: "gemini.api_key", Env: "GEMINI_API_KEY"}
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return &MissingError{Field: "openai.api_key", Env: "OPENAI_API_KEY"}
		}
	case ProviderVertex:
		if c.Vertex.ProjectID == "" {
			return &MissingError{Field: "vertex.project_id", Env: "GCP_PROJECT_ID"}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Model.Provider)
	}
	if strings.TrimSpace(c.Model.ID) == "" {
		return &MissingError{Field: "model.id", Env: "CHATBOT_MODEL"}
	}
	_, err := c.Model.Options()
	return err
}

func (c *Config) ValidateTelegram() error {
	if c.Telegram.APIToken == "" {
		return &MissingError{Field: "telegram.api_token", Env: "TELEGRAM_APITOKEN"}
	}
	return nil
}

// Options parses the configured sampling options. Empty values stay unset.
func (m Model) Options() (model.GenerationOptions, error) {
	var opts model.GenerationOptions
	if m.Temperature != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(m.Temperature), 32)
		if err != nil {
			return opts, fmt.Errorf("%w: temperature %q: %v", model.ErrInvalidOption, m.Temperature, err)
		}
		opts.Temperature = model.Float32(float32(v))
	}
	if m.TopP != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(m.TopP), 32)
		if err != nil {
			return opts, fmt.Errorf("%w: top_p %q: %v", model.ErrInvalidOption, m.TopP, err)
		}
		opts.TopP = model.Float32(float32(v))
	}
	if m.MaxOutputTokens != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(m.MaxOutputTokens), 10, 32)
		if err != nil {
			return opts, fmt.Errorf("%w: max_output_tokens %q: %v", model.ErrInvalidOption, m.MaxOutputTokens, err)
		}
		opts.MaxOutputTokens = model.Int32(int32(v))
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
