package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Strategy selects how a product video is produced.
type Strategy string

const (
	StrategyTwoStage  Strategy = "two_stage"
	StrategyOneStage  Strategy = "one_stage"
	StrategySimulated Strategy = "simulated"
)

// PromptProvider selects the language model behind the two-stage prompt step.
type PromptProvider string

const (
	PromptProviderGenkit PromptProvider = "genkit"
	PromptProviderFal    PromptProvider = "fal"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Fal        FalConfig        `envPrefix:"FAL_"`
	LLM        LLMConfig        `envPrefix:"LLM_"`
	Generation GenerationConfig `envPrefix:"GENERATION_"`
	Catalog    CatalogConfig    `envPrefix:"CATALOG_"`
	Kafka      KafkaConfig      `envPrefix:"KAFKA_"`
	Log        LogConfig        `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Addr        string `env:"ADDR" envDefault:"0.0.0.0:8080"`
	CORSPattern string `env:"CORS_PATTERN" envDefault:"^https?://(localhost|127\\.0\\.0\\.1)(:\\d+)?$"`
	Pprof       bool   `env:"PPROF" envDefault:"false"`
}

type FalConfig struct {
	// Key is the inference API secret. It is only ever sent upstream.
	Key          string        `env:"KEY"`
	RunURL       string        `env:"RUN_URL" envDefault:"https://fal.run"`
	QueueURL     string        `env:"QUEUE_URL" envDefault:"https://queue.fal.run"`
	ProxyTarget  string        `env:"PROXY_TARGET" envDefault:"https://fal.ai"`
	ProxyPrefix  string        `env:"PROXY_PREFIX" envDefault:"/api"`
	VideoModel   string        `env:"VIDEO_MODEL" envDefault:"fal-ai/kling-video/v2.1/standard/image-to-video"`
	PromptModel  string        `env:"PROMPT_MODEL" envDefault:"fal-ai/any-llm"`
	LLMModel     string        `env:"LLM_MODEL" envDefault:"google/gemini-flash-1.5"`
	UseQueue     bool          `env:"USE_QUEUE" envDefault:"true"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

type LLMConfig struct {
	GoogleAIAPIKey string `env:"GOOGLE_AI_API_KEY"`
	Model          string `env:"MODEL" envDefault:"googleai/gemini-2.5-flash"`
}

type GenerationConfig struct {
	Strategy       Strategy       `env:"STRATEGY" envDefault:"two_stage"`
	PromptProvider PromptProvider `env:"PROMPT_PROVIDER" envDefault:"genkit"`
	PreloadAll     bool           `env:"PRELOAD_ALL" envDefault:"false"`
	SimulatedDelay time.Duration  `env:"SIMULATED_DELAY" envDefault:"2s"`
	PromptsFile    string         `env:"PROMPTS_FILE"`
	PlaceholderURL string         `env:"PLACEHOLDER_URL" envDefault:"https://placeholder.swipe-preview.dev/videos/{{pathEscape .ID}}.mp4"`
	Workers        int            `env:"WORKERS" envDefault:"8"`
	PreloadLimit   int            `env:"PRELOAD_LIMIT" envDefault:"4"`
}

type CatalogConfig struct {
	BaseURL string        `env:"BASE_URL"`
	Feed    string        `env:"FEED" envDefault:"popular"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"product-snapshots"`
	GroupID string   `env:"GROUP_ID" envDefault:"swipe-preview"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Generation.Strategy {
	case StrategyTwoStage, StrategyOneStage, StrategySimulated:
	default:
		return fmt.Errorf("unknown generation strategy %q", c.Generation.Strategy)
	}
	switch c.Generation.PromptProvider {
	case PromptProviderGenkit, PromptProviderFal:
	default:
		return fmt.Errorf("unknown prompt provider %q", c.Generation.PromptProvider)
	}
	if c.Generation.Strategy != StrategySimulated && c.Fal.Key == "" {
		return fmt.Errorf("FAL_KEY is required for strategy %q", c.Generation.Strategy)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when kafka is enabled")
	}
	if c.Generation.Workers <= 0 {
		c.Generation.Workers = 1
	}
	if c.Generation.PreloadLimit <= 0 {
		c.Generation.PreloadLimit = 1
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Fal.Key != "" {
		c.Fal.Key = "***"
	}
	if c.LLM.GoogleAIAPIKey != "" {
		c.LLM.GoogleAIAPIKey = "***"
	}
	return c
}
