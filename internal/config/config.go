package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8000"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	LLMProvider          string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey            string        `env:"LLM_API_KEY,required,notEmpty"`
	LLMBaseURL           string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel             string        `env:"LLM_MODEL" envDefault:"gpt-4"`
	LLMMaxTokens         int           `env:"LLM_MAX_TOKENS" envDefault:"500"`
	LLMTemperature       float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMTimeout           time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMMaxAttempts       int           `env:"LLM_MAX_ATTEMPTS" envDefault:"1"`
	LLMDefaultConfidence float64       `env:"LLM_DEFAULT_CONFIDENCE" envDefault:"0.9"`

	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AnalyzeRateLimit  int           `env:"ANALYZE_RATE_LIMIT" envDefault:"30"`
	AnalyzeRateWindow time.Duration `env:"ANALYZE_RATE_WINDOW" envDefault:"1m"`

	JWTSecret          string   `env:"JWT_SECRET"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment indica si el servicio corre en modo desarrollo.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
