package openai

// Config contains text generator configuration.
// All fields map to OpenAI SDK options:
//   - APIKey: Maps to option.WithAPIKey()
//   - BaseURL: Maps to option.WithBaseURL()
//   - Timeout: Maps to option.WithRequestTimeout() (in seconds)
//   - MaxRetries: Maps to option.WithMaxRetries()
type Config struct {
	APIKey      string  `env:"GENERATOR_API_KEY"`
	BaseURL     string  `env:"GENERATOR_BASE_URL"    envDefault:"https://api.openai.com/v1"`
	Model       string  `env:"GENERATOR_MODEL"       envDefault:"gpt-4o-mini"`
	Temperature float64 `env:"GENERATOR_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"GENERATOR_MAX_TOKENS"  envDefault:"2048"`
	Timeout     int     `env:"GENERATOR_TIMEOUT"     envDefault:"60"`
	MaxRetries  int     `env:"GENERATOR_MAX_RETRIES" envDefault:"3"`
}
