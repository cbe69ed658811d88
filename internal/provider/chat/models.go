package chat

// Rating provider identifiers.
const (
	ProviderSonar = "sonar"
	ProviderR1    = "r1"
	ProviderLlama = "llama"
)

// Defaults are the built-in endpoint and model of a provider.
type Defaults struct {
	Endpoint string
	Model    string
}

// KnownProviders returns the built-in provider identifiers in display order.
func KnownProviders() []string {
	return []string{
		ProviderSonar,
		ProviderR1,
		ProviderLlama,
	}
}

// DefaultsFor returns the built-in endpoint and model of a provider.
func DefaultsFor(providerID string) (Defaults, bool) {
	defaults := map[string]Defaults{
		ProviderSonar: {
			Endpoint: "https://api.perplexity.ai/chat/completions",
			Model:    "sonar",
		},
		ProviderR1: {
			Endpoint: "https://api.deepseek.com/chat/completions",
			Model:    "deepseek-reasoner",
		},
		ProviderLlama: {
			Endpoint: "https://api.llama.com/v1/chat/completions",
			Model:    "Llama-4-Maverick-17B-128E-Instruct-FP8",
		},
	}

	d, ok := defaults[providerID]
	return d, ok
}
