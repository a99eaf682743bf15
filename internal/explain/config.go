package explain

// Config holds model settings for generated explanations.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns defaults for explanation generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   160,
		Temperature: 0.2,
	}
}
