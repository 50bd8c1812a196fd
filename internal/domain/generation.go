package domain

// GenerateOptions tunes a single call to the generation service.
// Zero values leave the provider defaults in place.
type GenerateOptions struct {
	System      string
	Temperature float64
	MaxTokens   int64
}
