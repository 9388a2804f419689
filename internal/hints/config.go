package hints

// Config controls the hint workflow.
type Config struct {
	// GenerateOnSuccess keeps generating a hint when the attempt passes.
	GenerateOnSuccess bool

	// PriorHintLimit is how many delivered hints feed the generation
	// prompt and duplicate check.
	PriorHintLimit int

	MaxTokens int

	EvaluationTemperature float64
	GenerationTemperature float64
	ScoringTemperature    float64
}

// DefaultConfig returns the default workflow configuration.
func DefaultConfig() Config {
	return Config{
		GenerateOnSuccess:     true,
		PriorHintLimit:        5,
		MaxTokens:             1024,
		EvaluationTemperature: 0.3,
		GenerationTemperature: 0.7,
		ScoringTemperature:    0.2,
	}
}
