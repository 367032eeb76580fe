package extract

import (
	"context"
	"fmt"

	"musebot/internal/config"
)

// Extractor produces typed entities from raw text, in order of appearance.
// Implementations must be side-effect free and must not return an error for
// unparseable input; a miss is just an absent entity.
type Extractor interface {
	Extract(ctx context.Context, text string) []Entity
}

// New builds the extractor selected by the config.
func New(cfg *config.Config) (Extractor, error) {
	switch cfg.Extractor.Provider {
	case "", "rules":
		return NewRuleExtractor(), nil
	case "gemini":
		return NewGeminiExtractor(GeminiConfig{
			APIKey:  cfg.Extractor.APIKey,
			Model:   cfg.Extractor.Model,
			Timeout: cfg.GetExtractorTimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Extractor.Provider)
	}
}
