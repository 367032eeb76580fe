package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"musebot/internal/logging"
)

// =============================================================================
// GEMINI EXTRACTOR
// =============================================================================
//
// Optional LLM-backed extractor for phrasings the rule tables miss. JSON
// response mode with a fixed schema keeps the output machine-parseable; on
// any API failure it degrades to "no entities found" so the dialogue just
// re-prompts instead of erroring.

const extractorSystemPrompt = `You are a named-entity tagger for a museum ticket booking assistant.
Tag only these labels: PERSON (a visitor's name), DATE (a calendar date or
relative day like "tomorrow"), TIME (a time of day), CARDINAL (a bare count
of tickets). Return every entity exactly as it appears in the message, in
order of appearance. Never tag digits that are part of a date or time as
CARDINAL. Return an empty array when nothing matches.`

// GeminiConfig holds the settings for the Gemini-backed extractor.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiExtractor recognizes entities with a Gemini model in JSON mode.
type GeminiExtractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	schema  *genai.Schema
}

// NewGeminiExtractor creates a Gemini-backed extractor.
func NewGeminiExtractor(cfg GeminiConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiExtractor{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		schema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"label", "text"},
				Properties: map[string]*genai.Schema{
					"label": {
						Type: genai.TypeString,
						Enum: []string{"PERSON", "DATE", "TIME", "CARDINAL"},
					},
					"text": {Type: genai.TypeString},
				},
			},
		},
	}, nil
}

// taggedEntity is one element of the model's JSON array response.
type taggedEntity struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Extract tags entities via the Gemini API. Failures are logged and yield an
// empty result; the caller cannot tell a miss from an outage, and does not
// need to.
func (e *GeminiExtractor) Extract(ctx context.Context, text string) []Entity {
	log := logging.Get(logging.CategoryExtract)

	if strings.TrimSpace(text) == "" {
		return nil
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(extractorSystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    e.schema,
			Temperature:       genai.Ptr[float32](0),
		},
	)
	if err != nil {
		log.Warnf("gemini extraction failed: %v", err)
		return nil
	}

	raw := result.Text()
	var tagged []taggedEntity
	if err := json.Unmarshal([]byte(raw), &tagged); err != nil {
		log.Warnf("gemini returned unparseable JSON (%d bytes): %v", len(raw), err)
		return nil
	}

	return e.locate(text, tagged)
}

// locate maps tagged snippets back onto the source text so entities carry
// real offsets and appearance order, the same contract the rule extractor
// honors. Snippets the model invented (not present verbatim) are dropped.
func (e *GeminiExtractor) locate(text string, tagged []taggedEntity) []Entity {
	var out []Entity
	searchFrom := 0
	for _, tag := range tagged {
		kind := KindFromLabel(tag.Label)
		if kind == KindUnknown || tag.Text == "" {
			continue
		}

		// Entities arrive in appearance order, so scan forward; fall back
		// to a whole-text search for out-of-order responses.
		idx := strings.Index(text[searchFrom:], tag.Text)
		if idx >= 0 {
			idx += searchFrom
			searchFrom = idx + len(tag.Text)
		} else if idx = strings.Index(text, tag.Text); idx < 0 {
			logging.Get(logging.CategoryExtract).Debugf(
				"dropping hallucinated %s entity %q", kind, tag.Text)
			continue
		}

		out = append(out, Entity{Kind: kind, Text: tag.Text, Start: idx})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
