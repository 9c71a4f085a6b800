package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/meetlog/meetlog/internal/model"
)

// OpenAIConfig holds the model endpoint configuration. It is passed in
// explicitly at construction so the client carries no hidden
// environment coupling.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty uses the default OpenAI endpoint
	Model   string
}

// OpenAIClient extracts interaction cards through an OpenAI-compatible
// chat completions endpoint using strict structured outputs.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAIClient from explicit configuration.
// The returned client is stateless and safe for concurrent use.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

const extractionPrompt = `Extract information about an interaction with a person from the following text, following the 5 Ws framework (Who, Where, When, Why, How).

Text:
%s
`

// cardSchema constrains the model output to the interaction card shape.
// Strict structured outputs require every property to be listed as
// required; optional fields are expressed as nullable.
var cardSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"who": {
			"type": "string",
			"description": "The name of the person with whom the interaction took place"
		},
		"where": {
			"type": ["string", "null"],
			"description": "Where the interaction took place"
		},
		"when": {
			"type": ["string", "null"],
			"description": "When the interaction took place"
		},
		"why": {
			"type": ["string", "null"],
			"description": "Why the interaction took place (the reason/purpose)"
		},
		"how": {
			"type": ["string", "null"],
			"description": "How the interaction took place (the context/manner)"
		}
	},
	"required": ["who", "where", "when", "why", "how"],
	"additionalProperties": false
}`)

// ExtractCard sends the text to the model and decodes the structured
// response into a card.
func (c *OpenAIClient) ExtractCard(ctx context.Context, text string) (*model.InteractionCard, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(extractionPrompt, text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "interaction_card",
				Schema: cardSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	var card model.InteractionCard
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &card); err != nil {
		return nil, fmt.Errorf("model returned a non-conforming card: %w", err)
	}

	return &card, nil
}
