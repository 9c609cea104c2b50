package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const classifierPrompt = `You classify Korean social media posts about lovebugs (붉은등우단털파리, Plecia longiforceps) swarming in the Seoul area.
Respond with JSON only, no prose:
{"relevant": true/false, "severity": "low|medium|high|critical", "sentiment": -1.0..1.0, "confidence": 0.0..1.0}
relevant is false when the post is not about an actual lovebug sighting.
severity describes how many bugs the author reports.`

var ErrEmptyCompletion = errors.New("no response from openai")

type OpenAIClassifier struct {
	client openai.Client
	model  string
}

func NewOpenAIClassifier(apiKey string, model string, opts ...option.RequestOption) *OpenAIClassifier {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAIClassifier{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(200),
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return parseClassification(response.Choices[0].Message.Content)
}

func parseClassification(content string) (*Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var classification Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &classification); err != nil {
		return nil, fmt.Errorf("failed to parse openai response: %w", err)
	}

	return &classification, nil
}
