package completion

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucidia/lucid-server/internal/model"
)

// OpenAI implements Provider and Embeddings against the OpenAI API.
type OpenAI struct {
	client *openai.Client

	chatModel       string
	completionModel string
	embedModel      string
}

// NewOpenAI builds a provider from an API key and model names.
func NewOpenAI(apiKey, chatModel, completionModel, embedModel string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	return &OpenAI{
		client:          openai.NewClient(apiKey),
		chatModel:       chatModel,
		completionModel: completionModel,
		embedModel:      embedModel,
	}, nil
}

func (p *OpenAI) TextCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.completionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("text completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("text completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAI) ChatCompletion(ctx context.Context, messages []model.ChatMessage) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.chatModel,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAI) FunctionCompletion(ctx context.Context, messages []model.ChatMessage, fn FunctionDef) (map[string]interface{}, error) {
	def := &openai.FunctionDefinition{
		Name:        fn.Name,
		Description: fn.Description,
		Parameters:  fn.Parameters,
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.chatModel,
		Messages: toOpenAIMessages(messages),
		Tools:    []openai.Tool{{Type: openai.ToolTypeFunction, Function: def}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: fn.Name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("function completion: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("function completion: model returned no tool call")
	}
	raw := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	args := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("function completion: parse arguments: %w", err)
	}
	return args, nil
}

func (p *OpenAI) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("generate image: empty response")
	}
	return resp.Data[0].URL, nil
}

func (p *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

func toOpenAIMessages(messages []model.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
