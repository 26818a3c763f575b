// Package llm backs the four capability contracts with OpenAI chat and vision
// models. Every call requests a JSON object reply and decodes it into the
// capability's response shape; the orchestration layer treats the results as
// opaque and revalidates them.
package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpalomar/gastobot/pkg/capabilities/plan"
	"github.com/jpalomar/gastobot/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

// Client implements the planner, vision, query-synthesis, and render backends.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

func NewClient(logger *slog.Logger, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	return &Client{
		api:    openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

type planResponse struct {
	NextAction string `json:"next_action"`
}

// PlanNextAction asks the policy model for the next workflow step.
func (c *Client) PlanNextAction(ctx context.Context, summary plan.Summary) (string, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode state summary: %w", err)
	}

	var response planResponse

	err = c.completeJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: planPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "Current workflow state:\n" + string(payload)},
	}, &response)
	if err != nil {
		return "", err
	}

	return response.NextAction, nil
}

// ExtractReceipt runs the vision model over an image file on disk.
func (c *Client) ExtractReceipt(ctx context.Context, imagePath string) (*models.ReceiptDraft, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeTypeFor(imagePath), base64.StdEncoding.EncodeToString(data))

	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	completion, err := c.api.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("vision extraction call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("vision extraction returned no choices")
	}

	var draft models.ReceiptDraft

	err = json.Unmarshal([]byte(completion.Choices[0].Message.Content), &draft)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extraction reply: %w", err)
	}

	return &draft, nil
}

type queryResponse struct {
	Queries []string `json:"queries"`
}

// StatusQueries synthesizes candidate statements for a status question. A nil
// result means the model judged the message not to be a status question.
func (c *Client) StatusQueries(ctx context.Context, userText string, identity models.UserIdentity) ([]string, error) {
	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity context: %w", err)
	}

	var response queryResponse

	err = c.completeJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: queryPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("User context:\n%s\n\nUser message:\n%s", identityJSON, userText)},
	}, &response)
	if err != nil {
		return nil, err
	}

	return response.Queries, nil
}

type renderResponse struct {
	ResponseText string `json:"response_text"`
}

// RenderResponse composes the final reply from the full turn state.
func (c *Client) RenderResponse(ctx context.Context, state models.WorkflowState) (string, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode workflow state: %w", err)
	}

	var response renderResponse

	err = c.completeJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: renderPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "Current workflow state:\n" + string(payload)},
	}, &response)
	if err != nil {
		return "", err
	}

	return response.ResponseText, nil
}

func (c *Client) completeJSON(ctx context.Context, messages []openai.ChatCompletionMessage, out any) error {
	completion, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}

	err = json.Unmarshal([]byte(completion.Choices[0].Message.Content), out)
	if err != nil {
		return fmt.Errorf("failed to decode completion reply: %w", err)
	}

	return nil
}

func mimeTypeFor(imagePath string) string {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
