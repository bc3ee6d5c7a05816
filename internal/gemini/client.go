package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DerenderInstruction is the fixed editing prompt sent with every request.
const DerenderInstruction = "Remove all makeup from the face in this photo. " +
	"Remove foundation, concealer, eyeshadow, eyeliner, mascara, blush, " +
	"lipstick and any other cosmetic products. Keep the person's natural " +
	"features, skin texture, hair and lighting unchanged. Return the edited photo."

// Client calls a Gemini image model to remove makeup from portraits.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Result holds the model output for one derender call. Image is nil when the
// model returned no inline image; Text then carries any textual answer.
type Result struct {
	Image    []byte
	MimeType string
	Text     string
}

// Derender sends the portrait with the fixed instruction and returns the
// extracted output. A nil-image Result is not an error: the caller decides
// how to report a text-only answer.
func (c *Client) Derender(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: DerenderInstruction},
		},
	}}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	return ExtractResult(resp), nil
}

// ExtractResult scans the first candidate's parts in order and takes the
// first one carrying inline image data. Text parts are concatenated so a
// text-only answer can be surfaced to the caller.
func ExtractResult(resp *genai.GenerateContentResponse) *Result {
	result := &Result{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return result
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if result.Image == nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			result.Image = part.InlineData.Data
			result.MimeType = part.InlineData.MIMEType
		}
		if part.Text != "" {
			result.Text += part.Text
		}
	}

	return result
}
