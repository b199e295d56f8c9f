package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mealsnap/internal/nutrition"
)

// Analyzer calls the Gemini multimodal API. The client is constructed once
// at process startup and shared; it holds no per-request state.
type Analyzer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Analyzer{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

func (a *Analyzer) Close() error {
	return a.client.Close()
}

func (a *Analyzer) IdentifyMeal(ctx context.Context, image []byte, mimeType string) (string, error) {
	resp, err := a.model.GenerateContent(ctx,
		genai.Text(nutrition.IdentifyPrompt),
		genai.ImageData(imageFormat(mimeType), image),
	)
	if err != nil {
		return "", nutrition.NewError(nutrition.ErrorExternal, "gemini_identify", err)
	}
	return textOrError(resp)
}

func (a *Analyzer) AnswerFollowUp(ctx context.Context, mealContext, question string) (string, error) {
	resp, err := a.model.GenerateContent(ctx,
		genai.Text(nutrition.FollowUpPrompt(mealContext, question)),
	)
	if err != nil {
		return "", nutrition.NewError(nutrition.ErrorExternal, "gemini_follow_up", err)
	}
	return textOrError(resp)
}

// imageFormat converts a MIME type to the bare format string genai expects
// (e.g. "image/jpeg" -> "jpeg").
func imageFormat(mimeType string) string {
	return strings.TrimPrefix(mimeType, "image/")
}

// textOrError extracts the model's text. An answer with no usable text is
// reported as an external-service failure rather than an empty result.
func textOrError(resp *genai.GenerateContentResponse) (string, error) {
	text := extractText(resp)
	if text == "" {
		return "", nutrition.NewError(nutrition.ErrorExternal, "empty_response", errors.New("model returned no text"))
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}
