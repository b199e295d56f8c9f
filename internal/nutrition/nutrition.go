package nutrition

import (
	"context"
	"errors"
	"fmt"
)

// IdentifyPrompt is the fixed instruction sent alongside every meal image.
const IdentifyPrompt = "Act as a nutritionist and Identify this meal, provide summarized nutritional information, and give advice on its health impact. Format the response in clear sections."

// FollowUpPrompt embeds the stored meal context and the user's question,
// both verbatim and quoted, in that order.
func FollowUpPrompt(mealContext, question string) string {
	return fmt.Sprintf(`Given the following meal information: "%s", please answer this follow-up question: "%s"`, mealContext, question)
}

// Analyzer is the client for the hosted multimodal model. Implementations
// return the model's textual answer verbatim; formatting happens elsewhere.
type Analyzer interface {
	IdentifyMeal(ctx context.Context, image []byte, mimeType string) (string, error)
	AnswerFollowUp(ctx context.Context, mealContext, question string) (string, error)
}

// Unconfigured is the Analyzer wired in when no API key is available. The
// server keeps serving pages; every model call fails with a configuration
// error so the misconfiguration surfaces per request.
type Unconfigured struct{}

func (Unconfigured) IdentifyMeal(_ context.Context, _ []byte, _ string) (string, error) {
	return "", errMissingKey()
}

func (Unconfigured) AnswerFollowUp(_ context.Context, _, _ string) (string, error) {
	return "", errMissingKey()
}

func errMissingKey() error {
	return NewError(ErrorConfiguration, "missing_api_key", errors.New("GEMINI_API_KEY is not set"))
}
