package ports

import "context"

// LLMClient is the narrow interface over the fine-tuned model endpoint.
// Fine-tuning and inference internals live behind it; this core only sends
// prompts and reads text back.
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)
}
