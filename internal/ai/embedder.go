package ai

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Task types the gemini API distinguishes; the openai provider ignores them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Embedder wraps a provider with the model name, input truncation and a
// per-call timeout. It is the only way the rest of the codebase produces
// vectors.
type Embedder struct {
	provider      IProvider
	model         string
	maxInputChars int
	timeout       time.Duration
}

func NewEmbedder(provider IProvider, model string, maxInputChars int, timeoutSeconds int) *Embedder {
	return &Embedder{
		provider:      provider,
		model:         model,
		maxInputChars: maxInputChars,
		timeout:       time.Duration(timeoutSeconds) * time.Second,
	}
}

func (e *Embedder) ModelName() string {
	return e.model
}

// Embed truncates text to the model's input budget and calls the provider
// with a bounded timeout.
func (e *Embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if e.provider == nil {
		return nil, ErrUnavailable
	}
	if e.maxInputChars > 0 {
		runes := []rune(text)
		if len(runes) > e.maxInputChars {
			text = string(runes[:e.maxInputChars])
		}
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.provider.Embed(ctx, e.model, text, taskType)
}

// EmbedOrNil degrades every failure mode to a nil vector: missing
// credential, empty input, remote error, timeout. Callers persist the record
// anyway and treat nil as "no embedding available".
func (e *Embedder) EmbedOrNil(ctx context.Context, text string, taskType string) []float32 {
	if e == nil || text == "" {
		return nil
	}
	vec, err := e.Embed(ctx, text, taskType)
	if err != nil {
		if err != ErrUnavailable {
			logutil.GetLogger(ctx).Warn("embedding failed", zap.Error(err), zap.String("model", e.model))
		}
		return nil
	}
	return vec
}
