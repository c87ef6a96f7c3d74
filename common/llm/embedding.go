package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Embedder turns text into a fixed-dimension vector. Failure is treated by
// callers as "no semantic signal", never as a hard error for the pipeline.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type EmbedderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type openaiEmbedder struct {
	openai openai.Client
	model  openai.EmbeddingModel
}

func NewEmbedder(cfg EmbedderConfig) (Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := openai.EmbeddingModel(cfg.Model)
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}

	return &openaiEmbedder{
		openai: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (e *openaiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}
	return resp.Data[0].Embedding, nil
}

// CosineSimilarity returns the cosine similarity of two vectors, or 0 when
// either vector is empty, zero-length, or the dimensions disagree.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
