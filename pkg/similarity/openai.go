package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const providerOpenAI = "openai"

// OpenAIConfig defines configuration options for the embedding-based scorer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// OpenAIScorer implements Scorer as the cosine similarity of two embeddings.
type OpenAIScorer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIScorer builds a new scorer using the provided configuration.
func NewOpenAIScorer(cfg OpenAIConfig) (*OpenAIScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	cfg.Timeout = normalizeTimeout(cfg.Timeout)

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIScorer{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/tidianesow/medical-e-academy/pkg/similarity/openai"),
		logger: cfg.Logger.With().Str("component", "openai_scorer").Logger(),
	}, nil
}

// Score embeds both texts in one request and compares the vectors.
func (s *OpenAIScorer) Score(parent context.Context, candidate, reference string) (float64, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "openai.score", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{reference, candidate},
		Model: openai.EmbeddingModel(s.cfg.Model),
	})
	scoreDuration.WithLabelValues(providerOpenAI).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, s.fail(span, fmt.Errorf("create embeddings: %w", err))
	}

	if len(resp.Data) != 2 {
		return 0, s.fail(span, fmt.Errorf("expected 2 embeddings, got %d", len(resp.Data)))
	}

	embeddings := resp.Data
	sort.Slice(embeddings, func(i, j int) bool { return embeddings[i].Index < embeddings[j].Index })

	score, err := cosine(embeddings[0].Embedding, embeddings[1].Embedding)
	if err != nil {
		return 0, s.fail(span, err)
	}

	score = clamp(score)
	span.SetAttributes(attribute.Float64("similarity.score", score))
	return score, nil
}

func (s *OpenAIScorer) fail(span trace.Span, err error) error {
	scoreFailures.WithLabelValues(providerOpenAI).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf("%w: %w", ErrScoreUnavailable, err)
}

func cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("embedding has zero magnitude")
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
