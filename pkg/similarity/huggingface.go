package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultHuggingFaceURL is the sentence-similarity inference endpoint.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/sentence-transformers/all-MiniLM-L6-v2"

const providerHuggingFace = "huggingface"

// HuggingFaceConfig defines configuration options for the Hugging Face scorer.
type HuggingFaceConfig struct {
	APIKey     string
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// HuggingFaceScorer implements Scorer against a sentence-similarity inference API.
type HuggingFaceScorer struct {
	client *http.Client
	cfg    HuggingFaceConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

type huggingFaceRequest struct {
	Inputs huggingFaceInputs `json:"inputs"`
}

type huggingFaceInputs struct {
	SourceSentence string   `json:"source_sentence"`
	Sentences      []string `json:"sentences"`
}

// NewHuggingFaceScorer builds a scorer using the provided configuration.
func NewHuggingFaceScorer(cfg HuggingFaceConfig) (*HuggingFaceScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("hugging face api key is required")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultHuggingFaceURL
	}
	cfg.Timeout = normalizeTimeout(cfg.Timeout)

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &HuggingFaceScorer{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/tidianesow/medical-e-academy/pkg/similarity/huggingface"),
		logger: cfg.Logger.With().Str("component", "huggingface_scorer").Logger(),
	}, nil
}

// Score sends the reference as source sentence and the candidate as the single comparison sentence.
func (s *HuggingFaceScorer) Score(parent context.Context, candidate, reference string) (float64, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "huggingface.score", trace.WithAttributes(
		attribute.String("similarity.url", s.cfg.URL),
	))
	defer span.End()

	start := time.Now()
	score, err := s.request(ctx, candidate, reference)
	scoreDuration.WithLabelValues(providerHuggingFace).Observe(time.Since(start).Seconds())
	if err != nil {
		scoreFailures.WithLabelValues(providerHuggingFace).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: %w", ErrScoreUnavailable, err)
	}

	span.SetAttributes(attribute.Float64("similarity.score", score))
	return score, nil
}

func (s *HuggingFaceScorer) request(ctx context.Context, candidate, reference string) (float64, error) {
	body, err := json.Marshal(huggingFaceRequest{
		Inputs: huggingFaceInputs{
			SourceSentence: reference,
			Sentences:      []string{candidate},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call inference api: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("inference api returned status %d", resp.StatusCode)
	}

	var scores []float64
	if err := json.Unmarshal(payload, &scores); err != nil {
		return 0, fmt.Errorf("parse response: %w", err)
	}
	if len(scores) == 0 {
		return 0, fmt.Errorf("inference api returned no scores")
	}

	return clamp(scores[0]), nil
}
