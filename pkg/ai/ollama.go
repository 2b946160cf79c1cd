package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kodigo",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI evaluation requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodigo",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI evaluation failures",
	}, []string{"model"})
)

const unavailableFeedback = "AI evaluation failed. Please ensure the evaluation service is running and try again."
const parseFailureFeedback = "Failed to parse evaluation results."

// OllamaConfig defines configuration options for the Ollama evaluator.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OllamaEvaluator implements Evaluator against an Ollama text-generation
// endpoint. It waits synchronously for the full response; no streaming.
type OllamaEvaluator struct {
	client *http.Client
	cfg    OllamaConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaEvaluator builds a new evaluator using the provided configuration.
func NewOllamaEvaluator(cfg OllamaConfig) (*OllamaEvaluator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama base url is required")
	}

	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}

	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OllamaEvaluator{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/kodigo-go-api/pkg/ai/ollama"),
		logger: logger.With().Str("component", "ollama_evaluator").Logger(),
	}, nil
}

// Evaluate grades the submission via /api/generate. Every failure mode
// (network error, non-2xx status, empty body, absent or malformed JSON)
// produces a well-formed degraded GradingResult plus ErrUnavailable; the
// method never returns a half-built grade.
func (e *OllamaEvaluator) Evaluate(parent context.Context, input EvaluationInput) (GradingResult, error) {
	ctx, span := e.tracer.Start(parent, "ollama.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	responseText, err := e.generate(ctx, evaluatorSystemPrompt+"\n\n"+buildUserPrompt(input))
	aiDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error().Err(err).Msg("ai evaluation failed")
		return DegradedResult(unavailableFeedback), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	result, err := parseResponse(responseText, input.TestCases)
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error().Err(err).Msg("failed to parse ai response")
		return DegradedResult(parseFailureFeedback), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	span.SetAttributes(
		attribute.Int("evaluation.score", result.Score),
		attribute.Bool("evaluation.passed", result.Passed),
	)

	return result, nil
}

func (e *OllamaEvaluator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   e.cfg.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: e.cfg.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := e.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("ollama api error: %d", response.StatusCode)
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded ollamaResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if decoded.Response == "" {
		return "", fmt.Errorf("empty response from ollama")
	}

	return decoded.Response, nil
}
