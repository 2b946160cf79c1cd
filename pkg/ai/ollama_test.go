package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T, handler http.HandlerFunc) *OllamaEvaluator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	evaluator, err := NewOllamaEvaluator(OllamaConfig{
		BaseURL: server.URL,
		Model:   "llama3.2",
		Timeout: 5 * time.Second,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return evaluator
}

func TestOllamaEvaluatorRequiresBaseURL(t *testing.T) {
	_, err := NewOllamaEvaluator(OllamaConfig{})
	require.Error(t, err)
}

func TestOllamaEvaluateSuccess(t *testing.T) {
	var captured ollamaRequest
	evaluator := newTestEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		grading := `{"correctness":90,"codeQuality":80,"efficiency":70,"style":100,"feedback":"Solid.","suggestions":[],"testResults":[]}`
		_ = json.NewEncoder(w).Encode(map[string]string{"response": grading})
	})

	input := EvaluationInput{
		Code:             "def add(a, b): return a + b",
		ProblemStatement: "Add two numbers",
		EvaluationPrompt: "Check edge cases",
		TestCases:        []TestCase{{Input: "add(1,2)", ExpectedOutput: "3"}},
	}

	result, err := evaluator.Evaluate(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 85, result.Score)
	require.True(t, result.Passed)
	require.Equal(t, "Solid.", result.Feedback)

	require.Equal(t, "llama3.2", captured.Model)
	require.False(t, captured.Stream)
	require.InDelta(t, 0.3, captured.Options.Temperature, 1e-6)
	require.Contains(t, captured.Prompt, "Add two numbers")
	require.Contains(t, captured.Prompt, "add(1,2)")
	require.Contains(t, captured.Prompt, "def add(a, b)")
	require.Contains(t, captured.Prompt, "Do NOT execute the code")
}

func TestOllamaEvaluateDegradesOnServerError(t *testing.T) {
	evaluator := newTestEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result, err := evaluator.Evaluate(context.Background(), EvaluationInput{Code: "x = 1"})
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, 0, result.Score)
	require.False(t, result.Passed)
	require.NotEmpty(t, result.Feedback)
}

func TestOllamaEvaluateDegradesOnEmptyResponse(t *testing.T) {
	evaluator := newTestEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"response": ""})
	})

	result, err := evaluator.Evaluate(context.Background(), EvaluationInput{Code: "x = 1"})
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, result.Passed)
}

func TestOllamaEvaluateDegradesOnUnparseableBody(t *testing.T) {
	evaluator := newTestEvaluator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "the model rambled with no json"})
	})

	result, err := evaluator.Evaluate(context.Background(), EvaluationInput{Code: "x = 1"})
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, 0, result.Score)
	require.Equal(t, parseFailureFeedback, result.Feedback)
}

func TestOllamaEvaluateDegradesOnUnreachableBackend(t *testing.T) {
	evaluator, err := NewOllamaEvaluator(OllamaConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 500 * time.Millisecond,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	result, evalErr := evaluator.Evaluate(context.Background(), EvaluationInput{Code: "x = 1"})
	require.Error(t, evalErr)
	require.True(t, errors.Is(evalErr, ErrUnavailable))
	require.False(t, result.Passed)
	require.True(t, strings.Contains(result.Feedback, "try again"))
}
