package ai

import (
	"context"
	"errors"
)

// PassThreshold is the minimum overall score for a passing grade.
const PassThreshold = 70

// ErrUnavailable indicates the evaluation backend could not produce a usable
// response. Evaluators that return it still return a well-formed degraded
// GradingResult alongside, so callers never observe a half-built grade.
var ErrUnavailable = errors.New("evaluation backend unavailable")

// TestCase is one input/expected-output pair supplied with the challenge.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// EvaluationInput contains the artefacts needed to grade a submission.
type EvaluationInput struct {
	Code             string
	ProblemStatement string
	EvaluationPrompt string
	TestCases        []TestCase
}

// Analysis holds the four clamped rubric sub-scores, each in [0,100].
type Analysis struct {
	Correctness int `json:"correctness"`
	CodeQuality int `json:"codeQuality"`
	Efficiency  int `json:"efficiency"`
	Style       int `json:"style"`
}

// TestResult records the model's judgement of a single test case.
type TestResult struct {
	Input       string `json:"input"`
	Expected    string `json:"expected"`
	Passed      bool   `json:"passed"`
	Explanation string `json:"explanation"`
}

// GradingResult is the structured outcome of one evaluation. The overall score
// is always recomputed locally from the weighted rubric, never trusted from
// the model.
type GradingResult struct {
	Score       int          `json:"score"`
	Passed      bool         `json:"passed"`
	Feedback    string       `json:"feedback"`
	Analysis    Analysis     `json:"analysis"`
	Suggestions []string     `json:"suggestions"`
	TestResults []TestResult `json:"testResults"`
}

// Evaluator describes an AI model capable of grading code submissions.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (GradingResult, error)
}

// DegradedResult builds the zero-score result returned whenever evaluation
// cannot complete. Callers always receive something actionable.
func DegradedResult(message string) GradingResult {
	return GradingResult{
		Score:       0,
		Passed:      false,
		Feedback:    message,
		Suggestions: []string{},
		TestResults: []TestResult{},
	}
}
