package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// rawEvaluation mirrors the JSON contract given to the model. Fields arrive as
// loose values because the model does not always honour the types.
type rawEvaluation struct {
	Correctness json.RawMessage   `json:"correctness"`
	CodeQuality json.RawMessage   `json:"codeQuality"`
	Efficiency  json.RawMessage   `json:"efficiency"`
	Style       json.RawMessage   `json:"style"`
	Feedback    string            `json:"feedback"`
	Suggestions []json.RawMessage `json:"suggestions"`
	TestResults []rawTestResult   `json:"testResults"`
}

type rawTestResult struct {
	Input       json.RawMessage `json:"input"`
	Expected    json.RawMessage `json:"expected"`
	Passed      interface{}     `json:"passed"`
	Explanation json.RawMessage `json:"explanation"`
}

// parseResponse extracts the first brace-delimited JSON object found anywhere
// in the response text and repairs it into a bounded GradingResult. The model
// may emit surrounding prose despite instructions; scores are clamped, the
// overall score is recomputed from the weighted rubric, and test results are
// reconciled positionally with the original test cases.
func parseResponse(responseText string, testCases []TestCase) (GradingResult, error) {
	start := strings.Index(responseText, "{")
	end := strings.LastIndex(responseText, "}")
	if start < 0 || end <= start {
		return GradingResult{}, fmt.Errorf("no JSON object found in response")
	}

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(responseText[start:end+1]), &raw); err != nil {
		return GradingResult{}, fmt.Errorf("parse evaluation json: %w", err)
	}

	analysis := Analysis{
		Correctness: clampScore(raw.Correctness),
		CodeQuality: clampScore(raw.CodeQuality),
		Efficiency:  clampScore(raw.Efficiency),
		Style:       clampScore(raw.Style),
	}

	overall := OverallScore(analysis)

	feedback := strings.TrimSpace(raw.Feedback)
	if feedback == "" {
		feedback = "Code evaluation completed."
	}

	suggestions := make([]string, 0, len(raw.Suggestions))
	for _, s := range raw.Suggestions {
		if text := coerceString(s); text != "" {
			suggestions = append(suggestions, text)
		}
	}

	results := make([]TestResult, 0, len(raw.TestResults))
	for i, tr := range raw.TestResults {
		result := TestResult{
			Input:       coerceString(tr.Input),
			Expected:    coerceString(tr.Expected),
			Passed:      coerceBool(tr.Passed),
			Explanation: coerceString(tr.Explanation),
		}
		if i < len(testCases) {
			if result.Input == "" {
				result.Input = testCases[i].Input
			}
			if result.Expected == "" {
				result.Expected = testCases[i].ExpectedOutput
			}
		}
		results = append(results, result)
	}

	return GradingResult{
		Score:       overall,
		Passed:      overall >= PassThreshold,
		Feedback:    feedback,
		Analysis:    analysis,
		Suggestions: suggestions,
		TestResults: results,
	}, nil
}

// OverallScore recomputes the weighted rubric score locally so the pass/fail
// threshold stays deterministic even when the model miscalculates.
func OverallScore(a Analysis) int {
	weighted := 0.5*float64(a.Correctness) + 0.2*float64(a.CodeQuality) + 0.2*float64(a.Efficiency) + 0.1*float64(a.Style)
	return int(math.Round(weighted))
}

// clampScore turns whatever the model put in a score field into an integer in
// [0,100]. Non-numeric and NaN inputs clamp to 0.
func clampScore(raw json.RawMessage) int {
	var parsed float64
	if err := json.Unmarshal(raw, &parsed); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
		var convErr error
		parsed, convErr = strconv.ParseFloat(strings.TrimSpace(text), 64)
		if convErr != nil {
			return 0
		}
	}
	if math.IsNaN(parsed) {
		return 0
	}
	rounded := int(math.Round(parsed))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.Trim(string(raw), `"`)
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}
