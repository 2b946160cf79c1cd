package ai

import (
	"fmt"
	"strings"
)

const evaluatorSystemPrompt = `You are a Python code evaluator for a student challenge system.
Your task is to evaluate submitted Python code against the given problem requirements.

Evaluation Criteria (each scored 0-100):
1. Correctness: Does the code produce correct outputs for the test cases? Trace through the logic.
2. Code Quality: Is the code well-structured, readable, and maintainable?
3. Efficiency: Is the solution algorithmically efficient?
4. Style: Does the code follow Python conventions (PEP8)?

You must respond with valid JSON in this exact format:
{
  "correctness": <0-100>,
  "codeQuality": <0-100>,
  "efficiency": <0-100>,
  "style": <0-100>,
  "overallScore": <weighted average: correctness*0.5 + codeQuality*0.2 + efficiency*0.2 + style*0.1>,
  "feedback": "<constructive feedback for the student, 2-3 sentences>",
  "suggestions": ["<suggestion 1>", "<suggestion 2>"],
  "testResults": [
    {"input": "...", "expected": "...", "passed": true/false, "explanation": "..."}
  ]
}

Be encouraging but honest. Focus on helping students learn.
Do NOT execute the code - analyze it statically and trace through logic mentally.
IMPORTANT: Respond ONLY with the JSON object, no additional text.`

func buildUserPrompt(input EvaluationInput) string {
	builder := strings.Builder{}
	builder.WriteString("## Problem Statement\n")
	builder.WriteString(input.ProblemStatement)
	builder.WriteString("\n\n## Custom Evaluation Instructions\n")
	builder.WriteString(input.EvaluationPrompt)
	builder.WriteString("\n\n## Test Cases\n")
	for i, tc := range input.TestCases {
		builder.WriteString(fmt.Sprintf("Test %d: Input: %s -> Expected Output: %s\n", i+1, tc.Input, tc.ExpectedOutput))
	}
	builder.WriteString("\n## Submitted Code\n```python\n")
	builder.WriteString(input.Code)
	builder.WriteString("\n```\n\nPlease evaluate this code and respond with the JSON format specified.")
	return builder.String()
}
