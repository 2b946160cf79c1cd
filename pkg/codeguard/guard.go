// Package codeguard screens untrusted submission code before it is embedded in
// a grading prompt. The checks are pattern heuristics, not a sandbox: they stop
// obviously unsafe code and prompt-injection attempts from reaching the model.
package codeguard

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxCodeSize is the submission size ceiling in bytes.
const MaxCodeSize = 10240

var deniedModules = []string{"os", "subprocess", "sys", "socket", "requests", "urllib"}

var (
	importPatterns = buildImportPatterns()
	fileOpsPattern = regexp.MustCompile(`(?i)\bopen\s*\(|\bfile\s*\(`)
	execPattern    = regexp.MustCompile(`(?i)\bexec\s*\(|\beval\s*\(`)

	fenceToken   = "```"
	instPattern  = regexp.MustCompile(`(?i)\[/?INST\]`)
	sysPattern   = regexp.MustCompile(`(?i)<<SYS>>`)
	controlToken = regexp.MustCompile(`<\|.*?\|>`)
)

func buildImportPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(deniedModules))
	for _, module := range deniedModules {
		patterns[module] = regexp.MustCompile(`(?i)import\s+` + module + `\b|from\s+` + module + `\b`)
	}
	return patterns
}

// Result reports the outcome of validation.
type Result struct {
	OK         bool
	Violations []string
}

// Validate checks the submission against the size ceiling and the denylist of
// imports, file operations and dynamic execution. Pure; validation failure must
// short-circuit the pipeline before any model call.
func Validate(code string) Result {
	var violations []string

	if len(code) > MaxCodeSize {
		violations = append(violations, "Code exceeds maximum size of 10KB")
	}

	for _, module := range deniedModules {
		if importPatterns[module].MatchString(code) {
			violations = append(violations, fmt.Sprintf("Import of '%s' is not allowed for security reasons", module))
		}
	}

	if fileOpsPattern.MatchString(code) {
		violations = append(violations, "File operations are not allowed")
	}

	if execPattern.MatchString(code) {
		violations = append(violations, "exec() and eval() are not allowed")
	}

	return Result{OK: len(violations) == 0, Violations: violations}
}

// Sanitize strips sequences usable for prompt injection against the grading
// model and hard-truncates the result to MaxCodeSize bytes. Pure.
func Sanitize(code string) string {
	cleaned := strings.ReplaceAll(code, fenceToken, "")
	cleaned = instPattern.ReplaceAllString(cleaned, "")
	cleaned = sysPattern.ReplaceAllString(cleaned, "")
	cleaned = controlToken.ReplaceAllString(cleaned, "")

	if len(cleaned) > MaxCodeSize {
		cleaned = cleaned[:MaxCodeSize]
	}

	return cleaned
}
