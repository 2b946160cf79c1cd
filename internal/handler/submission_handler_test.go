package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/service"
)

type stubSubmissionService struct {
	submitResponse dto.SubmissionResponse
	submitErr      error
	evaluateErr    error
	getResponse    dto.SubmissionResponse
	getErr         error
}

func (s *stubSubmissionService) Submit(_ context.Context, userID uint, _ dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	if s.submitErr != nil {
		return dto.SubmissionResponse{}, s.submitErr
	}
	response := s.submitResponse
	response.UserID = userID
	return response, nil
}

func (s *stubSubmissionService) Evaluate(context.Context, uint) error {
	return s.evaluateErr
}

func (s *stubSubmissionService) Review(context.Context, uint, uint, dto.ReviewRequest) (dto.SubmissionResponse, error) {
	return dto.SubmissionResponse{}, nil
}

func (s *stubSubmissionService) Get(context.Context, uint, uint, bool) (dto.SubmissionResponse, error) {
	return s.getResponse, s.getErr
}

func (s *stubSubmissionService) ListByUser(context.Context, uint, int, int) ([]dto.SubmissionResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubSubmissionService) ListByChallenge(context.Context, uint, int, int) ([]dto.SubmissionResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubSubmissionService) Stats(context.Context, uint) (dto.SubmissionStatsResponse, error) {
	return dto.SubmissionStatsResponse{}, nil
}

func newSubmissionApp(stub *stubSubmissionService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})

	h := NewSubmissionHandler(stub, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	h.Register(app.Group("/api/v1/submissions"))
	h.RegisterAdmin(app.Group("/api/v1/admin/submissions"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func validPayload() dto.SubmissionRequest {
	return dto.SubmissionRequest{
		ChallengeID: 1,
		Code:        "def solve(nums):\n    return sum(nums)\n",
		Explanation: "I iterate over the list and accumulate every element into a running total before returning it.",
	}
}

func TestCreateSubmissionAccepted(t *testing.T) {
	stub := &stubSubmissionService{submitResponse: dto.SubmissionResponse{ID: 5, Status: "PENDING"}}
	app := newSubmissionApp(stub)

	resp := postJSON(t, app, "/api/v1/submissions", validPayload())
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			ID     uint   `json:"id"`
			UserID uint   `json:"user_id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, uint(5), payload.Data.ID)
	require.Equal(t, uint(7), payload.Data.UserID)
	require.Equal(t, "PENDING", payload.Data.Status)
}

func TestCreateSubmissionValidatesExplanationLength(t *testing.T) {
	app := newSubmissionApp(&stubSubmissionService{})

	payload := validPayload()
	payload.Explanation = "too short"

	resp := postJSON(t, app, "/api/v1/submissions", payload)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSubmissionCodeRejected(t *testing.T) {
	stub := &stubSubmissionService{
		submitErr: &service.CodeRejectedError{Violations: []string{"use of module 'os' is not allowed"}},
	}
	app := newSubmissionApp(stub)

	resp := postJSON(t, app, "/api/v1/submissions", validPayload())
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var payload struct {
		Success    bool     `json:"success"`
		Violations []string `json:"violations"`
	}
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.False(t, payload.Success)
	require.Len(t, payload.Violations, 1)
}

func TestCreateSubmissionRateLimited(t *testing.T) {
	stub := &stubSubmissionService{submitErr: service.ErrRateLimited}
	app := newSubmissionApp(stub)

	resp := postJSON(t, app, "/api/v1/submissions", validPayload())
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestGetSubmissionNotFound(t *testing.T) {
	stub := &stubSubmissionService{getErr: service.ErrSubmissionNotFound}
	app := newSubmissionApp(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEvaluateAlreadyEvaluated(t *testing.T) {
	stub := &stubSubmissionService{evaluateErr: service.ErrAlreadyEvaluated}
	app := newSubmissionApp(stub)

	resp := postJSON(t, app, "/api/v1/admin/submissions/5/evaluate", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
