package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/service"
	"github.com/noah-isme/kodigo-go-api/internal/utils"
	"github.com/noah-isme/kodigo-go-api/pkg/ai"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the student-facing routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/stats", h.stats)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the administrative routes: re-grading, manual review
// and per-challenge listing.
func (h *SubmissionHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/:id/evaluate", h.evaluate)
	router.Post("/:id/review", h.review)
	router.Get("/challenge/:id", h.listByChallenge)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	submission, err := h.service.Submit(c.UserContext(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "submission received", submission)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit, offset := parsePagination(c)
	submissions, total, err := h.service.ListByUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendPage(c, "submissions retrieved", submissions, utils.PageMeta{Total: total, Limit: limit, Offset: offset})
}

func (h *SubmissionHandler) stats(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	stats, err := h.service.Stats(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission stats retrieved", stats)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), id, userID, isAdmin(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) evaluate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Evaluate(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission evaluated", nil)
}

func (h *SubmissionHandler) review(c *fiber.Ctx) error {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	submission, err := h.service.Review(c.UserContext(), id, reviewerID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *SubmissionHandler) listByChallenge(c *fiber.Ctx) error {
	challengeID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, offset := parsePagination(c)
	submissions, total, err := h.service.ListByChallenge(c.UserContext(), challengeID, limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendPage(c, "submissions retrieved", submissions, utils.PageMeta{Total: total, Limit: limit, Offset: offset})
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var rejected *service.CodeRejectedError
	switch {
	case errors.As(err, &rejected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success":    false,
			"message":    "code rejected",
			"violations": rejected.Violations,
		})
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrChallengeInactive):
		return utils.SendError(c, fiber.StatusConflict, "challenge is not open for submissions")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "submission rate limit exceeded, try again later")
	case errors.Is(err, service.ErrWeekendOnly):
		return utils.SendError(c, fiber.StatusConflict, "submissions are only open on weekends")
	case errors.Is(err, service.ErrAlreadyEvaluated):
		return utils.SendError(c, fiber.StatusConflict, "submission already evaluated")
	case errors.Is(err, service.ErrAlreadyReviewed):
		return utils.SendError(c, fiber.StatusConflict, "submission already reviewed")
	case errors.Is(err, service.ErrNotEvaluated):
		return utils.SendError(c, fiber.StatusConflict, "submission has not been evaluated yet")
	case errors.Is(err, ai.ErrUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "evaluation service unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
