package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodigo-go-api/internal/service"
	"github.com/noah-isme/kodigo-go-api/internal/utils"
)

// TransactionHandler exposes the coin ledger to its owner.
type TransactionHandler struct {
	service service.TransactionService
	logger  zerolog.Logger
}

// NewTransactionHandler builds a transaction handler instance.
func NewTransactionHandler(service service.TransactionService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger.With().Str("component", "transaction_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *TransactionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/summary", h.summary)
}

func (h *TransactionHandler) list(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit, offset := parsePagination(c)
	transactions, total, err := h.service.ListByUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendPage(c, "transactions retrieved", transactions, utils.PageMeta{Total: total, Limit: limit, Offset: offset})
}

func (h *TransactionHandler) summary(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	summary, err := h.service.Summary(c.UserContext(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "transaction summary retrieved", summary)
}
