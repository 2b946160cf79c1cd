package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/internal/repository"
)

// TransactionService owns the append-only coin ledger.
type TransactionService interface {
	Record(ctx context.Context, entry models.Transaction) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]dto.TransactionResponse, int64, error)
	Summary(ctx context.Context, userID uint) (dto.TransactionSummaryResponse, error)
}

// NewTransactionService constructs a transaction service.
func NewTransactionService(transactions repository.TransactionRepository, logger zerolog.Logger) TransactionService {
	return &transactionService{
		transactions: transactions,
		logger:       logger.With().Str("component", "transaction_service").Logger(),
	}
}

type transactionService struct {
	transactions repository.TransactionRepository
	logger       zerolog.Logger
}

func (s *transactionService) Record(ctx context.Context, entry models.Transaction) error {
	return s.transactions.Create(ctx, &entry)
}

func (s *transactionService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]dto.TransactionResponse, int64, error) {
	transactions, total, err := s.transactions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		responses = append(responses, dto.NewTransactionResponse(transaction))
	}
	return responses, total, nil
}

func (s *transactionService) Summary(ctx context.Context, userID uint) (dto.TransactionSummaryResponse, error) {
	transactions, err := s.transactions.ListAllByUser(ctx, userID)
	if err != nil {
		return dto.TransactionSummaryResponse{}, err
	}

	summary := dto.TransactionSummaryResponse{ByType: make(map[string]int)}
	for _, transaction := range transactions {
		summary.ByType[transaction.Type] += transaction.Amount
		if transaction.Amount >= 0 {
			summary.TotalEarned += transaction.Amount
		} else {
			summary.TotalSpent += -transaction.Amount
		}
	}
	return summary, nil
}
