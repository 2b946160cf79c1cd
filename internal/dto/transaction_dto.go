package dto

import (
	"time"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// TransactionResponse is one coin ledger entry.
type TransactionResponse struct {
	ID            uint      `json:"id"`
	Type          string    `json:"type"`
	Amount        int       `json:"amount"`
	Balance       int       `json:"balance"`
	Description   string    `json:"description"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	ReferenceType string    `json:"reference_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionSummaryResponse aggregates a user's coin movements.
type TransactionSummaryResponse struct {
	TotalEarned int            `json:"total_earned"`
	TotalSpent  int            `json:"total_spent"`
	ByType      map[string]int `json:"by_type"`
}

// NewTransactionResponse converts a ledger model into its DTO.
func NewTransactionResponse(transaction models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            transaction.ID,
		Type:          transaction.Type,
		Amount:        transaction.Amount,
		Balance:       transaction.Balance,
		Description:   transaction.Description,
		ReferenceID:   transaction.ReferenceID,
		ReferenceType: transaction.ReferenceType,
		CreatedAt:     transaction.CreatedAt,
	}
}
