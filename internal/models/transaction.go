package models

import "time"

// TransactionType labels the origin of a coin movement.
const (
	TransactionTypeChallengeReward = "challenge_reward"
	TransactionTypeLevelUp         = "level_up"
	TransactionTypeReviewBonus     = "review_bonus"
	TransactionTypeSpend           = "spend"
	TransactionTypeAdjustment      = "adjustment"
)

// Transaction is an append-only ledger entry for every coin-affecting event.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index:idx_transaction_user_created" json:"user_id"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	Amount        int       `gorm:"not null" json:"amount"`
	Balance       int       `gorm:"not null" json:"balance"`
	Description   string    `gorm:"size:512;not null" json:"description"`
	ReferenceID   string    `gorm:"size:64" json:"reference_id"`
	ReferenceType string    `gorm:"size:64" json:"reference_type"`
	CreatedAt     time.Time `gorm:"index:idx_transaction_user_created" json:"created_at"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
