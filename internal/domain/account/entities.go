package account

import "time"

// Account holds an identity's escrow balance in minor units. Funding
// and repayment move value between these rows inside the same
// transaction that commits the loan state change.
type Account struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Identity  string    `gorm:"size:32;uniqueIndex:ux_accounts_identity" json:"identity"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }
