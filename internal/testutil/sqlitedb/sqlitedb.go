package sqlitedb

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// SQLite-safe shadow schemas: same tables and columns as the domain
// models, with enum columns widened to text. Tests migrate these and
// read/write through the domain structs.

type offerSQLite struct {
	ID          uint64         `gorm:"primaryKey;column:id"`
	OfferKey    string         `gorm:"size:32;column:offer_key;uniqueIndex"`
	LenderID    string         `gorm:"size:32;column:lender_id"`
	MinAmount   int64          `gorm:"column:min_amount"`
	MaxAmount   int64          `gorm:"column:max_amount"`
	MaxRateBps  int64          `gorm:"column:max_rate_bps"`
	MinTerm     int            `gorm:"column:min_term"`
	MaxTerm     int            `gorm:"column:max_term"`
	ExpiresAt   time.Time      `gorm:"column:expires_at"`
	Active      bool           `gorm:"column:active"`
	MetadataRef string         `gorm:"column:metadata_ref"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (offerSQLite) TableName() string { return "offers" }

type requestSQLite struct {
	ID          uint64         `gorm:"primaryKey;column:id"`
	RequestKey  string         `gorm:"size:32;column:request_key;uniqueIndex"`
	BorrowerID  string         `gorm:"size:32;column:borrower_id"`
	Amount      int64          `gorm:"column:amount"`
	MaxRateBps  int64          `gorm:"column:max_rate_bps"`
	Term        int            `gorm:"column:term"`
	ExpiresAt   time.Time      `gorm:"column:expires_at"`
	Active      bool           `gorm:"column:active"`
	Purpose     string         `gorm:"column:purpose"`
	MetadataRef string         `gorm:"column:metadata_ref"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (requestSQLite) TableName() string { return "requests" }

type loanSQLite struct {
	ID              uint64         `gorm:"primaryKey;column:id"`
	LoanKey         string         `gorm:"size:32;column:loan_key;uniqueIndex"`
	OfferKey        string         `gorm:"size:32;column:offer_key"`
	RequestKey      string         `gorm:"size:32;column:request_key"`
	BorrowerID      string         `gorm:"size:32;column:borrower_id"`
	LenderID        string         `gorm:"size:32;column:lender_id"`
	Principal       int64          `gorm:"column:principal"`
	RateBps         int64          `gorm:"column:rate_bps"`
	Term            int            `gorm:"column:term"`
	StartAt         time.Time      `gorm:"column:start_at"`
	EndAt           time.Time      `gorm:"column:end_at"`
	NextInstallment int            `gorm:"column:next_installment"`
	Status          string         `gorm:"type:text;column:status"` // no enum on sqlite
	TotalRepaid     int64          `gorm:"column:total_repaid"`
	MetadataRef     string         `gorm:"column:metadata_ref"`
	StatusUpdatedAt time.Time      `gorm:"column:status_updated_at"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type installmentSQLite struct {
	ID      uint64     `gorm:"primaryKey;column:id"`
	LoanKey string     `gorm:"size:32;column:loan_key;uniqueIndex:ux_installments_loan_idx,priority:1"`
	Idx     int        `gorm:"column:idx;uniqueIndex:ux_installments_loan_idx,priority:2"`
	Amount  int64      `gorm:"column:amount"`
	DueAt   time.Time  `gorm:"column:due_at"`
	PaidAt  *time.Time `gorm:"column:paid_at"`
	Status  string     `gorm:"type:text;column:status"`
}

func (installmentSQLite) TableName() string { return "installments" }

type documentSQLite struct {
	ID          uint64         `gorm:"primaryKey;column:id"`
	DocumentKey string         `gorm:"size:32;column:document_key;uniqueIndex"`
	OwnerID     string         `gorm:"size:32;column:owner_id"`
	DocType     string         `gorm:"column:doc_type"`
	ContentHash string         `gorm:"column:content_hash"`
	Verified    bool           `gorm:"column:verified"`
	VerifierID  *string        `gorm:"column:verifier_id"`
	VerifiedAt  *time.Time     `gorm:"column:verified_at"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (documentSQLite) TableName() string { return "documents" }

type verifierSQLite struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	Identity  string    `gorm:"size:32;column:identity;uniqueIndex"`
	AddedBy   string    `gorm:"size:32;column:added_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (verifierSQLite) TableName() string { return "verifiers" }

type accountSQLite struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	Identity  string    `gorm:"size:32;column:identity;uniqueIndex"`
	Balance   int64     `gorm:"column:balance"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (accountSQLite) TableName() string { return "accounts" }

type eventSQLite struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement;column:seq"`
	Kind      string    `gorm:"column:kind"`
	RecordKey string    `gorm:"size:32;column:record_key"`
	ActorID   string    `gorm:"size:32;column:actor_id"`
	Payload   string    `gorm:"column:payload"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (eventSQLite) TableName() string { return "events" }

// Open returns an in-memory database migrated with the full sqlite-safe
// schema.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         glogger.Default.LogMode(glogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&offerSQLite{}, &requestSQLite{},
		&loanSQLite{}, &installmentSQLite{},
		&documentSQLite{}, &verifierSQLite{},
		&accountSQLite{}, &eventSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
