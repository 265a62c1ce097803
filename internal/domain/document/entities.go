package document

import (
	"time"

	"gorm.io/gorm"
)

// Document records a content-integrity hash submitted by its owner.
// Verification is a one-way transition performed by an authorized
// verifier; external risk services read these records as evidence.
type Document struct {
	ID          uint64         `gorm:"primaryKey;column:id" json:"-"`
	DocumentKey string         `gorm:"size:32;uniqueIndex:ux_documents_document_key" json:"document_key"`
	OwnerID     string         `gorm:"size:32;index:idx_documents_owner" json:"owner_id"`
	DocType     string         `gorm:"size:64" json:"doc_type"`
	ContentHash string         `gorm:"size:64" json:"content_hash"`
	Verified    bool           `json:"verified"`
	VerifierID  *string        `gorm:"size:32" json:"verifier_id,omitempty"`
	VerifiedAt  *time.Time     `json:"verified_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "documents" }

// Verifier is one row of the process-wide verifier set. The registry
// owner is a member implicitly and never has a row of its own.
type Verifier struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Identity  string    `gorm:"size:32;uniqueIndex:ux_verifiers_identity" json:"identity"`
	AddedBy   string    `gorm:"size:32" json:"added_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Verifier) TableName() string { return "verifiers" }
