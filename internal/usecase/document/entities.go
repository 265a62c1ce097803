package document

import (
	"time"

	doc "peerfund-core/internal/domain/document"
)

type AddDocumentInput struct {
	ExternalID  string
	DocType     string
	ContentHash string
	// SubmittedAt seeds key derivation; identical submissions produce
	// the same key and the second one fails with AlreadyExists.
	SubmittedAt time.Time
}

type DocumentDTO struct {
	DocumentKey string     `json:"document_key"`
	OwnerID     string     `json:"owner_id"`
	DocType     string     `json:"doc_type"`
	ContentHash string     `json:"content_hash"`
	Verified    bool       `json:"verified"`
	VerifierID  *string    `json:"verifier_id,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toDocumentDTO(d *doc.Document) *DocumentDTO {
	return &DocumentDTO{
		DocumentKey: d.DocumentKey,
		OwnerID:     d.OwnerID,
		DocType:     d.DocType,
		ContentHash: d.ContentHash,
		Verified:    d.Verified,
		VerifierID:  d.VerifierID,
		VerifiedAt:  d.VerifiedAt,
		CreatedAt:   d.CreatedAt,
	}
}
