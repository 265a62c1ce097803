package document

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"

	doc "peerfund-core/internal/domain/document"
	"peerfund-core/internal/domain/errs"
	"peerfund-core/internal/domain/event"
	"peerfund-core/internal/domain/uow"
	"peerfund-core/pkg/id"

	"gorm.io/gorm"
)

type Usecase struct {
	uow     uow.UnitOfWork
	ownerID string
	now     func() time.Time
}

// NewUsecase wires the registry. ownerID is the registry owner: the
// only identity that manages the verifier set, and an implicit,
// irremovable member of it.
func NewUsecase(tx uow.UnitOfWork, ownerID string) *Usecase {
	return &Usecase{uow: tx, ownerID: ownerID, now: func() time.Time { return time.Now().UTC() }}
}

func NewUsecaseWithClock(tx uow.UnitOfWork, ownerID string, now func() time.Time) *Usecase {
	return &Usecase{uow: tx, ownerID: ownerID, now: now}
}

// contentSalient folds the leading bytes of the content hash into the
// numeric key component, so the same reference resubmitted with
// different content derives a distinct key.
func contentSalient(contentHash string) int64 {
	b, err := hex.DecodeString(contentHash)
	if err != nil || len(b) < 8 {
		sum := sha256.Sum256([]byte(contentHash))
		b = sum[:]
	}
	return int64(binary.BigEndian.Uint64(b[:8]))
}

func (u *Usecase) Add(ctx context.Context, callerID string, in AddDocumentInput) (*DocumentDTO, error) {
	if in.ContentHash == "" || in.DocType == "" {
		return nil, errs.ErrInvalidRange
	}
	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = u.now()
	}

	key := id.RecordKey(callerID, in.ExternalID, contentSalient(in.ContentHash), submittedAt)
	var dto *DocumentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Documents.GetByKey(ctx, key); err == nil {
			return errs.ErrAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		d := &doc.Document{
			DocumentKey: key,
			OwnerID:     callerID,
			DocType:     in.DocType,
			ContentHash: in.ContentHash,
		}
		if err := r.Documents.Create(ctx, d); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		ev := event.New(event.DocumentAdded, key, callerID, map[string]any{
			"owner_id":     callerID,
			"doc_type":     in.DocType,
			"content_hash": in.ContentHash,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDocumentDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Verify is a one-way transition performed by an authorized verifier.
func (u *Usecase) Verify(ctx context.Context, callerID, documentKey string) (*DocumentDTO, error) {
	var dto *DocumentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Documents.GetByKeyForUpdate(ctx, documentKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if d.Verified {
			return errs.ErrAlreadyVerified
		}
		if callerID != u.ownerID {
			ok, err := r.Documents.IsVerifier(ctx, callerID)
			if err != nil {
				return err
			}
			if !ok {
				return errs.ErrUnauthorized
			}
		}

		now := u.now()
		d.Verified = true
		d.VerifierID = &callerID
		d.VerifiedAt = &now
		if err := r.Documents.Save(ctx, d); err != nil {
			return err
		}
		ev := event.New(event.DocumentVerified, documentKey, callerID, map[string]any{
			"verifier_id": callerID,
			"owner_id":    d.OwnerID,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDocumentDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, documentKey string) (*DocumentDTO, error) {
	var dto *DocumentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Documents.GetByKey(ctx, documentKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		dto = toDocumentDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) IsVerified(ctx context.Context, documentKey string) (bool, error) {
	dto, err := u.Get(ctx, documentKey)
	if err != nil {
		return false, err
	}
	return dto.Verified, nil
}

// ListOwner returns the owner's document keys in submission order.
func (u *Usecase) ListOwner(ctx context.Context, ownerID string) ([]DocumentDTO, error) {
	var out []DocumentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		docs, err := r.Documents.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		for i := range docs {
			out = append(out, *toDocumentDTO(&docs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) AddVerifier(ctx context.Context, callerID, identity string) error {
	if callerID != u.ownerID {
		return errs.ErrUnauthorized
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if identity == u.ownerID {
			// The owner is a member already.
			return errs.ErrAlreadyExists
		}
		ok, err := r.Documents.IsVerifier(ctx, identity)
		if err != nil {
			return err
		}
		if ok {
			return errs.ErrAlreadyExists
		}
		if err := r.Documents.AddVerifier(ctx, &doc.Verifier{Identity: identity, AddedBy: callerID}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		ev := event.New(event.VerifierAdded, identity, callerID, nil)
		return r.Events.Append(ctx, ev)
	})
}

func (u *Usecase) RemoveVerifier(ctx context.Context, callerID, identity string) error {
	if callerID != u.ownerID {
		return errs.ErrUnauthorized
	}
	if identity == u.ownerID {
		// The registry owner cannot be removed from the set.
		return errs.ErrUnauthorized
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Documents.RemoveVerifier(ctx, identity); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		ev := event.New(event.VerifierRemoved, identity, callerID, nil)
		return r.Events.Append(ctx, ev)
	})
}

func (u *Usecase) ListVerifiers(ctx context.Context) ([]string, error) {
	out := []string{u.ownerID}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rows, err := r.Documents.ListVerifiers(ctx)
		if err != nil {
			return err
		}
		for _, v := range rows {
			out = append(out, v.Identity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
