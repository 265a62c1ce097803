package marketplace

import (
	"context"
	"errors"
	"time"

	agrdomain "peerfund-core/internal/domain/agreement"
	"peerfund-core/internal/domain/errs"
	"peerfund-core/internal/domain/event"
	mkt "peerfund-core/internal/domain/marketplace"
	"peerfund-core/internal/domain/uow"
	agruc "peerfund-core/internal/usecase/agreement"
	"peerfund-core/pkg/id"

	"gorm.io/gorm"
)

// LoanCreator is the slice of the agreement usecase the match path
// needs; it runs inside the marketplace's transaction so the loan,
// schedule, and both deactivations commit together.
type LoanCreator interface {
	CreateInTx(ctx context.Context, r uow.Repos, in agruc.CreateLoanInput) (*agrdomain.Loan, error)
}

type Usecase struct {
	uow       uow.UnitOfWork
	loans     LoanCreator
	matcherID string
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, loans LoanCreator, matcherID string) *Usecase {
	return &Usecase{uow: tx, loans: loans, matcherID: matcherID, now: func() time.Time { return time.Now().UTC() }}
}

func NewUsecaseWithClock(tx uow.UnitOfWork, loans LoanCreator, matcherID string, now func() time.Time) *Usecase {
	return &Usecase{uow: tx, loans: loans, matcherID: matcherID, now: now}
}

func validateOfferBounds(minAmount, maxAmount, maxRateBps int64, minTerm, maxTerm int, expiresAt, now time.Time) error {
	if minAmount <= 0 || maxAmount < minAmount {
		return errs.ErrInvalidRange
	}
	if maxRateBps <= 0 {
		return errs.ErrInvalidRange
	}
	if minTerm <= 0 || maxTerm < minTerm {
		return errs.ErrInvalidRange
	}
	if !expiresAt.After(now) {
		return errs.ErrInvalidRange
	}
	return nil
}

func validateRequestBounds(amount, maxRateBps int64, term int, expiresAt, now time.Time) error {
	if amount <= 0 || maxRateBps <= 0 || term <= 0 {
		return errs.ErrInvalidRange
	}
	if !expiresAt.After(now) {
		return errs.ErrInvalidRange
	}
	return nil
}

func (u *Usecase) CreateOffer(ctx context.Context, callerID string, in CreateOfferInput) (*OfferDTO, error) {
	now := u.now()
	if err := validateOfferBounds(in.MinAmount, in.MaxAmount, in.MaxRateBps, in.MinTerm, in.MaxTerm, in.ExpiresAt, now); err != nil {
		return nil, err
	}

	key := id.RecordKey(callerID, in.ExternalID, in.MaxAmount, now)
	var dto *OfferDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Offers.GetByKey(ctx, key); err == nil {
			return errs.ErrAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		o := &mkt.Offer{
			OfferKey:    key,
			LenderID:    callerID,
			MinAmount:   in.MinAmount,
			MaxAmount:   in.MaxAmount,
			MaxRateBps:  in.MaxRateBps,
			MinTerm:     in.MinTerm,
			MaxTerm:     in.MaxTerm,
			ExpiresAt:   in.ExpiresAt.UTC(),
			Active:      true,
			MetadataRef: in.MetadataRef,
		}
		if err := r.Offers.Create(ctx, o); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		ev := event.New(event.OfferCreated, key, callerID, map[string]any{
			"lender_id":    callerID,
			"min_amount":   in.MinAmount,
			"max_amount":   in.MaxAmount,
			"max_rate_bps": in.MaxRateBps,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toOfferDTO(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) UpdateOffer(ctx context.Context, callerID, offerKey string, in UpdateOfferInput) (*OfferDTO, error) {
	now := u.now()
	if err := validateOfferBounds(in.MinAmount, in.MaxAmount, in.MaxRateBps, in.MinTerm, in.MaxTerm, in.ExpiresAt, now); err != nil {
		return nil, err
	}
	var dto *OfferDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByKeyForUpdate(ctx, offerKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if o.LenderID != callerID {
			return errs.ErrUnauthorized
		}
		if !o.Active {
			return errs.ErrInvalidState
		}
		// A record already past expiry can be cancelled but not revived.
		if !o.ExpiresAt.After(now) {
			return errs.ErrExpired
		}
		o.MinAmount = in.MinAmount
		o.MaxAmount = in.MaxAmount
		o.MaxRateBps = in.MaxRateBps
		o.MinTerm = in.MinTerm
		o.MaxTerm = in.MaxTerm
		o.ExpiresAt = in.ExpiresAt.UTC()
		o.MetadataRef = in.MetadataRef
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		ev := event.New(event.OfferUpdated, offerKey, callerID, map[string]any{
			"min_amount":   in.MinAmount,
			"max_amount":   in.MaxAmount,
			"max_rate_bps": in.MaxRateBps,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toOfferDTO(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) CancelOffer(ctx context.Context, callerID, offerKey string) (*OfferDTO, error) {
	var dto *OfferDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByKeyForUpdate(ctx, offerKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if o.LenderID != callerID {
			return errs.ErrUnauthorized
		}
		if !o.Active {
			return errs.ErrInvalidState
		}
		o.Active = false
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		ev := event.New(event.OfferCancelled, offerKey, callerID, nil)
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toOfferDTO(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) GetOffer(ctx context.Context, offerKey string) (*OfferDTO, error) {
	var dto *OfferDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByKey(ctx, offerKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		dto = toOfferDTO(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) CreateRequest(ctx context.Context, callerID string, in CreateRequestInput) (*RequestDTO, error) {
	now := u.now()
	if err := validateRequestBounds(in.Amount, in.MaxRateBps, in.Term, in.ExpiresAt, now); err != nil {
		return nil, err
	}

	key := id.RecordKey(callerID, in.ExternalID, in.Amount, now)
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Requests.GetByKey(ctx, key); err == nil {
			return errs.ErrAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		req := &mkt.Request{
			RequestKey:  key,
			BorrowerID:  callerID,
			Amount:      in.Amount,
			MaxRateBps:  in.MaxRateBps,
			Term:        in.Term,
			ExpiresAt:   in.ExpiresAt.UTC(),
			Active:      true,
			Purpose:     in.Purpose,
			MetadataRef: in.MetadataRef,
		}
		if err := r.Requests.Create(ctx, req); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		ev := event.New(event.RequestCreated, key, callerID, map[string]any{
			"borrower_id":  callerID,
			"amount":       in.Amount,
			"max_rate_bps": in.MaxRateBps,
			"term":         in.Term,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toRequestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) UpdateRequest(ctx context.Context, callerID, requestKey string, in UpdateRequestInput) (*RequestDTO, error) {
	now := u.now()
	if err := validateRequestBounds(in.Amount, in.MaxRateBps, in.Term, in.ExpiresAt, now); err != nil {
		return nil, err
	}
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByKeyForUpdate(ctx, requestKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if req.BorrowerID != callerID {
			return errs.ErrUnauthorized
		}
		if !req.Active {
			return errs.ErrInvalidState
		}
		if !req.ExpiresAt.After(now) {
			return errs.ErrExpired
		}
		req.Amount = in.Amount
		req.MaxRateBps = in.MaxRateBps
		req.Term = in.Term
		req.ExpiresAt = in.ExpiresAt.UTC()
		req.Purpose = in.Purpose
		req.MetadataRef = in.MetadataRef
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		ev := event.New(event.RequestUpdated, requestKey, callerID, map[string]any{
			"amount":       in.Amount,
			"max_rate_bps": in.MaxRateBps,
			"term":         in.Term,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toRequestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) CancelRequest(ctx context.Context, callerID, requestKey string) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByKeyForUpdate(ctx, requestKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if req.BorrowerID != callerID {
			return errs.ErrUnauthorized
		}
		if !req.Active {
			return errs.ErrInvalidState
		}
		req.Active = false
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		ev := event.New(event.RequestCancelled, requestKey, callerID, nil)
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toRequestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) GetRequest(ctx context.Context, requestKey string) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByKey(ctx, requestKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		dto = toRequestDTO(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Match pairs one offer with one request into a loan. Restricted to the
// matching authority; the ranking that chose the pair happened off the
// ledger, so only the numeric guards are enforced here. All three
// mutations commit atomically: both rows lock first, so a concurrent
// match on the same offer loses with InvalidState.
func (u *Usecase) Match(ctx context.Context, callerID string, in MatchInput) (*MatchDTO, error) {
	if callerID != u.matcherID {
		return nil, errs.ErrUnauthorized
	}

	var dto *MatchDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByKeyForUpdate(ctx, in.OfferKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		req, err := r.Requests.GetByKeyForUpdate(ctx, in.RequestKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}

		if !o.Active || !req.Active {
			return errs.ErrInvalidState
		}
		now := u.now()
		if !o.ExpiresAt.After(now) || !req.ExpiresAt.After(now) {
			return errs.ErrExpired
		}
		if in.Amount < o.MinAmount || in.Amount > o.MaxAmount {
			return errs.ErrInvalidRange
		}
		// No partial fills: the matched amount is the requested amount.
		if in.Amount != req.Amount {
			return errs.ErrAmountMismatch
		}
		if in.RateBps > req.MaxRateBps {
			return errs.ErrInvalidRange
		}
		if in.Term < o.MinTerm || in.Term > o.MaxTerm {
			return errs.ErrInvalidRange
		}
		if in.Term != req.Term {
			return errs.ErrTermMismatch
		}
		if in.StartAt.Before(now) {
			return errs.ErrInvalidRange
		}

		l, err := u.loans.CreateInTx(ctx, r, agruc.CreateLoanInput{
			OfferKey:    o.OfferKey,
			RequestKey:  req.RequestKey,
			BorrowerID:  req.BorrowerID,
			LenderID:    o.LenderID,
			Principal:   in.Amount,
			RateBps:     in.RateBps,
			Term:        in.Term,
			StartAt:     in.StartAt,
			MetadataRef: in.MetadataRef,
			ExternalID:  o.OfferKey + req.RequestKey,
		})
		if err != nil {
			return err
		}

		o.Active = false
		req.Active = false
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}

		ev := event.New(event.OfferMatched, l.LoanKey, callerID, map[string]any{
			"offer_key":   o.OfferKey,
			"request_key": req.RequestKey,
			"amount":      in.Amount,
			"rate_bps":    in.RateBps,
			"term":        in.Term,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}

		dto = &MatchDTO{
			LoanKey:    l.LoanKey,
			OfferKey:   o.OfferKey,
			RequestKey: req.RequestKey,
			Principal:  in.Amount,
			RateBps:    in.RateBps,
			Term:       in.Term,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
