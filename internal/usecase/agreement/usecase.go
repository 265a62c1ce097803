package agreement

import (
	"context"
	"errors"
	"time"

	acct "peerfund-core/internal/domain/account"
	agr "peerfund-core/internal/domain/agreement"
	"peerfund-core/internal/domain/errs"
	"peerfund-core/internal/domain/event"
	"peerfund-core/internal/domain/uow"
	"peerfund-core/pkg/id"

	"gorm.io/gorm"
)

// Config carries the process-wide agreement parameters. Mutating any of
// them goes through redeploy/config update, not through the API.
type Config struct {
	PlatformFeeBps    int64
	PlatformAccountID string
	GracePeriod       time.Duration
	MatcherID         string
	OperatorID        string
}

type Usecase struct {
	uow uow.UnitOfWork
	cfg Config
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, cfg Config) *Usecase {
	return &Usecase{uow: tx, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// NewUsecaseWithClock is used by tests that need a fixed clock.
func NewUsecaseWithClock(tx uow.UnitOfWork, cfg Config, now func() time.Time) *Usecase {
	return &Usecase{uow: tx, cfg: cfg, now: now}
}

// CreateInTx creates the loan and its full schedule inside the caller's
// transaction. The marketplace calls this while it still holds locks on
// the matched offer and request, so loan creation and their
// deactivation commit as one step.
func (u *Usecase) CreateInTx(ctx context.Context, r uow.Repos, in CreateLoanInput) (*agr.Loan, error) {
	if in.Principal <= 0 || in.Term <= 0 || in.RateBps < 0 {
		return nil, errs.ErrInvalidRange
	}
	if in.BorrowerID == in.LenderID {
		return nil, errs.ErrInvalidRange
	}

	rows, err := BuildSchedule(in.Principal, in.RateBps, in.Term, in.StartAt)
	if err != nil {
		return nil, err
	}

	key := id.RecordKey(in.LenderID+in.BorrowerID, in.ExternalID, in.Principal, in.StartAt)
	if _, err := r.Loans.GetByKey(ctx, key); err == nil {
		return nil, errs.ErrAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	l := &agr.Loan{
		LoanKey:         key,
		OfferKey:        in.OfferKey,
		RequestKey:      in.RequestKey,
		BorrowerID:      in.BorrowerID,
		LenderID:        in.LenderID,
		Principal:       in.Principal,
		RateBps:         in.RateBps,
		Term:            in.Term,
		StartAt:         in.StartAt.UTC(),
		EndAt:           rows[len(rows)-1].DueAt,
		Status:          agr.StatusPending,
		MetadataRef:     in.MetadataRef,
		StatusUpdatedAt: u.now(),
	}
	if err := r.Loans.Create(ctx, l); err != nil {
		// A concurrent create can slip past the read check and land on
		// the unique key index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	for i := range rows {
		rows[i].LoanKey = key
	}
	if err := r.Loans.CreateInstallments(ctx, rows); err != nil {
		return nil, err
	}

	ev := event.New(event.LoanCreated, key, in.LenderID, map[string]any{
		"borrower_id": in.BorrowerID,
		"lender_id":   in.LenderID,
		"principal":   in.Principal,
		"rate_bps":    in.RateBps,
		"term":        in.Term,
	})
	if err := r.Events.Append(ctx, ev); err != nil {
		return nil, err
	}
	return l, nil
}

// Create is the direct entry point, restricted to the matching
// authority; the marketplace path goes through CreateInTx instead.
func (u *Usecase) Create(ctx context.Context, callerID string, in CreateLoanInput) (*LoanDTO, error) {
	if callerID != u.cfg.MatcherID {
		return nil, errs.ErrUnauthorized
	}
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := u.CreateInTx(ctx, r, in)
		if err != nil {
			return err
		}
		rows, err := r.Loans.ListInstallments(ctx, l.LoanKey)
		if err != nil {
			return err
		}
		dto = toLoanDTO(l, rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Fund moves the principal out of the lender's escrow account, pays the
// platform fee, disburses the remainder to the borrower, and activates
// the loan. All of it commits in one transaction: if the transfer
// cannot complete the loan stays pending.
func (u *Usecase) Fund(ctx context.Context, callerID, loanKey string, amount int64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByKeyForUpdate(ctx, loanKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if callerID != l.LenderID {
			return errs.ErrUnauthorized
		}
		if l.Status != agr.StatusPending {
			return errs.ErrInvalidState
		}
		if amount != l.Principal {
			return errs.ErrAmountMismatch
		}

		fee := l.Principal * u.cfg.PlatformFeeBps / 10000
		disbursed := l.Principal - fee

		// The platform account can itself be the lender or the
		// borrower; each identity must resolve to one row so aliased
		// movements net instead of overwriting each other on save.
		accounts := make(map[string]*acct.Account, 3)
		load := func(identity string) (*acct.Account, error) {
			if a, ok := accounts[identity]; ok {
				return a, nil
			}
			a, err := r.Accounts.GetOrCreateForUpdate(ctx, identity)
			if err != nil {
				return nil, err
			}
			accounts[identity] = a
			return a, nil
		}

		lender, err := load(l.LenderID)
		if err != nil {
			return err
		}
		if lender.Balance < l.Principal {
			return errs.ErrInsufficientFunds
		}
		borrower, err := load(l.BorrowerID)
		if err != nil {
			return err
		}
		platform, err := load(u.cfg.PlatformAccountID)
		if err != nil {
			return err
		}

		lender.Balance -= l.Principal
		borrower.Balance += disbursed
		platform.Balance += fee
		for _, a := range accounts {
			if err := r.Accounts.Save(ctx, a); err != nil {
				return err
			}
		}

		l.Status = agr.StatusActive
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		ev := event.New(event.LoanFunded, l.LoanKey, callerID, map[string]any{
			"amount":    l.Principal,
			"fee":       fee,
			"disbursed": disbursed,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toLoanDTO(l, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Pay settles exactly the next unpaid installment, transferring it from
// the borrower's escrow account to the lender's.
func (u *Usecase) Pay(ctx context.Context, callerID, loanKey string, amount int64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByKeyForUpdate(ctx, loanKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if callerID != l.BorrowerID {
			return errs.ErrUnauthorized
		}
		if l.Status != agr.StatusActive {
			return errs.ErrInvalidState
		}
		if l.NextInstallment >= l.Term {
			return errs.ErrInvalidState
		}

		inst, err := r.Loans.GetInstallment(ctx, l.LoanKey, l.NextInstallment)
		if err != nil {
			return err
		}
		if amount != inst.Amount {
			return errs.ErrAmountMismatch
		}

		borrower, err := r.Accounts.GetOrCreateForUpdate(ctx, l.BorrowerID)
		if err != nil {
			return err
		}
		if borrower.Balance < amount {
			return errs.ErrInsufficientFunds
		}
		lender, err := r.Accounts.GetOrCreateForUpdate(ctx, l.LenderID)
		if err != nil {
			return err
		}
		borrower.Balance -= amount
		lender.Balance += amount
		if err := r.Accounts.Save(ctx, borrower); err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, lender); err != nil {
			return err
		}

		now := u.now()
		inst.Status = agr.InstallmentPaid
		inst.PaidAt = &now
		if err := r.Loans.SaveInstallment(ctx, inst); err != nil {
			return err
		}

		l.NextInstallment++
		l.TotalRepaid += amount
		completed := l.NextInstallment == l.Term
		if completed {
			l.Status = agr.StatusCompleted
		}
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		ev := event.New(event.PaymentMade, l.LoanKey, callerID, map[string]any{
			"installment_idx": inst.Idx,
			"amount":          amount,
			"total_repaid":    l.TotalRepaid,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		if completed {
			done := event.New(event.LoanCompleted, l.LoanKey, callerID, map[string]any{
				"total_repaid": l.TotalRepaid,
			})
			if err := r.Events.Append(ctx, done); err != nil {
				return err
			}
		}
		dto = toLoanDTO(l, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// MarkDefaulted declares the loan defaulted once the next installment
// is past due by at least the grace period. Detection is caller
// triggered; nothing fires on a clock.
func (u *Usecase) MarkDefaulted(ctx context.Context, callerID, loanKey string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByKeyForUpdate(ctx, loanKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if callerID != l.LenderID && callerID != u.cfg.OperatorID {
			return errs.ErrUnauthorized
		}
		if l.Status != agr.StatusActive {
			return errs.ErrInvalidState
		}
		if l.NextInstallment >= l.Term {
			return errs.ErrInvalidState
		}

		inst, err := r.Loans.GetInstallment(ctx, l.LoanKey, l.NextInstallment)
		if err != nil {
			return err
		}
		if u.now().Before(inst.DueAt.Add(u.cfg.GracePeriod)) {
			return errs.ErrInvalidRange
		}

		inst.Status = agr.InstallmentDefaulted
		if err := r.Loans.SaveInstallment(ctx, inst); err != nil {
			return err
		}
		l.Status = agr.StatusDefaulted
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		ev := event.New(event.LoanDefaulted, l.LoanKey, callerID, map[string]any{
			"installment_idx": inst.Idx,
			"outstanding":     l.Principal - l.TotalRepaid,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toLoanDTO(l, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Cancel is only legal while the loan is pending; no funds have moved,
// so there is nothing to reverse.
func (u *Usecase) Cancel(ctx context.Context, callerID, loanKey string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByKeyForUpdate(ctx, loanKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if callerID != l.BorrowerID && callerID != l.LenderID && callerID != u.cfg.OperatorID {
			return errs.ErrUnauthorized
		}
		if l.Status != agr.StatusPending {
			return errs.ErrInvalidState
		}

		l.Status = agr.StatusCancelled
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		ev := event.New(event.LoanCancelled, l.LoanKey, callerID, nil)
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toLoanDTO(l, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Get returns the loan with its full schedule.
func (u *Usecase) Get(ctx context.Context, loanKey string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByKey(ctx, loanKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		rows, err := r.Loans.ListInstallments(ctx, loanKey)
		if err != nil {
			return err
		}
		dto = toLoanDTO(l, rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
