package agreement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"peerfund-core/internal/adapter/repository/mysql"
	agr "peerfund-core/internal/domain/agreement"
	"peerfund-core/internal/domain/errs"
	"peerfund-core/internal/domain/uow"
	"peerfund-core/internal/testutil/sqlitedb"
	"peerfund-core/internal/testutil/uowmock"

	"gorm.io/gorm"
)

const (
	tMatcher  = "11111111111111111111111111111111"
	tOperator = "22222222222222222222222222222222"
	tPlatform = "33333333333333333333333333333333"
	tLender   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	tBorrower = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type testEnv struct {
	db  *gorm.DB
	uc  *Usecase
	now *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := sqlitedb.Open(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := &start
	cfg := Config{
		PlatformFeeBps:    100,
		PlatformAccountID: tPlatform,
		GracePeriod:       30 * 24 * time.Hour,
		MatcherID:         tMatcher,
		OperatorID:        tOperator,
	}
	uc := NewUsecaseWithClock(mysql.NewGormUoW(db), cfg, func() time.Time { return *now })
	return &testEnv{db: db, uc: uc, now: now}
}

func (e *testEnv) advance(d time.Duration) { *e.now = e.now.Add(d) }

func (e *testEnv) deposit(t *testing.T, identity string, amount int64) {
	t.Helper()
	repo := mysql.NewAccountRepository(e.db)
	a, err := repo.GetOrCreateForUpdate(context.Background(), identity)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	a.Balance += amount
	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("save account: %v", err)
	}
}

func (e *testEnv) balance(t *testing.T, identity string) int64 {
	t.Helper()
	a, err := mysql.NewAccountRepository(e.db).Get(context.Background(), identity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return a.Balance
}

func (e *testEnv) countEvents(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Table("events").Count(&n).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func (e *testEnv) createLoan(t *testing.T) *LoanDTO {
	t.Helper()
	dto, err := e.uc.Create(context.Background(), tMatcher, CreateLoanInput{
		ExternalID: "match-1",
		BorrowerID: tBorrower,
		LenderID:   tLender,
		Principal:  75000,
		RateBps:    900,
		Term:       12,
		StartAt:    *e.now,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	return dto
}

func TestCreate_PendingWithFullSchedule(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)

	if dto.Status != string(agr.StatusPending) {
		t.Fatalf("status=%s", dto.Status)
	}
	if len(dto.LoanKey) != 32 {
		t.Fatalf("loan key length %d", len(dto.LoanKey))
	}
	if len(dto.Schedule) != 12 {
		t.Fatalf("schedule len=%d", len(dto.Schedule))
	}
	var sum int64
	for _, row := range dto.Schedule {
		sum += row.Amount
	}
	if sum != 75000 {
		t.Fatalf("schedule sum=%d", sum)
	}
	if env.countEvents(t) != 1 {
		t.Fatalf("want exactly one loan.created event")
	}
}

func TestCreate_RejectsNonMatcherBeforeTx(t *testing.T) {
	mock := uowmock.New()
	mock.WithinTxFn = func(ctx context.Context, fn func(r uow.Repos) error) error {
		t.Fatal("unauthorized create must not open a transaction")
		return nil
	}
	uc := NewUsecase(mock, Config{MatcherID: tMatcher, OperatorID: tOperator})

	_, err := uc.Create(context.Background(), tLender, CreateLoanInput{
		ExternalID: "x", BorrowerID: tBorrower, LenderID: tLender,
		Principal: 1000, RateBps: 500, Term: 6, StartAt: time.Now(),
	})
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestCreate_DuplicateKeyRejected(t *testing.T) {
	env := newTestEnv(t)
	env.createLoan(t)
	_, err := env.uc.Create(context.Background(), tMatcher, CreateLoanInput{
		ExternalID: "match-1",
		BorrowerID: tBorrower,
		LenderID:   tLender,
		Principal:  75000,
		RateBps:    900,
		Term:       12,
		StartAt:    *env.now,
	})
	if !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestFund_DisbursesMinusPlatformFee(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 80000)

	out, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000)
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	if out.Status != string(agr.StatusActive) {
		t.Fatalf("status=%s", out.Status)
	}
	if got := env.balance(t, tLender); got != 5000 {
		t.Fatalf("lender balance=%d want 5000", got)
	}
	if got := env.balance(t, tBorrower); got != 74250 {
		t.Fatalf("borrower balance=%d want 74250", got)
	}
	if got := env.balance(t, tPlatform); got != 750 {
		t.Fatalf("platform balance=%d want 750", got)
	}
}

func TestFund_PlatformAsLenderConservesBalances(t *testing.T) {
	env := newTestEnv(t)
	dto, err := env.uc.Create(context.Background(), tMatcher, CreateLoanInput{
		ExternalID: "match-platform",
		BorrowerID: tBorrower,
		LenderID:   tPlatform,
		Principal:  75000,
		RateBps:    900,
		Term:       12,
		StartAt:    *env.now,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	env.deposit(t, tPlatform, 75000)

	if _, err := env.uc.Fund(context.Background(), tPlatform, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	// The platform pays out the principal and collects its own fee on
	// the same row: -75000 + 750.
	if got := env.balance(t, tPlatform); got != 750 {
		t.Fatalf("platform balance=%d want 750", got)
	}
	if got := env.balance(t, tBorrower); got != 74250 {
		t.Fatalf("borrower balance=%d want 74250", got)
	}
	if total := env.balance(t, tPlatform) + env.balance(t, tBorrower); total != 75000 {
		t.Fatalf("total balance=%d want 75000", total)
	}
}

func TestFund_PlatformAsBorrowerConservesBalances(t *testing.T) {
	env := newTestEnv(t)
	dto, err := env.uc.Create(context.Background(), tMatcher, CreateLoanInput{
		ExternalID: "match-platform-borrows",
		BorrowerID: tPlatform,
		LenderID:   tLender,
		Principal:  75000,
		RateBps:    900,
		Term:       12,
		StartAt:    *env.now,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	env.deposit(t, tLender, 75000)

	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	// Disbursement and fee land on the same row: +74250 + 750.
	if got := env.balance(t, tPlatform); got != 75000 {
		t.Fatalf("platform balance=%d want 75000", got)
	}
	if got := env.balance(t, tLender); got != 0 {
		t.Fatalf("lender balance=%d want 0", got)
	}
}

func TestFund_Guards(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 80000)

	if _, err := env.uc.Fund(context.Background(), tBorrower, dto.LoanKey, 75000); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("caller guard: %v", err)
	}
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 74999); !errors.Is(err, errs.ErrAmountMismatch) {
		t.Fatalf("amount guard: %v", err)
	}
	if _, err := env.uc.Fund(context.Background(), tLender, strings.Repeat("f", 32), 75000); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing loan: %v", err)
	}
	// Success, then funding again must fail on state.
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("refund guard: %v", err)
	}
}

func TestFund_InsufficientBalanceLeavesLoanPending(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 1000)

	events := env.countEvents(t)
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	got, err := env.uc.Get(context.Background(), dto.LoanKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(agr.StatusPending) {
		t.Fatalf("loan advanced despite failed transfer: %s", got.Status)
	}
	if env.balance(t, tLender) != 1000 || env.balance(t, tBorrower) != 0 {
		t.Fatalf("balances moved on rejected funding")
	}
	if env.countEvents(t) != events {
		t.Fatalf("rejected funding appended an event")
	}
}

func TestPay_FullTermCompletesLoan(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 75000)
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	env.deposit(t, tBorrower, 10000) // top up beyond the disbursement to cover interest rounding

	full, err := env.uc.Get(context.Background(), dto.LoanKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i, inst := range full.Schedule {
		out, err := env.uc.Pay(context.Background(), tBorrower, dto.LoanKey, inst.Amount)
		if err != nil {
			t.Fatalf("pay %d: %v", i, err)
		}
		if i < len(full.Schedule)-1 && out.Status != string(agr.StatusActive) {
			t.Fatalf("pay %d status=%s", i, out.Status)
		}
		if i == len(full.Schedule)-1 && out.Status != string(agr.StatusCompleted) {
			t.Fatalf("final status=%s", out.Status)
		}
	}

	final, err := env.uc.Get(context.Background(), dto.LoanKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.TotalRepaid != 75000 {
		t.Fatalf("total repaid=%d", final.TotalRepaid)
	}
	for i, inst := range final.Schedule {
		if inst.Status != string(agr.InstallmentPaid) || inst.PaidAt == nil {
			t.Fatalf("installment %d not settled: %+v", i, inst)
		}
	}

	// Terminal state is sticky.
	if _, err := env.uc.Pay(context.Background(), tBorrower, dto.LoanKey, 100); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("pay after completion: %v", err)
	}
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("fund after completion: %v", err)
	}
	if _, err := env.uc.Cancel(context.Background(), tBorrower, dto.LoanKey); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("cancel after completion: %v", err)
	}
}

func TestPay_Guards(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 75000)

	// Not active yet.
	if _, err := env.uc.Pay(context.Background(), tBorrower, dto.LoanKey, 6559); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("pay before funding: %v", err)
	}
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if _, err := env.uc.Pay(context.Background(), tLender, dto.LoanKey, 6559); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("caller guard: %v", err)
	}

	full, _ := env.uc.Get(context.Background(), dto.LoanKey)
	wrong := full.Schedule[0].Amount + 1
	if _, err := env.uc.Pay(context.Background(), tBorrower, dto.LoanKey, wrong); !errors.Is(err, errs.ErrAmountMismatch) {
		t.Fatalf("amount guard: %v", err)
	}
}

func TestMarkDefaulted_RespectsGracePeriod(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 75000)
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	// First due at start+30d; grace 30d. One second short must fail.
	env.advance(60*24*time.Hour - time.Second)
	if _, err := env.uc.MarkDefaulted(context.Background(), tLender, dto.LoanKey); !errors.Is(err, errs.ErrInvalidRange) {
		t.Fatalf("early default: %v", err)
	}

	// Exactly at due+grace it succeeds.
	env.advance(time.Second)
	out, err := env.uc.MarkDefaulted(context.Background(), tLender, dto.LoanKey)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if out.Status != string(agr.StatusDefaulted) {
		t.Fatalf("status=%s", out.Status)
	}

	full, _ := env.uc.Get(context.Background(), dto.LoanKey)
	if full.Schedule[0].Status != string(agr.InstallmentDefaulted) {
		t.Fatalf("installment status=%s", full.Schedule[0].Status)
	}

	// Terminal and unrecoverable.
	if _, err := env.uc.Pay(context.Background(), tBorrower, dto.LoanKey, 6559); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("pay after default: %v", err)
	}
}

func TestMarkDefaulted_CallerGuard(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)
	env.deposit(t, tLender, 75000)
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	env.advance(61 * 24 * time.Hour)

	if _, err := env.uc.MarkDefaulted(context.Background(), tBorrower, dto.LoanKey); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("borrower must not default the loan: %v", err)
	}
	// The operator may.
	if _, err := env.uc.MarkDefaulted(context.Background(), tOperator, dto.LoanKey); err != nil {
		t.Fatalf("operator default: %v", err)
	}
}

func TestCancel_OnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createLoan(t)

	if _, err := env.uc.Cancel(context.Background(), tMatcher, dto.LoanKey); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("matcher cannot cancel: %v", err)
	}
	out, err := env.uc.Cancel(context.Background(), tBorrower, dto.LoanKey)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.Status != string(agr.StatusCancelled) {
		t.Fatalf("status=%s", out.Status)
	}
	// No re-entry into the state machine.
	if _, err := env.uc.Fund(context.Background(), tLender, dto.LoanKey, 75000); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("fund after cancel: %v", err)
	}
	if _, err := env.uc.Cancel(context.Background(), tLender, dto.LoanKey); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("double cancel: %v", err)
	}
}
