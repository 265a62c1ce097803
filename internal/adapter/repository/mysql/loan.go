package mysql

import (
	"context"

	agr "peerfund-core/internal/domain/agreement"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *agr.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *agr.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByKey(ctx context.Context, loanKey string) (*agr.Loan, error) {
	var out agr.Loan
	res := r.db.WithContext(ctx).Where("loan_key = ?", loanKey).First(&out)
	return &out, res.Error
}

// GetByKeyForUpdate locks the loan row up-front so state transitions and
// the fund transfers tied to them serialize per loan.
func (r *LoanRepository) GetByKeyForUpdate(ctx context.Context, loanKey string) (*agr.Loan, error) {
	var out agr.Loan
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("loan_key = ?", loanKey).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) CreateInstallments(ctx context.Context, rows []agr.Installment) error {
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *LoanRepository) SaveInstallment(ctx context.Context, row *agr.Installment) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *LoanRepository) ListInstallments(ctx context.Context, loanKey string) ([]agr.Installment, error) {
	var out []agr.Installment
	res := r.db.WithContext(ctx).
		Where("loan_key = ?", loanKey).
		Order("idx ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) GetInstallment(ctx context.Context, loanKey string, idx int) (*agr.Installment, error) {
	var out agr.Installment
	res := r.db.WithContext(ctx).
		Where("loan_key = ? AND idx = ?", loanKey, idx).
		First(&out)
	return &out, res.Error
}
