package agreement

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByKey(ctx context.Context, loanKey string) (*Loan, error)
	GetByKeyForUpdate(ctx context.Context, loanKey string) (*Loan, error)

	CreateInstallments(ctx context.Context, rows []Installment) error
	SaveInstallment(ctx context.Context, row *Installment) error
	ListInstallments(ctx context.Context, loanKey string) ([]Installment, error)
	GetInstallment(ctx context.Context, loanKey string, idx int) (*Installment, error)
}
