package debt

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=debt_repo.go -destination=mock/debt_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, instrument *DebtInstrument) error
	FindByID(ctx context.Context, id string) (*DebtInstrument, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]DebtInstrument, error)
	FindByStatus(ctx context.Context, status string) ([]DebtInstrument, error)
	ApplySettlement(ctx context.Context, id string, amount int64) (*DebtInstrument, error)
	RevertSettlement(ctx context.Context, id string, amount int64) (*DebtInstrument, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) Create(ctx context.Context, instrument *DebtInstrument) error {
	return r.db.WithContext(ctx).Create(instrument).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*DebtInstrument, error) {
	var instrument DebtInstrument
	err := r.db.WithContext(ctx).
		First(&instrument, "id = ?", id).Error
	return &instrument, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]DebtInstrument, error) {
	var instruments []DebtInstrument
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("date DESC").
		Find(&instruments).Error
	return instruments, err
}

func (r *repository) FindByStatus(ctx context.Context, status string) ([]DebtInstrument, error) {
	var instruments []DebtInstrument
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("date DESC").
		Find(&instruments).Error
	return instruments, err
}

// ApplySettlement adds to paid_amount and recomputes status in one UPDATE so
// concurrent settlements cannot lose each other's increment. The result is
// deliberately not clamped at the instrument amount. The CASE expression is
// the SQL form of DeriveStatus; keep the two in step.
func (r *repository) ApplySettlement(ctx context.Context, id string, amount int64) (*DebtInstrument, error) {
	res := r.db.WithContext(ctx).
		Model(&DebtInstrument{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"paid_amount": gorm.Expr("paid_amount + ?", amount),
			"status": gorm.Expr(
				"CASE WHEN paid_amount + ? >= amount THEN ? WHEN paid_amount + ? > 0 THEN ? ELSE ? END",
				amount, StatusCompleted, amount, StatusPartial, StatusPending,
			),
			"updated_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

// RevertSettlement subtracts from paid_amount, clamped at zero.
func (r *repository) RevertSettlement(ctx context.Context, id string, amount int64) (*DebtInstrument, error) {
	res := r.db.WithContext(ctx).
		Model(&DebtInstrument{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"paid_amount": gorm.Expr("GREATEST(paid_amount - ?, 0)", amount),
			"status": gorm.Expr(
				"CASE WHEN GREATEST(paid_amount - ?, 0) >= amount THEN ? WHEN GREATEST(paid_amount - ?, 0) > 0 THEN ? ELSE ? END",
				amount, StatusCompleted, amount, StatusPartial, StatusPending,
			),
			"updated_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}
