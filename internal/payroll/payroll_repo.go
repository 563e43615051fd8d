package payroll

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, period *PayrollPeriod) error
	FindByID(ctx context.Context, id string) (*PayrollPeriod, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]PayrollPeriod, error)
	UpdateStatus(ctx context.Context, id string, status string, paidDate *time.Time) error
	Delete(ctx context.Context, id string) error
	HasOverlappingPeriod(ctx context.Context, employeeID string, fromDate, toDate time.Time, excludePeriodID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollPeriod, error) {
	var period PayrollPeriod
	err := r.db.WithContext(ctx).
		Preload("ManualExpenses").
		Preload("LinkedDeductions").
		First(&period, "id = ?", id).Error
	return &period, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]PayrollPeriod, error) {
	var periods []PayrollPeriod
	err := r.db.WithContext(ctx).
		Preload("ManualExpenses").
		Preload("LinkedDeductions").
		Where("employee_id = ?", employeeID).
		Order("from_date DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status string, paidDate *time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&PayrollPeriod{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"paid_date":  paidDate,
			"updated_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Select("ManualExpenses", "LinkedDeductions").
		Delete(&PayrollPeriod{}, "id = ?", id).Error
}

// RangesOverlap is the closed-interval test: two date ranges overlap unless
// one ends strictly before the other starts. Ranges sharing a boundary date
// overlap; a range starting the day after another ends does not.
func RangesOverlap(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !(aTo.Before(bFrom) || aFrom.After(bTo))
}

// HasOverlappingPeriod loads the employee's periods and evaluates
// RangesOverlap against each, so the predicate has a single definition.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, fromDate, toDate time.Time, excludePeriodID *string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&PayrollPeriod{}).
		Select("id", "from_date", "to_date").
		Where("employee_id = ?", employeeID)

	if excludePeriodID != nil {
		query = query.Where("id <> ?", *excludePeriodID)
	}

	var existing []PayrollPeriod
	if err := query.Find(&existing).Error; err != nil {
		return false, err
	}
	for _, p := range existing {
		if RangesOverlap(p.FromDate, p.ToDate, fromDate, toDate) {
			return true, nil
		}
	}
	return false, nil
}
