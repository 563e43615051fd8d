package batch

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=batch_repo.go -destination=mock/batch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *PayrollBatch) error
	FindByID(ctx context.Context, id string) (*PayrollBatch, error)
	FindAll(ctx context.Context) ([]PayrollBatch, error)
	Update(ctx context.Context, b *PayrollBatch) error
	ReplaceEntries(ctx context.Context, batchID string, entries []PayrollBatchEntry) error
	Delete(ctx context.Context, id string) error
	ExistsByTriple(ctx context.Context, projectID, foremanID string, periodDate time.Time, excludeBatchID *string) (bool, error)
	SetEntryStatus(ctx context.Context, batchID, employeeID, status string) error
	FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]PayrollBatch, error)
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

func (r *repository) Create(ctx context.Context, b *PayrollBatch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollBatch, error) {
	var b PayrollBatch
	err := r.db.WithContext(ctx).
		Preload("Entries").
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *repository) FindAll(ctx context.Context) ([]PayrollBatch, error) {
	var batches []PayrollBatch
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Order("period_date DESC").
		Find(&batches).Error
	return batches, err
}

func (r *repository) Update(ctx context.Context, b *PayrollBatch) error {
	return r.db.WithContext(ctx).
		Model(&PayrollBatch{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"project_id":   b.ProjectID,
			"project_name": b.ProjectName,
			"foreman_id":   b.ForemanID,
			"foreman_name": b.ForemanName,
			"period_date":  b.PeriodDate,
			"updated_at":   gorm.Expr("now()"),
		}).Error
}

// ReplaceEntries swaps the whole entry list. Callers are responsible for
// carrying forward the stored status of retained employees.
func (r *repository) ReplaceEntries(ctx context.Context, batchID string, entries []PayrollBatchEntry) error {
	if err := r.db.WithContext(ctx).
		Delete(&PayrollBatchEntry{}, "batch_id = ?", batchID).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Select("Entries").
		Delete(&PayrollBatch{}, "id = ?", id).Error
}

func (r *repository) ExistsByTriple(ctx context.Context, projectID, foremanID string, periodDate time.Time, excludeBatchID *string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&PayrollBatch{}).
		Where("project_id = ? AND foreman_id = ? AND period_date = ?", projectID, foremanID, periodDate)

	if excludeBatchID != nil {
		query = query.Where("id <> ?", *excludeBatchID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SetEntryStatus(ctx context.Context, batchID, employeeID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&PayrollBatchEntry{}).
		Where("batch_id = ? AND employee_id = ?", batchID, employeeID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]PayrollBatch, error) {
	query := r.db.WithContext(ctx).
		Preload("Entries").
		Joins("JOIN payroll_batch_entries ON payroll_batch_entries.batch_id = payroll_batches.id").
		Where("payroll_batch_entries.employee_id = ?", employeeID)

	if from != nil {
		query = query.Where("payroll_batches.period_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("payroll_batches.period_date <= ?", *to)
	}

	var batches []PayrollBatch
	err := query.
		Order("payroll_batches.period_date ASC").
		Find(&batches).Error
	return batches, err
}
