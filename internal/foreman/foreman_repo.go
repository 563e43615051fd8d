package foreman

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=foreman_repo.go -destination=mock/foreman_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, ledger *ForemanLedger) error
	FindByID(ctx context.Context, id string) (*ForemanLedger, error)
	FindAll(ctx context.Context) ([]ForemanLedger, error)
	Delete(ctx context.Context, id string) error
	ExistsByPair(ctx context.Context, foremanID, projectID string) (bool, error)

	AppendCashAdvance(ctx context.Context, advance *CashAdvance) error
	DeleteCashAdvance(ctx context.Context, ledgerID, entryID string) error
	AppendInvoiceLine(ctx context.Context, line *InvoiceLine) error
	DeleteInvoiceLine(ctx context.Context, ledgerID, entryID string) error
	FindInvoiceLine(ctx context.Context, ledgerID, lineID string) (*InvoiceLine, error)

	RecomputeSummary(ctx context.Context, ledgerID string, expectedVersion int64) error
}

// ErrStaleVersion is returned by RecomputeSummary when another writer bumped
// the ledger version between the read and the recompute.
var ErrStaleVersion = errors.New("foreman ledger version is stale")

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

func (r *repository) Create(ctx context.Context, ledger *ForemanLedger) error {
	return r.db.WithContext(ctx).Create(ledger).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*ForemanLedger, error) {
	var ledger ForemanLedger
	err := r.db.WithContext(ctx).
		Preload("CashAdvances", func(db *gorm.DB) *gorm.DB {
			return db.Order("cash_advances.date ASC, cash_advances.created_at ASC")
		}).
		Preload("InvoiceLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_lines.date ASC, invoice_lines.created_at ASC")
		}).
		First(&ledger, "id = ?", id).Error
	return &ledger, err
}

func (r *repository) FindAll(ctx context.Context) ([]ForemanLedger, error) {
	var ledgers []ForemanLedger
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&ledgers).Error
	return ledgers, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Select("CashAdvances", "InvoiceLines").
		Delete(&ForemanLedger{}, "id = ?", id).Error
}

func (r *repository) ExistsByPair(ctx context.Context, foremanID, projectID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ForemanLedger{}).
		Where("foreman_id = ? AND project_id = ?", foremanID, projectID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) AppendCashAdvance(ctx context.Context, advance *CashAdvance) error {
	return r.db.WithContext(ctx).Create(advance).Error
}

func (r *repository) DeleteCashAdvance(ctx context.Context, ledgerID, entryID string) error {
	res := r.db.WithContext(ctx).
		Delete(&CashAdvance{}, "id = ? AND ledger_id = ?", entryID, ledgerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AppendInvoiceLine(ctx context.Context, line *InvoiceLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) DeleteInvoiceLine(ctx context.Context, ledgerID, entryID string) error {
	res := r.db.WithContext(ctx).
		Delete(&InvoiceLine{}, "id = ? AND ledger_id = ?", entryID, ledgerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindInvoiceLine(ctx context.Context, ledgerID, lineID string) (*InvoiceLine, error) {
	var line InvoiceLine
	err := r.db.WithContext(ctx).
		First(&line, "id = ? AND ledger_id = ?", lineID, ledgerID).Error
	return &line, err
}

// RecomputeSummary derives the three totals from the entry tables in one
// statement, guarded by the ledger version read before the mutation.
func (r *repository) RecomputeSummary(ctx context.Context, ledgerID string, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE foreman_ledgers SET
			total_sent = agg.sent,
			total_invoiced = agg.invoiced,
			remaining_balance = agg.sent - agg.invoiced,
			version = version + 1,
			updated_at = now()
		FROM (
			SELECT
				COALESCE((SELECT SUM(amount) FROM cash_advances WHERE ledger_id = ?), 0) AS sent,
				COALESCE((SELECT SUM(amount) FROM invoice_lines WHERE ledger_id = ?), 0) AS invoiced
		) AS agg
		WHERE foreman_ledgers.id = ? AND foreman_ledgers.version = ?`,
		ledgerID, ledgerID, ledgerID, expectedVersion,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}
