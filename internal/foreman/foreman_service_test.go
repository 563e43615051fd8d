package foreman_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"go-crewpay/internal/foreman"
	foremanerrors "go-crewpay/internal/foreman/errors"
	"go-crewpay/internal/messaging/kafka"
	"go-crewpay/internal/project"
	countermock "go-crewpay/internal/shared/counter/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// fakeLedgerStore is a stateful in-memory Repository so the derived totals
// and version bumps behave like the real SQL recompute.
type fakeLedgerStore struct {
	mu       sync.Mutex
	ledgers  map[string]*foreman.ForemanLedger
	advances map[string][]foreman.CashAdvance
	invoices map[string][]foreman.InvoiceLine

	// bumpVersionOnAppend simulates a concurrent writer landing between
	// the service's read and its summary recompute.
	bumpVersionOnAppend bool
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		ledgers:  map[string]*foreman.ForemanLedger{},
		advances: map[string][]foreman.CashAdvance{},
		invoices: map[string][]foreman.InvoiceLine{},
	}
}

func (f *fakeLedgerStore) WithTx(tx *sql.Tx) foreman.Repository { return f }

func (f *fakeLedgerStore) Create(ctx context.Context, ledger *foreman.ForemanLedger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *ledger
	f.ledgers[ledger.ID.String()] = &copied
	return nil
}

func (f *fakeLedgerStore) FindByID(ctx context.Context, id string) (*foreman.ForemanLedger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, ok := f.ledgers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ledger
	copied.CashAdvances = append([]foreman.CashAdvance(nil), f.advances[id]...)
	copied.InvoiceLines = append([]foreman.InvoiceLine(nil), f.invoices[id]...)
	return &copied, nil
}

func (f *fakeLedgerStore) FindAll(ctx context.Context) ([]foreman.ForemanLedger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []foreman.ForemanLedger
	for _, ledger := range f.ledgers {
		out = append(out, *ledger)
	}
	return out, nil
}

func (f *fakeLedgerStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ledgers, id)
	delete(f.advances, id)
	delete(f.invoices, id)
	return nil
}

func (f *fakeLedgerStore) ExistsByPair(ctx context.Context, foremanID, projectID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ledger := range f.ledgers {
		if ledger.ForemanID.String() == foremanID && ledger.ProjectID.String() == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedgerStore) AppendCashAdvance(ctx context.Context, advance *foreman.CashAdvance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := advance.LedgerID.String()
	f.advances[key] = append(f.advances[key], *advance)
	if f.bumpVersionOnAppend {
		f.ledgers[key].Version++
	}
	return nil
}

func (f *fakeLedgerStore) DeleteCashAdvance(ctx context.Context, ledgerID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.advances[ledgerID]
	for i, entry := range entries {
		if entry.ID.String() == entryID {
			f.advances[ledgerID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLedgerStore) AppendInvoiceLine(ctx context.Context, line *foreman.InvoiceLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := line.LedgerID.String()
	f.invoices[key] = append(f.invoices[key], *line)
	return nil
}

func (f *fakeLedgerStore) DeleteInvoiceLine(ctx context.Context, ledgerID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.invoices[ledgerID]
	for i, line := range lines {
		if line.ID.String() == entryID {
			f.invoices[ledgerID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLedgerStore) FindInvoiceLine(ctx context.Context, ledgerID, lineID string) (*foreman.InvoiceLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range f.invoices[ledgerID] {
		if line.ID.String() == lineID {
			copied := line
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerStore) RecomputeSummary(ctx context.Context, ledgerID string, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, ok := f.ledgers[ledgerID]
	if !ok || ledger.Version != expectedVersion {
		return foreman.ErrStaleVersion
	}
	var sent, invoiced int64
	for _, advance := range f.advances[ledgerID] {
		sent += advance.Amount
	}
	for _, line := range f.invoices[ledgerID] {
		invoiced += line.Amount
	}
	ledger.TotalSent = sent
	ledger.TotalInvoiced = invoiced
	ledger.RemainingBalance = sent - invoiced
	ledger.Version++
	return nil
}

// fakeCostStore implements the project cost mirror target.
type fakeCostStore struct {
	mu        sync.Mutex
	costs     map[string]project.ProjectCost
	appendErr error
	removeErr error
}

func newFakeCostStore() *fakeCostStore {
	return &fakeCostStore{costs: map[string]project.ProjectCost{}}
}

func (f *fakeCostStore) AppendCost(ctx context.Context, cost *project.ProjectCost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.costs[*cost.SourceRef] = *cost
	return nil
}

func (f *fakeCostStore) FindCostBySourceRef(ctx context.Context, sourceRef string) (*project.ProjectCost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cost, ok := f.costs[sourceRef]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &cost, nil
}

func (f *fakeCostStore) RemoveCostBySourceRef(ctx context.Context, sourceRef string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return 0, f.removeErr
	}
	if _, ok := f.costs[sourceRef]; !ok {
		return 0, nil
	}
	delete(f.costs, sourceRef)
	return 1, nil
}

func (f *fakeCostStore) FindCostsByProject(ctx context.Context, projectID string) ([]project.ProjectCost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []project.ProjectCost
	for _, cost := range f.costs {
		if cost.ProjectID.String() == projectID {
			out = append(out, cost)
		}
	}
	return out, nil
}

type fakeOutboxRepository struct {
	mu     sync.Mutex
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type foremanServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  foreman.Service
	store    *fakeLedgerStore
	costs    *fakeCostStore
	outbox   *fakeOutboxRepository
	counters *countermock.MockRepository
}

func setupForemanServiceTest(t *testing.T) *foremanServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	ctrl := gomock.NewController(t)
	store := newFakeLedgerStore()
	costs := newFakeCostStore()
	outbox := &fakeOutboxRepository{}
	counters := countermock.NewMockRepository(ctrl)
	counters.EXPECT().
		GetNextValue(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(int64(1), nil).
		AnyTimes()

	svc := foreman.NewService(db, store, costs, outbox, counters)

	return &foremanServiceDeps{
		db: db, sqlMock: sqlMock, service: svc,
		store: store, costs: costs, outbox: outbox, counters: counters,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func assignLedger(t *testing.T, deps *foremanServiceDeps) foreman.LedgerResponse {
	t.Helper()
	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.Assign(context.Background(), foreman.AssignForemanRequest{
		ForemanID:   uuid.New().String(),
		ForemanName: "R. Okafor",
		ProjectID:   uuid.New().String(),
		ProjectName: "Highway 7 Extension",
	})
	assert.NoError(t, err)
	return resp
}

func TestForemanService_Assign_DuplicatePair(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	first := assignLedger(t, deps)

	_, err := deps.service.Assign(ctx, foreman.AssignForemanRequest{
		ForemanID:   first.ForemanID,
		ForemanName: "R. Okafor",
		ProjectID:   first.ProjectID,
		ProjectName: "Highway 7 Extension",
	})

	assert.ErrorIs(t, err, foremanerrors.ErrDuplicateAssignment)
}

func TestForemanService_CashAndInvoiceTotals(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)

	resp, err := deps.service.AddCashAdvance(ctx, ledger.ID, foreman.CashAdvanceRequest{
		Amount: 5000,
		Mode:   "transfer",
		Date:   "2026-03-05",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), resp.TotalSent)
	assert.Equal(t, int64(5000), resp.RemainingBalance)

	expectTx(t, deps.sqlMock, true)
	resp, err = deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
		Amount:   2000,
		Category: "materials",
		Date:     "2026-03-12",
	})
	assert.NoError(t, err)
	assert.Empty(t, resp.Warnings)
	assert.Equal(t, int64(5000), resp.TotalSent)
	assert.Equal(t, int64(2000), resp.TotalInvoiced)
	assert.Equal(t, int64(3000), resp.RemainingBalance)

	// The mirrored cost entry carries the line id as back-reference.
	lineID := resp.InvoiceLines[0].ID
	cost, err := deps.costs.FindCostBySourceRef(ctx, lineID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), cost.Amount)
	assert.Equal(t, ledger.ProjectID, cost.ProjectID.String())
	assert.Len(t, deps.outbox.events, 1)

	// Deleting the invoice line removes the mirror and restores the summary.
	resp, err = deps.service.DeleteInvoiceLine(ctx, ledger.ID, lineID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), resp.TotalInvoiced)
	assert.Equal(t, int64(5000), resp.RemainingBalance)

	_, err = deps.costs.FindCostBySourceRef(ctx, lineID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestForemanService_AddInvoiceLine_MirrorFailureIsWarning(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)
	deps.costs.appendErr = errors.New("project registry down")

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
		Amount: 2000,
		Date:   "2026-03-12",
	})

	// The ledger write stands; only the mirror is reported as pending.
	assert.NoError(t, err)
	assert.Len(t, resp.Warnings, 1)
	assert.Equal(t, int64(2000), resp.TotalInvoiced)
	assert.Len(t, resp.InvoiceLines, 1)
	assert.Len(t, deps.outbox.events, 1)
}

func TestForemanService_DeleteInvoiceLine_MirrorRemovalFailureAborts(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)
	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
		Amount: 2000,
		Date:   "2026-03-12",
	})
	assert.NoError(t, err)
	lineID := resp.InvoiceLines[0].ID

	deps.costs.removeErr = errors.New("project registry down")
	_, err = deps.service.DeleteInvoiceLine(ctx, ledger.ID, lineID)

	assert.ErrorIs(t, err, foremanerrors.ErrMirrorRemovalFailed)
	// Ledger line is untouched when the mirror removal fails.
	current, err := deps.service.GetByID(ctx, ledger.ID)
	assert.NoError(t, err)
	assert.Len(t, current.InvoiceLines, 1)
}

func TestForemanService_DeleteInvoiceLine_AbsentMirrorCountsAsRemoved(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)
	deps.costs.appendErr = errors.New("project registry down")

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
		Amount: 2000,
		Date:   "2026-03-12",
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Warnings, 1)
	lineID := resp.InvoiceLines[0].ID

	deps.costs.appendErr = nil
	resp, err = deps.service.DeleteInvoiceLine(ctx, ledger.ID, lineID)

	assert.NoError(t, err)
	assert.Empty(t, resp.InvoiceLines)
	assert.Equal(t, int64(0), resp.TotalInvoiced)
}

func TestForemanService_EnsureInvoiceMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs a lost mirror", func(t *testing.T) {
		deps := setupForemanServiceTest(t)
		defer deps.db.Close()

		ledger := assignLedger(t, deps)
		deps.costs.appendErr = errors.New("project registry down")
		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
			Amount: 2000,
			Date:   "2026-03-12",
		})
		assert.NoError(t, err)
		lineID := resp.InvoiceLines[0].ID

		deps.costs.appendErr = nil
		repaired, err := deps.service.EnsureInvoiceMirror(ctx, ledger.ID, lineID)

		assert.NoError(t, err)
		assert.True(t, repaired)
		cost, err := deps.costs.FindCostBySourceRef(ctx, lineID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2000), cost.Amount)
	})

	t.Run("existing mirror is a no-op", func(t *testing.T) {
		deps := setupForemanServiceTest(t)
		defer deps.db.Close()

		ledger := assignLedger(t, deps)
		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
			Amount: 2000,
			Date:   "2026-03-12",
		})
		assert.NoError(t, err)
		lineID := resp.InvoiceLines[0].ID

		repaired, err := deps.service.EnsureInvoiceMirror(ctx, ledger.ID, lineID)

		assert.NoError(t, err)
		assert.False(t, repaired)
	})

	t.Run("deleted line needs no repair", func(t *testing.T) {
		deps := setupForemanServiceTest(t)
		defer deps.db.Close()

		ledger := assignLedger(t, deps)
		repaired, err := deps.service.EnsureInvoiceMirror(ctx, ledger.ID, uuid.New().String())

		assert.NoError(t, err)
		assert.False(t, repaired)
	})
}

func TestForemanService_Unassign_KeepsMirroredCosts(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)
	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.AddInvoiceLine(ctx, ledger.ID, foreman.InvoiceLineRequest{
		Amount: 2000,
		Date:   "2026-03-12",
	})
	assert.NoError(t, err)
	lineID := resp.InvoiceLines[0].ID

	err = deps.service.Unassign(ctx, ledger.ID)
	assert.NoError(t, err)

	_, err = deps.service.GetByID(ctx, ledger.ID)
	assert.ErrorIs(t, err, foremanerrors.ErrLedgerNotFound)

	// Posted cost history is immutable once mirrored.
	cost, err := deps.costs.FindCostBySourceRef(ctx, lineID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), cost.Amount)
}

func TestForemanService_StaleVersionConflict(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)
	deps.store.bumpVersionOnAppend = true

	_, err := deps.service.AddCashAdvance(ctx, ledger.ID, foreman.CashAdvanceRequest{
		Amount: 5000,
		Mode:   "cash",
		Date:   "2026-03-05",
	})

	assert.ErrorIs(t, err, foremanerrors.ErrLedgerConflict)
}

func TestForemanService_AddCashAdvance_BadDate(t *testing.T) {
	ctx := context.Background()

	deps := setupForemanServiceTest(t)
	defer deps.db.Close()

	ledger := assignLedger(t, deps)

	_, err := deps.service.AddCashAdvance(ctx, ledger.ID, foreman.CashAdvanceRequest{
		Amount: 5000,
		Mode:   "cash",
		Date:   "05/03/2026",
	})

	assert.ErrorIs(t, err, foremanerrors.ErrInvalidDateFormat)
}
