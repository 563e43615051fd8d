package debt_test

import (
	"context"
	"database/sql"
	"testing"

	"go-crewpay/internal/debt"
	debterrors "go-crewpay/internal/debt/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeDebtRepository struct {
	withTxFn           func(tx *sql.Tx) debt.Repository
	createFn           func(ctx context.Context, instrument *debt.DebtInstrument) error
	findByIDFn         func(ctx context.Context, id string) (*debt.DebtInstrument, error)
	findByEmployeeFn   func(ctx context.Context, employeeID string) ([]debt.DebtInstrument, error)
	findByStatusFn     func(ctx context.Context, status string) ([]debt.DebtInstrument, error)
	applySettlementFn  func(ctx context.Context, id string, amount int64) (*debt.DebtInstrument, error)
	revertSettlementFn func(ctx context.Context, id string, amount int64) (*debt.DebtInstrument, error)
}

func (f *fakeDebtRepository) WithTx(tx *sql.Tx) debt.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeDebtRepository) Create(ctx context.Context, instrument *debt.DebtInstrument) error {
	if f.createFn != nil {
		return f.createFn(ctx, instrument)
	}
	return nil
}

func (f *fakeDebtRepository) FindByID(ctx context.Context, id string) (*debt.DebtInstrument, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDebtRepository) FindByEmployee(ctx context.Context, employeeID string) ([]debt.DebtInstrument, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeDebtRepository) FindByStatus(ctx context.Context, status string) ([]debt.DebtInstrument, error) {
	if f.findByStatusFn != nil {
		return f.findByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeDebtRepository) ApplySettlement(ctx context.Context, id string, amount int64) (*debt.DebtInstrument, error) {
	if f.applySettlementFn != nil {
		return f.applySettlementFn(ctx, id, amount)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDebtRepository) RevertSettlement(ctx context.Context, id string, amount int64) (*debt.DebtInstrument, error) {
	if f.revertSettlementFn != nil {
		return f.revertSettlementFn(ctx, id, amount)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeEmployeeDirectory struct {
	existsFn func(ctx context.Context, id string) (bool, error)
}

func (f *fakeEmployeeDirectory) Exists(ctx context.Context, id string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, id)
	}
	return true, nil
}

type debtServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   debt.Service
	repo      *fakeDebtRepository
	employees *fakeEmployeeDirectory
}

func setupDebtServiceTest(t *testing.T) *debtServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeDebtRepository{}
	employees := &fakeEmployeeDirectory{}
	svc := debt.NewService(db, repo, employees)

	return &debtServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, employees: employees}
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

func TestDebtService_Create(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, true)
	req := debt.CreateDebtRequest{
		EmployeeID:  employeeID,
		Kind:        debt.KindLoan,
		Amount:      150000,
		Date:        "2026-03-10",
		Description: "site equipment loan",
	}

	deps.repo.createFn = func(ctx context.Context, instrument *debt.DebtInstrument) error {
		assert.Equal(t, employeeID, instrument.EmployeeID.String())
		assert.Equal(t, int64(0), instrument.PaidAmount)
		assert.Equal(t, debt.StatusPending, instrument.Status)
		return nil
	}

	resp, err := deps.service.Create(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, debt.StatusPending, resp.Status)
	assert.Equal(t, int64(150000), resp.Amount)
	assert.Equal(t, "2026-03-10", resp.Date)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestDebtService_Create_EmployeeMissing(t *testing.T) {
	ctx := context.Background()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.employees.existsFn = func(ctx context.Context, id string) (bool, error) {
		return false, nil
	}

	_, err := deps.service.Create(ctx, debt.CreateDebtRequest{
		EmployeeID: uuid.New().String(),
		Kind:       debt.KindAdvance,
		Amount:     1000,
		Date:       "2026-03-10",
	})

	assert.ErrorIs(t, err, debterrors.ErrEmployeeNotFound)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestDebtService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	cases := []struct {
		name string
		req  debt.CreateDebtRequest
		want error
	}{
		{
			name: "non positive amount",
			req:  debt.CreateDebtRequest{EmployeeID: employeeID, Kind: debt.KindLoan, Amount: 0, Date: "2026-03-10"},
			want: debterrors.ErrInvalidAmount,
		},
		{
			name: "unknown kind",
			req:  debt.CreateDebtRequest{EmployeeID: employeeID, Kind: "MORTGAGE", Amount: 100, Date: "2026-03-10"},
			want: debterrors.ErrInvalidKind,
		},
		{
			name: "bad date",
			req:  debt.CreateDebtRequest{EmployeeID: employeeID, Kind: debt.KindLoan, Amount: 100, Date: "10/03/2026"},
			want: debterrors.ErrInvalidDateFormat,
		},
		{
			name: "bad employee id",
			req:  debt.CreateDebtRequest{EmployeeID: "not-a-uuid", Kind: debt.KindLoan, Amount: 100, Date: "2026-03-10"},
			want: debterrors.ErrInvalidInstrumentID,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := setupDebtServiceTest(t)
			defer deps.db.Close()

			expectTx(t, deps.sqlMock, false)
			_, err := deps.service.Create(ctx, tc.req)

			assert.ErrorIs(t, err, tc.want)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestDebtService_ApplySettlement(t *testing.T) {
	ctx := context.Background()
	instrumentID := uuid.New().String()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	deps.repo.applySettlementFn = func(ctx context.Context, id string, amount int64) (*debt.DebtInstrument, error) {
		assert.Equal(t, instrumentID, id)
		assert.Equal(t, int64(400), amount)
		return &debt.DebtInstrument{
			ID:         uuid.MustParse(instrumentID),
			EmployeeID: uuid.New(),
			Kind:       debt.KindLoan,
			Amount:     1000,
			PaidAmount: 400,
			Status:     debt.StatusPartial,
		}, nil
	}

	resp, err := deps.service.ApplySettlement(ctx, instrumentID, 400)

	assert.NoError(t, err)
	assert.Equal(t, int64(400), resp.PaidAmount)
	assert.Equal(t, debt.StatusPartial, resp.Status)
}

func TestDebtService_ApplySettlement_NotFound(t *testing.T) {
	ctx := context.Background()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	deps.repo.applySettlementFn = func(ctx context.Context, id string, amount int64) (*debt.DebtInstrument, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err := deps.service.ApplySettlement(ctx, uuid.New().String(), 100)

	assert.ErrorIs(t, err, debterrors.ErrInstrumentNotFound)
}

func TestDebtService_Settle_InvalidInput(t *testing.T) {
	ctx := context.Background()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.ApplySettlement(ctx, "not-a-uuid", 100)
	assert.ErrorIs(t, err, debterrors.ErrInvalidInstrumentID)

	_, err = deps.service.RevertSettlement(ctx, uuid.New().String(), 0)
	assert.ErrorIs(t, err, debterrors.ErrInvalidAmount)
}

func TestDebtService_List_Summary(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) ([]debt.DebtInstrument, error) {
		assert.Equal(t, employeeID, eid)
		return []debt.DebtInstrument{
			{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), Kind: debt.KindLoan, Amount: 5000, Status: debt.StatusPending},
			{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), Kind: debt.KindAdvance, Amount: 1500, PaidAmount: 1500, Status: debt.StatusCompleted},
		}, nil
	}

	resp, summary, err := deps.service.List(ctx, debt.DebtListFilterRequest{EmployeeID: employeeID})

	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, int64(6500), summary.TotalAmount)
	assert.Equal(t, 2, summary.Count)
}

func TestDebtService_List_RequiresFilter(t *testing.T) {
	ctx := context.Background()

	deps := setupDebtServiceTest(t)
	defer deps.db.Close()

	_, _, err := deps.service.List(ctx, debt.DebtListFilterRequest{})

	assert.ErrorIs(t, err, debterrors.ErrMissingListFilter)
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		amount int64
		paid   int64
		want   string
	}{
		{1000, 0, debt.StatusPending},
		{1000, -50, debt.StatusPending},
		{1000, 1, debt.StatusPartial},
		{1000, 999, debt.StatusPartial},
		{1000, 1000, debt.StatusCompleted},
		{1000, 1500, debt.StatusCompleted},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, debt.DeriveStatus(tc.amount, tc.paid))
	}
}
