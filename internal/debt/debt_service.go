package debt

import (
	"context"
	"database/sql"
	"errors"
	"time"

	debterrors "go-crewpay/internal/debt/errors"
	"go-crewpay/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusPartial   = "PARTIAL"
	StatusCompleted = "COMPLETED"

	KindLoan          = "LOAN"
	KindReimbursement = "REIMBURSEMENT"
	KindAdvance       = "ADVANCE"
	KindOther         = "OTHER"

	DirectionApply  = "apply"
	DirectionRevert = "revert"
)

// EmployeeDirectory is the read-only slice of the employee module this ledger
// needs: existence checks before a debt is opened against someone.
type EmployeeDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

//go:generate mockgen -source=debt_service.go -destination=mock/debt_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateDebtRequest) (DebtInstrumentResponse, error)
	GetByID(ctx context.Context, id string) (DebtInstrumentResponse, error)
	List(ctx context.Context, filter DebtListFilterRequest) ([]DebtInstrumentResponse, response.SummaryMeta, error)
	ApplySettlement(ctx context.Context, instrumentID string, amount int64) (DebtInstrumentResponse, error)
	RevertSettlement(ctx context.Context, instrumentID string, amount int64) (DebtInstrumentResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees EmployeeDirectory
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, employees EmployeeDirectory, logger ...*zap.Logger) Service {
	l := zap.L().Named("debt.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("debt.service")
	}
	return &service{db: db, repo: repo, employees: employees, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateDebtRequest) (DebtInstrumentResponse, error) {
	s.logger.Debug("create debt instrument requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("kind", req.Kind),
		zap.Int64("amount", req.Amount),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create debt instrument begin tx failed", zap.Error(err))
		return DebtInstrumentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	employeeUUID, date, err := validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("create debt instrument validation failed", zap.Error(err))
		return DebtInstrumentResponse{}, err
	}

	exists, err := s.employees.Exists(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create debt instrument employee check failed", zap.Error(err))
		return DebtInstrumentResponse{}, err
	}
	if !exists {
		return DebtInstrumentResponse{}, debterrors.ErrEmployeeNotFound
	}

	instrument := &DebtInstrument{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		PaidAmount:  0,
		Status:      DeriveStatus(req.Amount, 0),
	}

	if err := qtx.Create(ctx, instrument); err != nil {
		s.logger.Error("create debt instrument persist failed", zap.Error(err))
		return DebtInstrumentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create debt instrument commit failed", zap.Error(err))
		return DebtInstrumentResponse{}, err
	}
	s.logger.Info("create debt instrument success",
		zap.String("instrument_id", instrument.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("kind", req.Kind),
	)

	return mapToResponse(*instrument), nil
}

func (s *service) GetByID(ctx context.Context, id string) (DebtInstrumentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DebtInstrumentResponse{}, debterrors.ErrInvalidInstrumentID
	}

	instrument, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DebtInstrumentResponse{}, debterrors.ErrInstrumentNotFound
		}
		return DebtInstrumentResponse{}, err
	}
	return mapToResponse(*instrument), nil
}

// List returns the filtered instruments with the aggregate summary line
// (sum of instrument amounts and count) used by the reporting screens.
func (s *service) List(ctx context.Context, filter DebtListFilterRequest) ([]DebtInstrumentResponse, response.SummaryMeta, error) {
	var (
		instruments []DebtInstrument
		err         error
	)

	switch {
	case filter.EmployeeID != "":
		instruments, err = s.repo.FindByEmployee(ctx, filter.EmployeeID)
	case filter.Status != "":
		instruments, err = s.repo.FindByStatus(ctx, filter.Status)
	default:
		return nil, response.SummaryMeta{}, debterrors.ErrMissingListFilter
	}
	if err != nil {
		return nil, response.SummaryMeta{}, err
	}

	summary := response.SummaryMeta{Count: len(instruments)}
	resp := make([]DebtInstrumentResponse, len(instruments))
	for i, instrument := range instruments {
		summary.TotalAmount += instrument.Amount
		resp[i] = mapToResponse(instrument)
	}
	return resp, summary, nil
}

func (s *service) ApplySettlement(ctx context.Context, instrumentID string, amount int64) (DebtInstrumentResponse, error) {
	return s.settle(ctx, instrumentID, amount, DirectionApply)
}

func (s *service) RevertSettlement(ctx context.Context, instrumentID string, amount int64) (DebtInstrumentResponse, error) {
	return s.settle(ctx, instrumentID, amount, DirectionRevert)
}

// settle is the only write path that touches paidAmount. The repository does
// the increment and status recompute atomically, so there is no
// read-modify-write window here.
func (s *service) settle(ctx context.Context, instrumentID string, amount int64, direction string) (DebtInstrumentResponse, error) {
	if _, err := uuid.Parse(instrumentID); err != nil {
		return DebtInstrumentResponse{}, debterrors.ErrInvalidInstrumentID
	}
	if amount <= 0 {
		return DebtInstrumentResponse{}, debterrors.ErrInvalidAmount
	}

	var (
		instrument *DebtInstrument
		err        error
	)
	switch direction {
	case DirectionApply:
		instrument, err = s.repo.ApplySettlement(ctx, instrumentID, amount)
	case DirectionRevert:
		instrument, err = s.repo.RevertSettlement(ctx, instrumentID, amount)
	default:
		return DebtInstrumentResponse{}, debterrors.ErrInvalidDirection
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("settle debt instrument not found",
				zap.String("instrument_id", instrumentID),
				zap.String("direction", direction),
			)
			return DebtInstrumentResponse{}, debterrors.ErrInstrumentNotFound
		}
		s.logger.Error("settle debt instrument failed",
			zap.String("instrument_id", instrumentID),
			zap.String("direction", direction),
			zap.Error(err),
		)
		return DebtInstrumentResponse{}, err
	}

	s.logger.Info("settle debt instrument success",
		zap.String("instrument_id", instrumentID),
		zap.String("direction", direction),
		zap.Int64("amount", amount),
		zap.Int64("paid_amount", instrument.PaidAmount),
		zap.String("status", instrument.Status),
	)
	return mapToResponse(*instrument), nil
}

func validateCreateRequest(req CreateDebtRequest) (uuid.UUID, time.Time, error) {
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return uuid.Nil, time.Time{}, debterrors.ErrInvalidInstrumentID
	}
	if req.Amount <= 0 {
		return uuid.Nil, time.Time{}, debterrors.ErrInvalidAmount
	}
	switch req.Kind {
	case KindLoan, KindReimbursement, KindAdvance, KindOther:
	default:
		return uuid.Nil, time.Time{}, debterrors.ErrInvalidKind
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return uuid.Nil, time.Time{}, debterrors.ErrInvalidDateFormat
	}
	return employeeUUID, date, nil
}

func mapToResponse(instrument DebtInstrument) DebtInstrumentResponse {
	return DebtInstrumentResponse{
		ID:          instrument.ID.String(),
		EmployeeID:  instrument.EmployeeID.String(),
		Kind:        instrument.Kind,
		Amount:      instrument.Amount,
		Date:        instrument.Date.Format("2006-01-02"),
		Description: instrument.Description,
		PaidAmount:  instrument.PaidAmount,
		Status:      instrument.Status,
	}
}
