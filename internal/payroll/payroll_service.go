package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-crewpay/internal/debt"
	debterrors "go-crewpay/internal/debt/errors"
	"go-crewpay/internal/events"
	"go-crewpay/internal/messaging/kafka"
	payrollerrors "go-crewpay/internal/payroll/errors"
	"go-crewpay/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"

	// DefaultStandardPeriodDays is the day-rate divisor used when no
	// policy value is configured.
	DefaultStandardPeriodDays = 30

	entryStatusPending = "pending"
	entryStatusPaid    = "paid"
)

// DebtSettler is the slice of the debt ledger this engine needs. Settlement
// apply and revert here are the only callers that mutate instrument balances.
type DebtSettler interface {
	ApplySettlement(ctx context.Context, instrumentID string, amount int64) (debt.DebtInstrumentResponse, error)
	RevertSettlement(ctx context.Context, instrumentID string, amount int64) (debt.DebtInstrumentResponse, error)
}

// RosterStatusWriter propagates a period's status onto the roster entry it
// came from. The roster module implements it; roster CRUD itself never calls
// it, so entry status stays a one-way projection of period status.
type RosterStatusWriter interface {
	SetEntryStatus(ctx context.Context, batchID, employeeID, status string) error
}

type EmployeeDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreatePayrollPeriodRequest) (PayrollPeriodResponse, error)
	GetByID(ctx context.Context, id string) (PayrollPeriodResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]PayrollPeriodResponse, error)
	SetStatus(ctx context.Context, id string, req SetPayrollStatusRequest) (PayrollPeriodResponse, error)
	Delete(ctx context.Context, id string) ([]string, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafka.OutboxRepository
	settler   DebtSettler
	roster    RosterStatusWriter
	employees EmployeeDirectory

	standardPeriodDays int
	logger             *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	settler DebtSettler,
	roster RosterStatusWriter,
	employees EmployeeDirectory,
	standardPeriodDays int,
) Service {
	if standardPeriodDays <= 0 {
		standardPeriodDays = DefaultStandardPeriodDays
	}
	return &service{
		db:                 db,
		repo:               repo,
		outbox:             outbox,
		settler:            settler,
		roster:             roster,
		employees:          employees,
		standardPeriodDays: standardPeriodDays,
		logger:             zap.L().Named("payroll.service"),
	}
}

// transitions is the explicit table for period status changes. A missing
// pair is rejected; a same-state request is a no-op, never a re-apply.
var transitions = map[string]string{
	StatusPending: StatusPaid,
	StatusPaid:    StatusPending,
}

func isAllowedStatusTransition(from, to string) bool {
	next, ok := transitions[from]
	return ok && next == to
}

func (s *service) Create(ctx context.Context, req CreatePayrollPeriodRequest) (PayrollPeriodResponse, error) {
	s.logger.Debug("create payroll period requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("from_date", req.FromDate),
		zap.String("to_date", req.ToDate),
	)

	period, err := s.buildPeriod(req)
	if err != nil {
		s.logger.Warn("create payroll period validation failed", zap.Error(err))
		return PayrollPeriodResponse{}, err
	}

	exists, err := s.employees.Exists(ctx, req.EmployeeID)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	if !exists {
		return PayrollPeriodResponse{}, payrollerrors.ErrEmployeeNotFound
	}

	// Pre-write existence query; the check-then-write pair is not atomic,
	// so a narrow race can still admit a duplicate.
	overlap, err := s.repo.HasOverlappingPeriod(ctx, req.EmployeeID, period.FromDate, period.ToDate, nil)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	if overlap {
		return PayrollPeriodResponse{}, payrollerrors.ErrPeriodOverlap
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, period); err != nil {
		s.logger.Error("create payroll period persist failed", zap.Error(err))
		return PayrollPeriodResponse{}, err
	}

	if err := s.enqueueStatusEvent(ctx, tx, period, "payroll_period_created"); err != nil {
		return PayrollPeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollPeriodResponse{}, err
	}

	resp := mapToResponse(*period)

	// Created directly in PAID: apply the settlement step now, exactly as
	// a PENDING -> PAID transition would.
	if period.Status == StatusPaid {
		warnings := s.applyLinkedSettlements(ctx, period)
		warnings = append(warnings, s.mirrorRosterEntry(ctx, period, entryStatusPaid)...)
		resp.Warnings = warnings
	}

	s.logger.Info("create payroll period success",
		zap.String("period_id", period.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("status", period.Status),
		zap.Int64("net_salary", period.NetSalary),
	)
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (PayrollPeriodResponse, error) {
	period, err := s.findPeriod(ctx, id)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	return mapToResponse(*period), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]PayrollPeriodResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollerrors.ErrInvalidPeriodID
	}
	periods, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]PayrollPeriodResponse, len(periods))
	for i, p := range periods {
		resp[i] = mapToResponse(p)
	}
	return resp, nil
}

func (s *service) SetStatus(ctx context.Context, id string, req SetPayrollStatusRequest) (PayrollPeriodResponse, error) {
	period, err := s.findPeriod(ctx, id)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}

	// Same-state request: answer with the current record, no settlement
	// re-application, no event.
	if period.Status == req.Status {
		s.logger.Debug("set payroll status no-op",
			zap.String("period_id", id),
			zap.String("status", req.Status),
		)
		return mapToResponse(*period), nil
	}

	if !isAllowedStatusTransition(period.Status, req.Status) {
		return PayrollPeriodResponse{}, payrollerrors.ErrInvalidStatus
	}

	var paidDate *time.Time
	if req.Status == StatusPaid {
		pd := time.Now().UTC().Truncate(24 * time.Hour)
		if req.PaidDate != "" {
			parsed, err := time.Parse("2006-01-02", req.PaidDate)
			if err != nil {
				return PayrollPeriodResponse{}, payrollerrors.ErrInvalidDateFormat
			}
			pd = parsed
		}
		paidDate = &pd
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.UpdateStatus(ctx, id, req.Status, paidDate); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollPeriodResponse{}, payrollerrors.ErrPeriodNotFound
		}
		s.logger.Error("set payroll status persist failed", zap.String("period_id", id), zap.Error(err))
		return PayrollPeriodResponse{}, err
	}

	period.Status = req.Status
	period.PaidDate = paidDate
	if err := s.enqueueStatusEvent(ctx, tx, period, "payroll_period_status_changed"); err != nil {
		return PayrollPeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollPeriodResponse{}, err
	}

	var warnings []string
	switch req.Status {
	case StatusPaid:
		warnings = s.applyLinkedSettlements(ctx, period)
		warnings = append(warnings, s.mirrorRosterEntry(ctx, period, entryStatusPaid)...)
	case StatusPending:
		warnings = s.revertLinkedSettlements(ctx, period)
		warnings = append(warnings, s.mirrorRosterEntry(ctx, period, entryStatusPending)...)
	}

	s.logger.Info("set payroll status success",
		zap.String("period_id", id),
		zap.String("status", req.Status),
		zap.Int("warnings", len(warnings)),
	)

	resp := mapToResponse(*period)
	resp.Warnings = warnings
	return resp, nil
}

// Delete removes the period. A PAID period is first fully reverted, linked
// settlements and roster mirror included, so deletion never silently loses
// settled money.
func (s *service) Delete(ctx context.Context, id string) ([]string, error) {
	period, err := s.findPeriod(ctx, id)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if period.Status == StatusPaid {
		warnings = s.revertLinkedSettlements(ctx, period)
		warnings = append(warnings, s.mirrorRosterEntry(ctx, period, entryStatusPending)...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete payroll period failed", zap.String("period_id", id), zap.Error(err))
		return nil, err
	}

	period.Status = StatusPending
	period.PaidDate = nil
	if err := s.enqueueStatusEvent(ctx, tx, period, "payroll_period_deleted"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("delete payroll period success",
		zap.String("period_id", id),
		zap.Int("warnings", len(warnings)),
	)
	return warnings, nil
}

func (s *service) findPeriod(ctx context.Context, id string) (*PayrollPeriod, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidPeriodID
	}
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}

// applyLinkedSettlements pushes each linked deduction into the debt ledger.
// A missing instrument is skipped and reported as a warning; one dead link
// never aborts the transition for the remaining links.
func (s *service) applyLinkedSettlements(ctx context.Context, period *PayrollPeriod) []string {
	var warnings []string
	for _, link := range period.LinkedDeductions {
		_, err := s.settler.ApplySettlement(ctx, link.InstrumentID.String(), link.Amount)
		if err != nil {
			warnings = append(warnings, s.settlementWarning(link, "apply", err))
		}
	}
	return warnings
}

func (s *service) revertLinkedSettlements(ctx context.Context, period *PayrollPeriod) []string {
	var warnings []string
	for _, link := range period.LinkedDeductions {
		_, err := s.settler.RevertSettlement(ctx, link.InstrumentID.String(), link.Amount)
		if err != nil {
			warnings = append(warnings, s.settlementWarning(link, "revert", err))
		}
	}
	return warnings
}

func (s *service) settlementWarning(link LinkedDeduction, direction string, err error) string {
	if errors.Is(err, debterrors.ErrInstrumentNotFound) {
		s.logger.Warn("linked instrument missing, settlement skipped",
			zap.String("instrument_id", link.InstrumentID.String()),
			zap.String("direction", direction),
		)
		return fmt.Sprintf("settlement %s skipped: instrument %s not found", direction, link.InstrumentID)
	}
	s.logger.Error("linked settlement failed",
		zap.String("instrument_id", link.InstrumentID.String()),
		zap.String("direction", direction),
		zap.Error(err),
	)
	return fmt.Sprintf("settlement %s failed for instrument %s", direction, link.InstrumentID)
}

func (s *service) mirrorRosterEntry(ctx context.Context, period *PayrollPeriod, status string) []string {
	if period.BatchID == nil || s.roster == nil {
		return nil
	}
	if err := s.roster.SetEntryStatus(ctx, period.BatchID.String(), period.EmployeeID.String(), status); err != nil {
		s.logger.Error("roster entry status mirror failed",
			zap.String("period_id", period.ID.String()),
			zap.String("batch_id", period.BatchID.String()),
			zap.String("entry_status", status),
			zap.Error(err),
		)
		return []string{fmt.Sprintf("roster entry status not updated for batch %s", period.BatchID)}
	}
	return nil
}

func (s *service) enqueueStatusEvent(ctx context.Context, tx *sql.Tx, period *PayrollPeriod, eventType string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.PayrollPeriodStatusEvent{
		EventType:  eventType,
		RequestID:  rid,
		PeriodID:   period.ID.String(),
		EmployeeID: period.EmployeeID.String(),
		Status:     period.Status,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal period event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll_period",
		AggregateID:   period.ID.String(),
		EventType:     eventType,
		Topic:         events.PayrollPeriodStatusTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("period outbox persist failed",
			zap.String("period_id", period.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) buildPeriod(req CreatePayrollPeriodRequest) (*PayrollPeriod, error) {
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return nil, payrollerrors.ErrInvalidPeriodID
	}
	fromDate, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		return nil, payrollerrors.ErrInvalidDateFormat
	}
	toDate, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		return nil, payrollerrors.ErrInvalidDateFormat
	}
	if fromDate.After(toDate) {
		return nil, payrollerrors.ErrInvalidDateRange
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	periodID := uuid.New()
	absentDeduction := req.BaseSalary * int64(req.AbsentDays) / int64(s.standardPeriodDays)

	var (
		manualExpenses      []ManualExpenseLine
		manualExpensesTotal int64
	)
	for _, line := range req.ManualExpenses {
		manualExpenses = append(manualExpenses, ManualExpenseLine{
			ID:          uuid.New(),
			PeriodID:    periodID,
			Description: line.Description,
			Amount:      line.Amount,
		})
		manualExpensesTotal += line.Amount
	}

	var (
		linkedDeductions    []LinkedDeduction
		linkedExpensesTotal int64
	)
	for _, link := range req.LinkedDeductions {
		instrumentUUID, err := uuid.Parse(link.InstrumentID)
		if err != nil {
			return nil, payrollerrors.ErrInvalidPeriodID
		}
		linkedDeductions = append(linkedDeductions, LinkedDeduction{
			ID:           uuid.New(),
			PeriodID:     periodID,
			InstrumentID: instrumentUUID,
			Amount:       link.Amount,
		})
		linkedExpensesTotal += link.Amount
	}

	totalDeductions := absentDeduction + req.FixedDeductions + manualExpensesTotal + linkedExpensesTotal
	netSalary := req.BaseSalary + req.Allowances - totalDeductions

	var paidDate *time.Time
	if status == StatusPaid {
		pd := time.Now().UTC().Truncate(24 * time.Hour)
		if req.PaidDate != "" {
			parsed, err := time.Parse("2006-01-02", req.PaidDate)
			if err != nil {
				return nil, payrollerrors.ErrInvalidDateFormat
			}
			pd = parsed
		}
		paidDate = &pd
	}

	var batchID *uuid.UUID
	if req.BatchID != "" {
		parsed, err := uuid.Parse(req.BatchID)
		if err != nil {
			return nil, payrollerrors.ErrInvalidPeriodID
		}
		batchID = &parsed
	}

	return &PayrollPeriod{
		ID:                  periodID,
		EmployeeID:          employeeUUID,
		FromDate:            fromDate,
		ToDate:              toDate,
		BaseSalary:          req.BaseSalary,
		Allowances:          req.Allowances,
		AbsentDays:          req.AbsentDays,
		AbsentDeduction:     absentDeduction,
		FixedDeductions:     req.FixedDeductions,
		ManualExpensesTotal: manualExpensesTotal,
		LinkedExpensesTotal: linkedExpensesTotal,
		TotalDeductions:     totalDeductions,
		NetSalary:           netSalary,
		Status:              status,
		PaidDate:            paidDate,
		BatchID:             batchID,
		ManualExpenses:      manualExpenses,
		LinkedDeductions:    linkedDeductions,
	}, nil
}

func mapToResponse(period PayrollPeriod) PayrollPeriodResponse {
	manual := make([]ManualExpenseResponse, len(period.ManualExpenses))
	for i, line := range period.ManualExpenses {
		manual[i] = ManualExpenseResponse{Description: line.Description, Amount: line.Amount}
	}
	linked := make([]LinkedDeductionResponse, len(period.LinkedDeductions))
	for i, link := range period.LinkedDeductions {
		linked[i] = LinkedDeductionResponse{InstrumentID: link.InstrumentID.String(), Amount: link.Amount}
	}

	var paidDate *string
	if period.PaidDate != nil {
		pd := period.PaidDate.Format("2006-01-02")
		paidDate = &pd
	}
	var batchID *string
	if period.BatchID != nil {
		bid := period.BatchID.String()
		batchID = &bid
	}

	return PayrollPeriodResponse{
		ID:                  period.ID.String(),
		EmployeeID:          period.EmployeeID.String(),
		FromDate:            period.FromDate.Format("2006-01-02"),
		ToDate:              period.ToDate.Format("2006-01-02"),
		BaseSalary:          period.BaseSalary,
		Allowances:          period.Allowances,
		AbsentDays:          period.AbsentDays,
		AbsentDeduction:     period.AbsentDeduction,
		FixedDeductions:     period.FixedDeductions,
		ManualExpenses:      manual,
		LinkedDeductions:    linked,
		ManualExpensesTotal: period.ManualExpensesTotal,
		LinkedExpensesTotal: period.LinkedExpensesTotal,
		TotalDeductions:     period.TotalDeductions,
		NetSalary:           period.NetSalary,
		Status:              period.Status,
		PaidDate:            paidDate,
		BatchID:             batchID,
	}
}
