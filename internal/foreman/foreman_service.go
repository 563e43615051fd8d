package foreman

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-crewpay/internal/events"
	foremanerrors "go-crewpay/internal/foreman/errors"
	"go-crewpay/internal/messaging/kafka"
	"go-crewpay/internal/project"
	"go-crewpay/internal/shared/contextutil"
	"go-crewpay/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=foreman_service.go -destination=mock/foreman_service_mock.go -package=mock
type Service interface {
	Assign(ctx context.Context, req AssignForemanRequest) (LedgerResponse, error)
	GetByID(ctx context.Context, id string) (LedgerResponse, error)
	GetAll(ctx context.Context) ([]LedgerResponse, error)
	Unassign(ctx context.Context, id string) error

	AddCashAdvance(ctx context.Context, ledgerID string, req CashAdvanceRequest) (LedgerResponse, error)
	DeleteCashAdvance(ctx context.Context, ledgerID, entryID string) (LedgerResponse, error)
	AddInvoiceLine(ctx context.Context, ledgerID string, req InvoiceLineRequest) (LedgerResponse, error)
	DeleteInvoiceLine(ctx context.Context, ledgerID, entryID string) (LedgerResponse, error)

	// EnsureInvoiceMirror re-creates the mirrored project cost entry for an
	// invoice line when the original mirror step was lost. It reports
	// whether a repair write happened.
	EnsureInvoiceMirror(ctx context.Context, ledgerID, lineID string) (bool, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	costs    project.CostRepository
	outbox   kafka.OutboxRepository
	counters counter.Repository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	costs project.CostRepository,
	outbox kafka.OutboxRepository,
	counters counter.Repository,
) Service {
	return &service{
		db:       db,
		repo:     repo,
		costs:    costs,
		outbox:   outbox,
		counters: counters,
		logger:   zap.L().Named("foreman.service"),
	}
}

func (s *service) Assign(ctx context.Context, req AssignForemanRequest) (LedgerResponse, error) {
	foremanUUID, err := uuid.Parse(req.ForemanID)
	if err != nil {
		return LedgerResponse{}, foremanerrors.ErrInvalidLedgerID
	}
	projectUUID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return LedgerResponse{}, foremanerrors.ErrInvalidLedgerID
	}

	// Pre-write uniqueness check; check-then-write, so a narrow race can
	// still admit a duplicate pair.
	exists, err := s.repo.ExistsByPair(ctx, req.ForemanID, req.ProjectID)
	if err != nil {
		return LedgerResponse{}, err
	}
	if exists {
		return LedgerResponse{}, foremanerrors.ErrDuplicateAssignment
	}

	ledger := &ForemanLedger{
		ID:              uuid.New(),
		ForemanID:       foremanUUID,
		ForemanName:     req.ForemanName,
		ProjectID:       projectUUID,
		ProjectName:     req.ProjectName,
		ProjectLocation: req.ProjectLocation,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, ledger); err != nil {
		s.logger.Error("assign foreman persist failed", zap.Error(err))
		return LedgerResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	s.logger.Info("assign foreman success",
		zap.String("ledger_id", ledger.ID.String()),
		zap.String("foreman_id", req.ForemanID),
		zap.String("project_id", req.ProjectID),
	)
	return mapToResponse(*ledger), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LedgerResponse, error) {
	ledger, err := s.findLedger(ctx, id)
	if err != nil {
		return LedgerResponse{}, err
	}
	return mapToResponse(*ledger), nil
}

func (s *service) GetAll(ctx context.Context) ([]LedgerResponse, error) {
	ledgers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]LedgerResponse, len(ledgers))
	for i, ledger := range ledgers {
		resp[i] = mapToResponse(ledger)
	}
	return resp, nil
}

// Unassign hard-deletes the ledger row and its entries. Project cost entries
// previously mirrored from this ledger stay in place; posted cost history
// outlives the relationship that created it.
func (s *service) Unassign(ctx context.Context, id string) error {
	if _, err := s.findLedger(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("unassign foreman failed", zap.String("ledger_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("unassign foreman success", zap.String("ledger_id", id))
	return nil
}

func (s *service) AddCashAdvance(ctx context.Context, ledgerID string, req CashAdvanceRequest) (LedgerResponse, error) {
	ledger, err := s.findLedger(ctx, ledgerID)
	if err != nil {
		return LedgerResponse{}, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return LedgerResponse{}, foremanerrors.ErrInvalidDateFormat
	}

	referenceNo := req.ReferenceNo
	if referenceNo == "" {
		seq, err := s.counters.GetNextValue(ctx, ledgerID, "advance_ref")
		if err != nil {
			return LedgerResponse{}, err
		}
		referenceNo = fmt.Sprintf("ADV-%d", seq)
	}

	advance := &CashAdvance{
		ID:          uuid.New(),
		LedgerID:    ledger.ID,
		Date:        date,
		Amount:      req.Amount,
		Mode:        req.Mode,
		ReferenceNo: referenceNo,
		Remarks:     req.Remarks,
	}

	if err := s.repo.AppendCashAdvance(ctx, advance); err != nil {
		s.logger.Error("append cash advance failed", zap.String("ledger_id", ledgerID), zap.Error(err))
		return LedgerResponse{}, err
	}

	if err := s.recompute(ctx, ledgerID, ledger.Version); err != nil {
		return LedgerResponse{}, err
	}

	s.logger.Info("add cash advance success",
		zap.String("ledger_id", ledgerID),
		zap.String("entry_id", advance.ID.String()),
		zap.Int64("amount", req.Amount),
	)
	return s.GetByID(ctx, ledgerID)
}

func (s *service) DeleteCashAdvance(ctx context.Context, ledgerID, entryID string) (LedgerResponse, error) {
	ledger, err := s.findLedger(ctx, ledgerID)
	if err != nil {
		return LedgerResponse{}, err
	}
	if _, err := uuid.Parse(entryID); err != nil {
		return LedgerResponse{}, foremanerrors.ErrInvalidLedgerID
	}

	if err := s.repo.DeleteCashAdvance(ctx, ledgerID, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LedgerResponse{}, foremanerrors.ErrEntryNotFound
		}
		return LedgerResponse{}, err
	}

	if err := s.recompute(ctx, ledgerID, ledger.Version); err != nil {
		return LedgerResponse{}, err
	}

	s.logger.Info("delete cash advance success",
		zap.String("ledger_id", ledgerID),
		zap.String("entry_id", entryID),
	)
	return s.GetByID(ctx, ledgerID)
}

// AddInvoiceLine appends the line and an outbox event in one transaction,
// then mirrors the line onto the project's cost record. A failed mirror is
// reported as a warning; the reconciliation consumer replays the outbox
// event until the mirror exists.
func (s *service) AddInvoiceLine(ctx context.Context, ledgerID string, req InvoiceLineRequest) (LedgerResponse, error) {
	ledger, err := s.findLedger(ctx, ledgerID)
	if err != nil {
		return LedgerResponse{}, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return LedgerResponse{}, foremanerrors.ErrInvalidDateFormat
	}

	invoiceNo := req.InvoiceNo
	if invoiceNo == "" {
		seq, err := s.counters.GetNextValue(ctx, ledgerID, "invoice_no")
		if err != nil {
			return LedgerResponse{}, err
		}
		invoiceNo = fmt.Sprintf("INV-%d", seq)
	}

	line := &InvoiceLine{
		ID:        uuid.New(),
		LedgerID:  ledger.ID,
		Date:      date,
		Amount:    req.Amount,
		InvoiceNo: invoiceNo,
		Category:  req.Category,
		Remarks:   req.Remarks,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.AppendInvoiceLine(ctx, line); err != nil {
		s.logger.Error("append invoice line failed", zap.String("ledger_id", ledgerID), zap.Error(err))
		return LedgerResponse{}, err
	}
	if err := s.enqueueInvoiceEvent(ctx, tx, ledger, line); err != nil {
		return LedgerResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	if err := s.recompute(ctx, ledgerID, ledger.Version); err != nil {
		return LedgerResponse{}, err
	}

	var warnings []string
	if err := s.mirrorInvoiceLine(ctx, ledger, line); err != nil {
		s.logger.Error("invoice cost mirror failed",
			zap.String("ledger_id", ledgerID),
			zap.String("line_id", line.ID.String()),
			zap.Error(err),
		)
		warnings = append(warnings, fmt.Sprintf("project cost mirror pending for invoice line %s", line.ID))
	}

	s.logger.Info("add invoice line success",
		zap.String("ledger_id", ledgerID),
		zap.String("line_id", line.ID.String()),
		zap.Int64("amount", req.Amount),
	)

	resp, err := s.GetByID(ctx, ledgerID)
	if err != nil {
		return LedgerResponse{}, err
	}
	resp.Warnings = warnings
	return resp, nil
}

// DeleteInvoiceLine removes both sides, mirror first. If the mirror removal
// fails the ledger line is left untouched so the cost side never orphans.
func (s *service) DeleteInvoiceLine(ctx context.Context, ledgerID, entryID string) (LedgerResponse, error) {
	ledger, err := s.findLedger(ctx, ledgerID)
	if err != nil {
		return LedgerResponse{}, err
	}
	if _, err := uuid.Parse(entryID); err != nil {
		return LedgerResponse{}, foremanerrors.ErrInvalidLedgerID
	}

	// An already-absent mirror counts as removed.
	if _, err := s.costs.RemoveCostBySourceRef(ctx, entryID); err != nil {
		s.logger.Error("mirrored cost removal failed",
			zap.String("ledger_id", ledgerID),
			zap.String("line_id", entryID),
			zap.Error(err),
		)
		return LedgerResponse{}, foremanerrors.ErrMirrorRemovalFailed
	}

	if err := s.repo.DeleteInvoiceLine(ctx, ledgerID, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LedgerResponse{}, foremanerrors.ErrEntryNotFound
		}
		return LedgerResponse{}, err
	}

	if err := s.recompute(ctx, ledgerID, ledger.Version); err != nil {
		return LedgerResponse{}, err
	}

	s.logger.Info("delete invoice line success",
		zap.String("ledger_id", ledgerID),
		zap.String("line_id", entryID),
	)
	return s.GetByID(ctx, ledgerID)
}

func (s *service) EnsureInvoiceMirror(ctx context.Context, ledgerID, lineID string) (bool, error) {
	if _, err := s.costs.FindCostBySourceRef(ctx, lineID); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	line, err := s.repo.FindInvoiceLine(ctx, ledgerID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Line deleted since the event was written, nothing to repair.
			return false, nil
		}
		return false, err
	}

	ledger, err := s.repo.FindByID(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.appendMirrorCost(ctx, ledger, line); err != nil {
		return false, err
	}

	s.logger.Info("invoice cost mirror repaired",
		zap.String("ledger_id", ledgerID),
		zap.String("line_id", lineID),
	)
	return true, nil
}

func (s *service) mirrorInvoiceLine(ctx context.Context, ledger *ForemanLedger, line *InvoiceLine) error {
	return s.appendMirrorCost(ctx, ledger, line)
}

func (s *service) appendMirrorCost(ctx context.Context, ledger *ForemanLedger, line *InvoiceLine) error {
	sourceRef := line.ID.String()
	return s.costs.AppendCost(ctx, &project.ProjectCost{
		ID:          uuid.New(),
		ProjectID:   ledger.ProjectID,
		Date:        line.Date,
		Description: fmt.Sprintf("Foreman invoice %s (%s)", line.InvoiceNo, ledger.ForemanName),
		Category:    line.Category,
		Amount:      line.Amount,
		SourceRef:   &sourceRef,
	})
}

func (s *service) recompute(ctx context.Context, ledgerID string, expectedVersion int64) error {
	if err := s.repo.RecomputeSummary(ctx, ledgerID, expectedVersion); err != nil {
		if errors.Is(err, ErrStaleVersion) {
			s.logger.Warn("ledger summary recompute lost version race",
				zap.String("ledger_id", ledgerID),
				zap.Int64("expected_version", expectedVersion),
			)
			return foremanerrors.ErrLedgerConflict
		}
		return err
	}
	return nil
}

func (s *service) enqueueInvoiceEvent(ctx context.Context, tx *sql.Tx, ledger *ForemanLedger, line *InvoiceLine) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.ForemanInvoiceRecordedEvent{
		EventType:  "foreman_invoice_recorded",
		LedgerID:   ledger.ID.String(),
		LineID:     line.ID.String(),
		ProjectID:  ledger.ProjectID.String(),
		Amount:     line.Amount,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "foreman_ledger",
		AggregateID:   ledger.ID.String(),
		EventType:     event.EventType,
		Topic:         events.ForemanInvoiceRecordedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("invoice outbox persist failed",
			zap.String("ledger_id", ledger.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) findLedger(ctx context.Context, id string) (*ForemanLedger, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, foremanerrors.ErrInvalidLedgerID
	}
	ledger, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, foremanerrors.ErrLedgerNotFound
		}
		return nil, err
	}
	return ledger, nil
}

func mapToResponse(ledger ForemanLedger) LedgerResponse {
	advances := make([]CashAdvanceResponse, len(ledger.CashAdvances))
	for i, advance := range ledger.CashAdvances {
		advances[i] = CashAdvanceResponse{
			ID:          advance.ID.String(),
			Date:        advance.Date.Format("2006-01-02"),
			Amount:      advance.Amount,
			Mode:        advance.Mode,
			ReferenceNo: advance.ReferenceNo,
			Remarks:     advance.Remarks,
		}
	}
	lines := make([]InvoiceLineResponse, len(ledger.InvoiceLines))
	for i, line := range ledger.InvoiceLines {
		lines[i] = InvoiceLineResponse{
			ID:        line.ID.String(),
			Date:      line.Date.Format("2006-01-02"),
			Amount:    line.Amount,
			InvoiceNo: line.InvoiceNo,
			Category:  line.Category,
			Remarks:   line.Remarks,
		}
	}

	return LedgerResponse{
		ID:               ledger.ID.String(),
		ForemanID:        ledger.ForemanID.String(),
		ForemanName:      ledger.ForemanName,
		ProjectID:        ledger.ProjectID.String(),
		ProjectName:      ledger.ProjectName,
		ProjectLocation:  ledger.ProjectLocation,
		CashAdvances:     advances,
		InvoiceLines:     lines,
		TotalSent:        ledger.TotalSent,
		TotalInvoiced:    ledger.TotalInvoiced,
		RemainingBalance: ledger.RemainingBalance,
	}
}
