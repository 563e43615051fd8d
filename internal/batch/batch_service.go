package batch

import (
	"context"
	"database/sql"
	"errors"
	"time"

	batcherrors "go-crewpay/internal/batch/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EntryStatusPending = "pending"
	EntryStatusDraft   = "draft"
	EntryStatusPaid    = "paid"
)

//go:generate mockgen -source=batch_service.go -destination=mock/batch_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateBatchRequest) (BatchResponse, error)
	GetByID(ctx context.Context, id string) (BatchResponse, error)
	GetAll(ctx context.Context) ([]BatchResponse, error)
	Update(ctx context.Context, id string, req UpdateBatchRequest) (BatchResponse, error)
	Delete(ctx context.Context, id string) error
	HistoryForEmployee(ctx context.Context, filter HistoryFilterRequest) ([]HistoryEntryResponse, error)

	// SetEntryStatus is the single write path into entry status; only the
	// payroll engine's transitions call it.
	SetEntryStatus(ctx context.Context, batchID, employeeID, status string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{
		db:     db,
		repo:   repo,
		logger: zap.L().Named("batch.service"),
	}
}

func (s *service) Create(ctx context.Context, req CreateBatchRequest) (BatchResponse, error) {
	if len(req.Entries) == 0 {
		return BatchResponse{}, batcherrors.ErrEmptyEntries
	}

	projectUUID, foremanUUID, periodDate, err := parseBatchKey(req.ProjectID, req.ForemanID, req.PeriodDate)
	if err != nil {
		return BatchResponse{}, err
	}

	// Pre-write uniqueness check; check-then-write, so a narrow race can
	// still admit a duplicate triple.
	exists, err := s.repo.ExistsByTriple(ctx, req.ProjectID, req.ForemanID, periodDate, nil)
	if err != nil {
		return BatchResponse{}, err
	}
	if exists {
		return BatchResponse{}, batcherrors.ErrDuplicateBatch
	}

	batchID := uuid.New()
	entries := make([]PayrollBatchEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		employeeUUID, err := uuid.Parse(in.EmployeeID)
		if err != nil {
			return BatchResponse{}, batcherrors.ErrInvalidBatchID
		}
		entries = append(entries, PayrollBatchEntry{
			ID:           uuid.New(),
			BatchID:      batchID,
			EmployeeID:   employeeUUID,
			EmployeeName: in.EmployeeName,
			IDNumber:     in.IDNumber,
			Salary:       in.Salary,
			Status:       EntryStatusPending,
		})
	}

	b := &PayrollBatch{
		ID:          batchID,
		ProjectID:   projectUUID,
		ProjectName: req.ProjectName,
		ForemanID:   foremanUUID,
		ForemanName: req.ForemanName,
		PeriodDate:  periodDate,
		Entries:     entries,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, b); err != nil {
		s.logger.Error("create payroll batch persist failed", zap.Error(err))
		return BatchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return BatchResponse{}, err
	}

	s.logger.Info("create payroll batch success",
		zap.String("batch_id", batchID.String()),
		zap.String("project_id", req.ProjectID),
		zap.String("foreman_id", req.ForemanID),
		zap.Int("entries", len(entries)),
	)
	return mapToResponse(*b), nil
}

func (s *service) GetByID(ctx context.Context, id string) (BatchResponse, error) {
	b, err := s.findBatch(ctx, id)
	if err != nil {
		return BatchResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) GetAll(ctx context.Context) ([]BatchResponse, error) {
	batches, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]BatchResponse, len(batches))
	for i, b := range batches {
		resp[i] = mapToResponse(b)
	}
	return resp, nil
}

// Update replaces the whole roster. The stored status of every retained
// employee is carried forward; a roster edit never resets a member's status
// unless the member itself leaves the roster.
func (s *service) Update(ctx context.Context, id string, req UpdateBatchRequest) (BatchResponse, error) {
	current, err := s.findBatch(ctx, id)
	if err != nil {
		return BatchResponse{}, err
	}
	if len(req.Entries) == 0 {
		return BatchResponse{}, batcherrors.ErrEmptyEntries
	}

	projectUUID, foremanUUID, periodDate, err := parseBatchKey(req.ProjectID, req.ForemanID, req.PeriodDate)
	if err != nil {
		return BatchResponse{}, err
	}

	exists, err := s.repo.ExistsByTriple(ctx, req.ProjectID, req.ForemanID, periodDate, &id)
	if err != nil {
		return BatchResponse{}, err
	}
	if exists {
		return BatchResponse{}, batcherrors.ErrDuplicateBatch
	}

	retained := make(map[string]string, len(current.Entries))
	for _, entry := range current.Entries {
		retained[entry.EmployeeID.String()] = entry.Status
	}

	entries := make([]PayrollBatchEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		employeeUUID, err := uuid.Parse(in.EmployeeID)
		if err != nil {
			return BatchResponse{}, batcherrors.ErrInvalidBatchID
		}
		// Look up by the canonical UUID form so a differently-cased id in
		// the request still counts as the same retained employee.
		status := EntryStatusPending
		if prev, ok := retained[employeeUUID.String()]; ok {
			status = prev
		}
		entries = append(entries, PayrollBatchEntry{
			ID:           uuid.New(),
			BatchID:      current.ID,
			EmployeeID:   employeeUUID,
			EmployeeName: in.EmployeeName,
			IDNumber:     in.IDNumber,
			Salary:       in.Salary,
			Status:       status,
		})
	}

	updated := &PayrollBatch{
		ID:          current.ID,
		ProjectID:   projectUUID,
		ProjectName: req.ProjectName,
		ForemanID:   foremanUUID,
		ForemanName: req.ForemanName,
		PeriodDate:  periodDate,
		Entries:     entries,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Update(ctx, updated); err != nil {
		s.logger.Error("update payroll batch persist failed", zap.String("batch_id", id), zap.Error(err))
		return BatchResponse{}, mapRepositoryError(err)
	}
	if err := qtx.ReplaceEntries(ctx, id, entries); err != nil {
		s.logger.Error("replace batch entries failed", zap.String("batch_id", id), zap.Error(err))
		return BatchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return BatchResponse{}, err
	}

	s.logger.Info("update payroll batch success",
		zap.String("batch_id", id),
		zap.Int("entries", len(entries)),
	)
	return mapToResponse(*updated), nil
}

// Delete removes the batch unconditionally. Payroll periods still holding a
// reference to it keep their dangling batch id; there is no cascade.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.findBatch(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete payroll batch failed", zap.String("batch_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("delete payroll batch success", zap.String("batch_id", id))
	return nil
}

func (s *service) HistoryForEmployee(ctx context.Context, filter HistoryFilterRequest) ([]HistoryEntryResponse, error) {
	employeeUUID, err := uuid.Parse(filter.EmployeeID)
	if err != nil {
		return nil, batcherrors.ErrInvalidBatchID
	}

	var from, to *time.Time
	if filter.From != "" {
		parsed, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return nil, batcherrors.ErrInvalidDateFormat
		}
		from = &parsed
	}
	if filter.To != "" {
		parsed, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return nil, batcherrors.ErrInvalidDateFormat
		}
		to = &parsed
	}

	batches, err := s.repo.FindByEmployee(ctx, employeeUUID.String(), from, to)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntryResponse, 0, len(batches))
	for _, b := range batches {
		for _, entry := range b.Entries {
			if entry.EmployeeID != employeeUUID {
				continue
			}
			history = append(history, HistoryEntryResponse{
				BatchID:     b.ID.String(),
				ProjectID:   b.ProjectID.String(),
				ProjectName: b.ProjectName,
				ForemanID:   b.ForemanID.String(),
				ForemanName: b.ForemanName,
				PeriodDate:  b.PeriodDate.Format("2006-01-02"),
				Salary:      entry.Salary,
				Status:      entry.Status,
			})
		}
	}
	return history, nil
}

func (s *service) SetEntryStatus(ctx context.Context, batchID, employeeID, status string) error {
	switch status {
	case EntryStatusPending, EntryStatusDraft, EntryStatusPaid:
	default:
		return batcherrors.ErrInvalidEntryStatus
	}

	if err := s.repo.SetEntryStatus(ctx, batchID, employeeID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return batcherrors.ErrEntryNotFound
		}
		s.logger.Error("set batch entry status failed",
			zap.String("batch_id", batchID),
			zap.String("employee_id", employeeID),
			zap.String("entry_status", status),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug("set batch entry status",
		zap.String("batch_id", batchID),
		zap.String("employee_id", employeeID),
		zap.String("entry_status", status),
	)
	return nil
}

func (s *service) findBatch(ctx context.Context, id string) (*PayrollBatch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, batcherrors.ErrInvalidBatchID
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, batcherrors.ErrBatchNotFound
		}
		return nil, err
	}
	return b, nil
}

func parseBatchKey(projectID, foremanID, periodDate string) (uuid.UUID, uuid.UUID, time.Time, error) {
	projectUUID, err := uuid.Parse(projectID)
	if err != nil {
		return uuid.Nil, uuid.Nil, time.Time{}, batcherrors.ErrInvalidBatchID
	}
	foremanUUID, err := uuid.Parse(foremanID)
	if err != nil {
		return uuid.Nil, uuid.Nil, time.Time{}, batcherrors.ErrInvalidBatchID
	}
	date, err := time.Parse("2006-01-02", periodDate)
	if err != nil {
		return uuid.Nil, uuid.Nil, time.Time{}, batcherrors.ErrInvalidDateFormat
	}
	return projectUUID, foremanUUID, date, nil
}

func mapToResponse(b PayrollBatch) BatchResponse {
	entries := make([]BatchEntryResponse, len(b.Entries))
	for i, entry := range b.Entries {
		entries[i] = BatchEntryResponse{
			EmployeeID:   entry.EmployeeID.String(),
			EmployeeName: entry.EmployeeName,
			IDNumber:     entry.IDNumber,
			Salary:       entry.Salary,
			Status:       entry.Status,
		}
	}
	return BatchResponse{
		ID:          b.ID.String(),
		ProjectID:   b.ProjectID.String(),
		ProjectName: b.ProjectName,
		ForemanID:   b.ForemanID.String(),
		ForemanName: b.ForemanName,
		PeriodDate:  b.PeriodDate.Format("2006-01-02"),
		Entries:     entries,
	}
}
