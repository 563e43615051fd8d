package project

import (
	"context"
	"database/sql"
	"errors"

	projecterrors "go-crewpay/internal/project/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=project_service.go -destination=mock/project_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error)
	GetAll(ctx context.Context) ([]ProjectResponse, error)
	GetByID(ctx context.Context, id string) (ProjectResponse, error)
	GetCosts(ctx context.Context, id string) ([]ProjectCostResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	costs  CostRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, costs CostRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("project.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("project.service")
	}
	return &service{db: db, repo: repo, costs: costs, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create project begin tx failed", zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	proj := &Project{
		ID:       uuid.New(),
		Name:     req.Name,
		Location: req.Location,
	}

	if err := qtx.Create(ctx, proj); err != nil {
		s.logger.Error("create project persist failed", zap.Error(err))
		return ProjectResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ProjectResponse{}, err
	}
	s.logger.Info("create project success", zap.String("project_id", proj.ID.String()))

	return mapToResponse(*proj), nil
}

func (s *service) GetAll(ctx context.Context) ([]ProjectResponse, error) {
	projects, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]ProjectResponse, len(projects))
	for i, proj := range projects {
		resp[i] = mapToResponse(proj)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (ProjectResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ProjectResponse{}, projecterrors.ErrInvalidProjectID
	}

	proj, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectResponse{}, projecterrors.ErrProjectNotFound
		}
		return ProjectResponse{}, err
	}
	return mapToResponse(*proj), nil
}

func (s *service) GetCosts(ctx context.Context, id string) ([]ProjectCostResponse, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, projecterrors.ErrProjectNotFound
	}

	costs, err := s.costs.FindCostsByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := make([]ProjectCostResponse, len(costs))
	for i, cost := range costs {
		resp[i] = mapCostToResponse(cost)
	}
	return resp, nil
}

func mapToResponse(proj Project) ProjectResponse {
	return ProjectResponse{
		ID:       proj.ID.String(),
		Name:     proj.Name,
		Location: proj.Location,
	}
}

func mapCostToResponse(cost ProjectCost) ProjectCostResponse {
	return ProjectCostResponse{
		ID:          cost.ID.String(),
		ProjectID:   cost.ProjectID.String(),
		Date:        cost.Date.Format("2006-01-02"),
		Description: cost.Description,
		Category:    cost.Category,
		Amount:      cost.Amount,
		SourceRef:   cost.SourceRef,
	}
}
